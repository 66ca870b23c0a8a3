package scrape

import (
	"fmt"
	"net/url"
	"path"
	"regexp"

	"shipscraper/internal/domain"
)

// viewTokenRe pulls the alphabetic run immediately preceding the image
// extension, e.g. "Avenger_Titan_-_Front.jpg" -> "Front".
var viewTokenRe = regexp.MustCompile(`([A-Za-z]+)\.(?:jpg|png)`)

// typoFixes corrects view names misspelled in the wiki's uploaded
// filenames.
var typoFixes = map[string]string{
	"Isometirc":  "Isometric",
	"Isometrric": "Isometric",
}

// FileName derives the local filename from an image URL's path.
func FileName(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("bad image url %q: %w", rawURL, err)
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" {
		return "", fmt.Errorf("image url %q has no filename", rawURL)
	}
	return name, nil
}

// ViewToken extracts the raw view token from a filename, with typo
// correction applied. Returns false when the filename does not match the
// expected pattern at all; such images are discarded, not erred.
func ViewToken(filename string) (string, bool) {
	m := viewTokenRe.FindStringSubmatch(filename)
	if m == nil {
		return "", false
	}
	return CorrectView(m[1]), true
}

// CorrectView maps known misspellings to the canonical view name and
// passes everything else through unchanged. Idempotent.
func CorrectView(token string) string {
	if fixed, ok := typoFixes[token]; ok {
		return fixed
	}
	return token
}

// ViewFor matches a corrected token against the closed set of view
// categories.
func ViewFor(token string) (domain.ViewCategory, bool) {
	for _, v := range domain.ViewCategories {
		if string(v) == token {
			return v, true
		}
	}
	return "", false
}
