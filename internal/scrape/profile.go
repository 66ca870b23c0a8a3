package scrape

import (
	"context"
	"fmt"
	"net/url"
	"regexp"

	"github.com/PuerkitoBio/goquery"

	"shipscraper/internal/fetch"
	"shipscraper/pkg/utils"
)

// ProfileKind distinguishes a detail page that genuinely has no image
// block from one whose markup broke the structural walk. The original
// wiki layout makes both look like "no images"; callers need to tell
// them apart.
type ProfileKind int

const (
	// ProfileFound means the in-space panel was located; Images holds the
	// resolved raw URLs (possibly none).
	ProfileFound ProfileKind = iota
	// ProfileMissing means the page has no ship-profile section at all.
	ProfileMissing
	// ProfileBroken means the section exists but the container or panel
	// around it did not match the expected structure.
	ProfileBroken
)

// ProfileResult is the outcome of locating a ship's in-space images.
type ProfileResult struct {
	Kind   ProfileKind
	Images []string
}

var inSpaceRe = regexp.MustCompile(`(?i)in[\s-]space`)

const (
	profileAnchorSelector = "span#Ship_profile"
	containerSelector     = "div.tabber, div.citizen-table-wrapper"
	figureSelector        = "figure[typeof='mw:File/Frameless']"
	mediaLinkSelector     = "a.internal"
)

// LocateImages walks a ship detail page to its in-space image panel and
// resolves each figure through its media description page to the raw
// image URL. Every media page costs one extra page load.
func LocateImages(ctx context.Context, client *fetch.Client, site *url.URL, detailURL string) (ProfileResult, error) {
	doc, err := client.Load(ctx, detailURL)
	if err != nil {
		return ProfileResult{}, err
	}

	anchor := doc.Find(profileAnchorSelector).First()
	if anchor.Length() == 0 {
		return ProfileResult{Kind: ProfileMissing}, nil
	}

	container := anchor.Parent().NextAllFiltered(containerSelector).First()
	if container.Length() == 0 {
		return ProfileResult{Kind: ProfileBroken}, nil
	}

	panel := container.Find("article").FilterFunction(func(_ int, s *goquery.Selection) bool {
		title, ok := s.Attr("data-title")
		return ok && inSpaceRe.MatchString(title)
	}).First()
	if panel.Length() == 0 {
		return ProfileResult{Kind: ProfileBroken}, nil
	}

	var (
		images  []string
		walkErr error
	)
	panel.Find(figureSelector).EachWithBreak(func(_ int, fig *goquery.Selection) bool {
		href, ok := fig.Find("a").First().Attr("href")
		if !ok {
			return true // figure without a media link carries no image
		}
		mediaURL, err := utils.ToAbsoluteURL(site, href)
		if err != nil {
			walkErr = fmt.Errorf("bad media link %q: %w", href, err)
			return false
		}
		src, err := resolveMediaPage(ctx, client, site, mediaURL)
		if err != nil {
			walkErr = err
			return false
		}
		images = append(images, src)
		return true
	})
	if walkErr != nil {
		return ProfileResult{}, walkErr
	}
	return ProfileResult{Kind: ProfileFound, Images: images}, nil
}

// resolveMediaPage follows a media description page to its primary
// download link.
func resolveMediaPage(ctx context.Context, client *fetch.Client, site *url.URL, mediaURL string) (string, error) {
	doc, err := client.Load(ctx, mediaURL)
	if err != nil {
		return "", fmt.Errorf("media page %s: %w", mediaURL, err)
	}
	href, ok := doc.Find(mediaLinkSelector).First().Attr("href")
	if !ok {
		return "", fmt.Errorf("media page %s: no download link", mediaURL)
	}
	return utils.ToAbsoluteURL(site, href)
}
