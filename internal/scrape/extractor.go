package scrape

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"shipscraper/internal/domain"
	"shipscraper/pkg/utils"
)

// CellError reports a failed extraction of one cell.
type CellError struct {
	Column string
	Reason string
}

func (e *CellError) Error() string {
	return fmt.Sprintf("cell %q: %s", e.Column, e.Reason)
}

// column binds a column name to its cell extractor and its CSV rendering.
// The slice below is the single source of truth for column order: the
// header row, the per-row extraction order and the export order all come
// from it, so the three can never drift apart.
type column struct {
	name    string
	extract func(row *goquery.Selection, site *url.URL, rec *domain.ShipRecord) error
	value   func(rec domain.ShipRecord) string
}

var shipColumns = []column{
	{"Name", extractName, func(r domain.ShipRecord) string { return r.Name }},
	{"Wiki", extractWiki, func(r domain.ShipRecord) string { return r.Wiki }},
	{"Manufacturer", extractManufacturer, func(r domain.ShipRecord) string { return r.Manufacturer }},
	{"Size", extractSize, func(r domain.ShipRecord) string { return r.Size }},
	{"Length (m)", required("Length", func(r *domain.ShipRecord, v float64) { r.Length = v }),
		func(r domain.ShipRecord) string { return formatFloat(r.Length) }},
	{"Width (m)", required("Width", func(r *domain.ShipRecord, v float64) { r.Width = v }),
		func(r domain.ShipRecord) string { return formatFloat(r.Width) }},
	{"Height (m)", required("Height", func(r *domain.ShipRecord, v float64) { r.Height = v }),
		func(r domain.ShipRecord) string { return formatFloat(r.Height) }},
	{"Max speed (m/s)", optional("Max-speed", func(r *domain.ShipRecord, v float64) { r.MaxSpeed = v }),
		func(r domain.ShipRecord) string { return formatFloat(r.MaxSpeed) }},
	{"SCM speed (m/s)", optional("SCM-speed", func(r *domain.ShipRecord, v float64) { r.ScmSpeed = v }),
		func(r domain.ShipRecord) string { return formatFloat(r.ScmSpeed) }},
	{"0-SCM time (s)", optional("0-SCM-time", func(r *domain.ShipRecord, v float64) { r.ZeroToScmTime = v }),
		func(r domain.ShipRecord) string { return formatFloat(r.ZeroToScmTime) }},
}

// ColumnNames returns the ship table header in extraction order.
func ColumnNames() []string {
	names := make([]string, len(shipColumns))
	for i, col := range shipColumns {
		names[i] = col.name
	}
	return names
}

// RowValues renders one record in the same order as ColumnNames.
func RowValues(rec domain.ShipRecord) []string {
	values := make([]string, len(shipColumns))
	for i, col := range shipColumns {
		values[i] = col.value(rec)
	}
	return values
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// findCell locates a td by class word. Two of the source classes start
// with a digit, which a plain .class selector cannot express, so every
// lookup goes through the attribute-word form.
func findCell(row *goquery.Selection, class string) *goquery.Selection {
	return row.Find(fmt.Sprintf("td[class~='%s']", class)).First()
}

func linkAttr(row *goquery.Selection, class, attr string) (string, error) {
	link := findCell(row, class).Find("a").First()
	if link.Length() == 0 {
		return "", &CellError{Column: class, Reason: "no link in cell"}
	}
	val, ok := link.Attr(attr)
	if !ok {
		return "", &CellError{Column: class, Reason: fmt.Sprintf("link has no %q attribute", attr)}
	}
	return val, nil
}

func sortValue(row *goquery.Selection, class string) (float64, bool, error) {
	raw, ok := findCell(row, class).Attr("data-sort-value")
	if !ok {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, false, &CellError{Column: class, Reason: fmt.Sprintf("bad sort value %q", raw)}
	}
	return v, true, nil
}

func extractName(row *goquery.Selection, _ *url.URL, rec *domain.ShipRecord) error {
	title, err := linkAttr(row, "Name", "title")
	if err != nil {
		return err
	}
	rec.Name = title
	return nil
}

func extractWiki(row *goquery.Selection, site *url.URL, rec *domain.ShipRecord) error {
	href, err := linkAttr(row, "Name", "href")
	if err != nil {
		return err
	}
	abs, err := utils.ToAbsoluteURL(site, href)
	if err != nil {
		return &CellError{Column: "Name", Reason: fmt.Sprintf("bad href %q", href)}
	}
	rec.Wiki = abs
	return nil
}

func extractManufacturer(row *goquery.Selection, _ *url.URL, rec *domain.ShipRecord) error {
	title, err := linkAttr(row, "Manufacturer", "title")
	if err != nil {
		return err
	}
	rec.Manufacturer = title
	return nil
}

func extractSize(row *goquery.Selection, _ *url.URL, rec *domain.ShipRecord) error {
	cell := findCell(row, "Size")
	if cell.Length() == 0 {
		return &CellError{Column: "Size", Reason: "cell not found"}
	}
	// first text node only, the cell may carry nested sort markup
	rec.Size = strings.TrimSpace(cell.Contents().First().Text())
	return nil
}

// required builds an extractor for a numeric cell whose sort-value
// attribute must be present.
func required(class string, assign func(*domain.ShipRecord, float64)) func(*goquery.Selection, *url.URL, *domain.ShipRecord) error {
	return func(row *goquery.Selection, _ *url.URL, rec *domain.ShipRecord) error {
		v, ok, err := sortValue(row, class)
		if err != nil {
			return err
		}
		if !ok {
			return &CellError{Column: class, Reason: "missing data-sort-value"}
		}
		assign(rec, v)
		return nil
	}
}

// optional builds an extractor for a numeric cell that falls back to the
// SpeedUnknown sentinel when the sort-value attribute is absent.
func optional(class string, assign func(*domain.ShipRecord, float64)) func(*goquery.Selection, *url.URL, *domain.ShipRecord) error {
	return func(row *goquery.Selection, _ *url.URL, rec *domain.ShipRecord) error {
		v, ok, err := sortValue(row, class)
		if err != nil {
			return err
		}
		if !ok {
			v = domain.SpeedUnknown
		}
		assign(rec, v)
		return nil
	}
}

func extractRow(row *goquery.Selection, site *url.URL) (domain.ShipRecord, error) {
	var rec domain.ShipRecord
	for _, col := range shipColumns {
		if err := col.extract(row, site, &rec); err != nil {
			return domain.ShipRecord{}, fmt.Errorf("column %q: %w", col.name, err)
		}
	}
	return rec, nil
}

// extractTable rebuilds document order from the two row style classes and
// extracts one record per row. The source markup splits rows across
// tr.row-odd and tr.row-even; true order strictly alternates starting
// with an odd row, so position 2i is the i-th odd row and 2i+1 the i-th
// even row. The counts are validated up front because a mismatch would
// otherwise corrupt row identity silently.
func extractTable(table *goquery.Selection, site *url.URL) ([]domain.ShipRecord, error) {
	odd := table.Find("tr.row-odd")
	even := table.Find("tr.row-even")
	if even.Length() != odd.Length() && even.Length() != odd.Length()-1 {
		return nil, fmt.Errorf("row classes do not alternate: %d odd rows, %d even rows", odd.Length(), even.Length())
	}

	rows := make([]*goquery.Selection, odd.Length()+even.Length())
	odd.Each(func(i int, s *goquery.Selection) { rows[2*i] = s })
	even.Each(func(i int, s *goquery.Selection) { rows[2*i+1] = s })

	records := make([]domain.ShipRecord, 0, len(rows))
	for i, row := range rows {
		rec, err := extractRow(row, site)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}
