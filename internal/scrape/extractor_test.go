package scrape

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shipscraper/internal/config"
	"shipscraper/internal/domain"
	"shipscraper/internal/fetch"
	"shipscraper/internal/monitoring"
)

func docFrom(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func siteURL(t *testing.T) *url.URL {
	t.Helper()
	u, err := url.Parse("https://starcitizen.tools")
	require.NoError(t, err)
	return u
}

type rowOpts struct {
	class    string
	name     string
	noLength bool
	noSpeeds bool
}

func shipRowHTML(o rowOpts) string {
	slug := strings.ReplaceAll(o.name, " ", "_")
	lengthAttr := ` data-sort-value="18.5"`
	if o.noLength {
		lengthAttr = ""
	}
	speeds := `<td class="Max-speed" data-sort-value="1050">1,050</td>
		<td class="SCM-speed" data-sort-value="190">190</td>
		<td class="0-SCM-time" data-sort-value="7.4">7.4</td>`
	if o.noSpeeds {
		speeds = `<td class="Max-speed">&mdash;</td>
		<td class="SCM-speed">&mdash;</td>
		<td class="0-SCM-time">&mdash;</td>`
	}
	return fmt.Sprintf(`<tr class=%q>
		<td class="Name"><a href="/%s" title=%q>%s</a></td>
		<td class="Manufacturer"><a href="/RSI" title="Roberts Space Industries">RSI</a></td>
		<td class="Size">Small<span class="sortkey">1</span></td>
		<td class="Length"%s>18.5 m</td>
		<td class="Width" data-sort-value="8">8 m</td>
		<td class="Height" data-sort-value="4">4 m</td>
		%s
	</tr>`, o.class, slug, o.name, o.name, lengthAttr, speeds)
}

func rowSelection(t *testing.T, rowHTML string) *goquery.Selection {
	t.Helper()
	doc := docFrom(t, "<table>"+rowHTML+"</table>")
	row := doc.Find("tr").First()
	require.Equal(t, 1, row.Length())
	return row
}

func TestExtractRowTypedFields(t *testing.T) {
	row := rowSelection(t, shipRowHTML(rowOpts{class: "row-odd", name: "Aurora MR"}))

	rec, err := extractRow(row, siteURL(t))
	require.NoError(t, err)

	assert.Equal(t, "Aurora MR", rec.Name)
	assert.Equal(t, "https://starcitizen.tools/Aurora_MR", rec.Wiki)
	assert.Equal(t, "Roberts Space Industries", rec.Manufacturer)
	assert.Equal(t, "Small", rec.Size)
	assert.Equal(t, 18.5, rec.Length)
	assert.Equal(t, 8.0, rec.Width)
	assert.Equal(t, 4.0, rec.Height)
	assert.Equal(t, 1050.0, rec.MaxSpeed)
	assert.Equal(t, 190.0, rec.ScmSpeed)
	assert.Equal(t, 7.4, rec.ZeroToScmTime)
}

func TestOptionalNumericMissingYieldsSentinel(t *testing.T) {
	row := rowSelection(t, shipRowHTML(rowOpts{class: "row-odd", name: "Aurora MR", noSpeeds: true}))

	rec, err := extractRow(row, siteURL(t))
	require.NoError(t, err)

	assert.Equal(t, domain.SpeedUnknown, rec.MaxSpeed)
	assert.Equal(t, domain.SpeedUnknown, rec.ScmSpeed)
	assert.Equal(t, domain.SpeedUnknown, rec.ZeroToScmTime)
}

func TestRequiredNumericMissingFails(t *testing.T) {
	row := rowSelection(t, shipRowHTML(rowOpts{class: "row-odd", name: "Aurora MR", noLength: true}))

	_, err := extractRow(row, siteURL(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Length")
}

func tableHTML(rows ...string) string {
	return `<table class="template-pledgevehiclelist"><tbody>` + strings.Join(rows, "\n") + `</tbody></table>`
}

func TestExtractTableReconstructsRowOrder(t *testing.T) {
	// source markup groups rows by style class, not document order
	html := tableHTML(
		shipRowHTML(rowOpts{class: "row-odd", name: "First"}),
		shipRowHTML(rowOpts{class: "row-odd", name: "Third"}),
		shipRowHTML(rowOpts{class: "row-even", name: "Second"}),
		shipRowHTML(rowOpts{class: "row-even", name: "Fourth"}),
	)
	table := docFrom(t, html).Find("table").First()

	records, err := extractTable(table, siteURL(t))
	require.NoError(t, err)
	require.Len(t, records, 4)

	names := make([]string, len(records))
	for i, rec := range records {
		names[i] = rec.Name
	}
	assert.Equal(t, []string{"First", "Second", "Third", "Fourth"}, names)
}

func TestExtractTableOddCountMayExceedEvenByOne(t *testing.T) {
	html := tableHTML(
		shipRowHTML(rowOpts{class: "row-odd", name: "First"}),
		shipRowHTML(rowOpts{class: "row-odd", name: "Third"}),
		shipRowHTML(rowOpts{class: "row-even", name: "Second"}),
	)
	table := docFrom(t, html).Find("table").First()

	records, err := extractTable(table, siteURL(t))
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Third", records[2].Name)
}

func TestExtractTableRejectsMismatchedRowCounts(t *testing.T) {
	html := tableHTML(
		shipRowHTML(rowOpts{class: "row-odd", name: "First"}),
		shipRowHTML(rowOpts{class: "row-even", name: "Second"}),
		shipRowHTML(rowOpts{class: "row-even", name: "Orphan"}),
	)
	table := docFrom(t, html).Find("table").First()

	_, err := extractTable(table, siteURL(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "alternate")
}

func TestColumnRegistryStaysAligned(t *testing.T) {
	names := ColumnNames()
	values := RowValues(domain.ShipRecord{})
	require.Equal(t, len(names), len(values))
	assert.Equal(t, "Name", names[0])
}

func testClient(cfg *config.Config) *fetch.Client {
	return fetch.NewClient(cfg, nil, monitoring.NewMetrics(), zap.NewNop())
}

func TestBuildShips(t *testing.T) {
	listing := "<html><body>" + tableHTML(
		shipRowHTML(rowOpts{class: "row-odd", name: "Aurora MR"}),
		shipRowHTML(rowOpts{class: "row-even", name: "Avenger Titan", noSpeeds: true}),
	) + "</body></html>"

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, listing)
	}))
	defer ts.Close()

	cfg := &config.Config{ListingURL: ts.URL, SiteRoot: ts.URL}
	ships, err := BuildShips(context.Background(), testClient(cfg), cfg)
	require.NoError(t, err)
	require.Equal(t, 2, ships.Len())

	records := ships.Records()
	assert.Equal(t, "Aurora MR", records[0].Name)
	assert.Equal(t, ts.URL+"/Aurora_MR", records[0].Wiki)
	assert.Equal(t, "Avenger Titan", records[1].Name)
	assert.Equal(t, domain.SpeedUnknown, records[1].MaxSpeed)

	titan, ok := ships.Get("Avenger Titan")
	require.True(t, ok)
	assert.Equal(t, 18.5, titan.Length)
}

func TestBuildShipsTableNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body><table class='wikitable'></table></body></html>")
	}))
	defer ts.Close()

	cfg := &config.Config{ListingURL: ts.URL, SiteRoot: ts.URL}
	_, err := BuildShips(context.Background(), testClient(cfg), cfg)
	require.ErrorIs(t, err, ErrTableNotFound)
}
