package sgschooling

import (
	"context"
	"errors"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"schoolcutoffs/internal/school"
	"schoolcutoffs/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

var ErrListingTableNotFound = errors.New("could not find listing table")

// header maps each header label of a table to its column index.
func header(table *goquery.Selection) map[string]int {
	columns := map[string]int{}
	table.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cells := row.Find("th")
		if cells.Length() == 0 {
			return true
		}
		cells.Each(func(i int, th *goquery.Selection) {
			label := htmlutil.SelectionText(th)
			if _, ok := columns[label]; !ok {
				columns[label] = i
			}
		})
		return false
	})
	return columns
}

// findTable returns the first table whose header has every given label.
func findTable(doc *goquery.Document, labels ...string) (*goquery.Selection, map[string]int) {
	var found *goquery.Selection
	var columns map[string]int
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		h := header(table)
		for _, label := range labels {
			if _, ok := h[label]; !ok {
				return true
			}
		}
		found = table
		columns = h
		return false
	})
	return found, columns
}

// dataRows returns the rows of a table that hold td cells.
func dataRows(table *goquery.Selection) []*goquery.Selection {
	rows := []*goquery.Selection{}
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		if row.Find("td").Length() == 0 {
			return
		}
		rows = append(rows, row)
	})
	return rows
}

// trackCells picks the raw cut-off cell of every track column present in the row.
func trackCells(cells *goquery.Selection, columns map[string]int) map[school.Track]string {
	out := map[school.Track]string{}
	for _, track := range school.Tracks {
		idx, ok := columns[string(track)]
		if !ok || idx >= cells.Length() {
			continue
		}
		out[track] = htmlutil.SelectionText(cells.Eq(idx))
	}
	return out
}

func isAffiliated(name string) bool {
	return strings.Contains(name, "↳") || strings.Contains(name, "Affiliated")
}

// parseListing reads every school row of the listing table, rows without a
// school link are skipped.
func parseListing(ctx context.Context, doc *goquery.Document, base *url.URL) ([]listingRow, error) {
	table, columns := findTable(doc, "School", string(school.TrackIP))
	if table == nil {
		return nil, ErrListingTableNotFound
	}
	schoolIdx := columns["School"]

	rows := []listingRow{}
	for _, row := range dataRows(table) {
		cells := row.Find("td")
		if schoolIdx >= cells.Length() {
			continue
		}
		anchors := htmlutil.GetAnchors(ctx, cells.Eq(schoolIdx).Find("a[href]"), base)
		if len(anchors) == 0 || anchors[0].Name == "" {
			continue
		}
		rows = append(rows, listingRow{
			Name:      anchors[0].Name,
			DetailURL: anchors[0].Href,
			Cells:     trackCells(cells, columns),
		})
	}
	return rows, nil
}

// infoField finds the value of a two cell "label | value" row in any table.
func infoField(doc *goquery.Document, label string) string {
	var value string
	doc.Find("table tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cells := row.Find("td, th")
		if cells.Length() < 2 {
			return true
		}
		if !strings.EqualFold(htmlutil.SelectionText(cells.Eq(0)), label) {
			return true
		}
		value = htmlutil.SelectionText(cells.Eq(1))
		return false
	})
	return value
}

// parseDetail reads the town, the address and the history rows of the given years.
func parseDetail(doc *goquery.Document, years []int) detail {
	d := detail{
		Town:    infoField(doc, "Town"),
		Address: infoField(doc, "Address"),
		History: map[int]map[school.Track]string{},
	}

	table, columns := findTable(doc, "Year", string(school.TrackIP))
	if table == nil {
		return d
	}
	yearIdx := columns["Year"]
	for _, row := range dataRows(table) {
		cells := row.Find("td")
		if yearIdx >= cells.Length() {
			continue
		}
		year, err := strconv.Atoi(htmlutil.SelectionText(cells.Eq(yearIdx)))
		if err != nil || !slices.Contains(years, year) {
			continue
		}
		if _, seen := d.History[year]; seen {
			continue
		}
		d.History[year] = trackCells(cells, columns)
	}
	return d
}
