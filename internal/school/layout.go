package school

import (
	"fmt"
	"slices"
	"strconv"
	"time"

	"schoolcutoffs/internal/cutoff"
)

const (
	missingCutoff = "-"
	missingInfo   = "N/A"
	offered       = "Y"
	notOffered    = "-"
)

// Layout decides the columns of an export.
type Layout struct {
	// Years are written newest first regardless of their order here.
	Years       []int
	Languages   bool
	Coordinates bool
}

// LayoutFor builds the layout of the given years, optional columns are
// included when at least one record carries them.
func LayoutFor(years []int, records []*Record) Layout {
	layout := Layout{Years: slices.Clone(years)}
	for _, r := range records {
		if r.Languages != nil {
			layout.Languages = true
		}
		if r.Coordinates != nil {
			layout.Coordinates = true
		}
	}
	return layout
}

func (l Layout) years() []int {
	years := slices.Clone(l.Years)
	sortDescending(years)
	return slices.Compact(years)
}

// Header returns the column names.
func (l Layout) Header() []string {
	header := []string{"School Name", "Town", "Address"}
	for _, year := range l.years() {
		for _, track := range Tracks {
			prefix := fmt.Sprintf("%d_%s", year, track)
			header = append(
				header,
				prefix,
				prefix+"_HCL",
				prefix+"_Aff",
				prefix+"_Aff_HCL",
			)
		}
	}
	if l.Languages {
		header = append(header, "HCL", "HTL", "HML")
	}
	if l.Coordinates {
		header = append(header, "Latitude", "Longitude")
	}
	return append(header, "Detail URL", "Scrape Timestamp")
}

func orMissing(s, missing string) string {
	if s == "" {
		return missing
	}
	return s
}

func flag(b bool) string {
	if b {
		return offered
	}
	return notOffered
}

func formatCoordinate(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Row returns the cells of a record, aligned with Header.
func (l Layout) Row(r *Record) []string {
	row := []string{
		r.Name,
		orMissing(r.Town, missingInfo),
		orMissing(r.Address, missingInfo),
	}
	for _, year := range l.years() {
		for _, track := range Tracks {
			c := r.Cutoff(year, track)
			row = append(
				row,
				orMissing(c.Main.Score, missingCutoff),
				orMissing(c.Main.Grade.String(), missingCutoff),
				orMissing(c.Affiliated.Score, missingCutoff),
				orMissing(c.Affiliated.Grade.String(), missingCutoff),
			)
		}
	}
	if l.Languages {
		languages := Languages{}
		if r.Languages != nil {
			languages = *r.Languages
		}
		row = append(row, flag(languages.Chinese), flag(languages.Tamil), flag(languages.Malay))
	}
	if l.Coordinates {
		if r.Coordinates != nil {
			row = append(row, formatCoordinate(r.Coordinates.Latitude), formatCoordinate(r.Coordinates.Longitude))
		} else {
			row = append(row, "", "")
		}
	}
	timestamp := ""
	if !r.ScrapedAt.IsZero() {
		timestamp = r.ScrapedAt.Format(time.RFC3339)
	}
	return append(row, r.DetailURL, timestamp)
}

// Summary renders the main and affiliated values of one cell for display, ex. "6M / 8M".
func Summary(c cutoff.Cutoff) string {
	main := orMissing(c.Main.String(), missingCutoff)
	if !c.Affiliated.Present() {
		return main
	}
	return fmt.Sprintf("%s / %s", main, c.Affiliated.String())
}
