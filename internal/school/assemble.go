package school

import (
	"slices"

	"schoolcutoffs/internal/cutoff"
)

// Assemble decodes the raw cells of one table row into the record under the
// given year. Tracks without a cell are left untouched. It returns the tracks
// whose cell could only be kept verbatim.
func Assemble(record *Record, year int, cells map[Track]string, decoder cutoff.Decoder) []Track {
	var degraded []Track
	for _, track := range Tracks {
		raw, ok := cells[track]
		if !ok {
			continue
		}
		decoded := decoder.Decode(raw)
		record.Set(year, track, decoded)
		if decoded.Degraded {
			degraded = append(degraded, track)
		}
	}
	return degraded
}

func sortDescending(years []int) {
	slices.Sort(years)
	slices.Reverse(years)
}
