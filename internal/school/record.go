package school

import (
	"time"

	"schoolcutoffs/internal/cutoff"
)

// Track is a posting group column of the cut-off tables.
type Track string

const (
	TrackIP  Track = "IP"
	TrackPG3 Track = "PG3"
	TrackPG2 Track = "PG2"
	TrackPG1 Track = "PG1"
)

// Tracks lists every track in column order.
var Tracks = []Track{TrackIP, TrackPG3, TrackPG2, TrackPG1}

// ParseTrack matches a table header label against the known tracks.
func ParseTrack(label string) (Track, bool) {
	for _, t := range Tracks {
		if string(t) == label {
			return t, true
		}
	}
	return "", false
}

// Key addresses one cut-off of a record.
type Key struct {
	Year  int
	Track Track
}

// Languages are the Higher Mother Tongue subjects a school offers.
type Languages struct {
	Chinese bool
	Tamil   bool
	Malay   bool
}

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Record is everything known about one school.
type Record struct {
	Name      string
	DetailURL string
	Town      string
	Address   string
	ScrapedAt time.Time

	Cutoffs map[Key]cutoff.Cutoff

	// Languages is nil until offerings have been applied.
	Languages *Languages
	// Coordinates is nil when the school has not been geocoded.
	Coordinates *Coordinates
}

func NewRecord(name, detailURL string, scrapedAt time.Time) *Record {
	return &Record{
		Name:      name,
		DetailURL: detailURL,
		ScrapedAt: scrapedAt,
		Cutoffs:   map[Key]cutoff.Cutoff{},
	}
}

// Set stores the decoded cut-off of a year and track, replacing any previous one.
func (r *Record) Set(year int, track Track, c cutoff.Cutoff) {
	if r.Cutoffs == nil {
		r.Cutoffs = map[Key]cutoff.Cutoff{}
	}
	r.Cutoffs[Key{Year: year, Track: track}] = c
}

// Cutoff returns the cut-off of a year and track, absent values when it was never set.
func (r *Record) Cutoff(year int, track Track) cutoff.Cutoff {
	return r.Cutoffs[Key{Year: year, Track: track}]
}

// Value returns a single pathway value of a year and track.
func (r *Record) Value(year int, track Track, pathway cutoff.Pathway) cutoff.Value {
	return r.Cutoff(year, track).For(pathway)
}

// HasCutoffs reports whether any track of the year has a main pathway value.
func (r *Record) HasCutoffs(year int) bool {
	for _, t := range Tracks {
		if r.Value(year, t, cutoff.PathwayMain).Present() {
			return true
		}
	}
	return false
}

// Years returns the distinct years that hold at least one cut-off, newest first.
func (r *Record) Years() []int {
	seen := map[int]struct{}{}
	years := []int{}
	for key := range r.Cutoffs {
		if _, ok := seen[key.Year]; ok {
			continue
		}
		seen[key.Year] = struct{}{}
		years = append(years, key.Year)
	}
	sortDescending(years)
	return years
}
