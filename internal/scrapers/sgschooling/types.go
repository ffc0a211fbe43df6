package sgschooling

import (
	"time"

	"schoolcutoffs/internal/school"
)

// Options configures a Scraper, zero fields fall back to the defaults below.
type Options struct {
	BaseUrl      string
	ListingPath  string
	RequestDelay time.Duration
	// MaxRetries is the total number of attempts made for one request.
	MaxRetries int
	Timeout    time.Duration
	UserAgent  string
	// CloudflareBypass swaps the transport for one presenting a browser TLS fingerprint.
	CloudflareBypass bool
	// DumpDir receives a full dump of every request/response when set.
	DumpDir string

	ListingYear  int
	HistoryYears []int

	// RetryWait and RetryMaxWait bound the wait between attempts.
	RetryWait    time.Duration
	RetryMaxWait time.Duration
}

const (
	DefaultBaseUrl     = "https://sgschooling.com"
	DefaultListingPath = "/secondary/cop/all"
	DefaultUserAgent   = "Mozilla/5.0 (Educational Research Bot)"
	DefaultListingYear = 2025
)

var DefaultHistoryYears = []int{2024, 2023}

// WithDefaults fills in every unset option.
func (o Options) WithDefaults() Options {
	if o.BaseUrl == "" {
		o.BaseUrl = DefaultBaseUrl
	}
	if o.ListingPath == "" {
		o.ListingPath = DefaultListingPath
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = 3
	}
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.ListingYear == 0 {
		o.ListingYear = DefaultListingYear
	}
	if len(o.HistoryYears) == 0 {
		o.HistoryYears = DefaultHistoryYears
	}
	if o.RetryWait <= 0 {
		o.RetryWait = 4 * time.Second
	}
	if o.RetryMaxWait <= 0 {
		o.RetryMaxWait = 10 * time.Second
	}
	return o
}

// Years returns the listing year followed by the history years.
func (o Options) Years() []int {
	return append([]int{o.ListingYear}, o.HistoryYears...)
}

// listingRow is one school row of the listing table.
type listingRow struct {
	Name      string
	DetailURL string
	Cells     map[school.Track]string
}

// detail is what a school's detail page contributes.
type detail struct {
	Town    string
	Address string
	// History holds the raw cells of each history year found on the page.
	History map[int]map[school.Track]string
}
