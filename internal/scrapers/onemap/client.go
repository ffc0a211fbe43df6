package onemap

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"schoolcutoffs/internal/components/assert"
	"schoolcutoffs/internal/components/telemetry"
	"schoolcutoffs/internal/enrich"
	"schoolcutoffs/internal/school"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	report_geocoder_search  = "geocoder.search"
	report_geocoder_missing = "geocoder.missing"
	report_geocoder_found   = "geocoder.found"
	report_geocoder_located = "geocoder.located"
)

const DefaultBaseUrl = "https://www.onemap.gov.sg"

type Options struct {
	BaseUrl string
	// RequestDelay spaces out searches, the API allows roughly 250 requests a minute.
	RequestDelay time.Duration
	Timeout      time.Duration
}

type searchResult struct {
	Latitude  string `json:"LATITUDE"`
	Longitude string `json:"LONGITUDE"`
	Address   string `json:"ADDRESS"`
}

type searchResponse struct {
	Found   int            `json:"found"`
	Results []searchResult `json:"results"`
}

// Geocoder resolves addresses through the OneMap search API.
type Geocoder struct {
	Http *resty.Client
	tel  telemetry.API
}

func NewGeocoder(opts Options, tel telemetry.API) Geocoder {
	assert.NotNil(tel)
	tel = telemetry.NewScopedAPI("onemap", tel)

	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(opts.BaseUrl)
	httpClient.SetTimeout(opts.Timeout)

	limit := rate.Inf
	if opts.RequestDelay > 0 {
		limit = rate.Every(opts.RequestDelay)
	}
	rateLimiter := rate.NewLimiter(limit, 1)
	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return rateLimiter.Wait(req.Context())
	})
	telemetry.InstrumentResty(httpClient, tel, nil)

	return Geocoder{Http: httpClient, tel: tel}
}

// Geocode returns the coordinates of the first search result, ok is false
// when the search has no results.
func (g Geocoder) Geocode(ctx context.Context, address string) (coords school.Coordinates, ok bool, err error) {
	var body searchResponse
	res, err := g.Http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"searchVal":      address,
			"returnGeom":     "Y",
			"getAddrDetails": "Y",
			"pageNum":        "1",
		}).
		SetResult(&body).
		Get("/api/common/elastic/search")
	if err != nil {
		return coords, false, fmt.Errorf("search: %w", err)
	}
	if res.IsError() {
		return coords, false, fmt.Errorf("search: unexpected status %s", res.Status())
	}
	if body.Found == 0 || len(body.Results) == 0 {
		return coords, false, nil
	}

	first := body.Results[0]
	coords.Latitude, err = strconv.ParseFloat(first.Latitude, 64)
	if err != nil {
		return coords, false, fmt.Errorf("parse latitude %q: %w", first.Latitude, err)
	}
	coords.Longitude, err = strconv.ParseFloat(first.Longitude, 64)
	if err != nil {
		return coords, false, fmt.Errorf("parse longitude %q: %w", first.Longitude, err)
	}
	return coords, true, nil
}

// Fill geocodes every record that is not in the cache yet and adds it. Records
// without an address and addresses that cannot be found are reported and skipped.
func (g Geocoder) Fill(ctx context.Context, records []*school.Record, cache enrich.Coordinates) error {
	var found int64
	for _, r := range records {
		if _, ok := cache[r.Name]; ok {
			continue
		}
		if r.Address == "" {
			g.tel.ReportWarning(report_geocoder_missing, "no address", r.Name)
			continue
		}

		coords, ok, err := g.Geocode(ctx, r.Address)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			g.tel.ReportWarning(report_geocoder_search, err, r.Name, r.Address)
			continue
		}
		if !ok {
			g.tel.ReportWarning(report_geocoder_missing, "not found", r.Name, r.Address)
			continue
		}
		g.tel.ReportDebug(report_geocoder_located, r.Name, coords.Latitude, coords.Longitude)
		cache[r.Name] = coords
		found++
	}
	g.tel.ReportCount(report_geocoder_found, found)
	return nil
}
