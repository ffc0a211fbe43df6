package sgschooling

import (
	"context"
	"fmt"

	"schoolcutoffs/internal/components/assert"
	"schoolcutoffs/internal/components/chrono"
	"schoolcutoffs/internal/components/telemetry"
	"schoolcutoffs/internal/cutoff"
	"schoolcutoffs/internal/school"
)

const (
	report_scraper_listing   = "scraper.listing"
	report_scraper_detail    = "scraper.detail"
	report_scraper_decode    = "scraper.decode"
	report_scraper_schools   = "scraper.schools"
	report_scraper_filtered  = "scraper.filtered"
	report_scraper_completed = "scraper.completed"
	report_scraper_run       = "scraper.run"
)

// Scraper collects the cut-off records of every listed school.
type Scraper struct {
	opts   Options
	client *client
	clock  chrono.API
	tel    telemetry.API
}

func NewScraper(opts Options, clock chrono.API, tel telemetry.API) (Scraper, error) {
	assert.NotNil(clock)
	assert.NotNil(tel)

	opts = opts.WithDefaults()
	tel = telemetry.NewScopedAPI("sgschooling", tel)

	c, err := newClient(opts, tel)
	if err != nil {
		return Scraper{}, err
	}
	return Scraper{
		opts:   opts,
		client: c,
		clock:  clock,
		tel:    tel,
	}, nil
}

func (s Scraper) assemble(record *school.Record, year int, cells map[school.Track]string, decoder cutoff.Decoder) {
	for _, track := range school.Assemble(record, year, cells, decoder) {
		s.tel.ReportWarning(
			report_scraper_decode,
			fmt.Errorf("kept undecodable cut-off verbatim: %q", cells[track]),
			record.Name,
			year,
			string(track),
		)
	}
}

// Listing fetches the listing table and returns one record per school that
// has a cut-off in the listing year, affiliated duplicates are dropped.
func (s Scraper) Listing(ctx context.Context) ([]*school.Record, error) {
	doc, err := s.client.Listing(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch listing: %w", err)
	}
	rows, err := parseListing(ctx, doc, s.client.ListingUrl)
	if err != nil {
		s.tel.ReportBroken(report_scraper_listing, err, s.client.ListingUrl.String())
		return nil, fmt.Errorf("parse listing: %w", err)
	}

	records := []*school.Record{}
	var filtered int64
	for _, row := range rows {
		if isAffiliated(row.Name) {
			filtered++
			continue
		}
		record := school.NewRecord(row.Name, row.DetailURL, s.clock.Now())
		s.assemble(record, s.opts.ListingYear, row.Cells, cutoff.Decoder{})
		if !record.HasCutoffs(s.opts.ListingYear) {
			filtered++
			continue
		}
		records = append(records, record)
	}

	s.tel.ReportCount(report_scraper_schools, int64(len(records)))
	s.tel.ReportCount(report_scraper_filtered, filtered)
	return records, nil
}

// Detail fetches a record's detail page and fills in its town, address and history.
func (s Scraper) Detail(ctx context.Context, record *school.Record) error {
	if record.DetailURL == "" {
		return fmt.Errorf("%s has no detail page", record.Name)
	}
	doc, err := s.client.Detail(ctx, record.DetailURL)
	if err != nil {
		return err
	}

	d := parseDetail(doc, s.opts.HistoryYears)
	record.Town = d.Town
	record.Address = d.Address
	for _, year := range s.opts.HistoryYears {
		cells, ok := d.History[year]
		if !ok {
			continue
		}
		s.assemble(record, year, cells, cutoff.Decoder{CombinedRanges: true})
	}
	return nil
}

// Run scrapes the listing and then each school's detail page one after the
// other. A failed detail page is reported and leaves the record without
// history. When ctx is cancelled the records gathered so far are returned
// along with the context's error.
func (s Scraper) Run(ctx context.Context) ([]*school.Record, error) {
	records, err := s.Listing(ctx)
	if err != nil {
		return nil, err
	}

	var completed int64
	for i, record := range records {
		if err := ctx.Err(); err != nil {
			return records, err
		}

		s.tel.ReportDebug(report_scraper_run, fmt.Sprintf("%d/%d", i+1, len(records)), record.Name)
		err := s.Detail(ctx, record)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return records, ctxErr
			}
			s.tel.ReportWarning(report_scraper_detail, err, record.Name, record.DetailURL)
			continue
		}
		completed++
	}

	s.tel.ReportCount(report_scraper_completed, completed)
	return records, ctx.Err()
}
