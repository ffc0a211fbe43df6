package sgschooling

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"schoolcutoffs/internal/components/chrono"
	"schoolcutoffs/internal/components/telemetry"
	"schoolcutoffs/internal/cutoff"
	"schoolcutoffs/internal/school"

	"github.com/stretchr/testify/require"
)

var scrapedAt = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func serveFixture(t *testing.T, name string) http.HandlerFunc {
	contents, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "text/html; charset=utf-8")
		w.Write(contents)
	}
}

func newTestSite(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/secondary/cop/all", serveFixture(t, "listing.html"))
	mux.HandleFunc("/school/raffles-institution/", serveFixture(t, "raffles-institution.html"))
	mux.HandleFunc("/school/bukit-panjang-government-high-school/", serveFixture(t, "bukit-panjang-government-high-school.html"))
	mux.HandleFunc("/school/broken-secondary-school/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestScraper(t *testing.T, baseUrl string, tel telemetry.API) Scraper {
	scraper, err := NewScraper(Options{
		BaseUrl:      baseUrl,
		MaxRetries:   1,
		RetryWait:    time.Millisecond,
		RetryMaxWait: time.Millisecond,
	}, chrono.FixedImpl{Time: scrapedAt}, tel)
	require.NoError(t, err)
	return scraper
}

func value(score string, grade cutoff.Grade) cutoff.Value {
	return cutoff.NewValue(score, grade)
}

func TestRun(t *testing.T) {
	server := newTestSite(t)
	recorder := &telemetry.Recorder{}
	scraper := newTestScraper(t, server.URL, recorder)

	records, err := scraper.Run(context.Background())
	require.NoError(t, err)

	names := []string{}
	for _, r := range records {
		names = append(names, r.Name)
	}
	require.Equal(t, []string{
		"Raffles Institution",
		"Bukit Panjang Government High School",
		"Broken Secondary School",
	}, names)

	raffles := records[0]
	require.Equal(t, server.URL+"/school/raffles-institution/", raffles.DetailURL)
	require.Equal(t, "Bishan", raffles.Town)
	require.Equal(t, "1 Raffles Institution Lane", raffles.Address)
	require.Equal(t, scrapedAt, raffles.ScrapedAt)
	require.Equal(t, value("6", cutoff.GradeNone), raffles.Value(2025, school.TrackIP, cutoff.PathwayMain))
	require.Equal(t, value("6", cutoff.GradeNone), raffles.Value(2024, school.TrackIP, cutoff.PathwayMain))
	require.Equal(t, value("7", cutoff.GradeNone), raffles.Value(2023, school.TrackIP, cutoff.PathwayMain))
	require.False(t, raffles.HasCutoffs(2022))

	bukit := records[1]
	require.Equal(t, "Choa Chu Kang", bukit.Town)
	require.Equal(t, "7 Choa Chu Kang Avenue 4", bukit.Address)
	require.Equal(t, cutoff.Cutoff{
		Main:       value("6", cutoff.GradeMerit),
		Affiliated: value("8", cutoff.GradeMerit),
		Encoding:   cutoff.EncodingDualSpaced,
	}, bukit.Cutoff(2025, school.TrackPG3))
	require.Equal(t, value("13", cutoff.GradeNone), bukit.Value(2025, school.TrackPG2, cutoff.PathwayAffiliated))
	require.Equal(t, cutoff.Cutoff{
		Main:       value("9", cutoff.GradeNone),
		Affiliated: value("22", cutoff.GradeNone),
		Encoding:   cutoff.EncodingCombinedRange,
	}, bukit.Cutoff(2024, school.TrackPG3))
	require.Equal(t, value("16", cutoff.GradeNone), bukit.Value(2024, school.TrackPG2, cutoff.PathwayMain))
	require.Equal(t, value("22", cutoff.GradeMerit), bukit.Value(2023, school.TrackPG3, cutoff.PathwayAffiliated))
	require.Equal(t, value("???", cutoff.GradeNone), bukit.Value(2023, school.TrackPG1, cutoff.PathwayMain))

	broken := records[2]
	require.Equal(t, "", broken.Town)
	require.Equal(t, cutoff.Cutoff{
		Main:     value("16", cutoff.GradeNone),
		Encoding: cutoff.EncodingRange,
	}, broken.Cutoff(2025, school.TrackPG1))
	require.Equal(t, []int{2025}, broken.Years())

	warnings := recorder.Reports("warning")
	ids := map[string]int{}
	for _, w := range warnings {
		ids[w.Id]++
	}
	require.Equal(t, 2, ids["sgschooling: "+report_scraper_decode])
	require.Equal(t, 1, ids["sgschooling: "+report_scraper_detail])
	require.Empty(t, recorder.Reports("broken"))
	require.Equal(t, int64(3), recorder.Count("sgschooling: "+report_scraper_schools))
	require.Equal(t, int64(2), recorder.Count("sgschooling: "+report_scraper_filtered))
	require.Equal(t, int64(2), recorder.Count("sgschooling: "+report_scraper_completed))
}

func TestRunListingFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/secondary/cop/all", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><table><tr><th>Nothing</th></tr></table></body></html>`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	recorder := &telemetry.Recorder{}
	records, err := newTestScraper(t, server.URL, recorder).Run(context.Background())
	require.ErrorIs(t, err, ErrListingTableNotFound)
	require.Nil(t, records)
	require.Len(t, recorder.Reports("broken"), 1)
}

// cancelAfter cancels the scrape once the given number of detail pages were started.
type cancelAfter struct {
	*telemetry.Recorder
	started int
	after   int
	cancel  context.CancelFunc
}

func (c *cancelAfter) ReportDebug(msg string, params ...any) {
	if msg != "sgschooling: "+report_scraper_run {
		return
	}
	c.started++
	if c.started > c.after {
		c.cancel()
	}
}

func TestRunCancelled(t *testing.T) {
	server := newTestSite(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tel := &cancelAfter{Recorder: &telemetry.Recorder{}, after: 1, cancel: cancel}
	records, err := newTestScraper(t, server.URL, tel).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, records, 3)

	require.Equal(t, "Bishan", records[0].Town)
	require.Equal(t, "", records[1].Town)
	require.Equal(t, []int{2025}, records[1].Years())
	for _, w := range tel.Reports("warning") {
		require.NotEqual(t, "sgschooling: "+report_scraper_detail, w.Id)
	}
}

func TestRetry(t *testing.T) {
	var attempts atomic.Int32
	listing := serveFixture(t, "listing.html")
	mux := http.NewServeMux()
	mux.HandleFunc("/secondary/cop/all", func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		listing(w, r)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	scraper, err := NewScraper(Options{
		BaseUrl:      server.URL,
		MaxRetries:   3,
		RetryWait:    time.Millisecond,
		RetryMaxWait: 5 * time.Millisecond,
	}, chrono.FixedImpl{Time: scrapedAt}, &telemetry.Recorder{})
	require.NoError(t, err)

	records, err := scraper.Listing(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, int32(3), attempts.Load())
}

func TestRetryExhausted(t *testing.T) {
	var attempts atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/secondary/cop/all", func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	scraper, err := NewScraper(Options{
		BaseUrl:      server.URL,
		MaxRetries:   2,
		RetryWait:    time.Millisecond,
		RetryMaxWait: 5 * time.Millisecond,
	}, chrono.FixedImpl{Time: scrapedAt}, &telemetry.Recorder{})
	require.NoError(t, err)

	_, err = scraper.Listing(context.Background())
	require.ErrorContains(t, err, "429")
	require.Equal(t, int32(2), attempts.Load())
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{}.WithDefaults()
	require.Equal(t, "https://sgschooling.com", opts.BaseUrl)
	require.Equal(t, "/secondary/cop/all", opts.ListingPath)
	require.Equal(t, 3, opts.MaxRetries)
	require.Equal(t, 30*time.Second, opts.Timeout)
	require.Equal(t, []int{2025, 2024, 2023}, opts.Years())
}
