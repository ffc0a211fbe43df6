package schoolfinder

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"schoolcutoffs/internal/components/assert"
	"schoolcutoffs/internal/components/telemetry"
	"schoolcutoffs/internal/enrich"
	"schoolcutoffs/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
)

const (
	report_scraper_subject      = "scraper.subject"
	report_scraper_page         = "scraper.page"
	report_scraper_navigate     = "scraper.navigate"
	report_scraper_collect_page = "scraper.collect-page"
)

const (
	DefaultBaseUrl = "https://www.moe.gov.sg/schoolfinder"
	pageSize       = 20

	schoolSelector = `a[href*="schooldetail"]`
)

// clicks the first enabled "next page" button, evaluates to whether one was found
const clickNextScript = `(() => {
	const buttons = document.querySelectorAll('button.moe-pagination__btn.dir--right');
	for (const btn of buttons) {
		if (!btn.disabled && btn.getAttribute('aria-disabled') !== 'true') {
			btn.click();
			return true;
		}
	}
	return false;
})()`

// Subject is a Higher Mother Tongue subject as named by the SchoolFinder filters.
type Subject string

const (
	HigherChinese Subject = "Higher Chinese Language"
	HigherTamil   Subject = "Higher Tamil Language"
	HigherMalay   Subject = "Higher Malay Language"
)

var Subjects = []Subject{HigherChinese, HigherTamil, HigherMalay}

type Options struct {
	BaseUrl   string
	Headless  bool
	UserAgent string
	// PageDelay is how long to let a page settle after it becomes visible.
	PageDelay time.Duration
	// Timeout bounds the collection of one subject.
	Timeout time.Duration
}

// BuildURL returns the secondary school listing filtered by a subject.
func BuildURL(base string, subject Subject) string {
	quote := func(s string) string {
		return url.PathEscape(s)
	}
	return fmt.Sprintf(
		"%s?journey=%s&q=*&fq=%s&fq=%s&sort=%s",
		base,
		quote("Secondary school"),
		quote(`school_journey_ss:"Secondary school"`),
		quote(fmt.Sprintf(`subjects_offered_ss:("%s")`, subject)),
		quote("slug_s asc"),
	)
}

var errNoNextPage = errors.New("no enabled next page button")

var totalRegex = regexp.MustCompile(`Showing (\d+) Secondary schools`)

// parseTotal reads the number of results announced by the page.
func parseTotal(text string) (int, error) {
	groups := totalRegex.FindStringSubmatch(text)
	if groups == nil {
		return 0, fmt.Errorf("could not find result count")
	}
	return strconv.Atoi(groups[1])
}

// extractNames returns the school names listed on a result page.
func extractNames(doc *goquery.Document) []string {
	names := []string{}
	doc.Find(schoolSelector).Each(func(_ int, link *goquery.Selection) {
		p := link.Find("p").First()
		if p.Length() == 0 {
			return
		}
		name := htmlutil.SelectionText(p)
		if name == "" || strings.Contains(name, "Add school") {
			return
		}
		names = append(names, name)
	})
	return names
}

func dedupe(names []string) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

func pages(total int) int {
	return (total + pageSize - 1) / pageSize
}

// Scraper drives a headless browser through SchoolFinder.
type Scraper struct {
	opts Options
	tel  telemetry.API
}

func NewScraper(opts Options, tel telemetry.API) Scraper {
	assert.NotNil(tel)
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.PageDelay <= 0 {
		opts.PageDelay = 2 * time.Second
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Minute
	}
	return Scraper{
		opts: opts,
		tel:  telemetry.NewScopedAPI("schoolfinder", tel),
	}
}

func (s Scraper) newBrowser(ctx context.Context) (context.Context, context.CancelFunc) {
	options := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", s.opts.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1440, 900),
	)
	if s.opts.UserAgent != "" {
		options = append(options, chromedp.UserAgent(s.opts.UserAgent))
	}
	allocatorCtx, cancelAllocator := chromedp.NewExecAllocator(ctx, options...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocatorCtx)
	return browserCtx, func() {
		cancelBrowser()
		cancelAllocator()
	}
}

func (s Scraper) currentPage(ctx context.Context) (*goquery.Document, error) {
	var html string
	err := chromedp.Run(
		ctx,
		chromedp.WaitVisible(schoolSelector, chromedp.ByQuery),
		chromedp.Sleep(s.opts.PageDelay),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// Subject collects every school offering the subject, in listing order.
func (s Scraper) Subject(ctx context.Context, subject Subject) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	endpoint := BuildURL(s.opts.BaseUrl, subject)
	s.tel.ReportDebug(report_scraper_navigate, string(subject), endpoint)
	err := chromedp.Run(ctx, chromedp.Navigate(endpoint))
	if err != nil {
		return nil, fmt.Errorf("navigate %s: %w", endpoint, err)
	}
	doc, err := s.currentPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("load first page: %w", err)
	}
	total, err := parseTotal(htmlutil.SelectionText(doc.Find("body")))
	if err != nil {
		return nil, err
	}
	expected := pages(total)

	names := []string{}
	for page := 1; ; page++ {
		found := extractNames(doc)
		names = append(names, found...)
		s.tel.ReportDebug(report_scraper_collect_page, string(subject), page, len(found))
		if page >= expected {
			break
		}

		var clicked bool
		err = chromedp.Run(ctx, chromedp.Evaluate(clickNextScript, &clicked))
		if err == nil && !clicked {
			err = errNoNextPage
		}
		if err != nil {
			s.tel.ReportWarning(report_scraper_page, fmt.Errorf("advance past page %d: %w", page, err), string(subject))
			break
		}
		doc, err = s.currentPage(ctx)
		if err != nil {
			s.tel.ReportWarning(report_scraper_page, fmt.Errorf("load page %d: %w", page+1, err), string(subject))
			break
		}
	}

	names = dedupe(names)
	if len(names) != total {
		s.tel.ReportWarning(report_scraper_subject, fmt.Errorf("collected %d of %d schools", len(names), total), string(subject))
	}
	return names, nil
}

// Collect runs every subject in one browser session.
func (s Scraper) Collect(ctx context.Context) (enrich.Offerings, error) {
	ctx, cancel := s.newBrowser(ctx)
	defer cancel()

	// starts the browser on the session context, not a per subject one
	err := chromedp.Run(ctx)
	if err != nil {
		s.tel.ReportBroken(report_scraper_subject, err)
		return enrich.Offerings{}, fmt.Errorf("start browser: %w", err)
	}

	out := enrich.Offerings{}
	targets := map[Subject]*[]string{
		HigherChinese: &out.Chinese,
		HigherTamil:   &out.Tamil,
		HigherMalay:   &out.Malay,
	}
	for _, subject := range Subjects {
		names, err := s.Subject(ctx, subject)
		if err != nil {
			s.tel.ReportBroken(report_scraper_subject, err, string(subject))
			return out, fmt.Errorf("%s: %w", subject, err)
		}
		*targets[subject] = names
		s.tel.ReportCount(report_scraper_subject, int64(len(names)))
	}
	return out, nil
}
