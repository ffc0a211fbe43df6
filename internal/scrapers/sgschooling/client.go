package sgschooling

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"

	"schoolcutoffs/internal/components/assert"
	"schoolcutoffs/internal/components/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	report_client_get_listing = "client.get-listing"
	report_client_get_detail  = "client.get-detail"
)

type client struct {
	BaseUrl    *url.URL
	ListingUrl *url.URL
	Http       *resty.Client

	tel telemetry.API
}

func retryable(res *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	code := res.StatusCode()
	return code == http.StatusTooManyRequests || code >= 500
}

func newClient(opts Options, tel telemetry.API) (*client, error) {
	assert.NotNil(tel)
	assert.NotEmptyStr(opts.BaseUrl)
	assert.Positive(opts.MaxRetries)

	parsedBaseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}
	listingUrl, err := parsedBaseUrl.Parse(opts.ListingPath)
	if err != nil {
		return nil, err
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(opts.BaseUrl)
	if opts.CloudflareBypass {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}
	httpClient.SetHeader("user-agent", opts.UserAgent)
	httpClient.SetTimeout(opts.Timeout)

	httpClient.SetRetryCount(max(opts.MaxRetries-1, 0))
	httpClient.SetRetryWaitTime(opts.RetryWait)
	httpClient.SetRetryMaxWaitTime(opts.RetryMaxWait)
	httpClient.AddRetryCondition(retryable)

	// one request per RequestDelay, retries included
	limit := rate.Inf
	if opts.RequestDelay > 0 {
		limit = rate.Every(opts.RequestDelay)
	}
	rateLimiter := rate.NewLimiter(limit, 1)
	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return rateLimiter.Wait(req.Context())
	})

	var output telemetry.InstrumentOutput
	if opts.DumpDir != "" {
		fsOutput, err := telemetry.NewFilesystemOutput(opts.DumpDir)
		if err != nil {
			return nil, err
		}
		output = fsOutput
	}
	telemetry.InstrumentResty(httpClient, tel, output)

	c := &client{
		BaseUrl:    parsedBaseUrl,
		ListingUrl: listingUrl,
		Http:       httpClient,
		tel:        tel,
	}
	return c, nil
}

func (c *client) getDocument(ctx context.Context, endpoint string) (*goquery.Document, error) {
	res, err := c.Http.R().
		SetContext(ctx).
		Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("fetch: unexpected status %s", res.Status())
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return doc, nil
}

// Listing fetches the cut-off listing page.
func (c *client) Listing(ctx context.Context) (*goquery.Document, error) {
	endpoint := c.ListingUrl.String()
	c.tel.ReportDebug(report_client_get_listing, endpoint)

	doc, err := c.getDocument(ctx, endpoint)
	if err != nil {
		c.tel.ReportBroken(report_client_get_listing, err, endpoint)
		return nil, err
	}
	return doc, nil
}

// Detail fetches a school's detail page, failures are left to the caller to report.
func (c *client) Detail(ctx context.Context, endpoint string) (*goquery.Document, error) {
	c.tel.ReportDebug(report_client_get_detail, endpoint)
	return c.getDocument(ctx, endpoint)
}
