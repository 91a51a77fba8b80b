// client.go contains the transport to the portal, it holds the student's
// session cookies and knows the fixed endpoints but none of the page parsing.

package kabinet

import (
	"context"
	"fmt"
	"kabinet-assist/internal/components/assert"
	"kabinet-assist/internal/components/telemetry"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	report_client_fetch_listing   = "client.fetch-listing"
	report_client_fetch_detail    = "client.fetch-detail"
	report_client_fetch_years     = "client.fetch-years"
	report_client_fetch_semesters = "client.fetch-semesters"
)

const (
	DefaultBaseUrl           = "https://kabinet.unec.edu.az/az"
	DefaultTimeout           = 30 * time.Second
	DefaultRequestsPerSecond = 4

	endpointListing   = "/studentEvaluation"
	endpointDetail    = "/studentEvaluationPopup"
	endpointSemesters = "/getEduSemester"

	userAgent       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"
	acceptHtml      = "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8"
	acceptLanguage  = "az,en;q=0.5"
	xmlHttpRequest  = "XMLHttpRequest"
	formContentType = "application/x-www-form-urlencoded"
)

// Options configures a Client, zero values fall back to the defaults.
type Options struct {
	BaseUrl string
	// Cookies are the session cookies of an already logged in browser.
	Cookies map[string]string
	// RawCookie is a `Cookie` header value (`name=value; other=value`),
	// merged over Cookies.
	RawCookie         string
	Timeout           time.Duration
	RequestsPerSecond float64
	CloudflareBypass  bool
	// Dump receives every raw request/response pair when set.
	Dump telemetry.InstrumentOutput
}

// Client performs credentialed requests against the portal.
type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client

	tel telemetry.API
}

// ParseCookieHeader parses a `Cookie` header value into cookies.
func ParseCookieHeader(raw string) []*http.Cookie {
	req := &http.Request{Header: http.Header{"Cookie": {raw}}}
	return req.Cookies()
}

func NewClient(opts Options, tel telemetry.API) (*Client, error) {
	assert.NotNil(tel, "tel")

	tel = telemetry.NewScopedAPI("kabinet_client", tel)

	baseUrl := opts.BaseUrl
	if baseUrl == "" {
		baseUrl = DefaultBaseUrl
	}
	baseUrl = strings.TrimSuffix(baseUrl, "/")
	parsedBaseUrl, err := url.Parse(baseUrl)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsedBaseUrl.Scheme == "" || parsedBaseUrl.Host == "" {
		return nil, fmt.Errorf("base url must be absolute: %q", baseUrl)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	var cookies []*http.Cookie
	for name, value := range opts.Cookies {
		cookies = append(cookies, &http.Cookie{Name: name, Value: value})
	}
	cookies = append(cookies, ParseCookieHeader(opts.RawCookie)...)
	for _, c := range cookies {
		c.Path = "/"
	}
	jar.SetCookies(parsedBaseUrl, cookies)

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(baseUrl)
	httpClient.SetCookieJar(jar)
	if opts.CloudflareBypass {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}

	httpClient.SetHeader("user-agent", userAgent)
	httpClient.SetHeader("accept-language", acceptLanguage)
	httpClient.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(parsedBaseUrl.Hostname()))
	httpClient.SetTimeout(timeout)

	// the driver already spaces out detail requests, this only caps bursts
	// from concurrent callers sharing the same session
	limit := rate.Limit(opts.RequestsPerSecond)
	if opts.RequestsPerSecond <= 0 {
		limit = DefaultRequestsPerSecond
	}
	rateLimiter := rate.NewLimiter(limit, 1)
	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return rateLimiter.Wait(req.Context())
	})

	telemetry.InstrumentResty(httpClient, tel, opts.Dump)

	return &Client{
		BaseUrl: parsedBaseUrl,
		Http:    httpClient,
		tel:     tel,
	}, nil
}

func isSuccess(res *resty.Response) bool {
	return res.StatusCode() >= 200 && res.StatusCode() < 300
}

// getPage performs a GET for a full html page, it fails with a *TransportError.
func (c *Client) getPage(ctx context.Context, reportId, endpoint string, query map[string]string) (string, error) {
	res, err := c.Http.R().
		SetContext(ctx).
		SetHeader("accept", acceptHtml).
		SetHeader("cache-control", "no-cache").
		SetHeader("pragma", "no-cache").
		SetQueryParams(query).
		Get(endpoint)
	if err != nil {
		c.tel.ReportWarning(reportId, err)
		return "", &TransportError{Endpoint: endpoint, Cause: err}
	}
	if !isSuccess(res) {
		c.tel.ReportWarning(reportId, fmt.Errorf("unexpected status %d", res.StatusCode()))
		return "", &TransportError{Endpoint: endpoint, Status: res.StatusCode()}
	}
	return res.String(), nil
}

// postForm performs an ajax style form POST, it returns the response
// even on a non-2xx status so callers can wrap it in their own error.
func (c *Client) postForm(ctx context.Context, endpoint string, form url.Values) (*resty.Response, error) {
	return c.Http.R().
		SetContext(ctx).
		SetHeader("accept", acceptHtml).
		SetHeader("x-requested-with", xmlHttpRequest).
		SetHeader("content-type", formContentType).
		SetFormDataFromValues(form).
		Post(endpoint)
}

// FetchListing fetches the listing page of a year and semester.
func (c *Client) FetchListing(ctx context.Context, year, semester string) (string, error) {
	return c.getPage(ctx, report_client_fetch_listing, endpointListing, map[string]string{
		"eduYear":     year,
		"eduSemester": semester,
		"lessonType":  "",
	})
}

// FetchDetail fetches the detail popup of one course, once, without retrying.
func (c *Client) FetchDetail(ctx context.Context, req DetailRequest) (string, error) {
	res, err := c.postForm(ctx, endpointDetail, url.Values{
		"id":          {req.LessonId},
		"edu_form_id": {req.EduFormId},
		"eduYear":     {req.Year},
		"eduSemester": {req.Semester},
	})
	if err != nil {
		c.tel.ReportWarning(report_client_fetch_detail, err, req.LessonId)
		return "", &DetailFetchError{LessonId: req.LessonId, Cause: err}
	}
	if !isSuccess(res) {
		c.tel.ReportWarning(
			report_client_fetch_detail,
			fmt.Errorf("unexpected status %d", res.StatusCode()),
			req.LessonId,
		)
		return "", &DetailFetchError{LessonId: req.LessonId, Status: res.StatusCode()}
	}
	return res.String(), nil
}

// FetchAcademicYears lists the years offered on the listing page.
func (c *Client) FetchAcademicYears(ctx context.Context) ([]Option, error) {
	page, err := c.getPage(ctx, report_client_fetch_years, endpointListing, nil)
	if err != nil {
		return nil, err
	}
	years, err := ParseAcademicYears(page)
	if err != nil {
		c.tel.ReportBroken(report_client_fetch_years, err)
		return nil, err
	}
	return years, nil
}

// FetchSemesters lists the semesters offered for a year.
func (c *Client) FetchSemesters(ctx context.Context, year string) ([]Option, error) {
	res, err := c.postForm(ctx, endpointSemesters, url.Values{
		"type": {"eduYear"},
		"id":   {year},
	})
	if err != nil {
		c.tel.ReportWarning(report_client_fetch_semesters, err, year)
		return nil, &TransportError{Endpoint: endpointSemesters, Cause: err}
	}
	if !isSuccess(res) {
		c.tel.ReportWarning(
			report_client_fetch_semesters,
			fmt.Errorf("unexpected status %d", res.StatusCode()),
			year,
		)
		return nil, &TransportError{Endpoint: endpointSemesters, Status: res.StatusCode()}
	}
	semesters, err := ParseSemesters(res.String())
	if err != nil {
		c.tel.ReportBroken(report_client_fetch_semesters, err, year)
		return nil, err
	}
	return semesters, nil
}
