// Package picklist drives the IRS prior-year products picklist: session
// bootstrap, paged search requests, row extraction, and pagination.
package picklist

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	fhttp "github.com/bogdanfinn/fhttp"
	"github.com/jimezsa/formcli/internal/network"
	"github.com/rs/zerolog"
)

const (
	DefaultBaseURL  = "https://apps.irs.gov/app/picklist/list"
	DefaultPageSize = 200

	endpoint = "priorFormPublication.html"
)

// ErrPortalLayout means the portal's markup no longer has the shape we
// scrape. There is no fallback; the run aborts.
var ErrPortalLayout = errors.New("unexpected portal page layout")

type Client struct {
	http     *network.Client
	baseURL  string
	pageSize int
	logger   zerolog.Logger
}

type Option func(*Client)

func WithBaseURL(base string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(base, "/")
	}
}

func WithPageSize(size int) Option {
	return func(c *Client) {
		if size > 0 {
			c.pageSize = size
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func New(http *network.Client, opts ...Option) *Client {
	c := &Client{
		http:     http,
		baseURL:  DefaultBaseURL,
		pageSize: DefaultPageSize,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session is a bootstrapped portal session. The token is scraped once and
// read-only for the rest of the run; it is never refreshed.
type Session struct {
	client *Client
	token  string
}

func (s *Session) Token() string {
	return s.token
}

// Bootstrap fetches the landing page and scrapes the jsessionid from the
// head script's src attribute (everything after the last '=').
func (c *Client) Bootstrap(ctx context.Context) (*Session, error) {
	landing := c.baseURL + "/" + endpoint
	doc, err := c.fetchDocument(ctx, landing)
	if err != nil {
		return nil, fmt.Errorf("bootstrap session: %w", err)
	}

	token, err := scrapeSessionToken(doc)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().Str("token", token).Msg("session bootstrapped")
	return &Session{client: c, token: token}, nil
}

func scrapeSessionToken(doc *goquery.Document) (string, error) {
	script := doc.Find("head script").First()
	if script.Length() == 0 {
		return "", fmt.Errorf("%w: no script element in head", ErrPortalLayout)
	}
	src, ok := script.Attr("src")
	if !ok {
		return "", fmt.Errorf("%w: head script has no src attribute", ErrPortalLayout)
	}
	return src[strings.LastIndex(src, "=")+1:], nil
}

// fetchPage requests one page of search results at the given row offset.
func (s *Session) fetchPage(ctx context.Context, query string, offset int) (*goquery.Document, error) {
	c := s.client

	values := url.Values{}
	values.Set("indexOfFirstRow", strconv.Itoa(offset))
	values.Set("sortColumn", "sortOrder")
	values.Set("value", query)
	values.Set("criteria", "formNumber")
	values.Set("resultsPerPage", strconv.Itoa(c.pageSize))
	values.Set("isDescending", "false")

	target := fmt.Sprintf("%s/%s;jsessionid=%s?%s", c.baseURL, endpoint, s.token, values.Encode())
	c.logger.Debug().Str("url", target).Str("query", query).Int("offset", offset).Msg("fetching page")

	doc, err := c.fetchDocument(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("fetch page (query %q, offset %d): %w", query, offset, err)
	}
	return doc, nil
}

func (c *Client) fetchDocument(ctx context.Context, target string) (*goquery.Document, error) {
	req, err := fhttp.NewRequestWithContext(ctx, fhttp.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("accept-language", "en-US,en;q=0.9")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("http %d", resp.StatusCode)
	}

	return goquery.NewDocumentFromReader(resp.Body)
}
