package network

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
	fhttpcookiejar "github.com/bogdanfinn/fhttp/cookiejar"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
)

var ErrRequestFailed = errors.New("request failed")

// Trace is called around every request the client performs. Either field
// may be nil. Progress lines reach the console through these hooks so the
// client stays ignorant of the UI.
type Trace struct {
	RequestStarted   func(target string)
	ResponseReceived func(target string, status int)
}

// Client is safe for concurrent use: page fan-outs and multi-query runs
// share one instance.
type Client struct {
	http       tls_client.HttpClient
	rotator    *Rotator
	trace      Trace
	userAgents []string

	// proxyMu serializes proxied requests so the proxy set on the shared
	// transport is still the one in effect when the request goes out.
	proxyMu sync.Mutex

	randMu sync.Mutex
	rand   *rand.Rand
}

// NewClient builds an HTTP client with a cookie jar so the portal's
// JSESSIONID cookie survives across paged requests.
func NewClient(rotator *Rotator, trace Trace) (*Client, error) {
	jar, _ := fhttpcookiejar.New(nil)

	client, err := tls_client.NewHttpClient(
		tls_client.NewNoopLogger(),
		tls_client.WithClientProfile(profiles.Chrome_120),
		tls_client.WithTimeoutSeconds(30),
		tls_client.WithCookieJar(jar),
	)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Client{
		http:       client,
		rotator:    rotator,
		trace:      trace,
		userAgents: append([]string{}, userAgents...),
		rand:       rng,
	}, nil
}

func (c *Client) Do(req *fhttp.Request) (*fhttp.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.randomUA())
	}

	if c.trace.RequestStarted != nil {
		c.trace.RequestStarted(req.URL.String())
	}

	var resp *fhttp.Response
	var err error
	if c.rotator != nil {
		resp, err = c.doViaProxy(req)
	} else {
		resp, err = c.http.Do(req)
	}
	if err != nil {
		return nil, err
	}

	if c.trace.ResponseReceived != nil {
		c.trace.ResponseReceived(req.URL.String(), resp.StatusCode)
	}
	return resp, nil
}

func (c *Client) doViaProxy(req *fhttp.Request) (*fhttp.Response, error) {
	c.proxyMu.Lock()
	defer c.proxyMu.Unlock()

	proxy, err := c.rotator.Next()
	if err != nil {
		return nil, err
	}
	if proxy != nil {
		_ = c.http.SetProxy(proxy.String())
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if proxy != nil {
		c.rotator.Report(proxy, resp.StatusCode)
	}
	return resp, nil
}

func (c *Client) randomUA() string {
	if len(c.userAgents) == 0 {
		return ""
	}
	c.randMu.Lock()
	defer c.randMu.Unlock()
	return c.userAgents[c.rand.Intn(len(c.userAgents))]
}
