package cmd

import (
	"context"
	"net/url"
	"time"

	"github.com/jimezsa/formcli/internal/config"
	"github.com/jimezsa/formcli/internal/network"
	"github.com/jimezsa/formcli/internal/picklist"
)

const proxyBanDuration = 10 * time.Minute

// newPortalSession wires the HTTP client (proxies, trace hooks) and
// bootstraps a portal session. The returned network client is also used
// directly by the download sink.
func newPortalSession(ctx *Context, proxiesFlag string) (*picklist.Session, *network.Client, error) {
	proxies, err := config.LoadProxies(proxiesFlag)
	if err != nil {
		return nil, nil, err
	}

	var rotator *network.Rotator
	if len(proxies) > 0 {
		rotator, err = network.NewRotator(proxies, proxyBanDuration)
		if err != nil {
			return nil, nil, err
		}
	}

	httpClient, err := network.NewClient(rotator, requestTrace(ctx))
	if err != nil {
		return nil, nil, err
	}

	client := picklist.New(httpClient,
		picklist.WithBaseURL(ctx.Config.BaseURL),
		picklist.WithPageSize(ctx.Config.ResultsPerPage),
		picklist.WithLogger(ctx.Logger),
	)

	session, err := client.Bootstrap(context.Background())
	if err != nil {
		return nil, nil, err
	}

	return session, httpClient, nil
}

// requestTrace prints progress lines for every request when --logging is
// on. Paged search requests are described by their query and row offset;
// anything else by its URL.
func requestTrace(ctx *Context) network.Trace {
	if !ctx.Logging {
		return network.Trace{}
	}
	return network.Trace{
		RequestStarted: func(target string) {
			ctx.UI.Plainf("Requesting data | %s", describeRequest(target))
		},
		ResponseReceived: func(target string, status int) {
			ctx.UI.Plainf("Received data | %s (http %d)", describeRequest(target), status)
		},
	}
}

func describeRequest(target string) string {
	parsed, err := url.Parse(target)
	if err != nil {
		return target
	}
	values := parsed.Query()
	query := values.Get("value")
	if query == "" {
		return target
	}
	offset := values.Get("indexOfFirstRow")
	if offset == "" {
		offset = "0"
	}
	return "Query: " + query + ", Row Index: " + offset
}
