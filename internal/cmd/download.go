package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/jimezsa/formcli/internal/download"
	"github.com/jimezsa/formcli/internal/models"
	"github.com/jimezsa/formcli/internal/picklist"
)

type DownloadCmd struct {
	Query   string `arg:"" help:"Form name to match exactly (case-insensitive)."`
	MinYear int    `arg:"" help:"Low year in range (inclusive)."`
	MaxYear int    `arg:"" help:"High year in range (inclusive)."`

	Strategy string `help:"Page fetch strategy." enum:"serial,concurrent" default:"concurrent"`
	Proxies  string `help:"Comma-separated proxy URLs." env:"FORMCLI_PROXIES"`
}

func (d *DownloadCmd) Run(ctx *Context) error {
	query := strings.TrimSpace(d.Query)
	if query == "" {
		return fmt.Errorf("search query must not be empty")
	}
	if d.MinYear > d.MaxYear {
		return fmt.Errorf("min year %d exceeds max year %d", d.MinYear, d.MaxYear)
	}

	strategy, err := picklist.ParseStrategy(d.Strategy)
	if err != nil {
		return err
	}

	session, httpClient, err := newPortalSession(ctx, d.Proxies)
	if err != nil {
		return err
	}

	params := models.SearchParams{
		Query: query,
		Years: &models.YearRange{Min: d.MinYear, Max: d.MaxYear},
	}
	records, err := session.Search(context.Background(), params, strategy)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		// Informational skip on stdout, not an error.
		ctx.UI.Infof("There are no exact results for that search query. Is it spelled correctly?")
		return nil
	}

	var saved func(path string)
	if ctx.Logging {
		saved = func(path string) {
			ctx.UI.Plainf("Saved %s", path)
		}
	}
	if err := download.SaveAll(context.Background(), httpClient, query, records, saved); err != nil {
		return err
	}

	ctx.UI.Successf("Downloaded %d PDFs into %q", len(records), query)
	return nil
}
