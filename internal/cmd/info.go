package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jimezsa/formcli/internal/export"
	"github.com/jimezsa/formcli/internal/models"
	"github.com/jimezsa/formcli/internal/picklist"
	"golang.org/x/sync/errgroup"
)

type InfoCmd struct {
	Queries []string `arg:"" help:"Form name queries. Quote each query containing spaces."`

	Output   string `name:"output" short:"o" help:"JSON output file. Defaults to the configured output name."`
	Strategy string `help:"Page fetch strategy; also applies across queries." enum:"serial,concurrent" default:"concurrent"`
	Proxies  string `help:"Comma-separated proxy URLs." env:"FORMCLI_PROXIES"`
}

func (i *InfoCmd) Run(ctx *Context) error {
	queries := make([]string, 0, len(i.Queries))
	for _, query := range i.Queries {
		if trimmed := strings.TrimSpace(query); trimmed != "" {
			queries = append(queries, trimmed)
		}
	}
	if len(queries) == 0 {
		return fmt.Errorf("at least one non-empty query is required")
	}

	strategy, err := picklist.ParseStrategy(i.Strategy)
	if err != nil {
		return err
	}

	outputPath := strings.TrimSpace(i.Output)
	if outputPath == "" {
		outputPath = ctx.Config.DefaultOutput
	}

	session, _, err := newPortalSession(ctx, i.Proxies)
	if err != nil {
		return err
	}

	results, err := summarizeQueries(session, queries, strategy)
	if err != nil {
		return err
	}

	summaries := make([]models.QuerySummary, 0, len(queries))
	for idx, result := range results {
		if result == nil {
			ctx.UI.Infof("Skipping search query: %s. There are no exact results for that search query. Is it spelled correctly?", queries[idx])
			continue
		}
		summaries = append(summaries, *result)
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer file.Close()
	if err := export.WriteSummaries(file, summaries, export.FormatJSON); err != nil {
		return err
	}

	if ctx.Logging {
		ctx.UI.Plainf("\n%s:", outputPath)
		if err := export.WriteSummaries(ctx.Out, summaries, export.FormatTable); err != nil {
			return err
		}
	}

	return nil
}

// summarizeQueries runs one pagination pass per query against the shared
// session. Queries fan out together unless the serial strategy is chosen,
// in which case they run one after another in the order given. A nil slot
// in the result marks a query that matched nothing.
func summarizeQueries(session *picklist.Session, queries []string, strategy picklist.Strategy) ([]*models.QuerySummary, error) {
	results := make([]*models.QuerySummary, len(queries))

	one := func(ctx context.Context, idx int, query string) error {
		records, err := session.Search(ctx, models.SearchParams{Query: query}, strategy)
		if err != nil {
			return err
		}
		if summary, ok := picklist.Summarize(query, records); ok {
			results[idx] = &summary
		}
		return nil
	}

	if strategy == picklist.StrategySerial {
		for idx, query := range queries {
			if err := one(context.Background(), idx, query); err != nil {
				return nil, err
			}
		}
		return results, nil
	}

	group, ctx := errgroup.WithContext(context.Background())
	for idx, query := range queries {
		idx, query := idx, query
		group.Go(func() error {
			return one(ctx, idx, query)
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
