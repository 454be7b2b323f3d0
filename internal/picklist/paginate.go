package picklist

import (
	"context"
	"fmt"
	"strings"

	"github.com/jimezsa/formcli/internal/models"
	"golang.org/x/sync/errgroup"
)

// Strategy selects how pages after the first are fetched.
type Strategy string

const (
	// StrategySerial fetches remaining pages one at a time in offset order.
	StrategySerial Strategy = "serial"
	// StrategyConcurrent fans out all remaining page fetches at once and
	// joins on them; the first failure cancels the rest.
	StrategyConcurrent Strategy = "concurrent"
)

func ParseStrategy(value string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(value))) {
	case StrategySerial:
		return StrategySerial, nil
	case StrategyConcurrent, "":
		return StrategyConcurrent, nil
	default:
		return "", fmt.Errorf("unknown strategy: %s", value)
	}
}

// Search runs one full pagination pass for the query: first page to learn
// the total, then every remaining offset, merged in page order. An empty
// slice means the query matched nothing; that is not an error.
func (s *Session) Search(ctx context.Context, params models.SearchParams, strategy Strategy) ([]models.FormRecord, error) {
	doc, err := s.fetchPage(ctx, params.Query, 0)
	if err != nil {
		return nil, err
	}

	counts, err := parseResultCounts(doc)
	if err != nil {
		return nil, err
	}

	records, err := extractRecords(doc, s.client.baseURL, params)
	if err != nil {
		return nil, err
	}

	offsets := pageOffsets(s.client.pageSize, counts.Total)
	if len(offsets) == 0 {
		return records, nil
	}

	if strategy == StrategySerial {
		return s.searchSerial(ctx, params, records, offsets, counts)
	}
	return s.searchConcurrent(ctx, params, records, offsets)
}

// pageOffsets returns the row offsets of every page after the first:
// multiples of pageSize below total. total <= pageSize means the first
// page already was the whole result set.
func pageOffsets(pageSize int, total int) []int {
	var offsets []int
	for offset := pageSize; offset < total; offset += pageSize {
		offsets = append(offsets, offset)
	}
	return offsets
}

func (s *Session) searchSerial(ctx context.Context, params models.SearchParams, records []models.FormRecord, offsets []int, counts resultCounts) ([]models.FormRecord, error) {
	// Redundant with the offset computation, but the portal reports its
	// own last/total on every page; stop early if they ever agree.
	if counts.Last == counts.Total {
		return records, nil
	}

	for _, offset := range offsets {
		doc, err := s.fetchPage(ctx, params.Query, offset)
		if err != nil {
			return nil, err
		}

		pageRecords, err := extractRecords(doc, s.client.baseURL, params)
		if err != nil {
			return nil, err
		}
		records = append(records, pageRecords...)

		pageCounts, err := parseResultCounts(doc)
		if err != nil {
			return nil, err
		}
		if pageCounts.Last == pageCounts.Total {
			break
		}
	}

	return records, nil
}

func (s *Session) searchConcurrent(ctx context.Context, params models.SearchParams, records []models.FormRecord, offsets []int) ([]models.FormRecord, error) {
	pages := make([][]models.FormRecord, len(offsets))

	group, ctx := errgroup.WithContext(ctx)
	for i, offset := range offsets {
		i, offset := i, offset
		group.Go(func() error {
			doc, err := s.fetchPage(ctx, params.Query, offset)
			if err != nil {
				return err
			}
			pageRecords, err := extractRecords(doc, s.client.baseURL, params)
			if err != nil {
				return err
			}
			pages[i] = pageRecords
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	for _, page := range pages {
		records = append(records, page...)
	}
	return records, nil
}
