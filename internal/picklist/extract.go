package picklist

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jimezsa/formcli/internal/models"
)

// resultCounts is the "Results: first - last of total" header the portal
// renders above the table.
type resultCounts struct {
	First int
	Last  int
	Total int
}

var countsPattern = regexp.MustCompile(`\d+(?:,\d+)*`)

func parseResultCounts(doc *goquery.Document) (resultCounts, error) {
	header := doc.Find("th.ShowByColumn").First()
	if header.Length() == 0 {
		return resultCounts{}, fmt.Errorf("%w: missing results count header", ErrPortalLayout)
	}

	text := strings.ReplaceAll(strings.TrimSpace(header.Text()), "\n", "")
	groups := countsPattern.FindAllString(text, -1)
	if len(groups) < 3 {
		return resultCounts{}, fmt.Errorf("%w: count header %q has fewer than three numbers", ErrPortalLayout, text)
	}

	first, err := parseGroupedInt(groups[0])
	if err != nil {
		return resultCounts{}, err
	}
	last, err := parseGroupedInt(groups[1])
	if err != nil {
		return resultCounts{}, err
	}
	total, err := parseGroupedInt(groups[2])
	if err != nil {
		return resultCounts{}, err
	}

	return resultCounts{First: first, Last: last, Total: total}, nil
}

// extractRecords walks the results table and keeps rows whose form-number
// link matches the query exactly (case-insensitive) and, when a year range
// is set, whose year falls inside it. Rows without exactly three data
// cells are table chrome and are skipped silently.
func extractRecords(doc *goquery.Document, baseURL string, params models.SearchParams) ([]models.FormRecord, error) {
	var records []models.FormRecord
	var firstErr error

	doc.Find("table.picklist-dataTable tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cells := row.Find("td")
		if cells.Length() != 3 {
			return true
		}

		link := cells.Eq(0).Find("a").First()
		name := strings.TrimSpace(link.Text())
		if !strings.EqualFold(name, params.Query) {
			return true
		}

		year, err := parseGroupedInt(strings.TrimSpace(cells.Eq(2).Text()))
		if err != nil {
			firstErr = fmt.Errorf("parse year for form %q: %w", name, err)
			return false
		}
		if !params.Years.Contains(year) {
			return true
		}

		records = append(records, models.FormRecord{
			Number:      name,
			Description: strings.TrimSpace(cells.Eq(1).Text()),
			Year:        year,
			DownloadURL: absoluteURL(baseURL, link.AttrOr("href", "")),
		})
		return true
	})

	if firstErr != nil {
		return nil, firstErr
	}
	return records, nil
}

// parseGroupedInt parses an integer that may carry thousands separators.
func parseGroupedInt(value string) (int, error) {
	return strconv.Atoi(strings.ReplaceAll(value, ",", ""))
}

func absoluteURL(base string, href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}
