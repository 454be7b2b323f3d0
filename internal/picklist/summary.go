package picklist

import (
	"sort"

	"github.com/jimezsa/formcli/internal/models"
)

// Summarize reduces a query's records to its year span, with the title
// taken from the earliest-year revision. The second return is false when
// there were no records to reduce.
func Summarize(query string, records []models.FormRecord) (models.QuerySummary, bool) {
	if len(records) == 0 {
		return models.QuerySummary{}, false
	}

	sorted := make([]models.FormRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Year < sorted[j].Year
	})

	earliest := sorted[0]
	latest := sorted[len(sorted)-1]
	return models.QuerySummary{
		FormNumber: query,
		Title:      earliest.Description,
		MinYear:    earliest.Year,
		MaxYear:    latest.Year,
	}, true
}
