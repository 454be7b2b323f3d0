package models

// YearRange is an inclusive [Min, Max] filter on a record's year.
// A nil *YearRange means no filtering.
type YearRange struct {
	Min int
	Max int
}

func (r *YearRange) Contains(year int) bool {
	if r == nil {
		return true
	}
	return year >= r.Min && year <= r.Max
}

// SearchParams captures the normalized inputs for one pagination run.
type SearchParams struct {
	Query string
	Years *YearRange
}
