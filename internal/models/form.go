package models

// FormRecord is one matching row of the portal's results table.
type FormRecord struct {
	Number      string `json:"form"`
	Description string `json:"description"`
	Year        int    `json:"year"`
	DownloadURL string `json:"link"`
}

// QuerySummary condenses a query's records into the year span and the
// title of the earliest-year revision.
type QuerySummary struct {
	FormNumber string `json:"form_number"`
	Title      string `json:"form_title"`
	MinYear    int    `json:"min_year"`
	MaxYear    int    `json:"max_year"`
}
