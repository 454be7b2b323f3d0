// Package export renders query summaries as JSON, CSV/TSV, or an aligned
// console table.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/jimezsa/formcli/internal/models"
)

type Format string

const (
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatTSV   Format = "tsv"
)

func WriteSummaries(w io.Writer, summaries []models.QuerySummary, format Format) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, summaries)
	case FormatCSV:
		return writeCSV(w, summaries, ',')
	case FormatTSV:
		return writeCSV(w, summaries, '\t')
	default:
		return writeTable(w, summaries)
	}
}

func writeJSON(w io.Writer, summaries []models.QuerySummary) error {
	// Marshal an empty array rather than null when nothing matched.
	if summaries == nil {
		summaries = []models.QuerySummary{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(summaries)
}

func writeCSV(w io.Writer, summaries []models.QuerySummary, delim rune) error {
	writer := csv.NewWriter(w)
	writer.Comma = delim
	if err := writer.Write([]string{"form_number", "form_title", "min_year", "max_year"}); err != nil {
		return err
	}
	for _, summary := range summaries {
		row := []string{
			summary.FormNumber,
			summary.Title,
			strconv.Itoa(summary.MinYear),
			strconv.Itoa(summary.MaxYear),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeTable(w io.Writer, summaries []models.QuerySummary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join([]string{"form", "title", "min_year", "max_year"}, "\t"))
	for _, summary := range summaries {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n",
			strings.TrimSpace(summary.FormNumber),
			strings.TrimSpace(summary.Title),
			summary.MinYear,
			summary.MaxYear,
		)
	}
	return tw.Flush()
}
