// Package export renders report envelopes as JSON, CSV or XLSX documents.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/couchcryptid/climatology-service/internal/domain"
)

// Format is an output document type.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	// FormatHistory is a CSV of the year-by-year window means.
	FormatHistory Format = "history"
)

// ErrNoReport is returned when a tabular format is requested for a failed
// analysis.
var ErrNoReport = errors.New("envelope carries no report")

// ParseFormat accepts a case-insensitive format name. Empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatCSV, FormatXLSX, FormatHistory:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want json, csv, xlsx or history)", s)
	}
}

// ContentType returns the MIME type of documents in format f.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV, FormatHistory:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json"
	}
}

// FileName returns the download name of a document for the given request.
func (f Format) FileName(requestID string) string {
	if f == FormatHistory {
		return "climatology-" + requestID + "-history.csv"
	}
	return "climatology-" + requestID + "." + string(f)
}

// Write renders env to w. JSON carries the whole envelope; CSV and XLSX carry
// the report tables and fail with ErrNoReport for error envelopes.
func Write(w io.Writer, f Format, env domain.ReportEnvelope) error {
	if f == FormatJSON {
		return WriteJSON(w, env)
	}
	if env.Report == nil {
		return ErrNoReport
	}
	switch f {
	case FormatCSV:
		return WriteCSV(w, *env.Report)
	case FormatXLSX:
		return WriteXLSX(w, *env.Report)
	case FormatHistory:
		return WriteHistoryCSV(w, *env.Report)
	default:
		return fmt.Errorf("unknown format %q", f)
	}
}

// WriteJSON writes env as indented JSON.
func WriteJSON(w io.Writer, env domain.ReportEnvelope) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}

// summaryHeader lists the per-variable columns shared by CSV and the XLSX
// summary sheet. Percentile columns follow the first summary's levels.
func summaryHeader(r domain.Report) []string {
	h := []string{"variable", "unit", "count", "mean", "std_dev", "min", "max"}
	if len(r.Summaries) > 0 {
		for _, p := range r.Summaries[0].Percentiles {
			h = append(h, "p"+formatFloat(p.Percentile))
		}
	}
	return append(h, "trend_slope_per_decade", "trend_direction", "trend_confidence")
}

func summaryRows(r domain.Report) [][]string {
	rows := make([][]string, 0, len(r.Summaries))
	for _, s := range r.Summaries {
		row := []string{
			string(s.Variable),
			s.Unit,
			strconv.Itoa(s.Count),
			formatFloat(s.Mean),
			formatFloat(s.StdDev),
			formatFloat(s.Min),
			formatFloat(s.Max),
		}
		for _, p := range s.Percentiles {
			row = append(row, formatFloat(p.Value))
		}
		if tr, ok := r.Trend(s.Variable); ok {
			row = append(row, formatFloat(tr.Slope*10), string(tr.Direction), tr.ConfidenceLevel)
		} else {
			row = append(row, "", "", "")
		}
		rows = append(rows, row)
	}
	return rows
}

// historyHeader is "year" followed by one column per variable with a trend.
func historyHeader(r domain.Report) []string {
	h := make([]string, 0, len(r.Trends)+1)
	h = append(h, "year")
	for _, tr := range r.Trends {
		h = append(h, string(tr.Variable))
	}
	return h
}

// historyRows lists every season year seen by any trend in ascending order.
// A variable without data in a year leaves its cell empty.
func historyRows(r domain.Report) [][]string {
	byYear := make(map[int][]string)
	for col, tr := range r.Trends {
		for _, yv := range tr.Yearly {
			row, ok := byYear[yv.Year]
			if !ok {
				row = make([]string, len(r.Trends)+1)
				row[0] = strconv.Itoa(yv.Year)
				byYear[yv.Year] = row
			}
			row[col+1] = formatFloat(yv.Mean)
		}
	}
	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)
	rows := make([][]string, 0, len(years))
	for _, y := range years {
		rows = append(rows, byYear[y])
	}
	return rows
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
