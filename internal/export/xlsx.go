package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/couchcryptid/climatology-service/internal/domain"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the XLSX workbook.
const (
	SheetSummary         = "Summary"
	SheetRisks           = "Risks"
	SheetRecommendations = "Recommendations"
	SheetQuality         = "Quality"
	SheetHistory         = "History"
)

// WriteXLSX writes a workbook with one sheet each for the variable summaries,
// risk scores, recommendations, data quality and yearly history.
func WriteXLSX(w io.Writer, r domain.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetRisks, SheetRecommendations, SheetQuality, SheetHistory} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	summary := [][]any{toAny(summaryHeader(r))}
	for _, row := range summaryRows(r) {
		summary = append(summary, toAny(row))
	}
	if err := writeRows(f, SheetSummary, summary); err != nil {
		return err
	}

	risks := [][]any{{"event", "variable", "threshold", "probability", "severity"}}
	for _, rs := range r.Risks {
		risks = append(risks, []any{rs.Event, string(rs.Variable), rs.Threshold, rs.Probability, string(rs.Severity)})
	}
	if err := writeRows(f, SheetRisks, risks); err != nil {
		return err
	}

	recs := [][]any{{"kind", "text"}}
	for _, a := range r.Recommendations.Advice {
		recs = append(recs, []any{"advice", a})
	}
	for _, p := range r.Recommendations.Packing {
		recs = append(recs, []any{"packing", p})
	}
	if err := writeRows(f, SheetRecommendations, recs); err != nil {
		return err
	}

	q := r.DataQuality
	quality := [][]any{
		{"location", r.Location.Name},
		{"latitude", r.Location.Latitude},
		{"longitude", r.Location.Longitude},
		{"target", r.Target.String()},
		{"tolerance_days", r.ToleranceDays},
		{"first_year", r.FirstYear},
		{"last_year", r.LastYear},
		{"years_analyzed", q.YearsAnalyzed},
		{"depth_score", q.DepthScore},
		{"completeness", q.Completeness},
		{"overall", q.Overall},
		{"grade", q.Grade},
	}
	if err := writeRows(f, SheetQuality, quality); err != nil {
		return err
	}

	history := [][]any{toAny(historyHeader(r))}
	for _, row := range historyRows(r) {
		history = append(history, historyCells(row))
	}
	if err := writeRows(f, SheetHistory, history); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func toAny(row []string) []any {
	out := make([]any, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}

// historyCells keeps the year and means numeric so the sheet can be charted.
func historyCells(row []string) []any {
	out := make([]any, len(row))
	for i, v := range row {
		if v == "" {
			out[i] = nil
			continue
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			out[i] = v
			continue
		}
		out[i] = n
	}
	return out
}
