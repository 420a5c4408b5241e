package export

import (
	"encoding/csv"
	"io"

	"github.com/couchcryptid/climatology-service/internal/domain"
)

// WriteCSV writes one row per analysed variable: its distribution summary
// followed by its trend.
func WriteCSV(w io.Writer, r domain.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(summaryHeader(r)); err != nil {
		return err
	}
	if err := cw.WriteAll(summaryRows(r)); err != nil {
		return err
	}
	return cw.Error()
}

// WriteHistoryCSV writes the year-by-year window means of every variable,
// one row per season year.
func WriteHistoryCSV(w io.Writer, r domain.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(historyHeader(r)); err != nil {
		return err
	}
	if err := cw.WriteAll(historyRows(r)); err != nil {
		return err
	}
	return cw.Error()
}
