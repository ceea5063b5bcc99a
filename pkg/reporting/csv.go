package reporting

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ducminhle1904/regime-stream/internal/regime"
)

// DefaultCSVReporter implements CSV export of the regime indicator frame.
type DefaultCSVReporter struct{}

// NewDefaultCSVReporter creates a new CSV reporter.
func NewDefaultCSVReporter() *DefaultCSVReporter {
	return &DefaultCSVReporter{}
}

// WriteIndicatorCSV writes an indicator frame to a CSV file, one row per
// bar, with the IndicatorRow columns in the header order below (reg_conf
// directly after the two posteriors).
func (r *DefaultCSVReporter) WriteIndicatorCSV(rows []regime.IndicatorRow, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{
		"time", "reg_state", "reg_p0", "reg_p1", "reg_conf",
		"reg_open", "reg_close", "reg_window_id", "reg_age",
		"dc_tmv", "dc_tlen", "dc_r", "dc_event_bar",
	}); err != nil {
		return err
	}

	for _, row := range rows {
		record := []string{
			row.T.Format("2006-01-02T15:04:05Z07:00"),
			fmt.Sprintf("%d", row.RegState),
			fmt.Sprintf("%.6f", row.RegP0),
			fmt.Sprintf("%.6f", row.RegP1),
			fmt.Sprintf("%.6f", row.RegConf),
			fmt.Sprintf("%t", row.RegOpen),
			fmt.Sprintf("%t", row.RegClose),
			fmt.Sprintf("%d", row.RegWindowID),
			fmt.Sprintf("%d", row.RegAge),
			fmt.Sprintf("%.8f", row.DCTMV),
			fmt.Sprintf("%d", row.DCTLen),
			fmt.Sprintf("%.8f", row.DCR),
			fmt.Sprintf("%t", row.DCEventBar),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	return nil
}

// WriteIndicatorCSV is a package-level convenience wrapper.
func WriteIndicatorCSV(rows []regime.IndicatorRow, path string) error {
	reporter := NewDefaultCSVReporter()
	return reporter.WriteIndicatorCSV(rows, path)
}
