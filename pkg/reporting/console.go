package reporting

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ducminhle1904/regime-stream/internal/regime"
)

// DefaultConsoleReporter renders regime indicator frames and window lists
// as go-pretty tables, the way the teacher's startup banner renders bot
// configuration.
type DefaultConsoleReporter struct{}

// NewDefaultConsoleReporter creates a new console reporter.
func NewDefaultConsoleReporter() *DefaultConsoleReporter {
	return &DefaultConsoleReporter{}
}

// PrintIndicatorFrame renders the last n rows of an indicator frame. A
// non-positive n prints every row.
func (r *DefaultConsoleReporter) PrintIndicatorFrame(rows []regime.IndicatorRow, n int) {
	start := 0
	if n > 0 && len(rows) > n {
		start = len(rows) - n
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("REGIME INDICATOR")
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Time", "State", "P0", "P1", "Conf", "Open", "Close", "Window", "Age", "TMV", "TLen"})

	for _, row := range rows[start:] {
		t.AppendRow(table.Row{
			row.T.Format("2006-01-02 15:04"),
			row.RegState,
			fmt.Sprintf("%.3f", row.RegP0),
			fmt.Sprintf("%.3f", row.RegP1),
			fmt.Sprintf("%.3f", row.RegConf),
			row.RegOpen,
			row.RegClose,
			row.RegWindowID,
			row.RegAge,
			fmt.Sprintf("%.5f", row.DCTMV),
			row.DCTLen,
		})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignCenter},
		{Number: 6, Align: text.AlignCenter},
		{Number: 7, Align: text.AlignCenter},
	})
	t.Render()
}

// PrintWindows renders the confirmed window list emitted by the window
// state machine.
func (r *DefaultConsoleReporter) PrintWindows(windows []regime.Window) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("REGIME WINDOWS")
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"#", "Label", "Start", "End"})

	for i, w := range windows {
		end := "open"
		if !w.Open() {
			end = w.End.Format("2006-01-02 15:04")
		}
		t.AppendRow(table.Row{i + 1, w.Label, w.Start.Format("2006-01-02 15:04"), end})
	}

	t.Render()
}

// PrintStartupInfo prints the banner a regime-streaming driver shows on
// boot, grounded on the teacher's bot startup banner.
func (r *DefaultConsoleReporter) PrintStartupInfo(symbol string, cfg regime.IndicatorConfig, useBayes bool) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("REGIME DETECTOR STARTUP")
	t.SetStyle(table.StyleRounded)
	t.AppendRows([]table.Row{
		{"Symbol", symbol},
		{"DC theta (%)", cfg.DCThetaPct},
		{"Theta open", cfg.ThetaOpen},
		{"Theta close", cfg.ThetaClose},
		{"Confirm open", cfg.ConfirmOpen},
		{"Confirm close", cfg.ConfirmClose},
		{"Min trends", cfg.MinTrends},
		{"Scorer", scorerLabel(useBayes)},
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 15, WidthMax: 15, Align: text.AlignLeft},
		{Number: 2, WidthMin: 20, WidthMax: 35, Align: text.AlignLeft},
	})
	t.Render()
}

func scorerLabel(useBayes bool) string {
	if useBayes {
		return "naive-bayes"
	}
	return "hmm"
}
