// Command regime-indicator replays a CSV bar series through
// BuildRegimeIndicator and writes the resulting row-per-bar frame to
// CSV, Excel, and the console — a single-run analogue of the offline
// calibration tool's batch indicator path (the grid sweep itself stays
// out of scope).
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/ducminhle1904/regime-stream/internal/config"
	"github.com/ducminhle1904/regime-stream/internal/regime"
	"github.com/ducminhle1904/regime-stream/pkg/data"
	"github.com/ducminhle1904/regime-stream/pkg/reporting"
)

func main() {
	cfg := config.Load()

	var (
		csvPath   = flag.String("csv", "", "Path to CSV file with OHLCV bars (overrides -data-root/-exchange/-interval lookup)")
		dataRoot  = flag.String("data-root", "data", "Root of the data/{exchange}/{category}/{symbol}/{interval}/candles.csv layout, used when -csv is unset")
		exchange  = flag.String("exchange", "bybit", "Exchange subtree to search under -data-root when -csv is unset")
		interval  = flag.String("interval", "1h", "Bar interval to search for under -data-root when -csv is unset")
		modelPath = flag.String("model-json", "", "Path to the HMM/scaler/Bayes model artifact JSON (required)")
		outDir    = flag.String("output", "", "Output directory (default: results/<symbol>_indicator)")
		symbol    = flag.String("symbol", cfg.Regime.Symbol, "Symbol label for output naming and data lookup")
		startStr  = flag.String("start", "", "RFC3339 timestamp: drop bars before this instant")
		endStr    = flag.String("end", "", "RFC3339 timestamp: drop bars after this instant")
		dcTheta   = flag.Float64("dc-theta-pct", cfg.Regime.DCThetaPct, "DC reversal threshold, percent")
		thetaOpen = flag.Float64("theta-open", cfg.Regime.ThetaOpen, "Window OPEN probability threshold")
		thetaClose = flag.Float64("theta-close", cfg.Regime.ThetaClose, "Window CLOSE probability threshold")
		confirmOpen = flag.Int("confirm-open", cfg.Regime.ConfirmOpen, "Consecutive DC events required to OPEN")
		confirmClose = flag.Int("confirm-close", cfg.Regime.ConfirmClose, "Consecutive DC events required to CLOSE")
		minTrends = flag.Int("min-trends", cfg.Regime.MinTrends, "Minimum DC events inside a window before it may CLOSE")
		tail = flag.Int("tail", 50, "Rows to print to console (0 = all)")
	)
	flag.Parse()

	if *modelPath == "" {
		log.Fatal("regime-indicator: -model-json is required")
	}

	manager := data.NewDataManager()

	path := *csvPath
	if path == "" {
		path = manager.FindDataFile(*dataRoot, *exchange, *symbol, *interval)
		if path == "" {
			log.Fatalf("regime-indicator: no data file found under %s for %s/%s/%s; pass -csv explicitly", *dataRoot, *exchange, *symbol, *interval)
		}
	}

	bars, err := manager.LoadHistoricalDataCached(path)
	if err != nil {
		log.Fatalf("regime-indicator: loading bars from %s: %v", path, err)
	}
	if err := manager.ValidateData(bars); err != nil {
		log.Fatalf("regime-indicator: validating bars: %v", err)
	}

	if *startStr != "" || *endStr != "" {
		start, end, err := parseRange(*startStr, *endStr)
		if err != nil {
			log.Fatalf("regime-indicator: %v", err)
		}
		bars = manager.GetFilter().FilterByDateRange(bars, start, end)
	}

	model, scaler, _, err := regime.LoadModelArtifact(*modelPath)
	if err != nil {
		log.Fatalf("regime-indicator: loading model artifact: %v", err)
	}

	indicatorCfg := regime.IndicatorConfig{
		DCThetaPct:   *dcTheta,
		ThetaOpen:    *thetaOpen,
		ThetaClose:   *thetaClose,
		ConfirmOpen:  *confirmOpen,
		ConfirmClose: *confirmClose,
		MinTrends:    *minTrends,
	}

	console := reporting.NewDefaultConsoleReporter()
	console.PrintStartupInfo(*symbol, indicatorCfg, false)

	rows, err := regime.BuildRegimeIndicator(bars, model, scaler, indicatorCfg)
	if err != nil {
		log.Fatalf("regime-indicator: building indicator frame: %v", err)
	}

	dir := *outDir
	if dir == "" {
		dir = reporting.DefaultOutputDir(*symbol, "indicator")
	}

	csvOut := fmt.Sprintf("%s/regime_indicator.csv", dir)
	if err := reporting.WriteIndicatorCSV(rows, csvOut); err != nil {
		log.Printf("regime-indicator: writing CSV: %v", err)
	}

	xlsxOut := fmt.Sprintf("%s/regime_indicator.xlsx", dir)
	if err := reporting.WriteIndicatorXLSX(rows, xlsxOut); err != nil {
		log.Printf("regime-indicator: writing workbook: %v", err)
	}

	console.PrintIndicatorFrame(rows, *tail)

	fmt.Printf("\nwrote %d rows to %s and %s\n", len(rows), csvOut, xlsxOut)
}

// parseRange parses the -start/-end RFC3339 flags, defaulting an unset
// bound to the zero time (start) or the far future (end) so a
// one-sided range still filters correctly.
func parseRange(startStr, endStr string) (time.Time, time.Time, error) {
	start := time.Time{}
	end := time.Unix(1<<62, 0)

	if startStr != "" {
		t, err := time.Parse(time.RFC3339, startStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parsing -start: %w", err)
		}
		start = t
	}
	if endStr != "" {
		t, err := time.Parse(time.RFC3339, endStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parsing -end: %w", err)
		}
		end = t
	}
	return start, end, nil
}
