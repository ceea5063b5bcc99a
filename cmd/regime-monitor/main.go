// Command regime-monitor runs RegimeStreamingDetector bar-by-bar over a
// CSV source, the streaming analogue of the offline batch indicator
// tool. It prints OPEN/CLOSE window transitions as they are confirmed
// and exposes health/metrics endpoints the way the teacher's live bots
// do, minus any trading or order logic (out of scope).
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ducminhle1904/regime-stream/internal/config"
	"github.com/ducminhle1904/regime-stream/internal/logger"
	"github.com/ducminhle1904/regime-stream/internal/monitoring"
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
		symbol    = flag.String("symbol", cfg.Regime.Symbol, "Symbol label for logging, metrics, and data lookup")
		startStr  = flag.String("start", "", "RFC3339 timestamp: drop bars before this instant")
		endStr    = flag.String("end", "", "RFC3339 timestamp: drop bars after this instant")
		useBayes  = flag.Bool("use-bayes", cfg.Regime.UseBayes, "Score windows with the Naive-Bayes event classifier instead of the HMM")
		speed     = flag.Duration("tick-interval", 0, "Delay between bars, to simulate a live feed (0 = replay as fast as possible)")
	)
	flag.Parse()

	if *modelPath == "" {
		log.Fatal("regime-monitor: -model-json is required")
	}

	appLogger, err := logger.NewLoggerWithDebug(*symbol, "stream", cfg.LogLevel == "debug")
	if err != nil {
		log.Fatalf("regime-monitor: creating logger: %v", err)
	}
	defer appLogger.Close()

	health := monitoring.NewHealthChecker()
	go setupMonitoringServers(cfg, health)

	manager := data.NewDataManager()

	path := *csvPath
	if path == "" {
		path = manager.FindDataFile(*dataRoot, *exchange, *symbol, *interval)
		if path == "" {
			log.Fatalf("regime-monitor: no data file found under %s for %s/%s/%s; pass -csv explicitly", *dataRoot, *exchange, *symbol, *interval)
		}
	}

	bars, err := manager.LoadHistoricalDataCached(path)
	if err != nil {
		appLogger.LogError("loading bars", err)
		log.Fatalf("regime-monitor: loading bars from %s: %v", path, err)
	}

	if *startStr != "" || *endStr != "" {
		start, end, err := parseRange(*startStr, *endStr)
		if err != nil {
			log.Fatalf("regime-monitor: %v", err)
		}
		bars = manager.GetFilter().FilterByDateRange(bars, start, end)
	}

	model, scaler, bayesArtifacts, err := regime.LoadModelArtifact(*modelPath)
	if err != nil {
		appLogger.LogError("loading model artifact", err)
		log.Fatalf("regime-monitor: loading model artifact: %v", err)
	}

	rule := regime.WindowRule{
		OpenP:        cfg.Regime.ThetaOpen,
		CloseP:       cfg.Regime.ThetaClose,
		ConfirmOpen:  cfg.Regime.ConfirmOpen,
		ConfirmClose: cfg.Regime.ConfirmClose,
		MinTrends:    cfg.Regime.MinTrends,
	}

	detector, err := regime.NewStreamingDetector(cfg.Regime.DCThetaPct, model, scaler, rule, *useBayes, bayesArtifacts)
	if err != nil {
		appLogger.LogError("constructing detector", err)
		log.Fatalf("regime-monitor: constructing detector: %v", err)
	}

	console := reporting.NewDefaultConsoleReporter()
	indicatorCfg := regime.IndicatorConfig{
		DCThetaPct:   cfg.Regime.DCThetaPct,
		ThetaOpen:    cfg.Regime.ThetaOpen,
		ThetaClose:   cfg.Regime.ThetaClose,
		ConfirmOpen:  cfg.Regime.ConfirmOpen,
		ConfirmClose: cfg.Regime.ConfirmClose,
		MinTrends:    cfg.Regime.MinTrends,
	}
	console.PrintStartupInfo(*symbol, indicatorCfg, *useBayes)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var windows []regime.Window
	health.SetReceiving(true)
	openedAtBar := -1

runLoop:
	for i, bar := range bars {
		select {
		case <-sigChan:
			appLogger.Warning("received shutdown signal, stopping replay")
			break runLoop
		default:
		}

		changed, err := detector.OnBar(bar)
		if err != nil {
			appLogger.LogError("processing bar", err)
			health.AddError(err.Error())
			continue
		}
		health.UpdateBar(bar.Timestamp, bar.Close)

		if p1, ok := detector.LastScore(); ok {
			mapState := 0
			if p1 > 0.5 {
				mapState = 1
			}
			monitoring.RecordPosterior(*symbol, mapState, p1)
		}
		if detector.LastBarHadDCEvent() {
			monitoring.RecordDCEvent(*symbol)
		}

		for _, w := range changed {
			windows = append(windows, w)
			if w.Open() {
				openedAtBar = i
				fmt.Printf("OPEN,%s,%s\n", w.Start.Format(time.RFC3339), w.Label)
				appLogger.LogWindowEvent("OPEN", w.Label, w.Start)
				monitoring.RecordWindowOpen(*symbol, w.Label)
			} else {
				fmt.Printf("CLOSE,%s,%s\n", w.End.Format(time.RFC3339), w.Label)
				appLogger.LogWindowEvent("CLOSE", w.Label, w.End)
				durationBars := 0
				if openedAtBar >= 0 {
					durationBars = i - openedAtBar
				}
				monitoring.RecordWindowClose(*symbol, w.Label, durationBars)
			}
		}

		if *speed > 0 {
			time.Sleep(*speed)
		}
	}

	health.SetReceiving(false)
	console.PrintWindows(windows)
}

func setupMonitoringServers(cfg *config.Config, health *monitoring.HealthChecker) {
	healthMux := http.NewServeMux()
	healthMux.Handle("/health", health)

	go func() {
		log.Printf("regime-monitor: health server listening on :%d", cfg.Monitoring.HealthPort)
		if err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.Monitoring.HealthPort), healthMux); err != nil {
			log.Printf("regime-monitor: health server error: %v", err)
		}
	}()

	go func() {
		log.Printf("regime-monitor: metrics server listening on :%d", cfg.Monitoring.PrometheusPort)
		if err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.Monitoring.PrometheusPort), monitoring.NewMetricsHandler()); err != nil {
			log.Printf("regime-monitor: metrics server error: %v", err)
		}
	}()
}
