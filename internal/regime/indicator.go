package regime

import (
	"math"
	"time"
)

// IndicatorRow is one row of the batch indicator frame produced by
// BuildRegimeIndicator (spec.md §4.7).
type IndicatorRow struct {
	T             time.Time
	RegState      int // -1 when undefined
	RegP0         float64
	RegP1         float64
	RegOpen       bool
	RegClose      bool
	RegWindowID   int // 0 when undefined (window IDs start at 1)
	RegAge        int
	RegConf       float64
	DCTMV         float64
	DCTLen        int
	DCR           float64
	DCEventBar    bool
}

// IndicatorConfig bundles the thresholds BuildRegimeIndicator needs,
// mirroring spec.md §6's configuration table.
type IndicatorConfig struct {
	DCThetaPct float64
	ThetaOpen  float64
	ThetaClose float64
	ConfirmOpen int
	ConfirmClose int
	MinTrends  int
}

// BuildRegimeIndicator replays the online pipeline over a chronological
// close series and produces a row-per-bar indicator frame (spec.md
// §4.7). It is a deterministic replay of RegimeStreamingDetector's HMM
// path: identical bars through both produce identical window
// boundaries.
func BuildRegimeIndicator(bars []Bar, model HMMModel, scaler Scaler, cfg IndicatorConfig) ([]IndicatorRow, error) {
	rule := WindowRule{
		OpenP:        cfg.ThetaOpen,
		CloseP:       cfg.ThetaClose,
		ConfirmOpen:  cfg.ConfirmOpen,
		ConfirmClose: cfg.ConfirmClose,
		MinTrends:    cfg.MinTrends,
	}

	dc := NewDCUpdater(cfg.DCThetaPct)
	fb := NewFeatureBuilder()
	tracker, err := NewHMMTracker(model, scaler)
	if err != nil {
		return nil, err
	}
	sm := NewWindowStateMachine(rule)

	rows := make([]IndicatorRow, 0, len(bars))

	var windowID int // 0 = none
	var windowsOpened int
	var age int
	var lastTMV, lastR float64 = math.NaN(), math.NaN()
	var lastTLen int

	for _, bar := range bars {
		closeFinite := !math.IsNaN(bar.Close) && !math.IsInf(bar.Close, 0) && bar.Close > 0

		var dcEvents []DCEvent
		if closeFinite {
			evs, err := dc.Update(bar.Timestamp, bar.Close)
			if err != nil {
				return nil, err
			}
			dcEvents = evs
		}

		feat := fb.OnBar(bar)
		post := tracker.ScoreStep(feat)

		mapState := -1
		if !math.IsNaN(post.PState0) && !math.IsNaN(post.PState1) {
			mapState = post.MapState
		}

		var changed []Window
		for _, ev := range dcEvents {
			lastTMV = ev.TMV
			lastTLen = ev.TLen
			lastR = ev.R
			changed = append(changed, sm.OnProb(bar.Timestamp, post.PState1, true)...)
		}

		regOpen, regClose := false, false
		rowWindowID := windowID
		rowAge := age
		for _, w := range changed {
			if w.Open() {
				regOpen = true
				windowsOpened++
				windowID = windowsOpened
				age = 0
				rowWindowID = windowID
				rowAge = 0
			} else {
				// The closing row still carries the window's id and the
				// age it had reached before the reset (spec.md §4.7's
				// age-increment rule); window_id/age are cleared
				// starting the next row.
				regClose = true
				rowWindowID = windowID
				rowAge = age
				windowID = 0
				age = 0
			}
		}

		incrementAge := windowID != 0 && !regOpen

		conf := math.NaN()
		if !math.IsNaN(post.PState0) && !math.IsNaN(post.PState1) {
			conf = math.Max(post.PState0, post.PState1)
		}

		rows = append(rows, IndicatorRow{
			T:           bar.Timestamp,
			RegState:    mapState,
			RegP0:       post.PState0,
			RegP1:       post.PState1,
			RegOpen:     regOpen,
			RegClose:    regClose,
			RegWindowID: rowWindowID,
			RegAge:      rowAge,
			RegConf:     conf,
			DCTMV:       lastTMV,
			DCTLen:      lastTLen,
			DCR:         lastR,
			DCEventBar:  len(dcEvents) > 0,
		})

		if incrementAge {
			age++
		}
	}

	return rows, nil
}
