package regime

import "math"

// Scorer produces the regime-2 probability the window machine gates on
// for a given bar. spec.md §9 asks for this as a narrow interface rather
// than deep inheritance, so HMMTracker and NaiveBayesTracker are
// wrapped in hmmScorer / bayesScorer rather than sharing a base type.
type Scorer interface {
	// Score consumes the bar's feature row and any DC events produced on
	// this tick, and returns p_regime2 and whether it is defined.
	Score(feat FeatureRow, dcEvents []DCEvent) (pRegime2 float64, ok bool)
}

type hmmScorer struct {
	tracker *HMMTracker
}

func (s *hmmScorer) Score(feat FeatureRow, dcEvents []DCEvent) (float64, bool) {
	post := s.tracker.ScoreStep(feat)
	if math.IsNaN(post.PState1) {
		return 0, false
	}
	return post.PState1, true
}

type bayesScorer struct {
	tracker  *NaiveBayesTracker
	lastP1   float64
	haveLast bool
}

func (s *bayesScorer) Score(_ FeatureRow, dcEvents []DCEvent) (float64, bool) {
	if len(dcEvents) > 0 {
		ev := dcEvents[len(dcEvents)-1]
		post := s.tracker.ScoreStep(ev.TMV, float64(ev.TLen))
		if !math.IsNaN(post.PRegime2) {
			s.lastP1 = post.PRegime2
			s.haveLast = true
		}
	}
	if !s.haveLast {
		return 0, false
	}
	return s.lastP1, true
}

// RegimeStreamingDetector binds DCUpdater, FeatureBuilder, a Scorer
// (HMM or Bayes), and WindowStateMachine into the live bar-by-bar path
// (spec.md §4.6).
type RegimeStreamingDetector struct {
	dc       *DCUpdater
	features *FeatureBuilder
	scorer   Scorer
	windows  *WindowStateMachine

	lastP1      float64
	lastHaveP1  bool
	lastDCEvent bool
}

// NewHMMStreamingDetector builds a detector that scores bars with the
// HMM posterior tracker (spec.md §4.6 "Composition (HMM path)").
func NewHMMStreamingDetector(dcThetaPct float64, model HMMModel, scaler Scaler, rule WindowRule) (*RegimeStreamingDetector, error) {
	tracker, err := NewHMMTracker(model, scaler)
	if err != nil {
		return nil, err
	}
	return &RegimeStreamingDetector{
		dc:       NewDCUpdater(dcThetaPct),
		features: NewFeatureBuilder(),
		scorer:   &hmmScorer{tracker: tracker},
		windows:  NewWindowStateMachine(rule),
	}, nil
}

// NewBayesStreamingDetector builds a detector that scores bars with the
// Naive-Bayes event classifier (spec.md §4.6 "Composition (Bayes path)").
func NewBayesStreamingDetector(dcThetaPct float64, artifacts NBArtifacts, rule WindowRule) *RegimeStreamingDetector {
	return &RegimeStreamingDetector{
		dc:       NewDCUpdater(dcThetaPct),
		features: NewFeatureBuilder(),
		scorer:   &bayesScorer{tracker: NewNaiveBayesTracker(artifacts), lastP1: math.NaN()},
		windows:  NewWindowStateMachine(rule),
	}
}

// NewStreamingDetector selects the HMM or Bayes path according to
// useBayes and the availability of Bayes artifacts, falling back to the
// HMM path when the Bayes path is requested but artifacts are missing
// (spec.md §7 "Missing optional artifact").
func NewStreamingDetector(dcThetaPct float64, model HMMModel, scaler Scaler, rule WindowRule, useBayes bool, bayesArtifacts *NBArtifacts) (*RegimeStreamingDetector, error) {
	if useBayes && bayesArtifacts != nil {
		return NewBayesStreamingDetector(dcThetaPct, *bayesArtifacts, rule), nil
	}
	return NewHMMStreamingDetector(dcThetaPct, model, scaler, rule)
}

// OnBar feeds one bar through the pipeline and returns any windows
// opened or closed on this tick.
func (d *RegimeStreamingDetector) OnBar(bar Bar) ([]Window, error) {
	closeFinite := !math.IsNaN(bar.Close) && !math.IsInf(bar.Close, 0) && bar.Close > 0

	var dcEvents []DCEvent
	if closeFinite {
		evs, err := d.dc.Update(bar.Timestamp, bar.Close)
		if err != nil {
			return nil, err
		}
		dcEvents = evs
	}

	feat := d.features.OnBar(bar)
	p1, ok := d.scorer.Score(feat, dcEvents)
	d.lastP1, d.lastHaveP1 = p1, ok
	d.lastDCEvent = len(dcEvents) > 0

	// Every DC event drives the window machine regardless of whether the
	// scorer produced a defined probability this tick: an active window's
	// trend_count advances unconditionally (spec.md §4.5), so an
	// undefined score must still reach OnProb (as NaN, which never
	// qualifies for OPEN or CLOSE) rather than being skipped outright.
	p := p1
	if !ok {
		p = math.NaN()
	}
	var changed []Window
	for range dcEvents {
		changed = append(changed, d.windows.OnProb(bar.Timestamp, p, true)...)
	}
	return changed, nil
}

// CurrentWindow returns the active window, or nil when none is open.
func (d *RegimeStreamingDetector) CurrentWindow() *Window {
	return d.windows.Current()
}

// LastScore returns the p_regime2 probability computed on the most
// recent OnBar call, and whether it was defined.
func (d *RegimeStreamingDetector) LastScore() (pRegime2 float64, ok bool) {
	return d.lastP1, d.lastHaveP1
}

// LastBarHadDCEvent reports whether the most recent OnBar call closed a
// directional-change event.
func (d *RegimeStreamingDetector) LastBarHadDCEvent() bool {
	return d.lastDCEvent
}
