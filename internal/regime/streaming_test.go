package regime

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/regime-stream/pkg/types"
)

func bar(t time.Time, close float64) Bar {
	return types.OHLCV{Timestamp: t, Open: close, High: close, Low: close, Close: close, Volume: 1}
}

func TestNewHMMStreamingDetector_PropagatesModelError(t *testing.T) {
	model, scaler := wellSeparatedModel()
	model.InitialDist = [nStates]float64{0, 0}

	_, err := NewHMMStreamingDetector(0.5, model, scaler, testRule())
	assert.Error(t, err)
}

func TestNewStreamingDetector_FallsBackToHMMWhenBayesArtifactsMissing(t *testing.T) {
	model, scaler := wellSeparatedModel()
	detector, err := NewStreamingDetector(0.5, model, scaler, testRule(), true, nil)
	require.NoError(t, err)
	assert.NotNil(t, detector)

	_, isBayes := detector.scorer.(*bayesScorer)
	assert.False(t, isBayes)
}

func TestNewStreamingDetector_UsesBayesWhenRequestedAndAvailable(t *testing.T) {
	model, scaler := wellSeparatedModel()
	artifacts := testArtifacts()
	detector, err := NewStreamingDetector(0.5, model, scaler, testRule(), true, &artifacts)
	require.NoError(t, err)

	_, isBayes := detector.scorer.(*bayesScorer)
	assert.True(t, isBayes)
}

func TestRegimeStreamingDetector_OnBar_RejectsNoErrorButSkipsDCOnNonFiniteClose(t *testing.T) {
	model, scaler := wellSeparatedModel()
	detector, err := NewHMMStreamingDetector(1.0, model, scaler, testRule())
	require.NoError(t, err)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err = detector.OnBar(bar(start, 100))
	require.NoError(t, err)

	badBar := bar(start.Add(time.Hour), math.NaN())
	changed, err := detector.OnBar(badBar)
	require.NoError(t, err)
	assert.Empty(t, changed)
	assert.False(t, detector.LastBarHadDCEvent())
}

func TestRegimeStreamingDetector_LastScoreTracksMostRecentBar(t *testing.T) {
	model, scaler := wellSeparatedModel()
	detector, err := NewHMMStreamingDetector(50.0, model, scaler, testRule())
	require.NoError(t, err)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_, ok := detector.LastScore()
	assert.False(t, ok)

	// The first bar's feature row always has an undefined return (no
	// previous close to diff against), and rv_20d stays undefined until
	// rvMinSamples returns have accumulated, so the posterior only becomes
	// defined on bar rvMinSamples+1.
	_, err = detector.OnBar(bar(start, 100))
	require.NoError(t, err)
	_, ok = detector.LastScore()
	assert.False(t, ok)

	for i := 1; i <= rvMinSamples; i++ {
		_, err = detector.OnBar(bar(start.Add(time.Duration(i)*time.Hour), 100+2*float64(i)))
		require.NoError(t, err)
	}
	p1, ok := detector.LastScore()
	require.True(t, ok)
	assert.GreaterOrEqual(t, p1, 0.0)
	assert.LessOrEqual(t, p1, 1.0)
}

func TestRegimeStreamingDetector_CurrentWindowReflectsStateMachine(t *testing.T) {
	model, scaler := wellSeparatedModel()
	rule := WindowRule{OpenP: 0.0, CloseP: -1.0, ConfirmOpen: 1, ConfirmClose: 1, MinTrends: 1}
	detector, err := NewHMMStreamingDetector(0.5, model, scaler, rule)
	require.NoError(t, err)

	assert.Nil(t, detector.CurrentWindow())

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	prices := []float64{100, 102, 99, 105, 95}
	for i, p := range prices {
		_, err := detector.OnBar(bar(start.Add(time.Duration(i)*time.Hour), p))
		require.NoError(t, err)
	}
	// OpenP=0 would let any scored DC event open a window, but five bars
	// never give the HMM a defined posterior (rv_20d needs rvMinSamples
	// returns), so the three DC events here reach the state machine as NaN
	// and none qualifies: the machine, and so the detector, stays IDLE.
	assert.Nil(t, detector.CurrentWindow())
}

func TestRegimeStreamingDetector_DeterministicAcrossTwoRuns(t *testing.T) {
	model, scaler := wellSeparatedModel()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	prices := []float64{100, 103, 110, 107, 100, 97, 105, 112, 108, 120}

	run := func() []Window {
		d, err := NewHMMStreamingDetector(2.0, model, scaler, testRule())
		require.NoError(t, err)
		var windows []Window
		for i, p := range prices {
			changed, err := d.OnBar(bar(start.Add(time.Duration(i)*time.Hour), p))
			require.NoError(t, err)
			windows = append(windows, changed...)
		}
		return windows
	}

	w1 := run()
	w2 := run()
	assert.Equal(t, w1, w2)
}

func TestBayesScorer_ScoreCachesBetweenDCEvents(t *testing.T) {
	artifacts := testArtifacts()
	scorer := &bayesScorer{tracker: NewNaiveBayesTracker(artifacts), lastP1: math.NaN()}

	_, ok := scorer.Score(FeatureRow{}, nil)
	assert.False(t, ok)

	p1, ok := scorer.Score(FeatureRow{}, []DCEvent{{TMV: 0.05, TLen: 10}})
	require.True(t, ok)

	// A bar with no DC event reuses the last scored probability rather
	// than going undefined.
	p2, ok := scorer.Score(FeatureRow{}, nil)
	require.True(t, ok)
	assert.Equal(t, p1, p2)
}
