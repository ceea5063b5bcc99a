package regime

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wellSeparatedModel returns a 2-state model whose emission distributions
// are far enough apart that a handful of observations drawn from one
// state's mean should drive the posterior toward that state.
func wellSeparatedModel() (HMMModel, Scaler) {
	model := HMMModel{
		InitialDist: [nStates]float64{0.5, 0.5},
		Transition: [nStates][nStates]float64{
			{0.95, 0.05},
			{0.05, 0.95},
		},
		Means: [nStates][nFeatures]float64{
			{-1.0, -1.0},
			{1.0, 1.0},
		},
		Variances: [nStates][nFeatures]float64{
			{1.0, 1.0},
			{1.0, 1.0},
		},
	}
	scaler := Scaler{Mean: [nFeatures]float64{0, 0}, Std: [nFeatures]float64{1, 1}}
	return model, scaler
}

func TestNewHMMTracker_ValidModel(t *testing.T) {
	model, scaler := wellSeparatedModel()
	tracker, err := NewHMMTracker(model, scaler)
	require.NoError(t, err)
	assert.NotNil(t, tracker)
}

func TestNewHMMTracker_RejectsZeroInitialDist(t *testing.T) {
	model, scaler := wellSeparatedModel()
	model.InitialDist = [nStates]float64{0, 0}
	_, err := NewHMMTracker(model, scaler)
	assert.Error(t, err)
}

func TestNewHMMTracker_RejectsZeroTransitionRow(t *testing.T) {
	model, scaler := wellSeparatedModel()
	model.Transition[0] = [nStates]float64{0, 0}
	_, err := NewHMMTracker(model, scaler)
	assert.Error(t, err)
}

func TestNewHMMTracker_RejectsZeroScalerStd(t *testing.T) {
	model, scaler := wellSeparatedModel()
	scaler.Std[0] = 0
	_, err := NewHMMTracker(model, scaler)
	assert.Error(t, err)
}

func TestHMMTracker_ScoreStep_UndefinedBeforeAnyFiniteObservation(t *testing.T) {
	model, scaler := wellSeparatedModel()
	tracker, err := NewHMMTracker(model, scaler)
	require.NoError(t, err)

	post := tracker.ScoreStep(FeatureRow{Ret: math.NaN(), RV20d: math.NaN()})
	assert.True(t, math.IsNaN(post.PState0))
	assert.True(t, math.IsNaN(post.PState1))
	assert.Equal(t, -1, post.MapState)
}

func TestHMMTracker_ScoreStep_NonFiniteHoldsLastPosterior(t *testing.T) {
	model, scaler := wellSeparatedModel()
	tracker, err := NewHMMTracker(model, scaler)
	require.NoError(t, err)

	first := tracker.ScoreStep(FeatureRow{Ret: 1.0, RV20d: 1.0})
	require.False(t, math.IsNaN(first.PState0))

	held := tracker.ScoreStep(FeatureRow{Ret: math.NaN(), RV20d: 1.0})
	assert.Equal(t, first, held)
}

func TestHMMTracker_PosteriorSumsToOne(t *testing.T) {
	model, scaler := wellSeparatedModel()
	tracker, err := NewHMMTracker(model, scaler)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		post := tracker.ScoreStep(FeatureRow{Ret: float64(i%3) - 1, RV20d: 0.1})
		assert.InDelta(t, 1.0, post.PState0+post.PState1, 1e-9)
	}
}

func TestHMMTracker_ConvergesTowardEmittingState(t *testing.T) {
	model, scaler := wellSeparatedModel()
	tracker, err := NewHMMTracker(model, scaler)
	require.NoError(t, err)

	var post Posterior
	for i := 0; i < 20; i++ {
		post = tracker.ScoreStep(FeatureRow{Ret: 1.0, RV20d: 1.0})
	}
	assert.Equal(t, 1, post.MapState)
	assert.Greater(t, post.PState1, post.PState0)
}

func TestHMMTracker_DeterministicReplay(t *testing.T) {
	model, scaler := wellSeparatedModel()
	rows := []FeatureRow{
		{Ret: 0.5, RV20d: 0.2},
		{Ret: -0.3, RV20d: 0.1},
		{Ret: 1.2, RV20d: 0.4},
	}

	t1, err := NewHMMTracker(model, scaler)
	require.NoError(t, err)
	t2, err := NewHMMTracker(model, scaler)
	require.NoError(t, err)

	var last1, last2 Posterior
	for _, r := range rows {
		last1 = t1.ScoreStep(r)
		last2 = t2.ScoreStep(r)
	}
	assert.Equal(t, last1, last2)
}

func TestSafeLog(t *testing.T) {
	assert.True(t, math.IsInf(safeLog(0), -1))
	assert.True(t, math.IsInf(safeLog(-1), -1))
	assert.InDelta(t, 0.0, safeLog(1), 1e-9)
}

func TestLogSumExp(t *testing.T) {
	got := logSumExp([]float64{0, 0})
	assert.InDelta(t, math.Log(2), got, 1e-9)

	assert.True(t, math.IsInf(logSumExp([]float64{math.Inf(-1), math.Inf(-1)}), -1))
}
