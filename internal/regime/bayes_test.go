package regime

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testArtifacts() NBArtifacts {
	return NBArtifacts{
		Priors: [2]float64{0.5, 0.5},
		CondParams: [2]NBClassParams{
			{
				TMV:  NBFeatureParams{Mean: 0.01, Std: 0.005},
				TLen: NBFeatureParams{Mean: 3, Std: 1},
			},
			{
				TMV:  NBFeatureParams{Mean: 0.05, Std: 0.01},
				TLen: NBFeatureParams{Mean: 10, Std: 3},
			},
		},
	}
}

func TestNaiveBayesTracker_ProbabilitiesSumToOne(t *testing.T) {
	tracker := NewNaiveBayesTracker(testArtifacts())

	post := tracker.ScoreStep(0.03, 6)
	assert.InDelta(t, 1.0, post.PRegime1+post.PRegime2, 1e-9)
	assert.GreaterOrEqual(t, post.PRegime1, 0.0)
	assert.GreaterOrEqual(t, post.PRegime2, 0.0)
}

func TestNaiveBayesTracker_FavorsCloserClass(t *testing.T) {
	tracker := NewNaiveBayesTracker(testArtifacts())

	// (tmv, tlen) squarely inside class 0's parameters.
	post := tracker.ScoreStep(0.01, 3)
	assert.Greater(t, post.PRegime1, post.PRegime2)

	// squarely inside class 1's parameters.
	post2 := tracker.ScoreStep(0.05, 10)
	assert.Greater(t, post2.PRegime2, post2.PRegime1)
}

func TestNaiveBayesTracker_StatelessAcrossCalls(t *testing.T) {
	tracker := NewNaiveBayesTracker(testArtifacts())

	a := tracker.ScoreStep(0.02, 5)
	b := tracker.ScoreStep(0.02, 5)
	assert.Equal(t, a, b)
}

func TestNaiveBayesTracker_NonPositiveStdYieldsNaN(t *testing.T) {
	artifacts := testArtifacts()
	artifacts.CondParams[0].TMV.Std = 0
	artifacts.CondParams[1].TMV.Std = 0
	tracker := NewNaiveBayesTracker(artifacts)

	post := tracker.ScoreStep(0.02, 5)
	assert.True(t, math.IsNaN(post.PRegime1))
	assert.True(t, math.IsNaN(post.PRegime2))
}

func TestGaussianLogLikelihood_NonPositiveSigma(t *testing.T) {
	assert.True(t, math.IsInf(gaussianLogLikelihood(1.0, 0.0, 0.0), -1))
	assert.True(t, math.IsInf(gaussianLogLikelihood(1.0, 0.0, -1.0), -1))
	assert.True(t, math.IsInf(gaussianLogLikelihood(1.0, 0.0, math.NaN()), -1))
}

func TestGaussianLogLikelihood_PeaksAtMean(t *testing.T) {
	atMean := gaussianLogLikelihood(5.0, 5.0, 1.0)
	offMean := gaussianLogLikelihood(7.0, 5.0, 1.0)
	assert.Greater(t, atMean, offMean)
}
