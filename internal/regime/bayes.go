package regime

import "math"

// NBFeatureParams holds a per-class Gaussian (mean, std) for one scalar
// feature used by NaiveBayesTracker.
type NBFeatureParams struct {
	Mean float64
	Std  float64
}

// NBClassParams holds the per-class conditional parameters for both DC
// event statistics the tracker scores on.
type NBClassParams struct {
	TMV  NBFeatureParams
	TLen NBFeatureParams
}

// NBArtifacts is the immutable, offline-fitted Naive-Bayes artifact:
// class priors and per-class Gaussian parameters over (tmv, tlen).
type NBArtifacts struct {
	Priors     [2]float64
	CondParams [2]NBClassParams
}

// BayesPosterior is the per-event output of NaiveBayesTracker. The
// naming preserves the source convention: PRegime1 keys class 0,
// PRegime2 keys class 1 — the "target" regime the window machine
// gates on.
type BayesPosterior struct {
	PRegime1 float64
	PRegime2 float64
}

// NaiveBayesTracker is a stateless Gaussian Naive-Bayes classifier over
// DC event statistics (tmv, tlen), offered as an alternative scorer to
// HMMTracker.
type NaiveBayesTracker struct {
	artifacts NBArtifacts
}

// NewNaiveBayesTracker constructs a tracker bound to an immutable
// priors/cond-params artifact.
func NewNaiveBayesTracker(artifacts NBArtifacts) *NaiveBayesTracker {
	return &NaiveBayesTracker{artifacts: artifacts}
}

// ScoreStep scores one DC event's (tmv, tlen) pair. The caller is
// responsible for invoking this only on bars where a DC event closed.
func (n *NaiveBayesTracker) ScoreStep(tmv, tlen float64) BayesPosterior {
	var ll [2]float64
	for cls := 0; cls < 2; cls++ {
		p := n.artifacts.CondParams[cls]
		ll[cls] = safeLog(n.artifacts.Priors[cls]) +
			gaussianLogLikelihood(tmv, p.TMV.Mean, p.TMV.Std) +
			gaussianLogLikelihood(tlen, p.TLen.Mean, p.TLen.Std)
	}

	norm := logSumExp(ll[:])
	p0 := math.Exp(ll[0] - norm)
	p1 := math.Exp(ll[1] - norm)
	if math.IsInf(norm, -1) {
		p0, p1 = math.NaN(), math.NaN()
	}
	return BayesPosterior{PRegime1: p0, PRegime2: p1}
}

// gaussianLogLikelihood returns the Gaussian log-density of x given
// (mu, sigma); -Inf when sigma is non-positive or non-finite, per
// spec.md §4.4.
func gaussianLogLikelihood(x, mu, sigma float64) float64 {
	if sigma <= 0 || math.IsNaN(sigma) || math.IsInf(sigma, 0) {
		return math.Inf(-1)
	}
	z := (x - mu) / sigma
	return -0.5*(z*z) - math.Log(sigma) - 0.5*math.Log(2*math.Pi)
}
