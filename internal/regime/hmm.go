package regime

import (
	"math"

	regerr "github.com/ducminhle1904/regime-stream/internal/errors"
)

// HMMModel is the immutable, offline-trained 2-state Gaussian HMM with
// diagonal covariances consumed by HMMTracker. Persisted format is out
// of scope; this is just the shape the core needs at runtime.
type HMMModel struct {
	InitialDist [nStates]float64
	Transition  [nStates][nStates]float64 // rows sum to 1
	Means       [nStates][nFeatures]float64
	Variances   [nStates][nFeatures]float64
}

// Scaler applies (x - mean) / std per feature, fitted offline.
type Scaler struct {
	Mean [nFeatures]float64
	Std  [nFeatures]float64
}

// Transform returns a scaled copy of one observation vector; x itself is
// not modified.
func (s Scaler) Transform(x [nFeatures]float64) [nFeatures]float64 {
	var out [nFeatures]float64
	for i := range x {
		out[i] = (x[i] - s.Mean[i]) / s.Std[i]
	}
	return out
}

// Posterior is the per-step HMM output: state occupation probabilities
// and the MAP state. Fields are math.NaN() when undefined.
type Posterior struct {
	PState0  float64
	PState1  float64
	MapState int // -1 when undefined
}

// HMMTracker is a stateful incremental posterior estimator over a 2-state
// Gaussian HMM. It does not store the scaled feature rows: it keeps a
// count of the rows consumed and the incremental forward message at the
// last one, so each step is O(1)
// amortized rather than the O(T) full-buffer recompute spec.md §4.3
// permits as an alternative (§9 "Growing HMM buffer").
type HMMTracker struct {
	model  HMMModel
	scaler Scaler

	buffered   int
	logAlpha   [nStates]float64 // log forward message at the last buffered step
	haveAlpha  bool
	lastPost   Posterior
	havePost   bool
}

// NewHMMTracker constructs a tracker bound to an immutable model/scaler
// pair. Multiple trackers may safely share the same model and scaler.
func NewHMMTracker(model HMMModel, scaler Scaler) (*HMMTracker, error) {
	var rowSum float64
	for _, p := range model.InitialDist {
		rowSum += p
	}
	if rowSum <= 0 {
		return nil, regerr.NewRegimeError("HMMTracker", "NewHMMTracker", "initial distribution must sum to a positive value")
	}
	for _, row := range model.Transition {
		var s float64
		for _, p := range row {
			s += p
		}
		if s <= 0 {
			return nil, regerr.NewRegimeError("HMMTracker", "NewHMMTracker", "transition matrix rows must sum to a positive value")
		}
	}
	for _, v := range scaler.Std {
		if v == 0 {
			return nil, regerr.NewRegimeError("HMMTracker", "NewHMMTracker", "scaler std must be nonzero")
		}
	}
	return &HMMTracker{model: model, scaler: scaler}, nil
}

// ScoreStep consumes one feature row and returns the posterior at the
// current (possibly just-extended) step. Non-finite feature rows do not
// extend the buffer: if the buffer is empty the posterior is undefined,
// otherwise the last computed posterior is returned unchanged.
func (h *HMMTracker) ScoreStep(row FeatureRow) Posterior {
	x := [nFeatures]float64{row.Ret, row.RV20d}
	finite := true
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			finite = false
			break
		}
	}

	if !finite {
		if h.buffered == 0 {
			return Posterior{PState0: math.NaN(), PState1: math.NaN(), MapState: -1}
		}
		return h.lastPost
	}

	z := h.scaler.Transform(x)
	h.extend(z)
	h.buffered++
	h.lastPost = h.posteriorFromAlpha()
	h.havePost = true
	return h.lastPost
}

// extend performs one step of the log-space scaled forward recursion:
// alpha_t = emission_t * (alpha_{t-1} * A), normalized to sum to 1 in log
// space at every step (the standard scaled forward algorithm). This is
// numerically identical (within the 1e-9 tolerance spec.md §4.3 allows)
// to recomputing the posterior over the full buffer from scratch at
// every step, which is what spec.md describes as the baseline algorithm.
func (h *HMMTracker) extend(z [nFeatures]float64) {
	var logEmission [nStates]float64
	for k := 0; k < nStates; k++ {
		logEmission[k] = h.logGaussian(z, k)
	}

	var newLogAlpha [nStates]float64
	if !h.haveAlpha {
		for k := 0; k < nStates; k++ {
			newLogAlpha[k] = safeLog(h.model.InitialDist[k]) + logEmission[k]
		}
	} else {
		for k := 0; k < nStates; k++ {
			var terms [nStates]float64
			for j := 0; j < nStates; j++ {
				terms[j] = h.logAlpha[j] + safeLog(h.model.Transition[j][k])
			}
			newLogAlpha[k] = logSumExp(terms[:]) + logEmission[k]
		}
	}

	// Normalize in log space so logAlpha never drifts toward -Inf across
	// a long-running buffer; this is the "per-step rescaling" spec.md §9
	// describes and does not change the resulting posterior ratios.
	norm := logSumExp(newLogAlpha[:])
	for k := range newLogAlpha {
		newLogAlpha[k] -= norm
	}

	h.logAlpha = newLogAlpha
	h.haveAlpha = true
}

func (h *HMMTracker) logGaussian(z [nFeatures]float64, state int) float64 {
	var ll float64
	for f := 0; f < nFeatures; f++ {
		mu := h.model.Means[state][f]
		variance := h.model.Variances[state][f]
		if variance <= 0 {
			return math.Inf(-1)
		}
		d := z[f] - mu
		ll += -0.5*(d*d/variance) - 0.5*math.Log(2*math.Pi*variance)
	}
	return ll
}

func (h *HMMTracker) posteriorFromAlpha() Posterior {
	norm := logSumExp(h.logAlpha[:])
	p0 := math.Exp(h.logAlpha[0] - norm)
	p1 := math.Exp(h.logAlpha[1] - norm)
	mapState := 0
	if p1 > p0 {
		mapState = 1
	}
	return Posterior{PState0: p0, PState1: p1, MapState: mapState}
}

func safeLog(p float64) float64 {
	if p <= 0 {
		return math.Inf(-1)
	}
	return math.Log(p)
}

func logSumExp(xs []float64) float64 {
	m := math.Inf(-1)
	for _, x := range xs {
		if x > m {
			m = x
		}
	}
	if math.IsInf(m, -1) {
		return m
	}
	var sum float64
	for _, x := range xs {
		sum += math.Exp(x - m)
	}
	return m + math.Log(sum)
}
