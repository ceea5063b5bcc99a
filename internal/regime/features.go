package regime

import (
	"math"
	"time"
)

// rvWindow is the number of trailing returns the realized-vol feature is
// computed over (W = 20 in spec.md §4.2).
const rvWindow = 20

// rvMinSamples is the minimum number of buffered returns required before
// rv_20d is considered defined: max(2, W/2).
const rvMinSamples = rvWindow / 2

// FeatureRow is the per-bar feature vector produced by FeatureBuilder.
// Ret and RV20d are math.NaN() when undefined.
type FeatureRow struct {
	T     time.Time
	Ret   float64
	RV20d float64
}

// FeatureBuilder is a stateful per-bar feature extractor maintaining a
// bounded FIFO of the last rvWindow log-returns.
type FeatureBuilder struct {
	prevClose float64
	hasPrev   bool
	rets      []float64 // ring buffer, oldest first, len <= rvWindow
}

// NewFeatureBuilder constructs an empty FeatureBuilder.
func NewFeatureBuilder() *FeatureBuilder {
	return &FeatureBuilder{rets: make([]float64, 0, rvWindow)}
}

// OnBar consumes one bar and returns its feature row, timestamped at
// bar.Timestamp.
func (f *FeatureBuilder) OnBar(bar Bar) FeatureRow {
	close := bar.Close
	ret := math.NaN()

	closeFinite := !math.IsNaN(close) && !math.IsInf(close, 0) && close > 0
	if f.hasPrev && closeFinite {
		ret = math.Log(close / f.prevClose)
	}
	if !math.IsNaN(ret) {
		f.push(ret)
	}
	if closeFinite {
		f.prevClose = close
		f.hasPrev = true
	}

	rv := math.NaN()
	if len(f.rets) >= rvMinSamples {
		rv = sampleStd(f.rets) * math.Sqrt(252.0)
	}

	return FeatureRow{T: bar.Timestamp, Ret: ret, RV20d: rv}
}

func (f *FeatureBuilder) push(ret float64) {
	if len(f.rets) == rvWindow {
		copy(f.rets, f.rets[1:])
		f.rets[len(f.rets)-1] = ret
		return
	}
	f.rets = append(f.rets, ret)
}

// sampleStd returns the population standard deviation (ddof=0) of xs.
func sampleStd(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var mean float64
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))

	var sumSq float64
	for _, x := range xs {
		d := x - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(xs)))
}
