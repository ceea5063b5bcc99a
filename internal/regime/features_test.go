package regime

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ducminhle1904/regime-stream/pkg/types"
)

func generateBars(start time.Time, closes []float64) []Bar {
	bars := make([]Bar, len(closes))
	for i, c := range closes {
		bars[i] = types.OHLCV{
			Timestamp: start.Add(time.Duration(i) * time.Hour),
			Open:      c,
			High:      c,
			Low:       c,
			Close:     c,
			Volume:    1000,
		}
	}
	return bars
}

func TestNewFeatureBuilder(t *testing.T) {
	f := NewFeatureBuilder()
	assert.NotNil(t, f)
	assert.False(t, f.hasPrev)
	assert.Empty(t, f.rets)
}

func TestFeatureBuilder_FirstBarRetUndefined(t *testing.T) {
	f := NewFeatureBuilder()
	row := f.OnBar(generateBars(time.Now(), []float64{100})[0])

	assert.True(t, math.IsNaN(row.Ret))
	assert.True(t, math.IsNaN(row.RV20d))
}

func TestFeatureBuilder_RetIsLogReturn(t *testing.T) {
	f := NewFeatureBuilder()
	bars := generateBars(time.Now(), []float64{100, 110})

	f.OnBar(bars[0])
	row := f.OnBar(bars[1])

	assert.InDelta(t, math.Log(110.0/100.0), row.Ret, 1e-9)
}

func TestFeatureBuilder_RVUndefinedBeforeMinSamples(t *testing.T) {
	f := NewFeatureBuilder()
	closes := make([]float64, rvMinSamples)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	bars := generateBars(time.Now(), closes)

	var last FeatureRow
	for _, bar := range bars {
		last = f.OnBar(bar)
	}
	// rvMinSamples bars give only rvMinSamples-1 buffered returns, one
	// short of the threshold (len(f.rets) >= rvMinSamples fires only once
	// rvMinSamples *returns* have accumulated, which needs rvMinSamples+1
	// bars).
	assert.True(t, math.IsNaN(last.RV20d))
}

func TestFeatureBuilder_RVDefinedAtMinSamples(t *testing.T) {
	f := NewFeatureBuilder()
	closes := make([]float64, rvMinSamples+1)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	bars := generateBars(time.Now(), closes)

	var last FeatureRow
	for _, bar := range bars {
		last = f.OnBar(bar)
	}
	assert.False(t, math.IsNaN(last.RV20d))
	assert.GreaterOrEqual(t, last.RV20d, 0.0)
}

func TestFeatureBuilder_RingBufferBounded(t *testing.T) {
	f := NewFeatureBuilder()
	closes := make([]float64, rvWindow*3)
	for i := range closes {
		closes[i] = 100 + float64(i%7)
	}
	bars := generateBars(time.Now(), closes)

	for _, bar := range bars {
		f.OnBar(bar)
	}
	assert.LessOrEqual(t, len(f.rets), rvWindow)
}

func TestFeatureBuilder_NonFiniteCloseSkipsReturnNotState(t *testing.T) {
	f := NewFeatureBuilder()
	bars := generateBars(time.Now(), []float64{100, 101})
	bars[1].Close = math.NaN()

	f.OnBar(bars[0])
	row := f.OnBar(bars[1])

	assert.True(t, math.IsNaN(row.Ret))
	// prevClose is left at 100 (the last finite close), so the next
	// finite bar recovers a return against it rather than against NaN.
	assert.Equal(t, 100.0, f.prevClose)
	assert.True(t, f.hasPrev)
}

func TestFeatureBuilder_NonPositiveCloseTreatedNonFinite(t *testing.T) {
	f := NewFeatureBuilder()
	bars := generateBars(time.Now(), []float64{100, 0, -5})

	f.OnBar(bars[0])
	row1 := f.OnBar(bars[1])
	row2 := f.OnBar(bars[2])

	assert.True(t, math.IsNaN(row1.Ret))
	assert.True(t, math.IsNaN(row2.Ret))
}
