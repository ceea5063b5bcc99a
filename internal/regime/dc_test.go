package regime

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tick is a minimal (time, price) pair used to drive a DCUpdater in
// tests without constructing full Bar values.
type tick struct {
	t     time.Time
	price float64
}

func genTicks(start time.Time, prices []float64) []tick {
	ticks := make([]tick, len(prices))
	for i, p := range prices {
		ticks[i] = tick{t: start.Add(time.Duration(i) * time.Hour), price: p}
	}
	return ticks
}

func feedTicks(d *DCUpdater, ticks []tick) ([]DCEvent, error) {
	var all []DCEvent
	for _, tk := range ticks {
		evs, err := d.Update(tk.t, tk.price)
		if err != nil {
			return all, err
		}
		all = append(all, evs...)
	}
	return all, nil
}

func TestNewDCUpdater(t *testing.T) {
	d := NewDCUpdater(2.0)
	assert.NotNil(t, d)
	assert.Equal(t, 0.02, d.state.Theta)
	assert.False(t, d.state.Initialized)
}

func TestDCUpdater_FirstTickNoEvent(t *testing.T) {
	d := NewDCUpdater(2.0)
	start := time.Now()

	events, err := d.Update(start, 100.0)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.True(t, d.state.Initialized)
	// first tick's contribution to TMV is 0: PrevPrice was just set to
	// price in initIfNeeded, so log(price/price) = 0.
	assert.Equal(t, 0.0, d.state.TMVAccum)
}

func TestDCUpdater_SingleUpReversal(t *testing.T) {
	d := NewDCUpdater(2.0) // theta = 0.02
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	// Prices rise past the +2% threshold from 100, peak at 110, then
	// reverse down past 110*(1-0.02)=107.8 to confirm the up-trend.
	prices := []float64{100, 101, 103, 110, 107}
	events, err := feedTicks(d, genTicks(start, prices))
	require.NoError(t, err)
	require.Len(t, events, 1)

	ev := events[0]
	// T is the trend-start timestamp (the tick where direction first
	// became determined: price=103 at index 2), not the reversal tick.
	// The completed trend runs from the pre-breakout extreme (100) to
	// the trend's own extreme (110), not from the breakout tick.
	assert.Equal(t, start.Add(2*time.Hour), ev.T)
	assert.InDelta(t, math.Log(110.0/100.0), ev.R, 1e-9)
	assert.Equal(t, 3, ev.TLen)
	assert.Greater(t, ev.TMV, 0.0)
	assert.GreaterOrEqual(t, ev.TMV, math.Abs(ev.R))
}

func TestDCUpdater_SingleDownReversal(t *testing.T) {
	d := NewDCUpdater(2.0)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	prices := []float64{100, 99, 97, 90, 93}
	events, err := feedTicks(d, genTicks(start, prices))
	require.NoError(t, err)
	require.Len(t, events, 1)

	ev := events[0]
	assert.InDelta(t, math.Log(100.0/90.0), ev.R, 1e-9)
	assert.Equal(t, 3, ev.TLen)
	assert.Greater(t, ev.TMV, 0.0)
}

func TestDCUpdater_NoReversalBelowTheta(t *testing.T) {
	d := NewDCUpdater(5.0) // theta = 0.05, wide enough to absorb small moves
	start := time.Now()

	prices := []float64{100, 101, 102, 101, 100.5}
	events, err := feedTicks(d, genTicks(start, prices))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestDCUpdater_MultipleReversals(t *testing.T) {
	d := NewDCUpdater(2.0)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	prices := []float64{100, 103, 110, 107, 100, 97, 105}
	events, err := feedTicks(d, genTicks(start, prices))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(events), 2)

	for _, ev := range events {
		assert.Positive(t, ev.TMV)
		assert.GreaterOrEqual(t, ev.TLen, 1)
		assert.GreaterOrEqual(t, ev.TMV, math.Abs(ev.R)-1e-9)
	}

	// timestamps across successive events are non-decreasing
	for i := 1; i < len(events); i++ {
		assert.False(t, events[i].T.Before(events[i-1].T))
	}
}

func TestDCUpdater_RejectsNonFinitePrice(t *testing.T) {
	d := NewDCUpdater(2.0)
	start := time.Now()

	_, err := d.Update(start, 100.0)
	require.NoError(t, err)

	cases := []float64{math.NaN(), math.Inf(1), math.Inf(-1), 0, -5}
	for _, p := range cases {
		_, err := d.Update(start.Add(time.Hour), p)
		assert.Error(t, err)
	}
}

func TestDCUpdater_TMVAtLeastAbsR(t *testing.T) {
	// Property: TMV (sum of |log-return| across the trend) is always >=
	// |R| (the single completed-trend log-return), since R telescopes
	// from the same per-tick log-returns TMV sums the absolute value of.
	d := NewDCUpdater(1.0)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	prices := []float64{100, 102, 101, 103, 99, 105, 98, 108, 95, 112}

	events, err := feedTicks(d, genTicks(start, prices))
	require.NoError(t, err)
	for _, ev := range events {
		assert.GreaterOrEqual(t, ev.TMV, math.Abs(ev.R)-1e-9)
		assert.GreaterOrEqual(t, ev.TLen, 1)
	}
}
