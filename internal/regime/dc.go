package regime

import (
	"math"
	"time"

	regerr "github.com/ducminhle1904/regime-stream/internal/errors"
)

// DCEvent is emitted by DCUpdater when a trend reversal of at least theta
// is confirmed. T is the timestamp of the completed trend's *start*, not
// the tick on which the reversal was detected.
type DCEvent struct {
	T    time.Time
	R    float64 // signed completed-trend log-return, always >= 0
	TLen int     // bars in the completed trend
	TMV  float64 // total movement: sum of |log-return| across the trend
}

// DCState is the internal, lazily-initialized state of a DCUpdater.
type DCState struct {
	Theta           float64
	Initialized     bool
	Direction       int // +1 up, -1 down, 0 = none (not yet determined)
	ExtremePrice    float64
	TrendStartPrice float64
	TrendStartTime  time.Time
	BarsInTrend     int
	TMVAccum        float64
	PrevPrice       float64
}

// DCUpdater is a stateful directional-change event extractor. Theta is
// the fractional reversal threshold (ThetaPct / 100); behavior for
// theta <= 0 is undefined per spec.
type DCUpdater struct {
	state DCState
}

// NewDCUpdater constructs a DCUpdater with reversal threshold
// thetaPct percent.
func NewDCUpdater(thetaPct float64) *DCUpdater {
	return &DCUpdater{state: DCState{Theta: thetaPct / 100.0}}
}

func (d *DCUpdater) initIfNeeded(t time.Time, price float64) {
	if d.state.Initialized {
		return
	}
	s := &d.state
	s.Initialized = true
	s.ExtremePrice = price
	s.TrendStartPrice = price
	s.TrendStartTime = t
	s.Direction = 0
	s.PrevPrice = price
	s.BarsInTrend = 0
	s.TMVAccum = 0
}

// Update feeds one (timestamp, price) tick through the detector and
// returns zero or one confirmed DCEvents. Price must be finite and
// positive; the caller is responsible for filtering non-finite closes
// before calling Update (spec.md §4.1 edge cases).
func (d *DCUpdater) Update(t time.Time, price float64) ([]DCEvent, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return nil, regerr.NewRegimeError("DCUpdater", "Update", "price must be finite and positive")
	}

	d.initIfNeeded(t, price)
	s := &d.state

	var events []DCEvent

	if s.PrevPrice > 0 {
		s.TMVAccum += math.Abs(math.Log(price / s.PrevPrice))
	}
	s.PrevPrice = price
	s.BarsInTrend++

	if s.Direction == 0 {
		upTrigger := price >= s.ExtremePrice*(1.0+s.Theta)
		downTrigger := price <= s.ExtremePrice*(1.0-s.Theta)
		switch {
		case upTrigger:
			s.Direction = +1
		case downTrigger:
			s.Direction = -1
		default:
			return events, nil
		}
		s.TrendStartPrice = s.ExtremePrice
		s.TrendStartTime = t
		s.ExtremePrice = price
		s.BarsInTrend = 1
		s.TMVAccum = 0
		return events, nil
	}

	if s.Direction == +1 {
		if price > s.ExtremePrice {
			s.ExtremePrice = price
		}
	} else if price < s.ExtremePrice {
		s.ExtremePrice = price
	}

	var reversal bool
	if s.Direction == +1 {
		reversal = price <= s.ExtremePrice*(1.0-s.Theta)
	} else {
		reversal = price >= s.ExtremePrice*(1.0+s.Theta)
	}

	if reversal {
		var r float64
		if s.Direction == +1 {
			r = math.Log(s.ExtremePrice / s.TrendStartPrice)
		} else {
			r = math.Log(s.TrendStartPrice / s.ExtremePrice)
		}
		events = append(events, DCEvent{
			T:    s.TrendStartTime,
			R:    r,
			TLen: s.BarsInTrend,
			TMV:  s.TMVAccum,
		})

		s.Direction = -s.Direction
		s.TrendStartPrice = s.ExtremePrice
		s.TrendStartTime = t
		s.ExtremePrice = price
		s.BarsInTrend = 1
		s.TMVAccum = 0
		s.PrevPrice = price
	}

	return events, nil
}
