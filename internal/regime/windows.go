package regime

import "time"

// WindowRule holds the thresholds and count requirements gating OPEN and
// CLOSE transitions (spec.md §4.5).
type WindowRule struct {
	OpenP       float64
	CloseP      float64
	ConfirmOpen int
	ConfirmClose int
	MinTrends   int
}

// DefaultWindowRule mirrors the source's defaults.
func DefaultWindowRule() WindowRule {
	return WindowRule{
		OpenP:        0.80,
		CloseP:       0.50,
		ConfirmOpen:  2,
		ConfirmClose: 2,
		MinTrends:    2,
	}
}

// Window is a labeled regime interval. End is the zero time while the
// window is open.
type Window struct {
	Start time.Time
	End   time.Time
	Label string
}

// Open reports whether the window has not yet closed.
func (w Window) Open() bool { return w.End.IsZero() }

// regimeTwoLabel is the only label the current design produces.
const regimeTwoLabel = "regime_2"

// WindowStateMachine converts a stream of (timestamp, p_regime2,
// dc_event) triples into OPEN and CLOSE events for at most one active
// window at a time (spec.md §4.5).
type WindowStateMachine struct {
	rule WindowRule

	current        *Window
	openStreak     int
	closeStreak    int
	trendCount     int
	pendingOpenSet bool
	pendingOpen    time.Time
}

// NewWindowStateMachine constructs a machine in the IDLE state.
func NewWindowStateMachine(rule WindowRule) *WindowStateMachine {
	return &WindowStateMachine{rule: rule}
}

// Reset clears all counters and any active window.
func (m *WindowStateMachine) Reset() {
	m.current = nil
	m.openStreak = 0
	m.closeStreak = 0
	m.trendCount = 0
	m.pendingOpenSet = false
}

// Current returns the active window, or nil when IDLE.
func (m *WindowStateMachine) Current() *Window { return m.current }

// OnProb feeds one tick and returns any windows opened or closed on it,
// in the order they occurred (OPEN before CLOSE, though only one
// transition can occur per tick in the current design). When dcEvent is
// false the machine is a no-op: probability updates never advance a
// counter outside of DC-event ticks (spec.md §4.5).
func (m *WindowStateMachine) OnProb(t time.Time, pRegime2 float64, dcEvent bool) []Window {
	if !dcEvent {
		return nil
	}

	var changed []Window

	if m.current == nil {
		if pRegime2 >= m.rule.OpenP {
			if m.openStreak == 0 {
				m.pendingOpen = t
				m.pendingOpenSet = true
			}
			m.openStreak++
		} else {
			m.openStreak = 0
			m.pendingOpenSet = false
		}

		if m.openStreak >= m.rule.ConfirmOpen {
			start := t
			if m.pendingOpenSet {
				start = m.pendingOpen
			}
			w := Window{Start: start, Label: regimeTwoLabel}
			m.current = &w
			changed = append(changed, w)
			m.openStreak = 0
			m.closeStreak = 0
			m.trendCount = 0
			m.pendingOpenSet = false
		}
		return changed
	}

	m.trendCount++
	if pRegime2 <= m.rule.CloseP {
		m.closeStreak++
	} else {
		m.closeStreak = 0
	}

	if m.closeStreak >= m.rule.ConfirmClose && m.trendCount >= m.rule.MinTrends {
		closed := Window{Start: m.current.Start, End: t, Label: m.current.Label}
		changed = append(changed, closed)
		m.current = nil
		m.openStreak = 0
		m.closeStreak = 0
		m.trendCount = 0
		m.pendingOpenSet = false
	}

	return changed
}
