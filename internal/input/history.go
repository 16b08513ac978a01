package input

import (
	"fmt"
	"time"
)

// HistoryLen is the minimum ring capacity; the triple-tap matcher needs six
// entries to see three press/release pairs.
const HistoryLen = 6

// Gesture timing tolerances.
const (
	// TapSumTolerance bounds how far apart the two press+release period sums
	// of a triple-tap may drift before the pattern is rejected.
	TapSumTolerance = 150 * time.Millisecond
	// DoubleTapGap is the maximum idle between the two taps of a double-tap.
	DoubleTapGap = 250 * time.Millisecond
	// DoubleTapIdle is the minimum quiet stretch before a double-tap; it
	// keeps the tail of a sloppy triple-tap from reading as a double-tap.
	DoubleTapIdle = time.Second
	// HoldThreshold is how long a vector must stay down to read as a hold.
	HoldThreshold = 1500 * time.Millisecond
)

// GestureKind identifies a detected gesture.
type GestureKind uint8

const (
	GestureNone GestureKind = iota
	GestureTripleTap
	GestureDoubleTap
	GestureLongHold
)

func (k GestureKind) String() string {
	switch k {
	case GestureNone:
		return "none"
	case GestureTripleTap:
		return "triple-tap"
	case GestureDoubleTap:
		return "double-tap"
	case GestureLongHold:
		return "long-hold"
	default:
		return "INVALID"
	}
}

// Gesture is a detector result. Period is only set for triple-taps: the
// average press+release cadence, used as the pulsing period downstream.
type Gesture struct {
	Kind   GestureKind
	Period time.Duration
}

// Entry pairs a vector with how long it was (or has been) in effect.
type Entry struct {
	Vec     Vector
	Elapsed time.Duration
}

// History is a fixed-capacity, most-recent-first ring of vector changes. The
// head entry's Elapsed grows every RecordChange call until the vector
// actually changes; older entries keep the duration their vector was held.
type History struct {
	entries    []Entry
	changes    int
	lastChange time.Time
}

// NewHistory builds a ring. A capacity below the detector minimum is a
// construction error, never a silent skip.
func NewHistory(capacity int) (*History, error) {
	if capacity < HistoryLen {
		return nil, fmt.Errorf("history capacity %d below detector minimum %d", capacity, HistoryLen)
	}
	return &History{entries: make([]Entry, capacity)}, nil
}

// RecordChange pushes a new head entry if v differs from the current head,
// dropping the oldest entry, and recomputes the head's elapsed time.
func (h *History) RecordChange(v Vector, now time.Time) {
	if h.lastChange.IsZero() {
		h.lastChange = now
	}
	if v != h.entries[0].Vec {
		h.entries[0].Elapsed = now.Sub(h.lastChange)
		copy(h.entries[1:], h.entries[:len(h.entries)-1])
		h.entries[0] = Entry{Vec: v}
		h.lastChange = now
		if h.changes < len(h.entries) {
			h.changes++
		}
	}
	h.entries[0].Elapsed = now.Sub(h.lastChange)
}

// Head returns the most recent entry.
func (h *History) Head() Entry { return h.entries[0] }

// Entries returns a copy of the ring, most recent first.
func (h *History) Entries() []Entry {
	out := make([]Entry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Reset forgets all recorded changes.
func (h *History) Reset() {
	for i := range h.entries {
		h.entries[i] = Entry{}
	}
	h.changes = 0
	h.lastChange = time.Time{}
}

// Detect runs the matchers in fixed priority order and returns the first hit.
// An ambiguous or incomplete pattern is simply GestureNone.
func (h *History) Detect() Gesture {
	if g, ok := h.tripleTap(); ok {
		return g
	}
	if g, ok := h.doubleTap(); ok {
		return g
	}
	if g, ok := h.longHold(); ok {
		return g
	}
	return Gesture{}
}

// tripleTap: released / pressed x3 with the same vector, and the two full
// press+release periods within tolerance of each other.
func (h *History) tripleTap() (Gesture, bool) {
	e := h.entries
	if e[0].Vec != Nobody || e[2].Vec != Nobody || e[4].Vec != Nobody {
		return Gesture{}, false
	}
	if e[1].Vec == Nobody || e[1].Vec != e[3].Vec || e[1].Vec != e[5].Vec {
		return Gesture{}, false
	}
	sumA := e[1].Elapsed + e[2].Elapsed
	sumB := e[3].Elapsed + e[4].Elapsed
	diff := sumA - sumB
	if diff < 0 {
		diff = -diff
	}
	if diff > TapSumTolerance {
		return Gesture{}, false
	}
	return Gesture{Kind: GestureTripleTap, Period: (sumA + sumB) / 2}, true
}

// doubleTap: two quick taps of the same vector standing alone. The isolation
// check (quiet before the first tap, or an empty ring) is what separates a
// genuine double-tap from the trailing half of a rejected triple-tap.
func (h *History) doubleTap() (Gesture, bool) {
	e := h.entries
	if e[0].Vec != Nobody || e[2].Vec != Nobody {
		return Gesture{}, false
	}
	if e[1].Vec == Nobody || e[1].Vec != e[3].Vec {
		return Gesture{}, false
	}
	if e[2].Elapsed > DoubleTapGap {
		return Gesture{}, false
	}
	if h.changes >= 5 && e[4].Elapsed < DoubleTapIdle {
		return Gesture{}, false
	}
	return Gesture{Kind: GestureDoubleTap}, true
}

func (h *History) longHold() (Gesture, bool) {
	e := h.entries[0]
	if e.Vec == Nobody || e.Elapsed < HoldThreshold {
		return Gesture{}, false
	}
	return Gesture{Kind: GestureLongHold}, true
}
