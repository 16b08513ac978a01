package ctrl

import (
	"math/rand"
	"time"

	"github.com/charmwear/charmstrand/internal/input"
)

// Shutdown sub-machine frame budgets at the 50 Hz tick.
const (
	// PowerDownFrames fades the strip to black on entering WAITING.
	PowerDownFrames = 50
	// BreathPeriodFrames is one full triangular cycle of the WAITING
	// indicator pixel.
	BreathPeriodFrames = 100
	// BootSparkleFrames is boot stage one: scroll the chosen color in while
	// the sparkle probability ramps down to zero.
	BootSparkleFrames = 100
	// BootEaseFrames is boot stage two: brightness eases from full down to
	// the resting level.
	BootEaseFrames = 50
	// bootSparkleStart is the stage-one substitution probability at frame 0.
	bootSparkleStart = 0.3
)

// Snapshot is everything the animation engine needs for one frame. It is a
// plain value; the machine stays the single writer of its own state.
type Snapshot struct {
	State  State
	Mode   Mode
	Effect Effect

	// Time since the last confirmed vector change; drives the SOLID and
	// PULSING ease profiles.
	EffectElapsed time.Duration
	// PulsePeriod is the triple-tap cadence while EffectPulsing.
	PulsePeriod time.Duration

	// WAITING: true while the power-down fade is still running, then the
	// triangular indicator level.
	Fading      bool
	BreathLevel uint8

	// BOOTING: the chosen character, the stage-one substitution probability
	// (zero during stage two) and the stage brightness.
	BootMode  Mode
	SparkleP  float64
	BootLevel uint8
}

// Machine is the mode/effect state machine with the nested
// NORMAL -> WAITING -> BOOTING shutdown sequence. Single-owner: Update must
// be called exactly once per sampled frame.
type Machine struct {
	mode        Mode
	effect      Effect
	state       State
	pulsePeriod time.Duration

	history *input.History
	rng     *rand.Rand

	// Entropy feeds the reseed on the first press seen while WAITING. The
	// default mixes the clock; callers layer in ambient sources.
	Entropy func() uint64

	fadeLeft    int
	breathFrame int
	armed       bool
	pressVec    input.Vector
	bootFrame   int
	bootMode    Mode
}

func NewMachine(h *input.History, rng *rand.Rand) *Machine {
	return &Machine{
		history: h,
		rng:     rng,
		Entropy: func() uint64 { return uint64(time.Now().UnixNano()) },
	}
}

func (m *Machine) Mode() Mode     { return m.mode }
func (m *Machine) Effect() Effect { return m.effect }
func (m *Machine) State() State   { return m.state }

// Update advances the machine one frame and returns the render snapshot.
// vec is this frame's confirmed vector, g the detector result; all effect
// timing derives from the history head, not the wall clock.
func (m *Machine) Update(vec input.Vector, g input.Gesture) Snapshot {
	switch m.state {
	case StateNormal:
		m.updateNormal(vec, g)
	case StateWaiting:
		m.updateWaiting(vec)
	case StateBooting:
		m.updateBooting()
	}
	return m.snapshot()
}

func (m *Machine) updateNormal(vec input.Vector, g input.Gesture) {
	if vec != input.Nobody {
		if mode := ModeFor(vec); mode != m.mode {
			m.mode = mode
			m.effect = EffectSolid
			// A fresh selection wins over any gesture decoded this frame.
			return
		}
	}
	switch g.Kind {
	case input.GestureTripleTap:
		// The ring keeps matching until it changes; only a new period is a
		// new command.
		if m.effect != EffectPulsing || m.pulsePeriod != g.Period {
			m.effect = EffectPulsing
			m.pulsePeriod = g.Period
		}
	case input.GestureDoubleTap:
		m.effect = EffectSparkling
	case input.GestureLongHold:
		m.effect = EffectShutdown
		m.state = StateWaiting
		m.fadeLeft = PowerDownFrames
		m.breathFrame = 0
		m.armed = false
	}
}

func (m *Machine) updateWaiting(vec input.Vector) {
	if m.fadeLeft > 0 {
		m.fadeLeft--
		return
	}
	m.breathFrame++
	if vec != input.Nobody {
		if !m.armed {
			m.armed = true
			m.rng.Seed(int64(m.Entropy()))
		}
		m.pressVec = vec
		return
	}
	if m.armed {
		// Released after a press: boot into the held selection.
		m.bootMode = ModeFor(m.pressVec)
		m.bootFrame = 0
		m.state = StateBooting
	}
}

func (m *Machine) updateBooting() {
	m.bootFrame++
	if m.bootFrame >= BootSparkleFrames+BootEaseFrames {
		m.mode = m.bootMode
		m.effect = EffectSolid
		m.state = StateNormal
		m.history.Reset()
	}
}

func (m *Machine) snapshot() Snapshot {
	s := Snapshot{
		State:         m.state,
		Mode:          m.mode,
		Effect:        m.effect,
		EffectElapsed: m.history.Head().Elapsed,
		PulsePeriod:   m.pulsePeriod,
	}
	switch m.state {
	case StateWaiting:
		s.Fading = m.fadeLeft > 0
		s.BreathLevel = triangle(m.breathFrame, BreathPeriodFrames)
	case StateBooting:
		s.BootMode = m.bootMode
		if m.bootFrame < BootSparkleFrames {
			s.SparkleP = bootSparkleStart * (1 - float64(m.bootFrame)/BootSparkleFrames)
			s.BootLevel = 255
		} else {
			ease := m.bootFrame - BootSparkleFrames
			s.BootLevel = uint8(255 - ease*(255-restingAfterBoot)/BootEaseFrames)
		}
	}
	return s
}

// restingAfterBoot matches the animation engine's resting brightness floor.
const restingAfterBoot = 100

// triangle is a 0..255..0 wave over period frames.
func triangle(frame, period int) uint8 {
	phase := frame % period
	half := period / 2
	if phase < half {
		return uint8(phase * 255 / half)
	}
	return uint8((period - phase) * 255 / half)
}
