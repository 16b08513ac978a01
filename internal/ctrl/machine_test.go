package ctrl

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charmwear/charmstrand/internal/input"
)

func newMachine(t *testing.T) (*Machine, *input.History) {
	t.Helper()
	h, err := input.NewHistory(input.HistoryLen)
	require.NoError(t, err)
	return NewMachine(h, rand.New(rand.NewSource(1))), h
}

func TestModeForVectorTable(t *testing.T) {
	assert.Equal(t, Nobody, ModeFor(0))
	assert.Equal(t, Miku, ModeFor(1))
	assert.Equal(t, Everyone, ModeFor(7))
}

func TestFreshSelectionResetsEffect(t *testing.T) {
	m, h := newMachine(t)
	now := time.Unix(100, 0)

	// Start from MIKU with a sparkling effect in force.
	step := func(vec input.Vector, g input.Gesture) Snapshot {
		h.RecordChange(vec, now)
		s := m.Update(vec, g)
		now = now.Add(20 * time.Millisecond)
		return s
	}
	step(1, input.Gesture{})
	step(1, input.Gesture{Kind: input.GestureDoubleTap})
	require.Equal(t, Miku, m.Mode())
	require.Equal(t, EffectSparkling, m.Effect())

	// Confirmed sequence NOBODY, NOBODY, LUKA, LUKA, LUKA.
	step(0, input.Gesture{})
	step(0, input.Gesture{})
	s := step(5, input.Gesture{})
	assert.Equal(t, Luka, s.Mode)
	assert.Equal(t, EffectSolid, s.Effect)
	step(5, input.Gesture{})
	s = step(5, input.Gesture{})
	assert.Equal(t, Luka, s.Mode)
	assert.Equal(t, EffectSolid, s.Effect)
}

func TestFreshSelectionWinsOverSameFrameGesture(t *testing.T) {
	m, h := newMachine(t)
	now := time.Unix(100, 0)

	h.RecordChange(3, now)
	s := m.Update(3, input.Gesture{Kind: input.GestureDoubleTap})
	assert.Equal(t, Twin, s.Mode)
	assert.Equal(t, EffectSolid, s.Effect)

	// Next frame, with no fresh change, the gesture takes effect.
	now = now.Add(20 * time.Millisecond)
	h.RecordChange(3, now)
	s = m.Update(3, input.Gesture{Kind: input.GestureDoubleTap})
	assert.Equal(t, EffectSparkling, s.Effect)
}

func TestTripleTapSetsPulsePeriod(t *testing.T) {
	m, h := newMachine(t)
	now := time.Unix(100, 0)

	h.RecordChange(0, now)
	s := m.Update(0, input.Gesture{Kind: input.GestureTripleTap, Period: 200 * time.Millisecond})
	assert.Equal(t, EffectPulsing, s.Effect)
	assert.Equal(t, 200*time.Millisecond, s.PulsePeriod)
}

func TestShutdownSequence(t *testing.T) {
	m, h := newMachine(t)
	now := time.Unix(100, 0)
	tick := func(vec input.Vector, g input.Gesture) Snapshot {
		h.RecordChange(vec, now)
		s := m.Update(vec, g)
		now = now.Add(20 * time.Millisecond)
		return s
	}

	tick(1, input.Gesture{})
	require.Equal(t, Miku, m.Mode())

	// Long hold trips the shutdown sub-machine.
	s := tick(1, input.Gesture{Kind: input.GestureLongHold})
	assert.Equal(t, StateWaiting, s.State)
	assert.Equal(t, EffectShutdown, s.Effect)

	// Power-down fade consumes its frame budget (the entry frame was the
	// first fading frame).
	require.True(t, s.Fading)
	for i := 0; i < PowerDownFrames-1; i++ {
		s = tick(0, input.Gesture{})
		assert.True(t, s.Fading, "frame %d", i)
	}
	s = tick(0, input.Gesture{})
	assert.False(t, s.Fading)
	assert.Equal(t, StateWaiting, s.State)

	// Press LUKA's vector, then release: boot begins.
	for i := 0; i < 5; i++ {
		s = tick(5, input.Gesture{})
		assert.Equal(t, StateWaiting, s.State)
	}
	s = tick(0, input.Gesture{})
	assert.Equal(t, StateBooting, s.State)
	assert.Equal(t, Luka, s.BootMode)

	// Stage one: probability ramps toward zero at full brightness.
	first := tick(0, input.Gesture{})
	assert.Greater(t, first.SparkleP, 0.0)
	assert.Equal(t, uint8(255), first.BootLevel)
	var last Snapshot
	for i := 0; i < BootSparkleFrames-2; i++ {
		last = tick(0, input.Gesture{})
	}
	assert.Less(t, last.SparkleP, first.SparkleP)

	// Stage two: brightness eases down, then the machine lands in NORMAL
	// with a fresh SOLID effect and a cleared history.
	for m.State() == StateBooting {
		last = tick(0, input.Gesture{})
	}
	assert.Equal(t, StateNormal, m.State())
	assert.Equal(t, Luka, m.Mode())
	assert.Equal(t, EffectSolid, m.Effect())
	assert.Equal(t, input.Nobody, h.Head().Vec)
	assert.Equal(t, time.Duration(0), h.Head().Elapsed)
}

func TestWaitingIgnoresGestures(t *testing.T) {
	m, h := newMachine(t)
	now := time.Unix(100, 0)

	// The selection frame comes first; a hold is only ever detected after the
	// vector has been stable well past the selection.
	h.RecordChange(1, now)
	m.Update(1, input.Gesture{})
	require.Equal(t, Miku, m.Mode())

	now = now.Add(input.HoldThreshold)
	h.RecordChange(1, now)
	m.Update(1, input.Gesture{Kind: input.GestureLongHold})
	require.Equal(t, StateWaiting, m.State())

	// Gestures decoded while waiting must not disturb the sub-machine.
	s := m.Update(0, input.Gesture{Kind: input.GestureDoubleTap})
	assert.Equal(t, StateWaiting, s.State)
	assert.Equal(t, EffectShutdown, s.Effect)
}

func TestTriangleWave(t *testing.T) {
	assert.Equal(t, uint8(0), triangle(0, 100))
	assert.Equal(t, uint8(255), triangle(50, 100))
	assert.Equal(t, uint8(0), triangle(100, 100))
	// Symmetric rise and fall.
	assert.Equal(t, triangle(25, 100), triangle(75, 100))
}
