// Package anim renders the current machine snapshot into pixels each frame:
// scroll, hue rotation, effect brightness transforms, the accessory pattern
// and the global dimmer.
package anim

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/charmwear/charmstrand/internal/ctrl"
	"github.com/charmwear/charmstrand/internal/strand"
)

const (
	// ScrollCycles frames per one-pixel buffer shift.
	ScrollCycles = 3
	// RainbowCycles frames per hue wheel step, independent of scrolling.
	RainbowCycles = 2

	// SOLID/PULSING ease profile: full brightness for the peak hold, then a
	// linear slide down to the resting floor.
	SolidPeakHold = 200 * time.Millisecond
	SolidEase     = 800 * time.Millisecond
	RestingLevel  = 100

	// SPARKLING brightness jitter bounds.
	SparkleMin = 150
	SparkleMax = 255

	// Cumulative per-frame scale of the power-down fade.
	fadeStepLevel = 235

	// Accessory pattern knobs: MIKU's band toggles every other scroll step,
	// LUKA's brightness wave runs one cycle per breathPeriod frames.
	mikuBandSteps  = 2
	lukaWaveFrames = 60
)

// Engine renders onto a single buffer. Index range [0, accessoryLen) is the
// accessory segment; the boundary index is the newest character pixel. The
// engine owns the frame and hue counters; all other state arrives in the
// snapshot.
type Engine struct {
	buf          *strand.Buffer
	accessoryLen int
	frame        uint64
	rng          *rand.Rand
}

func NewEngine(buf *strand.Buffer, accessoryLen int, rng *rand.Rand) (*Engine, error) {
	if accessoryLen <= 0 || accessoryLen >= buf.Len() {
		return nil, fmt.Errorf("accessory length %d outside (0,%d)", accessoryLen, buf.Len())
	}
	return &Engine{buf: buf, accessoryLen: accessoryLen, rng: rng}, nil
}

// Hue is the current rainbow wheel position, periodic over
// 256*RainbowCycles frames.
func (e *Engine) Hue() uint8 {
	return uint8(e.frame / RainbowCycles)
}

// Frame is the total number of rendered frames.
func (e *Engine) Frame() uint64 { return e.frame }

// Render produces one frame into the buffer.
func (e *Engine) Render(s ctrl.Snapshot, dimmer uint8) {
	e.frame++
	switch s.State {
	case ctrl.StateWaiting:
		if s.Fading {
			e.fadeStep()
			return
		}
		e.renderBreath(s, dimmer)
	case ctrl.StateBooting:
		e.renderBoot(s, dimmer)
	default:
		e.renderNormal(s, dimmer)
	}
}

func (e *Engine) renderNormal(s ctrl.Snapshot, dimmer uint8) {
	if e.frame%ScrollCycles == 0 {
		e.buf.ShiftForward(1, strand.Black)
	}

	base, accent := e.modeColors(s.Mode)
	c := e.applyEffect(base, s)
	c = strand.Bright(c, dimmer)
	e.buf.Set(e.accessoryLen, c)

	a := e.accessoryColor(s.Mode, accent)
	a = strand.Bright(a, dimmer)
	e.buf.Set(0, a)
}

// modeColors resolves the (character, accent) pair; EVERYONE's pair is
// recomputed from the wheel every frame.
func (e *Engine) modeColors(m ctrl.Mode) (strand.Color, strand.Color) {
	if m == ctrl.Everyone {
		h := e.Hue()
		return strand.Wheel(h), strand.Wheel(h + 85)
	}
	return m.Colors()
}

func (e *Engine) applyEffect(base strand.Color, s ctrl.Snapshot) strand.Color {
	switch s.Effect {
	case ctrl.EffectSolid:
		return strand.Bright(base, easeLevel(s.EffectElapsed))
	case ctrl.EffectPulsing:
		t := s.EffectElapsed
		if s.PulsePeriod > 0 {
			t = t % s.PulsePeriod
		}
		return strand.Bright(base, easeLevel(t))
	case ctrl.EffectSparkling:
		level := uint8(SparkleMin + e.rng.Intn(SparkleMax-SparkleMin+1))
		return strand.Bright(base, level)
	case ctrl.EffectShutdown:
		return strand.Black
	default:
		return strand.Bright(base, RestingLevel)
	}
}

// easeLevel is the shared SOLID/PULSING profile: peak, linear ease, floor.
func easeLevel(elapsed time.Duration) uint8 {
	if elapsed < SolidPeakHold {
		return 255
	}
	into := elapsed - SolidPeakHold
	if into >= SolidEase {
		return RestingLevel
	}
	drop := int64(into) * (255 - RestingLevel) / int64(SolidEase)
	return uint8(255 - drop)
}

func (e *Engine) accessoryColor(m ctrl.Mode, accent strand.Color) strand.Color {
	switch m {
	case ctrl.Nobody:
		return strand.Black
	case ctrl.Miku:
		if (e.frame/(ScrollCycles*mikuBandSteps))%2 == 0 {
			return accent
		}
		return strand.Black
	case ctrl.Luka:
		return strand.Bright(accent, waveLevel(e.frame))
	case ctrl.Everyone:
		return strand.Wheel(e.Hue() + 85)
	default:
		return accent
	}
}

// waveLevel is a triangular 60..255 brightness wave for LUKA's accessory.
func waveLevel(frame uint64) uint8 {
	phase := int(frame % lukaWaveFrames)
	half := lukaWaveFrames / 2
	var up int
	if phase < half {
		up = phase * 255 / half
	} else {
		up = (lukaWaveFrames - phase) * 255 / half
	}
	if up < 60 {
		up = 60
	}
	return uint8(up)
}

// fadeStep darkens the whole buffer a notch; over the power-down budget the
// compounding scale reaches black.
func (e *Engine) fadeStep() {
	for i := 0; i < e.buf.Len(); i++ {
		e.buf.Set(i, strand.Bright(e.buf.At(i), fadeStepLevel))
	}
}

// renderBreath blanks the strip except a single indicator pixel whose
// brightness follows the machine's triangular wave.
func (e *Engine) renderBreath(s ctrl.Snapshot, dimmer uint8) {
	e.buf.Fill(strand.Black)
	base, _ := e.modeColors(s.Mode)
	if base == strand.Black {
		base = strand.Color{R: 255, G: 255, B: 255}
	}
	c := strand.Bright(base, s.BreathLevel)
	e.buf.Set(0, strand.Bright(c, dimmer))
}

// renderBoot scrolls the chosen mode's color in every frame, substituting a
// random character with the stage-one probability, then eases brightness
// down during stage two.
func (e *Engine) renderBoot(s ctrl.Snapshot, dimmer uint8) {
	e.buf.ShiftForward(1, strand.Black)

	mode := s.BootMode
	if s.SparkleP > 0 && e.rng.Float64() < s.SparkleP {
		mode = ctrl.Mode(1 + e.rng.Intn(7))
	}
	base, accent := e.modeColors(mode)
	c := strand.Bright(base, s.BootLevel)
	e.buf.Set(e.accessoryLen, strand.Bright(c, dimmer))

	a := strand.Bright(accent, s.BootLevel)
	e.buf.Set(0, strand.Bright(a, dimmer))
}
