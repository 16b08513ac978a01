// Package ctrl owns the persistent (mode, effect) state and the hierarchical
// machine that reacts to confirmed vectors and gestures.
package ctrl

import (
	"github.com/charmwear/charmstrand/internal/input"
	"github.com/charmwear/charmstrand/internal/strand"
)

// Mode is a character color identity.
type Mode uint8

const (
	Nobody Mode = iota
	Miku
	Twin
	Kaito
	Luka
	Haku
	Meiko
	Everyone
)

func (m Mode) String() string {
	switch m {
	case Nobody:
		return "nobody"
	case Miku:
		return "miku"
	case Twin:
		return "twin"
	case Kaito:
		return "kaito"
	case Luka:
		return "luka"
	case Haku:
		return "haku"
	case Meiko:
		return "meiko"
	case Everyone:
		return "everyone"
	default:
		return "INVALID"
	}
}

// modeForVector is the build-time bit-to-character mapping.
var modeForVector = [8]Mode{
	Nobody,   // 0b000
	Miku,     // 0b001
	Kaito,    // 0b010
	Twin,     // 0b011
	Meiko,    // 0b100
	Luka,     // 0b101
	Haku,     // 0b110
	Everyone, // 0b111
}

// ModeFor maps a confirmed vector to its character.
func ModeFor(v input.Vector) Mode {
	return modeForVector[v&7]
}

type palette struct {
	character strand.Color
	accent    strand.Color
}

var palettes = [8]palette{
	Nobody: {},
	Miku:   {strand.Color{R: 0, G: 255, B: 170}, strand.Color{R: 255, G: 40, B: 90}},
	Twin:   {strand.Color{R: 255, G: 200, B: 0}, strand.Color{R: 255, G: 255, B: 120}},
	Kaito:  {strand.Color{R: 0, G: 60, B: 255}, strand.Color{R: 200, G: 220, B: 255}},
	Luka:   {strand.Color{R: 255, G: 60, B: 120}, strand.Color{R: 255, G: 190, B: 60}},
	Haku:   {strand.Color{R: 150, G: 150, B: 170}, strand.Color{R: 120, G: 60, B: 200}},
	Meiko:  {strand.Color{R: 255, G: 30, B: 20}, strand.Color{R: 255, G: 120, B: 20}},
	// Everyone's pair is recomputed from the hue wheel every frame; the
	// table entry is only a fallback.
	Everyone: {strand.Color{R: 255, G: 255, B: 255}, strand.Color{R: 255, G: 255, B: 255}},
}

// Colors returns the fixed (character, accent) pair for a mode.
func (m Mode) Colors() (strand.Color, strand.Color) {
	p := palettes[m&7]
	return p.character, p.accent
}

// Effect is the brightness treatment applied to the character color.
type Effect uint8

const (
	EffectNone Effect = iota
	EffectSolid
	EffectPulsing
	EffectSparkling
	EffectShutdown
)

func (e Effect) String() string {
	switch e {
	case EffectNone:
		return "none"
	case EffectSolid:
		return "solid"
	case EffectPulsing:
		return "pulsing"
	case EffectSparkling:
		return "sparkling"
	case EffectShutdown:
		return "shutdown"
	default:
		return "INVALID"
	}
}

// State is the outer machine state. SOLID/PULSING/SPARKLING are sub-states
// valid only under StateNormal.
type State uint8

const (
	StateNormal State = iota
	StateWaiting
	StateBooting
)

func (s State) String() string {
	switch s {
	case StateNormal:
		return "normal"
	case StateWaiting:
		return "waiting"
	case StateBooting:
		return "booting"
	default:
		return "INVALID"
	}
}
