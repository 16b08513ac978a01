// Package input turns noisy physical controls into confirmed values: a
// debounced 3-bit button vector, timed gesture detection over its change
// history, and the analog dimmer level.
package input

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
)

// Vector is the 3-bit combination of currently pressed buttons. Bit i is
// button i; the bit-to-character mapping is fixed at build time.
type Vector uint8

// Nobody means no buttons are down.
const Nobody Vector = 0

// ConfirmWindow is the number of consecutive identical raw samples required
// before a vector is accepted as real.
const ConfirmWindow = 12

// Sampler reads the three active-low button lines and debounces them. A raw
// vector is only exposed once it has been stable for ConfirmWindow samples;
// until then the previously confirmed vector stands. Persistent electrical
// chatter can therefore suppress updates indefinitely, which is the intended
// trade-off, not a defect.
type Sampler struct {
	pins      [3]gpio.PinIn
	window    int
	pending   Vector
	stable    int
	confirmed Vector
}

// NewSampler configures the lines as pulled-up inputs.
func NewSampler(pins [3]gpio.PinIn) (*Sampler, error) {
	for i, p := range pins {
		if p == nil {
			return nil, fmt.Errorf("button line %d is nil", i)
		}
		if err := p.In(gpio.PullUp, gpio.NoEdge); err != nil {
			return nil, fmt.Errorf("configure %s: %w", p.Name(), err)
		}
	}
	return &Sampler{pins: pins, window: ConfirmWindow}, nil
}

// Sample folds the raw lines into a vector. Pressed reads low.
func (s *Sampler) Sample() Vector {
	var v Vector
	for i, p := range s.pins {
		if p.Read() == gpio.Low {
			v |= 1 << i
		}
	}
	return v
}

// Confirm feeds one raw sample through the debounce window and returns the
// confirmed vector. Any change in raw resets the stability count.
func (s *Sampler) Confirm(raw Vector) Vector {
	if raw != s.pending {
		s.pending = raw
		s.stable = 0
	}
	s.stable++
	if s.stable >= s.window {
		s.confirmed = raw
	}
	return s.confirmed
}

// Confirmed returns the current confirmed vector without sampling.
func (s *Sampler) Confirmed() Vector { return s.confirmed }
