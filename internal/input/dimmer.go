package input

import (
	"periph.io/x/conn/v3/analog"
)

// Dimmer level bounds. The floor keeps the strip from ever going fully dark
// through the potentiometer alone.
const (
	DimmerMin = 100
	DimmerMax = 255
)

// AnalogReader is the slice of analog.PinADC the dimmer needs.
type AnalogReader interface {
	Read() (analog.Sample, error)
	Range() (analog.Sample, analog.Sample)
}

// Dimmer maps a potentiometer reading onto the global brightness level. With
// no reader attached (nil), the level stays at full.
type Dimmer struct {
	pin   AnalogReader
	level uint8
	raw   int32
}

func NewDimmer(pin AnalogReader) *Dimmer {
	return &Dimmer{pin: pin, level: DimmerMax}
}

// Poll reads the ADC once and returns the mapped level. A read error keeps
// the last good level.
func (d *Dimmer) Poll() uint8 {
	if d.pin == nil {
		return d.level
	}
	s, err := d.pin.Read()
	if err != nil {
		return d.level
	}
	min, max := d.pin.Range()
	d.raw = s.Raw
	d.level = MapLevel(s.Raw, min.Raw, max.Raw)
	return d.level
}

// Level returns the last mapped level without touching hardware.
func (d *Dimmer) Level() uint8 { return d.level }

// Raw returns the last raw ADC reading; the entropy hook mixes it in.
func (d *Dimmer) Raw() int32 { return d.raw }

// MapLevel linearly maps raw in [min,max] onto [DimmerMin,DimmerMax].
func MapLevel(raw, min, max int32) uint8 {
	if max <= min {
		return DimmerMax
	}
	if raw < min {
		raw = min
	}
	if raw > max {
		raw = max
	}
	span := int64(max) - int64(min)
	scaled := int64(raw-min) * (DimmerMax - DimmerMin) / span
	return uint8(DimmerMin + scaled)
}
