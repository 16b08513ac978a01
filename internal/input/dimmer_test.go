package input

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"periph.io/x/conn/v3/analog"
)

type fakeADC struct {
	raw int32
	err error
}

func (f *fakeADC) Read() (analog.Sample, error) {
	return analog.Sample{Raw: f.raw}, f.err
}

func (f *fakeADC) Range() (analog.Sample, analog.Sample) {
	return analog.Sample{Raw: 0}, analog.Sample{Raw: 32767}
}

func TestMapLevel(t *testing.T) {
	tests := []struct {
		name string
		raw  int32
		want uint8
	}{
		{"floor", 0, DimmerMin},
		{"ceiling", 32767, DimmerMax},
		{"below range clamps", -5, DimmerMin},
		{"above range clamps", 40000, DimmerMax},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapLevel(tt.raw, 0, 32767))
		})
	}

	mid := MapLevel(16384, 0, 32767)
	assert.InDelta(t, 177, int(mid), 1)
}

func TestDimmerPoll(t *testing.T) {
	adc := &fakeADC{raw: 32767}
	d := NewDimmer(adc)
	assert.Equal(t, uint8(DimmerMax), d.Poll())

	adc.raw = 0
	assert.Equal(t, uint8(DimmerMin), d.Poll())
	assert.Equal(t, int32(0), d.Raw())

	// Read errors keep the last good level.
	adc.err = errors.New("bus glitch")
	adc.raw = 32767
	assert.Equal(t, uint8(DimmerMin), d.Poll())
}

func TestDimmerWithoutReader(t *testing.T) {
	d := NewDimmer(nil)
	assert.Equal(t, uint8(DimmerMax), d.Poll())
}
