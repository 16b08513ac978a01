package led

import (
	"github.com/rs/zerolog/log"
)

// Sim is a headless sink that logs a compact frame summary at a throttled
// cadence. Used when no SPI port is available or when forced by config.
type Sim struct {
	channels int
	every    int
	frames   int
}

// NewSim reports one summary line per `every` frames.
func NewSim(channels, every int) *Sim {
	if every <= 0 {
		every = 50
	}
	return &Sim{channels: channels, every: every}
}

func (d *Sim) Write(rgb []byte) error {
	d.frames++
	if d.frames%d.every != 0 {
		return nil
	}
	var r, g, b int
	n := len(rgb) / d.channels
	for i := 0; i < n; i++ {
		r += int(rgb[i*d.channels+0])
		g += int(rgb[i*d.channels+1])
		b += int(rgb[i*d.channels+2])
	}
	if n == 0 {
		n = 1
	}
	log.Debug().
		Int("frame", d.frames).
		Int("avg_r", r/n).
		Int("avg_g", g/n).
		Int("avg_b", b/n).
		Msg("sim frame")
	return nil
}

func (d *Sim) Close() error { return nil }
