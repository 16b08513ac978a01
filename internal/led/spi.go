package led

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
)

// SPI drives a WS2812-class strip through the nrzled encoder. Bit timing and
// the inter-frame latch are nrzled's concern; this type only checks frame
// length and forwards bytes.
type SPI struct {
	port     spi.PortCloser
	dev      *nrzled.Dev
	pixels   int
	channels int
}

// NewSPI opens the registered SPI port (empty name picks the first one) and
// prepares the strip encoder. channels is 3 for RGB strips, 4 for RGBW.
func NewSPI(reg string, pixels, channels int) (*SPI, error) {
	port, err := spireg.Open(reg)
	if err != nil {
		return nil, fmt.Errorf("open spi port: %w", err)
	}
	s, err := NewSPIFromPort(port, pixels, channels)
	if err != nil {
		_ = port.Close()
		return nil, err
	}
	return s, nil
}

// NewSPIFromPort wires the encoder onto an already-open port. Tests feed a
// spitest port through here.
func NewSPIFromPort(port spi.PortCloser, pixels, channels int) (*SPI, error) {
	if pixels <= 0 {
		return nil, fmt.Errorf("invalid pixel count: %d", pixels)
	}
	dev, err := nrzled.NewSPI(port, &nrzled.Opts{
		NumPixels: pixels,
		Channels:  channels,
		Freq:      2500 * physic.KiloHertz,
	})
	if err != nil {
		return nil, fmt.Errorf("init nrzled: %w", err)
	}
	return &SPI{port: port, dev: dev, pixels: pixels, channels: channels}, nil
}

func (s *SPI) Write(rgb []byte) error {
	if len(rgb) != s.pixels*s.channels {
		return fmt.Errorf("frame length %d does not match %d pixels x %d channels",
			len(rgb), s.pixels, s.channels)
	}
	_, err := s.dev.Write(rgb)
	return err
}

func (s *SPI) Close() error {
	_ = s.dev.Halt()
	return s.port.Close()
}
