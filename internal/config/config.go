package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Pins struct {
	A    string `yaml:"a"`
	B    string `yaml:"b"`
	C    string `yaml:"c"`
	Diag string `yaml:"diag,omitempty"`
}

type SPI struct {
	Dev string `yaml:"dev"` // e.g. SPI0.0 or /dev/spidev0.0
}

type Dimmer struct {
	I2CBus  string `yaml:"i2c_bus,omitempty"` // empty means no dimmer
	Channel int    `yaml:"channel"`
}

type Config struct {
	Driver string `yaml:"driver"` // "spi" | "sim"
	FPS    int    `yaml:"fps"`

	AccessoryLen int `yaml:"accessory_len"`
	CharacterLen int `yaml:"character_len"`
	Channels     int `yaml:"channels"`

	Pins   Pins   `yaml:"pins"`
	SPI    SPI    `yaml:"spi,omitempty"`
	Dimmer Dimmer `yaml:"dimmer,omitempty"`

	// MonitorAddr enables the websocket monitor when non-empty.
	MonitorAddr string `yaml:"monitor_addr,omitempty"`
}

// Default matches the reference hardware: three buttons, an 8+52 pixel
// strand on SPI, an ADS1115 dimmer pot.
func Default() *Config {
	return &Config{
		Driver:       "spi",
		FPS:          50,
		AccessoryLen: 8,
		CharacterLen: 52,
		Channels:     3,
		Pins:         Pins{A: "GPIO17", B: "GPIO27", C: "GPIO22", Diag: "GPIO23"},
		SPI:          SPI{Dev: "SPI0.0"},
		Dimmer:       Dimmer{I2CBus: "1", Channel: 0},
	}
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

func (c *Config) Validate() error {
	if c.FPS <= 0 {
		return fmt.Errorf("fps %d must be positive", c.FPS)
	}
	if c.AccessoryLen <= 0 || c.CharacterLen <= 0 {
		return fmt.Errorf("strand segments %d+%d must be positive", c.AccessoryLen, c.CharacterLen)
	}
	if c.Channels != 3 && c.Channels != 4 {
		return fmt.Errorf("channels %d must be 3 or 4", c.Channels)
	}
	switch c.Driver {
	case "spi", "sim":
	default:
		return fmt.Errorf("unknown driver %q", c.Driver)
	}
	return nil
}
