package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "charmstrand.yaml")

	c := Default()
	c.Driver = "sim"
	c.MonitorAddr = ":8089"
	require.NoError(t, Save(path, c))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sim", got.Driver)
	assert.Equal(t, ":8089", got.MonitorAddr)
	assert.Equal(t, 8, got.AccessoryLen)
	assert.Equal(t, "GPIO17", got.Pins.A)
}

func TestLoadFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("driver: sim\n"), 0644))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sim", got.Driver)
	assert.Equal(t, 50, got.FPS)
	assert.Equal(t, 52, got.CharacterLen)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero fps", func(c *Config) { c.FPS = 0 }},
		{"bad channels", func(c *Config) { c.Channels = 5 }},
		{"unknown driver", func(c *Config) { c.Driver = "pwm" }},
		{"empty accessory", func(c *Config) { c.AccessoryLen = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}
