package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ads1x15"
	"periph.io/x/host/v3"

	"github.com/charmwear/charmstrand/internal/app"
	"github.com/charmwear/charmstrand/internal/config"
	"github.com/charmwear/charmstrand/internal/input"
	"github.com/charmwear/charmstrand/internal/led"
	"github.com/charmwear/charmstrand/internal/monitor"
)

func main() {
	var (
		configPath = flag.String("config", "charmstrand.yaml", "path to config yaml")
		driver     = flag.String("driver", "", "driver: spi | sim (overrides config)")
		simOnly    = flag.Bool("sim-only", false, "force simulation (no hardware output)")
		addr       = flag.String("addr", "", "monitor listen address (overrides config)")
		debug      = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
	if !*debug {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	cfg := config.Default()
	if c, err := config.Load(*configPath); err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; proceeding with defaults")
	} else {
		cfg = c
	}
	if *driver != "" {
		cfg.Driver = *driver
	}
	if *simOnly {
		cfg.Driver = "sim"
	}
	if *addr != "" {
		cfg.MonitorAddr = *addr
	}

	if _, err := host.Init(); err != nil {
		log.Fatal().Err(err).Msg("periph host init")
	}

	buttons, diagPin, err := openPins(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("button pins")
	}

	pixels := cfg.AccessoryLen + cfg.CharacterLen
	drv := openDriver(cfg, pixels)
	defer drv.Close()

	dimmer := openDimmer(cfg)

	var hub *monitor.Hub
	if cfg.MonitorAddr != "" {
		hub = monitor.NewHub()
		go hub.ListenAndServe(cfg.MonitorAddr)
	}

	ctrl, err := app.NewController(app.Options{
		Buttons:      buttons,
		Diag:         diagPin,
		Driver:       drv,
		Dimmer:       dimmer,
		Hub:          hub,
		AccessoryLen: cfg.AccessoryLen,
		CharacterLen: cfg.CharacterLen,
		Channels:     cfg.Channels,
		FPS:          cfg.FPS,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("controller init")
	}
	// Boot randomness folds in the pot position so two charms powered at the
	// same instant still diverge.
	ctrl.Machine.Entropy = func() uint64 {
		return uint64(time.Now().UnixNano()) ^ uint64(uint32(dimmer.Raw()))<<20
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().Str("driver", cfg.Driver).Int("pixels", pixels).Msg("charmstrand starting")
	if err := ctrl.Run(ctx); err != nil && err != context.Canceled {
		log.Error().Err(err).Msg("control loop stopped")
	}
	log.Info().Msg("shutting down")
}

func openPins(cfg *config.Config) ([3]gpio.PinIn, gpio.PinIn, error) {
	var buttons [3]gpio.PinIn
	for i, name := range []string{cfg.Pins.A, cfg.Pins.B, cfg.Pins.C} {
		p := gpioreg.ByName(name)
		if p == nil {
			return buttons, nil, fmt.Errorf("gpio pin not found: %s", name)
		}
		buttons[i] = p
	}
	var diag gpio.PinIn
	if cfg.Pins.Diag != "" {
		if p := gpioreg.ByName(cfg.Pins.Diag); p != nil {
			if err := p.In(gpio.PullUp, gpio.NoEdge); err == nil {
				diag = p
			} else {
				log.Warn().Err(err).Str("pin", cfg.Pins.Diag).Msg("diag pin unusable")
			}
		}
	}
	return buttons, diag, nil
}

// openDriver falls back to the sim sink when SPI is unavailable, so the
// binary stays usable on a desk without the hardware.
func openDriver(cfg *config.Config, pixels int) led.Driver {
	if cfg.Driver == "sim" {
		return led.NewSim(cfg.Channels, cfg.FPS)
	}
	drv, err := led.NewSPI(cfg.SPI.Dev, pixels, cfg.Channels)
	if err != nil {
		log.Warn().Err(err).Str("dev", cfg.SPI.Dev).Msg("SPI init failed; falling back to sim")
		return led.NewSim(cfg.Channels, cfg.FPS)
	}
	return drv
}

// openDimmer returns a pot-less dimmer (full brightness) when the ADC is
// absent or misconfigured.
func openDimmer(cfg *config.Config) *input.Dimmer {
	if cfg.Dimmer.I2CBus == "" {
		return input.NewDimmer(nil)
	}
	bus, err := i2creg.Open(cfg.Dimmer.I2CBus)
	if err != nil {
		log.Warn().Err(err).Str("bus", cfg.Dimmer.I2CBus).Msg("i2c open failed; dimmer disabled")
		return input.NewDimmer(nil)
	}
	adc, err := ads1x15.NewADS1115(bus, &ads1x15.DefaultOpts)
	if err != nil {
		log.Warn().Err(err).Msg("ads1115 init failed; dimmer disabled")
		return input.NewDimmer(nil)
	}
	channels := [4]ads1x15.Channel{ads1x15.Channel0, ads1x15.Channel1, ads1x15.Channel2, ads1x15.Channel3}
	ch := cfg.Dimmer.Channel
	if ch < 0 || ch > 3 {
		log.Warn().Int("channel", ch).Msg("dimmer channel out of range; using 0")
		ch = 0
	}
	pin, err := adc.PinForChannel(channels[ch], 3300*physic.MilliVolt, 10*physic.Hertz, ads1x15.SaveEnergy)
	if err != nil {
		log.Warn().Err(err).Msg("adc pin setup failed; dimmer disabled")
		return input.NewDimmer(nil)
	}
	return input.NewDimmer(pin)
}
