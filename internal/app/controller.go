// Package app wires the sampled inputs, the mode machine, the animation
// engine and the strand driver into the single 50 Hz control loop.
package app

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/gpio"

	"github.com/charmwear/charmstrand/internal/anim"
	"github.com/charmwear/charmstrand/internal/ctrl"
	"github.com/charmwear/charmstrand/internal/input"
	"github.com/charmwear/charmstrand/internal/led"
	"github.com/charmwear/charmstrand/internal/monitor"
	"github.com/charmwear/charmstrand/internal/strand"
)

// DefaultFPS is the control loop rate; every timing constant downstream is
// calibrated against it.
const DefaultFPS = 50

type Options struct {
	Buttons [3]gpio.PinIn
	// Diag, when set, dumps the input history on a button press.
	Diag gpio.PinIn

	Driver led.Driver
	Dimmer *input.Dimmer
	Hub    *monitor.Hub

	AccessoryLen int
	CharacterLen int
	Channels     int
	FPS          int
}

// Controller owns the frame loop. Everything below it is single-threaded;
// only the monitor hub sees state from other goroutines.
type Controller struct {
	sampler *input.Sampler
	history *input.History
	dimmer  *input.Dimmer
	Machine *ctrl.Machine
	engine  *anim.Engine
	buf     *strand.Buffer
	driver  led.Driver
	hub     *monitor.Hub
	fps     int

	diag     gpio.PinIn
	diagHeld bool
	frame    uint64
}

func NewController(opts Options) (*Controller, error) {
	if opts.Driver == nil {
		return nil, fmt.Errorf("driver is required")
	}
	if opts.FPS <= 0 {
		opts.FPS = DefaultFPS
	}
	sampler, err := input.NewSampler(opts.Buttons)
	if err != nil {
		return nil, err
	}
	history, err := input.NewHistory(input.HistoryLen)
	if err != nil {
		return nil, err
	}
	buf, err := strand.NewBuffer(opts.AccessoryLen+opts.CharacterLen, opts.Channels)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	engine, err := anim.NewEngine(buf, opts.AccessoryLen, rng)
	if err != nil {
		return nil, err
	}
	dimmer := opts.Dimmer
	if dimmer == nil {
		dimmer = input.NewDimmer(nil)
	}
	return &Controller{
		sampler: sampler,
		history: history,
		dimmer:  dimmer,
		Machine: ctrl.NewMachine(history, rng),
		engine:  engine,
		buf:     buf,
		driver:  opts.Driver,
		hub:     opts.Hub,
		fps:     opts.FPS,
		diag:    opts.Diag,
	}, nil
}

// Tick runs one full frame: sample, confirm, detect, update, render, write.
func (c *Controller) Tick(now time.Time) {
	c.frame++

	raw := c.sampler.Sample()
	vec := c.sampler.Confirm(raw)
	c.history.RecordChange(vec, now)
	g := c.history.Detect()
	snap := c.Machine.Update(vec, g)
	level := c.dimmer.Poll()

	c.engine.Render(snap, level)
	if err := c.driver.Write(c.buf.Bytes()); err != nil {
		log.Warn().Err(err).Uint64("frame", c.frame).Msg("strand write")
	}

	if c.hub != nil {
		c.hub.Publish(monitor.Status{
			T:      now.UnixNano(),
			Frame:  c.frame,
			State:  snap.State.String(),
			Mode:   snap.Mode.String(),
			Effect: snap.Effect.String(),
			Vector: uint8(vec),
			Dimmer: level,
		})
	}
	c.pollDiag(snap)
}

// pollDiag dumps the detector's view of the world on the diag button's
// falling edge. Pressed reads low, like the vector buttons.
func (c *Controller) pollDiag(snap ctrl.Snapshot) {
	if c.diag == nil {
		return
	}
	down := c.diag.Read() == gpio.Low
	if down && !c.diagHeld {
		ev := log.Info().
			Str("state", snap.State.String()).
			Str("mode", snap.Mode.String()).
			Str("effect", snap.Effect.String()).
			Uint8("dimmer", c.dimmer.Level()).
			Int32("dimmer_raw", c.dimmer.Raw())
		for i, e := range c.history.Entries() {
			ev = ev.Str(fmt.Sprintf("h%d", i), fmt.Sprintf("%d@%s", e.Vec, e.Elapsed))
		}
		ev.Msg("diag dump")
	}
	c.diagHeld = down
}

// Run drives Tick at the configured rate until the context ends.
func (c *Controller) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(c.fps))
	defer ticker.Stop()
	log.Info().Int("fps", c.fps).Int("pixels", c.buf.Len()).Msg("control loop started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			c.Tick(now)
		}
	}
}
