package app

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"

	"github.com/charmwear/charmstrand/internal/ctrl"
	"github.com/charmwear/charmstrand/internal/input"
	"github.com/charmwear/charmstrand/internal/monitor"
)

type captureDriver struct {
	frames [][]byte
	err    error
}

func (d *captureDriver) Write(rgb []byte) error {
	if d.err != nil {
		return d.err
	}
	d.frames = append(d.frames, append([]byte{}, rgb...))
	return nil
}

func (d *captureDriver) Close() error { return nil }

func testButtons() [3]gpio.PinIn {
	return [3]gpio.PinIn{
		&gpiotest.Pin{N: "btn0", L: gpio.High},
		&gpiotest.Pin{N: "btn1", L: gpio.High},
		&gpiotest.Pin{N: "btn2", L: gpio.High},
	}
}

func newController(t *testing.T, drv *captureDriver, buttons [3]gpio.PinIn) *Controller {
	t.Helper()
	c, err := NewController(Options{
		Buttons:      buttons,
		Driver:       drv,
		AccessoryLen: 8,
		CharacterLen: 52,
		Channels:     3,
	})
	require.NoError(t, err)
	return c
}

func TestNewControllerRequiresDriver(t *testing.T) {
	_, err := NewController(Options{Buttons: testButtons()})
	assert.Error(t, err)
}

func TestTickWritesFullFrames(t *testing.T) {
	drv := &captureDriver{}
	c := newController(t, drv, testButtons())

	now := time.Unix(100, 0)
	for i := 0; i < 3; i++ {
		c.Tick(now)
		now = now.Add(20 * time.Millisecond)
	}
	require.Len(t, drv.frames, 3)
	assert.Len(t, drv.frames[0], 60*3)
}

func TestConfirmedPressSelectsMode(t *testing.T) {
	drv := &captureDriver{}
	buttons := testButtons()
	c := newController(t, drv, buttons)

	// Button 0 down reads low; the debounce window must elapse first.
	buttons[0].(*gpiotest.Pin).L = gpio.Low
	now := time.Unix(100, 0)
	for i := 0; i < input.ConfirmWindow-1; i++ {
		c.Tick(now)
		now = now.Add(20 * time.Millisecond)
	}
	assert.Equal(t, ctrl.Nobody, c.Machine.Mode())

	c.Tick(now)
	assert.Equal(t, ctrl.Miku, c.Machine.Mode())
	assert.Equal(t, ctrl.EffectSolid, c.Machine.Effect())
}

func TestWriteErrorDoesNotStopLoop(t *testing.T) {
	drv := &captureDriver{err: errors.New("bus gone")}
	c := newController(t, drv, testButtons())

	now := time.Unix(100, 0)
	for i := 0; i < 5; i++ {
		c.Tick(now)
		now = now.Add(20 * time.Millisecond)
	}
	assert.Equal(t, uint64(5), c.frame)
}

func TestTickPublishesStatus(t *testing.T) {
	drv := &captureDriver{}
	hub := monitor.NewHub()
	c, err := NewController(Options{
		Buttons:      testButtons(),
		Driver:       drv,
		Hub:          hub,
		AccessoryLen: 8,
		CharacterLen: 52,
		Channels:     3,
	})
	require.NoError(t, err)

	c.Tick(time.Unix(100, 0))
	st := hub.Last()
	assert.Equal(t, uint64(1), st.Frame)
	assert.Equal(t, "normal", st.State)
	assert.Equal(t, uint8(input.DimmerMax), st.Dimmer)
}
