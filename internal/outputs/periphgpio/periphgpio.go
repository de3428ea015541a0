// Package periphgpio drives outputs through the periph.io pin registry.
package periphgpio

import (
	"errors"
	"fmt"

	"github.com/larsks/ledremote/internal/gpio"
	"github.com/larsks/ledremote/internal/outputs"
	"github.com/rs/zerolog/log"
	pgpio "periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

var (
	ErrPeriphInitFailed = errors.New("failed to initialize periph.io")
	ErrPinNotFound      = errors.New("failed to find pin")
	ErrInvalidOutput    = errors.New("invalid output id")
)

type (
	Output struct {
		pin  pgpio.PinIO
		spec *gpio.PinSpec
	}

	Collection struct {
		offOnClose bool
		outputs    []outputs.Output
	}
)

// NewCollection looks up one pin per spec in the periph registry.
func NewCollection(offOnClose bool, pins []string) (*Collection, error) {
	specs, err := gpio.ParsePins(pins)
	if err != nil {
		return nil, err
	}

	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPeriphInitFailed, err)
	}

	outs := make([]outputs.Output, len(specs))
	for i, spec := range specs {
		pin := gpioreg.ByName(spec.Name)
		if pin == nil {
			return nil, fmt.Errorf("%w: %s", ErrPinNotFound, spec.Name)
		}
		outs[i] = NewOutput(pin, spec)
	}

	return &Collection{offOnClose: offOnClose, outputs: outs}, nil
}

// NewOutput wraps a periph pin.
func NewOutput(pin pgpio.PinIO, spec *gpio.PinSpec) *Output {
	return &Output{pin: pin, spec: spec}
}

func (c *Collection) Init() error {
	log.Info().Int("outputs", len(c.outputs)).Msg("initializing periph outputs")
	for _, o := range c.outputs {
		if err := o.TurnOff(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Collection) Close() error {
	log.Info().Msg("closing periph outputs")
	if !c.offOnClose {
		return nil
	}
	for _, o := range c.outputs {
		if err := o.TurnOff(); err != nil {
			log.Warn().Err(err).Str("output", o.String()).Msg("failed to reset output")
		}
	}
	return nil
}

func (c *Collection) CountOutputs() uint {
	return uint(len(c.outputs))
}

func (c *Collection) ListOutputs() []outputs.Output {
	return c.outputs
}

func (c *Collection) GetOutput(id uint) (outputs.Output, error) {
	if id >= uint(len(c.outputs)) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidOutput, id)
	}
	return c.outputs[id], nil
}

func (c *Collection) String() string {
	return fmt.Sprintf("periph output collection with %d outputs", len(c.outputs))
}

func (o *Output) level(on bool) pgpio.Level {
	return pgpio.Level(o.spec.ActiveLevel(on))
}

func (o *Output) TurnOn() error {
	if err := o.pin.Out(o.level(true)); err != nil {
		return fmt.Errorf("failed to turn on output %s: %w", o, err)
	}
	return nil
}

func (o *Output) TurnOff() error {
	if err := o.pin.Out(o.level(false)); err != nil {
		return fmt.Errorf("failed to turn off output %s: %w", o, err)
	}
	return nil
}

func (o *Output) GetState() (bool, error) {
	return o.pin.Read() == o.level(true), nil
}

func (o *Output) String() string {
	return o.spec.String()
}
