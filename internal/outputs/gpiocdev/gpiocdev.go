// Package gpiocdev drives outputs through the Linux GPIO character device.
package gpiocdev

import (
	"fmt"

	"github.com/larsks/ledremote/internal/gpio"
	"github.com/larsks/ledremote/internal/outputs"
	"github.com/rs/zerolog/log"
	"github.com/warthog618/go-gpiocdev"
)

type (
	Line interface {
		SetValue(value int) error
		Value() (int, error)
		Close() error
	}

	Output struct {
		line Line
		spec *gpio.PinSpec
	}

	Collection struct {
		chip       *gpiocdev.Chip
		offOnClose bool
		outputs    []outputs.Output
	}
)

// NewCollection requests one output line per pin spec on the named chip.
func NewCollection(chipName string, offOnClose bool, pins []string) (*Collection, error) {
	specs, err := gpio.ParsePins(pins)
	if err != nil {
		return nil, err
	}

	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrChipOpenFailed, chipName, err)
	}

	outs := make([]outputs.Output, len(specs))
	for i, spec := range specs {
		line, err := chip.RequestLine(spec.LineNum, gpiocdev.AsOutput(levelFor(spec, false)))
		if err != nil {
			for _, o := range outs[:i] {
				o.(*Output).line.Close() //nolint:errcheck
			}
			chip.Close() //nolint:errcheck
			return nil, fmt.Errorf("%w: line %d: %v", ErrLineRequestFailed, spec.LineNum, err)
		}
		outs[i] = NewOutput(line, spec)
	}

	return &Collection{
		chip:       chip,
		offOnClose: offOnClose,
		outputs:    outs,
	}, nil
}

// NewOutput wraps an already requested line.
func NewOutput(line Line, spec *gpio.PinSpec) *Output {
	return &Output{line: line, spec: spec}
}

func levelFor(spec *gpio.PinSpec, on bool) int {
	if spec.ActiveLevel(on) {
		return 1
	}
	return 0
}

func (c *Collection) Init() error {
	log.Info().Int("outputs", len(c.outputs)).Msg("initializing gpiocdev outputs")
	for _, o := range c.outputs {
		if err := o.TurnOff(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Collection) Close() error {
	log.Info().Msg("closing gpiocdev outputs")
	for _, o := range c.outputs {
		out := o.(*Output)
		if c.offOnClose {
			if err := out.TurnOff(); err != nil {
				log.Warn().Err(err).Str("output", out.String()).Msg("failed to reset output")
			}
		}
		if err := out.line.Close(); err != nil {
			log.Warn().Err(err).Str("output", out.String()).Msg("failed to close line")
		}
	}

	if c.chip != nil {
		if err := c.chip.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close GPIO chip")
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
	return fmt.Sprintf("gpiocdev output collection with %d outputs", len(c.outputs))
}

func (o *Output) TurnOn() error {
	if err := o.line.SetValue(levelFor(o.spec, true)); err != nil {
		return fmt.Errorf("%w %s: %v", ErrOutputTurnOn, o, err)
	}
	return nil
}

func (o *Output) TurnOff() error {
	if err := o.line.SetValue(levelFor(o.spec, false)); err != nil {
		return fmt.Errorf("%w %s: %v", ErrOutputTurnOff, o, err)
	}
	return nil
}

// GetState reads the line back from the hardware.
func (o *Output) GetState() (bool, error) {
	v, err := o.line.Value()
	if err != nil {
		return false, fmt.Errorf("%w %s: %v", ErrOutputGetState, o, err)
	}
	return v == levelFor(o.spec, true), nil
}

func (o *Output) String() string {
	return o.spec.String()
}
