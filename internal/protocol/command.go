// Package protocol defines the command and status words exchanged between
// the console and the controller, and their fixed-width wire encoding.
package protocol

import (
	"fmt"
	"math/bits"
)

// MaxOutputs is the number of outputs that fit in a 32 bit word with two
// flags per output.
const MaxOutputs = 16

type (
	// OutputID is the zero-based slot of an output.
	OutputID uint

	// TargetState is the state a command asks an output to assume.
	TargetState int

	// Command asks for one output to be set to one state.
	Command struct {
		Output OutputID
		Target TargetState
	}
)

const (
	On TargetState = iota
	Off
)

func (ts TargetState) String() string {
	switch ts {
	case On:
		return "on"
	case Off:
		return "off"
	default:
		return "unknown"
	}
}

// Bool reports whether the target state is On.
func (ts TargetState) Bool() bool {
	return ts == On
}

// flag returns the single bit that represents (output, state).
func flag(id OutputID, ts TargetState) uint32 {
	return 1 << (2*uint(id) + uint(ts))
}

// Raw returns the wire value of the command.
func (c Command) Raw() int32 {
	return int32(flag(c.Output, c.Target))
}

func (c Command) String() string {
	return fmt.Sprintf("turn %s output %d", c.Target, c.Output)
}

// ParseCommand maps a raw wire value onto a command for a device with
// outputCount outputs. The second return value is false when the value does
// not name exactly one known (output, state) pair.
func ParseCommand(raw int32, outputCount int) (Command, bool) {
	v := uint32(raw)
	if v == 0 || bits.OnesCount32(v) != 1 {
		return Command{}, false
	}

	pos := bits.TrailingZeros32(v)
	id := OutputID(pos / 2)
	if int(id) >= outputCount {
		return Command{}, false
	}

	return Command{Output: id, Target: TargetState(pos % 2)}, true
}

// ValidateOutputCount checks that n outputs can be described by a status word.
func ValidateOutputCount(n int) error {
	if n < 1 {
		return ErrNoOutputs
	}
	if n > MaxOutputs {
		return fmt.Errorf("%w: %d (maximum %d)", ErrTooManyOutputs, n, MaxOutputs)
	}
	return nil
}
