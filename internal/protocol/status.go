package protocol

import (
	"fmt"
	"strings"
)

// Status tells the console which transition is currently offered for each
// output: ON when the output is off, OFF when it is on. Exactly one of the
// two flags is set for every output.
type Status int32

// StatusUnknown is what the console holds before the first reply arrives.
const StatusUnknown Status = -1

// InitialStatus is the status of a device whose outputs are all off.
func InitialStatus(outputCount int) Status {
	var s uint32
	for i := 0; i < outputCount; i++ {
		s |= flag(OutputID(i), On)
	}
	return Status(s)
}

// StatusFromStates derives the status word from the current output states.
func StatusFromStates(states []bool) Status {
	var s uint32
	for i, on := range states {
		if on {
			s |= flag(OutputID(i), Off)
		} else {
			s |= flag(OutputID(i), On)
		}
	}
	return Status(s)
}

// Resolve replaces StatusUnknown with the initial status.
func (s Status) Resolve(outputCount int) Status {
	if s == StatusUnknown {
		return InitialStatus(outputCount)
	}
	return s
}

// Offers returns the transition offered for an output. Outputs whose ON
// flag is clear are treated as offering OFF.
func (s Status) Offers(id OutputID) TargetState {
	if uint32(s)&flag(id, On) != 0 {
		return On
	}
	return Off
}

// Valid reports whether exactly one flag is set for each of the first
// outputCount outputs and no bits beyond them are set.
func (s Status) Valid(outputCount int) bool {
	if s == StatusUnknown {
		return false
	}

	v := uint32(s)
	for i := 0; i < outputCount; i++ {
		on := v&flag(OutputID(i), On) != 0
		off := v&flag(OutputID(i), Off) != 0
		if on == off {
			return false
		}
	}

	if outputCount < MaxOutputs && v>>(2*uint(outputCount)) != 0 {
		return false
	}
	return true
}

// States returns the output states implied by the status word.
func (s Status) States(outputCount int) []bool {
	states := make([]bool, outputCount)
	for i := range states {
		states[i] = s.Offers(OutputID(i)) == Off
	}
	return states
}

func (s Status) String() string {
	if s == StatusUnknown {
		return "unknown"
	}

	var parts []string
	for i := 0; i < MaxOutputs; i++ {
		v := uint32(s)
		if v&flag(OutputID(i), On) != 0 {
			parts = append(parts, fmt.Sprintf("%d:offer-on", i))
		} else if v&flag(OutputID(i), Off) != 0 {
			parts = append(parts, fmt.Sprintf("%d:offer-off", i))
		}
	}
	return fmt.Sprintf("%#x[%s]", uint32(s), strings.Join(parts, " "))
}
