package gpio

import (
	"fmt"
	"strconv"
	"strings"
)

// Polarity represents the electrical polarity of an output pin
type Polarity int

const (
	ActiveHigh Polarity = iota
	ActiveLow
)

// PinSpec is a parsed output pin specification
type PinSpec struct {
	// Name is the canonical pin name (e.g. "GPIO15")
	Name string

	// LineNum is the GPIO line number (e.g. 15 for GPIO15)
	LineNum int

	// Polarity indicates if the pin is active-high or active-low
	Polarity Polarity
}

// ParsePin parses a pin specification.
// Format: "pin[:active-high|active-low]"
// Examples: "GPIO15", "15", "GPIO4:active-low"
func ParsePin(pinSpec string) (*PinSpec, error) {
	parts := strings.Split(strings.TrimSpace(pinSpec), ":")

	lineNum, err := ParsePinNumber(parts[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPinSpec, pinSpec)
	}

	polarity := ActiveHigh
	for _, param := range parts[1:] {
		switch strings.ToLower(strings.TrimSpace(param)) {
		case "active-high":
			polarity = ActiveHigh
		case "active-low", "activelow":
			polarity = ActiveLow
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnknownPinParameter, param)
		}
	}

	return &PinSpec{
		Name:     fmt.Sprintf("GPIO%d", lineNum),
		LineNum:  lineNum,
		Polarity: polarity,
	}, nil
}

// ParsePins parses a list of pin specifications.
func ParsePins(pinSpecs []string) ([]*PinSpec, error) {
	specs := make([]*PinSpec, 0, len(pinSpecs))
	for _, s := range pinSpecs {
		spec, err := ParsePin(s)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// ParsePinNumber accepts both "GPIO<number>" and "<number>"
func ParsePinNumber(pinName string) (int, error) {
	numStr := strings.ToUpper(strings.TrimSpace(pinName))
	numStr = strings.TrimPrefix(numStr, "GPIO")

	lineNum, err := strconv.Atoi(numStr)
	if err != nil || lineNum < 0 {
		return 0, fmt.Errorf("%w: %s (expected GPIO<number> or <number>)", ErrInvalidPinNumber, pinName)
	}
	return lineNum, nil
}

// ActiveLevel reports the logical level that drives the pin for the given
// output state.
func (ps *PinSpec) ActiveLevel(on bool) bool {
	if ps.Polarity == ActiveLow {
		return !on
	}
	return on
}

func (p Polarity) String() string {
	switch p {
	case ActiveHigh:
		return "active-high"
	case ActiveLow:
		return "active-low"
	default:
		return "unknown"
	}
}

func (ps *PinSpec) String() string {
	return fmt.Sprintf("%s:%s", ps.Name, ps.Polarity)
}
