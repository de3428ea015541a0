// Package outputs describes the physical outputs driven by the controller.
package outputs

type (
	Output interface {
		TurnOn() error
		TurnOff() error
		GetState() (bool, error)
		String() string
	}

	Collection interface {
		CountOutputs() uint
		ListOutputs() []Output
		GetOutput(id uint) (Output, error)
		Init() error
		Close() error
		String() string
	}
)

// SetState drives an output to the given state.
func SetState(o Output, on bool) error {
	if on {
		return o.TurnOn()
	}
	return o.TurnOff()
}
