package outputs

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

// DummyOutput is a virtual output that records every physical write.
type DummyOutput struct {
	id     uint
	state  bool
	writes int
	fail   bool
	mutex  sync.RWMutex
}

// DummyCollection implements Collection without hardware. It backs the
// "dummy" driver and the tests.
type DummyCollection struct {
	outputs []Output
}

// NewDummyCollection creates a collection of count virtual outputs, all off.
func NewDummyCollection(count uint) *DummyCollection {
	outputs := make([]Output, count)
	for i := uint(0); i < count; i++ {
		outputs[i] = &DummyOutput{id: i}
	}
	return &DummyCollection{outputs: outputs}
}

func (dc *DummyCollection) Init() error {
	log.Info().Int("outputs", len(dc.outputs)).Msg("initializing dummy output collection")
	return nil
}

func (dc *DummyCollection) Close() error {
	log.Info().Msg("closing dummy output collection")
	return nil
}

func (dc *DummyCollection) CountOutputs() uint {
	return uint(len(dc.outputs))
}

func (dc *DummyCollection) ListOutputs() []Output {
	return dc.outputs
}

func (dc *DummyCollection) GetOutput(id uint) (Output, error) {
	if id >= uint(len(dc.outputs)) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidOutputID, id)
	}
	return dc.outputs[id], nil
}

// Dummy returns the concrete output at id, for inspection in tests.
func (dc *DummyCollection) Dummy(id uint) *DummyOutput {
	return dc.outputs[id].(*DummyOutput)
}

func (dc *DummyCollection) String() string {
	return fmt.Sprintf("dummy output collection with %d outputs", len(dc.outputs))
}

func (do *DummyOutput) set(state bool) error {
	do.mutex.Lock()
	defer do.mutex.Unlock()

	if do.fail {
		return fmt.Errorf("%w on %s", ErrWriteFailed, do.name())
	}
	log.Debug().Str("output", do.name()).Bool("on", state).Msg("dummy write")
	do.state = state
	do.writes++
	return nil
}

func (do *DummyOutput) TurnOn() error {
	return do.set(true)
}

func (do *DummyOutput) TurnOff() error {
	return do.set(false)
}

func (do *DummyOutput) GetState() (bool, error) {
	do.mutex.RLock()
	defer do.mutex.RUnlock()
	return do.state, nil
}

// Writes returns the number of successful physical writes.
func (do *DummyOutput) Writes() int {
	do.mutex.RLock()
	defer do.mutex.RUnlock()
	return do.writes
}

// SetFailing makes subsequent writes fail.
func (do *DummyOutput) SetFailing(fail bool) {
	do.mutex.Lock()
	defer do.mutex.Unlock()
	do.fail = fail
}

func (do *DummyOutput) name() string {
	return fmt.Sprintf("dummy:%d", do.id)
}

func (do *DummyOutput) String() string {
	return do.name()
}
