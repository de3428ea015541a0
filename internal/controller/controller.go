// Package controller owns the state of the remote outputs and applies
// commands to them.
package controller

import (
	"fmt"
	"sync"

	"github.com/larsks/ledremote/internal/outputs"
	"github.com/larsks/ledremote/internal/protocol"
	"github.com/rs/zerolog/log"
)

type (
	// Snapshot is a consistent view of the controller state.
	Snapshot struct {
		Names  []string
		States []bool
		Status protocol.Status
	}

	// Observer is notified after every reset and every applied command.
	Observer interface {
		StatusChanged(Snapshot)
	}

	// ObserverFunc adapts a function to the Observer interface.
	ObserverFunc func(Snapshot)

	Controller struct {
		names     []string
		outputs   []outputs.Output
		states    []bool
		observers []Observer
		mutex     sync.RWMutex
	}
)

func (f ObserverFunc) StatusChanged(s Snapshot) {
	f(s)
}

// New binds one name to each of the first len(names) outputs of the
// collection. The logical state of every output starts off; call Reset to
// bring the hardware in line.
func New(collection outputs.Collection, names []string) (*Controller, error) {
	if err := protocol.ValidateOutputCount(len(names)); err != nil {
		return nil, err
	}
	if collection.CountOutputs() < uint(len(names)) {
		return nil, fmt.Errorf("%w: %d outputs, %d names", ErrNotEnoughOutputs, collection.CountOutputs(), len(names))
	}

	outs := make([]outputs.Output, len(names))
	for i := range names {
		o, err := collection.GetOutput(uint(i))
		if err != nil {
			return nil, err
		}
		outs[i] = o
	}

	return &Controller{
		names:   append([]string(nil), names...),
		outputs: outs,
		states:  make([]bool, len(names)),
	}, nil
}

// AddObserver registers an observer. Observers run synchronously, so they
// should not block.
func (c *Controller) AddObserver(o Observer) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.observers = append(c.observers, o)
}

// Count returns the number of controlled outputs.
func (c *Controller) Count() int {
	return len(c.names)
}

// Names returns the output names in slot order.
func (c *Controller) Names() []string {
	return append([]string(nil), c.names...)
}

// Reset turns every output off, writing each one to the hardware, and
// returns the initial status.
func (c *Controller) Reset() protocol.Status {
	c.mutex.Lock()
	for i, o := range c.outputs {
		if err := o.TurnOff(); err != nil {
			log.Error().Err(err).Str("output", c.names[i]).Msg("failed to reset output")
			continue
		}
		c.states[i] = false
	}
	snap := c.snapshotLocked()
	c.mutex.Unlock()

	log.Info().Stringer("status", snap.Status).Msg("outputs reset")
	c.notify(snap)
	return snap.Status
}

// Apply sets the addressed output to the target state. Setting an output to
// the state it already has does not touch the hardware.
func (c *Controller) Apply(cmd protocol.Command) protocol.Status {
	c.mutex.Lock()
	id := int(cmd.Output)
	if id >= len(c.outputs) {
		snap := c.snapshotLocked()
		c.mutex.Unlock()
		log.Warn().Stringer("command", cmd).Msg("command addresses unknown output")
		return snap.Status
	}

	want := cmd.Target.Bool()
	if c.states[id] != want {
		log.Info().Str("output", c.names[id]).Stringer("state", cmd.Target).Msg("turning output")
		if err := outputs.SetState(c.outputs[id], want); err != nil {
			log.Error().Err(err).Str("output", c.names[id]).Msg("failed to set output")
		} else {
			c.states[id] = want
		}
	}
	snap := c.snapshotLocked()
	c.mutex.Unlock()

	c.notify(snap)
	return snap.Status
}

// ApplyRaw interprets a raw wire value. Values that do not name a known
// command leave the outputs alone and return the current status.
func (c *Controller) ApplyRaw(raw int32) protocol.Status {
	cmd, ok := protocol.ParseCommand(raw, len(c.names))
	if !ok {
		log.Warn().Int32("raw", raw).Msg("ignoring unrecognized command")
		return c.Status()
	}
	return c.Apply(cmd)
}

// Status derives the status word from the current output states.
func (c *Controller) Status() protocol.Status {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return protocol.StatusFromStates(c.states)
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		Names:  append([]string(nil), c.names...),
		States: append([]bool(nil), c.states...),
		Status: protocol.StatusFromStates(c.states),
	}
}

func (c *Controller) notify(snap Snapshot) {
	c.mutex.RLock()
	observers := append([]Observer(nil), c.observers...)
	c.mutex.RUnlock()

	for _, o := range observers {
		o.StatusChanged(snap)
	}
}
