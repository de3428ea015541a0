package controller

import (
	"testing"

	"github.com/larsks/ledremote/internal/outputs"
	"github.com/larsks/ledremote/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var rgb = []string{"red", "green", "blue"}

func newTestController(t *testing.T) (*Controller, *outputs.DummyCollection) {
	t.Helper()
	dc := outputs.NewDummyCollection(3)
	require.NoError(t, dc.Init())
	c, err := New(dc, rgb)
	require.NoError(t, err)
	return c, dc
}

func on(id protocol.OutputID) protocol.Command {
	return protocol.Command{Output: id, Target: protocol.On}
}

func off(id protocol.OutputID) protocol.Command {
	return protocol.Command{Output: id, Target: protocol.Off}
}

func TestNewValidation(t *testing.T) {
	_, err := New(outputs.NewDummyCollection(2), rgb)
	assert.ErrorIs(t, err, ErrNotEnoughOutputs)

	_, err = New(outputs.NewDummyCollection(2), nil)
	assert.ErrorIs(t, err, protocol.ErrNoOutputs)

	c, err := New(outputs.NewDummyCollection(8), rgb)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Count())
	assert.Equal(t, rgb, c.Names())
}

func TestReset(t *testing.T) {
	c, dc := newTestController(t)

	c.Apply(on(0))
	c.Apply(on(2))

	status := c.Reset()
	assert.Equal(t, protocol.InitialStatus(3), status)
	for i := uint(0); i < 3; i++ {
		state, err := dc.Dummy(i).GetState()
		require.NoError(t, err)
		assert.False(t, state, "output %d should be off", i)
	}
	// every output is written on reset, whatever its previous state
	assert.Equal(t, 2, dc.Dummy(0).Writes())
	assert.Equal(t, 1, dc.Dummy(1).Writes())
	assert.Equal(t, 2, dc.Dummy(2).Writes())
}

func TestStatusAlwaysMutuallyExclusive(t *testing.T) {
	c, _ := newTestController(t)
	assert.True(t, c.Reset().Valid(3))

	raws := []int32{1, 2, 4, 8, 16, 32, 0, -1, 3, 64, 1, 1, 32, 8}
	for _, raw := range raws {
		s := c.ApplyRaw(raw)
		assert.True(t, s.Valid(3), "status %s after raw %d", s, raw)
	}
}

func TestApplyIdempotent(t *testing.T) {
	c, dc := newTestController(t)
	c.Reset()

	first := c.Apply(on(1))
	second := c.Apply(on(1))

	assert.Equal(t, first, second)
	state, _ := dc.Dummy(1).GetState()
	assert.True(t, state)
	// reset write plus a single write for the change
	assert.Equal(t, 2, dc.Dummy(1).Writes())
}

func TestApplyRawUnknownIsNoop(t *testing.T) {
	c, dc := newTestController(t)
	c.Reset()
	before := c.Apply(on(0))
	writes := dc.Dummy(0).Writes()

	for _, raw := range []int32{0, -1, 1 | 4, 64, 1 << 30} {
		assert.Equal(t, before, c.ApplyRaw(raw))
	}
	assert.Equal(t, writes, dc.Dummy(0).Writes())
	assert.Equal(t, []bool{true, false, false}, c.Snapshot().States)
}

func TestRoundTripScenario(t *testing.T) {
	c, dc := newTestController(t)

	assert.Equal(t, protocol.Status(1|4|16), c.Reset())

	assert.Equal(t, protocol.Status(2|4|16), c.ApplyRaw(1))
	state, _ := dc.Dummy(0).GetState()
	assert.True(t, state)

	assert.Equal(t, protocol.Status(2|4|16), c.ApplyRaw(1))
}

func TestFullCycleScenario(t *testing.T) {
	c, dc := newTestController(t)
	initial := c.Reset()

	for i := protocol.OutputID(0); i < 3; i++ {
		c.Apply(on(i))
	}
	assert.Equal(t, protocol.Status(2|8|32), c.Status())

	var last protocol.Status
	for i := protocol.OutputID(0); i < 3; i++ {
		last = c.Apply(off(i))
	}

	assert.Equal(t, initial, last)
	for i := uint(0); i < 3; i++ {
		state, _ := dc.Dummy(i).GetState()
		assert.False(t, state)
	}
}

func TestApplyWriteFailureKeepsState(t *testing.T) {
	c, dc := newTestController(t)
	c.Reset()

	dc.Dummy(2).SetFailing(true)
	status := c.Apply(on(2))

	assert.Equal(t, protocol.On, status.Offers(2))
	assert.Equal(t, []bool{false, false, false}, c.Snapshot().States)
}

func TestObservers(t *testing.T) {
	c, _ := newTestController(t)

	var seen []protocol.Status
	c.AddObserver(ObserverFunc(func(s Snapshot) {
		seen = append(seen, s.Status)
	}))

	c.Reset()
	c.Apply(on(0))
	c.ApplyRaw(0)

	assert.Equal(t, []protocol.Status{1 | 4 | 16, 2 | 4 | 16}, seen)
}
