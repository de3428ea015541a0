package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitialStatus(t *testing.T) {
	s := InitialStatus(3)
	assert.Equal(t, Status(1|4|16), s)
	assert.True(t, s.Valid(3))
	for i := 0; i < 3; i++ {
		assert.Equal(t, On, s.Offers(OutputID(i)))
	}
}

func TestStatusFromStates(t *testing.T) {
	s := StatusFromStates([]bool{true, false, true})
	assert.Equal(t, Status(2|4|32), s)
	assert.True(t, s.Valid(3))
	assert.Equal(t, Off, s.Offers(0))
	assert.Equal(t, On, s.Offers(1))
	assert.Equal(t, Off, s.Offers(2))
	assert.Equal(t, []bool{true, false, true}, s.States(3))
}

func TestStatusValid(t *testing.T) {
	tests := []struct {
		name   string
		status Status
		want   bool
	}{
		{"all on offered", 1 | 4 | 16, true},
		{"all off offered", 2 | 8 | 32, true},
		{"both flags for red", 1 | 2 | 4 | 16, false},
		{"no flag for green", 1 | 16, false},
		{"extra bit", 1 | 4 | 16 | 64, false},
		{"unknown", StatusUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.Valid(3))
		})
	}
}

func TestStatusResolve(t *testing.T) {
	assert.Equal(t, InitialStatus(3), StatusUnknown.Resolve(3))
	assert.Equal(t, Status(2|4|16), Status(2|4|16).Resolve(3))
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "unknown", StatusUnknown.String())
	assert.Equal(t, "0x15[0:offer-on 1:offer-on 2:offer-on]", InitialStatus(3).String())
}
