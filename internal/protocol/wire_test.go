package protocol

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseByteOrder(t *testing.T) {
	for _, name := range []string{"", "native", "host"} {
		order, err := ParseByteOrder(name)
		require.NoError(t, err)
		assert.Equal(t, binary.NativeEndian, order)
	}

	order, err := ParseByteOrder("little")
	require.NoError(t, err)
	assert.Equal(t, binary.LittleEndian, order)

	order, err = ParseByteOrder("Big")
	require.NoError(t, err)
	assert.Equal(t, binary.BigEndian, order)

	_, err = ParseByteOrder("middle")
	assert.ErrorIs(t, err, ErrUnknownByteOrder)
}

func TestConnCommandEncoding(t *testing.T) {
	var buf bytes.Buffer
	c := NewConn(&buf, binary.LittleEndian)

	require.NoError(t, c.WriteCommand(Command{Output: 1, Target: Off}))
	assert.Equal(t, []byte{8, 0, 0, 0}, buf.Bytes())

	raw, err := c.ReadCommand()
	require.NoError(t, err)
	assert.Equal(t, int32(8), raw)
}

func TestConnStatusBigEndian(t *testing.T) {
	var buf bytes.Buffer
	c := NewConn(&buf, binary.BigEndian)

	require.NoError(t, c.WriteStatus(InitialStatus(3)))
	assert.Equal(t, []byte{0, 0, 0, 0x15}, buf.Bytes())

	s, err := c.ReadStatus()
	require.NoError(t, err)
	assert.Equal(t, InitialStatus(3), s)
}

func TestConnEOF(t *testing.T) {
	c := NewConn(&bytes.Buffer{}, nil)
	_, err := c.ReadCommand()
	assert.Equal(t, io.EOF, err)
}

func TestConnShortRead(t *testing.T) {
	c := NewConn(bytes.NewBuffer([]byte{1, 0}), nil)
	_, err := c.ReadStatus()
	assert.ErrorIs(t, err, ErrShortRead)
}
