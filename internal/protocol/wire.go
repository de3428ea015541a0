package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
)

// WordSize is the size in bytes of every value on the wire.
const WordSize = 4

// ParseByteOrder maps a configuration value onto a byte order. "native"
// uses the host byte order, which is what deployed firmware peers send.
func ParseByteOrder(name string) (binary.ByteOrder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "native", "host":
		return binary.NativeEndian, nil
	case "little", "little-endian", "le":
		return binary.LittleEndian, nil
	case "big", "big-endian", "be", "network":
		return binary.BigEndian, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownByteOrder, name)
	}
}

// Conn reads and writes fixed-width words on a byte stream.
type Conn struct {
	rw    io.ReadWriter
	order binary.ByteOrder
}

// NewConn wraps a stream. A nil order selects the host byte order.
func NewConn(rw io.ReadWriter, order binary.ByteOrder) *Conn {
	if order == nil {
		order = binary.NativeEndian
	}
	return &Conn{rw: rw, order: order}
}

func (c *Conn) readWord() (int32, error) {
	var buf [WordSize]byte
	if _, err := io.ReadFull(c.rw, buf[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, fmt.Errorf("%w: %w", ErrShortRead, err)
		}
		return 0, fmt.Errorf("%w: %w", ErrReceive, err)
	}
	return int32(c.order.Uint32(buf[:])), nil
}

func (c *Conn) writeWord(v int32) error {
	var buf [WordSize]byte
	c.order.PutUint32(buf[:], uint32(v))
	if _, err := c.rw.Write(buf[:]); err != nil {
		return fmt.Errorf("%w: %w", ErrSend, err)
	}
	return nil
}

// ReadCommand reads one raw command word. The value is returned unparsed so
// that the controller decides what an unrecognized value means. io.EOF is
// returned unwrapped when the peer closes the stream between words.
func (c *Conn) ReadCommand() (int32, error) {
	return c.readWord()
}

// WriteCommand sends one command word.
func (c *Conn) WriteCommand(cmd Command) error {
	return c.writeWord(cmd.Raw())
}

// ReadStatus reads one status word.
func (c *Conn) ReadStatus() (Status, error) {
	v, err := c.readWord()
	return Status(v), err
}

// WriteStatus sends one status word.
func (c *Conn) WriteStatus(s Status) error {
	return c.writeWord(int32(s))
}
