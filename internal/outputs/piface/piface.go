// Package piface drives the eight outputs of a PiFace Digital board, an
// MCP23S17 port expander on the SPI bus.
package piface

import (
	"fmt"
	"io"
	"sync"

	"github.com/larsks/ledremote/internal/outputs"
	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

const NumberOfOutputs = 8

// MCP23S17 registers (IOCON.BANK=0)
const (
	regIODIRA = 0x00
	regIODIRB = 0x01
	regIOCON  = 0x0a
	regGPPUB  = 0x0d
	regGPIOA  = 0x12
)

// MCP23S17 SPI opcodes for hardware address 0
const (
	opWrite = 0x40
	opRead  = 0x41
)

// Conn is the part of spi.Conn the board uses.
type Conn interface {
	Tx(w, r []byte) error
}

type (
	Board struct {
		name       string
		conn       Conn
		closer     io.Closer
		offOnClose bool
		outputs    []outputs.Output
		mutex      sync.Mutex
	}

	Output struct {
		board *Board
		pin   uint8
	}
)

// Open connects to the board on the named SPI port.
func Open(spiPort string, offOnClose bool) (*Board, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPeriphInitFailed, err)
	}

	port, err := spireg.Open(spiPort)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrSPIPortOpen, spiPort, err)
	}
	conn, err := port.Connect(1*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		port.Close() //nolint:errcheck
		return nil, fmt.Errorf("%w: %v", ErrSPIConnect, err)
	}

	log.Info().Str("port", spiPort).Msg("opened piface")
	return NewBoard(spiPort, conn, port, offOnClose), nil
}

// NewBoard wraps an established connection. closer may be nil.
func NewBoard(name string, conn Conn, closer io.Closer, offOnClose bool) *Board {
	b := &Board{
		name:       name,
		conn:       conn,
		closer:     closer,
		offOnClose: offOnClose,
	}
	for pin := uint8(0); pin < uint8(NumberOfOutputs); pin++ {
		b.outputs = append(b.outputs, &Output{board: b, pin: pin})
	}
	return b
}

// Init configures port A as outputs, port B as pulled-up inputs, and turns
// every output off.
func (b *Board) Init() error {
	log.Info().Str("board", b.String()).Msg("initializing piface")

	steps := []struct {
		reg, value uint8
	}{
		{regIOCON, 0x08}, // enable hardware addressing
		{regIODIRA, 0x00},
		{regIODIRB, 0xff},
		{regGPPUB, 0xff},
		{regGPIOA, 0x00},
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()
	for _, step := range steps {
		if err := b.writeRegister(step.reg, step.value); err != nil {
			return err
		}
	}
	return nil
}

func (b *Board) Close() error {
	if b.offOnClose {
		b.mutex.Lock()
		if err := b.writeRegister(regGPIOA, 0x00); err != nil {
			log.Warn().Err(err).Msg("failed to turn off outputs during close")
		}
		b.mutex.Unlock()
	}
	if b.closer == nil {
		return nil
	}
	return b.closer.Close()
}

func (b *Board) CountOutputs() uint {
	return NumberOfOutputs
}

func (b *Board) ListOutputs() []outputs.Output {
	return b.outputs
}

func (b *Board) GetOutput(id uint) (outputs.Output, error) {
	if id >= NumberOfOutputs {
		return nil, fmt.Errorf("%w: %d (must be 0-%d)", ErrInvalidOutputID, id, NumberOfOutputs-1)
	}
	return b.outputs[id], nil
}

func (b *Board) String() string {
	return fmt.Sprintf("piface:%s", b.name)
}

func (b *Board) writeRegister(reg, value uint8) error {
	w := []byte{opWrite, reg, value}
	r := make([]byte, len(w))
	if err := b.conn.Tx(w, r); err != nil {
		return fmt.Errorf("%w 0x%02x: %v", ErrRegisterWrite, reg, err)
	}
	return nil
}

func (b *Board) readRegister(reg uint8) (uint8, error) {
	w := []byte{opRead, reg, 0x00}
	r := make([]byte, len(w))
	if err := b.conn.Tx(w, r); err != nil {
		return 0, fmt.Errorf("%w 0x%02x: %v", ErrRegisterRead, reg, err)
	}
	return r[2], nil
}

// setPin does a read-modify-write of the output latch.
func (b *Board) setPin(pin uint8, on bool) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	val, err := b.readRegister(regGPIOA)
	if err != nil {
		return err
	}
	if on {
		val |= 1 << pin
	} else {
		val &^= 1 << pin
	}
	return b.writeRegister(regGPIOA, val)
}

func (b *Board) pin(pin uint8) (bool, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	val, err := b.readRegister(regGPIOA)
	if err != nil {
		return false, err
	}
	return val&(1<<pin) != 0, nil
}

func (o *Output) TurnOn() error {
	log.Debug().Stringer("output", o).Msg("turn on")
	return o.board.setPin(o.pin, true)
}

func (o *Output) TurnOff() error {
	log.Debug().Stringer("output", o).Msg("turn off")
	return o.board.setPin(o.pin, false)
}

func (o *Output) GetState() (bool, error) {
	return o.board.pin(o.pin)
}

func (o *Output) String() string {
	return fmt.Sprintf("%s:%d", o.board, o.pin)
}
