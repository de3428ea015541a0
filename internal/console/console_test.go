package console

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/larsks/ledremote/internal/controller"
	"github.com/larsks/ledremote/internal/outputs"
	"github.com/larsks/ledremote/internal/protocol"
	"github.com/larsks/ledremote/internal/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFlaky = errors.New("flaky")

// flakyConn fails the first failWrites writes and the first failReads
// reads, and serves the remaining reads from a prepared buffer.
type flakyConn struct {
	mutex      sync.Mutex
	failWrites int
	failReads  int
	writes     int
	reads      int
	replies    *bytes.Reader
	sent       bytes.Buffer
}

func newFlakyConn(failWrites int, replies ...int32) *flakyConn {
	var buf bytes.Buffer
	for _, r := range replies {
		binary.Write(&buf, binary.NativeEndian, r) //nolint:errcheck
	}
	return &flakyConn{failWrites: failWrites, replies: bytes.NewReader(buf.Bytes())}
}

func (f *flakyConn) Write(p []byte) (int, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.writes++
	if f.writes <= f.failWrites {
		return 0, errFlaky
	}
	return f.sent.Write(p)
}

func (f *flakyConn) Read(p []byte) (int, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.reads++
	if f.reads <= f.failReads {
		return 0, errFlaky
	}
	return f.replies.Read(p)
}

func (f *flakyConn) commands() []int32 {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	var cmds []int32
	r := bytes.NewReader(f.sent.Bytes())
	for {
		var v int32
		if err := binary.Read(r, binary.NativeEndian, &v); err != nil {
			return cmds
		}
		cmds = append(cmds, v)
	}
}

func newTestConsole(conn io.ReadWriter, input string, out io.Writer, maxRetries int) *Console {
	return New(conn, strings.NewReader(input), out, Options{
		Names:      names,
		MaxRetries: maxRetries,
	})
}

func TestSessionAgainstServer(t *testing.T) {
	dc := outputs.NewDummyCollection(3)
	ctl, err := controller.New(dc, names)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go server.New(ctl, server.Options{}).Serve(ctx, ln) //nolint:errcheck

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	var out bytes.Buffer
	c := newTestConsole(conn, "1\n1\n2\nq\n", &out, 3)
	require.NoError(t, c.Run(ctx))

	assert.Equal(t, protocol.Status(1|8|16), ctl.Status())

	text := out.String()
	assert.Equal(t, 4, strings.Count(text, "Chosen option: "))
	assert.Contains(t, text, "1. Turn OFF - RED")
	assert.Contains(t, text, "2. Turn OFF - GREEN")
}

func TestInvalidSelectionSendsNothing(t *testing.T) {
	conn := newFlakyConn(0, 2|4|16)

	var out bytes.Buffer
	c := newTestConsole(conn, "9\nabc\n\n0\n1\nquit\n", &out, 3)
	require.NoError(t, c.Run(context.Background()))

	assert.Equal(t, []int32{1}, conn.commands())
	assert.Equal(t, 4, strings.Count(out.String(), "Invalid option"))
	assert.Contains(t, out.String(), "1. Turn OFF - RED")
}

func TestFirstMenuDoesNotWaitForServer(t *testing.T) {
	conn := newFlakyConn(0)

	var out bytes.Buffer
	c := newTestConsole(conn, "-1\n", &out, 3)
	require.NoError(t, c.Run(context.Background()))

	assert.Equal(t, 0, conn.reads)
	assert.Contains(t, out.String(), "1. Turn ON  - RED")
}

func TestEndOfInput(t *testing.T) {
	conn := newFlakyConn(0, 2|4|16)

	c := newTestConsole(conn, "1\n", io.Discard, 3)
	assert.NoError(t, c.Run(context.Background()))
}

func TestSendRetry(t *testing.T) {
	conn := newFlakyConn(2, 2|4|16)

	var out bytes.Buffer
	c := newTestConsole(conn, "1\nq\n", &out, 3)
	require.NoError(t, c.Run(context.Background()))

	assert.Equal(t, 3, conn.writes)
	assert.Equal(t, []int32{1}, conn.commands())
	assert.Equal(t, 2, strings.Count(out.String(), "Send failed, retrying..."))
}

func TestSendRetriesExhausted(t *testing.T) {
	conn := newFlakyConn(10)

	c := newTestConsole(conn, "1\nq\n", io.Discard, 2)
	err := c.Run(context.Background())

	assert.ErrorIs(t, err, ErrRetriesExhausted)
	assert.ErrorIs(t, err, protocol.ErrSend)
	assert.Equal(t, 3, conn.writes)
}

func TestReceiveRetry(t *testing.T) {
	conn := newFlakyConn(0, 2|4|16)
	conn.failReads = 2

	var out bytes.Buffer
	c := newTestConsole(conn, "1\nq\n", &out, 3)
	require.NoError(t, c.Run(context.Background()))

	assert.Equal(t, 3, conn.reads)
	assert.Equal(t, 2, strings.Count(out.String(), "Receive failed, retrying..."))
	assert.Contains(t, out.String(), "1. Turn OFF - RED", "status from the retried receive should drive the menu")
}

func TestReceiveRetriesExhausted(t *testing.T) {
	conn := newFlakyConn(0, 2|4|16)
	conn.failReads = 10

	c := newTestConsole(conn, "1\nq\n", io.Discard, 2)
	err := c.Run(context.Background())

	assert.ErrorIs(t, err, ErrRetriesExhausted)
	assert.ErrorIs(t, err, protocol.ErrReceive)
	assert.ErrorIs(t, err, errFlaky)
	assert.Equal(t, 3, conn.reads)
}

func TestServerClosedIsNotRetried(t *testing.T) {
	conn := newFlakyConn(0)

	var out bytes.Buffer
	c := newTestConsole(conn, "1\nq\n", &out, 3)
	err := c.Run(context.Background())

	assert.ErrorIs(t, err, ErrServerClosed)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 1, conn.reads)
	assert.NotContains(t, out.String(), "retrying")
}

func TestCancelWhileWaitingForInput(t *testing.T) {
	conn := newFlakyConn(0)
	in, w := io.Pipe()
	defer w.Close()

	c := New(conn, in, io.Discard, Options{Names: names})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
}

func TestClearScreenAndCountdown(t *testing.T) {
	var out bytes.Buffer
	c := New(newFlakyConn(0), strings.NewReader("q\n"), &out, Options{
		Names:       names,
		ClearScreen: true,
	})
	require.NoError(t, c.Run(context.Background()))
	assert.True(t, strings.HasPrefix(out.String(), clearSequence))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out.Reset()
	c = New(newFlakyConn(0), strings.NewReader("q\n"), &out, Options{
		Names:      names,
		StartDelay: 5 * time.Second,
	})
	assert.ErrorIs(t, c.Run(ctx), context.Canceled)
	assert.Equal(t, "Starting in 5s\n", out.String())
}

func TestBanner(t *testing.T) {
	var out bytes.Buffer
	Banner(&out, "START")
	assert.Equal(t, "============== START ==============\n", out.String())
}
