// Package console implements the interactive client: it renders a menu
// from the last status word, sends the chosen command and waits for the
// reply.
package console

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/larsks/ledremote/internal/protocol"
	"github.com/rs/zerolog/log"
)

const clearSequence = "\033[H\033[2J"

// Options configures a Console.
type Options struct {
	Names       []string
	ByteOrder   binary.ByteOrder
	MaxRetries  int
	RetryDelay  time.Duration
	StartDelay  time.Duration
	ClearScreen bool
}

// Console drives one session over an established connection.
type Console struct {
	wire        *protocol.Conn
	names       []string
	in          io.Reader
	out         io.Writer
	maxRetries  int
	retryDelay  time.Duration
	startDelay  time.Duration
	clearScreen bool
}

// New creates a console talking to the server over conn, reading choices
// from in and writing the menu to out.
func New(conn io.ReadWriter, in io.Reader, out io.Writer, opts Options) *Console {
	return &Console{
		wire:        protocol.NewConn(conn, opts.ByteOrder),
		names:       opts.Names,
		in:          in,
		out:         out,
		maxRetries:  opts.MaxRetries,
		retryDelay:  opts.RetryDelay,
		startDelay:  opts.StartDelay,
		clearScreen: opts.ClearScreen,
	}
}

// Banner prints a title line in the session header format.
func Banner(w io.Writer, title string) {
	fmt.Fprintf(w, "============== %s ==============\n", title) //nolint:errcheck
}

// Run shows menus and sends commands until the user quits, input ends or
// the connection fails. The first menu is drawn without waiting for the
// server; every later one waits for the reply to the previous command.
func (c *Console) Run(ctx context.Context) error {
	if err := c.countdown(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := readLines(ctx, c.in)
	status := protocol.StatusUnknown
	awaitingReply := false

	for {
		if awaitingReply {
			var err error
			if status, err = c.receive(ctx); err != nil {
				return err
			}
			awaitingReply = false
		}

		c.showMenu(status)

		var line string
		select {
		case <-ctx.Done():
			return ctx.Err()
		case l, ok := <-lines:
			if !ok {
				return nil
			}
			line = strings.TrimSpace(l)
		}

		if isQuit(line) {
			return nil
		}

		cmd, err := c.parseChoice(line, status)
		if err != nil {
			log.Debug().Err(err).Str("input", line).Msg("ignoring selection")
			c.printf("Invalid option: %q\n", line)
			continue
		}

		if err := c.send(ctx, cmd); err != nil {
			return err
		}
		awaitingReply = true
	}
}

func (c *Console) parseChoice(line string, status protocol.Status) (protocol.Command, error) {
	index, err := strconv.Atoi(line)
	if err != nil {
		return protocol.Command{}, fmt.Errorf("%w: %s", ErrNoCommand, line)
	}
	return MapChoice(index, status, len(c.names))
}

func (c *Console) showMenu(status protocol.Status) {
	if c.clearScreen {
		c.printf(clearSequence)
	}
	c.printf("\n")
	for _, item := range RenderMenu(status, c.names) {
		c.printf("%s\n", item)
	}
	c.printf("\nChosen option: ")
}

func (c *Console) send(ctx context.Context, cmd protocol.Command) error {
	log.Debug().Stringer("command", cmd).Msg("sending")
	return c.retry(ctx, "Send", func() error {
		return c.wire.WriteCommand(cmd)
	})
}

func (c *Console) receive(ctx context.Context) (protocol.Status, error) {
	var status protocol.Status
	err := c.retry(ctx, "Receive", func() error {
		var err error
		status, err = c.wire.ReadStatus()
		return err
	})
	if errors.Is(err, io.EOF) {
		return status, fmt.Errorf("%w: %w", ErrServerClosed, err)
	}
	if err == nil {
		log.Debug().Stringer("status", status).Msg("received")
	}
	return status, err
}

// retry runs op, repeating it after a pause up to maxRetries more times.
// io.EOF is final.
func (c *Console) retry(ctx context.Context, what string, op func() error) error {
	for attempt := 0; ; attempt++ {
		err := op()
		if err == nil || errors.Is(err, io.EOF) {
			return err
		}
		if attempt >= c.maxRetries {
			return fmt.Errorf("%w: %s failed after %d retries: %w", ErrRetriesExhausted, strings.ToLower(what), c.maxRetries, err)
		}

		log.Warn().Err(err).Int("attempt", attempt+1).Msgf("%s failed", strings.ToLower(what))
		c.printf("\n%s failed, retrying...\n", what)

		if err := sleep(ctx, c.retryDelay); err != nil {
			return err
		}
	}
}

func (c *Console) countdown(ctx context.Context) error {
	for i := int(c.startDelay / time.Second); i > 0; i-- {
		c.printf("Starting in %ds\n", i)
		if err := sleep(ctx, time.Second); err != nil {
			return err
		}
	}
	return nil
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...) //nolint:errcheck
}

func isQuit(line string) bool {
	switch strings.ToLower(line) {
	case "q", "quit", "-1":
		return true
	}
	return false
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// readLines delivers input lines on a channel so that a blocked terminal
// read does not hold up cancellation.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}
