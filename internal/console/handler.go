package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/larsks/ledremote/internal/cli"
	"github.com/larsks/ledremote/internal/protocol"
	"github.com/rs/zerolog/log"
)

const dialTimeout = 5 * time.Second

// Handler implements cli.CommandHandler for the console client
type Handler struct {
	stdin  io.Reader
	stdout io.Writer
}

// NewHandler creates a console handler attached to the terminal
func NewHandler() *Handler {
	return &Handler{
		stdin:  os.Stdin,
		stdout: os.Stdout,
	}
}

// Start connects to the server and runs an interactive session. A refused
// connection ends the program; there is no retry at startup.
func (h *Handler) Start(ctx context.Context, config cli.Configurable) error {
	cfg, ok := config.(*Config)
	if !ok {
		return fmt.Errorf("invalid config type for console")
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	order, err := protocol.ParseByteOrder(cfg.ByteOrder)
	if err != nil {
		return err
	}

	Banner(h.stdout, "START")

	dialer := net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", cfg.ServerAddress)
	if err != nil {
		fmt.Fprintf(h.stdout, "\nSTATUS: Failed to connect to %s\n", cfg.ServerAddress) //nolint:errcheck
		return fmt.Errorf("%w to %s: %w", ErrConnect, cfg.ServerAddress, err)
	}
	defer conn.Close() //nolint:errcheck

	stop := context.AfterFunc(ctx, func() {
		conn.Close() //nolint:errcheck
	})
	defer stop()

	log.Info().Str("server", cfg.ServerAddress).Msg("connected")
	fmt.Fprintf(h.stdout, "STATUS: Connected to %s\n\n", cfg.ServerAddress) //nolint:errcheck

	c := New(conn, h.stdin, h.stdout, Options{
		Names:       cfg.Outputs,
		ByteOrder:   order,
		MaxRetries:  cfg.MaxRetries,
		RetryDelay:  cfg.RetryDelay,
		StartDelay:  cfg.StartDelay,
		ClearScreen: cfg.ClearScreen,
	})

	err = c.Run(ctx)
	if cfg.ClearScreen {
		fmt.Fprint(h.stdout, clearSequence) //nolint:errcheck
	}
	fmt.Fprintln(h.stdout) //nolint:errcheck
	Banner(h.stdout, "END")

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
