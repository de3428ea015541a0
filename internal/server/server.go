// Package server implements the device side of the remote-control
// protocol: a TCP listener that serves one client at a time.
package server

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/larsks/ledremote/internal/controller"
	"github.com/larsks/ledremote/internal/protocol"
	"github.com/rs/zerolog/log"
)

// Options configures a Server.
type Options struct {
	Address     string
	ByteOrder   binary.ByteOrder
	IdleTimeout time.Duration
}

// Server accepts command connections and applies them to a controller.
type Server struct {
	controller  *controller.Controller
	address     string
	order       binary.ByteOrder
	idleTimeout time.Duration
}

// New creates a server for ctl.
func New(ctl *controller.Controller, opts Options) *Server {
	return &Server{
		controller:  ctl,
		address:     opts.Address,
		order:       opts.ByteOrder,
		idleTimeout: opts.IdleTimeout,
	}
}

// ListenAndServe listens on the configured address and serves until ctx is
// canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.address)
	if err != nil {
		return fmt.Errorf("%w on %s: %v", ErrListen, s.address, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections from ln one at a time. A second client waits
// in the listen queue until the current one disconnects. Serve closes ln
// and returns nil when ctx is canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer ln.Close() //nolint:errcheck
	stop := context.AfterFunc(ctx, func() {
		ln.Close() //nolint:errcheck
	})
	defer stop()

	log.Info().Str("address", ln.Addr().String()).Msg("listening for commands")

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				log.Info().Msg("server stopped")
				return nil
			}
			return fmt.Errorf("%w: %v", ErrAccept, err)
		}
		s.handleConn(ctx, conn)
	}
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close() //nolint:errcheck
	stop := context.AfterFunc(ctx, func() {
		conn.Close() //nolint:errcheck
	})
	defer stop()

	logger := log.With().Str("remote", conn.RemoteAddr().String()).Logger()
	logger.Info().Msg("client connected")

	// Every client starts from a known state.
	s.controller.Reset()

	wire := protocol.NewConn(conn, s.order)
	for {
		if s.idleTimeout > 0 {
			if err := conn.SetReadDeadline(time.Now().Add(s.idleTimeout)); err != nil {
				logger.Warn().Err(err).Msg("failed to set read deadline")
				return
			}
		}

		raw, err := wire.ReadCommand()
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				logger.Info().Msg("client disconnected")
			case ctx.Err() != nil:
				logger.Info().Msg("closing connection on shutdown")
			default:
				logger.Warn().Err(err).Msg("dropping connection")
			}
			return
		}

		status := s.controller.ApplyRaw(raw)
		logger.Debug().Int32("command", raw).Stringer("status", status).Msg("replying")

		if err := wire.WriteStatus(status); err != nil {
			logger.Warn().Err(err).Msg("dropping connection")
			return
		}
	}
}
