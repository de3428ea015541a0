package server

import (
	"context"
	"fmt"

	"github.com/larsks/ledremote/internal/api"
	"github.com/larsks/ledremote/internal/cli"
	"github.com/larsks/ledremote/internal/controller"
	"github.com/larsks/ledremote/internal/display"
	"github.com/larsks/ledremote/internal/drivers"
	"github.com/larsks/ledremote/internal/mqtt"
	"github.com/larsks/ledremote/internal/protocol"
	"github.com/rs/zerolog/log"
)

// Handler implements cli.CommandHandler for the controller server
type Handler struct{}

// NewHandler creates a new server command handler
func NewHandler() *Handler {
	return &Handler{}
}

// Start builds the output driver, controller and observers described by
// the configuration and serves commands until ctx is canceled.
func (h *Handler) Start(ctx context.Context, config cli.Configurable) error {
	cfg, ok := config.(*Config)
	if !ok {
		return fmt.Errorf("invalid config type for server")
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	order, err := protocol.ParseByteOrder(cfg.ByteOrder)
	if err != nil {
		return err
	}

	collection, err := drivers.Create(cfg.Driver, cfg.DriverOptions())
	if err != nil {
		return fmt.Errorf("failed to create %s driver: %w", cfg.Driver, err)
	}
	if err := collection.Init(); err != nil {
		return fmt.Errorf("failed to initialize driver: %w", err)
	}
	defer collection.Close() //nolint:errcheck

	ctl, err := controller.New(collection, cfg.Outputs)
	if err != nil {
		return err
	}

	if cfg.MQTT.Server != "" {
		// Changes made while the broker is unreachable are not published,
		// so every (re)connect republishes the current state.
		client, err := mqtt.NewClient(cfg.MQTTClientConfig(func(c *mqtt.Client) {
			mqtt.NewStatusPublisher(c, cfg.MQTT.TopicPrefix).StatusChanged(ctl.Snapshot())
		}))
		if err != nil {
			return fmt.Errorf("failed to create MQTT client: %w", err)
		}
		defer client.Disconnect(250)
		ctl.AddObserver(mqtt.NewStatusPublisher(client, cfg.MQTT.TopicPrefix))
	}

	if cfg.Display.Enabled {
		screen, err := display.Open(cfg.Display.DryRun)
		if err != nil {
			return err
		}
		panel, err := display.NewPanel(screen)
		if err != nil {
			return err
		}
		defer panel.Close() //nolint:errcheck
		ctl.AddObserver(panel)
	}

	if cfg.HTTP.ListenAddress != "" {
		status := api.NewServer(cfg.HTTP.ListenAddress, ctl, nil)
		go func() {
			if err := status.ListenAndServe(ctx); err != nil {
				log.Error().Err(err).Msg("status API failed")
			}
		}()
	}

	log.Info().
		Str("driver", collection.String()).
		Strs("outputs", cfg.Outputs).
		Str("byte-order", cfg.ByteOrder).
		Msg("starting server")

	srv := New(ctl, Options{
		Address:     cfg.Address(),
		ByteOrder:   order,
		IdleTimeout: cfg.IdleTimeout,
	})
	return srv.ListenAndServe(ctx)
}
