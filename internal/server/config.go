package server

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/larsks/ledremote/internal/config"
	"github.com/larsks/ledremote/internal/drivers"
	"github.com/larsks/ledremote/internal/mqtt"
	"github.com/larsks/ledremote/internal/outputs/piface"
	"github.com/larsks/ledremote/internal/protocol"
	"github.com/spf13/pflag"
)

const DefaultPort = 3333

type (
	GPIOConfig struct {
		Chip string   `mapstructure:"chip"`
		Pins []string `mapstructure:"pins"`
	}

	PiFaceConfig struct {
		SPIDev string `mapstructure:"spidev"`
	}

	MQTTConfig struct {
		Server         string        `mapstructure:"server"`
		TopicPrefix    string        `mapstructure:"topic-prefix"`
		ClientID       string        `mapstructure:"client-id"`
		MaxRetries     int           `mapstructure:"max-retries"`
		RetryDelay     time.Duration `mapstructure:"retry-delay"`
		MaxRetryDelay  time.Duration `mapstructure:"max-retry-delay"`
		PublishTimeout time.Duration `mapstructure:"publish-timeout"`
	}

	HTTPConfig struct {
		ListenAddress string `mapstructure:"listen-address"`
	}

	DisplayConfig struct {
		Enabled bool `mapstructure:"enabled"`
		DryRun  bool `mapstructure:"dry-run"`
	}

	Config struct {
		ConfigFile    string        `mapstructure:"-"`
		ListenAddress string        `mapstructure:"listen-address"`
		ListenPort    int           `mapstructure:"listen-port"`
		ByteOrder     string        `mapstructure:"byte-order"`
		IdleTimeout   time.Duration `mapstructure:"idle-timeout"`
		Driver        string        `mapstructure:"driver"`
		Outputs       []string      `mapstructure:"outputs"`
		GPIO          GPIOConfig    `mapstructure:"gpio"`
		PiFace        PiFaceConfig  `mapstructure:"piface"`
		MQTT          MQTTConfig    `mapstructure:"mqtt"`
		HTTP          HTTPConfig    `mapstructure:"http"`
		Display       DisplayConfig `mapstructure:"display"`
	}
)

// NewConfig returns a configuration for three outputs on the dummy driver.
// The default pins match the reference board wiring.
func NewConfig() *Config {
	return &Config{
		ListenPort: DefaultPort,
		ByteOrder:  "native",
		Driver:     "dummy",
		Outputs:    []string{"red", "green", "blue"},
		GPIO: GPIOConfig{
			Chip: "gpiochip0",
			Pins: []string{"GPIO15", "GPIO18", "GPIO4"},
		},
		PiFace: PiFaceConfig{
			SPIDev: "/dev/spidev0.0",
		},
		MQTT: MQTTConfig{
			TopicPrefix:    "ledremote",
			ClientID:       "ledremote-server",
			RetryDelay:     time.Second,
			MaxRetryDelay:  30 * time.Second,
			PublishTimeout: 2 * time.Second,
		},
	}
}

func (c *Config) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.ConfigFile, "config", c.ConfigFile, "Config file to use")
	fs.StringVar(&c.ListenAddress, "listen-address", c.ListenAddress, "Listen address for the command channel")
	fs.IntVar(&c.ListenPort, "listen-port", c.ListenPort, "Listen port for the command channel")
	fs.StringVar(&c.ByteOrder, "byte-order", c.ByteOrder, "Wire byte order (native, little or big)")
	fs.DurationVar(&c.IdleTimeout, "idle-timeout", c.IdleTimeout, "Drop clients idle for this long (0 = never)")
	fs.StringVar(&c.Driver, "driver", c.Driver, fmt.Sprintf("Output driver %v", drivers.ListDrivers()))
	fs.StringSliceVar(&c.Outputs, "outputs", c.Outputs, "Output names in menu order")
	fs.StringVar(&c.GPIO.Chip, "gpio.chip", c.GPIO.Chip, "GPIO chip (gpio driver)")
	fs.StringSliceVar(&c.GPIO.Pins, "gpio.pins", c.GPIO.Pins, "GPIO pins, one per output (gpio and periph drivers)")
	fs.StringVar(&c.PiFace.SPIDev, "piface.spidev", c.PiFace.SPIDev, "SPI device (piface driver)")
	fs.StringVar(&c.MQTT.Server, "mqtt.server", c.MQTT.Server, "MQTT broker for status updates (mqtt://host:port)")
	fs.StringVar(&c.MQTT.TopicPrefix, "mqtt.topic-prefix", c.MQTT.TopicPrefix, "MQTT topic prefix")
	fs.StringVar(&c.MQTT.ClientID, "mqtt.client-id", c.MQTT.ClientID, "MQTT client ID")
	fs.IntVar(&c.MQTT.MaxRetries, "mqtt.max-retries", c.MQTT.MaxRetries, "Give up connecting to the broker after this many attempts (0 = never)")
	fs.DurationVar(&c.MQTT.RetryDelay, "mqtt.retry-delay", c.MQTT.RetryDelay, "Initial delay between broker connection attempts")
	fs.DurationVar(&c.MQTT.MaxRetryDelay, "mqtt.max-retry-delay", c.MQTT.MaxRetryDelay, "Maximum delay between broker connection attempts")
	fs.DurationVar(&c.MQTT.PublishTimeout, "mqtt.publish-timeout", c.MQTT.PublishTimeout, "How long a status publish may wait for the broker")
	fs.StringVar(&c.HTTP.ListenAddress, "http.listen-address", c.HTTP.ListenAddress, "Address for the HTTP status view (empty = disabled)")
	fs.BoolVar(&c.Display.Enabled, "display.enabled", c.Display.Enabled, "Show status on an SSD1306 display")
	fs.BoolVar(&c.Display.DryRun, "display.dry-run", c.Display.DryRun, "Use a fake display driver")
}

func (c *Config) LoadConfig() error {
	return c.LoadConfigWithFlagSet(pflag.CommandLine)
}

func (c *Config) LoadConfigWithFlagSet(fs *pflag.FlagSet) error {
	loader := config.NewConfigLoader()
	loader.SetConfigFile(c.ConfigFile)
	loader.SetStrictMode(true)
	loader.SetDefaults(map[string]any{
		"listen-address":       c.ListenAddress,
		"listen-port":          c.ListenPort,
		"byte-order":           c.ByteOrder,
		"idle-timeout":         c.IdleTimeout,
		"driver":               c.Driver,
		"outputs":              c.Outputs,
		"gpio.chip":            c.GPIO.Chip,
		"gpio.pins":            c.GPIO.Pins,
		"piface.spidev":        c.PiFace.SPIDev,
		"mqtt.server":          c.MQTT.Server,
		"mqtt.topic-prefix":    c.MQTT.TopicPrefix,
		"mqtt.client-id":       c.MQTT.ClientID,
		"mqtt.max-retries":     c.MQTT.MaxRetries,
		"mqtt.retry-delay":     c.MQTT.RetryDelay,
		"mqtt.max-retry-delay": c.MQTT.MaxRetryDelay,
		"mqtt.publish-timeout": c.MQTT.PublishTimeout,
		"http.listen-address":  c.HTTP.ListenAddress,
		"display.enabled":      c.Display.Enabled,
		"display.dry-run":      c.Display.DryRun,
	})
	return loader.LoadConfigWithFlagSet(c, fs)
}

// Address is the command channel listen address.
func (c *Config) Address() string {
	return net.JoinHostPort(c.ListenAddress, strconv.Itoa(c.ListenPort))
}

// DriverOptions returns the options map handed to the output driver.
func (c *Config) DriverOptions() map[string]any {
	switch c.Driver {
	case "dummy":
		return map[string]any{"output-count": len(c.Outputs)}
	case "periph":
		return map[string]any{"pins": c.GPIO.Pins}
	case "piface":
		return map[string]any{"spidev": c.PiFace.SPIDev}
	default:
		return map[string]any{"chip": c.GPIO.Chip, "pins": c.GPIO.Pins}
	}
}

func (c *Config) Validate() error {
	if c.ListenPort < 0 || c.ListenPort > 65535 {
		return fmt.Errorf("%w: listen-port %d out of range", ErrInvalidConfig, c.ListenPort)
	}
	if c.IdleTimeout < 0 {
		return fmt.Errorf("%w: idle-timeout must not be negative", ErrInvalidConfig)
	}
	if _, err := protocol.ParseByteOrder(c.ByteOrder); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := protocol.ValidateOutputCount(len(c.Outputs)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	seen := make(map[string]bool, len(c.Outputs))
	for _, name := range c.Outputs {
		if name == "" {
			return fmt.Errorf("%w: empty output name", ErrInvalidConfig)
		}
		if seen[name] {
			return fmt.Errorf("%w: duplicate output name %q", ErrInvalidConfig, name)
		}
		seen[name] = true
	}

	if err := drivers.ValidateConfig(c.Driver, c.DriverOptions()); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if (c.Driver == "gpio" || c.Driver == "periph") && len(c.GPIO.Pins) < len(c.Outputs) {
		return fmt.Errorf("%w: %d outputs but only %d pins", ErrInvalidConfig, len(c.Outputs), len(c.GPIO.Pins))
	}

	if c.Driver == "piface" && len(c.Outputs) > piface.NumberOfOutputs {
		return fmt.Errorf("%w: piface has only %d outputs", ErrInvalidConfig, piface.NumberOfOutputs)
	}

	if c.MQTT.Server != "" {
		if err := mqtt.ValidateServerURL(c.MQTT.Server); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		if c.MQTT.MaxRetries < 0 {
			return fmt.Errorf("%w: mqtt.max-retries must not be negative", ErrInvalidConfig)
		}
		if c.MQTT.RetryDelay < 0 || c.MQTT.MaxRetryDelay < 0 || c.MQTT.PublishTimeout < 0 {
			return fmt.Errorf("%w: mqtt delays must not be negative", ErrInvalidConfig)
		}
	}
	return nil
}

// MQTTClientConfig returns the broker connection settings. onConnect runs
// every time the broker accepts the connection.
func (c *Config) MQTTClientConfig(onConnect func(*mqtt.Client)) mqtt.Config {
	return mqtt.Config{
		ServerURL:         c.MQTT.Server,
		ClientID:          c.MQTT.ClientID,
		MaxRetries:        c.MQTT.MaxRetries,
		InitialRetryDelay: c.MQTT.RetryDelay,
		MaxRetryDelay:     c.MQTT.MaxRetryDelay,
		PublishTimeout:    c.MQTT.PublishTimeout,
		OnConnect:         onConnect,
	}
}
