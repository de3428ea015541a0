package console

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/larsks/ledremote/internal/config"
	"github.com/larsks/ledremote/internal/protocol"
	"github.com/spf13/pflag"
)

const (
	defaultServerAddress = "localhost:3333"
	serverAddressEnv     = "LEDREMOTE_SERVER"
)

// Config holds the console configuration
type Config struct {
	ConfigFile    string        `mapstructure:"-"`
	ServerAddress string        `mapstructure:"server-address"`
	ByteOrder     string        `mapstructure:"byte-order"`
	Outputs       []string      `mapstructure:"outputs"`
	MaxRetries    int           `mapstructure:"max-retries"`
	RetryDelay    time.Duration `mapstructure:"retry-delay"`
	StartDelay    time.Duration `mapstructure:"start-delay"`
	ClearScreen   bool          `mapstructure:"clear-screen"`
}

func getDefaultServerAddress() string {
	if addr := os.Getenv(serverAddressEnv); addr != "" {
		return addr
	}
	return defaultServerAddress
}

func getDefaultConfigFile() string {
	return filepath.Join(xdg.ConfigHome, "ledremote", "console.toml")
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		ServerAddress: getDefaultServerAddress(),
		ByteOrder:     "native",
		Outputs:       []string{"red", "green", "blue"},
		MaxRetries:    3,
		RetryDelay:    time.Second,
	}
}

// AddFlags adds command-line flags for all configuration options
func (c *Config) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.ConfigFile, "config", getDefaultConfigFile(), "Config file to use")
	fs.StringVarP(&c.ServerAddress, "server-address", "s", c.ServerAddress, "Server address (host:port)")
	fs.StringVar(&c.ByteOrder, "byte-order", c.ByteOrder, "Wire byte order (native, little or big)")
	fs.StringSliceVar(&c.Outputs, "outputs", c.Outputs, "Output names in menu order")
	fs.IntVar(&c.MaxRetries, "max-retries", c.MaxRetries, "Retries for a failed send or receive")
	fs.DurationVar(&c.RetryDelay, "retry-delay", c.RetryDelay, "Pause before retrying")
	fs.DurationVar(&c.StartDelay, "start-delay", c.StartDelay, "Countdown before the first menu")
	fs.BoolVarP(&c.ClearScreen, "clear-screen", "c", c.ClearScreen, "Clear the screen before each menu")
}

func (c *Config) LoadConfig() error {
	return c.LoadConfigWithFlagSet(pflag.CommandLine)
}

// LoadConfigWithFlagSet loads configuration with the usual precedence. The
// default config file is optional; an explicitly named one must exist.
func (c *Config) LoadConfigWithFlagSet(fs *pflag.FlagSet) error {
	configFile, err := config.ResolveConfigFile(c.ConfigFile, getDefaultConfigFile())
	if err != nil {
		return err
	}

	loader := config.NewConfigLoader()
	loader.SetConfigFile(configFile)
	loader.SetStrictMode(true)
	loader.SetDefaults(map[string]any{
		"server-address": c.ServerAddress,
		"byte-order":     c.ByteOrder,
		"outputs":        c.Outputs,
		"max-retries":    c.MaxRetries,
		"retry-delay":    c.RetryDelay,
		"start-delay":    c.StartDelay,
		"clear-screen":   c.ClearScreen,
	})
	return loader.LoadConfigWithFlagSet(c, fs)
}

func (c *Config) Validate() error {
	if c.ServerAddress == "" {
		return fmt.Errorf("%w: server-address is required", ErrInvalidConfig)
	}
	if _, err := protocol.ParseByteOrder(c.ByteOrder); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := protocol.ValidateOutputCount(len(c.Outputs)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("%w: max-retries must not be negative", ErrInvalidConfig)
	}
	if c.RetryDelay < 0 || c.StartDelay < 0 {
		return fmt.Errorf("%w: delays must not be negative", ErrInvalidConfig)
	}
	return nil
}
