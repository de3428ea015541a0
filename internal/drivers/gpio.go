package drivers

import (
	"fmt"

	"github.com/larsks/ledremote/internal/gpio"
	"github.com/larsks/ledremote/internal/outputs"
	"github.com/larsks/ledremote/internal/outputs/gpiocdev"
	"github.com/larsks/ledremote/internal/outputs/periphgpio"
)

const defaultChip = "gpiochip0"

// GPIOConfig represents configuration shared by the gpio and periph drivers
type GPIOConfig struct {
	Chip       string   `mapstructure:"chip"`
	Pins       []string `mapstructure:"pins"`
	OffOnClose *bool    `mapstructure:"off-on-close"`
}

func parseGPIOConfig(options map[string]any) (*GPIOConfig, error) {
	cfg := &GPIOConfig{}
	if err := decodeOptions(options, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse gpio config: %w", err)
	}
	if len(cfg.Pins) == 0 {
		return nil, ErrNoPins
	}
	if _, err := gpio.ParsePins(cfg.Pins); err != nil {
		return nil, err
	}
	if cfg.Chip == "" {
		cfg.Chip = defaultChip
	}
	return cfg, nil
}

func (cfg *GPIOConfig) offOnClose() bool {
	return cfg.OffOnClose == nil || *cfg.OffOnClose
}

// GPIOFactory implements Factory for the GPIO character device
type GPIOFactory struct{}

func (f *GPIOFactory) CreateCollection(options map[string]any) (outputs.Collection, error) {
	cfg, err := parseGPIOConfig(options)
	if err != nil {
		return nil, err
	}
	c, err := gpiocdev.NewCollection(cfg.Chip, cfg.offOnClose(), cfg.Pins)
	if err != nil {
		return nil, fmt.Errorf("failed to create gpio driver: %w", err)
	}
	return c, nil
}

func (f *GPIOFactory) ValidateConfig(options map[string]any) error {
	_, err := parseGPIOConfig(options)
	return err
}

// PeriphFactory implements Factory for periph.io pins
type PeriphFactory struct{}

func (f *PeriphFactory) CreateCollection(options map[string]any) (outputs.Collection, error) {
	cfg, err := parseGPIOConfig(options)
	if err != nil {
		return nil, err
	}
	c, err := periphgpio.NewCollection(cfg.offOnClose(), cfg.Pins)
	if err != nil {
		return nil, fmt.Errorf("failed to create periph driver: %w", err)
	}
	return c, nil
}

func (f *PeriphFactory) ValidateConfig(options map[string]any) error {
	_, err := parseGPIOConfig(options)
	return err
}

func init() {
	Register("gpio", &GPIOFactory{})     //nolint:errcheck
	Register("periph", &PeriphFactory{}) //nolint:errcheck
}
