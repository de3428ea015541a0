package drivers

import (
	"fmt"

	"github.com/larsks/ledremote/internal/outputs"
)

const defaultDummyOutputs = 3

// DummyConfig represents dummy driver configuration
type DummyConfig struct {
	OutputCount int `mapstructure:"output-count"`
}

// DummyFactory implements Factory for the hardware-free driver
type DummyFactory struct{}

func (f *DummyFactory) CreateCollection(options map[string]any) (outputs.Collection, error) {
	cfg, err := f.parseConfig(options)
	if err != nil {
		return nil, err
	}

	count := cfg.OutputCount
	if count == 0 {
		count = defaultDummyOutputs
	}
	return outputs.NewDummyCollection(uint(count)), nil
}

func (f *DummyFactory) ValidateConfig(options map[string]any) error {
	_, err := f.parseConfig(options)
	return err
}

func (f *DummyFactory) parseConfig(options map[string]any) (*DummyConfig, error) {
	cfg := &DummyConfig{}
	if err := decodeOptions(options, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse dummy config: %w", err)
	}
	if cfg.OutputCount < 0 {
		return nil, fmt.Errorf("%w: output-count must be non-negative", ErrInvalidOptions)
	}
	return cfg, nil
}

func init() {
	Register("dummy", &DummyFactory{}) //nolint:errcheck
}
