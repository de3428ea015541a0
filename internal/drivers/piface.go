package drivers

import (
	"fmt"

	"github.com/larsks/ledremote/internal/outputs"
	"github.com/larsks/ledremote/internal/outputs/piface"
)

const defaultSPIDev = "/dev/spidev0.0"

// PiFaceConfig represents piface driver configuration
type PiFaceConfig struct {
	SPIDev     string `mapstructure:"spidev"`
	OffOnClose *bool  `mapstructure:"off-on-close"`
}

// PiFaceFactory implements Factory for the PiFace Digital board
type PiFaceFactory struct{}

func (f *PiFaceFactory) CreateCollection(options map[string]any) (outputs.Collection, error) {
	cfg, err := f.parseConfig(options)
	if err != nil {
		return nil, err
	}
	board, err := piface.Open(cfg.SPIDev, cfg.OffOnClose == nil || *cfg.OffOnClose)
	if err != nil {
		return nil, fmt.Errorf("failed to open piface: %w", err)
	}
	return board, nil
}

func (f *PiFaceFactory) ValidateConfig(options map[string]any) error {
	_, err := f.parseConfig(options)
	return err
}

func (f *PiFaceFactory) parseConfig(options map[string]any) (*PiFaceConfig, error) {
	cfg := &PiFaceConfig{}
	if err := decodeOptions(options, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse piface config: %w", err)
	}
	if cfg.SPIDev == "" {
		cfg.SPIDev = defaultSPIDev
	}
	return cfg, nil
}

func init() {
	Register("piface", &PiFaceFactory{}) //nolint:errcheck
}
