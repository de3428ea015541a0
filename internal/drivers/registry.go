// Package drivers creates output collections by driver name.
package drivers

import (
	"fmt"
	"sort"
	"sync"

	"github.com/larsks/ledremote/internal/outputs"
	"github.com/mitchellh/mapstructure"
)

// Factory creates an output collection from driver options
type Factory interface {
	CreateCollection(options map[string]any) (outputs.Collection, error)
	ValidateConfig(options map[string]any) error
}

// Registry manages driver factories
type Registry struct {
	drivers map[string]Factory
	mu      sync.RWMutex
}

// NewRegistry creates a new driver registry
func NewRegistry() *Registry {
	return &Registry{
		drivers: make(map[string]Factory),
	}
}

// Register adds a driver factory to the registry
func (r *Registry) Register(name string, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.drivers[name]; exists {
		return fmt.Errorf("%w: %s", ErrDriverExists, name)
	}

	r.drivers[name] = factory
	return nil
}

func (r *Registry) factory(name string) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, exists := r.drivers[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, name)
	}
	return factory, nil
}

// Create creates an output collection using the named driver
func (r *Registry) Create(name string, options map[string]any) (outputs.Collection, error) {
	factory, err := r.factory(name)
	if err != nil {
		return nil, err
	}
	return factory.CreateCollection(options)
}

// ValidateConfig validates options for the named driver
func (r *Registry) ValidateConfig(name string, options map[string]any) error {
	factory, err := r.factory(name)
	if err != nil {
		return err
	}
	return factory.ValidateConfig(options)
}

// ListDrivers returns the sorted names of all registered drivers
func (r *Registry) ListDrivers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.drivers))
	for name := range r.drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// decodeOptions fills a typed driver config from an options map.
func decodeOptions(options map[string]any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(options); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	return nil
}

var defaultRegistry = NewRegistry()

// Register adds a driver factory to the default registry
func Register(name string, factory Factory) error {
	return defaultRegistry.Register(name, factory)
}

// Create creates an output collection using the default registry
func Create(name string, options map[string]any) (outputs.Collection, error) {
	return defaultRegistry.Create(name, options)
}

// ValidateConfig validates driver options using the default registry
func ValidateConfig(name string, options map[string]any) error {
	return defaultRegistry.ValidateConfig(name, options)
}

// ListDrivers returns the names of all drivers in the default registry
func ListDrivers() []string {
	return defaultRegistry.ListDrivers()
}
