package extractor

import (
	"fmt"

	"scanscore/internal/config"
)

// BackendFactory creates a Backend from a provider config.
type BackendFactory func(cfg *config.ProviderConfig) (Backend, error)

// registry of provider factories, populated explicitly via RegisterProvider
// (the provider packages import extractor, so init registration would cycle).
var providers = map[string]BackendFactory{}

// RegisterProvider registers a backend factory by name.
func RegisterProvider(name string, factory BackendFactory) {
	providers[name] = factory
}

// NewBackend creates a Backend from a provider config using the registered factory.
func NewBackend(cfg *config.ProviderConfig) (Backend, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

// NewChain builds the fallback chain from the OCR config: primary always,
// secondary when configured.
func NewChain(cfg *config.OCRConfig) (*Fallback, error) {
	backend, err := NewBackend(&cfg.Primary)
	if err != nil {
		return nil, fmt.Errorf("creating primary provider: %w", err)
	}
	backends := []Backend{backend}
	names := []string{cfg.Primary.Provider}

	if secondary := cfg.SecondaryConfig(); secondary != nil {
		b, err := NewBackend(secondary)
		if err != nil {
			return nil, fmt.Errorf("creating secondary provider: %w", err)
		}
		backends = append(backends, b)
		names = append(names, secondary.Provider)
	}

	return NewFallback(backends, names), nil
}
