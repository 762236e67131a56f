package config

import "github.com/chefstack/ai-proxy/pkg/domain"

// Runtime is the hot-reloadable slice of the configuration: the feature
// allowlist and the CORS origin allowlist. Handlers read a fresh snapshot
// per request so a reload never affects an in-flight request.
type Runtime struct {
	Features       []string
	FeatureSet     domain.FeatureSet
	AllowedOrigins []string
}

// RuntimeProvider yields the current runtime snapshot.
type RuntimeProvider interface {
	Current() Runtime
}

// NewRuntime derives a snapshot from a full configuration.
func NewRuntime(cfg *Config) Runtime {
	features := append([]string(nil), cfg.Features...)
	return Runtime{
		Features:       features,
		FeatureSet:     domain.NewFeatureSet(features),
		AllowedOrigins: append([]string(nil), cfg.CORS.AllowedOrigins...),
	}
}

// StaticProvider serves a fixed snapshot. Used when no config file is
// watched, and in tests.
type StaticProvider struct {
	runtime Runtime
}

// NewStaticProvider wraps a configuration in a non-reloading provider.
func NewStaticProvider(cfg *Config) *StaticProvider {
	return &StaticProvider{runtime: NewRuntime(cfg)}
}

// Current returns the fixed snapshot.
func (p *StaticProvider) Current() Runtime {
	return p.runtime
}
