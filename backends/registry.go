// Package backends maps backend kind names to constructors so the active
// FileSystemFactory can be chosen from configuration.
package backends

import (
	"fmt"

	"github.com/brettbedarf/mailfs"
	"github.com/brettbedarf/mailfs/config"
	"github.com/brettbedarf/mailfs/internal/util"
	"github.com/puzpuzpuz/xsync/v4"
)

// Provider builds a factory for one backend kind.
type Provider interface {
	NewFactory(cfg *config.Config) (mailfs.FileSystemFactory, error)
}

// ProviderFunc adapts a plain function to [Provider].
type ProviderFunc func(cfg *config.Config) (mailfs.FileSystemFactory, error)

func (f ProviderFunc) NewFactory(cfg *config.Config) (mailfs.FileSystemFactory, error) {
	return f(cfg)
}

// Registry is safe for concurrent use.
type Registry struct {
	providers *xsync.Map[string, Provider]
	logger    util.Logger
}

func NewRegistry() *Registry {
	return &Registry{
		providers: xsync.NewMap[string, Provider](),
		logger:    util.GetLogger("backends"),
	}
}

// Register ties a provider to a backend kind. The first registration for a
// kind wins; later ones are ignored.
func (r *Registry) Register(kind string, p Provider) {
	if _, loaded := r.providers.LoadOrStore(kind, p); loaded {
		r.logger.Warn().Str("kind", kind).Msg("Backend already registered; ignoring")
		return
	}
	r.logger.Trace().Str("kind", kind).Msg("Registered backend")
}

// Provider returns the provider registered for kind.
func (r *Registry) Provider(kind string) (Provider, error) {
	p, ok := r.providers.Load(kind)
	if !ok {
		return nil, fmt.Errorf("no backend registered for %q", kind)
	}
	return p, nil
}

// Kinds lists the registered backend kinds in no particular order.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, r.providers.Size())
	r.providers.Range(func(kind string, _ Provider) bool {
		kinds = append(kinds, kind)
		return true
	})
	return kinds
}

// NewFactory builds the factory for cfg.Backend.
func (r *Registry) NewFactory(cfg *config.Config) (mailfs.FileSystemFactory, error) {
	p, err := r.Provider(cfg.Backend)
	if err != nil {
		return nil, err
	}
	f, err := p.NewFactory(cfg)
	if err != nil {
		return nil, err
	}
	r.logger.Debug().Str("kind", cfg.Backend).Str("root", cfg.Root).Msg("Backend ready")
	return f, nil
}
