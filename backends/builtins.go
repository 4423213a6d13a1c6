package backends

import (
	"fmt"
	"os"

	"github.com/brettbedarf/mailfs"
	"github.com/brettbedarf/mailfs/config"
	"github.com/brettbedarf/mailfs/local"
	"github.com/brettbedarf/mailfs/memfs"
)

// RegisterBuiltins registers all built-in backends by default
// or only the specific ones if kinds are provided
func RegisterBuiltins(r *Registry, kinds ...string) {
	if len(kinds) == 0 {
		kinds = []string{config.PosixBackend, config.WindowsBackend, config.MemoryBackend}
	}

	for _, kind := range kinds {
		switch kind {
		case config.PosixBackend:
			r.Register(kind, ProviderFunc(func(cfg *config.Config) (mailfs.FileSystemFactory, error) {
				root, err := prepareRoot(cfg)
				if err != nil {
					return nil, err
				}
				return local.NewPosixFactory(root), nil
			}))
		case config.WindowsBackend:
			r.Register(kind, ProviderFunc(func(cfg *config.Config) (mailfs.FileSystemFactory, error) {
				root, err := prepareRoot(cfg)
				if err != nil {
					return nil, err
				}
				return local.NewWindowsFactory(root), nil
			}))
		case config.MemoryBackend:
			r.Register(kind, ProviderFunc(func(*config.Config) (mailfs.FileSystemFactory, error) {
				return memfs.New(), nil
			}))
		}
	}
}

// prepareRoot checks that the configured root is a directory, creating it
// first when cfg.CreateRoot is set.
func prepareRoot(cfg *config.Config) (string, error) {
	if cfg.Root == "" {
		return "", fmt.Errorf("backend %q: root not configured", cfg.Backend)
	}
	if cfg.CreateRoot {
		if err := os.MkdirAll(cfg.Root, 0o755); err != nil {
			return "", fmt.Errorf("backend %q: failed to create root: %w", cfg.Backend, err)
		}
	}
	info, err := os.Stat(cfg.Root)
	if err != nil {
		return "", fmt.Errorf("backend %q: %w", cfg.Backend, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("backend %q: root %s is not a directory", cfg.Backend, cfg.Root)
	}
	return cfg.Root, nil
}
