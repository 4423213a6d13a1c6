// Package local implements the mailfs interfaces on top of the host
// filesystem. A Factory is rooted at a host directory and every Path is
// resolved below it.
package local

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/brettbedarf/mailfs"
	"github.com/brettbedarf/mailfs/internal/util"
	"golang.org/x/text/unicode/norm"
)

// Factory mints [File] handles for paths below root. The embedded Syntax
// decides how paths are validated and spelled natively; host I/O always goes
// through path/filepath so either syntax works on any OS.
type Factory struct {
	mailfs.Syntax
	root   string
	logger util.Logger
}

type Option func(*Factory)

// WithLogger overrides the component logger.
func WithLogger(l util.Logger) Option {
	return func(f *Factory) {
		f.logger = l
	}
}

// NewFactory creates a factory rooted at root using syntax.
func NewFactory(root string, syntax mailfs.Syntax, opts ...Option) *Factory {
	f := &Factory{
		Syntax: syntax,
		root:   filepath.Clean(root),
		logger: util.GetLogger("local." + syntax.Name),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewPosixFactory is NewFactory with [mailfs.PosixSyntax].
func NewPosixFactory(root string, opts ...Option) *Factory {
	return NewFactory(root, mailfs.PosixSyntax, opts...)
}

// NewWindowsFactory is NewFactory with [mailfs.WindowsSyntax].
func NewWindowsFactory(root string, opts ...Option) *Factory {
	return NewFactory(root, mailfs.WindowsSyntax, opts...)
}

// Root returns the host directory paths are resolved against.
func (f *Factory) Root() string {
	return f.root
}

// Create binds a handle to p. The backend is not touched.
func (f *Factory) Create(p mailfs.Path) mailfs.File {
	return &File{factory: f, path: p}
}

// IsValidPathComponent applies the syntax rules and also rejects the host
// separator, so a POSIX syntax factory on a Windows host cannot escape root.
func (f *Factory) IsValidPathComponent(comp string) bool {
	return f.Syntax.IsValidPathComponent(comp) && !strings.ContainsRune(comp, os.PathSeparator)
}

// StringToPath parses s with the syntax and then applies the factory's own
// component rules, so every path it returns passes IsValidPath.
func (f *Factory) StringToPath(s string) (mailfs.Path, error) {
	p, err := f.Syntax.StringToPath(s)
	if err != nil {
		return mailfs.Path{}, err
	}
	if !f.IsValidPath(p) {
		return mailfs.Path{}, mailfs.E("parse path", s, mailfs.InvalidPath, errors.New("component contains the host separator"))
	}
	return p, nil
}

func (f *Factory) IsValidPath(p mailfs.Path) bool {
	for i := 0; i < p.Len(); i++ {
		if !f.IsValidPathComponent(p.Component(i)) {
			return false
		}
	}
	return true
}

// HostPath returns the host filesystem path for p. Path components are NFC
// but host names are stored byte for byte, so each component is matched
// against the names actually present. Components below the first missing
// entry are joined as given.
func (f *Factory) HostPath(p mailfs.Path) string {
	host := f.root
	for i := 0; i < p.Len(); i++ {
		name, ok := hostName(host, p.Component(i))
		host = filepath.Join(host, name)
		if !ok {
			return filepath.Join(append([]string{host}, p.Components()[i+1:]...)...)
		}
	}
	return host
}

// hostName finds the entry of dir whose NFC form is comp. An exact match
// wins. ok is false when dir has no such entry.
func hostName(dir, comp string) (name string, ok bool) {
	if _, err := os.Lstat(filepath.Join(dir, comp)); err == nil {
		return comp, true
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return comp, false
	}
	for _, e := range entries {
		if norm.NFC.String(e.Name()) == comp {
			return e.Name(), true
		}
	}
	return comp, false
}

func (f *Factory) mkdir(p mailfs.Path) error {
	if err := os.Mkdir(f.HostPath(p), 0o755); err != nil {
		return mailfs.E("mkdir", f.PathToString(p), mailfs.Filesystem, err)
	}
	f.logger.Debug().Str("path", f.PathToString(p)).Msg("Created directory")
	return nil
}

var _ mailfs.FileSystemFactory = (*Factory)(nil)
