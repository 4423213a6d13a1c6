// Package memfs is a virtual, in-memory mailfs backend. It is meant for tests
// and scratch stores and applies the same semantics as the local backend
// unless noted otherwise.
package memfs

import (
	"errors"
	"io/fs"
	"sync"

	"github.com/brettbedarf/mailfs"
	"github.com/brettbedarf/mailfs/internal/util"
)

// FileSystem is both the in-memory store and its FileSystemFactory.
type FileSystem struct {
	mailfs.Syntax
	root   *entry
	logger util.Logger
	// mu serializes structural changes (create, rename, remove) so a rename
	// is never observed half done. Lookups go through xsync maps lock-free.
	mu sync.Mutex
}

type Option func(*FileSystem)

// WithSyntax replaces the default [mailfs.VirtualSyntax].
func WithSyntax(s mailfs.Syntax) Option {
	return func(fsys *FileSystem) {
		fsys.Syntax = s
	}
}

// WithLogger overrides the component logger.
func WithLogger(l util.Logger) Option {
	return func(fsys *FileSystem) {
		fsys.logger = l
	}
}

// New creates an empty store holding only the root directory.
func New(opts ...Option) *FileSystem {
	fsys := &FileSystem{
		Syntax: mailfs.VirtualSyntax,
		root:   newDirEntry(),
		logger: util.GetLogger("memfs"),
	}
	for _, opt := range opts {
		opt(fsys)
	}
	return fsys
}

// Create binds a handle to p. The store is not touched.
func (fsys *FileSystem) Create(p mailfs.Path) mailfs.File {
	return &File{fs: fsys, path: p}
}

// Chmod sets the permission bits of an existing entry. Only the owner read
// and write bits are consulted by CanRead, CanWrite and the mutating
// operations.
func (fsys *FileSystem) Chmod(p mailfs.Path, perm fs.FileMode) error {
	e, ok := fsys.lookup(p)
	if !ok {
		return mailfs.E("chmod", fsys.PathToString(p), mailfs.Filesystem, fs.ErrNotExist)
	}
	e.mu.Lock()
	e.perm = perm.Perm()
	e.mu.Unlock()
	return nil
}

func (fsys *FileSystem) lookup(p mailfs.Path) (*entry, bool) {
	cur := fsys.root
	for i := 0; i < p.Len(); i++ {
		if !cur.dir {
			return nil, false
		}
		child, ok := cur.children.Load(p.Component(i))
		if !ok {
			return nil, false
		}
		cur = child
	}
	return cur, true
}

// parentDir finds the directory that must hold p and checks it accepts new
// or removed entries. Caller holds fsys.mu.
func (fsys *FileSystem) parentDir(op string, p mailfs.Path) (*entry, error) {
	parentPath, ok := p.Parent()
	if !ok {
		return nil, mailfs.E(op, fsys.PathToString(p), mailfs.Filesystem, errors.New("root has no parent"))
	}
	parent, ok := fsys.lookup(parentPath)
	if !ok {
		return nil, mailfs.E(op, fsys.PathToString(p), mailfs.Filesystem, fs.ErrNotExist)
	}
	if !parent.dir {
		return nil, mailfs.E(op, fsys.PathToString(parentPath), mailfs.NotDirectory, nil)
	}
	if !parent.writable() {
		return nil, mailfs.E(op, fsys.PathToString(p), mailfs.Filesystem, fs.ErrPermission)
	}
	return parent, nil
}

// add links a new entry at p. Caller holds fsys.mu.
func (fsys *FileSystem) add(op string, p mailfs.Path, e *entry) error {
	parent, err := fsys.parentDir(op, p)
	if err != nil {
		return err
	}
	if _, loaded := parent.children.LoadOrStore(p.Last(), e); loaded {
		return mailfs.E(op, fsys.PathToString(p), mailfs.Filesystem, fs.ErrExist)
	}
	return nil
}

func (fsys *FileSystem) mkdir(p mailfs.Path) error {
	fsys.mu.Lock()
	defer fsys.mu.Unlock()
	if err := fsys.add("mkdir", p, newDirEntry()); err != nil {
		return err
	}
	fsys.logger.Debug().Str("path", fsys.PathToString(p)).Msg("Created directory")
	return nil
}

var _ mailfs.FileSystemFactory = (*FileSystem)(nil)
