package memfs

import (
	"io/fs"
	"slices"
	"sync"

	"github.com/puzpuzpuz/xsync/v4"
)

// entry is one node of the in-memory tree. Directories own their children
// by name; there is no back pointer to the parent, which is always found
// again by walking from the root.
type entry struct {
	dir      bool
	children *xsync.Map[string, *entry] // nil for files
	mu       sync.RWMutex               // protects the fields below
	data     []byte
	perm     fs.FileMode
}

func newDirEntry() *entry {
	return &entry{
		dir:      true,
		children: xsync.NewMap[string, *entry](),
		perm:     0o755,
	}
}

func newFileEntry() *entry {
	return &entry{perm: 0o644}
}

func (e *entry) readable() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.perm&0o400 != 0
}

func (e *entry) writable() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.perm&0o200 != 0
}

func (e *entry) size() int64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return int64(len(e.data))
}

// snapshot returns a copy of the content so readers never observe later
// writes.
func (e *entry) snapshot() []byte {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.data)
}

func (e *entry) truncate() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.data = e.data[:0]
}

// Write appends to the content; it makes *entry an io.Writer for
// FileWriter sessions.
func (e *entry) Write(p []byte) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.data = append(e.data, p...)
	return len(p), nil
}

// childNames returns the sorted names of a directory's children.
func (e *entry) childNames() []string {
	names := make([]string, 0, e.children.Size())
	e.children.Range(func(name string, _ *entry) bool {
		names = append(names, name)
		return true
	})
	slices.Sort(names)
	return names
}
