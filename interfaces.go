package mailfs

import "io"

// File is a handle to a file or directory bound to one Path. Handles are cheap
// values minted by a [FileSystemFactory]; they hold no OS resource and cache
// nothing, so every query reflects the backend state at call time.
//
// Handles are not locked against each other: concurrent conflicting
// operations on the same path must be serialized by the caller.
type File interface {
	// CreateFile creates an empty file. The parent directory must exist.
	CreateFile() error

	// CreateDirectory creates the directory. With createAll every missing
	// ancestor is created first, from the root toward the leaf, stopping at
	// the first failure; ancestors created before it are kept.
	CreateDirectory(createAll bool) error

	// IsFile and IsDirectory are mutually exclusive and both false when the
	// entry does not exist.
	IsFile() bool
	IsDirectory() bool

	CanRead() bool
	CanWrite() bool

	// Length returns the size in bytes. Only meaningful when IsFile is true;
	// otherwise a Filesystem error is returned.
	Length() (int64, error)

	// FullPath returns the path this handle is bound to.
	FullPath() Path

	Exists() bool

	// Parent returns a fresh handle for the parent path, resolved through the
	// same factory, or nil for the root.
	Parent() File

	// Rename moves the entry to newPath. See the backend for whether the
	// handle follows the entry.
	Rename(newPath Path) error

	// Remove deletes a file or an empty directory. Removing a non-empty
	// directory fails with DirectoryNotEmpty and leaves it untouched.
	Remove() error

	FileWriter() (FileWriter, error)
	FileReader() (FileReader, error)

	// Files enumerates the immediate children of a directory.
	Files() (FileIterator, error)
}

// FileIterator is a forward-only, non-restartable enumeration of a
// directory's children. Not safe for concurrent use.
type FileIterator interface {
	// HasMoreElements reports whether NextElement will return a File.
	HasMoreElements() bool
	// NextElement returns the next child, or nil once exhausted.
	NextElement() File
}

// FileReader grants one scoped read session on a file.
type FileReader interface {
	// InputStream opens the content, passes it to fn and releases it when fn
	// returns, whatever the outcome. It may be called only once.
	InputStream(fn func(r io.Reader) error) error
}

// FileWriter grants one scoped write session on a file. The content is
// replaced; the file is created if missing.
type FileWriter interface {
	// OutputStream opens the content for writing, passes it to fn and
	// flushes and releases it when fn returns. It may be called only once.
	OutputStream(fn func(w io.Writer) error) error
}

// FileSystemFactory is the only way to obtain File handles. It is also the
// authority on the backend's native path syntax.
type FileSystemFactory interface {
	// Create binds a handle to p without touching the backend.
	Create(p Path) File

	StringToPath(s string) (Path, error)
	PathToString(p Path) string
	IsValidPathComponent(comp string) bool
	IsValidPath(p Path) bool
}
