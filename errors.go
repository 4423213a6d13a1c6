package mailfs

import (
	"errors"
	"strings"
)

// Kind classifies an [Error] so callers can decide between retry, user
// notification or abort.
type Kind uint8

// Kinds of errors. NotDirectory and DirectoryNotEmpty are refinements of
// Filesystem and match it in [IsKind] and errors.Is.
const (
	Filesystem        Kind = iota // Backend reported I/O or permission failure.
	InvalidPath                   // String or Path rejected by the backend syntax.
	NotDirectory                  // Enumeration requested on a non-directory.
	DirectoryNotEmpty             // Removal requested on a non-empty directory.
)

func (k Kind) String() string {
	switch k {
	case Filesystem:
		return "filesystem error"
	case InvalidPath:
		return "invalid path"
	case NotDirectory:
		return "not a directory"
	case DirectoryNotEmpty:
		return "directory not empty"
	}
	return "unknown error kind"
}

// is reports whether k is target or a refinement of it.
func (k Kind) is(target Kind) bool {
	if k == target {
		return true
	}
	return target == Filesystem && (k == NotDirectory || k == DirectoryNotEmpty)
}

// Sentinels for use with errors.Is.
var (
	ErrFilesystem        error = &Error{Kind: Filesystem}
	ErrInvalidPath       error = &Error{Kind: InvalidPath}
	ErrNotDirectory      error = &Error{Kind: NotDirectory}
	ErrDirectoryNotEmpty error = &Error{Kind: DirectoryNotEmpty}
)

// Error is returned by every fallible operation of this package and its
// backends.
type Error struct {
	Op   string // operation, e.g. "remove"
	Path string // native form of the path involved, if any
	Kind Kind
	Err  error // underlying cause, if any
}

// E builds an *Error.
func E(op string, path string, kind Kind, err error) error {
	return &Error{Op: op, Path: path, Kind: kind, Err: err}
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
	}
	if e.Path != "" {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(e.Path)
	}
	if b.Len() > 0 {
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches sentinel errors by kind, honouring sub-kinds.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Op != "" || t.Path != "" || t.Err != nil {
		return false
	}
	return e.Kind.is(t.Kind)
}

// IsKind reports whether any *Error in err's chain is of kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind.is(k)
}

// ErrStreamUsed is the cause reported when a reader or writer is asked for a
// second stream. Request a fresh one from the File instead.
var ErrStreamUsed = errors.New("stream session already used")
