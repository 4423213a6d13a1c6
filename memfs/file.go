package memfs

import (
	"bytes"
	"errors"
	"io"
	"io/fs"

	"github.com/brettbedarf/mailfs"
	"github.com/brettbedarf/mailfs/internal/util"
)

// File is a handle on one path of a [FileSystem].
//
// Rename updates the handle in place. Unlike the local backend, renaming onto
// an existing entry fails instead of replacing it.
type File struct {
	fs   *FileSystem
	path mailfs.Path
}

func (f *File) display() string {
	return f.fs.PathToString(f.path)
}

func (f *File) fsErr(op string, err error) error {
	return mailfs.E(op, f.display(), mailfs.Filesystem, err)
}

func (f *File) validate(op string) error {
	if !f.fs.IsValidPath(f.path) {
		return mailfs.E(op, f.path.String(), mailfs.InvalidPath, nil)
	}
	return nil
}

func (f *File) entry() (*entry, bool) {
	if !f.fs.IsValidPath(f.path) {
		return nil, false
	}
	return f.fs.lookup(f.path)
}

// CreateFile creates an empty file. It fails if the entry already exists.
func (f *File) CreateFile() error {
	const op = "create file"
	if err := f.validate(op); err != nil {
		return err
	}
	f.fs.mu.Lock()
	defer f.fs.mu.Unlock()
	if err := f.fs.add(op, f.path, newFileEntry()); err != nil {
		return err
	}
	f.fs.logger.Debug().Str("path", f.display()).Msg("Created file")
	return nil
}

func (f *File) CreateDirectory(createAll bool) error {
	if err := f.validate("mkdir"); err != nil {
		return err
	}
	if createAll {
		return mailfs.MkdirAll(f.fs, f.path, f.fs.mkdir)
	}
	return f.fs.mkdir(f.path)
}

func (f *File) IsFile() bool {
	e, ok := f.entry()
	return ok && !e.dir
}

func (f *File) IsDirectory() bool {
	e, ok := f.entry()
	return ok && e.dir
}

func (f *File) Exists() bool {
	_, ok := f.entry()
	return ok
}

func (f *File) CanRead() bool {
	e, ok := f.entry()
	return ok && e.readable()
}

func (f *File) CanWrite() bool {
	e, ok := f.entry()
	return ok && e.writable()
}

func (f *File) Length() (int64, error) {
	const op = "length"
	if err := f.validate(op); err != nil {
		return 0, err
	}
	e, ok := f.entry()
	if !ok {
		return 0, f.fsErr(op, fs.ErrNotExist)
	}
	if e.dir {
		return 0, f.fsErr(op, errors.New("not a regular file"))
	}
	return e.size(), nil
}

func (f *File) FullPath() mailfs.Path {
	return f.path
}

func (f *File) Parent() mailfs.File {
	parent, ok := f.path.Parent()
	if !ok {
		return nil
	}
	return f.fs.Create(parent)
}

func (f *File) Rename(newPath mailfs.Path) error {
	const op = "rename"
	if err := f.validate(op); err != nil {
		return err
	}
	if newPath.IsRoot() || !f.fs.IsValidPath(newPath) {
		return mailfs.E(op, newPath.String(), mailfs.InvalidPath, nil)
	}

	f.fs.mu.Lock()
	defer f.fs.mu.Unlock()

	if f.path.IsRoot() {
		return f.fsErr(op, errors.New("cannot rename root"))
	}
	e, ok := f.fs.lookup(f.path)
	if !ok {
		return f.fsErr(op, fs.ErrNotExist)
	}
	if e.dir && newPath.HasPrefix(f.path) {
		return f.fsErr(op, errors.New("destination inside source"))
	}
	srcParent, err := f.fs.parentDir(op, f.path)
	if err != nil {
		return err
	}
	if err := f.fs.add(op, newPath, e); err != nil {
		return err
	}
	srcParent.children.Delete(f.path.Last())

	f.fs.logger.Debug().
		Str("from", f.display()).
		Str("to", f.fs.PathToString(newPath)).
		Msg("Renamed")
	f.path = newPath
	return nil
}

func (f *File) Remove() error {
	const op = "remove"
	if err := f.validate(op); err != nil {
		return err
	}

	f.fs.mu.Lock()
	defer f.fs.mu.Unlock()

	e, ok := f.fs.lookup(f.path)
	if !ok {
		return f.fsErr(op, fs.ErrNotExist)
	}
	if e.dir && e.children.Size() > 0 {
		return mailfs.E(op, f.display(), mailfs.DirectoryNotEmpty, nil)
	}
	parent, err := f.fs.parentDir(op, f.path)
	if err != nil {
		return err
	}
	parent.children.Delete(f.path.Last())
	f.fs.logger.Debug().Str("path", f.display()).Msg("Removed")
	return nil
}

func (f *File) FileWriter() (mailfs.FileWriter, error) {
	const op = "open writer"
	if err := f.validate(op); err != nil {
		return nil, err
	}
	if e, ok := f.entry(); ok {
		if e.dir {
			return nil, f.fsErr(op, errors.New("is a directory"))
		}
		if !e.writable() {
			return nil, f.fsErr(op, fs.ErrPermission)
		}
	}
	return &writer{file: f}, nil
}

func (f *File) FileReader() (mailfs.FileReader, error) {
	const op = "open reader"
	if err := f.validate(op); err != nil {
		return nil, err
	}
	e, ok := f.entry()
	if !ok {
		return nil, f.fsErr(op, fs.ErrNotExist)
	}
	if e.dir {
		return nil, f.fsErr(op, errors.New("not a regular file"))
	}
	if !e.readable() {
		return nil, f.fsErr(op, fs.ErrPermission)
	}
	return &reader{file: f}, nil
}

// Files snapshots the child names at call time, sorted.
func (f *File) Files() (mailfs.FileIterator, error) {
	const op = "list"
	if err := f.validate(op); err != nil {
		return nil, err
	}
	e, ok := f.entry()
	if !ok {
		return nil, f.fsErr(op, fs.ErrNotExist)
	}
	if !e.dir {
		return nil, mailfs.E(op, f.display(), mailfs.NotDirectory, nil)
	}
	if !e.readable() {
		return nil, f.fsErr(op, fs.ErrPermission)
	}

	names := e.childNames()
	files := make([]mailfs.File, 0, len(names))
	for _, name := range names {
		files = append(files, f.fs.Create(f.path.Append(name)))
	}
	return mailfs.NewSnapshotIterator(files), nil
}

type reader struct {
	file *File
	used bool
}

// InputStream reads from a copy of the content taken when the stream opens.
func (r *reader) InputStream(fn func(r io.Reader) error) error {
	const op = "read"
	if r.used {
		return r.file.fsErr(op, mailfs.ErrStreamUsed)
	}
	r.used = true

	e, ok := r.file.entry()
	if !ok || e.dir {
		return r.file.fsErr(op, fs.ErrNotExist)
	}
	return fn(bytes.NewReader(e.snapshot()))
}

type writer struct {
	file *File
	used bool
}

// OutputStream creates the file if needed, truncates it and appends every
// write directly to the stored content.
func (w *writer) OutputStream(fn func(w io.Writer) error) (err error) {
	const op = "write"
	if w.used {
		return w.file.fsErr(op, mailfs.ErrStreamUsed)
	}
	w.used = true

	e, err := w.file.openForWrite(op)
	if err != nil {
		return err
	}
	scope := &util.Scope{}
	defer func() {
		if cerr := scope.Close(); cerr != nil && err == nil {
			err = w.file.fsErr(op, cerr)
		}
	}()
	scope.AddClose(func() error {
		w.file.fs.logger.Trace().Str("path", w.file.display()).Int64("size", e.size()).Msg("Write session closed")
		return nil
	})

	e.truncate()
	return fn(e)
}

func (f *File) openForWrite(op string) (*entry, error) {
	f.fs.mu.Lock()
	defer f.fs.mu.Unlock()
	if e, ok := f.fs.lookup(f.path); ok {
		if e.dir {
			return nil, f.fsErr(op, errors.New("is a directory"))
		}
		if !e.writable() {
			return nil, f.fsErr(op, fs.ErrPermission)
		}
		return e, nil
	}
	e := newFileEntry()
	if err := f.fs.add(op, f.path, e); err != nil {
		return nil, err
	}
	return e, nil
}

var _ mailfs.File = (*File)(nil)
