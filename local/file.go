package local

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"slices"
	"strings"
	"syscall"

	"github.com/brettbedarf/mailfs"
	"golang.org/x/text/unicode/norm"
)

// File is a handle on one path below the factory root.
//
// Rename updates the handle in place so it keeps pointing at the moved entry.
type File struct {
	factory *Factory
	path    mailfs.Path
}

func (f *File) hostPath() string {
	return f.factory.HostPath(f.path)
}

func (f *File) display() string {
	return f.factory.PathToString(f.path)
}

func (f *File) fsErr(op string, err error) error {
	return mailfs.E(op, f.display(), mailfs.Filesystem, err)
}

// validate guards every backend access so "..", separators and the like can
// never escape the root.
func (f *File) validate(op string) error {
	if !f.factory.IsValidPath(f.path) {
		return mailfs.E(op, f.path.String(), mailfs.InvalidPath, nil)
	}
	return nil
}

func (f *File) stat() (fs.FileInfo, bool) {
	if !f.factory.IsValidPath(f.path) {
		return nil, false
	}
	info, err := os.Stat(f.hostPath())
	if err != nil {
		return nil, false
	}
	return info, true
}

// CreateFile creates an empty file. It fails if the entry already exists.
func (f *File) CreateFile() error {
	const op = "create file"
	if err := f.validate(op); err != nil {
		return err
	}
	fh, err := os.OpenFile(f.hostPath(), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return f.fsErr(op, err)
	}
	if err := fh.Close(); err != nil {
		return f.fsErr(op, err)
	}
	f.factory.logger.Debug().Str("path", f.display()).Msg("Created file")
	return nil
}

// CreateDirectory creates the directory. Without createAll it fails if the
// directory exists or its parent is missing; with createAll it behaves like
// `mkdir -p`.
func (f *File) CreateDirectory(createAll bool) error {
	if err := f.validate("mkdir"); err != nil {
		return err
	}
	if createAll {
		return mailfs.MkdirAll(f.factory, f.path, f.factory.mkdir)
	}
	return f.factory.mkdir(f.path)
}

func (f *File) IsFile() bool {
	info, ok := f.stat()
	return ok && info.Mode().IsRegular()
}

func (f *File) IsDirectory() bool {
	info, ok := f.stat()
	return ok && info.IsDir()
}

func (f *File) Exists() bool {
	_, ok := f.stat()
	return ok
}

func (f *File) CanRead() bool {
	return f.factory.IsValidPath(f.path) && canAccess(f.hostPath(), false)
}

func (f *File) CanWrite() bool {
	return f.factory.IsValidPath(f.path) && canAccess(f.hostPath(), true)
}

func (f *File) Length() (int64, error) {
	const op = "length"
	if err := f.validate(op); err != nil {
		return 0, err
	}
	info, err := os.Stat(f.hostPath())
	if err != nil {
		return 0, f.fsErr(op, err)
	}
	if !info.Mode().IsRegular() {
		return 0, f.fsErr(op, errors.New("not a regular file"))
	}
	return info.Size(), nil
}

func (f *File) FullPath() mailfs.Path {
	return f.path
}

func (f *File) Parent() mailfs.File {
	parent, ok := f.path.Parent()
	if !ok {
		return nil
	}
	return f.factory.Create(parent)
}

func (f *File) Rename(newPath mailfs.Path) error {
	const op = "rename"
	if err := f.validate(op); err != nil {
		return err
	}
	if newPath.IsRoot() || !f.factory.IsValidPath(newPath) {
		return mailfs.E(op, newPath.String(), mailfs.InvalidPath, nil)
	}
	if !f.Exists() {
		return f.fsErr(op, fs.ErrNotExist)
	}
	dst := f.factory.HostPath(newPath)
	if err := os.Rename(f.hostPath(), dst); err != nil {
		return f.fsErr(op, err)
	}
	f.factory.logger.Debug().
		Str("from", f.display()).
		Str("to", f.factory.PathToString(newPath)).
		Msg("Renamed")
	f.path = newPath
	return nil
}

// Remove deletes a file or an empty directory. Emptiness is checked first so
// a non-empty directory is never touched.
func (f *File) Remove() error {
	const op = "remove"
	if err := f.validate(op); err != nil {
		return err
	}
	info, err := os.Stat(f.hostPath())
	if err != nil {
		return f.fsErr(op, err)
	}
	if info.IsDir() {
		empty, err := isEmptyDir(f.hostPath())
		if err != nil {
			return f.fsErr(op, err)
		}
		if !empty {
			return mailfs.E(op, f.display(), mailfs.DirectoryNotEmpty, nil)
		}
	}
	if f.path.IsRoot() {
		return f.fsErr(op, errors.New("cannot remove root"))
	}
	if err := os.Remove(f.hostPath()); err != nil {
		// lost a race with a concurrent writer
		if errors.Is(err, syscall.ENOTEMPTY) || errors.Is(err, syscall.EEXIST) {
			return mailfs.E(op, f.display(), mailfs.DirectoryNotEmpty, err)
		}
		return f.fsErr(op, err)
	}
	f.factory.logger.Debug().Str("path", f.display()).Msg("Removed")
	return nil
}

func (f *File) FileWriter() (mailfs.FileWriter, error) {
	const op = "open writer"
	if err := f.validate(op); err != nil {
		return nil, err
	}
	if f.IsDirectory() {
		return nil, f.fsErr(op, errors.New("is a directory"))
	}
	return &writer{file: f}, nil
}

func (f *File) FileReader() (mailfs.FileReader, error) {
	const op = "open reader"
	if err := f.validate(op); err != nil {
		return nil, err
	}
	info, err := os.Stat(f.hostPath())
	if err != nil {
		return nil, f.fsErr(op, err)
	}
	if !info.Mode().IsRegular() {
		return nil, f.fsErr(op, errors.New("not a regular file"))
	}
	return &reader{file: f}, nil
}

// Files takes a snapshot of the directory in a single read; the directory
// handle is closed before Files returns. Entries are sorted by their NFC
// name. Names that are not valid components for the factory syntax are
// skipped.
func (f *File) Files() (mailfs.FileIterator, error) {
	const op = "list"
	if err := f.validate(op); err != nil {
		return nil, err
	}
	info, err := os.Stat(f.hostPath())
	if err != nil {
		return nil, f.fsErr(op, err)
	}
	if !info.IsDir() {
		return nil, mailfs.E(op, f.display(), mailfs.NotDirectory, nil)
	}
	entries, err := os.ReadDir(f.hostPath())
	if err != nil {
		return nil, f.fsErr(op, err)
	}

	// host names that differ only in normalization map to one path; the
	// entry HostPath resolves to is the one listed
	byName := make(map[string]string, len(entries))
	for _, e := range entries {
		name := e.Name()
		normalized := norm.NFC.String(name)
		if prev, ok := byName[normalized]; !ok || (prev != normalized && name == normalized) {
			byName[normalized] = name
		}
	}

	files := make([]mailfs.File, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		child := f.path.Append(name)
		if !f.factory.IsValidPathComponent(child.Last()) {
			f.factory.logger.Trace().Str("dir", f.display()).Str("name", name).Msg("Skipping unrepresentable entry")
			continue
		}
		if byName[child.Last()] != name {
			f.factory.logger.Debug().Str("dir", f.display()).Str("name", name).Msg("Skipping entry shadowed by its normalized name")
			continue
		}
		files = append(files, f.factory.Create(child))
	}
	slices.SortFunc(files, func(a, b mailfs.File) int {
		return strings.Compare(a.FullPath().Last(), b.FullPath().Last())
	})
	return mailfs.NewSnapshotIterator(files), nil
}

func isEmptyDir(hostPath string) (bool, error) {
	d, err := os.Open(hostPath)
	if err != nil {
		return false, err
	}
	defer d.Close()
	_, err = d.Readdirnames(1)
	if err == io.EOF {
		return true, nil
	}
	return false, err
}

var _ mailfs.File = (*File)(nil)
