package mailfs

import (
	"iter"
	"slices"
)

// MkdirAll creates p and its missing ancestors, walking from the root toward
// the leaf. Existing directories along the way are skipped; an existing
// non-directory fails with NotDirectory. mkdir is called once per missing
// directory and the walk stops at its first error.
//
// Backends use it to implement CreateDirectory(true).
func MkdirAll(f FileSystemFactory, p Path, mkdir func(Path) error) error {
	for i := 1; i <= p.Len(); i++ {
		step := p.Truncate(i)
		node := f.Create(step)
		if node.IsDirectory() {
			continue
		}
		if node.Exists() {
			return E("mkdir", f.PathToString(step), NotDirectory, nil)
		}
		if err := mkdir(step); err != nil {
			return err
		}
	}
	return nil
}

// SnapshotIterator iterates over a fixed list of handles captured when the
// iterator was built. Later changes to the directory are not reflected.
type SnapshotIterator struct {
	files []File
	pos   int
}

// NewSnapshotIterator takes ownership of files.
func NewSnapshotIterator(files []File) *SnapshotIterator {
	return &SnapshotIterator{files: files}
}

func (it *SnapshotIterator) HasMoreElements() bool {
	return it.pos < len(it.files)
}

func (it *SnapshotIterator) NextElement() File {
	if !it.HasMoreElements() {
		return nil
	}
	f := it.files[it.pos]
	it.files[it.pos] = nil
	it.pos++
	return f
}

// All drains it as a range-over-func sequence.
func All(it FileIterator) iter.Seq[File] {
	return func(yield func(File) bool) {
		for it.HasMoreElements() {
			f := it.NextElement()
			if f == nil || !yield(f) {
				return
			}
		}
	}
}

// Names lists the last component of each remaining element, sorted.
func Names(it FileIterator) []string {
	var names []string
	for f := range All(it) {
		names = append(names, f.FullPath().Last())
	}
	slices.Sort(names)
	return names
}
