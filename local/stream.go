package local

import (
	"bufio"
	"io"
	"os"

	"github.com/brettbedarf/mailfs"
	"github.com/brettbedarf/mailfs/internal/util"
)

// reader and writer do not lock the file: a reader and a writer may be
// active on the same file at once and see whatever the OS gives them.
type reader struct {
	file *File
	used bool
}

func (r *reader) InputStream(fn func(r io.Reader) error) (err error) {
	const op = "read"
	if r.used {
		return r.file.fsErr(op, mailfs.ErrStreamUsed)
	}
	r.used = true

	scope := &util.Scope{}
	defer func() {
		if cerr := scope.Close(); cerr != nil && err == nil {
			err = r.file.fsErr(op, cerr)
		}
	}()

	fh, err := os.Open(r.file.hostPath())
	if err != nil {
		return r.file.fsErr(op, err)
	}
	scope.AddClose(fh.Close)

	return fn(bufio.NewReader(fh))
}

type writer struct {
	file *File
	used bool
}

func (w *writer) OutputStream(fn func(w io.Writer) error) (err error) {
	const op = "write"
	if w.used {
		return w.file.fsErr(op, mailfs.ErrStreamUsed)
	}
	w.used = true

	scope := &util.Scope{}
	defer func() {
		if cerr := scope.Close(); cerr != nil && err == nil {
			err = w.file.fsErr(op, cerr)
		}
	}()

	fh, err := os.OpenFile(w.file.hostPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return w.file.fsErr(op, err)
	}
	scope.AddClose(fh.Close)

	bw := bufio.NewWriter(fh)
	if err := fn(bw); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return w.file.fsErr(op, err)
	}
	return nil
}
