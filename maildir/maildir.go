// Package maildir stores messages in the Maildir layout on top of any mailfs
// backend. Messages are written under tmp and moved into new once complete,
// so readers of new never see a partial message.
package maildir

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/brettbedarf/mailfs"
	"github.com/brettbedarf/mailfs/internal/util"
	"github.com/google/uuid"
)

// Subdir is one of the three Maildir directories.
type Subdir string

const (
	Tmp Subdir = "tmp"
	NewDir Subdir = "new"
	Cur Subdir = "cur"
)

// Maildir is rooted at a directory of a FileSystemFactory.
type Maildir struct {
	factory  mailfs.FileSystemFactory
	root     mailfs.Path
	hostname string
	now      func() time.Time
	logger   util.Logger
}

type Option func(*Maildir)

// WithHostname overrides the host part of delivered names.
func WithHostname(h string) Option {
	return func(m *Maildir) {
		m.hostname = h
	}
}

// WithLogger overrides the component logger.
func WithLogger(l util.Logger) Option {
	return func(m *Maildir) {
		m.logger = l
	}
}

func New(factory mailfs.FileSystemFactory, root mailfs.Path, opts ...Option) *Maildir {
	m := &Maildir{
		factory: factory,
		root:    root,
		now:     time.Now,
		logger:  util.GetLogger("maildir"),
	}
	if h, err := os.Hostname(); err == nil {
		m.hostname = h
	} else {
		m.hostname = "localhost"
	}
	for _, opt := range opts {
		opt(m)
	}
	m.hostname = m.sanitize(m.hostname)
	return m
}

// Root returns the maildir's own directory.
func (m *Maildir) Root() mailfs.Path {
	return m.root
}

// Init creates the root and its tmp, new and cur directories. Existing
// directories are kept.
func (m *Maildir) Init() error {
	for _, sub := range []Subdir{Tmp, NewDir, Cur} {
		if err := m.factory.Create(m.root.Append(string(sub))).CreateDirectory(true); err != nil {
			return fmt.Errorf("init maildir: %w", err)
		}
	}
	m.logger.Debug().Str("root", m.factory.PathToString(m.root)).Msg("Maildir initialized")
	return nil
}

// Message returns the handle of a message in sub.
func (m *Maildir) Message(sub Subdir, name string) mailfs.File {
	return m.factory.Create(m.root.Append(string(sub), name))
}

// Deliver copies r into a new message and returns its unique name. The
// message appears in new only once it has been fully written.
func (m *Maildir) Deliver(r io.Reader) (string, error) {
	name := m.uniqueName()
	tmp := m.Message(Tmp, name)

	w, err := tmp.FileWriter()
	if err != nil {
		return "", fmt.Errorf("deliver: %w", err)
	}
	var size int64
	err = w.OutputStream(func(w io.Writer) error {
		n, err := io.Copy(w, r)
		size = n
		return err
	})
	if err != nil {
		if tmp.Exists() {
			if rmErr := tmp.Remove(); rmErr != nil {
				m.logger.Warn().Err(rmErr).Str("name", name).Msg("Failed to clean up partial delivery")
			}
		}
		return "", fmt.Errorf("deliver: %w", err)
	}

	if err := tmp.Rename(m.root.Append(string(NewDir), name)); err != nil {
		return "", fmt.Errorf("deliver: %w", err)
	}
	m.logger.Debug().Str("name", name).Int64("size", size).Msg("Delivered message")
	return name, nil
}

// Accept moves a message from new to cur, marking it as seen by the client,
// and returns its name in cur.
func (m *Maildir) Accept(name string) (string, error) {
	curName := name + m.infoSeparator() + "2,"
	msg := m.Message(NewDir, name)
	if err := msg.Rename(m.root.Append(string(Cur), curName)); err != nil {
		return "", fmt.Errorf("accept %s: %w", name, err)
	}
	return curName, nil
}

// List returns the sorted message names in sub.
func (m *Maildir) List(sub Subdir) ([]string, error) {
	it, err := m.factory.Create(m.root.Append(string(sub))).Files()
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", sub, err)
	}
	return mailfs.Names(it), nil
}

// uniqueName follows the "time.unique.host" convention with a random UUID as
// the unique part.
func (m *Maildir) uniqueName() string {
	return strconv.FormatInt(m.now().Unix(), 10) + "." + uuid.NewString() + "." + m.hostname
}

// infoSeparator is ':' unless the backend syntax reserves it.
func (m *Maildir) infoSeparator() string {
	if m.factory.IsValidPathComponent("a:2,") {
		return ":"
	}
	return "!"
}

// sanitize escapes characters a maildir name must not contain, then drops
// whatever the backend still rejects.
func (m *Maildir) sanitize(host string) string {
	host = strings.NewReplacer("/", `\057`, ":", `\072`).Replace(host)
	var b strings.Builder
	for _, r := range host {
		if m.factory.IsValidPathComponent("x" + string(r)) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "localhost"
	}
	return b.String()
}
