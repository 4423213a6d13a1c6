package maildir

import (
	"errors"
	"io"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/brettbedarf/mailfs"
	"github.com/brettbedarf/mailfs/local"
	"github.com/brettbedarf/mailfs/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMaildir(t *testing.T, f mailfs.FileSystemFactory) *Maildir {
	t.Helper()
	m := New(f, mailfs.NewPath("Mail", "INBOX"), WithHostname("mx1.example.org"))
	m.now = func() time.Time { return time.Unix(1700000000, 0) }
	require.NoError(t, m.Init())
	return m
}

func readMessage(t *testing.T, f mailfs.File) string {
	t.Helper()
	r, err := f.FileReader()
	require.NoError(t, err)
	var b strings.Builder
	require.NoError(t, r.InputStream(func(r io.Reader) error {
		_, err := io.Copy(&b, r)
		return err
	}))
	return b.String()
}

func TestInit(t *testing.T) {
	t.Parallel()
	fsys := memfs.New()
	m := newMaildir(t, fsys)

	it, err := fsys.Create(m.Root()).Files()
	require.NoError(t, err)
	assert.Equal(t, []string{"cur", "new", "tmp"}, mailfs.Names(it))
	assert.NoError(t, m.Init(), "init is repeatable")
}

func TestDeliver(t *testing.T) {
	t.Parallel()
	factories := map[string]mailfs.FileSystemFactory{
		"memory": memfs.New(),
		"posix":  local.NewPosixFactory(t.TempDir()),
	}
	for name, f := range factories {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			m := newMaildir(t, f)
			body := "From: a@example.org\r\nSubject: hi\r\n\r\nhello\r\n"

			msg, err := m.Deliver(strings.NewReader(body))

			require.NoError(t, err)
			assert.Regexp(t, regexp.MustCompile(`^1700000000\.[0-9a-f-]{36}\.mx1\.example\.org$`), msg)
			names, err := m.List(NewDir)
			require.NoError(t, err)
			assert.Equal(t, []string{msg}, names)
			tmp, err := m.List(Tmp)
			require.NoError(t, err)
			assert.Empty(t, tmp)
			assert.Equal(t, body, readMessage(t, m.Message(NewDir, msg)))
		})
	}
}

func TestDeliverNamesAreUnique(t *testing.T) {
	t.Parallel()
	m := newMaildir(t, memfs.New())

	a, err := m.Deliver(strings.NewReader("a"))
	require.NoError(t, err)
	b, err := m.Deliver(strings.NewReader("b"))
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	names, err := m.List(NewDir)
	require.NoError(t, err)
	assert.Len(t, names, 2)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestDeliverFailureLeavesNothing(t *testing.T) {
	t.Parallel()
	m := newMaildir(t, memfs.New())

	_, err := m.Deliver(failingReader{})

	require.ErrorContains(t, err, "connection reset")
	for _, sub := range []Subdir{Tmp, NewDir} {
		names, err := m.List(sub)
		require.NoError(t, err)
		assert.Empty(t, names, string(sub))
	}
}

func TestDeliverWithoutInit(t *testing.T) {
	t.Parallel()
	m := New(memfs.New(), mailfs.NewPath("nowhere"), WithHostname("h"))

	_, err := m.Deliver(strings.NewReader("x"))

	assert.ErrorIs(t, err, mailfs.ErrFilesystem)
}

func TestAccept(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		syntax mailfs.Syntax
		sep    string
	}{
		{"posix", mailfs.PosixSyntax, ":"},
		{"windows", mailfs.WindowsSyntax, "!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := newMaildir(t, memfs.New(memfs.WithSyntax(tt.syntax)))
			msg, err := m.Deliver(strings.NewReader("x"))
			require.NoError(t, err)

			cur, err := m.Accept(msg)

			require.NoError(t, err)
			assert.Equal(t, msg+tt.sep+"2,", cur)
			names, err := m.List(Cur)
			require.NoError(t, err)
			assert.Equal(t, []string{cur}, names)
			assert.False(t, m.Message(NewDir, msg).Exists())
		})
	}
}

func TestHostnameSanitized(t *testing.T) {
	t.Parallel()
	m := New(memfs.New(), mailfs.Root(), WithHostname("host/with:odd"))
	assert.Equal(t, `host\057with\072odd`, m.hostname)

	win := New(memfs.New(memfs.WithSyntax(mailfs.WindowsSyntax)), mailfs.Root(), WithHostname("a:b"))
	assert.Equal(t, "a072b", win.hostname)
}
