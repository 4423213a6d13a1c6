// Package conformance holds the behaviour every mailfs backend must share,
// written as a reusable test suite.
package conformance

import (
	"errors"
	"io"
	"io/fs"
	"strings"
	"testing"

	"github.com/brettbedarf/mailfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// NewFactory returns an empty backend rooted for one test.
type NewFactory func(t *testing.T) mailfs.FileSystemFactory

// Run executes the suite. Each subtest gets its own factory.
func Run(t *testing.T, newFactory NewFactory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, f mailfs.FileSystemFactory)
	}{
		{"EndToEndMailbox", testEndToEnd},
		{"CreateDirectoryAll", testCreateDirectoryAll},
		{"CreateDirectoryAllThroughFile", testCreateDirectoryAllThroughFile},
		{"CreateDirectorySingle", testCreateDirectorySingle},
		{"CreateFile", testCreateFile},
		{"KindExclusivity", testKindExclusivity},
		{"RemoveNonEmpty", testRemoveNonEmpty},
		{"Remove", testRemove},
		{"RemoveRoot", testRemoveRoot},
		{"IteratorCompleteness", testIteratorCompleteness},
		{"IteratorSnapshot", testIteratorSnapshot},
		{"FilesErrors", testFilesErrors},
		{"Parent", testParent},
		{"Rename", testRename},
		{"ReadWrite", testReadWrite},
		{"StreamsAreSingleUse", testStreamsSingleUse},
		{"StreamErrors", testStreamErrors},
		{"Length", testLength},
		{"InvalidHandle", testInvalidHandle},
		{"RoundTrip", testRoundTrip},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tt.fn(t, newFactory(t))
		})
	}
}

func mustPath(t *testing.T, f mailfs.FileSystemFactory, comps ...string) mailfs.Path {
	t.Helper()
	p := mailfs.NewPath(comps...)
	require.True(t, f.IsValidPath(p), "test path %v must be valid", p)
	return p
}

func mkdirAll(t *testing.T, f mailfs.FileSystemFactory, comps ...string) mailfs.File {
	t.Helper()
	node := f.Create(mustPath(t, f, comps...))
	require.NoError(t, node.CreateDirectory(true))
	return node
}

func writeFile(t *testing.T, node mailfs.File, content string) {
	t.Helper()
	w, err := node.FileWriter()
	require.NoError(t, err)
	require.NoError(t, w.OutputStream(func(w io.Writer) error {
		_, err := io.WriteString(w, content)
		return err
	}))
}

func readFile(t *testing.T, node mailfs.File) string {
	t.Helper()
	r, err := node.FileReader()
	require.NoError(t, err)
	var got []byte
	require.NoError(t, r.InputStream(func(r io.Reader) error {
		got, err = io.ReadAll(r)
		return err
	}))
	return string(got)
}

func list(t *testing.T, node mailfs.File) []string {
	t.Helper()
	it, err := node.Files()
	require.NoError(t, err)
	return mailfs.Names(it)
}

func testEndToEnd(t *testing.T, f mailfs.FileSystemFactory) {
	native := f.PathToString(mailfs.NewPath("mail", "inbox", "new"))
	p, err := f.StringToPath(native)
	require.NoError(t, err)
	require.True(t, f.IsValidPath(p))

	node := f.Create(p)
	assert.False(t, node.Exists(), "create must not touch the backend")

	require.NoError(t, node.CreateDirectory(true))
	for i := 1; i <= p.Len(); i++ {
		anc := f.Create(p.Truncate(i))
		assert.True(t, anc.Exists(), "%v must exist", anc.FullPath())
		assert.True(t, anc.IsDirectory(), "%v must be a directory", anc.FullPath())
	}

	writeFile(t, f.Create(p.Append("msg1")), "Subject: hi\r\n\r\nbody\r\n")
	assert.Equal(t, []string{"msg1"}, list(t, node))
}

func testCreateDirectoryAll(t *testing.T, f mailfs.FileSystemFactory) {
	mkdirAll(t, f, "a")
	leaf := f.Create(mustPath(t, f, "a", "b", "c", "d"))

	require.NoError(t, leaf.CreateDirectory(true))

	assert.Equal(t, []string{"b"}, list(t, f.Create(mailfs.NewPath("a"))), "no sibling may be created")
	assert.Equal(t, []string{"c"}, list(t, f.Create(mailfs.NewPath("a", "b"))))
	assert.Equal(t, []string{"d"}, list(t, f.Create(mailfs.NewPath("a", "b", "c"))))
	assert.Empty(t, list(t, leaf))

	// mkdir -p on an existing directory is fine
	assert.NoError(t, leaf.CreateDirectory(true))
}

func testCreateDirectoryAllThroughFile(t *testing.T, f mailfs.FileSystemFactory) {
	mkdirAll(t, f, "a")
	require.NoError(t, f.Create(mustPath(t, f, "a", "file")).CreateFile())

	err := f.Create(mustPath(t, f, "a", "file", "x", "y")).CreateDirectory(true)

	require.Error(t, err)
	assert.True(t, mailfs.IsKind(err, mailfs.NotDirectory), "got %v", err)
	assert.True(t, f.Create(mailfs.NewPath("a", "file")).IsFile(), "failing step must not be applied")
	assert.Equal(t, []string{"file"}, list(t, f.Create(mailfs.NewPath("a"))))
}

func testCreateDirectorySingle(t *testing.T, f mailfs.FileSystemFactory) {
	missingParent := f.Create(mustPath(t, f, "x", "y"))
	err := missingParent.CreateDirectory(false)
	require.Error(t, err)
	assert.ErrorIs(t, err, mailfs.ErrFilesystem)
	assert.False(t, f.Create(mailfs.NewPath("x")).Exists(), "no ancestor may be created")

	dir := f.Create(mustPath(t, f, "x"))
	require.NoError(t, dir.CreateDirectory(false))
	assert.True(t, dir.IsDirectory())

	err = dir.CreateDirectory(false)
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrExist)
}

func testCreateFile(t *testing.T, f mailfs.FileSystemFactory) {
	err := f.Create(mustPath(t, f, "nodir", "file")).CreateFile()
	require.Error(t, err)
	assert.ErrorIs(t, err, mailfs.ErrFilesystem)

	node := f.Create(mustPath(t, f, "file"))
	require.NoError(t, node.CreateFile())
	assert.True(t, node.Exists())
	assert.True(t, node.IsFile())
	assert.False(t, node.IsDirectory())
	assert.True(t, node.CanRead())
	assert.True(t, node.CanWrite())
	size, err := node.Length()
	require.NoError(t, err)
	assert.Zero(t, size)

	err = node.CreateFile()
	require.Error(t, err, "existing file must not be truncated silently")
	assert.ErrorIs(t, err, fs.ErrExist)
}

func testKindExclusivity(t *testing.T, f mailfs.FileSystemFactory) {
	missing := f.Create(mustPath(t, f, "missing"))
	assert.False(t, missing.Exists())
	assert.False(t, missing.IsFile())
	assert.False(t, missing.IsDirectory())
	assert.False(t, missing.CanRead())

	dir := mkdirAll(t, f, "dir")
	assert.True(t, dir.IsDirectory())
	assert.False(t, dir.IsFile())

	root := f.Create(mailfs.Root())
	assert.True(t, root.Exists())
	assert.True(t, root.IsDirectory())
}

func testRemoveNonEmpty(t *testing.T, f mailfs.FileSystemFactory) {
	dir := mkdirAll(t, f, "box")
	writeFile(t, f.Create(mustPath(t, f, "box", "m1")), "one")
	mkdirAll(t, f, "box", "sub")

	err := dir.Remove()

	require.Error(t, err)
	assert.ErrorIs(t, err, mailfs.ErrDirectoryNotEmpty)
	assert.ErrorIs(t, err, mailfs.ErrFilesystem, "not-empty is a filesystem error")
	assert.True(t, dir.IsDirectory())
	assert.Equal(t, []string{"m1", "sub"}, list(t, dir), "contents must be unchanged")
	assert.Equal(t, "one", readFile(t, f.Create(mailfs.NewPath("box", "m1"))))
}

func testRemove(t *testing.T, f mailfs.FileSystemFactory) {
	dir := mkdirAll(t, f, "box")
	file := f.Create(mustPath(t, f, "box", "m1"))
	require.NoError(t, file.CreateFile())

	require.NoError(t, file.Remove())
	assert.False(t, file.Exists())
	require.NoError(t, dir.Remove())
	assert.False(t, dir.Exists())

	err := dir.Remove()
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func testRemoveRoot(t *testing.T, f mailfs.FileSystemFactory) {
	root := f.Create(mailfs.Root())

	err := root.Remove()
	require.Error(t, err)
	assert.ErrorIs(t, err, mailfs.ErrFilesystem)
	assert.NotErrorIs(t, err, mailfs.ErrDirectoryNotEmpty)
	assert.True(t, root.IsDirectory())

	mkdirAll(t, f, "box")
	err = root.Remove()
	require.Error(t, err)
	assert.ErrorIs(t, err, mailfs.ErrDirectoryNotEmpty)
	assert.Equal(t, []string{"box"}, list(t, root))
}

func testIteratorCompleteness(t *testing.T, f mailfs.FileSystemFactory) {
	dir := mkdirAll(t, f, "d")
	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, f.Create(mustPath(t, f, "d", name)).CreateFile())
	}

	it, err := dir.Files()
	require.NoError(t, err)

	seen := map[string]int{}
	for it.HasMoreElements() {
		child := it.NextElement()
		require.NotNil(t, child)
		assert.True(t, child.FullPath().HasPrefix(dir.FullPath()))
		seen[child.FullPath().Last()]++
	}
	assert.Equal(t, map[string]int{"a": 1, "b": 1, "c": 1}, seen)
	assert.False(t, it.HasMoreElements())
	assert.Nil(t, it.NextElement(), "exhausted iterator must yield nothing")
}

func testIteratorSnapshot(t *testing.T, f mailfs.FileSystemFactory) {
	dir := mkdirAll(t, f, "d")
	require.NoError(t, f.Create(mustPath(t, f, "d", "a")).CreateFile())

	it, err := dir.Files()
	require.NoError(t, err)
	require.NoError(t, f.Create(mustPath(t, f, "d", "late")).CreateFile())

	assert.Equal(t, []string{"a"}, mailfs.Names(it))

	fresh, err := dir.Files()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "late"}, mailfs.Names(fresh))
}

func testFilesErrors(t *testing.T, f mailfs.FileSystemFactory) {
	file := f.Create(mustPath(t, f, "file"))
	require.NoError(t, file.CreateFile())

	_, err := file.Files()
	require.Error(t, err)
	assert.ErrorIs(t, err, mailfs.ErrNotDirectory)

	_, err = f.Create(mustPath(t, f, "missing")).Files()
	require.Error(t, err)
	assert.ErrorIs(t, err, mailfs.ErrFilesystem)
	assert.False(t, errors.Is(err, mailfs.ErrNotDirectory))
}

func testParent(t *testing.T, f mailfs.FileSystemFactory) {
	assert.Nil(t, f.Create(mailfs.Root()).Parent())

	node := f.Create(mustPath(t, f, "a", "b"))
	parent := node.Parent()
	require.NotNil(t, parent)
	assert.True(t, parent.FullPath().Equal(mailfs.NewPath("a")))

	grand := parent.Parent()
	require.NotNil(t, grand)
	assert.True(t, grand.FullPath().IsRoot())
}

func testRename(t *testing.T, f mailfs.FileSystemFactory) {
	mkdirAll(t, f, "tmp")
	mkdirAll(t, f, "new")
	node := f.Create(mustPath(t, f, "tmp", "m1"))
	writeFile(t, node, "hello")

	err := node.Rename(mailfs.NewPath("new", ".."))
	require.Error(t, err)
	assert.ErrorIs(t, err, mailfs.ErrInvalidPath)

	err = f.Create(mustPath(t, f, "tmp", "ghost")).Rename(mustPath(t, f, "new", "ghost"))
	require.Error(t, err)
	assert.ErrorIs(t, err, mailfs.ErrFilesystem)

	dst := mustPath(t, f, "new", "m1")
	require.NoError(t, node.Rename(dst))
	assert.True(t, node.FullPath().Equal(dst), "handle follows the entry")
	assert.False(t, f.Create(mailfs.NewPath("tmp", "m1")).Exists())
	assert.Equal(t, "hello", readFile(t, f.Create(dst)))
}

func testReadWrite(t *testing.T, f mailfs.FileSystemFactory) {
	mkdirAll(t, f, "box")
	node := f.Create(mustPath(t, f, "box", "msg"))
	body := strings.Repeat("Lorem ipsum dolor sit amet\r\n", 1000)

	writeFile(t, node, body)
	assert.Equal(t, body, readFile(t, node))
	size, err := node.Length()
	require.NoError(t, err)
	assert.Equal(t, int64(len(body)), size)

	writeFile(t, node, "short")
	assert.Equal(t, "short", readFile(t, node), "writer must replace content")
}

func testStreamsSingleUse(t *testing.T, f mailfs.FileSystemFactory) {
	node := f.Create(mustPath(t, f, "msg"))
	w, err := node.FileWriter()
	require.NoError(t, err)
	noop := func(io.Writer) error { return nil }
	require.NoError(t, w.OutputStream(noop))
	err = w.OutputStream(noop)
	require.Error(t, err)
	assert.ErrorIs(t, err, mailfs.ErrStreamUsed)

	r, err := node.FileReader()
	require.NoError(t, err)
	require.NoError(t, r.InputStream(func(io.Reader) error { return nil }))
	err = r.InputStream(func(io.Reader) error { return nil })
	assert.ErrorIs(t, err, mailfs.ErrStreamUsed)
}

func testStreamErrors(t *testing.T, f mailfs.FileSystemFactory) {
	dir := mkdirAll(t, f, "dir")
	_, err := dir.FileWriter()
	assert.ErrorIs(t, err, mailfs.ErrFilesystem)
	_, err = dir.FileReader()
	assert.ErrorIs(t, err, mailfs.ErrFilesystem)
	_, err = f.Create(mustPath(t, f, "missing")).FileReader()
	assert.ErrorIs(t, err, mailfs.ErrFilesystem)

	// the caller's error comes back untouched and the session still ends
	node := f.Create(mustPath(t, f, "msg"))
	boom := errors.New("boom")
	w, err := node.FileWriter()
	require.NoError(t, err)
	assert.Equal(t, boom, w.OutputStream(func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return boom
	}))

	r, err := node.FileReader()
	require.NoError(t, err)
	assert.Equal(t, boom, r.InputStream(func(io.Reader) error { return boom }))

	// writing under a missing parent fails at stream time
	w, err = f.Create(mustPath(t, f, "nodir", "msg")).FileWriter()
	if err == nil {
		err = w.OutputStream(func(io.Writer) error { return nil })
	}
	assert.ErrorIs(t, err, mailfs.ErrFilesystem)
}

func testLength(t *testing.T, f mailfs.FileSystemFactory) {
	_, err := mkdirAll(t, f, "dir").Length()
	assert.ErrorIs(t, err, mailfs.ErrFilesystem)
	_, err = f.Create(mustPath(t, f, "missing")).Length()
	assert.ErrorIs(t, err, mailfs.ErrFilesystem)
}

func testInvalidHandle(t *testing.T, f mailfs.FileSystemFactory) {
	node := f.Create(mailfs.NewPath("a", ".."))
	assert.False(t, f.IsValidPath(node.FullPath()))
	assert.False(t, node.Exists())
	assert.ErrorIs(t, node.CreateFile(), mailfs.ErrInvalidPath)
	assert.ErrorIs(t, node.CreateDirectory(true), mailfs.ErrInvalidPath)
	assert.ErrorIs(t, node.Remove(), mailfs.ErrInvalidPath)
	_, err := node.Files()
	assert.ErrorIs(t, err, mailfs.ErrInvalidPath)
	_, err = node.FileWriter()
	assert.ErrorIs(t, err, mailfs.ErrInvalidPath)
}

func testRoundTrip(t *testing.T, f mailfs.FileSystemFactory) {
	for _, p := range []mailfs.Path{
		mailfs.Root(),
		mailfs.NewPath("INBOX"),
		mailfs.NewPath("mail", "inbox", "new"),
		mailfs.NewPath("Entwürfe", "Gesendete Objekte"),
		mailfs.NewPath("cur", "1700000000.M1P2"),
	} {
		native := f.PathToString(p)
		parsed, err := f.StringToPath(native)
		require.NoError(t, err, native)
		again, err := f.StringToPath(f.PathToString(parsed))
		require.NoError(t, err)
		assert.True(t, again.Equal(parsed), "round trip of %q", native)
		assert.True(t, parsed.Equal(p))
	}
}
