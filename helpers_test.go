package mailfs_test

import (
	"errors"
	"testing"

	"github.com/brettbedarf/mailfs"
	"github.com/brettbedarf/mailfs/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMkdirAllStopsAtFirstFailure(t *testing.T) {
	t.Parallel()
	fsys := memfs.New()
	require.NoError(t, fsys.Create(mailfs.NewPath("a")).CreateDirectory(false))

	boom := errors.New("boom")
	var calls []string
	mkdir := func(p mailfs.Path) error {
		calls = append(calls, p.String())
		if p.Len() == 3 {
			return boom
		}
		return fsys.Create(p).CreateDirectory(false)
	}

	err := mailfs.MkdirAll(fsys, mailfs.NewPath("a", "b", "c", "d"), mkdir)

	assert.Equal(t, boom, err)
	assert.Equal(t, []string{"/a/b", "/a/b/c"}, calls, "existing ancestors are skipped")
	assert.True(t, fsys.Create(mailfs.NewPath("a", "b")).IsDirectory(), "earlier steps stay")
}

func TestSnapshotIterator(t *testing.T) {
	t.Parallel()
	fsys := memfs.New()
	files := []mailfs.File{
		fsys.Create(mailfs.NewPath("b")),
		fsys.Create(mailfs.NewPath("a")),
	}
	it := mailfs.NewSnapshotIterator(files)

	require.True(t, it.HasMoreElements())
	assert.Equal(t, "b", it.NextElement().FullPath().Last())
	assert.Equal(t, []string{"a"}, mailfs.Names(it))
	assert.False(t, it.HasMoreElements())
	assert.Nil(t, it.NextElement())

	empty := mailfs.NewSnapshotIterator(nil)
	assert.False(t, empty.HasMoreElements())
	assert.Nil(t, empty.NextElement())
}

func TestAllStopsEarly(t *testing.T) {
	t.Parallel()
	fsys := memfs.New()
	it := mailfs.NewSnapshotIterator([]mailfs.File{
		fsys.Create(mailfs.NewPath("a")),
		fsys.Create(mailfs.NewPath("b")),
	})
	for range mailfs.All(it) {
		break
	}
	assert.True(t, it.HasMoreElements())
	assert.Equal(t, "b", it.NextElement().FullPath().Last())
}
