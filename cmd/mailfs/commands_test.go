package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/brettbedarf/mailfs"
	"github.com/brettbedarf/mailfs/config"
	"github.com/brettbedarf/mailfs/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCLI(stdin string) (*cli, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &cli{
		cfg:     config.NewDefaultConfig(),
		factory: memfs.New(),
		stdin:   strings.NewReader(stdin),
		stdout:  out,
	}, out
}

func TestMkdirPutCatLs(t *testing.T) {
	t.Parallel()
	c, out := newCLI("hello\n")

	require.NoError(t, c.run([]string{"mkdir", "-p", "/mail/inbox/new"}))
	require.NoError(t, c.run([]string{"put", "/mail/inbox/new/msg1"}))
	require.NoError(t, c.run([]string{"cat", "/mail/inbox/new/msg1"}))
	assert.Equal(t, "hello\n", out.String())

	out.Reset()
	require.NoError(t, c.run([]string{"ls", "/mail/inbox"}))
	assert.Equal(t, "d          0 new\n", out.String())

	out.Reset()
	require.NoError(t, c.run([]string{"ls", "/mail/inbox/new"}))
	assert.Equal(t, "-          6 msg1\n", out.String())
}

func TestMkdirWithoutParents(t *testing.T) {
	t.Parallel()
	c, _ := newCLI("")

	err := c.run([]string{"mkdir", "/a/b"})

	assert.ErrorIs(t, err, mailfs.ErrFilesystem)
}

func TestMvRmStat(t *testing.T) {
	t.Parallel()
	c, out := newCLI("x")
	require.NoError(t, c.run([]string{"put", "/a"}))
	require.NoError(t, c.run([]string{"mv", "/a", "/b"}))

	require.NoError(t, c.run([]string{"stat", "/b"}))
	assert.Contains(t, out.String(), "kind:     file")
	assert.Contains(t, out.String(), "size:     1")

	require.NoError(t, c.run([]string{"rm", "/b"}))
	out.Reset()
	require.NoError(t, c.run([]string{"stat", "/b"}))
	assert.Equal(t, "/b: does not exist\n", out.String())
}

func TestDeliverCommand(t *testing.T) {
	t.Parallel()
	c, out := newCLI("Subject: hi\r\n\r\nbody\r\n")

	require.NoError(t, c.run([]string{"deliver", "/Maildir"}))

	name := strings.TrimSpace(out.String())
	assert.True(t, c.factory.Create(mailfs.NewPath("Maildir", "new", name)).IsFile())
}

func TestServicesCommand(t *testing.T) {
	t.Parallel()
	c, out := newCLI("")
	c.cfg.Properties["transport.smtps.server.address"] = "mx.example.org"
	c.cfg.Properties["transport.smtps.auth.password"] = "hunter2"

	require.NoError(t, c.run([]string{"services", "smtps", "sendmail"}))

	got := out.String()
	assert.Contains(t, got, "smtps (transport.smtps.)")
	assert.Contains(t, got, "mx.example.org")
	assert.Contains(t, got, "465")
	assert.Contains(t, got, "/usr/sbin/sendmail")
	assert.Contains(t, got, "***")
	assert.NotContains(t, got, "hunter2")

	assert.Error(t, c.run([]string{"services", "pop3"}))
}

func TestUsageErrors(t *testing.T) {
	t.Parallel()
	c, _ := newCLI("")

	assert.ErrorIs(t, c.run([]string{"frobnicate"}), errUsage)
	assert.ErrorIs(t, c.run([]string{"cat"}), errUsage)
	assert.ErrorIs(t, c.run([]string{"mv", "/a"}), errUsage)
	assert.ErrorIs(t, c.run([]string{"cat", "relative"}), mailfs.ErrInvalidPath)
}
