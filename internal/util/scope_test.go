package util

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScope_CloseUnwindsInReverse(t *testing.T) {
	t.Parallel()

	var order []int
	s := &Scope{}
	for i := range 3 {
		s.AddClose(func() error {
			order = append(order, i)
			return nil
		})
	}

	require.NoError(t, s.Close())
	assert.Equal(t, []int{2, 1, 0}, order)
	assert.True(t, s.Closed())
}

func TestScope_CloseJoinsErrors(t *testing.T) {
	t.Parallel()

	errA := errors.New("a")
	errB := errors.New("b")
	s := &Scope{}
	s.AddClose(func() error { return errA })
	s.AddClose(func() error { return nil })
	s.AddClose(func() error { return errB })

	err := s.Close()
	require.Error(t, err)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
}

func TestScope_CloseIsIdempotent(t *testing.T) {
	t.Parallel()

	calls := 0
	s := &Scope{}
	s.AddClose(func() error {
		calls++
		return nil
	})

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, 1, calls, "callbacks must run exactly once")

	var nilScope *Scope
	assert.NoError(t, nilScope.Close(), "nil scope must be a no-op")
}

func TestZerologLevel_UnknownMapsToInfo(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ZerologLevel(InfoLevel), ZerologLevel(42))
	assert.NotEqual(t, ZerologLevel(TraceLevel), ZerologLevel(ErrorLevel))
}
