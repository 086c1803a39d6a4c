package feed

import (
	"testing"

	"github.com/stretchr/testify/require"

	"marketref/pkg/exception"
)

func TestStreamCursorBounds(t *testing.T) {
	s := NewDataStream([]int{10, 20, 30, 40, 50})
	require.NoError(t, s.Next())
	require.NoError(t, s.Next())
	require.Equal(t, 2, s.CurrentBar())

	for i, want := range []int{30, 20, 10} {
		got, err := s.At(i)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := s.At(-1)
	require.ErrorIs(t, err, exception.ErrIndexOutOfRange)
	_, err = s.At(3)
	require.ErrorIs(t, err, exception.ErrIndexOutOfRange)
}

func TestStreamCursorAtStart(t *testing.T) {
	s := NewDataStream([]string{"a", "b"})
	require.Equal(t, 0, s.CurrentBar())

	got, err := s.At(0)
	require.NoError(t, err)
	require.Equal(t, "a", got)

	_, err = s.At(1)
	require.ErrorIs(t, err, exception.ErrIndexOutOfRange)
}

func TestStreamNextStopsAtEnd(t *testing.T) {
	s := NewDataStream([]int{1, 2})
	require.NoError(t, s.Next())
	require.ErrorIs(t, s.Next(), exception.ErrIndexOutOfRange)
	require.Equal(t, 1, s.CurrentBar())
}

func TestStreamEmpty(t *testing.T) {
	s := NewDataStream([]int(nil))
	require.ErrorIs(t, s.Next(), exception.ErrIndexOutOfRange)
	_, err := s.At(0)
	require.ErrorIs(t, err, exception.ErrIndexOutOfRange)
}
