package feed

import (
	"github.com/yanun0323/errors"

	"marketref/pkg/exception"
)

// DataStream is a read-only windowed view over a flat sequence with
// cursor-relative indexing: At(0) is the element at the cursor, larger
// indices address progressively older elements, Next advances the
// cursor by one.
type DataStream[T any] struct {
	data   []T
	cursor int
}

func NewDataStream[T any](data []T) *DataStream[T] {
	return &DataStream[T]{data: data}
}

func (s *DataStream[T]) Len() int { return len(s.data) }

// CurrentBar is the cursor position, counted from the start of the
// sequence. Valid lookback indices are [0, CurrentBar].
func (s *DataStream[T]) CurrentBar() int { return s.cursor }

// Next advances the cursor one element. It fails once the cursor sits
// on the last element.
func (s *DataStream[T]) Next() error {
	if s.cursor+1 >= len(s.data) {
		return errors.Wrapf(exception.ErrIndexOutOfRange, "cursor %d of %d", s.cursor, len(s.data))
	}
	s.cursor++
	return nil
}

// At returns the element i steps behind the cursor.
func (s *DataStream[T]) At(i int) (T, error) {
	var zero T
	if i < 0 || i > s.cursor || s.cursor-i >= len(s.data) {
		return zero, errors.Wrapf(exception.ErrIndexOutOfRange, "index %d with cursor %d of %d", i, s.cursor, len(s.data))
	}
	return s.data[s.cursor-i], nil
}
