package progress

import (
	"cmp"
	"slices"
)

// Direction of a sort key.
type Direction int

const (
	Asc Direction = iota
	Desc
)

// SortKey is one (field, direction) pair of an ordering.
type SortKey[T any] struct {
	Compare   func(a, b T) int
	Direction Direction
}

// Key builds a sort key from a field accessor.
func Key[T any, F cmp.Ordered](field func(T) F, direction Direction) SortKey[T] {
	return SortKey[T]{
		Compare:   func(a, b T) int { return cmp.Compare(field(a), field(b)) },
		Direction: direction,
	}
}

// SortBy stably sorts items by the keys in order; later keys break ties.
func SortBy[T any](items []T, keys ...SortKey[T]) {
	slices.SortStableFunc(items, func(a, b T) int {
		for _, key := range keys {
			result := key.Compare(a, b)
			if key.Direction == Desc {
				result = -result
			}
			if result != 0 {
				return result
			}
		}
		return 0
	})
}

var (
	byExpected = Key(func(e Event) int64 { return e.Expected.UnixNano() }, Asc)
	bySection  = Key(func(e Event) int { return e.Section }, Asc)
	byPosition = Key(func(e Event) int { return e.Position }, Asc)
)

// OrderEvents sorts events for display.
func OrderEvents(events []Event, mode OrderMode) {
	if mode == OrderByCoursePosition {
		SortBy(events, bySection, byPosition)
		return
	}
	SortBy(events, byExpected, bySection, byPosition)
}
