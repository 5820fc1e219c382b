package gapbuffer

import (
	"fmt"
	"iter"
	"math"
	"reflect"
	"slices"
	"strings"
)

// DefaultGapSize is the gap reserved in front of the initial contents.
const DefaultGapSize = 2

// GapBuffer is a sequence of T with a gap at the cursor.
//
// Slots in [0, gapStart) and [gapEnd, len(buf)) hold live elements. Slots in
// the gap always hold the zero value of T and are never handed out.
type GapBuffer[T any] struct {
	buf      []T
	gapStart int
	gapEnd   int

	gapSize  int
	release  func(T)
	observer Observer
	stats    Stats
}

// New creates a buffer holding initial, with the cursor at position 0.
//
// New takes ownership of initial. Its backing array may be reused as storage,
// so the caller must not read or write the slice afterwards.
func New[T any](initial []T, opts ...Option[T]) *GapBuffer[T] {
	g := &GapBuffer[T]{gapSize: DefaultGapSize}
	for _, opt := range opts {
		opt(g)
	}

	n := len(initial)
	buf := slices.Grow(initial, g.gapSize)[:n+g.gapSize]

	// Shift the elements behind the gap. copy handles the overlap.
	copy(buf[g.gapSize:], buf[:n])
	clear(buf[:g.gapSize])

	g.buf = buf
	g.gapStart = 0
	g.gapEnd = g.gapSize
	return g
}

// Len returns the number of elements in the buffer.
func (g *GapBuffer[T]) Len() int {
	return len(g.buf) - g.gapLen()
}

// Cap returns the number of physical slots, including the gap.
func (g *GapBuffer[T]) Cap() int {
	return len(g.buf)
}

// Position returns the cursor position, the logical index at which the next
// Insert writes.
func (g *GapBuffer[T]) Position() int {
	return g.gapStart
}

// Gap returns the physical bounds of the gap, [start, end).
func (g *GapBuffer[T]) Gap() (start, end int) {
	return g.gapStart, g.gapEnd
}

// Stats returns the operation counters.
func (g *GapBuffer[T]) Stats() Stats {
	return g.stats
}

func (g *GapBuffer[T]) gapLen() int {
	return g.gapEnd - g.gapStart
}

// physical translates a logical index into a slot index.
func (g *GapBuffer[T]) physical(idx int) int {
	if idx < g.gapStart {
		return idx
	}
	return idx + g.gapLen()
}

// Get returns the element at logical index idx.
func (g *GapBuffer[T]) Get(idx int) (T, error) {
	if idx < 0 || idx >= g.Len() {
		var zero T
		return zero, &IndexError{Op: "get", Index: idx, Len: g.Len()}
	}
	return g.buf[g.physical(idx)], nil
}

// MustGet is like Get but panics if idx is out of bounds.
func (g *GapBuffer[T]) MustGet(idx int) T {
	v, err := g.Get(idx)
	if err != nil {
		panic(err)
	}
	return v
}

// SetPosition moves the cursor to logical index idx, 0 <= idx <= Len().
// The buffer is left untouched when idx is out of bounds.
func (g *GapBuffer[T]) SetPosition(idx int) error {
	if idx < 0 || idx > g.Len() {
		return &IndexError{Op: "set position", Index: idx, Len: g.Len()}
	}

	gapLen := g.gapLen()
	var from, to, count int

	switch {
	case idx < g.gapStart:
		// [idx, gapStart) ends up behind the gap.
		from, to, count = idx, idx+gapLen, g.gapStart-idx
	case idx > g.gapStart:
		// [gapEnd, idx+gapLen) ends up in front of the gap.
		from, to, count = g.gapEnd, g.gapStart, idx+gapLen-g.gapEnd
	default:
		return nil
	}

	copy(g.buf[to:to+count], g.buf[from:from+count])
	g.gapStart, g.gapEnd = idx, idx+gapLen
	clear(g.buf[g.gapStart:g.gapEnd])

	g.stats.Moves++
	g.stats.Moved += count
	if g.observer != nil {
		g.observer.OnMove(from, to, count)
	}
	return nil
}

// Remove deletes and returns the element right after the cursor.
// It reports false, leaving the buffer unchanged, when the cursor is at the
// end of the buffer.
func (g *GapBuffer[T]) Remove() (T, bool) {
	var zero T
	if g.gapEnd == len(g.buf) {
		return zero, false
	}

	elem := g.buf[g.gapEnd]
	g.buf[g.gapEnd] = zero
	g.gapEnd++
	g.stats.Removes++
	return elem, true
}

// Insert writes elem at the cursor and advances the cursor past it.
func (g *GapBuffer[T]) Insert(elem T) {
	if g.gapStart == g.gapEnd {
		g.enlarge()
	}

	g.buf[g.gapStart] = elem
	g.gapStart++
	g.stats.Inserts++
}

// InsertSlice inserts elems in order. The run ends at the new cursor.
func (g *GapBuffer[T]) InsertSlice(elems ...T) {
	for _, e := range elems {
		g.Insert(e)
	}
}

// InsertSeq inserts every value of seq in order. The run ends at the new
// cursor.
func (g *GapBuffer[T]) InsertSeq(seq iter.Seq[T]) {
	for e := range seq {
		g.Insert(e)
	}
}

// enlarge doubles the storage. The prefix keeps its offsets and the suffix
// moves up by the old capacity, so the new gap is at least as large as the
// whole old buffer.
func (g *GapBuffer[T]) enlarge() {
	oldCap := len(g.buf)
	if oldCap > math.MaxInt/2 {
		panic(fmt.Errorf("%w: cannot double capacity %d", ErrAllocationFailure, oldCap))
	}

	newCap := oldCap * 2
	if oldCap == 0 {
		newCap = g.gapSize
	}
	grown := newCap - oldCap

	buf := make([]T, newCap)
	copy(buf, g.buf[:g.gapStart])
	copy(buf[g.gapStart+grown:], g.buf[g.gapEnd:])

	g.buf = buf
	g.gapEnd = g.gapStart + grown
	g.stats.Grows++
	if g.observer != nil {
		g.observer.OnGrow(oldCap, newCap)
	}
}

// Release hands every element still in the buffer to the release hook,
// prefix first, then drops the storage. The buffer is empty afterwards and
// may be reused.
func (g *GapBuffer[T]) Release() {
	if g.release != nil {
		for _, v := range g.buf[:g.gapStart] {
			g.release(v)
		}
		for _, v := range g.buf[g.gapEnd:] {
			g.release(v)
		}
	}
	g.buf = nil
	g.gapStart, g.gapEnd = 0, 0
}

// All returns an iterator over logical index and element pairs.
func (g *GapBuffer[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		i := 0
		for _, v := range g.buf[:g.gapStart] {
			if !yield(i, v) {
				return
			}
			i++
		}
		for _, v := range g.buf[g.gapEnd:] {
			if !yield(i, v) {
				return
			}
			i++
		}
	}
}

// Values returns an iterator over the elements in logical order.
func (g *GapBuffer[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, v := range g.All() {
			if !yield(v) {
				return
			}
		}
	}
}

// Slice returns a copy of the elements in logical order.
func (g *GapBuffer[T]) Slice() []T {
	out := make([]T, 0, g.Len())
	out = append(out, g.buf[:g.gapStart]...)
	return append(out, g.buf[g.gapEnd:]...)
}

// String renders the physical layout, for example
// "[ a, b, Gap[2, 4), c, ]".
func (g *GapBuffer[T]) String() string {
	var sb strings.Builder
	sb.WriteString("[ ")
	for _, v := range g.buf[:g.gapStart] {
		fmt.Fprintf(&sb, "%v, ", v)
	}
	fmt.Fprintf(&sb, "Gap[%d, %d), ", g.gapStart, g.gapEnd)
	for _, v := range g.buf[g.gapEnd:] {
		fmt.Fprintf(&sb, "%v, ", v)
	}
	sb.WriteString("]")
	return sb.String()
}

// CheckInvariants verifies the gap bounds and that every gap slot holds the
// zero value.
func (g *GapBuffer[T]) CheckInvariants() error {
	if g.gapStart < 0 || g.gapStart > g.gapEnd || g.gapEnd > len(g.buf) {
		return fmt.Errorf("gap [%d, %d) outside storage of %d slots", g.gapStart, g.gapEnd, len(g.buf))
	}
	for i := g.gapStart; i < g.gapEnd; i++ {
		if !reflect.ValueOf(&g.buf[i]).Elem().IsZero() {
			return fmt.Errorf("gap slot %d holds a value", i)
		}
	}
	return nil
}
