package gapbuffer

// Option configures a GapBuffer during creation.
type Option[T any] func(*GapBuffer[T])

// WithGapSize sets the size of the gap reserved at construction.
// Values below 1 are ignored.
func WithGapSize[T any](n int) Option[T] {
	return func(g *GapBuffer[T]) {
		if n > 0 {
			g.gapSize = n
		}
	}
}

// WithReleaseFunc sets the hook Release runs for each live element.
func WithReleaseFunc[T any](fn func(T)) Option[T] {
	return func(g *GapBuffer[T]) {
		g.release = fn
	}
}

// WithObserver registers an observer for storage events.
func WithObserver[T any](o Observer) Option[T] {
	return func(g *GapBuffer[T]) {
		g.observer = o
	}
}

// Observer is notified when the buffer relocates elements.
type Observer interface {
	// OnGrow is called after the storage grew from oldCap to newCap slots.
	OnGrow(oldCap, newCap int)
	// OnMove is called after count elements were relocated from physical
	// index from to physical index to.
	OnMove(from, to, count int)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	Grow func(oldCap, newCap int)
	Move func(from, to, count int)
}

// OnGrow implements Observer.
func (o ObserverFuncs) OnGrow(oldCap, newCap int) {
	if o.Grow != nil {
		o.Grow(oldCap, newCap)
	}
}

// OnMove implements Observer.
func (o ObserverFuncs) OnMove(from, to, count int) {
	if o.Move != nil {
		o.Move(from, to, count)
	}
}

// Stats holds operation counters for a buffer.
type Stats struct {
	Inserts int // elements inserted
	Removes int // elements removed
	Moves   int // cursor moves that relocated elements
	Moved   int // total elements relocated by cursor moves
	Grows   int // storage growth events
}
