// Package gapbuffer provides a generic gap buffer: a mutable sequence stored
// in one contiguous slice with a movable hole (the gap) at the cursor.
//
// Edits clustered around the cursor are cheap. Inserting writes into the
// front of the gap, removing widens the gap from the back, and moving the
// cursor only relocates the elements between the old and new positions.
//
// Physical layout of a buffer holding a, b, c, d with the cursor at 2:
//
//	+---+---+-----+-----+---+---+
//	| a | b | gap | gap | c | d |
//	+---+---+-----+-----+---+---+
//	          ^gapStart   ^gapEnd
//
// Basic usage:
//
//	gb := gapbuffer.New([]string{"a", "b", "c"})
//	_ = gb.SetPosition(1)
//	gb.Insert("x")           // a x b c
//	v, ok := gb.Remove()     // "b", true
//	fmt.Println(gb)          // [ a, x, Gap[2, 4), c, ]
//
// Ownership:
//
// New takes ownership of the slice it is given and may reuse its backing
// array. Values handed back by Remove belong to the caller; values still in
// the buffer are passed to the release hook (see WithReleaseFunc) exactly
// once when Release is called.
//
// Thread Safety:
//
// A GapBuffer is not safe for concurrent use. Readers may share a buffer
// only while no goroutine mutates it.
package gapbuffer
