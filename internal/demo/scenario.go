// Package demo drives a gap buffer through a scripted sequence of edits and
// prints the buffer layout after every step.
package demo

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/amin-mir/gap-buffer/internal/engine/gapbuffer"
)

// MinCount is the smallest initial sequence Reference accepts.
const MinCount = 3

// ErrCountTooSmall is returned by Reference for counts below MinCount.
var ErrCountTooSmall = errors.New("count too small")

// Step is one edit. Apply returns a short description of its result, or ""
// when the step has none.
type Step struct {
	Name  string
	Apply func(gb *gapbuffer.GapBuffer[string]) (string, error)
}

// Scenario is an initial sequence and the steps applied to it.
type Scenario struct {
	Name    string
	Initial []string
	Steps   []Step
}

// Labels returns prefix+i for i in [from, to).
func Labels(prefix string, from, to int) []string {
	if to <= from {
		return nil
	}
	out := make([]string, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, prefix+strconv.Itoa(i))
	}
	return out
}

// Reference builds the standard walk-through over labels prefix0 ..
// prefix{count-1}: remove an element from the middle, try to remove past the
// end, remove the first element, put both back, then append count+5 more.
// The final sequence is prefix0 .. prefix{count+5} in order.
func Reference(prefix string, count int) (Scenario, error) {
	if count < MinCount {
		return Scenario{}, fmt.Errorf("%w: %d, need at least %d", ErrCountTooSmall, count, MinCount)
	}

	label := func(i int) string { return prefix + strconv.Itoa(i) }
	mid := max(1, count-3)

	return Scenario{
		Name:    "reference",
		Initial: Labels(prefix, 0, count),
		Steps: []Step{
			SetPosition(mid),
			Remove(),
			SetPosition(count - 1),
			Remove(),
			SetPosition(0),
			Remove(),
			Insert(label(0)),
			SetPosition(mid),
			Insert(label(mid)),
			SetPosition(count),
			Insert(label(count)),
			InsertAll(Labels(prefix, count+1, count+6)...),
		},
	}, nil
}

// SetPosition moves the cursor to idx.
func SetPosition(idx int) Step {
	return Step{
		Name: fmt.Sprintf("set_position(%d)", idx),
		Apply: func(gb *gapbuffer.GapBuffer[string]) (string, error) {
			return "", gb.SetPosition(idx)
		},
	}
}

// Remove deletes the element after the cursor. Its result is the removed
// element or "none".
func Remove() Step {
	return Step{
		Name: "remove()",
		Apply: func(gb *gapbuffer.GapBuffer[string]) (string, error) {
			v, ok := gb.Remove()
			if !ok {
				return "none", nil
			}
			return v, nil
		},
	}
}

// Insert writes v at the cursor.
func Insert(v string) Step {
	return Step{
		Name: fmt.Sprintf("insert(%s)", v),
		Apply: func(gb *gapbuffer.GapBuffer[string]) (string, error) {
			gb.Insert(v)
			return "", nil
		},
	}
}

// InsertAll writes vs at the cursor, in order.
func InsertAll(vs ...string) Step {
	return Step{
		Name: fmt.Sprintf("insert_all(%s)", strings.Join(vs, ", ")),
		Apply: func(gb *gapbuffer.GapBuffer[string]) (string, error) {
			gb.InsertSlice(vs...)
			return "", nil
		},
	}
}
