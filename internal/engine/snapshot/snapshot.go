// Package snapshot captures the physical layout of a gap buffer as plain
// data and encodes it as JSON.
package snapshot

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/amin-mir/gap-buffer/internal/engine/gapbuffer"
)

// ErrInvalidLayout is returned by Parse for malformed or inconsistent input.
var ErrInvalidLayout = errors.New("invalid layout")

// Layout is a copy of a buffer's prefix, gap and suffix. Elements are
// rendered with fmt.Sprint. It does not change when the buffer does.
type Layout struct {
	Len      int
	Cap      int
	GapStart int
	GapEnd   int
	Prefix   []string
	Suffix   []string
}

// Take captures the current layout of gb.
func Take[T any](gb *gapbuffer.GapBuffer[T]) Layout {
	start, end := gb.Gap()
	l := Layout{
		Len:      gb.Len(),
		Cap:      gb.Cap(),
		GapStart: start,
		GapEnd:   end,
		Prefix:   make([]string, 0, start),
		Suffix:   make([]string, 0, gb.Cap()-end),
	}
	for i, v := range gb.All() {
		if i < start {
			l.Prefix = append(l.Prefix, fmt.Sprint(v))
		} else {
			l.Suffix = append(l.Suffix, fmt.Sprint(v))
		}
	}
	return l
}

// Items returns the elements in logical order.
func (l Layout) Items() []string {
	out := make([]string, 0, len(l.Prefix)+len(l.Suffix))
	out = append(out, l.Prefix...)
	return append(out, l.Suffix...)
}

// GapLen returns the number of gap slots.
func (l Layout) GapLen() int {
	return l.GapEnd - l.GapStart
}

// JSON encodes the layout as
// {"len":..,"cap":..,"gap":[start,end],"prefix":[..],"suffix":[..]}.
func (l Layout) JSON() (string, error) {
	prefix, suffix := l.Prefix, l.Suffix
	if prefix == nil {
		prefix = []string{}
	}
	if suffix == nil {
		suffix = []string{}
	}

	fields := []struct {
		path  string
		value any
	}{
		{"len", l.Len},
		{"cap", l.Cap},
		{"gap", []int{l.GapStart, l.GapEnd}},
		{"prefix", prefix},
		{"suffix", suffix},
	}

	doc := "{}"
	for _, f := range fields {
		var err error
		doc, err = sjson.Set(doc, f.path, f.value)
		if err != nil {
			return "", fmt.Errorf("encoding %s: %w", f.path, err)
		}
	}
	return doc, nil
}

// Parse decodes a document produced by JSON and checks that its fields
// agree with each other.
func Parse(doc string) (Layout, error) {
	if !gjson.Valid(doc) {
		return Layout{}, fmt.Errorf("%w: not JSON", ErrInvalidLayout)
	}

	r := gjson.Parse(doc)
	gap := r.Get("gap").Array()
	if len(gap) != 2 {
		return Layout{}, fmt.Errorf("%w: gap must have two bounds", ErrInvalidLayout)
	}

	l := Layout{
		Len:      int(r.Get("len").Int()),
		Cap:      int(r.Get("cap").Int()),
		GapStart: int(gap[0].Int()),
		GapEnd:   int(gap[1].Int()),
		Prefix:   stringArray(r.Get("prefix")),
		Suffix:   stringArray(r.Get("suffix")),
	}

	switch {
	case l.GapStart != len(l.Prefix):
		return Layout{}, fmt.Errorf("%w: gap starts at %d after %d elements", ErrInvalidLayout, l.GapStart, len(l.Prefix))
	case l.GapEnd < l.GapStart || l.Cap-l.GapEnd != len(l.Suffix):
		return Layout{}, fmt.Errorf("%w: gap [%d, %d) does not fit cap %d", ErrInvalidLayout, l.GapStart, l.GapEnd, l.Cap)
	case l.Len != len(l.Prefix)+len(l.Suffix):
		return Layout{}, fmt.Errorf("%w: len %d", ErrInvalidLayout, l.Len)
	}
	return l, nil
}

func stringArray(r gjson.Result) []string {
	arr := r.Array()
	out := make([]string, 0, len(arr))
	for _, v := range arr {
		out = append(out, v.String())
	}
	return out
}
