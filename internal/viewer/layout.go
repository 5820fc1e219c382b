package viewer

import (
	"github.com/rivo/uniseg"

	"github.com/amin-mir/gap-buffer/internal/engine/snapshot"
)

// GapGlyph marks one gap slot.
const GapGlyph = "·"

type tokenKind int

const (
	tokenElem tokenKind = iota
	tokenGap
)

// token is one drawable slot: an element label or a gap slot.
type token struct {
	text  string
	kind  tokenKind
	width int
}

// tokens lists the physical slots of l from left to right.
func tokens(l snapshot.Layout) []token {
	out := make([]token, 0, l.Cap)
	for _, s := range l.Prefix {
		out = append(out, elemToken(s))
	}
	for range l.GapLen() {
		out = append(out, token{text: GapGlyph, kind: tokenGap, width: 1})
	}
	for _, s := range l.Suffix {
		out = append(out, elemToken(s))
	}
	return out
}

func elemToken(s string) token {
	return token{text: s, kind: tokenElem, width: uniseg.StringWidth(s)}
}

// placed is a token positioned on screen.
type placed struct {
	token
	x, y int
}

// place lays tokens out left to right, one column apart, wrapping at width.
// A token wider than the screen gets a row of its own.
func place(toks []token, width, top int) []placed {
	out := make([]placed, 0, len(toks))
	x, y := 0, top
	for _, t := range toks {
		if x > 0 && x+t.width > width {
			x, y = 0, y+1
		}
		out = append(out, placed{token: t, x: x, y: y})
		x += t.width + 1
	}
	return out
}
