package gapbuffer

import (
	"errors"
	"math"
	"slices"
	"strings"
	"testing"
	"testing/quick"
)

func letters(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "")
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		gapSize int
		wantCap int
		wantStr string
	}{
		{"empty", nil, 0, 2, "[ Gap[0, 2), ]"},
		{"single", []string{"a"}, 0, 3, "[ Gap[0, 2), a, ]"},
		{"three", letters("abc"), 0, 5, "[ Gap[0, 2), a, b, c, ]"},
		{"custom gap", letters("ab"), 4, 6, "[ Gap[0, 4), a, b, ]"},
		{"gap larger than input", letters("ab"), 16, 18, "[ Gap[0, 16), a, b, ]"},
		{"ignored gap size", letters("ab"), -3, 4, "[ Gap[0, 2), a, b, ]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := slices.Clone(tt.input)
			g := New(tt.input, WithGapSize[string](tt.gapSize))

			if g.Cap() != tt.wantCap {
				t.Errorf("Cap() = %d, want %d", g.Cap(), tt.wantCap)
			}
			if g.Len() != len(want) {
				t.Errorf("Len() = %d, want %d", g.Len(), len(want))
			}
			if g.Position() != 0 {
				t.Errorf("Position() = %d, want 0", g.Position())
			}
			if got := g.String(); got != tt.wantStr {
				t.Errorf("String() = %q, want %q", got, tt.wantStr)
			}
			if got := g.Slice(); !slices.Equal(got, want) {
				t.Errorf("Slice() = %v, want %v", got, want)
			}
			if err := g.CheckInvariants(); err != nil {
				t.Errorf("CheckInvariants() = %v", err)
			}
		})
	}
}

func TestNewReusesSpareCapacity(t *testing.T) {
	input := make([]int, 3, 16)
	copy(input, []int{1, 2, 3})

	g := New(input)
	if &g.buf[0] != &input[0] {
		t.Error("New() allocated although the input had room for the gap")
	}
	if got := g.Slice(); !slices.Equal(got, []int{1, 2, 3}) {
		t.Errorf("Slice() = %v, want [1 2 3]", got)
	}
}

func TestGet(t *testing.T) {
	g := New(letters("abcd"))
	if err := g.SetPosition(2); err != nil {
		t.Fatalf("SetPosition(2) error = %v", err)
	}

	for i, want := range letters("abcd") {
		got, err := g.Get(i)
		if err != nil {
			t.Fatalf("Get(%d) error = %v", i, err)
		}
		if got != want {
			t.Errorf("Get(%d) = %q, want %q", i, got, want)
		}
	}

	for _, idx := range []int{-1, 4, 100} {
		_, err := g.Get(idx)
		if !errors.Is(err, ErrIndexOutOfBounds) {
			t.Errorf("Get(%d) error = %v, want ErrIndexOutOfBounds", idx, err)
		}
		var ie *IndexError
		if !errors.As(err, &ie) {
			t.Fatalf("Get(%d) error is not *IndexError", idx)
		}
		if ie.Index != idx || ie.Len != 4 || ie.Op != "get" {
			t.Errorf("IndexError = %+v", ie)
		}
	}
}

func TestMustGetPanics(t *testing.T) {
	g := New(letters("ab"))
	if got := g.MustGet(1); got != "b" {
		t.Errorf("MustGet(1) = %q, want %q", got, "b")
	}

	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrIndexOutOfBounds) {
			t.Errorf("recover() = %v, want ErrIndexOutOfBounds", r)
		}
	}()
	g.MustGet(2)
}

func TestSetPosition(t *testing.T) {
	tests := []struct {
		name    string
		gapSize int
		moves   []int
		wantStr string
	}{
		{"right past gap", 2, []int{3}, "[ a, b, c, Gap[3, 5), d, e, ]"},
		{"right then left", 2, []int{3, 1}, "[ a, Gap[1, 3), b, c, d, e, ]"},
		{"to end", 2, []int{5}, "[ a, b, c, d, e, Gap[5, 7), ]"},
		{"end then start", 2, []int{5, 0}, "[ Gap[0, 2), a, b, c, d, e, ]"},
		{"same position", 2, []int{2, 2}, "[ a, b, Gap[2, 4), c, d, e, ]"},
		{"short moves over wide gap", 8, []int{1, 2, 4, 3}, "[ a, b, c, Gap[3, 11), d, e, ]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(letters("abcde"), WithGapSize[string](tt.gapSize))
			for _, idx := range tt.moves {
				if err := g.SetPosition(idx); err != nil {
					t.Fatalf("SetPosition(%d) error = %v", idx, err)
				}
				if g.Position() != idx {
					t.Errorf("Position() = %d, want %d", g.Position(), idx)
				}
				if err := g.CheckInvariants(); err != nil {
					t.Fatalf("after SetPosition(%d): %v", idx, err)
				}
			}
			if got := g.String(); got != tt.wantStr {
				t.Errorf("String() = %q, want %q", got, tt.wantStr)
			}
			if got := strings.Join(g.Slice(), ""); got != "abcde" {
				t.Errorf("Slice() = %q, want %q", got, "abcde")
			}
		})
	}
}

func TestSetPositionOutOfBounds(t *testing.T) {
	g := New(letters("abc"))
	_ = g.SetPosition(1)
	before := g.String()
	stats := g.Stats()

	for _, idx := range []int{-1, 4, 10} {
		err := g.SetPosition(idx)
		if !errors.Is(err, ErrIndexOutOfBounds) {
			t.Errorf("SetPosition(%d) error = %v, want ErrIndexOutOfBounds", idx, err)
		}
	}
	if got := g.String(); got != before {
		t.Errorf("buffer changed on failure: %q, want %q", got, before)
	}
	if g.Stats() != stats {
		t.Errorf("Stats() changed on failure: %+v, want %+v", g.Stats(), stats)
	}
}

func TestSetPositionIdempotent(t *testing.T) {
	g := New(letters("abcdef"))
	for k := 0; k <= g.Len(); k++ {
		_ = g.SetPosition(k)
		first, firstLen := g.String(), g.Len()
		_ = g.SetPosition(k)
		if g.String() != first || g.Len() != firstLen {
			t.Errorf("SetPosition(%d) twice: %q, want %q", k, g.String(), first)
		}
	}
}

func TestRemove(t *testing.T) {
	g := New(letters("abc"))
	_ = g.SetPosition(1)

	v, ok := g.Remove()
	if !ok || v != "b" {
		t.Fatalf("Remove() = %q, %v, want %q, true", v, ok, "b")
	}
	if g.Len() != 2 {
		t.Errorf("Len() = %d, want 2", g.Len())
	}
	if got := g.String(); got != "[ a, Gap[1, 4), c, ]" {
		t.Errorf("String() = %q", got)
	}

	v, ok = g.Remove()
	if !ok || v != "c" {
		t.Fatalf("Remove() = %q, %v, want %q, true", v, ok, "c")
	}

	before := g.String()
	v, ok = g.Remove()
	if ok || v != "" {
		t.Errorf("Remove() at end = %q, %v, want \"\", false", v, ok)
	}
	if g.String() != before {
		t.Errorf("Remove() at end changed buffer: %q", g.String())
	}
	if g.Stats().Removes != 2 {
		t.Errorf("Stats().Removes = %d, want 2", g.Stats().Removes)
	}
	if err := g.CheckInvariants(); err != nil {
		t.Error(err)
	}
}

func TestInsertGrowsAroundSuffix(t *testing.T) {
	g := New(letters("ab"))
	_ = g.SetPosition(1)
	g.Insert("x")
	g.Insert("y")
	if got := g.String(); got != "[ a, x, y, Gap[3, 3), b, ]" {
		t.Fatalf("String() = %q", got)
	}

	g.Insert("z")
	if got := g.String(); got != "[ a, x, y, z, Gap[4, 7), b, ]" {
		t.Errorf("String() = %q", got)
	}
	if g.Cap() != 8 {
		t.Errorf("Cap() = %d, want 8", g.Cap())
	}
	if g.Stats().Grows != 1 {
		t.Errorf("Stats().Grows = %d, want 1", g.Stats().Grows)
	}
	if err := g.CheckInvariants(); err != nil {
		t.Error(err)
	}
}

func TestInsertAmortizedGrowth(t *testing.T) {
	var grows [][2]int
	g := New[int](nil, WithObserver[int](ObserverFuncs{
		Grow: func(oldCap, newCap int) { grows = append(grows, [2]int{oldCap, newCap}) },
	}))

	for i := 0; i < 1000; i++ {
		g.Insert(i)
	}

	if g.Len() != 1000 {
		t.Fatalf("Len() = %d, want 1000", g.Len())
	}
	if g.Cap() != 1024 {
		t.Errorf("Cap() = %d, want 1024", g.Cap())
	}
	if len(grows) != 9 || g.Stats().Grows != 9 {
		t.Errorf("grows = %d (stats %d), want 9", len(grows), g.Stats().Grows)
	}
	for _, gr := range grows {
		if gr[1] != 2*gr[0] {
			t.Errorf("grow %d -> %d is not a doubling", gr[0], gr[1])
		}
	}
	for i, v := range g.All() {
		if v != i {
			t.Fatalf("element %d = %d", i, v)
		}
	}
}

func TestInsertSliceAndSeq(t *testing.T) {
	g := New(letters("ad"))
	_ = g.SetPosition(1)
	g.InsertSlice("b")
	g.InsertSeq(slices.Values([]string{"c"}))

	if got := strings.Join(g.Slice(), ""); got != "abcd" {
		t.Errorf("Slice() = %q, want %q", got, "abcd")
	}
	if g.Position() != 3 {
		t.Errorf("Position() = %d, want 3", g.Position())
	}
}

func TestRelease(t *testing.T) {
	var released []string
	g := New(letters("abc"), WithReleaseFunc(func(s string) {
		released = append(released, s)
	}))

	_ = g.SetPosition(1)
	if v, _ := g.Remove(); v != "b" {
		t.Fatalf("Remove() = %q, want %q", v, "b")
	}
	g.Insert("x")
	g.Release()

	if !slices.Equal(released, []string{"a", "x", "c"}) {
		t.Errorf("released = %v, want [a x c]", released)
	}
	if g.Len() != 0 || g.Cap() != 0 {
		t.Errorf("after Release Len() = %d, Cap() = %d", g.Len(), g.Cap())
	}

	g.Release()
	if len(released) != 3 {
		t.Errorf("second Release() released %d more", len(released)-3)
	}

	g.Insert("q")
	if got := g.Slice(); !slices.Equal(got, []string{"q"}) {
		t.Errorf("Slice() after reuse = %v", got)
	}
	if g.Cap() != DefaultGapSize {
		t.Errorf("Cap() after reuse = %d, want %d", g.Cap(), DefaultGapSize)
	}
}

func TestObserverMoves(t *testing.T) {
	type move struct{ from, to, count int }
	var moves []move
	g := New(letters("abcde"), WithObserver[string](ObserverFuncs{
		Move: func(from, to, count int) { moves = append(moves, move{from, to, count}) },
	}))

	_ = g.SetPosition(3)
	_ = g.SetPosition(3)
	_ = g.SetPosition(1)

	want := []move{{2, 0, 3}, {1, 3, 2}}
	if !slices.Equal(moves, want) {
		t.Errorf("moves = %v, want %v", moves, want)
	}
	if s := g.Stats(); s.Moves != 2 || s.Moved != 5 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestIteratorsStopEarly(t *testing.T) {
	g := New(letters("abcd"))
	_ = g.SetPosition(2)

	var seen []string
	for v := range g.Values() {
		seen = append(seen, v)
		if v == "c" {
			break
		}
	}
	if !slices.Equal(seen, letters("abc")) {
		t.Errorf("seen = %v", seen)
	}

	count := 0
	for range g.All() {
		count++
		break
	}
	if count != 1 {
		t.Errorf("All() yielded %d after break", count)
	}
}

func TestCheckInvariantsDetectsCorruption(t *testing.T) {
	g := New(letters("ab"))
	g.buf[0] = "junk"
	if err := g.CheckInvariants(); err == nil {
		t.Error("CheckInvariants() = nil for a filled gap slot")
	}

	g = New(letters("ab"))
	g.gapEnd = g.Cap() + 1
	if err := g.CheckInvariants(); err == nil {
		t.Error("CheckInvariants() = nil for gap past storage")
	}
}

func TestEnlargeOverflowPanics(t *testing.T) {
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrAllocationFailure) {
			t.Errorf("recover() = %v, want ErrAllocationFailure", r)
		}
	}()

	// Zero-size elements let the test hold an oversized buffer.
	g := &GapBuffer[struct{}]{gapSize: DefaultGapSize}
	g.buf = make([]struct{}, math.MaxInt/2+1)
	g.gapStart, g.gapEnd = len(g.buf), len(g.buf)
	g.Insert(struct{}{})
}

// TestModelQuick drives random operations against a plain slice and checks
// that every element comes out exactly once.
func TestModelQuick(t *testing.T) {
	f := func(ops []uint16) bool {
		var released []int
		g := New([]int{-1, -2, -3}, WithReleaseFunc(func(v int) { released = append(released, v) }))
		model := []int{-1, -2, -3}
		pos := 0
		next := 0
		var removed []int

		for _, op := range ops {
			switch op % 4 {
			case 0, 1:
				g.Insert(next)
				model = slices.Insert(model, pos, next)
				pos++
				next++
			case 2:
				v, ok := g.Remove()
				if ok != (pos < len(model)) {
					return false
				}
				if ok {
					if v != model[pos] {
						return false
					}
					removed = append(removed, v)
					model = slices.Delete(model, pos, pos+1)
				}
			case 3:
				idx := int(op>>2) % (len(model) + 1)
				if err := g.SetPosition(idx); err != nil {
					return false
				}
				pos = idx
			}
			if g.CheckInvariants() != nil || !slices.Equal(g.Slice(), model) {
				return false
			}
		}

		g.Release()
		all := append(removed, released...)
		slices.Sort(all)
		want := []int{-3, -2, -1}
		for i := 0; i < next; i++ {
			want = append(want, i)
		}
		return slices.Equal(all, want)
	}

	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}
