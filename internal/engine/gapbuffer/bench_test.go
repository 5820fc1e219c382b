package gapbuffer

import (
	"fmt"
	"math/rand"
	"slices"
	"testing"
)

func BenchmarkInsertAtCursor(b *testing.B) {
	for _, size := range []int{1_000, 100_000} {
		b.Run(fmt.Sprintf("size=%d", size), func(b *testing.B) {
			g := New(make([]int, size))
			_ = g.SetPosition(size / 2)
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				g.Insert(i)
			}
		})
	}
}

// BenchmarkSliceInsertMiddle is the baseline the gap buffer is measured
// against: inserting into the middle of a plain slice.
func BenchmarkSliceInsertMiddle(b *testing.B) {
	for _, size := range []int{1_000, 100_000} {
		b.Run(fmt.Sprintf("size=%d", size), func(b *testing.B) {
			s := make([]int, size)
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				s = slices.Insert(s, len(s)/2, i)
			}
		})
	}
}

func BenchmarkSetPositionLocal(b *testing.B) {
	g := New(make([]int, 100_000))
	_ = g.SetPosition(50_000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = g.SetPosition(50_000 + i%16)
	}
}

func BenchmarkSetPositionRandom(b *testing.B) {
	const size = 100_000
	g := New(make([]int, size))
	rng := rand.New(rand.NewSource(1))
	targets := make([]int, 1024)
	for i := range targets {
		targets[i] = rng.Intn(size + 1)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = g.SetPosition(targets[i%len(targets)])
	}
}

func BenchmarkTypingSession(b *testing.B) {
	for i := 0; i < b.N; i++ {
		g := New([]rune("the quick brown fox"))
		for j := 0; j < 200; j++ {
			_ = g.SetPosition((j * 7) % (g.Len() + 1))
			g.InsertSlice('a', 'b', 'c')
			g.Remove()
		}
	}
}
