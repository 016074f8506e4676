package topqueue

import (
	"sort"
	"testing"

	"pgregory.net/rapid"
)

func intLess(a, b int) bool { return a < b }

func TestBoundedTopKeepsWorstK(t *testing.T) {
	q := NewBounded(3, 100, intLess)
	for _, v := range []int{5, 1, 9, 2, 8, 3, 7} {
		q.Push(v)
	}
	got := q.IntoSorted()
	want := []int{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestBoundedTopPanicsWhenCapacityExceedsLimit(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	NewBounded(10, 5, intLess)
}

func TestBoundedTopMatchesBruteForceTopK(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		k := rapid.IntRange(1, 20).Draw(rt, "k")
		values := rapid.SliceOfN(rapid.IntRange(-1000, 1000), 0, 200).Draw(rt, "values")

		q := NewBounded(k, 1000, intLess)
		for _, v := range values {
			q.Push(v)
		}
		got := q.IntoSorted()

		sorted := append([]int(nil), values...)
		sort.Ints(sorted)
		want := sorted
		if len(want) > k {
			want = want[:k]
		}

		if len(got) != len(want) {
			rt.Fatalf("len mismatch: got %v want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				rt.Fatalf("got %v, want %v", got, want)
			}
		}
	})
}
