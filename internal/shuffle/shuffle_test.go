package shuffle

import (
	"slices"
	"testing"
)

func TestShuffle_DoesNotMutateInput(t *testing.T) {
	in := []int{1, 2, 3, 4, 5, 6, 7, 8}
	orig := slices.Clone(in)

	out := Shuffle(NewSeeded(1), in)

	if !slices.Equal(in, orig) {
		t.Errorf("input mutated: %v", in)
	}
	sorted := slices.Clone(out)
	slices.Sort(sorted)
	if !slices.Equal(sorted, orig) {
		t.Errorf("Shuffle() = %v, not a permutation of %v", out, orig)
	}
}

func TestShuffle_SeededIsDeterministic(t *testing.T) {
	in := []string{"a", "b", "c", "d", "e", "f"}
	a := Shuffle(NewSeeded(42), in)
	b := Shuffle(NewSeeded(42), in)
	if !slices.Equal(a, b) {
		t.Errorf("same seed gave %v and %v", a, b)
	}
}

func TestShuffle_Empty(t *testing.T) {
	if out := Shuffle(New(), []int(nil)); len(out) != 0 {
		t.Errorf("Shuffle(nil) = %v, want empty", out)
	}
}

func TestShuffle_RoughlyUniform(t *testing.T) {
	s := NewSeeded(7)
	const trials = 30000
	counts := make(map[[3]int]int)
	for range trials {
		out := Shuffle(s, []int{0, 1, 2})
		counts[[3]int{out[0], out[1], out[2]}]++
	}
	if len(counts) != 6 {
		t.Fatalf("saw %d permutations, want 6", len(counts))
	}
	for p, n := range counts {
		if n < trials/6*8/10 || n > trials/6*12/10 {
			t.Errorf("permutation %v seen %d times, want ~%d", p, n, trials/6)
		}
	}
}

func TestSample(t *testing.T) {
	in := []int{1, 2, 3, 4, 5}
	out := Sample(NewSeeded(3), in, 3)
	if len(out) != 3 {
		t.Fatalf("len(Sample) = %d, want 3", len(out))
	}
	seen := map[int]bool{}
	for _, v := range out {
		if seen[v] {
			t.Errorf("duplicate %d in sample %v", v, out)
		}
		seen[v] = true
	}
	if got := Sample(NewSeeded(3), in, 10); len(got) != 5 {
		t.Errorf("len(Sample(n>len)) = %d, want 5", len(got))
	}
}

func TestPerm(t *testing.T) {
	p := NewSeeded(9).Perm(10)
	sorted := slices.Clone(p)
	slices.Sort(sorted)
	for i, v := range sorted {
		if v != i {
			t.Fatalf("Perm(10) = %v is not a permutation", p)
		}
	}
}
