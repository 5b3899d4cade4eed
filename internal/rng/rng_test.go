package rng

import "testing"

func TestUniformBounds(t *testing.T) {
	src := Seeded(1)
	for i := 0; i < 10000; i++ {
		v := Uniform(src, 1, 100)
		if v < 1 || v > 100 {
			t.Fatalf("Uniform(1,100) returned %d", v)
		}
	}
}

func TestUniformSingleValue(t *testing.T) {
	src := Seeded(1)
	if v := Uniform(src, 7, 7); v != 7 {
		t.Errorf("Uniform(7,7) = %d, want 7", v)
	}
}

func TestSeededDeterminism(t *testing.T) {
	a := Seeded(42)
	b := Seeded(42)
	for i := 0; i < 100; i++ {
		av, bv := a.IntN(1000), b.IntN(1000)
		if av != bv {
			t.Fatalf("draw %d diverged: %d vs %d", i, av, bv)
		}
	}
}

func TestSymbol(t *testing.T) {
	src := Seeded(7)
	alphabet := []string{"a", "b", "c"}
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		s := Symbol(src, alphabet)
		if s != "a" && s != "b" && s != "c" {
			t.Fatalf("Symbol returned %q", s)
		}
		seen[s] = true
	}
	if len(seen) != 3 {
		t.Errorf("expected all symbols drawn over 1000 tries, got %v", seen)
	}
}
