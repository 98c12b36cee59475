package bcn

import "testing"

func TestSubsetIndexBounds(t *testing.T) {
	for _, ns := range []int{1, 2, 3} {
		for p := 0; p < 64; p++ {
			for t2 := 0; t2 < blockTexels; t2++ {
				s := subsetIndex(ns, p, t2)
				if s < 0 || s >= ns {
					t.Fatalf("ns=%d partition=%d texel=%d: subset %d", ns, p, t2, s)
				}
			}
		}
	}
}

func TestAnchorIndices(t *testing.T) {
	for _, ns := range []int{2, 3} {
		for p := 0; p < 64; p++ {
			for s := 0; s < ns; s++ {
				a := anchorIndex(ns, p, s)
				if a < 0 || a >= blockTexels {
					t.Fatalf("ns=%d partition=%d subset=%d: anchor %d", ns, p, s, a)
				}
				// The anchor texel must belong to its subset.
				if got := subsetIndex(ns, p, a); got != s {
					t.Fatalf("ns=%d partition=%d: anchor %d sits in subset %d, want %d", ns, p, a, got, s)
				}
			}
			if anchorIndex(ns, p, 0) != 0 {
				t.Fatalf("ns=%d partition=%d: subset 0 anchor not texel 0", ns, p)
			}
		}
	}
}

func TestEverySubsetPopulated(t *testing.T) {
	// BPTC partition tables never leave a subset empty.
	for _, ns := range []int{2, 3} {
		for p := 0; p < 64; p++ {
			var seen [3]bool
			for t2 := 0; t2 < blockTexels; t2++ {
				seen[subsetIndex(ns, p, t2)] = true
			}
			for s := 0; s < ns; s++ {
				if !seen[s] {
					t.Fatalf("ns=%d partition=%d: subset %d empty", ns, p, s)
				}
			}
		}
	}
}
