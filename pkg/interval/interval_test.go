package interval

import (
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"testing"
)

// implementations under test; every case runs against both.
var implementations = []struct {
	name string
	make func() Index
}{
	{"Linear", func() Index { return NewLinear() }},
	{"Tree", func() Index { return NewTree() }},
}

func TestInsertRejectsInvalidRange(t *testing.T) {
	for _, impl := range implementations {
		t.Run(impl.name, func(t *testing.T) {
			idx := impl.make()
			if err := idx.Insert("bad", 100, 50); !errors.Is(err, ErrInvalidRange) {
				t.Errorf("Insert(end < start) = %v, want ErrInvalidRange", err)
			}
			// The rejected record must not be stored.
			if got := idx.Query(0, 200); len(got) != 0 {
				t.Errorf("Query after rejected insert = %v, want empty", got)
			}
		})
	}
}

func TestQueryHalfOpen(t *testing.T) {
	tests := []struct {
		name       string
		start, end int64
		want       []string
	}{
		{"FullOverlap", 0, 100, []string{"a"}},
		{"PartialLeft", 0, 15, []string{"a"}},
		{"PartialRight", 15, 100, []string{"a"}},
		{"Contained", 12, 18, []string{"a"}},
		{"TouchingEnd", 20, 30, nil},   // a ends exactly at 20
		{"TouchingStart", 0, 10, nil},  // a starts exactly at 10
		{"Disjoint", 100, 200, nil},
		{"ZeroWidthInside", 15, 15, nil}, // empty query range overlaps nothing
	}

	for _, impl := range implementations {
		t.Run(impl.name, func(t *testing.T) {
			idx := impl.make()
			if err := idx.Insert("a", 10, 20); err != nil {
				t.Fatal(err)
			}
			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					got := idx.Query(tt.start, tt.end)
					if !sameSet(got, tt.want) {
						t.Errorf("Query(%d, %d) = %v, want %v", tt.start, tt.end, got, tt.want)
					}
				})
			}
		})
	}
}

func TestZeroDurationRecordIsQueryable(t *testing.T) {
	for _, impl := range implementations {
		t.Run(impl.name, func(t *testing.T) {
			idx := impl.make()
			if err := idx.Insert("instant", 50, 50); err != nil {
				t.Fatalf("Insert(zero duration) = %v, want accepted", err)
			}
			// A zero-width interval can never satisfy s < end && e > start.
			if got := idx.Query(0, 100); len(got) != 0 {
				t.Errorf("zero-duration interval reported overlap: %v", got)
			}
		})
	}
}

func TestInsertOrderIndependence(t *testing.T) {
	recs := []Record{
		{"a", 0, 60}, {"b", 30, 90}, {"c", 45, 50}, {"d", 60, 120}, {"e", 10, 10},
	}
	for _, impl := range implementations {
		t.Run(impl.name, func(t *testing.T) {
			forward := impl.make()
			backward := impl.make()
			for i := range recs {
				mustInsert(t, forward, recs[i])
				mustInsert(t, backward, recs[len(recs)-1-i])
			}
			for q := int64(0); q <= 120; q += 15 {
				a := forward.Query(q, q+20)
				b := backward.Query(q, q+20)
				if !sameSet(a, b) {
					t.Errorf("Query(%d, %d): forward %v != backward %v", q, q+20, a, b)
				}
			}
		})
	}
}

func TestClearReuse(t *testing.T) {
	for _, impl := range implementations {
		t.Run(impl.name, func(t *testing.T) {
			idx := impl.make()
			mustInsert(t, idx, Record{"old", 0, 100})
			idx.Clear()
			if got := idx.Query(0, 100); len(got) != 0 {
				t.Fatalf("Query after Clear = %v, want empty", got)
			}
			mustInsert(t, idx, Record{"new", 0, 100})
			if got := idx.Query(0, 100); !sameSet(got, []string{"new"}) {
				t.Errorf("Query after reuse = %v, want [new]", got)
			}
		})
	}
}

// TestTreeMatchesLinear cross-checks the tree against the scan reference
// on randomized batches.
func TestTreeMatchesLinear(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 20; trial++ {
		linear := NewLinear()
		tree := NewTree()

		n := 1 + rng.Intn(60)
		for i := 0; i < n; i++ {
			start := int64(rng.Intn(10_000))
			end := start + int64(rng.Intn(500))
			id := fmt.Sprintf("ev-%d", i)
			mustInsert(t, linear, Record{id, start, end})
			mustInsert(t, tree, Record{id, start, end})
		}

		for q := 0; q < 40; q++ {
			qs := int64(rng.Intn(10_500))
			qe := qs + int64(rng.Intn(600))
			want := linear.Query(qs, qe)
			got := tree.Query(qs, qe)
			if !sameSet(got, want) {
				t.Fatalf("trial %d: Query(%d, %d): tree %v != linear %v", trial, qs, qe, got, want)
			}
		}
	}
}

func TestTreeLen(t *testing.T) {
	tree := NewTree()
	mustInsert(t, tree, Record{"a", 0, 10})
	mustInsert(t, tree, Record{"b", 5, 15})
	if tree.Len() != 2 {
		t.Errorf("Len() = %d, want 2", tree.Len())
	}
	tree.Clear()
	if tree.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", tree.Len())
	}
}

func mustInsert(t *testing.T, idx Index, r Record) {
	t.Helper()
	if err := idx.Insert(r.ID, r.Start, r.End); err != nil {
		t.Fatalf("Insert(%v) = %v", r, err)
	}
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := slices.Clone(a)
	bs := slices.Clone(b)
	slices.Sort(as)
	slices.Sort(bs)
	return slices.Equal(as, bs)
}
