package orderkey

import (
	"sort"
	"testing"
)

func TestBetween(t *testing.T) {
	tests := []struct {
		name    string
		prev    string
		next    string
		wantErr bool
	}{
		{name: "both empty"},
		{name: "after only", prev: "i"},
		{name: "before only", next: "i"},
		{name: "wide gap", prev: "a", next: "z"},
		{name: "adjacent digits", prev: "i", next: "j"},
		{name: "prefix pair", prev: "i", next: "i1"},
		{name: "reversed bounds", prev: "j", next: "i", wantErr: true},
		{name: "equal bounds", prev: "i", next: "i", wantErr: true},
		{name: "bad character", prev: "A", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Between(tt.prev, tt.next)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Between(%q, %q): expected error, got %q", tt.prev, tt.next, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Between(%q, %q): unexpected error %v", tt.prev, tt.next, err)
			}
			if tt.prev != "" && got <= tt.prev {
				t.Errorf("Between(%q, %q) = %q, not after prev", tt.prev, tt.next, got)
			}
			if tt.next != "" && got >= tt.next {
				t.Errorf("Between(%q, %q) = %q, not before next", tt.prev, tt.next, got)
			}
		})
	}
}

// Repeated insertion at arbitrary positions must always produce a strict
// total order with no duplicate keys, well past a thousand insertions.
func TestBetweenSequentialInsertions(t *testing.T) {
	keys := make([]string, 0, 1001)
	first, err := Between("", "")
	if err != nil {
		t.Fatalf("initial key: %v", err)
	}
	keys = append(keys, first)

	for i := 0; i < 1000; i++ {
		// Deterministic but uneven positions: front, back, and a moving
		// interior gap.
		pos := (i * 7) % (len(keys) + 1)

		prev, next := "", ""
		if pos > 0 {
			prev = keys[pos-1]
		}
		if pos < len(keys) {
			next = keys[pos]
		}

		key, err := Between(prev, next)
		if err != nil {
			t.Fatalf("insertion %d between %q and %q: %v", i, prev, next, err)
		}
		keys = append(keys[:pos], append([]string{key}, keys[pos:]...)...)
	}

	if !sort.StringsAreSorted(keys) {
		t.Fatal("keys are not in strictly ascending insertion order")
	}
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, dup := seen[k]; dup {
			t.Fatalf("duplicate key %q", k)
		}
		seen[k] = struct{}{}
	}
}

func TestKeys(t *testing.T) {
	for _, n := range []int{1, 2, 5, 100, 1000} {
		keys, err := Keys(n)
		if err != nil {
			t.Fatalf("Keys(%d): %v", n, err)
		}
		if len(keys) != n {
			t.Fatalf("Keys(%d) returned %d keys", n, len(keys))
		}
		for i := 1; i < n; i++ {
			if keys[i-1] >= keys[i] {
				t.Fatalf("Keys(%d): keys[%d]=%q not before keys[%d]=%q", n, i-1, keys[i-1], i, keys[i])
			}
		}
		// Rescaled keys must leave room on both sides of every key.
		if _, err := Between("", keys[0]); err != nil {
			t.Errorf("Keys(%d): no room before first key %q: %v", n, keys[0], err)
		}
		if _, err := Between(keys[n-1], ""); err != nil {
			t.Errorf("Keys(%d): no room after last key %q: %v", n, keys[n-1], err)
		}
	}

	if keys, err := Keys(0); err != nil || keys != nil {
		t.Errorf("Keys(0) = %v, %v; want nil, nil", keys, err)
	}
}

func TestNeedsRescale(t *testing.T) {
	if NeedsRescale("i") {
		t.Error("short key should not need rescale")
	}
	long := ""
	for len(long) <= MaxKeyLength {
		long += "i"
	}
	if !NeedsRescale(long) {
		t.Error("key beyond MaxKeyLength should need rescale")
	}
}
