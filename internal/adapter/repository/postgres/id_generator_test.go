package postgres

import (
	"sort"
	"testing"
)

func TestULIDGenerator(t *testing.T) {
	gen := NewULIDGenerator()

	const n = 1000

	ids := make([]string, n)
	seen := make(map[string]bool, n)

	for i := range ids {
		id := gen.Generate()

		if len(id) != 26 {
			t.Fatalf("ULID length = %d, want 26", len(id))
		}

		if seen[id] {
			t.Fatalf("duplicate ID %s", id)
		}

		seen[id] = true
		ids[i] = id
	}

	// Monotonic entropy keeps generation order and sort order aligned.
	if !sort.StringsAreSorted(ids) {
		t.Error("IDs are not monotonically increasing")
	}
}
