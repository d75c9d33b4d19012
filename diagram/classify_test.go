package diagram

import "testing"

func TestClassifyBoundaries(t *testing.T) {
	// With exactly 100 ranked entities: ranks 0-2 top, 3-9 high, 10-19
	// medium, 20 and up unclassified.  Times descend with the index so the
	// rank equals the ID.
	loads := make([]Load, 100)
	for i := range loads {
		loads[i] = Load{ID: i, Time: float64(1000 - i)}
	}
	classes := ClassifyLoads(loads)

	tests := []struct {
		rank int
		want Class
	}{
		{0, ClassTop},
		{2, ClassTop},
		{3, ClassHigh},
		{9, ClassHigh},
		{10, ClassMedium},
		{19, ClassMedium},
		{20, ClassNone},
		{99, ClassNone},
	}
	for _, tc := range tests {
		if got := classes[tc.rank]; got != tc.want {
			t.Errorf("Rank %d: expected %v, got %v", tc.rank, tc.want, got)
		}
	}
}

func TestClassifySingleton(t *testing.T) {
	classes := ClassifyLoads([]Load{{ID: 7, Time: 1}})
	if classes[7] != ClassTop {
		t.Errorf("A single entity is the top of its distribution")
	}
}

func TestClassifyUnsortedInput(t *testing.T) {
	classes := ClassifyLoads([]Load{
		{ID: 1, Time: 5},
		{ID: 2, Time: 50},
		{ID: 3, Time: 500},
	})
	if classes[3] != ClassTop {
		t.Errorf("Heaviest entity must be top, got %v", classes[3])
	}
}

func TestClassColors(t *testing.T) {
	if ClassTop.Color() == "" || ClassHigh.Color() == "" || ClassMedium.Color() == "" {
		t.Errorf("Classified entities must have a color")
	}
	if ClassNone.Color() != "" {
		t.Errorf("Unclassified entities must have no color")
	}
}
