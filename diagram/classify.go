// Load classification shared by the two diagram types.
//
// Entities are ranked descending by their user+sys time; an entity at
// 0-based rank i out of n is "top" when i < 3% of n, "high" when i < 10%,
// "medium" when i < 20%, else unclassified.  With 100 entities that puts
// ranks 0-2 at top, 3-9 at high, 10-19 at medium.

package diagram

import "sort"

type Class int

const (
	ClassNone Class = iota
	ClassMedium
	ClassHigh
	ClassTop
)

// Color returns the attribute value used in diagram nodes.

func (c Class) Color() string {
	switch c {
	case ClassTop:
		return "red"
	case ClassHigh:
		return "orange"
	case ClassMedium:
		return "yellow"
	default:
		return ""
	}
}

type Load struct {
	ID   int     // caller's identifier, opaque here
	Time float64 // user+sys seconds
}

// ClassifyLoads assigns a class to every entity; unclassified entities are
// absent from the result.  The input slice is reordered.

func ClassifyLoads(loads []Load) map[int]Class {
	sort.SliceStable(loads, func(i, j int) bool {
		return loads[i].Time > loads[j].Time
	})
	classes := make(map[int]Class)
	n := float64(len(loads))
	for i, l := range loads {
		switch {
		case float64(i) < n*0.03:
			classes[l.ID] = ClassTop
		case float64(i) < n*0.10:
			classes[l.ID] = ClassHigh
		case float64(i) < n*0.20:
			classes[l.ID] = ClassMedium
		}
	}
	return classes
}
