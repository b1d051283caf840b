package schedule

import "sort"

// =============================================================================
// LOAD MAP - Hours already committed per calendar day
// =============================================================================

// LoadMap accumulates the hours committed to each day across successive
// distributor calls, so activities scheduled in sequence never overlap
// capacity. It is built fresh per planning recomputation and discarded after.
//
// The map is deliberately unsynchronized: the distributor assumes exclusive,
// sequential mutation (distribute activity A to completion, then B). A host
// that parallelizes scheduling across activities sharing a LoadMap must
// serialize the Distribute calls itself.
type LoadMap struct {
	hours map[string]Hours
}

func NewLoadMap() *LoadMap {
	return &LoadMap{hours: make(map[string]Hours)}
}

// LoadMapFrom builds a LoadMap from stored per-day hours.
func LoadMapFrom(hours map[string]Hours) *LoadMap {
	lm := NewLoadMap()
	for key, h := range hours {
		lm.hours[key] = h
	}
	return lm
}

// Get returns the committed hours for a day key (zero when absent).
func (lm *LoadMap) Get(key string) Hours {
	return lm.hours[key]
}

// Add commits additional hours to a day.
func (lm *LoadMap) Add(key string, h Hours) {
	lm.hours[key] = lm.hours[key].Add(h)
}

// Remaining returns the spare capacity on a day, floored at zero. A day
// already loaded past capacity (caller bug, see OverfullDays) reports zero
// rather than negative spare.
func (lm *LoadMap) Remaining(key string, capacity Hours) Hours {
	return capacity.Sub(lm.hours[key]).Max(ZeroHours())
}

// IsFull reports whether a day has at most Epsilon spare capacity. The
// tolerance is inclusive: a residual of exactly Epsilon still counts as full.
func (lm *LoadMap) IsFull(key string, capacity Hours) bool {
	return lm.Remaining(key, capacity).LessThanOrEqual(Epsilon)
}

// OverfullDays returns the day keys whose committed hours exceed capacity
// beyond tolerance. The distributor never produces these itself; a non-empty
// result indicates pre-existing inconsistent data and is surfaced as a
// warning, not an error.
func (lm *LoadMap) OverfullDays(capacity Hours) []string {
	var days []string
	limit := capacity.Add(Epsilon)
	for key, h := range lm.hours {
		if h.GreaterThan(limit) {
			days = append(days, key)
		}
	}
	sort.Strings(days)
	return days
}

// Keys returns all day keys in calendar order.
func (lm *LoadMap) Keys() []string {
	keys := make([]string, 0, len(lm.hours))
	for key := range lm.hours {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot copies the underlying map for persistence or inspection.
func (lm *LoadMap) Snapshot() map[string]Hours {
	out := make(map[string]Hours, len(lm.hours))
	for key, h := range lm.hours {
		out[key] = h
	}
	return out
}

func (lm *LoadMap) Len() int { return len(lm.hours) }
