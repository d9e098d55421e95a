package cocache

import (
	"slices"

	"github.com/unkn0wn-root/cocache/internal/pmap"
)

type recordMap = pmap.Map[any]

// upsert writes every prepared record into b and returns the result.
func upsert(b *pmap.Builder[any], ps []prepared) recordMap {
	for _, p := range ps {
		b.Set(p.id, p.stored)
	}
	return b.Map()
}

// state is one immutable version of the cache. Both maps are persistent, so
// copying a state is cheap and never aliases mutable data.
type state struct {
	records     recordMap
	collections pmap.Map[[]string]
}

func emptyState() state {
	return state{
		records:     pmap.New[any](),
		collections: pmap.New[[]string](),
	}
}

// collection returns the id list stored under key; callers must not modify it.
func (s state) collection(key string) []string {
	ids, _ := s.collections.Get(key)
	return ids
}

// referenced returns every id mentioned by any collection.
func (s state) referenced() map[string]struct{} {
	out := make(map[string]struct{})
	s.collections.Range(func(_ string, ids []string) bool {
		for _, id := range ids {
			out[id] = struct{}{}
		}
		return true
	})
	return out
}

// history is the append-only list of committed states. The last element is
// always the current state. It is never pruned.
type history struct {
	snapshots []state
}

func newHistory(initial state) history {
	return history{snapshots: []state{initial}}
}

func (h *history) push(s state) { h.snapshots = append(h.snapshots, s) }

func (h *history) len() int { return len(h.snapshots) }

// back returns the state steps positions before the current one.
func (h *history) back(steps int) (state, error) {
	idx := len(h.snapshots) - 1 - steps
	if idx < 0 {
		return state{}, &HistoryRangeError{Steps: steps, Available: len(h.snapshots) - 1}
	}
	return h.snapshots[idx], nil
}

func equalIDs(a, b []string) bool { return slices.Equal(a, b) }
