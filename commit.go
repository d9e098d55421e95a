package cocache

// fields selects which parts of a candidate state a commit looks at. Parts
// not selected are carried over unchanged.
type fields uint8

const (
	fieldRecords fields = 1 << iota
	fieldCollections

	fieldAll = fieldRecords | fieldCollections
)

// mutation computes a candidate state from the current one. It runs under
// the cache lock.
type mutation func(cur state) (next state, f fields, err error)

// update is the single write path: it runs m, commits the result and, when
// something changed, fires hooks and OnChange after releasing the lock.
func (c *Cache[R]) update(op string, m mutation) (bool, error) {
	c.mu.Lock()
	next, f, err := m(c.cur)
	if err != nil {
		c.mu.Unlock()
		return false, err
	}
	changed := c.commitLocked(next, f)
	n := c.hist.len()
	c.mu.Unlock()

	if changed {
		c.log.Debug("commit", Fields{"cache": c.name, "op": op, "history": n})
		c.hooks.Committed(c.name, op, n)
		if c.onChange != nil {
			c.onChange()
		}
	}
	return changed, nil
}

// commitLocked installs the selected parts of next that differ structurally
// from the current state and appends one snapshot if anything was installed.
func (c *Cache[R]) commitLocked(next state, f fields) bool {
	changed := false
	if f&fieldRecords != 0 && !next.records.Equal(c.cur.records, c.equal) {
		c.cur.records = next.records
		changed = true
	}
	if f&fieldCollections != 0 && !next.collections.Equal(c.cur.collections, equalIDs) {
		c.cur.collections = next.collections
		changed = true
	}
	if changed {
		c.hist.push(c.cur)
	}
	return changed
}
