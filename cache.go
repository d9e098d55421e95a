package cocache

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
)

// Cache is a normalized record cache with linear undo history. A Cache is
// safe for concurrent use; every operation runs to completion under one lock.
type Cache[R any] struct {
	name       string
	validators []Validator[R]
	ids        IDExtractor[R]
	freezer    Freezer[R]
	equal      func(a, b any) bool
	onChange   func()
	log        Logger
	hooks      Hooks

	mu       sync.Mutex
	cur      state
	hist     history
	retained *retention

	openTx atomic.Int32
}

// New builds an empty cache whose history holds the initial empty state.
func New[R any](opts Options[R]) (*Cache[R], error) {
	for i, v := range opts.Validators {
		if v == nil {
			return nil, fmt.Errorf("cocache: validator %d is nil", i)
		}
	}

	c := &Cache[R]{
		name:       coalesce(opts.DisplayName, defaultDisplayName),
		validators: slices.Clone(opts.Validators),
		onChange:   opts.OnChange,
		cur:        emptyState(),
		retained:   newRetention(),
	}
	c.hist = newHistory(c.cur)

	// defaults
	c.ids = coalesce[IDExtractor[R]](opts.IDExtractor, defaultIDs[R]{})
	c.freezer = coalesce[Freezer[R]](opts.Freezer, deepCopy[R]{})
	c.log = coalesce[Logger](opts.Logger, NopLogger{})
	c.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	if opts.Equal != nil {
		c.equal = opts.Equal
	} else {
		c.equal = deepEqual
	}
	return c, nil
}

// DisplayName returns the name used in errors and logs.
func (c *Cache[R]) DisplayName() string { return c.name }

// Add inserts a record or replaces the stored version with the same id, and
// exempts the id from orphan sweeps until it is removed. It reports whether
// the store changed: a new id, or different contents under Equal.
//
// A record added this way is not part of any collection until one
// references it.
func (c *Cache[R]) Add(record R) (bool, error) {
	p, err := c.prepare(record, -1)
	if err != nil {
		return false, err
	}
	return c.update("add", func(cur state) (state, fields, error) {
		c.retained.add(p.id)
		cur.records = cur.records.Set(p.id, p.stored)
		return cur, fieldRecords, nil
	})
}

// Get returns the record stored under id. ok is false when the id is
// unknown.
func (c *Cache[R]) Get(id string) (record R, ok bool, err error) {
	c.mu.Lock()
	stored, ok := c.cur.records.Get(id)
	c.mu.Unlock()
	if !ok {
		return record, false, nil
	}
	record, err = c.freezer.Thaw(stored)
	if err != nil {
		return record, false, fmt.Errorf("cocache[%s]: thaw %q: %w", c.name, id, err)
	}
	return record, true, nil
}

// Remove forgets id as directly added, deletes its record and strips every
// reference to it from every collection. It reports whether a record was
// found.
func (c *Cache[R]) Remove(id string) (bool, error) {
	return c.update("remove", func(cur state) (state, fields, error) {
		c.retained.remove(id)
		if !cur.records.Has(id) {
			return cur, 0, nil
		}
		cur.records = cur.records.Delete(id)

		cols := cur.collections.Builder()
		cur.collections.Range(func(key string, ids []string) bool {
			if slices.Contains(ids, id) {
				cols.Set(key, slices.DeleteFunc(slices.Clone(ids), func(x string) bool { return x == id }))
			}
			return true
		})
		cur.collections = cols.Map()
		return cur, fieldAll, nil
	})
}

// Clear drops every record, collection and retention entry in one step.
func (c *Cache[R]) Clear() (bool, error) {
	return c.update("clear", func(state) (state, fields, error) {
		c.retained.clear()
		return emptyState(), fieldAll, nil
	})
}

// IsEmpty reports whether no record is stored.
func (c *Cache[R]) IsEmpty() bool { return c.Len() == 0 }

// Len returns the number of stored records.
func (c *Cache[R]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cur.records.Len()
}

// AddToCollection upserts records and appends their ids, in order, to the
// collection under key. Duplicates are kept.
func (c *Cache[R]) AddToCollection(key any, records []R) (bool, error) {
	k, err := c.collectionKey("add_to_collection", key)
	if err != nil {
		return false, err
	}
	ps, err := c.prepareAll(records)
	if err != nil {
		return false, err
	}
	return c.update("add_to_collection", func(cur state) (state, fields, error) {
		cur.records = upsert(cur.records.Builder(), ps)
		ids := append(slices.Clone(cur.collection(k)), idsOf(ps)...)
		cur.collections = cur.collections.Set(k, ids)
		return cur, fieldAll, nil
	})
}

// SetCollection upserts records and replaces the collection under key with
// exactly their ids. Records that end up referenced by no collection and
// were never added directly are discarded.
func (c *Cache[R]) SetCollection(key any, records []R) (bool, error) {
	k, err := c.collectionKey("set_collection", key)
	if err != nil {
		return false, err
	}
	ps, err := c.prepareAll(records)
	if err != nil {
		return false, err
	}
	return c.replace("set_collection", k, ps, false)
}

// UnshiftInCollection upserts records and puts their ids in front of the
// collection under key, then replaces the collection as SetCollection does.
// It commits once, so a single Rollback undoes it.
func (c *Cache[R]) UnshiftInCollection(key any, records ...R) (bool, error) {
	k, err := c.collectionKey("unshift", key)
	if err != nil {
		return false, err
	}
	ps, err := c.prepareAll(records)
	if err != nil {
		return false, err
	}
	return c.replace("unshift", k, ps, true)
}

func (c *Cache[R]) replace(op, key string, ps []prepared, keepExisting bool) (bool, error) {
	swept := 0
	changed, err := c.update(op, func(cur state) (state, fields, error) {
		ids := idsOf(ps)
		if keepExisting {
			ids = append(ids, cur.collection(key)...)
		}
		cur.collections = cur.collections.Set(key, ids)
		cur.records, swept = c.sweep(upsert(cur.records.Builder(), ps), cur)
		return cur, fieldAll, nil
	})
	if changed && swept > 0 {
		c.log.Debug("orphans swept", Fields{"cache": c.name, "collection": key, "count": swept})
		c.hooks.OrphansSwept(c.name, key, swept)
	}
	return changed, err
}

// sweep drops records that are neither retained nor referenced by any
// collection of s.
func (c *Cache[R]) sweep(records recordMap, s state) (recordMap, int) {
	refs := s.referenced()
	b := records.Builder()
	n := 0
	records.Range(func(id string, _ any) bool {
		if _, ok := refs[id]; !ok && !c.retained.has(id) {
			b.Delete(id)
			n++
		}
		return true
	})
	if n == 0 {
		return records, 0
	}
	return b.Map(), n
}

// GetCollection returns the records referenced by the collection under key,
// in order. Ids with no stored record are skipped.
func (c *Cache[R]) GetCollection(key any) ([]R, error) {
	k, err := c.collectionKey("get_collection", key)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	s := c.cur
	c.mu.Unlock()

	ids := s.collection(k)
	out := make([]R, 0, len(ids))
	for _, id := range ids {
		stored, ok := s.records.Get(id)
		if !ok {
			continue
		}
		r, err := c.freezer.Thaw(stored)
		if err != nil {
			return nil, fmt.Errorf("cocache[%s]: thaw %q: %w", c.name, id, err)
		}
		out = append(out, r)
	}
	return out, nil
}

// CollectionIDs returns a copy of the raw id list under key, including ids
// that have no stored record.
func (c *Cache[R]) CollectionIDs(key any) ([]string, error) {
	k, err := c.collectionKey("collection_ids", key)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.cur.collection(k)), nil
}

// HistoryLen returns the number of recorded snapshots, the initial empty
// state included.
func (c *Cache[R]) HistoryLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hist.len()
}

// Rollback restores the state steps commits back; steps < 1 means 1. The
// restore is itself a commit: it appends a snapshot and fires OnChange
// unless the target equals the current state. Going back further than the
// history returns a *HistoryRangeError and changes nothing.
func (c *Cache[R]) Rollback(steps int) (bool, error) {
	steps = max(steps, 1)
	changed, err := c.update("rollback", func(state) (state, fields, error) {
		target, err := c.hist.back(steps)
		return target, fieldAll, err
	})
	if err != nil {
		return false, err
	}
	c.log.Info("rolled back", Fields{"cache": c.name, "steps": steps, "changed": changed})
	c.hooks.RolledBack(c.name, steps, changed)
	return changed, nil
}

// Transaction runs worker. If it fails, every snapshot recorded since the
// call started is unwound with one Rollback and the worker's error is
// returned. Writes by other goroutines in the meantime are unwound too.
// Transactions do not nest.
func (c *Cache[R]) Transaction(ctx context.Context, worker func(ctx context.Context) error) error {
	if worker == nil {
		return fmt.Errorf("cocache[%s]: nil transaction worker", c.name)
	}
	if c.openTx.Add(1) > 1 {
		c.log.Warn("transaction opened while another is in progress", Fields{"cache": c.name})
	}
	defer c.openTx.Add(-1)

	cursor := c.HistoryLen()
	werr := worker(ctx)
	if werr == nil {
		return nil
	}

	steps := c.HistoryLen() - cursor
	c.log.Warn("transaction failed; rolling back", Fields{"cache": c.name, "steps": steps, "err": werr})
	c.hooks.TransactionAborted(c.name, steps, werr)
	if steps == 0 {
		return werr
	}
	if _, err := c.Rollback(steps); err != nil {
		return errors.Join(werr, err)
	}
	return werr
}

func (c *Cache[R]) collectionKey(op string, key any) (string, error) {
	k, ok := Key(key)
	if !ok {
		return "", &ShapeError{Cache: c.name, Op: op, Key: key}
	}
	return k, nil
}
