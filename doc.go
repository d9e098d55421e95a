// Package cocache implements an in-process, normalized object cache with
// undo. Records are stored once, by id; collections reference them through
// ordered id lists; every observed change appends an immutable snapshot to a
// linear history so the cache can be rolled back, step by step or as a whole
// transaction.
//
// Components:
//   - Record store: id -> stored (frozen) record. Single source of truth.
//   - Collection index: canonical key -> ordered id list (duplicates kept).
//   - History: append-only snapshots of both, structurally shared.
//   - Retention set: ids added directly with Add. They survive orphan sweeps.
//
// Commit rule: a mutation installs new state, appends a snapshot and fires
// OnChange only when the candidate state differs structurally from the
// current one. Re-adding an equal record is a no-op.
//
// Collection keys:
//
//	"inbox"                          -> "inbox"
//	42                               -> "42"
//	map[string]any{"courseId": "1"}  -> `{"courseId":"1"}`
//
// Usage:
//
//	c, _ := cocache.New[Slide](cocache.Options[Slide]{DisplayName: "slides"})
//	_, _ = c.SetCollection(map[string]any{"courseId": "1"}, slides)
//	err := c.Transaction(ctx, func(ctx context.Context) error {
//	    if _, err := c.Add(draft); err != nil {
//	        return err
//	    }
//	    return api.Save(ctx, draft) // failure unwinds the Add
//	})
package cocache
