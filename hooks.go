package cocache

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking; they run synchronously,
// outside the cache lock.
type Hooks interface {
	// A commit installed new state. historyLen includes the initial snapshot.
	// op ∈ {"add", "add_to_collection", "set_collection", "unshift", "remove", "clear", "rollback"}
	Committed(cache, op string, historyLen int)

	// A record was rejected before insertion; the whole operation was aborted.
	RecordRejected(cache, id string, err error)

	// A collection replacement discarded n orphaned records.
	OrphansSwept(cache, collection string, n int)

	// Rollback went back steps snapshots. changed=false when the target state
	// equals the current one.
	RolledBack(cache string, steps int, changed bool)

	// A transaction worker failed and steps snapshots were unwound.
	TransactionAborted(cache string, steps int, err error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) Committed(string, string, int)         {}
func (NopHooks) RecordRejected(string, string, error)  {}
func (NopHooks) OrphansSwept(string, string, int)      {}
func (NopHooks) RolledBack(string, int, bool)          {}
func (NopHooks) TransactionAborted(string, int, error) {}
