package cocache

import "github.com/puzpuzpuz/xsync/v3"

// retention holds the ids inserted directly with Add. Membership exempts a
// record from orphan sweeps; it says nothing about presence in the store.
// It is not part of snapshots, so rollback leaves it alone.
type retention struct {
	ids *xsync.MapOf[string, struct{}]
}

func newRetention() *retention {
	return &retention{ids: xsync.NewMapOf[string, struct{}]()}
}

func (r *retention) add(id string)    { r.ids.Store(id, struct{}{}) }
func (r *retention) remove(id string) { r.ids.Delete(id) }
func (r *retention) clear()           { r.ids.Clear() }

func (r *retention) has(id string) bool {
	_, ok := r.ids.Load(id)
	return ok
}
