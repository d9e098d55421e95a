package cocache

import (
	"fmt"
	"reflect"

	"github.com/google/go-cmp/cmp"
	"github.com/huandu/go-clone"
)

const defaultDisplayName = "<<anonymous>>"

// coalesce returns def when v is the zero value of T - otherwise v.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}

// defaultIDs reads ids from Identified records and from the "id" attribute of
// map records.
type defaultIDs[R any] struct{}

func (defaultIDs[R]) RecordID(record R) string {
	switch r := any(record).(type) {
	case Identified:
		return r.CacheID()
	case map[string]any:
		id, _ := r["id"].(string)
		return id
	case map[string]string:
		return r["id"]
	default:
		return ""
	}
}

// deepCopy stores a private deep copy of each record and hands out a fresh
// copy on every read, so neither the caller's value nor a returned record
// aliases the store or any snapshot. Unexported fields are copied too.
type deepCopy[R any] struct{}

func (deepCopy[R]) Freeze(record R) (any, error) {
	return clone.Clone(any(record)), nil
}

func (deepCopy[R]) Thaw(stored any) (R, error) {
	var zero R
	if stored == nil {
		return zero, nil
	}
	r, ok := clone.Clone(stored).(R)
	if !ok {
		return zero, fmt.Errorf("cocache: stored value is %T, not %T", stored, zero)
	}
	return r, nil
}

var allFields = cmp.Exporter(func(reflect.Type) bool { return true })

func deepEqual(a, b any) bool {
	return cmp.Equal(a, b, allFields)
}
