package cocache

import "github.com/unkn0wn-root/cocache/internal/util"

// Key returns the canonical string form of a collection key: strings as is,
// numbers in decimal form, string-keyed maps and structs as JSON. Map keys
// are serialized sorted, so two maps with the same entries always produce
// the same key. Struct keys list every field, unexported ones included, in
// declaration order.
//
// ok is false when v has no canonical form.
func Key(v any) (key string, ok bool) {
	return util.CanonicalKey(v)
}

// KeyOr is Key with a fallback: when v has no canonical form, the fallback
// is canonicalized instead.
func KeyOr(v, fallback any) (string, bool) {
	if k, ok := util.CanonicalKey(v); ok {
		return k, true
	}
	return util.CanonicalKey(fallback)
}
