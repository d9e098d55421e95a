package util

import (
	"encoding"
	"encoding/json"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// maxKeyDepth bounds nesting so self-referencing keys fail instead of
// recursing forever.
const maxKeyDepth = 32

var (
	jsonMarshaler = reflect.TypeFor[json.Marshaler]()
	textMarshaler = reflect.TypeFor[encoding.TextMarshaler]()
)

// CanonicalKey returns the deterministic string form of a collection key.
//
//   - string            -> itself
//   - integer and float -> decimal form
//   - string-keyed map  -> JSON-like object, keys sorted
//   - struct / *struct  -> JSON-like object, every field (exported or not)
//     in declaration order, named by its json tag or Go name
//
// Nested values may also be bools, slices, arrays, pointers and interfaces.
// Values implementing json.Marshaler or encoding.TextMarshaler (time.Time)
// use that form. Anything else has no canonical form and reports ok=false.
func CanonicalKey(v any) (string, bool) {
	switch k := v.(type) {
	case nil:
		return "", false
	case string:
		return k, true
	case int:
		return strconv.Itoa(k), true
	case int64:
		return strconv.FormatInt(k, 10), true
	case uint64:
		return strconv.FormatUint(k, 10), true
	case float64:
		return strconv.FormatFloat(k, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(k), 'f', -1, 32), true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10), true
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), true
	case reflect.String:
		return rv.String(), true
	case reflect.Map:
		if rv.IsNil() || rv.Type().Key().Kind() != reflect.String {
			return "", false
		}
		return encodeKey(rv)
	case reflect.Struct:
		return encodeKey(rv)
	case reflect.Pointer:
		if rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
			return "", false
		}
		return encodeKey(rv.Elem())
	default:
		return "", false
	}
}

func encodeKey(rv reflect.Value) (string, bool) {
	var sb strings.Builder
	if !writeValue(&sb, rv, 0) {
		return "", false
	}
	return sb.String(), true
}

func writeValue(sb *strings.Builder, rv reflect.Value, depth int) bool {
	if depth > maxKeyDepth {
		return false
	}
	if rv.CanInterface() && (rv.Type().Implements(jsonMarshaler) || rv.Type().Implements(textMarshaler)) {
		if rv.Kind() == reflect.Pointer && rv.IsNil() {
			sb.WriteString("null")
			return true
		}
		b, err := json.Marshal(rv.Interface())
		if err != nil {
			return false
		}
		sb.Write(b)
		return true
	}

	switch rv.Kind() {
	case reflect.String:
		writeString(sb, rv.String())
	case reflect.Bool:
		sb.WriteString(strconv.FormatBool(rv.Bool()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		sb.WriteString(strconv.FormatInt(rv.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		sb.WriteString(strconv.FormatUint(rv.Uint(), 10))
	case reflect.Float32, reflect.Float64:
		sb.WriteString(strconv.FormatFloat(rv.Float(), 'f', -1, 64))
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			sb.WriteString("null")
			return true
		}
		return writeValue(sb, rv.Elem(), depth+1)
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			sb.WriteString("null")
			return true
		}
		sb.WriteByte('[')
		for i := 0; i < rv.Len(); i++ {
			if i > 0 {
				sb.WriteByte(',')
			}
			if !writeValue(sb, rv.Index(i), depth+1) {
				return false
			}
		}
		sb.WriteByte(']')
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return false
		}
		if rv.IsNil() {
			sb.WriteString("null")
			return true
		}
		keys := rv.MapKeys()
		slices.SortFunc(keys, func(a, b reflect.Value) int { return strings.Compare(a.String(), b.String()) })
		sb.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeString(sb, k.String())
			sb.WriteByte(':')
			if !writeValue(sb, rv.MapIndex(k), depth+1) {
				return false
			}
		}
		sb.WriteByte('}')
	case reflect.Struct:
		t := rv.Type()
		sb.WriteByte('{')
		for i := 0; i < t.NumField(); i++ {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeString(sb, fieldName(t.Field(i)))
			sb.WriteByte(':')
			if !writeValue(sb, rv.Field(i), depth+1) {
				return false
			}
		}
		sb.WriteByte('}')
	default:
		// func, chan, complex, unsafe.Pointer
		return false
	}
	return true
}

// fieldName prefers the json tag name. Fields tagged "-" keep their Go name:
// every field takes part in the key.
func fieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

func writeString(sb *strings.Builder, s string) {
	b, _ := json.Marshal(s)
	sb.Write(b)
}
