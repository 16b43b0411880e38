// Package fieldpath resolves dotted key paths such as "user.address.city"
// against nested maps, slices and structs.
//
// A missing segment never fails: Lookup reports false and Get returns nil.
package fieldpath

import (
	"reflect"
	"strconv"
	"strings"
)

// Separator splits a path into segments.
const Separator = "."

// Get returns the value at path, or nil when any segment is absent.
func Get(v any, path string) any {
	out, _ := Lookup(v, path)
	return out
}

// Lookup walks path through v. An empty path returns v itself.
//
// Maps are indexed by key (any map whose key kind is string), slices and
// arrays by decimal index, structs by field name or by the name given in a
// json tag. Pointers and interfaces are dereferenced along the way.
func Lookup(v any, path string) (any, bool) {
	if path == "" {
		return v, v != nil
	}
	cur := v
	for _, seg := range strings.Split(path, Separator) {
		next, ok := step(cur, seg)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

func step(v any, seg string) (any, bool) {
	switch typed := v.(type) {
	case nil:
		return nil, false
	case map[string]any:
		out, ok := typed[seg]
		return out, ok
	case []any:
		idx, err := strconv.Atoi(seg)
		if err != nil || idx < 0 || idx >= len(typed) {
			return nil, false
		}
		return typed[idx], true
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		key := reflect.ValueOf(seg).Convert(rv.Type().Key())
		out := rv.MapIndex(key)
		if !out.IsValid() {
			return nil, false
		}
		return out.Interface(), true
	case reflect.Slice, reflect.Array:
		idx, err := strconv.Atoi(seg)
		if err != nil || idx < 0 || idx >= rv.Len() {
			return nil, false
		}
		return rv.Index(idx).Interface(), true
	case reflect.Struct:
		field, ok := structField(rv, seg)
		if !ok {
			return nil, false
		}
		return field.Interface(), true
	}
	return nil, false
}

func structField(rv reflect.Value, name string) (reflect.Value, bool) {
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if tag, _, _ := strings.Cut(f.Tag.Get("json"), ","); tag != "" && tag != "-" {
			if tag == name {
				return rv.Field(i), true
			}
			continue
		}
		if f.Name == name {
			return rv.Field(i), true
		}
	}
	return reflect.Value{}, false
}
