// Package fields walks document snapshot structs by their JSON field names.
//
// Snapshots model "not set" as nil: every optional field is a pointer, slice, map or nested
// struct pointer. Nested struct pointers are branches, everything else is a leaf. Types that
// decode themselves from JSON (dates) are leaves even when they are structs.
package fields

import (
	"encoding/json"
	"reflect"
	"sort"
	"strings"
	"time"
)

// Path is a dotted JSON field path such as "transporter.transport.plates".
type Path string

func Join(prefix Path, name string) Path {
	if prefix == "" {
		return Path(name)
	}
	return Path(string(prefix) + "." + name)
}

func (p Path) Segments() []string {
	if p == "" {
		return nil
	}
	return strings.Split(string(p), ".")
}

// Covers reports whether p is other or one of its ancestors.
func (p Path) Covers(other Path) bool {
	return p == other || strings.HasPrefix(string(other), string(p)+".")
}

// Undefiner is implemented by leaf values that can hold "no value" behind a non-nil pointer,
// such as a date decoded from an empty string. They count as nil.
type Undefiner interface {
	Undefined() bool
}

func isUndefined(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	if (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) && v.IsNil() {
		return true
	}
	if !v.CanInterface() {
		return false
	}
	u, ok := v.Interface().(Undefiner)
	return ok && u.Undefined()
}

var (
	unmarshalerType = reflect.TypeOf((*json.Unmarshaler)(nil)).Elem()
	marshalerType   = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
	timeType        = reflect.TypeOf(time.Time{})
)

func isLeafStruct(t reflect.Type) bool {
	return t == timeType || reflect.PointerTo(t).Implements(unmarshalerType)
}

func isBranch(t reflect.Type) bool {
	return t.Kind() == reflect.Struct && !isLeafStruct(t)
}

func jsonName(f reflect.StructField) string {
	if !f.IsExported() {
		return ""
	}
	tag := f.Tag.Get("json")
	if tag == "-" {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		name = f.Name
	}
	return name
}

// Schema lists every leaf path of the struct type t, sorted.
func Schema(t reflect.Type) []Path {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	var out []Path
	collect(t, "", &out)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func collect(t reflect.Type, prefix Path, out *[]Path) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			collect(f.Type, prefix, out)
			continue
		}
		name := jsonName(f)
		if name == "" {
			continue
		}
		path := Join(prefix, name)
		ft := f.Type
		if ft.Kind() == reflect.Ptr && isBranch(ft.Elem()) {
			collect(ft.Elem(), path, out)
			continue
		}
		*out = append(*out, path)
	}
}

// Known reports whether p names a leaf or a branch of schema.
func Known(schema []Path, p Path) bool {
	for _, leaf := range schema {
		if p.Covers(leaf) {
			return true
		}
	}
	return false
}

// Lookup returns the value at p in v with pointers dereferenced. ok is false when any
// segment is unknown or nil.
func Lookup(v any, p Path) (reflect.Value, bool) {
	cur := reflect.ValueOf(v)
	for _, seg := range p.Segments() {
		cur = deref(cur)
		if !cur.IsValid() || cur.Kind() != reflect.Struct {
			return reflect.Value{}, false
		}
		cur = fieldByJSONName(cur, seg)
	}
	cur = deref(cur)
	if isUndefined(cur) {
		return reflect.Value{}, false
	}
	if (cur.Kind() == reflect.Slice || cur.Kind() == reflect.Map) && cur.IsNil() {
		return reflect.Value{}, false
	}
	return cur, true
}

func deref(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func fieldByJSONName(v reflect.Value, name string) reflect.Value {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			if inner := fieldByJSONName(v.Field(i), name); inner.IsValid() {
				return inner
			}
			continue
		}
		if jsonName(f) == name {
			return v.Field(i)
		}
	}
	return reflect.Value{}
}
