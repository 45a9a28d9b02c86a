package fields

import (
	"bytes"
	"encoding/json"
	"reflect"
	"sort"
)

// Diff returns the leaf paths where update carries a value that differs from current.
// Nil or undefined fields in update were not submitted and never count as changes.
func Diff(current, update any) []Path {
	var out []Path
	uv := deref(reflect.ValueOf(update))
	if !uv.IsValid() || uv.Kind() != reflect.Struct {
		return nil
	}
	diffStruct(deref(reflect.ValueOf(current)), uv, "", &out)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func diffStruct(cur, upd reflect.Value, prefix Path, out *[]Path) {
	ut := upd.Type()
	for i := 0; i < ut.NumField(); i++ {
		f := ut.Field(i)
		uf := upd.Field(i)
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			diffStruct(cur, uf, prefix, out)
			continue
		}
		name := jsonName(f)
		if name == "" {
			continue
		}
		var cf reflect.Value
		if cur.IsValid() {
			cf = fieldByJSONName(cur, name)
		}
		path := Join(prefix, name)
		switch uf.Kind() {
		case reflect.Ptr:
			if isUndefined(uf) {
				continue
			}
			if isBranch(uf.Type().Elem()) {
				diffStruct(deref(cf), uf.Elem(), path, out)
				continue
			}
		case reflect.Slice, reflect.Map, reflect.Interface:
			if uf.IsNil() {
				continue
			}
		}
		if !leafEqual(cf, uf) {
			*out = append(*out, path)
		}
	}
}

func leafEqual(cur, upd reflect.Value) bool {
	c, u := deref(cur), deref(upd)
	if !c.IsValid() || !u.IsValid() {
		return c.IsValid() == u.IsValid()
	}
	if (c.Kind() == reflect.Slice || c.Kind() == reflect.Map) && c.IsNil() {
		return false
	}
	if c.Type() != u.Type() {
		return false
	}
	if reflect.DeepEqual(c.Interface(), u.Interface()) {
		return true
	}
	// Values with their own wire form (dates) compare on that form so equal instants in
	// different locations are not reported.
	if reflect.PointerTo(c.Type()).Implements(marshalerType) || c.Type().Implements(marshalerType) {
		cb, cerr := json.Marshal(c.Interface())
		ub, uerr := json.Marshal(u.Interface())
		return cerr == nil && uerr == nil && bytes.Equal(cb, ub)
	}
	return false
}
