package fields

import "reflect"

// MergeDefined returns a copy of dst where every defined (non-nil, see Undefiner) field of src overwrites the field of
// the same name. Nested structs merge recursively and are cloned before being written, so dst
// is never modified through shared pointers. src may be a different struct type: fields are
// matched by Go name and skipped when dst has no assignable counterpart.
func MergeDefined[T any](dst T, src any) T {
	out := dst
	dv := reflect.ValueOf(&out).Elem()
	sv := deref(reflect.ValueOf(src))
	if dv.Kind() != reflect.Struct || !sv.IsValid() || sv.Kind() != reflect.Struct {
		return out
	}
	mergeStruct(dv, sv)
	return out
}

func mergeStruct(dst, src reflect.Value) {
	st := src.Type()
	for i := 0; i < st.NumField(); i++ {
		sf := st.Field(i)
		if !sf.IsExported() {
			continue
		}
		sv := src.Field(i)
		if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
			mergeStruct(dst, sv)
			continue
		}
		df := dst.FieldByName(sf.Name)
		if !df.IsValid() || !df.CanSet() {
			continue
		}
		switch sv.Kind() {
		case reflect.Ptr:
			if isUndefined(sv) {
				continue
			}
			if df.Kind() == reflect.Ptr && isBranch(sv.Type().Elem()) && isBranch(df.Type().Elem()) {
				clone := reflect.New(df.Type().Elem())
				if !df.IsNil() {
					clone.Elem().Set(df.Elem())
				}
				mergeStruct(clone.Elem(), sv.Elem())
				df.Set(clone)
				continue
			}
			if sv.Type().AssignableTo(df.Type()) {
				df.Set(sv)
			}
		case reflect.Slice, reflect.Map, reflect.Interface:
			if sv.IsNil() {
				continue
			}
			if sv.Type().AssignableTo(df.Type()) {
				df.Set(sv)
			}
		}
	}
}
