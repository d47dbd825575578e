package registry

import (
	"reflect"
	"sort"
)

// MissingMethods lists the methods of iface that v does not provide with a
// compatible signature. It returns nil when iface is not an interface type.
func MissingMethods(iface reflect.Type, v any) []string {
	if iface == nil || iface.Kind() != reflect.Interface {
		return nil
	}
	if v == nil {
		names := make([]string, 0, iface.NumMethod())
		for i := 0; i < iface.NumMethod(); i++ {
			names = append(names, iface.Method(i).Name)
		}
		return names
	}

	vt := reflect.TypeOf(v)
	var missing []string
	for i := 0; i < iface.NumMethod(); i++ {
		want := iface.Method(i)
		got, ok := vt.MethodByName(want.Name)
		if !ok {
			missing = append(missing, want.Name)
			continue
		}
		// got.Type includes the receiver as the first input
		if !sameSignature(want.Type, got.Type) {
			missing = append(missing, want.Name+" (signature mismatch)")
		}
	}
	sort.Strings(missing)
	return missing
}

func sameSignature(want, got reflect.Type) bool {
	if got.NumIn()-1 != want.NumIn() || got.NumOut() != want.NumOut() {
		return false
	}
	if got.IsVariadic() != want.IsVariadic() {
		return false
	}
	for i := 0; i < want.NumIn(); i++ {
		if want.In(i) != got.In(i+1) {
			return false
		}
	}
	for i := 0; i < want.NumOut(); i++ {
		if want.Out(i) != got.Out(i) {
			return false
		}
	}
	return true
}
