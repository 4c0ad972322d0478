package evaluation

import (
	"math"
	"reflect"
)

// sanitizeFloats replaces NaN and ±Inf with 0 in every float reachable
// from v, which must be a non-nil pointer. Report values are then always
// JSON encodable.
func sanitizeFloats(v any) {
	sanitizeValue(reflect.ValueOf(v))
}

func sanitizeValue(v reflect.Value) {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if !v.IsNil() {
			sanitizeValue(v.Elem())
		}
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if v.Type().Field(i).IsExported() {
				sanitizeValue(v.Field(i))
			}
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			sanitizeValue(v.Index(i))
		}
	case reflect.Map:
		// Map elements are not addressable: sanitize a copy and store it back.
		for _, k := range v.MapKeys() {
			elem := reflect.New(v.Type().Elem()).Elem()
			elem.Set(v.MapIndex(k))
			sanitizeValue(elem)
			v.SetMapIndex(k, elem)
		}
	case reflect.Float32, reflect.Float64:
		if v.CanSet() && (math.IsNaN(v.Float()) || math.IsInf(v.Float(), 0)) {
			v.SetFloat(0)
		}
	}
}
