package persist

import "reflect"

// coercionOutcome distinguishes how a resolved value was applied to a member
// so the engine core stays exception-free. Load collapses these into the
// silent best-effort contract; the trace recorder exposes them.
type coercionOutcome int

const (
	coercionApplied coercionOutcome = iota
	coercionSkipped
	coercionAbsent
)

func (o coercionOutcome) String() string {
	switch o {
	case coercionApplied:
		return "applied"
	case coercionSkipped:
		return "skipped"
	case coercionAbsent:
		return "absent"
	}
	return "unknown"
}

// widening maps a source kind to the target kinds it may flow into. Pairs
// outside the table leave the member unchanged rather than failing; float64
// to float32 narrows via standard floating truncation. Sources not listed
// (int64, unsigned kinds) require plain assignability.
var widening = map[reflect.Kind][]reflect.Kind{
	reflect.Int:     {reflect.Int, reflect.Int64, reflect.Float64, reflect.Float32},
	reflect.Int8:    {reflect.Int8, reflect.Int16, reflect.Int, reflect.Int64, reflect.Float64, reflect.Float32},
	reflect.Int16:   {reflect.Int16, reflect.Int, reflect.Int64, reflect.Float64, reflect.Float32},
	reflect.Int32:   {reflect.Int32, reflect.Int16, reflect.Int, reflect.Int64, reflect.Float64, reflect.Float32},
	reflect.Float32: {reflect.Float32, reflect.Float64},
	reflect.Float64: {reflect.Float64, reflect.Float32},
	reflect.Bool:    {reflect.Bool},
}

func isScalarKind(kind reflect.Kind) bool {
	switch kind {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func widensTo(src, dst reflect.Kind) bool {
	for _, allowed := range widening[src] {
		if allowed == dst {
			return true
		}
	}
	return false
}

// assignScalar writes value into field when the widening table or plain
// assignability permits it. Incompatible values are discarded silently,
// leaving the field at its prior value.
func assignScalar(field reflect.Value, value any) coercionOutcome {
	if value == nil {
		return coercionAbsent
	}
	rv := reflect.ValueOf(value)
	target := field.Type()

	if !isScalarKind(target.Kind()) {
		if rv.Type().AssignableTo(target) {
			field.Set(rv)
			return coercionApplied
		}
		if target.Kind() == reflect.String && rv.Kind() == reflect.String && !implementsTextUnmarshaler(target) {
			field.Set(rv.Convert(target))
			return coercionApplied
		}
		return coercionSkipped
	}

	if _, known := widening[rv.Kind()]; !known {
		if rv.Type().AssignableTo(target) {
			field.Set(rv)
			return coercionApplied
		}
		if rv.Kind() == target.Kind() && rv.Type().ConvertibleTo(target) {
			field.Set(rv.Convert(target))
			return coercionApplied
		}
		return coercionSkipped
	}

	if !widensTo(rv.Kind(), target.Kind()) {
		return coercionSkipped
	}
	field.Set(rv.Convert(target))
	return coercionApplied
}

// coerceElement applies the same widening table against a container's
// declared element type. The second return reports whether the value should
// be kept.
func coerceElement(declared reflect.Type, value any) (any, bool) {
	if value == nil {
		return nil, false
	}
	if declared == nil || declared.Kind() == reflect.Interface {
		return value, true
	}
	rv := reflect.ValueOf(value)
	if rv.Type().AssignableTo(declared) {
		return value, true
	}
	if isScalarKind(declared.Kind()) && widensTo(rv.Kind(), declared.Kind()) {
		return rv.Convert(declared).Interface(), true
	}
	if declared.Kind() == reflect.String && rv.Kind() == reflect.String && !implementsTextUnmarshaler(declared) {
		return rv.Convert(declared).Interface(), true
	}
	return nil, false
}
