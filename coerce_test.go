package persist

import (
	"reflect"
	"testing"
)

type coercionTarget struct {
	B   bool
	I   int
	I8  int8
	I16 int16
	I32 int32
	I64 int64
	F32 float32
	F64 float64
	S   string
}

func fieldOf(t *testing.T, target *coercionTarget, name string) reflect.Value {
	t.Helper()
	field := reflect.ValueOf(target).Elem().FieldByName(name)
	if !field.IsValid() {
		t.Fatalf("no field %q on coercionTarget", name)
	}
	return field
}

func TestWideningTablePairs(t *testing.T) {
	cases := []struct {
		name    string
		value   any
		field   string
		outcome coercionOutcome
	}{
		{"int to int", int(7), "I", coercionApplied},
		{"int to int64", int(7), "I64", coercionApplied},
		{"int to float64", int(7), "F64", coercionApplied},
		{"int to float32", int(7), "F32", coercionApplied},
		{"int to int16 narrows rejected", int(7), "I16", coercionSkipped},
		{"int to int8 narrows rejected", int(7), "I8", coercionSkipped},
		{"float32 to float32", float32(1.5), "F32", coercionApplied},
		{"float32 to float64", float32(1.5), "F64", coercionApplied},
		{"float32 to int rejected", float32(1.5), "I", coercionSkipped},
		{"float64 to float64", float64(2.5), "F64", coercionApplied},
		{"float64 to float32 narrows", float64(2.5), "F32", coercionApplied},
		{"float64 to int rejected", float64(2.5), "I", coercionSkipped},
		{"float64 to int64 rejected", float64(2.5), "I64", coercionSkipped},
		{"int8 to int16", int8(3), "I16", coercionApplied},
		{"int8 to int", int8(3), "I", coercionApplied},
		{"int8 to int64", int8(3), "I64", coercionApplied},
		{"int8 to float64", int8(3), "F64", coercionApplied},
		{"int16 to int", int16(4), "I", coercionApplied},
		{"int16 to int8 rejected", int16(4), "I8", coercionSkipped},
		{"int32 to int16", int32(5), "I16", coercionApplied},
		{"int32 to int32", int32(5), "I32", coercionApplied},
		{"int32 to float32", int32(5), "F32", coercionApplied},
		{"int32 to int8 rejected", int32(5), "I8", coercionSkipped},
		{"bool to bool", true, "B", coercionApplied},
		{"bool to int rejected", true, "I", coercionSkipped},
		{"string to int rejected", "7", "I", coercionSkipped},
		{"string to string", "hello", "S", coercionApplied},
		{"int64 to int64 assignable", int64(9), "I64", coercionApplied},
		{"int64 to int rejected", int64(9), "I", coercionSkipped},
		{"nil is absent", nil, "I", coercionAbsent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var target coercionTarget
			field := fieldOf(t, &target, tc.field)
			before := field.Interface()
			outcome := assignScalar(field, tc.value)
			if outcome != tc.outcome {
				t.Fatalf("assignScalar(%v) outcome = %s, want %s", tc.value, outcome, tc.outcome)
			}
			if outcome != coercionApplied && !reflect.DeepEqual(field.Interface(), before) {
				t.Fatalf("rejected assignment mutated field: %v -> %v", before, field.Interface())
			}
		})
	}
}

func TestWideningPreservesNumericValue(t *testing.T) {
	var target coercionTarget
	if outcome := assignScalar(fieldOf(t, &target, "F64"), int(42)); outcome != coercionApplied {
		t.Fatalf("expected int to float64 to apply, got %s", outcome)
	}
	if target.F64 != 42 {
		t.Fatalf("int widened to float64 = %v, want 42", target.F64)
	}
}

func TestDoubleToFloatTruncates(t *testing.T) {
	var target coercionTarget
	source := float64(1.23456789012345)
	if outcome := assignScalar(fieldOf(t, &target, "F32"), source); outcome != coercionApplied {
		t.Fatalf("expected float64 to float32 to apply, got %s", outcome)
	}
	if target.F32 != float32(source) {
		t.Fatalf("float64 narrowed to %v, want %v", target.F32, float32(source))
	}
}

func TestAssignScalarNamedTypes(t *testing.T) {
	type level int
	type label string
	target := struct {
		L level
		S label
	}{}
	value := reflect.ValueOf(&target).Elem()

	if outcome := assignScalar(value.Field(0), int(3)); outcome != coercionApplied {
		t.Fatalf("expected int into named int type to apply, got %s", outcome)
	}
	if target.L != 3 {
		t.Fatalf("named int member = %v, want 3", target.L)
	}
	if outcome := assignScalar(value.Field(1), "tag"); outcome != coercionApplied {
		t.Fatalf("expected string into named string type to apply, got %s", outcome)
	}
	if target.S != "tag" {
		t.Fatalf("named string member = %q, want tag", target.S)
	}
}

func TestCoerceElement(t *testing.T) {
	anyType := reflect.TypeOf((*any)(nil)).Elem()
	if v, ok := coerceElement(anyType, "raw"); !ok || v != "raw" {
		t.Fatalf("any element should pass through, got %v ok=%v", v, ok)
	}
	if v, ok := coerceElement(reflect.TypeOf(float64(0)), int(3)); !ok || v != float64(3) {
		t.Fatalf("int element should widen to float64, got %v ok=%v", v, ok)
	}
	if _, ok := coerceElement(reflect.TypeOf(int(0)), float64(3)); ok {
		t.Fatalf("float64 element must not narrow to int")
	}
	if _, ok := coerceElement(reflect.TypeOf(int(0)), nil); ok {
		t.Fatalf("nil element should be dropped")
	}
	if v, ok := coerceElement(reflect.TypeOf(""), "x"); !ok || v != "x" {
		t.Fatalf("string element should pass through, got %v ok=%v", v, ok)
	}
}
