package persist

import (
	"encoding"
	"fmt"
	"reflect"

	"github.com/goliatone/go-persist/store"
)

// Save writes instance's persisted members into the subtree rooted at root.
// Members whose current value is absent are left untouched; container
// subtrees are cleared before rewriting so stale indices from a previously
// longer collection never survive. Save never fails by contract.
func (l *Loader) Save(instance any, root store.DataKey) {
	v := reflect.ValueOf(instance)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		l.logger().LogDiagnostic(DiagnosticEvent{
			Op:  "save",
			Err: fmt.Errorf("persist: save source must be a struct, got %T", instance),
		})
		return
	}
	for _, d := range l.schemas.membersOf(v.Type(), l.registry, l.logger()) {
		l.saveMember(v, d, root)
	}
	if hook, ok := instance.(Persistable); ok {
		hook.SaveTo(root)
	}
}

func (l *Loader) saveMember(source reflect.Value, d memberDescriptor, root store.DataKey) {
	field := source.FieldByIndex(d.index)
	if valueAbsent(field) {
		return
	}
	switch d.kind {
	case kindList, kindIntArray, kindFloatArray, kindDoubleArray:
		root.RemoveKey(d.key)
		for i := 0; i < field.Len(); i++ {
			l.saveValue(d, root.GetRelative(indexedKey(d.key, i)), field.Index(i).Interface())
		}
	case kindSet:
		root.RemoveKey(d.key)
		for i, element := range field.MapKeys() {
			l.saveValue(d, root.GetRelative(indexedKey(d.key, i)), element.Interface())
		}
	case kindMap:
		root.RemoveKey(d.key)
		iter := field.MapRange()
		for iter.Next() {
			key := relativeKey(d.key, iter.Key().String())
			l.saveValue(d, root.GetRelative(key), iter.Value().Interface())
		}
	default:
		l.saveValue(d, root.GetRelative(d.key), field.Interface())
	}
}

// saveValue writes one value into a subtree: delegate capability first, then
// symbolic text for enum-like types, then the raw value as-is.
func (l *Loader) saveValue(d memberDescriptor, node store.DataKey, value any) {
	if persister := l.delegateFor(d); persister != nil {
		persister.Save(value, node)
		return
	}
	if marshaler, ok := value.(encoding.TextMarshaler); ok {
		if text, err := marshaler.MarshalText(); err == nil {
			node.SetRaw("", string(text))
			return
		}
	}
	node.SetRaw("", value)
}

func valueAbsent(field reflect.Value) bool {
	switch field.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return field.IsNil()
	}
	return false
}
