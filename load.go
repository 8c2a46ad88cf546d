package persist

import (
	"encoding"
	"fmt"
	"reflect"

	"github.com/goliatone/go-persist/store"
)

var textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()

// Load populates instance, a non-nil struct pointer, from the store subtree
// rooted at root. Members resolve in schema order; a required member with no
// stored value aborts the whole load with ErrMissingRequired and the caller
// must discard the instance. Incompatible values are discarded silently.
func (l *Loader) Load(instance any, root store.DataKey) error {
	v := reflect.ValueOf(instance)
	if !v.IsValid() || v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("persist: load target must be a non-nil struct pointer, got %T", instance)
	}
	target := v.Elem()

	trace := l.beginTrace(target.Type())
	defer trace.finish()

	for _, d := range l.schemas.membersOf(target.Type(), l.registry, l.logger()) {
		outcome, err := l.loadMember(target, d, root)
		trace.add(d, outcome, err)
		if err != nil {
			return wrapPersistError("load", d.key, target.Type(), err)
		}
	}
	if hook, ok := instance.(Persistable); ok {
		hook.LoadFrom(root)
	}
	return nil
}

// LoadType constructs a fresh instance of the struct type t and loads it.
// It returns nil on any aborting failure so no partially-populated instance
// is observable.
func (l *Loader) LoadType(t reflect.Type, root store.DataKey) (any, error) {
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("persist: cannot load non-struct type %s", describeType(t))
	}
	ptr := reflect.New(t)
	if err := l.Load(ptr.Interface(), root); err != nil {
		return nil, err
	}
	return ptr.Interface(), nil
}

func (l *Loader) loadMember(target reflect.Value, d memberDescriptor, root store.DataKey) (coercionOutcome, error) {
	field := target.FieldByIndex(d.index)
	var value any
	switch d.kind {
	case kindList:
		value = l.loadList(d, root)
	case kindSet:
		value = l.loadSet(d, root)
	case kindMap:
		loaded, err := l.loadMap(field, d, root)
		if err != nil {
			return coercionAbsent, err
		}
		value = loaded
	case kindIntArray, kindFloatArray, kindDoubleArray:
		value = loadNumericArray(d, root)
	default:
		value = l.loadValue(d, root.GetRelative(d.key))
	}
	if value == nil && d.required {
		return coercionAbsent, ErrMissingRequired
	}
	return assignScalar(field, value), nil
}

// loadList adopts a structurally-compatible stored slice verbatim, otherwise
// rebuilds the slice from indexed children in ascending numeric order.
func (l *Loader) loadList(d memberDescriptor, root store.DataKey) any {
	if raw := root.GetRaw(d.key); raw != nil && reflect.TypeOf(raw).AssignableTo(d.typ) {
		return raw
	}
	list := reflect.MakeSlice(d.typ, 0, 0)
	for _, sub := range root.GetRelative(d.key).GetIntegerSubKeys() {
		element, ok := l.loadElement(d, sub)
		if !ok {
			continue
		}
		list = reflect.Append(list, reflect.ValueOf(element))
	}
	return list.Interface()
}

func (l *Loader) loadSet(d memberDescriptor, root store.DataKey) any {
	if raw := root.GetRaw(d.key); raw != nil && reflect.TypeOf(raw).AssignableTo(d.typ) {
		return raw
	}
	set := reflect.MakeMap(d.typ)
	empty := reflect.ValueOf(struct{}{})
	for _, sub := range root.GetRelative(d.key).GetIntegerSubKeys() {
		element, ok := l.loadElement(d, sub)
		if !ok {
			continue
		}
		set.SetMapIndex(reflect.ValueOf(element), empty)
	}
	return set.Interface()
}

// loadMap reuses a concrete map instance already held by the member,
// mutating it in place; otherwise a fresh map is constructed. Child names
// become map keys.
func (l *Loader) loadMap(field reflect.Value, d memberDescriptor, root store.DataKey) (any, error) {
	if d.typ.Key().Kind() != reflect.String {
		return nil, ErrShapeMismatch
	}
	target := field
	if field.IsNil() {
		target = reflect.MakeMap(d.typ)
	}
	for _, sub := range root.GetRelative(d.key).GetSubKeys() {
		element, ok := l.loadElement(d, sub)
		if !ok {
			continue
		}
		key := reflect.ValueOf(sub.Name()).Convert(d.typ.Key())
		target.SetMapIndex(key, reflect.ValueOf(element))
	}
	return target.Interface(), nil
}

func loadNumericArray(d memberDescriptor, root store.DataKey) any {
	subs := root.GetRelative(d.key).GetIntegerSubKeys()
	out := reflect.MakeSlice(d.typ, len(subs), len(subs))
	for i, sub := range subs {
		if d.kind == kindIntArray {
			out.Index(i).SetInt(int64(sub.GetInt("", 0)))
		} else {
			out.Index(i).SetFloat(sub.GetDouble("", 0))
		}
	}
	return out.Interface()
}

func (l *Loader) loadElement(d memberDescriptor, node store.DataKey) (any, bool) {
	return coerceElement(d.elem, l.loadValue(d, node))
}

// loadValue resolves a single value from a subtree: delegate capability
// first, then text-unmarshalling for enum-like types, then the raw leaf.
func (l *Loader) loadValue(d memberDescriptor, node store.DataKey) any {
	if persister := l.delegateFor(d); persister != nil {
		value, err := persister.Create(node)
		if err != nil {
			l.logger().LogDiagnostic(DiagnosticEvent{
				Op:   "load",
				Key:  d.key,
				Type: describeType(d.typ),
				Err:  err,
			})
			return nil
		}
		return value
	}
	raw := node.GetRaw("")
	if target := d.elementType(); implementsTextUnmarshaler(target) {
		if text, ok := raw.(string); ok {
			if parsed, ok := unmarshalText(target, text); ok {
				return parsed
			}
			// Unrecognized symbolic name: fall through so assignment
			// discards the raw text and the member keeps its default.
		}
	}
	return raw
}

// delegateFor resolves the capability for a member: the reify flag forces
// generic recursive handling, an explicit per-member delegate wins over
// redirects, and the redirect table covers the declared element type.
func (l *Loader) delegateFor(d memberDescriptor) Persister {
	if d.reify {
		return genericPersister{loader: l, typ: d.elementType()}
	}
	if d.delegate != nil {
		return d.delegate
	}
	return l.registry.redirectFor(d.elementType())
}

// genericPersister recurses into nested persistable objects using the
// owning loader.
type genericPersister struct {
	loader *Loader
	typ    reflect.Type
}

func (g genericPersister) Create(root store.DataKey) (any, error) {
	base := g.typ
	wantPtr := false
	if base.Kind() == reflect.Pointer {
		base = base.Elem()
		wantPtr = true
	}
	instance, err := g.loader.LoadType(base, root)
	if err != nil || instance == nil {
		// A failed nested load resolves to no value for the enclosing
		// member; the member's own required flag decides what happens.
		return nil, nil
	}
	if wantPtr {
		return instance, nil
	}
	return reflect.ValueOf(instance).Elem().Interface(), nil
}

func (g genericPersister) Save(value any, root store.DataKey) {
	g.loader.Save(value, root)
}

func implementsTextUnmarshaler(t reflect.Type) bool {
	return t != nil && t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(textUnmarshalerType)
}

func unmarshalText(t reflect.Type, text string) (any, bool) {
	ptr := reflect.New(t)
	if err := ptr.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(text)); err != nil {
		return nil, false
	}
	return ptr.Elem().Interface(), true
}
