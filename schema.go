package persist

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

const tagName = "persist"

type memberKind int

const (
	kindScalar memberKind = iota
	kindList
	kindSet
	kindMap
	kindIntArray
	kindFloatArray
	kindDoubleArray
)

func (k memberKind) String() string {
	switch k {
	case kindList:
		return "list"
	case kindSet:
		return "set"
	case kindMap:
		return "map"
	case kindIntArray:
		return "int-array"
	case kindFloatArray:
		return "float-array"
	case kindDoubleArray:
		return "double-array"
	}
	return "scalar"
}

// memberDescriptor is the resolved schema entry for one persisted member.
type memberDescriptor struct {
	key          string
	required     bool
	reify        bool
	delegateName string
	delegate     Persister
	index        []int
	typ          reflect.Type
	elem         reflect.Type
	kind         memberKind
}

// elementType returns the declared type coercion targets: the element type
// for containers, the member type otherwise.
func (d memberDescriptor) elementType() reflect.Type {
	if d.elem != nil {
		return d.elem
	}
	return d.typ
}

type schemaCache struct {
	mu      sync.RWMutex
	entries map[reflect.Type][]memberDescriptor
}

func newSchemaCache() *schemaCache {
	return &schemaCache{entries: map[reflect.Type][]memberDescriptor{}}
}

// membersOf returns the cached descriptor list for a struct type, computing
// it on first request. Members whose explicitly named capability failed to
// load are discarded at discovery, as are members the engine cannot access.
func (c *schemaCache) membersOf(t reflect.Type, registry *Registry, logger DiagnosticLogger) []memberDescriptor {
	c.mu.RLock()
	members, ok := c.entries[t]
	c.mu.RUnlock()
	if ok {
		return members
	}

	members = collectMembers(t, nil, registry, logger)
	c.mu.Lock()
	c.entries[t] = members
	c.mu.Unlock()
	return members
}

func (c *schemaCache) reset() {
	c.mu.Lock()
	c.entries = map[reflect.Type][]memberDescriptor{}
	c.mu.Unlock()
}

func collectMembers(t reflect.Type, prefix []int, registry *Registry, logger DiagnosticLogger) []memberDescriptor {
	var members []memberDescriptor
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		index := append(append([]int{}, prefix...), i)

		tag, tagged := field.Tag.Lookup(tagName)
		if !tagged {
			// Embedded structs contribute their own tagged members, the
			// ancestor-chain walk of the schema.
			if field.Anonymous && field.Type.Kind() == reflect.Struct {
				members = append(members, collectMembers(field.Type, index, registry, logger)...)
			}
			continue
		}
		if field.PkgPath != "" {
			logger.LogDiagnostic(DiagnosticEvent{
				Op:   "discover",
				Key:  field.Name,
				Type: t.String(),
				Err:  fmt.Errorf("persist: member %s.%s is unexported", t, field.Name),
			})
			continue
		}

		descriptor := parseDescriptor(field, index, tag)
		if descriptor.delegateName != "" && !descriptor.reify {
			persister, ok := registry.resolve(descriptor.delegateName)
			if !ok {
				// Capability couldn't be loaded; the member can't be
				// deserialised at all.
				logger.LogDiagnostic(DiagnosticEvent{
					Op:   "discover",
					Key:  descriptor.key,
					Type: t.String(),
					Err:  fmt.Errorf("persist: capability %q unavailable", descriptor.delegateName),
				})
				continue
			}
			descriptor.delegate = persister
		}
		members = append(members, descriptor)
	}
	return members
}

func parseDescriptor(field reflect.StructField, index []int, tag string) memberDescriptor {
	descriptor := memberDescriptor{
		index: index,
		typ:   field.Type,
	}
	parts := strings.Split(tag, ",")
	descriptor.key = parts[0]
	if descriptor.key == "" {
		descriptor.key = field.Name
	}
	for _, part := range parts[1:] {
		switch {
		case part == "required":
			descriptor.required = true
		case part == "reify":
			descriptor.reify = true
		case strings.HasPrefix(part, "delegate="):
			descriptor.delegateName = strings.TrimPrefix(part, "delegate=")
		}
	}

	switch field.Type.Kind() {
	case reflect.Slice:
		switch field.Type.Elem().Kind() {
		case reflect.Int:
			descriptor.kind = kindIntArray
		case reflect.Float32:
			descriptor.kind = kindFloatArray
		case reflect.Float64:
			descriptor.kind = kindDoubleArray
		default:
			descriptor.kind = kindList
		}
		descriptor.elem = field.Type.Elem()
	case reflect.Map:
		if field.Type.Elem() == reflect.TypeOf(struct{}{}) {
			descriptor.kind = kindSet
			descriptor.elem = field.Type.Key()
		} else {
			descriptor.kind = kindMap
			descriptor.elem = field.Type.Elem()
		}
	default:
		descriptor.kind = kindScalar
	}
	return descriptor
}
