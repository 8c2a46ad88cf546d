package store

import (
	"sort"
	"strconv"
	"strings"
)

type memNode struct {
	value    any
	children map[string]*memNode
}

func (n *memNode) child(name string, create bool) *memNode {
	if n.children == nil {
		if !create {
			return nil
		}
		n.children = map[string]*memNode{}
	}
	child, ok := n.children[name]
	if !ok {
		if !create {
			return nil
		}
		child = &memNode{}
		n.children[name] = child
	}
	return child
}

// MemoryKey is an in-memory DataKey backed by a tree of nested nodes. All
// views returned by GetRelative share the same underlying tree; a view for a
// path that does not exist yet materializes its nodes on first write.
type MemoryKey struct {
	root *memNode
	path []string
}

// NewMemoryKey returns an empty in-memory tree rooted at "".
func NewMemoryKey() *MemoryKey {
	return &MemoryKey{root: &memNode{}}
}

func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	parts := strings.Split(path, ".")
	out := parts[:0]
	for _, part := range parts {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (k *MemoryKey) resolve(path string, create bool) *memNode {
	node := k.root
	for _, segment := range k.path {
		if node = node.child(segment, create); node == nil {
			return nil
		}
	}
	for _, segment := range splitPath(path) {
		if node = node.child(segment, create); node == nil {
			return nil
		}
	}
	return node
}

// Name returns the view's own leaf name.
func (k *MemoryKey) Name() string {
	if len(k.path) == 0 {
		return ""
	}
	return k.path[len(k.path)-1]
}

// GetRaw returns the value stored at path, or nil when absent.
func (k *MemoryKey) GetRaw(path string) any {
	node := k.resolve(path, false)
	if node == nil {
		return nil
	}
	return node.value
}

// SetRaw stores value at path, creating intermediate nodes.
func (k *MemoryKey) SetRaw(path string, value any) {
	k.resolve(path, true).value = value
}

// RemoveKey deletes the subtree at path.
func (k *MemoryKey) RemoveKey(path string) {
	segments := append(append([]string{}, k.path...), splitPath(path)...)
	if len(segments) == 0 {
		k.root.value = nil
		k.root.children = nil
		return
	}
	parent := k.root
	for _, segment := range segments[:len(segments)-1] {
		if parent = parent.child(segment, false); parent == nil {
			return
		}
	}
	delete(parent.children, segments[len(segments)-1])
}

// GetRelative returns a lazily-materializing view rooted at path.
func (k *MemoryKey) GetRelative(path string) DataKey {
	return &MemoryKey{
		root: k.root,
		path: append(append([]string{}, k.path...), splitPath(path)...),
	}
}

// GetSubKeys returns child views ordered by name.
func (k *MemoryKey) GetSubKeys() []DataKey {
	node := k.resolve("", false)
	if node == nil || len(node.children) == 0 {
		return nil
	}
	names := make([]string, 0, len(node.children))
	for name := range node.children {
		names = append(names, name)
	}
	sort.Strings(names)
	keys := make([]DataKey, 0, len(names))
	for _, name := range names {
		keys = append(keys, k.GetRelative(name))
	}
	return keys
}

// GetIntegerSubKeys returns children with non-negative integer names in
// ascending numeric order.
func (k *MemoryKey) GetIntegerSubKeys() []DataKey {
	node := k.resolve("", false)
	if node == nil {
		return nil
	}
	indices := make([]int, 0, len(node.children))
	for name := range node.children {
		idx, err := strconv.Atoi(name)
		if err != nil || idx < 0 {
			continue
		}
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	keys := make([]DataKey, 0, len(indices))
	for _, idx := range indices {
		keys = append(keys, k.GetRelative(strconv.Itoa(idx)))
	}
	return keys
}

// KeyExists reports whether path holds a value or children.
func (k *MemoryKey) KeyExists(path string) bool {
	node := k.resolve(path, false)
	return node != nil && (node.value != nil || len(node.children) > 0)
}

// GetBool returns the boolean at path, or def when absent or mistyped.
func (k *MemoryKey) GetBool(path string, def bool) bool {
	if v, ok := k.GetRaw(path).(bool); ok {
		return v
	}
	return def
}

// GetInt returns the integer at path, converting stored numeric kinds.
func (k *MemoryKey) GetInt(path string, def int) int {
	switch v := k.GetRaw(path).(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case float32:
		return int(v)
	case string:
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

// GetDouble returns the float at path, converting stored numeric kinds.
func (k *MemoryKey) GetDouble(path string, def float64) float64 {
	switch v := k.GetRaw(path).(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return def
}

// GetString returns the string at path, or def when absent or mistyped.
func (k *MemoryKey) GetString(path string, def string) string {
	if v, ok := k.GetRaw(path).(string); ok {
		return v
	}
	return def
}
