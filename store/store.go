// Package store defines the hierarchical key-value tree consumed by the
// persistence engine, plus in-memory and YAML-backed implementations.
package store

// DataKey is an addressable point in a hierarchical key-value tree. Leaves
// hold scalar values; interior nodes hold named children. Paths are dotted
// relative paths; the empty path addresses the node itself.
//
// GetRelative never fails for paths that do not exist yet: it returns a
// lazily-materializing view whose subtree is only created on first write.
type DataKey interface {
	// Name returns the node's own leaf name relative to its parent. The
	// root node has an empty name.
	Name() string

	// GetRaw returns the stored value at the relative path, or nil when
	// nothing is stored there.
	GetRaw(path string) any

	// SetRaw stores value at the relative path, materializing intermediate
	// nodes as needed.
	SetRaw(path string, value any)

	// RemoveKey deletes the value and the entire subtree at the relative
	// path.
	RemoveKey(path string)

	// GetRelative returns a view rooted at the relative path.
	GetRelative(path string) DataKey

	// GetSubKeys returns this node's children ordered by name.
	GetSubKeys() []DataKey

	// GetIntegerSubKeys returns the children whose names parse as
	// non-negative integers, in ascending numeric order.
	GetIntegerSubKeys() []DataKey

	// KeyExists reports whether the relative path holds a value or any
	// children.
	KeyExists(path string) bool

	GetBool(path string, def bool) bool
	GetInt(path string, def int) int
	GetDouble(path string, def float64) float64
	GetString(path string, def string) string
}
