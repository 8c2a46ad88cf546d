package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// YamlStorage persists a DataKey tree to a YAML file. Mappings become child
// nodes, sequences become integer-named children, scalars become leaf values,
// so hand-written documents and engine-written trees share one layout.
type YamlStorage struct {
	path string
}

// NewYamlStorage returns storage bound to the given file path.
func NewYamlStorage(path string) *YamlStorage {
	return &YamlStorage{path: filepath.Clean(path)}
}

// Path returns the backing file path.
func (s *YamlStorage) Path() string {
	return s.path
}

// Load reads the backing file into a fresh in-memory tree. A missing file is
// treated as an empty tree to simplify first-run startup.
func (s *YamlStorage) Load() (DataKey, error) {
	key := NewMemoryKey()
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return key, nil
		}
		return nil, fmt.Errorf("store: read %s: %w", s.path, err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("store: decode %s: %w", s.path, err)
	}
	fillNode(key.root, doc)
	return key, nil
}

// Save writes the tree to the backing file. Only trees produced by this
// package can be saved; other DataKey implementations are rejected.
func (s *YamlStorage) Save(root DataKey) error {
	key, ok := root.(*MemoryKey)
	if !ok {
		return fmt.Errorf("store: cannot save %T to yaml storage", root)
	}
	node := key.resolve("", false)
	doc := map[string]any{}
	if node != nil {
		if out, ok := nodeToDoc(node).(map[string]any); ok {
			doc = out
		}
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", s.path, err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("store: write %s: %w", s.path, err)
	}
	return nil
}

func fillNode(node *memNode, value any) {
	switch typed := value.(type) {
	case map[string]any:
		for name, sub := range typed {
			fillNode(node.child(name, true), sub)
		}
	case map[any]any:
		for name, sub := range typed {
			fillNode(node.child(fmt.Sprint(name), true), sub)
		}
	case []any:
		for i, sub := range typed {
			fillNode(node.child(strconv.Itoa(i), true), sub)
		}
	default:
		node.value = typed
	}
}

func nodeToDoc(node *memNode) any {
	if len(node.children) == 0 {
		return node.value
	}
	out := make(map[string]any, len(node.children))
	names := make([]string, 0, len(node.children))
	for name := range node.children {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		out[name] = nodeToDoc(node.children[name])
	}
	return out
}
