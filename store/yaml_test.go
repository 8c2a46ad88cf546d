package store

import (
	"os"
	"path/filepath"
	"testing"
)

func TestYamlStorageRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "npcs.yml")
	storage := NewYamlStorage(path)

	root := NewMemoryKey()
	root.SetRaw("npc.name", "guard")
	root.SetRaw("npc.health", 19.5)
	root.SetRaw("npc.alive", true)
	root.SetRaw("npc.waypoints.0", "spawn")
	root.SetRaw("npc.waypoints.1", "gate")

	if err := storage.Save(root); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}

	loaded, err := storage.Load()
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if got := loaded.GetString("npc.name", ""); got != "guard" {
		t.Fatalf("npc.name = %q, want guard", got)
	}
	if got := loaded.GetDouble("npc.health", 0); got != 19.5 {
		t.Fatalf("npc.health = %v, want 19.5", got)
	}
	if got := loaded.GetBool("npc.alive", false); !got {
		t.Fatalf("npc.alive = %v, want true", got)
	}
	subs := loaded.GetRelative("npc.waypoints").GetIntegerSubKeys()
	if len(subs) != 2 || subs[0].GetRaw("") != "spawn" || subs[1].GetRaw("") != "gate" {
		t.Fatalf("waypoints did not survive the round trip: %v", subs)
	}
}

func TestYamlStorageMissingFile(t *testing.T) {
	storage := NewYamlStorage(filepath.Join(t.TempDir(), "absent.yml"))
	root, err := storage.Load()
	if err != nil {
		t.Fatalf("missing file should load as an empty tree, got %v", err)
	}
	if len(root.GetSubKeys()) != 0 {
		t.Fatalf("expected empty tree")
	}
}

func TestYamlStorageSequencesBecomeIndexedChildren(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.yml")
	payload := []byte("items:\n  - a\n  - b\nmeta:\n  kind: test\n")
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("unexpected write error: %v", err)
	}

	root, err := NewYamlStorage(path).Load()
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	subs := root.GetRelative("items").GetIntegerSubKeys()
	if len(subs) != 2 || subs[0].GetRaw("") != "a" || subs[1].GetRaw("") != "b" {
		t.Fatalf("sequence was not expanded to integer children: %v", subs)
	}
	if got := root.GetString("meta.kind", ""); got != "test" {
		t.Fatalf("meta.kind = %q, want test", got)
	}
}

func TestYamlStorageRejectsForeignTrees(t *testing.T) {
	storage := NewYamlStorage(filepath.Join(t.TempDir(), "x.yml"))
	if err := storage.Save(fakeKey{}); err == nil {
		t.Fatalf("expected non-memory trees to be rejected")
	}
}

type fakeKey struct{}

func (fakeKey) Name() string                      { return "" }
func (fakeKey) GetRaw(string) any                 { return nil }
func (fakeKey) SetRaw(string, any)                {}
func (fakeKey) RemoveKey(string)                  {}
func (fakeKey) GetRelative(string) DataKey        { return fakeKey{} }
func (fakeKey) GetSubKeys() []DataKey             { return nil }
func (fakeKey) GetIntegerSubKeys() []DataKey      { return nil }
func (fakeKey) KeyExists(string) bool             { return false }
func (fakeKey) GetBool(string, bool) bool         { return false }
func (fakeKey) GetInt(string, int) int            { return 0 }
func (fakeKey) GetDouble(string, float64) float64 { return 0 }
func (fakeKey) GetString(string, string) string   { return "" }
