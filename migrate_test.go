package persist

import (
	"strings"
	"testing"

	"github.com/goliatone/go-persist/store"
)

func TestMigratorRewritesValues(t *testing.T) {
	root := store.NewMemoryKey()
	root.SetRaw("level", 3)

	migrator := NewMigrator(WithRules(Rule{Path: "level", Expr: "value * 2"}))
	if err := migrator.Apply(root); err != nil {
		t.Fatalf("unexpected migration error: %v", err)
	}
	if got := root.GetInt("level", 0); got != 6 {
		t.Fatalf("level = %d, want 6", got)
	}
}

func TestMigratorWildcardSegments(t *testing.T) {
	root := store.NewMemoryKey()
	root.SetRaw("players.alice.score", 10)
	root.SetRaw("players.bob.score", 20)
	root.SetRaw("players.bob.name", "bob")

	migrator := NewMigrator(WithRules(Rule{Path: "players.*.score", Expr: "value + 1"}))
	if err := migrator.Apply(root); err != nil {
		t.Fatalf("unexpected migration error: %v", err)
	}
	if got := root.GetInt("players.alice.score", 0); got != 11 {
		t.Fatalf("alice score = %d, want 11", got)
	}
	if got := root.GetInt("players.bob.score", 0); got != 21 {
		t.Fatalf("bob score = %d, want 21", got)
	}
	if got := root.GetRaw("players.bob.name"); got != "bob" {
		t.Fatalf("unmatched sibling rewritten to %v", got)
	}
}

func TestMigratorBindsNameAndPath(t *testing.T) {
	root := store.NewMemoryKey()
	root.SetRaw("npcs.7.kind", "guard")

	migrator := NewMigrator(WithRules(Rule{Path: "npcs.*.kind", Expr: `path + ":" + name + ":" + value`}))
	if err := migrator.Apply(root); err != nil {
		t.Fatalf("unexpected migration error: %v", err)
	}
	if got := root.GetString("npcs.7.kind", ""); got != "npcs.7.kind:kind:guard" {
		t.Fatalf("bound environment produced %q", got)
	}
}

func TestMigratorSkipsValuelessNodes(t *testing.T) {
	root := store.NewMemoryKey()
	root.SetRaw("home.x", 1.0)

	// "home" is an interior node with no leaf value of its own.
	migrator := NewMigrator(WithRules(Rule{Path: "home", Expr: "value"}))
	if err := migrator.Apply(root); err != nil {
		t.Fatalf("unexpected migration error: %v", err)
	}
	if got := root.GetDouble("home.x", 0); got != 1.0 {
		t.Fatalf("interior node migration touched children, home.x = %v", got)
	}
}

type countingProgramCache struct {
	inner *MemoryProgramCache
	hits  int
	sets  int
}

func (c *countingProgramCache) Get(key string) (any, bool) {
	value, ok := c.inner.Get(key)
	if ok {
		c.hits++
	}
	return value, ok
}

func (c *countingProgramCache) Set(key string, value any) {
	c.sets++
	c.inner.Set(key, value)
}

func TestMigratorProgramCache(t *testing.T) {
	cache := &countingProgramCache{inner: NewMemoryProgramCache()}
	migrator := NewMigrator(
		WithRules(Rule{Path: "a", Expr: "value + 1"}),
		MigratorWithProgramCache(cache),
	)

	root := store.NewMemoryKey()
	root.SetRaw("a", 1)
	if err := migrator.Apply(root); err != nil {
		t.Fatalf("unexpected migration error: %v", err)
	}
	if err := migrator.Apply(root); err != nil {
		t.Fatalf("unexpected migration error: %v", err)
	}
	if cache.sets != 1 {
		t.Fatalf("expected the program compiled and cached once, got %d sets", cache.sets)
	}
	if cache.hits == 0 {
		t.Fatalf("expected the second apply to hit the cache")
	}
	if got := root.GetInt("a", 0); got != 3 {
		t.Fatalf("a = %d, want 3 after two applies", got)
	}
}

func TestMigratorRejectsEmptyExpression(t *testing.T) {
	migrator := NewMigrator(WithRules(Rule{Path: "a", Expr: "  "}))
	err := migrator.Apply(store.NewMemoryKey())
	if err == nil {
		t.Fatalf("expected empty expression to be rejected")
	}
	if !strings.Contains(err.Error(), "empty expression") {
		t.Fatalf("unexpected error: %v", err)
	}
}
