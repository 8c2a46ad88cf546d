package persist

import (
	"fmt"
	"strings"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"

	"github.com/goliatone/go-persist/store"
)

// Rule rewrites the stored values matching Path with the result of Expr.
// Path is a dotted pattern where `*` matches any single segment; Expr is an
// expr-lang expression evaluated with `value`, `name`, and `path` bound.
type Rule struct {
	Path string
	Expr string
}

// MigratorOption configures a Migrator instance.
type MigratorOption func(*Migrator)

// WithRules appends migration rules, applied in order.
func WithRules(rules ...Rule) MigratorOption {
	return func(m *Migrator) {
		m.rules = append(m.rules, rules...)
	}
}

// MigratorWithProgramCache wires a ProgramCache into the migrator so rule
// expressions compile once across Apply calls.
func MigratorWithProgramCache(cache ProgramCache) MigratorOption {
	return func(m *Migrator) {
		m.cache = cache
	}
}

// Migrator rewrites stored trees between schema versions before the engine
// loads them.
type Migrator struct {
	rules []Rule
	cache ProgramCache
}

// NewMigrator constructs a Migrator.
func NewMigrator(opts ...MigratorOption) *Migrator {
	m := &Migrator{}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Apply runs every rule against the tree rooted at root. Nodes without a
// stored value are skipped; the first rule evaluation error aborts.
func (m *Migrator) Apply(root store.DataKey) error {
	for _, rule := range m.rules {
		if strings.TrimSpace(rule.Expr) == "" {
			return fmt.Errorf("persist: migration rule %q has an empty expression", rule.Path)
		}
		program, err := m.loadOrCompile(rule.Expr)
		if err != nil {
			return err
		}
		if err := m.applyRule(root, strings.Split(rule.Path, "."), "", rule, program); err != nil {
			return err
		}
	}
	return nil
}

func (m *Migrator) applyRule(node store.DataKey, segments []string, path string, rule Rule, program *exprvm.Program) error {
	if len(segments) == 0 {
		raw := node.GetRaw("")
		if raw == nil {
			return nil
		}
		result, err := exprlang.Run(program, map[string]any{
			"value": raw,
			"name":  node.Name(),
			"path":  path,
		})
		if err != nil {
			return fmt.Errorf("persist: migrate %q at %q: %w", rule.Expr, path, err)
		}
		node.SetRaw("", result)
		return nil
	}

	segment, rest := segments[0], segments[1:]
	if segment == "*" {
		for _, sub := range node.GetSubKeys() {
			if err := m.applyRule(sub, rest, relativeKey(path, sub.Name()), rule, program); err != nil {
				return err
			}
		}
		return nil
	}
	return m.applyRule(node.GetRelative(segment), rest, relativeKey(path, segment), rule, program)
}

func (m *Migrator) loadOrCompile(expression string) (*exprvm.Program, error) {
	if m.cache != nil {
		if cached, ok := m.cache.Get(expression); ok {
			if program, ok := cached.(*exprvm.Program); ok {
				return program, nil
			}
		}
	}
	program, err := exprlang.Compile(expression,
		exprlang.Env(map[string]any{}),
		exprlang.AllowUndefinedVariables(),
	)
	if err != nil {
		return nil, fmt.Errorf("persist: compile migration %q: %w", expression, err)
	}
	if m.cache != nil {
		m.cache.Set(expression, program)
	}
	return program, nil
}
