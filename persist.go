// Package persist is a recursive, schema-driven object persistence engine.
// Struct members tagged with `persist` are flattened into a hierarchical
// key-value store and reconstructed from one later; delegate persisters
// override the generic member-by-member handling for individual value types.
package persist

import (
	"reflect"
	"sync"

	"github.com/goliatone/go-persist/store"
)

// Loader orchestrates recursive load and save over a schema cache and a
// persister registry. Loaders are safe for concurrent use; the three caches
// they hold are populated lazily and read-mostly afterwards.
type Loader struct {
	cfg      loaderConfig
	registry *Registry
	schemas  *schemaCache
}

// New constructs a Loader. Unless WithRegistry supplies one, a fresh
// registry pre-seeded with the built-in redirects is created.
func New(opts ...Option) *Loader {
	cfg := applyLoaderOptions(opts)
	if cfg.logger == nil {
		cfg.logger = noopDiagnosticLogger{}
	}
	registry := cfg.registry
	if registry == nil {
		registry = NewRegistry()
		registry.setLogger(cfg.logger)
		registerBuiltins(registry)
	}
	return &Loader{
		cfg:      cfg,
		registry: registry,
		schemas:  newSchemaCache(),
	}
}

var (
	defaultLoader *Loader
	defaultOnce   sync.Once
)

// Default returns the shared process-wide loader.
func Default() *Loader {
	defaultOnce.Do(func() {
		defaultLoader = New()
	})
	return defaultLoader
}

// Load constructs a T and populates it from root using the default loader.
func Load[T any](root store.DataKey) (*T, error) {
	instance := new(T)
	if err := Default().Load(instance, root); err != nil {
		return nil, err
	}
	return instance, nil
}

// Save writes instance into root using the default loader.
func Save(instance any, root store.DataKey) {
	Default().Save(instance, root)
}

// RegisterPersister registers a named persister factory on the loader's
// registry.
func (l *Loader) RegisterPersister(name string, factory PersisterFactory) error {
	return l.registry.RegisterPersister(name, factory)
}

// RegisterRedirect maps a declared type to a named capability and constructs
// it eagerly.
func (l *Loader) RegisterRedirect(t reflect.Type, name string) error {
	return l.registry.RegisterRedirect(t, name)
}

// RedirectTo registers a redirect for the type parameter T.
func RedirectTo[T any](l *Loader, name string) error {
	return l.RegisterRedirect(reflect.TypeOf((*T)(nil)).Elem(), name)
}

// ResetSchemas drops all cached schema entries so types can be rediscovered,
// mainly useful to keep tests isolated.
func (l *Loader) ResetSchemas() {
	l.schemas.reset()
}

func (l *Loader) logger() DiagnosticLogger {
	if l.cfg.logger != nil {
		return l.cfg.logger
	}
	return noopDiagnosticLogger{}
}
