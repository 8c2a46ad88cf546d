package persist

import (
	"github.com/goliatone/go-persist/store"
)

// Persister builds and saves instances of a single value type against a
// store subtree. Implementations are stateless singletons constructed once
// per loader and reused for every member that references them.
//
// Create returns (nil, nil) when the subtree holds no value; errors are
// logged by the engine and treated the same as an absent value.
type Persister interface {
	Create(root store.DataKey) (any, error)
	Save(value any, root store.DataKey)
}

// PersisterFactory constructs a persister singleton. It must be side-effect
// free: construction may race on first use and the registry converges on a
// single retained instance.
type PersisterFactory func() Persister

// Persistable is the optional lifecycle hook pair a persisted type may
// implement. The engine invokes LoadFrom after the generic member walk
// populated the instance, and SaveTo after all members were written.
type Persistable interface {
	LoadFrom(root store.DataKey)
	SaveTo(root store.DataKey)
}

// Option configures a Loader instance.
type Option func(*loaderConfig)

type loaderConfig struct {
	logger   DiagnosticLogger
	registry *Registry
	trace    *TraceRecorder
}

func applyLoaderOptions(opts []Option) loaderConfig {
	cfg := loaderConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithRegistry supplies a caller-managed persister registry. The registry is
// used as-is: built-in redirects are not seeded into it.
func WithRegistry(registry *Registry) Option {
	return func(cfg *loaderConfig) {
		cfg.registry = registry
	}
}

// WithTraceRecorder attaches a recorder capturing per-member load outcomes.
func WithTraceRecorder(recorder *TraceRecorder) Option {
	return func(cfg *loaderConfig) {
		cfg.trace = recorder
	}
}
