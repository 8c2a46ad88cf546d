package persist

import (
	"fmt"
	"reflect"
	"sync"
)

// Registry resolves value types to persister singletons. Redirects map a
// declared (or container-element) type to a named capability; capabilities
// are constructed lazily from their registered factory and cached for the
// registry's lifetime. A construction failure is recorded permanently and
// never retried, degrading affected members to generic handling.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]PersisterFactory
	redirects map[reflect.Type]string
	loaded    map[string]Persister
	failed    map[string]bool
	logger    DiagnosticLogger
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: map[string]PersisterFactory{},
		redirects: map[reflect.Type]string{},
		loaded:    map[string]Persister{},
		failed:    map[string]bool{},
		logger:    noopDiagnosticLogger{},
	}
}

func (r *Registry) setLogger(logger DiagnosticLogger) {
	if logger == nil {
		return
	}
	r.mu.Lock()
	r.logger = logger
	r.mu.Unlock()
}

// RegisterPersister stores factory under name, guarding against duplicates.
func (r *Registry) RegisterPersister(name string, factory PersisterFactory) error {
	if name == "" {
		return fmt.Errorf("persist: persister name must not be empty")
	}
	if factory == nil {
		return fmt.Errorf("persist: persister %q factory is nil", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("persist: persister %q already registered", name)
	}
	r.factories[name] = factory
	return nil
}

// RegisterRedirect records that members whose declared or element type
// matches t should use the named capability absent a per-member override.
// The capability is constructed eagerly.
func (r *Registry) RegisterRedirect(t reflect.Type, name string) error {
	if t == nil {
		return fmt.Errorf("persist: redirect type must not be nil")
	}
	r.mu.Lock()
	if _, exists := r.factories[name]; !exists {
		r.mu.Unlock()
		return fmt.Errorf("persist: redirect %s references unknown persister %q", t, name)
	}
	r.redirects[t] = name
	r.mu.Unlock()
	r.ensureLoaded(name)
	return nil
}

// ensureLoaded constructs the capability singleton on first need. Any
// construction failure marks the capability permanently unavailable.
func (r *Registry) ensureLoaded(name string) Persister {
	r.mu.RLock()
	persister, ok := r.loaded[name]
	failed := r.failed[name]
	r.mu.RUnlock()
	if ok || failed {
		return persister
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if persister, ok := r.loaded[name]; ok {
		return persister
	}
	if r.failed[name] {
		return nil
	}
	factory, ok := r.factories[name]
	if !ok {
		return nil
	}
	persister = construct(name, factory, r.logger)
	if persister == nil {
		r.failed[name] = true
		r.logger.LogDiagnostic(DiagnosticEvent{
			Op:  "construct",
			Key: name,
			Err: fmt.Errorf("persist: persister %q could not be loaded", name),
		})
		return nil
	}
	r.loaded[name] = persister
	return persister
}

func construct(name string, factory PersisterFactory, logger DiagnosticLogger) (persister Persister) {
	defer func() {
		if recovered := recover(); recovered != nil {
			persister = nil
			logger.LogDiagnostic(DiagnosticEvent{
				Op:  "construct",
				Key: name,
				Err: fmt.Errorf("persist: persister %q factory panicked: %v", name, recovered),
			})
		}
	}()
	return factory()
}

// resolve returns the loaded singleton for an explicitly named capability.
func (r *Registry) resolve(name string) (Persister, bool) {
	if name == "" {
		return nil, false
	}
	persister := r.ensureLoaded(name)
	return persister, persister != nil
}

// redirectFor resolves the process-wide default capability for a declared
// type, or nil when generic handling applies.
func (r *Registry) redirectFor(t reflect.Type) Persister {
	if t == nil {
		return nil
	}
	r.mu.RLock()
	name, ok := r.redirects[t]
	r.mu.RUnlock()
	if !ok {
		return nil
	}
	return r.ensureLoaded(name)
}
