package persist

import (
	"encoding/json"
	"reflect"
	"sync"
)

// MemberTrace records how a single member resolved during a load call.
type MemberTrace struct {
	Key      string `json:"key"`
	Strategy string `json:"strategy"`
	Outcome  string `json:"outcome"`
	Error    string `json:"error,omitempty"`
}

// LoadTrace captures per-member provenance for one load call.
type LoadTrace struct {
	Type    string        `json:"type"`
	Members []MemberTrace `json:"members"`
}

// ToJSON serialises the trace for logging or transport helpers.
func (t LoadTrace) ToJSON() ([]byte, error) {
	type alias LoadTrace
	return json.Marshal(alias(t))
}

// LoadTraceFromJSON deserialises a payload previously produced by ToJSON.
func LoadTraceFromJSON(payload []byte) (LoadTrace, error) {
	type alias LoadTrace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return LoadTrace{}, err
	}
	return LoadTrace(trace), nil
}

// TraceRecorder accumulates load traces. Safe for concurrent use.
type TraceRecorder struct {
	mu     sync.Mutex
	traces []LoadTrace
}

// NewTraceRecorder constructs an empty recorder.
func NewTraceRecorder() *TraceRecorder {
	return &TraceRecorder{}
}

func (r *TraceRecorder) record(trace LoadTrace) {
	r.mu.Lock()
	r.traces = append(r.traces, trace)
	r.mu.Unlock()
}

// Traces returns a copy of the recorded traces.
func (r *TraceRecorder) Traces() []LoadTrace {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]LoadTrace, len(r.traces))
	copy(out, r.traces)
	return out
}

// Reset discards all recorded traces.
func (r *TraceRecorder) Reset() {
	r.mu.Lock()
	r.traces = nil
	r.mu.Unlock()
}

// loadTraceBuilder is nil when tracing is disabled, making every call a
// no-op on the hot path.
type loadTraceBuilder struct {
	recorder *TraceRecorder
	trace    LoadTrace
}

func (l *Loader) beginTrace(t reflect.Type) *loadTraceBuilder {
	if l.cfg.trace == nil {
		return nil
	}
	return &loadTraceBuilder{
		recorder: l.cfg.trace,
		trace:    LoadTrace{Type: t.String()},
	}
}

func (b *loadTraceBuilder) add(d memberDescriptor, outcome coercionOutcome, err error) {
	if b == nil {
		return
	}
	member := MemberTrace{
		Key:      d.key,
		Strategy: d.kind.String(),
		Outcome:  outcome.String(),
	}
	if err != nil {
		member.Error = err.Error()
	}
	b.trace.Members = append(b.trace.Members, member)
}

func (b *loadTraceBuilder) finish() {
	if b == nil {
		return
	}
	b.recorder.record(b.trace)
}
