// Copyright 2025 Certen Protocol
//
// Module Registry - maps module names to the runtime that validates,
// normalizes, and optionally indexes their record bodies. Modelled on the
// scheme-keyed capability set in pkg/attestation/strategy, trimmed to the
// three operations a ledger module needs.

package module

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrAlreadyRegistered is returned by Register when a name is reused.
var ErrAlreadyRegistered = errors.New("module: name already registered")

// NotFoundError is returned by Get when a module name has no runtime.
type NotFoundError struct {
	Module string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("module not found: %q", e.Module)
}

// ValidationError is returned by Runtime.Validate to reject a body.
type ValidationError struct {
	Module string
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error in module %q: %s", e.Module, e.Detail)
}

// Runtime is the capability set a module exposes to the chain engine.
type Runtime interface {
	// Validate rejects a body/context pair that does not conform to the
	// module's schema. Returning a non-nil error aborts the append.
	Validate(ctx context.Context, body, recordContext map[string]interface{}) error
}

// Normalizer is optionally implemented by a Runtime to rewrite a body
// before it is hashed (e.g. trimming whitespace, lower-casing keys).
type Normalizer interface {
	Normalize(ctx context.Context, body map[string]interface{}) (map[string]interface{}, error)
}

// Projector is optionally implemented by a Runtime to advertise body
// fields that the query surface may filter on.
type Projector interface {
	Projections() []string
}

// Registry is a process-wide, monotonic mapping from module name to Runtime.
type Registry struct {
	mu        sync.RWMutex
	runtimes  map[string]Runtime
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{runtimes: make(map[string]Runtime)}
}

// Register adds a runtime under name. Re-registering an existing name fails:
// registration is monotonic for the engine's lifetime.
func (r *Registry) Register(name string, rt Runtime) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.runtimes[name]; exists {
		return fmt.Errorf("%w: %q", ErrAlreadyRegistered, name)
	}
	r.runtimes[name] = rt
	return nil
}

// Get resolves a module name to its runtime, or *NotFoundError.
func (r *Registry) Get(name string) (Runtime, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rt, ok := r.runtimes[name]
	if !ok {
		return nil, &NotFoundError{Module: name}
	}
	return rt, nil
}

// Names returns the currently registered module names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.runtimes))
	for name := range r.runtimes {
		out = append(out, name)
	}
	return out
}
