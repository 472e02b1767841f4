package domain

import (
	"context"
)

// HookEvent represents lifecycle event type.
type HookEvent string

const (
	AfterCreate HookEvent = "after_create"
	AfterUpdate HookEvent = "after_update"
	AfterDelete HookEvent = "after_delete"
)

// Hook is a function that runs at specific lifecycle points.
type Hook[T any] func(ctx context.Context, entity T) error

// HookRegistry stores lifecycle hooks for an entity type.
// After-hooks run once the transaction has committed; their errors are
// reported to the caller's logger, never to the client.
type HookRegistry[T any] struct {
	hooks map[HookEvent][]Hook[T]
}

// NewHookRegistry creates an empty hook registry.
func NewHookRegistry[T any]() *HookRegistry[T] {
	return &HookRegistry[T]{
		hooks: make(map[HookEvent][]Hook[T]),
	}
}

// On registers a hook for the specified event.
func (r *HookRegistry[T]) On(event HookEvent, hook Hook[T]) {
	r.hooks[event] = append(r.hooks[event], hook)
}

// OnAfterWrite registers the same hook for create, update and delete.
func (r *HookRegistry[T]) OnAfterWrite(hook Hook[T]) {
	r.On(AfterCreate, hook)
	r.On(AfterUpdate, hook)
	r.On(AfterDelete, hook)
}

// Run executes all hooks for the specified event and stops at the first error.
func (r *HookRegistry[T]) Run(ctx context.Context, event HookEvent, entity T) error {
	for _, hook := range r.hooks[event] {
		if err := hook(ctx, entity); err != nil {
			return err
		}
	}
	return nil
}
