// Package tx provides transaction management abstractions.
// Domain services depend on Manager; the implementations live in
// infrastructure/storage/postgres and infrastructure/storage/memory.
package tx

import (
	"context"
)

// Manager defines the contract for transaction management.
type Manager interface {
	// RunInTransaction executes fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn succeeds, the transaction is committed.
	//
	// Nested calls reuse the existing transaction from context.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Func adapts a plain function to Manager.
type Func func(ctx context.Context, fn func(ctx context.Context) error) error

// RunInTransaction implements Manager.
func (f Func) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return f(ctx, fn)
}
