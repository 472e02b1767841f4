// Package memory is an in-process implementation of the catalog
// repositories. Transactions are serialized and roll back by restoring a
// snapshot, so writes inside a failed transaction are never observable.
// Used by the domain and HTTP tests.
package memory

import (
	"context"
	"sync"

	"datacatalog/internal/core/id"
	"datacatalog/internal/domain/audit"
	"datacatalog/internal/domain/auth"
	"datacatalog/internal/domain/product"
)

type state struct {
	products map[id.ID]*product.Product
	tags     map[id.ID]product.Tag
	tagNames map[string]id.ID
	links    map[id.ID]map[id.ID]bool
	audit    []audit.Entry
	users    map[id.ID]*auth.User
	tokens   map[string]*auth.RefreshToken
	idem     map[string]*idempotencyRecord
}

func newState() *state {
	return &state{
		products: make(map[id.ID]*product.Product),
		tags:     make(map[id.ID]product.Tag),
		tagNames: make(map[string]id.ID),
		links:    make(map[id.ID]map[id.ID]bool),
		users:    make(map[id.ID]*auth.User),
		tokens:   make(map[string]*auth.RefreshToken),
		idem:     make(map[string]*idempotencyRecord),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.products {
		c.products[k] = v.Clone()
	}
	for k, v := range s.tags {
		c.tags[k] = v
	}
	for k, v := range s.tagNames {
		c.tagNames[k] = v
	}
	for k, set := range s.links {
		cs := make(map[id.ID]bool, len(set))
		for t := range set {
			cs[t] = true
		}
		c.links[k] = cs
	}
	c.audit = append([]audit.Entry(nil), s.audit...)
	for k, v := range s.users {
		u := *v
		c.users[k] = &u
	}
	for k, v := range s.tokens {
		t := *v
		c.tokens[k] = &t
	}
	for k, v := range s.idem {
		r := *v
		c.idem[k] = &r
	}
	return c
}

// Store holds all in-memory tables.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	data *state
}

// New creates an empty store.
func New() *Store {
	return &Store{data: newState()}
}

type txKey struct{}

// RunInTransaction implements tx.Manager. Nested calls join the outer
// transaction.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// Products returns the product repository.
func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }

// Tags returns the tag repository.
func (s *Store) Tags() *TagRepo { return &TagRepo{s: s} }

// Audit returns the audit repository.
func (s *Store) Audit() *AuditRepo { return &AuditRepo{s: s} }

// Users returns the user repository.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

// Tokens returns the refresh token repository.
func (s *Store) Tokens() *TokenRepo { return &TokenRepo{s: s} }

// Idempotency returns the idempotency key store.
func (s *Store) Idempotency() *IdempotencyStore { return &IdempotencyStore{s: s} }
