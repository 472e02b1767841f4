// Package cache holds the tag list cache (redis) and the in-process role cache.
package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"datacatalog/internal/core/id"
	"datacatalog/internal/core/security"
	"datacatalog/internal/domain/auth"
)

var _ auth.RoleCache = (*RoleCache)(nil)

// RoleCache keeps recently resolved user roles for a short TTL so the auth
// middleware does not hit the database on every request.
type RoleCache struct {
	lru *expirable.LRU[id.ID, security.Role]
}

// NewRoleCache creates a cache holding at most size entries for ttl each.
func NewRoleCache(size int, ttl time.Duration) *RoleCache {
	return &RoleCache{lru: expirable.NewLRU[id.ID, security.Role](size, nil, ttl)}
}

// Get returns the cached role.
func (c *RoleCache) Get(userID id.ID) (security.Role, bool) {
	return c.lru.Get(userID)
}

// Add stores a role.
func (c *RoleCache) Add(userID id.ID, role security.Role) {
	c.lru.Add(userID, role)
}

// Remove evicts a user.
func (c *RoleCache) Remove(userID id.ID) {
	c.lru.Remove(userID)
}

// Len returns the number of live entries.
func (c *RoleCache) Len() int {
	return c.lru.Len()
}
