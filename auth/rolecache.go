/*
Package auth is the authorization collaborator boundary.

PURPOSE:
  The engine and API treat authorization as an external concern: this
  package only defines the collaborator contracts (role directory, project
  assignments) and one piece of shared infrastructure, an explicitly-scoped
  role cache. The cache is a value passed to whoever needs role lookups -
  never a module-level map - with a TTL and explicit invalidation.

CACHING RULES:
  Role rows change rarely (they are reference data), so lookups are cached
  bidirectionally (id -> name, name -> id) for a configurable TTL. A miss
  or an expired snapshot triggers one full reload of the directory under
  the lock. Invalidate drops the snapshot; the next lookup reloads.
*/
package auth

import (
	"context"
	"strings"
	"sync"
	"time"
)

// AdminRole is the role name granting visibility over every project.
const AdminRole = "admin"

// Role is one reference row of the role directory.
type Role struct {
	ID   string
	Name string
}

// RoleDirectory is the external source of role rows.
type RoleDirectory interface {
	Roles(ctx context.Context) ([]Role, error)
}

// Assignments answers which projects a user may see. Implemented by the
// external authorization system; the API only consumes it.
type Assignments interface {
	RoleIDOf(ctx context.Context, userID string) (string, error)
	ProjectIDsOf(ctx context.Context, userID string) ([]string, error)
}

// =============================================================================
// ROLE CACHE
// =============================================================================

// RoleCache caches the role directory for a TTL. Safe for concurrent use.
// The zero value is not usable; construct with NewRoleCache.
type RoleCache struct {
	dir RoleDirectory
	ttl time.Duration
	now func() time.Time // injectable for tests

	mu       sync.Mutex
	byID     map[string]string
	byName   map[string]string
	loadedAt time.Time
}

// NewRoleCache builds a cache over the directory. A non-positive ttl means
// every lookup reloads.
func NewRoleCache(dir RoleDirectory, ttl time.Duration) *RoleCache {
	return &RoleCache{dir: dir, ttl: ttl, now: time.Now}
}

// WithClock overrides the cache's clock. Test hook.
func (c *RoleCache) WithClock(now func() time.Time) *RoleCache {
	c.now = now
	return c
}

// NameByID resolves a role id to its name. ok is false for unknown ids.
func (c *RoleCache) NameByID(ctx context.Context, id string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.refreshLocked(ctx); err != nil {
		return "", false, err
	}
	name, ok := c.byID[id]
	return name, ok, nil
}

// IDByName resolves a role name (case-insensitive) to its id.
func (c *RoleCache) IDByName(ctx context.Context, name string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.refreshLocked(ctx); err != nil {
		return "", false, err
	}
	id, ok := c.byName[strings.ToLower(name)]
	return id, ok, nil
}

// IsAdmin reports whether the role id names the admin role.
func (c *RoleCache) IsAdmin(ctx context.Context, roleID string) (bool, error) {
	name, ok, err := c.NameByID(ctx, roleID)
	if err != nil {
		return false, err
	}
	return ok && strings.EqualFold(name, AdminRole), nil
}

// Invalidate drops the cached snapshot. The next lookup reloads.
func (c *RoleCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byID = nil
	c.byName = nil
	c.loadedAt = time.Time{}
}

func (c *RoleCache) refreshLocked(ctx context.Context) error {
	if c.byID != nil && c.ttl > 0 && c.now().Sub(c.loadedAt) < c.ttl {
		return nil
	}

	roles, err := c.dir.Roles(ctx)
	if err != nil {
		return err
	}
	byID := make(map[string]string, len(roles))
	byName := make(map[string]string, len(roles))
	for _, r := range roles {
		byID[r.ID] = r.Name
		byName[strings.ToLower(r.Name)] = r.ID
	}
	c.byID = byID
	c.byName = byName
	c.loadedAt = c.now()
	return nil
}
