package server

import (
	"context"
	"sync"
	"time"

	"github.com/doodlesbykumbi/iam-admin/pkg/model"
	"github.com/doodlesbykumbi/iam-admin/pkg/server/store"
)

// OriginsCacheTTL bounds how long a cached origin list is served. Writes
// through this server drop the cache at once; the TTL covers writes made by
// other instances.
const OriginsCacheTTL = 30 * time.Second

var _ store.OrgsStore = (*cachedOrgs)(nil)

// cachedOrgs keeps the union of allowed origins in memory so CORS checks do
// not query the database on every request.
type cachedOrgs struct {
	store.OrgsStore
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	origins []string
	expires time.Time
}

func newCachedOrgs(orgs store.OrgsStore, ttl time.Duration) *cachedOrgs {
	return &cachedOrgs{OrgsStore: orgs, ttl: ttl, now: time.Now}
}

func (c *cachedOrgs) AllowedOrigins(ctx context.Context) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.origins != nil && c.now().Before(c.expires) {
		return c.origins, nil
	}
	origins, err := c.OrgsStore.AllowedOrigins(ctx)
	if err != nil {
		return nil, err
	}
	if origins == nil {
		origins = []string{}
	}
	c.origins = origins
	c.expires = c.now().Add(c.ttl)
	return origins, nil
}

func (c *cachedOrgs) invalidate() {
	c.mu.Lock()
	c.origins = nil
	c.mu.Unlock()
}

func (c *cachedOrgs) CreateOrg(ctx context.Context, org *model.Org) error {
	defer c.invalidate()
	return c.OrgsStore.CreateOrg(ctx, org)
}

func (c *cachedOrgs) UpdateOrg(ctx context.Context, org *model.Org) error {
	defer c.invalidate()
	return c.OrgsStore.UpdateOrg(ctx, org)
}

func (c *cachedOrgs) DeleteOrg(ctx context.Context, id string) error {
	defer c.invalidate()
	return c.OrgsStore.DeleteOrg(ctx, id)
}

func (c *cachedOrgs) SetOrgState(ctx context.Context, id string, state model.State) error {
	defer c.invalidate()
	return c.OrgsStore.SetOrgState(ctx, id, state)
}

func (c *cachedOrgs) AddAllowedOrigin(ctx context.Context, id, origin string) ([]string, error) {
	defer c.invalidate()
	return c.OrgsStore.AddAllowedOrigin(ctx, id, origin)
}

func (c *cachedOrgs) RemoveAllowedOrigin(ctx context.Context, id, origin string) ([]string, error) {
	defer c.invalidate()
	return c.OrgsStore.RemoveAllowedOrigin(ctx, id, origin)
}
