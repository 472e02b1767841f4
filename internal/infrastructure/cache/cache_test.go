package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"datacatalog/internal/core/id"
	"datacatalog/internal/core/security"
	"datacatalog/internal/domain/product"
)

func TestRoleCache(t *testing.T) {
	c := NewRoleCache(2, time.Minute)
	a, b, d := id.New(), id.New(), id.New()

	c.Add(a, security.RoleAdmin)
	c.Add(b, security.RoleUser)

	role, ok := c.Get(a)
	require.True(t, ok)
	assert.Equal(t, security.RoleAdmin, role)

	c.Add(d, security.RoleCamiYaku)
	_, ok = c.Get(b)
	assert.False(t, ok, "least recently used entry evicted")
	assert.Equal(t, 2, c.Len())

	c.Remove(a)
	_, ok = c.Get(a)
	assert.False(t, ok)
}

func TestRoleCache_Expires(t *testing.T) {
	c := NewRoleCache(10, 20*time.Millisecond)
	u := id.New()
	c.Add(u, security.RoleUser)

	assert.Eventually(t, func() bool {
		_, ok := c.Get(u)
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test: skipped with -short")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	tc, err := NewTagCacheFromURL(ctx, fmt.Sprintf("redis://%s:%s/0", host, port.Port()), time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tc.Close() })
	return tc.client
}

func TestTagCache_RoundTrip(t *testing.T) {
	client := startRedis(t)
	c := NewTagCacheFromClient(client, time.Minute)
	ctx := context.Background()

	_, gen, ok := c.Get(ctx)
	assert.False(t, ok)
	assert.Zero(t, gen)

	tags := []product.Tag{{ID: id.New(), Name: "Calidad"}, {ID: id.New(), Name: "Tarifas"}}
	c.Set(ctx, gen, tags)

	got, _, ok := c.Get(ctx)
	require.True(t, ok)
	assert.Equal(t, tags, got)

	c.Invalidate(ctx)
	_, gen, ok = c.Get(ctx)
	assert.False(t, ok)
	assert.EqualValues(t, 1, gen)
}

func TestTagCache_SetAfterInvalidateIsDropped(t *testing.T) {
	client := startRedis(t)
	c := NewTagCacheFromClient(client, time.Minute)
	ctx := context.Background()

	_, gen, ok := c.Get(ctx)
	require.False(t, ok)

	// A write commits and invalidates between the reader's miss and its Set.
	c.Invalidate(ctx)
	c.Set(ctx, gen, []product.Tag{{ID: id.New(), Name: "Stale"}})

	_, current, ok := c.Get(ctx)
	assert.False(t, ok, "stale list was not cached")
	assert.Equal(t, gen+1, current)

	c.Set(ctx, current, []product.Tag{{ID: id.New(), Name: "Fresh"}})
	got, _, ok := c.Get(ctx)
	require.True(t, ok)
	assert.Equal(t, "Fresh", got[0].Name)
}

func TestTagCache_UnreachableIsAMiss(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer client.Close()
	c := NewTagCacheFromClient(client, time.Minute)
	ctx := context.Background()

	_, gen, ok := c.Get(ctx)
	assert.False(t, ok)
	assert.Negative(t, gen)
	c.Set(ctx, gen, []product.Tag{{ID: id.New(), Name: "x"}})
	c.Invalidate(ctx)
}
