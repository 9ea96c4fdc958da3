package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type erroringStore struct{}

func (erroringStore) PruneAndCount(ctx context.Context, key string, cutoff time.Time) (int, error) {
	return 0, errors.New("store down")
}

func (erroringStore) Append(ctx context.Context, key string, at time.Time) error {
	return errors.New("store down")
}

func TestLimiter_EnforcesLimit(t *testing.T) {
	l := New(3, time.Minute, NewMemoryStore())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow(ctx, "1.2.3.4:/api/v1/signup"), "request %d", i)
	}
	assert.False(t, l.Allow(ctx, "1.2.3.4:/api/v1/signup"))

	// Other keys are unaffected.
	assert.True(t, l.Allow(ctx, "5.6.7.8:/api/v1/signup"))
}

func TestLimiter_WindowSlides(t *testing.T) {
	l := New(2, time.Minute, NewMemoryStore())
	ctx := context.Background()

	current := time.Now()
	l.now = func() time.Time { return current }

	assert.True(t, l.Allow(ctx, "k"))
	assert.True(t, l.Allow(ctx, "k"))
	assert.False(t, l.Allow(ctx, "k"))

	// After the window passes the old entries are pruned.
	current = current.Add(61 * time.Second)
	assert.True(t, l.Allow(ctx, "k"))
}

func TestLimiter_FailsOpenOnStoreErrors(t *testing.T) {
	l := New(1, time.Minute, erroringStore{})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		assert.True(t, l.Allow(ctx, "k"))
	}
}

func TestLimiter_DefaultsOnInvalidConfig(t *testing.T) {
	l := New(0, 0, NewMemoryStore())
	assert.Equal(t, 60, l.limit)
	assert.Equal(t, time.Minute, l.window)
}

func TestMiddleware_ThrottlesPerRoute(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware(New(2, time.Minute, NewMemoryStore())))
	app.Get("/a", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/b", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/a", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/a", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)

	// Another route is counted separately.
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/b", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestMemoryStore_PruneDropsOldEntries(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	base := time.Now()

	for i := 0; i < 4; i++ {
		assert.NoError(t, s.Append(ctx, "k", base.Add(time.Duration(i)*time.Second)))
	}

	count, err := s.PruneAndCount(ctx, "k", base.Add(time.Second))
	assert.NoError(t, err)
	assert.Equal(t, 2, count)

	// Pruning everything removes the key entirely.
	count, err = s.PruneAndCount(ctx, "k", base.Add(time.Hour))
	assert.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Empty(t, s.entries)
}
