package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRedis(t *testing.T) string {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping Redis integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	t.Cleanup(cancel)

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	return fmt.Sprintf("redis://%s:%s/0", host, port.Port())
}

func TestConnect_InvalidURL(t *testing.T) {
	_, err := Connect(t.Context(), slog.Default(), "http://not-redis")
	assert.ErrorContains(t, err, "invalid redis url")
}

func TestRedisStorage(t *testing.T) {
	url := setupRedis(t)

	storage, err := Connect(t.Context(), slog.Default(), url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	require.NoError(t, storage.HealthCheck(t.Context()))

	val, err := storage.Get("missing")
	require.NoError(t, err)
	assert.Nil(t, val)

	require.NoError(t, storage.Set("a", []byte("1"), time.Minute))
	require.NoError(t, storage.Set("b", []byte("2"), 0))

	val, err = storage.Get("a")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), val)

	require.NoError(t, storage.Delete("a"))

	val, err = storage.Get("a")
	require.NoError(t, err)
	assert.Nil(t, val)

	require.NoError(t, storage.Reset())

	val, err = storage.Get("b")
	require.NoError(t, err)
	assert.Nil(t, val)
}

func TestRedisStorage_SharedLimit(t *testing.T) {
	url := setupRedis(t)

	storage, err := Connect(t.Context(), slog.Default(), url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	cfg := Config{Max: 1, Expiration: time.Minute, Storage: storage}

	first, err := newApp(cfg).Test(httptest.NewRequest("POST", "/run", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, first.StatusCode)

	// A second app instance sees the counter of the first.
	second, err := newApp(cfg).Test(httptest.NewRequest("POST", "/run", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, second.StatusCode)
}
