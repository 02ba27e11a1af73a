//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedisContainer starts a Redis container and returns a client
func setupRedisContainer(t *testing.T) (*redis.Client, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	endpoint, err := redisContainer.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("Failed to get Redis endpoint: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: endpoint,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("Failed to connect to Redis: %v", err)
	}

	cleanup := func() {
		client.Close()
		redisContainer.Terminate(ctx)
	}

	return client, cleanup
}

func TestManager_Integration_SetGetExpire(t *testing.T) {
	redisClient, cleanup := setupRedisContainer(t)
	defer cleanup()

	manager := NewManager(redisClient)
	ctx := context.Background()

	entry := &Entry{
		Data:       []byte("<html>cached</html>"),
		StatusCode: 200,
		CachedAt:   time.Now(),
		Expires:    time.Now().Add(2 * time.Second),
	}
	if err := manager.Set(ctx, testKey(), entry); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	got, err := manager.Get(ctx, testKey())
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if string(got.Data) != "<html>cached</html>" {
		t.Errorf("Data = %q", got.Data)
	}

	time.Sleep(3 * time.Second)

	if _, err := manager.Get(ctx, testKey()); err != ErrCacheMiss {
		t.Errorf("Get() after expiry error = %v, want ErrCacheMiss", err)
	}
}
