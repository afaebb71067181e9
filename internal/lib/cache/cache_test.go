package cache_test

import (
	"context"
	"errors"
	"testing"

	"github.com/deppfellow/listings-api/internal/lib/cache"
)

func TestNoop(t *testing.T) {
	var c cache.Cache = cache.Noop{}
	ctx := context.Background()

	if err := c.Set(ctx, "listing:abc", map[string]any{"name": "Loft"}); err != nil {
		t.Fatalf("set: %v", err)
	}

	var dest map[string]any
	if err := c.Get(ctx, "listing:abc", &dest); !errors.Is(err, cache.ErrMiss) {
		t.Errorf("get: got %v, want ErrMiss", err)
	}
	if err := c.Delete(ctx, "listing:abc"); err != nil {
		t.Errorf("delete: %v", err)
	}
}
