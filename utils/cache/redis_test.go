package cache

import (
	"context"
	"errors"
	"testing"
)

func TestNilCacheFallsThrough(t *testing.T) {
	var c *RedisCache
	ctx := context.Background()

	calls := 0
	var out []string
	load := func() (interface{}, error) {
		calls++
		return []string{"a", "b"}, nil
	}

	for i := 0; i < 2; i++ {
		if err := c.RememberJSON(ctx, "k", []string{"events"}, &out, load); err != nil {
			t.Fatalf("RememberJSON: %v", err)
		}
	}
	if calls != 2 {
		t.Errorf("expected loader on every call without redis, got %d", calls)
	}
	if len(out) != 2 || out[1] != "b" {
		t.Errorf("unexpected decoded value %v", out)
	}

	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := c.InvalidateTags(ctx, "events"); err != nil {
		t.Errorf("InvalidateTags on nil cache: %v", err)
	}
}

func TestRememberJSONPropagatesLoaderError(t *testing.T) {
	var c *RedisCache
	boom := errors.New("boom")
	var out int
	err := c.RememberJSON(context.Background(), "k", nil, &out, func() (interface{}, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected loader error, got %v", err)
	}
}
