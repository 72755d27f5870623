package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/wyfcoding/productstore/internal/product/domain"
	"github.com/wyfcoding/productstore/pkg/config"
)

// unreachableRedis points at a port nothing listens on so the dial fails fast.
func unreachableRedis() config.RedisConfig {
	return config.RedisConfig{Host: "127.0.0.1", Port: 1, ConnTimeout: 1}
}

func TestFallbackToMemoryWhenBackendUnreachable(t *testing.T) {
	cfg := &config.Config{
		Storage: config.StorageConfig{Driver: "redis", Fallback: true},
		Redis:   unreachableRedis(),
	}

	engine, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("expected fallback, got error: %v", err)
	}
	defer engine.Close()

	if engine.Mode() != ModeInMemory {
		t.Fatalf("expected in-memory mode after fallback, got %q", engine.Mode())
	}
	if !engine.Degraded() {
		t.Fatal("engine must report degraded after fallback")
	}

	// fallback store must serve normal traffic
	ctx := context.Background()
	if err := engine.Create(ctx, &domain.Product{ID: 1, Name: "widget"}); err != nil {
		t.Fatalf("create on fallback store failed: %v", err)
	}
	got, err := engine.Get(ctx, 1)
	if err != nil {
		t.Fatalf("get on fallback store failed: %v", err)
	}
	if got.Name != "widget" {
		t.Fatalf("unexpected product: %+v", got)
	}
}

func TestNoFallbackWhenDisabled(t *testing.T) {
	cfg := &config.Config{
		Storage: config.StorageConfig{Driver: "redis", Fallback: false},
		Redis:   unreachableRedis(),
	}

	if _, err := NewEngine(cfg); err == nil {
		t.Fatal("expected startup error when fallback is disabled")
	}
}

func TestExplicitMemoryDriverIsNotDegraded(t *testing.T) {
	cfg := &config.Config{
		Storage: config.StorageConfig{Driver: "memory"},
	}

	engine, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("memory engine failed: %v", err)
	}
	defer engine.Close()

	if engine.Mode() != ModeInMemory {
		t.Fatalf("expected in-memory mode, got %q", engine.Mode())
	}
	if engine.Degraded() {
		t.Fatal("explicitly configured memory driver must not count as degraded")
	}
}

func TestUnknownDriverRejected(t *testing.T) {
	cfg := &config.Config{
		Storage: config.StorageConfig{Driver: "etcd"},
	}
	_, err := NewEngine(cfg)
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
	if errors.Is(err, domain.ErrStorageUnavailable) {
		t.Fatal("configuration mistakes must not look like storage outages")
	}
}
