package cache

import (
	"context"
	"log/slog"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const cleanupInterval = time.Hour

// Memory is a process-local cache. Values are stored encoded so callers can
// never mutate a cached entry through a shared pointer.
type Memory struct {
	cache *gocache.Cache
	ttl   time.Duration
}

func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{cache: gocache.New(ttl, cleanupInterval), ttl: ttl}
}

func (m *Memory) Get(_ context.Context, key string, dest any) bool {
	raw, ok := m.cache.Get(key)
	if !ok {
		return false
	}
	data, ok := raw.([]byte)
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		slog.Warn("cache decode failed", "key", key, "error", err)
		m.cache.Delete(key)
		return false
	}
	return true
}

func (m *Memory) Set(_ context.Context, key string, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		slog.Warn("cache encode failed", "key", key, "error", err)
		return
	}
	if ttl <= 0 {
		ttl = m.ttl
	}
	m.cache.Set(key, data, ttl)
}

func (m *Memory) Delete(_ context.Context, key string) {
	m.cache.Delete(key)
}

func (m *Memory) DeleteByPrefix(_ context.Context, prefix string) {
	for k := range m.cache.Items() {
		if strings.HasPrefix(k, prefix) {
			m.cache.Delete(k)
		}
	}
}
