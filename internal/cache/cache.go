// Package cache holds read-through caches for data that is read far more
// often than it changes (list schemas).
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// Cache stores JSON-encodable values. Implementations never return errors to
// callers: a failed read is a miss and a failed write is logged and dropped.
type Cache interface {
	// Get decodes the cached value for key into dest and reports whether it
	// was found.
	Get(ctx context.Context, key string, dest any) bool

	// Set stores value under key. A zero ttl uses the cache default.
	Set(ctx context.Context, key string, value any, ttl time.Duration)

	Delete(ctx context.Context, key string)

	// DeleteByPrefix removes all keys with the given prefix.
	DeleteByPrefix(ctx context.Context, prefix string)
}

const (
	PrefixSchema = "schema:v1:"
)

const DefaultTTL = 10 * time.Minute

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// GenerateKey joins prefix and params with a colon.
func GenerateKey(prefix string, params ...any) string {
	parts := make([]string, 0, len(params))
	for _, param := range params {
		parts = append(parts, fmt.Sprintf("%v", param))
	}
	return prefix + strings.Join(parts, ":")
}

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, string, any) bool           { return false }
func (Noop) Set(context.Context, string, any, time.Duration) {}
func (Noop) Delete(context.Context, string)                  {}
func (Noop) DeleteByPrefix(context.Context, string)          {}
