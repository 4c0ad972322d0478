// Package cache stores serialized evaluation reports keyed by trade table
// content hash and configuration fingerprint.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Backend names.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

const keyPrefix = "report:"

var (
	// ErrInvalidKey is returned when a key has an empty component.
	ErrInvalidKey = errors.New("invalid cache key")

	// ErrUnknownBackend is returned by New for an unsupported backend name.
	ErrUnknownBackend = errors.New("unknown cache backend")
)

// Key identifies a cached report. TableHash groups every report computed
// from the same table so they can be invalidated together.
type Key struct {
	TableHash   string
	Fingerprint string
}

// String renders the storage key.
func (k Key) String() string {
	return keyPrefix + k.TableHash + ":" + k.Fingerprint
}

func (k Key) validate() error {
	if k.TableHash == "" || k.Fingerprint == "" || strings.Contains(k.TableHash, ":") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, k.String())
	}
	return nil
}

func tablePrefix(tableHash string) string {
	return keyPrefix + tableHash + ":"
}

// Cache is a report cache. Get reports a miss with found=false and a nil error.
type Cache interface {
	Get(ctx context.Context, key Key) (value []byte, found bool, err error)
	Set(ctx context.Context, key Key, value []byte) error
	// Invalidate removes every entry for tableHash and returns how many were removed.
	Invalidate(ctx context.Context, tableHash string) (int, error)
	Backend() string
}

// Options configures New.
type Options struct {
	Backend   string
	RedisAddr string
	RedisDB   int
	TTL       time.Duration
}

// New builds the cache selected by opts.Backend. An empty backend means none.
func New(opts Options) (Cache, error) {
	switch opts.Backend {
	case BackendMemory:
		return NewMemory(opts.TTL), nil
	case BackendRedis:
		return NewRedis(opts.RedisAddr, opts.RedisDB, opts.TTL), nil
	case BackendNone, "":
		return Noop{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, opts.Backend)
	}
}

// Noop never stores anything.
type Noop struct{}

// Get always misses.
func (Noop) Get(context.Context, Key) ([]byte, bool, error) { return nil, false, nil }

// Set discards the value.
func (Noop) Set(context.Context, Key, []byte) error { return nil }

// Invalidate removes nothing.
func (Noop) Invalidate(context.Context, string) (int, error) { return 0, nil }

// Backend returns "none".
func (Noop) Backend() string { return BackendNone }
