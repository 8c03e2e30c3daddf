// Package sessions reads the revoked-access-token blacklist that the identity
// service maintains in Redis, so a token signed out there stops resolving to
// a user here before it expires.
package sessions

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
)

// DefaultBlacklistPrefix is the key prefix the identity service writes on
// logout: "blacklist:access:<raw token>" with the token's remaining TTL.
const DefaultBlacklistPrefix = "blacklist:access:"

var (
	mu              sync.RWMutex
	blacklistClient *redis.Client
)

var blacklistPrefix = DefaultBlacklistPrefix

// SetBlacklistClient configures the Redis client used for blacklist lookups.
// Safe to call with nil to disable them.
func SetBlacklistClient(c *redis.Client) {
	mu.Lock()
	defer mu.Unlock()
	blacklistClient = c
}

// SetBlacklistPrefix overrides the key prefix; empty restores the default.
func SetBlacklistPrefix(p string) {
	mu.Lock()
	defer mu.Unlock()
	if p == "" {
		p = DefaultBlacklistPrefix
	}
	blacklistPrefix = p
}

// BlacklistKey is the Redis key under which token is marked revoked.
func BlacklistKey(token string) string {
	mu.RLock()
	defer mu.RUnlock()
	return blacklistPrefix + token
}

// IsAccessTokenBlacklisted returns true when the token has been revoked.
// Without a Redis client it returns (false, nil).
func IsAccessTokenBlacklisted(ctx context.Context, token string) (bool, error) {
	mu.RLock()
	client := blacklistClient
	mu.RUnlock()
	if client == nil {
		return false, nil
	}
	exists, err := client.Exists(ctx, BlacklistKey(token)).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}
