package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	dueAmountKeyFmt = "customer:due:%d"
	snapshotKeyFmt  = "order:snapshot:%d"
)

var client *redis.Client

// Init initializes the Redis connection. The cache is optional; every helper
// degrades to a miss when the client is nil.
func Init() error {
	host := os.Getenv("REDIS_SERVICE_HOST")
	if host == "" {
		host = "redis" // fallback to service name
	}
	port := os.Getenv("REDIS_SERVICE_PORT")
	if port == "" {
		port = "6379"
	}

	client = redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		client = nil
		return err
	}
	return nil
}

// hashCredentials creates a hash of email+password for cache key
func hashCredentials(email, password string) string {
	h := sha256.New()
	h.Write([]byte(email + ":" + password))
	return "auth:" + hex.EncodeToString(h.Sum(nil))[:32]
}

// GetCachedAuth checks if credentials are cached and valid
func GetCachedAuth(ctx context.Context, email, password string) (int, bool) {
	if client == nil {
		return 0, false
	}
	key := hashCredentials(email, password)
	userID, err := client.Get(ctx, key).Int()
	if err != nil {
		return 0, false
	}
	return userID, true
}

// CacheAuth caches valid credentials for 15 minutes
func CacheAuth(ctx context.Context, email, password string, userID int) {
	if client == nil {
		return
	}
	client.Set(ctx, hashCredentials(email, password), userID, 15*time.Minute)
}

// InvalidateAuth removes cached auth for a user (on password change/logout)
func InvalidateAuth(ctx context.Context, email, password string) {
	if client == nil {
		return
	}
	client.Del(ctx, hashCredentials(email, password))
}

// GetCachedDueAmount returns a customer's cached due amount if present.
func GetCachedDueAmount(ctx context.Context, customerID int) (float64, bool) {
	if client == nil {
		return 0, false
	}
	v, err := client.Get(ctx, fmt.Sprintf(dueAmountKeyFmt, customerID)).Float64()
	if err != nil {
		return 0, false
	}
	return v, true
}

// CacheDueAmount caches a customer's due amount for 2 minutes. Short TTL:
// due amounts move with every return and collection.
func CacheDueAmount(ctx context.Context, customerID int, amount float64) {
	if client == nil {
		return
	}
	client.Set(ctx, fmt.Sprintf(dueAmountKeyFmt, customerID), amount, 2*time.Minute)
}

// InvalidateDueAmount drops the cached due amount after an order mutation.
func InvalidateDueAmount(ctx context.Context, customerID int) {
	if client == nil {
		return
	}
	client.Del(ctx, fmt.Sprintf(dueAmountKeyFmt, customerID))
}

// GetCachedSnapshot returns a cached order snapshot (JSON bytes) if present.
func GetCachedSnapshot(ctx context.Context, orderID int) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, fmt.Sprintf(snapshotKeyFmt, orderID)).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// CacheSnapshot caches an order snapshot for 5 minutes.
func CacheSnapshot(ctx context.Context, orderID int, data []byte) {
	if client == nil {
		return
	}
	client.Set(ctx, fmt.Sprintf(snapshotKeyFmt, orderID), data, 5*time.Minute)
}

// InvalidateSnapshot drops a cached snapshot after any write to the order.
func InvalidateSnapshot(ctx context.Context, orderID int) {
	if client == nil {
		return
	}
	client.Del(ctx, fmt.Sprintf(snapshotKeyFmt, orderID))
}
