package metrics

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisAuditSink keeps a capped list of recently executed statements in
// Redis so the stream of statements can be inspected from outside the
// process. Audit failures are logged and swallowed; they never propagate
// to the statement that triggered them.
type RedisAuditSink struct {
	client     *redis.Client
	key        string
	maxEntries int64
	closed     bool
}

// NewRedisAuditSink connects to Redis and verifies the connection.
// key names the list the statements are pushed to; maxEntries caps its
// length (older entries are trimmed away).
func NewRedisAuditSink(endpoint, password string, db int, key string, maxEntries int64) (*RedisAuditSink, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if key == "" {
		key = "relmap:statements"
	}
	if maxEntries <= 0 {
		maxEntries = 1000
	}

	client := redis.NewClient(&redis.Options{
		Addr:     endpoint,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisAuditSink{
		client:     client,
		key:        key,
		maxEntries: maxEntries,
		closed:     false,
	}, nil
}

// Record pushes the statement text onto the audit list and trims the
// list to its configured cap.
func (s *RedisAuditSink) Record(ctx context.Context, sqlText string) {
	if s.closed {
		return
	}

	if err := s.client.LPush(ctx, s.key, sqlText).Err(); err != nil {
		log.Printf("[AUDIT] ERROR: Failed to push statement: %v", err)
		return
	}
	if err := s.client.LTrim(ctx, s.key, 0, s.maxEntries-1).Err(); err != nil {
		log.Printf("[AUDIT] ERROR: Failed to trim audit list: %v", err)
	}
}

// Recent returns up to n of the most recently recorded statements,
// newest first.
func (s *RedisAuditSink) Recent(ctx context.Context, n int64) ([]string, error) {
	if s.closed {
		return nil, fmt.Errorf("audit sink is closed")
	}
	if n <= 0 {
		n = s.maxEntries
	}
	return s.client.LRange(ctx, s.key, 0, n-1).Result()
}

// Close closes the connection to Redis.
func (s *RedisAuditSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.client.Close()
}
