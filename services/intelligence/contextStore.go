// File: services/intelligence/contextStore.go
package ai

import (
	"context"
	"time"

	"quickbook/models"

	"github.com/go-redis/redis/v8"
)

const chatContextPrefix = "chat:ctx:"

// maxHistory bounds how many prior messages feed the classifier.
const maxHistory = 20

// ContextStore keeps the recent messages of a chat session. Sessions are
// keyed per workspace and bot so ids from one tenant never read another's.
type ContextStore interface {
	Get(ctx context.Context, scope models.TenantScope, sessionID string) (*models.ChatContext, error)
	Append(ctx context.Context, scope models.TenantScope, sessionID, message string) error
}

type RedisContextStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisContextStore(client *redis.Client, ttl time.Duration) *RedisContextStore {
	return &RedisContextStore{client: client, ttl: ttl}
}

func contextKey(scope models.TenantScope, sessionID string) string {
	return chatContextPrefix + scope.WorkspaceID + ":" + scope.BotID + ":" + sessionID
}

func (s *RedisContextStore) Get(ctx context.Context, scope models.TenantScope, sessionID string) (*models.ChatContext, error) {
	msgs, err := s.client.LRange(ctx, contextKey(scope, sessionID), 0, -1).Result()
	if err == redis.Nil {
		return &models.ChatContext{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &models.ChatContext{Messages: msgs}, nil
}

// Append pushes a message, trims the history and refreshes the TTL in one round trip.
func (s *RedisContextStore) Append(ctx context.Context, scope models.TenantScope, sessionID, message string) error {
	key := contextKey(scope, sessionID)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, message)
		pipe.LTrim(ctx, key, -maxHistory, -1)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	return err
}
