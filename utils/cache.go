// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"quickbook/config"

	"github.com/go-redis/redis/v8"
)

// ContextCacheClient holds per-session chat history used for intent detection.
var ContextCacheClient *redis.Client

// InitContextCache initializes the Redis client for chat context.
func InitContextCache() {
	ContextCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisContextDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := ContextCacheClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (Context Cache): %v", err)
	}
}

// GetContextCacheClient returns the chat context client.
func GetContextCacheClient() *redis.Client {
	if ContextCacheClient == nil {
		InitContextCache()
	}
	return ContextCacheClient
}
