package cache

import (
	"context"
	"encoding/json"
	"time"

	"commons/models"

	"github.com/go-redis/redis/v8"
)

const analysisPrefix = "analysis:"

type RedisClient struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisClient(ctx context.Context, addr string, ttl time.Duration) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		DB:           0,
		PoolSize:     50,
		MinIdleConns: 10,
		MaxRetries:   3,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return &RedisClient{
		client: rdb,
		ttl:    ttl,
	}, nil
}

func (rc *RedisClient) Close() error {
	return rc.client.Close()
}

func analysisKey(key string) string {
	return analysisPrefix + key
}

func (rc *RedisClient) SaveAnalysis(ctx context.Context, key string, result models.AnalysisResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}

	return rc.client.Set(ctx, analysisKey(key), data, rc.ttl).Err()
}

// GetAnalysis returns nil, nil when no result is stored for key.
func (rc *RedisClient) GetAnalysis(ctx context.Context, key string) (*models.AnalysisResult, error) {
	val, err := rc.client.Get(ctx, analysisKey(key)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(val), &result); err != nil {
		return nil, err
	}

	return &result, nil
}
