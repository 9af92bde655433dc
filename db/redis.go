// api/db/redis.go
package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	perm_errors "github.com/strafeup/permissions/api/errors"
	logger "github.com/strafeup/permissions/api/logging"
	"github.com/strafeup/permissions/api/model"
)

var RedisClient *redis.Client

const structureKey = "structure:snapshot"

// unlockScript deletes the lock only while it still holds our token.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func InitRedis() error {
	RedisClient = redis.NewClient(&redis.Options{
		Addr:         viper.GetString("redis.addr"),
		Password:     viper.GetString("redis.password"),
		DB:           viper.GetInt("redis.db"),
		DialTimeout:  viper.GetDuration("redis.dialTimeout"),
		ReadTimeout:  viper.GetDuration("redis.readTimeout"),
		WriteTimeout: viper.GetDuration("redis.writeTimeout"),
		PoolSize:     viper.GetInt("redis.poolSize"),
		PoolTimeout:  viper.GetDuration("redis.poolTimeout"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := RedisClient.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Successfully connected to Redis")
	return nil
}

func CloseRedis() {
	if RedisClient != nil {
		if err := RedisClient.Close(); err != nil {
			logger.Error("Error closing Redis connection", zap.Error(err))
		}
	}
}

func CacheStructure(ctx context.Context, structure model.Structure, ttl time.Duration) error {
	structureJSON, err := json.Marshal(structure)
	if err != nil {
		return fmt.Errorf("failed to marshal structure: %w", err)
	}

	err = RedisClient.Set(ctx, structureKey, structureJSON, ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to cache structure: %w", err)
	}

	logger.Debug("Structure cached successfully", zap.Int("buildings", len(structure)), zap.Duration("ttl", ttl))
	return nil
}

// GetCachedStructure returns nil without error on a cache miss.
func GetCachedStructure(ctx context.Context) (model.Structure, error) {
	structureJSON, err := RedisClient.Get(ctx, structureKey).Result()
	if err == redis.Nil {
		logger.Debug("Structure not found in cache")
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get structure from cache: %w", err)
	}

	var structure model.Structure
	err = json.Unmarshal([]byte(structureJSON), &structure)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal structure: %w", err)
	}

	logger.Debug("Structure retrieved from cache", zap.Int("buildings", len(structure)))
	return structure, nil
}

func RateLimit(ctx context.Context, key string, limit int, per time.Duration) (bool, error) {
	pipe := RedisClient.Pipeline()
	now := time.Now().UnixNano()
	key = fmt.Sprintf("ratelimit:%s", key)

	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", now-(per.Nanoseconds())))
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now), Member: now})
	pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, per)

	cmds, err := pipe.Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to execute rate limit commands: %w", err)
	}

	count := cmds[2].(*redis.IntCmd).Val()
	allowed := count <= int64(limit)
	logger.Debug("Rate limit check",
		zap.String("key", key),
		zap.Int64("count", count),
		zap.Int("limit", limit),
		zap.Bool("allowed", allowed))
	return allowed, nil
}

// LockResource takes a short-lived exclusive lock and returns the function
// that releases it. ErrLockNotAcquired is returned when someone else holds it.
func LockResource(ctx context.Context, resourceName string, ttl time.Duration) (func(context.Context) error, error) {
	key := fmt.Sprintf("lock:%s", resourceName)
	token := uuid.New().String()
	locked, err := RedisClient.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	logger.Debug("Lock acquisition attempt",
		zap.String("resource", resourceName),
		zap.Bool("locked", locked))
	if !locked {
		return nil, fmt.Errorf("%s: %w", resourceName, perm_errors.ErrLockNotAcquired)
	}

	return func(ctx context.Context) error {
		if err := unlockScript.Run(ctx, RedisClient, []string{key}, token).Err(); err != nil {
			return fmt.Errorf("failed to release lock: %w", err)
		}
		logger.Debug("Lock released", zap.String("resource", resourceName))
		return nil
	}, nil
}
