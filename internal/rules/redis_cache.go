package rules

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"storycare-server/internal/models"
)

const redisKeyPrefix = "clinical_rules:bundle:"

// redisCache - BundleCache поверх Redis, разделяемый между инстансами
// сервера и воркера. Ошибки Redis не фатальны: кеш-промах приводит к
// обычной загрузке из Store.
type redisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

var _ BundleCache = (*redisCache)(nil)

// NewRedisCache создает BundleCache поверх Redis с указанным TTL.
func NewRedisCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) BundleCache {
	return &redisCache{
		client: client,
		ttl:    ttl,
		logger: logger.Named("RulesRedisCache"),
	}
}

func (c *redisCache) key(version string) string {
	return redisKeyPrefix + version
}

func (c *redisCache) Get(ctx context.Context, version string) (*models.ClinicalRulesBundle, bool) {
	data, err := c.client.Get(ctx, c.key(version)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Redis get failed, falling back to store", zap.String("version", version), zap.Error(err))
		}
		return nil, false
	}

	var bundle models.ClinicalRulesBundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		// Поврежденная запись: удаляем и идем в Store.
		c.logger.Warn("Corrupted cached rules bundle, evicting", zap.String("version", version), zap.Error(err))
		c.Delete(ctx, version)
		return nil, false
	}
	return &bundle, true
}

func (c *redisCache) Set(ctx context.Context, version string, bundle *models.ClinicalRulesBundle) {
	data, err := json.Marshal(bundle)
	if err != nil {
		c.logger.Error("Failed to marshal rules bundle for cache", zap.String("version", version), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, c.key(version), data, c.ttl).Err(); err != nil {
		c.logger.Warn("Redis set failed", zap.String("version", version), zap.Error(err))
	}
}

func (c *redisCache) Delete(ctx context.Context, version string) {
	if err := c.client.Del(ctx, c.key(version)).Err(); err != nil {
		c.logger.Warn(fmt.Sprintf("Redis del failed for version %s", version), zap.Error(err))
	}
}
