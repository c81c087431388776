package rules

import (
	"context"
	"sync"

	"storycare-server/internal/models"
)

// BundleCache - read-through кеш бандлов правил. Бандлы иммутабельны в рамках
// версии, поэтому кешировать их безопасно; инвалидация нужна только при
// перепубликации версии.
type BundleCache interface {
	Get(ctx context.Context, version string) (*models.ClinicalRulesBundle, bool)
	Set(ctx context.Context, version string, bundle *models.ClinicalRulesBundle)
	Delete(ctx context.Context, version string)
}

// memoryCache - кеш в памяти процесса, безопасный для конкурентных читателей.
type memoryCache struct {
	mu      sync.RWMutex
	bundles map[string]*models.ClinicalRulesBundle
}

var _ BundleCache = (*memoryCache)(nil)

// NewMemoryCache создает in-process BundleCache.
func NewMemoryCache() BundleCache {
	return &memoryCache{bundles: make(map[string]*models.ClinicalRulesBundle)}
}

func (c *memoryCache) Get(_ context.Context, version string) (*models.ClinicalRulesBundle, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	bundle, ok := c.bundles[version]
	return bundle, ok
}

func (c *memoryCache) Set(_ context.Context, version string, bundle *models.ClinicalRulesBundle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	// Храним как есть: бандл после загрузки никогда не мутируется.
	c.bundles[version] = bundle
}

func (c *memoryCache) Delete(_ context.Context, version string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.bundles, version)
}
