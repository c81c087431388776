package rules

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"storycare-server/internal/models"
)

// MemoryStore - in-memory реализация Store для тестов и локального запуска.
type MemoryStore struct {
	mu             sync.RWMutex
	bundles        map[string]*models.ClinicalRulesBundle
	defaultVersion string
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore создает пустой MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{bundles: make(map[string]*models.ClinicalRulesBundle)}
}

func (s *MemoryStore) GetBundle(_ context.Context, version string) (*models.ClinicalRulesBundle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bundle, ok := s.bundles[version]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrRulesVersionNotFound, version)
	}
	cp := *bundle
	return &cp, nil
}

func (s *MemoryStore) DefaultVersion(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.defaultVersion == "" {
		return "", fmt.Errorf("%w: default version is not published", models.ErrRulesVersionNotFound)
	}
	return s.defaultVersion, nil
}

func (s *MemoryStore) SaveBundle(_ context.Context, bundle *models.ClinicalRulesBundle) error {
	if bundle.Version == "" {
		return fmt.Errorf("%w: bundle version is empty", models.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *bundle
	s.bundles[bundle.Version] = &cp
	return nil
}

func (s *MemoryStore) SetDefaultVersion(_ context.Context, version string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bundles[version]; !ok {
		return fmt.Errorf("%w: %s", models.ErrRulesVersionNotFound, version)
	}
	s.defaultVersion = version
	return nil
}

func (s *MemoryStore) ListVersions(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	versions := make([]string, 0, len(s.bundles))
	for v := range s.bundles {
		versions = append(versions, v)
	}
	sort.Strings(versions)
	return versions, nil
}
