package rules_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storycare-server/internal/models"
	"storycare-server/internal/rules"
)

// countingStore оборачивает MemoryStore и считает обращения к GetBundle,
// чтобы проверять поведение кеша.
type countingStore struct {
	*rules.MemoryStore
	getBundleCalls int
}

func (s *countingStore) GetBundle(ctx context.Context, version string) (*models.ClinicalRulesBundle, error) {
	s.getBundleCalls++
	return s.MemoryStore.GetBundle(ctx, version)
}

func completeBundle(version string) *models.ClinicalRulesBundle {
	return &models.ClinicalRulesBundle{
		Version:          version,
		AgeRules:         map[string]models.AgeRule{"6_9": {MinScenes: 4, MaxScenes: 7, MaxWords: 900}},
		GoalMappings:     map[string]models.GoalMapping{"reduce_fear": {}},
		CopingTools:      map[string]models.CopingTool{"deep_breathing": {}},
		EndingRules:      map[string]models.EndingRule{"calm_resolution": {RequiresSafeClosure: true}},
		SensitivityRules: map[string]models.SensitivityRule{"medium": {}},
		Exclusions:       map[string]models.ExclusionRule{"darkness": {}},
	}
}

func newCountingStore(t *testing.T, bundles ...*models.ClinicalRulesBundle) *countingStore {
	t.Helper()
	store := &countingStore{MemoryStore: rules.NewMemoryStore()}
	for _, b := range bundles {
		require.NoError(t, store.SaveBundle(context.Background(), b))
	}
	return store
}

func TestCachedLoader_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves empty version to default", func(t *testing.T) {
		store := newCountingStore(t, completeBundle("v1"))
		require.NoError(t, store.SetDefaultVersion(ctx, "v1"))
		loader := rules.NewCachedLoader(store, rules.NewMemoryCache(), zap.NewNop())

		bundle, err := loader.Load(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, "v1", bundle.Version)
	})

	t.Run("fails when no default is published", func(t *testing.T) {
		store := newCountingStore(t, completeBundle("v1"))
		loader := rules.NewCachedLoader(store, rules.NewMemoryCache(), zap.NewNop())

		_, err := loader.Load(ctx, "")
		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrRulesVersionNotFound)
	})

	t.Run("unknown version", func(t *testing.T) {
		store := newCountingStore(t, completeBundle("v1"))
		loader := rules.NewCachedLoader(store, rules.NewMemoryCache(), zap.NewNop())

		_, err := loader.Load(ctx, "v42")
		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrRulesVersionNotFound)
	})

	t.Run("second load is served from cache", func(t *testing.T) {
		store := newCountingStore(t, completeBundle("v1"))
		loader := rules.NewCachedLoader(store, rules.NewMemoryCache(), zap.NewNop())

		_, err := loader.Load(ctx, "v1")
		require.NoError(t, err)
		_, err = loader.Load(ctx, "v1")
		require.NoError(t, err)
		assert.Equal(t, 1, store.getBundleCalls)
	})

	t.Run("invalidate forces reload from store", func(t *testing.T) {
		store := newCountingStore(t, completeBundle("v1"))
		loader := rules.NewCachedLoader(store, rules.NewMemoryCache(), zap.NewNop())

		_, err := loader.Load(ctx, "v1")
		require.NoError(t, err)
		loader.Invalidate(ctx, "v1")
		_, err = loader.Load(ctx, "v1")
		require.NoError(t, err)
		assert.Equal(t, 2, store.getBundleCalls)
	})

	t.Run("nil cache goes to store every time", func(t *testing.T) {
		store := newCountingStore(t, completeBundle("v1"))
		loader := rules.NewCachedLoader(store, nil, zap.NewNop())

		_, err := loader.Load(ctx, "v1")
		require.NoError(t, err)
		_, err = loader.Load(ctx, "v1")
		require.NoError(t, err)
		assert.Equal(t, 2, store.getBundleCalls)
	})
}

func TestCachedLoader_RejectsIncompleteBundle(t *testing.T) {
	ctx := context.Background()

	incomplete := completeBundle("v1")
	incomplete.SensitivityRules = nil
	store := newCountingStore(t, incomplete)
	loader := rules.NewCachedLoader(store, rules.NewMemoryCache(), zap.NewNop())

	_, err := loader.Load(ctx, "v1")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrBundleIncomplete)
}
