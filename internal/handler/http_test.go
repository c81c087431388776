package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storycare-server/internal/auth"
	"storycare-server/internal/contract"
	"storycare-server/internal/handler"
	"storycare-server/internal/mocks"
	"storycare-server/internal/models"
	"storycare-server/internal/refdata"
	"storycare-server/internal/rules"
	"storycare-server/internal/seed"
	"storycare-server/internal/service"
)

const testSecret = "test-secret-key-for-jwt"

// testEnv - полностью собранный HTTP стек на in-memory фикстурах
// и моках очереди/репозиториев.
type testEnv struct {
	router    *gin.Engine
	briefs    *mocks.MockBriefRepository
	drafts    *mocks.MockDraftRepository
	templates *mocks.MockTemplateRepository
	contracts *mocks.MockContractStore
	publisher *mocks.MockTaskPublisher
	rules     rules.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	ref := refdata.NewMemoryAccessor(nil)
	rulesStore := rules.NewMemoryStore()
	require.NoError(t, seed.Apply(ctx, ref, rulesStore, zap.NewNop()))
	loader := rules.NewCachedLoader(rulesStore, rules.NewMemoryCache(), zap.NewNop())

	briefRepo := mocks.NewMockBriefRepository(t)
	draftRepo := mocks.NewMockDraftRepository(t)
	templateRepo := mocks.NewMockTemplateRepository(t)
	contractStore := mocks.NewMockContractStore(t)
	publisher := mocks.NewMockTaskPublisher(t)

	compiler := contract.NewCompiler(ref, loader, contractStore, zap.NewNop())
	briefService := service.NewBriefService(briefRepo, contractStore, compiler, publisher, zap.NewNop())
	reviewService := service.NewReviewService(draftRepo, templateRepo, zap.NewNop())

	verifier, err := auth.NewJWTVerifier(testSecret, nil)
	require.NoError(t, err)

	h := handler.NewHandler(briefService, reviewService, ref, rulesStore, loader, verifier, zap.NewNop())
	return &testEnv{
		router:    h.NewRouter(nil),
		briefs:    briefRepo,
		drafts:    draftRepo,
		templates: templateRepo,
		contracts: contractStore,
		publisher: publisher,
		rules:     rulesStore,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, roles ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if len(roles) > 0 {
		token, err := auth.GenerateTestJWT("user-1", roles, testSecret, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// seededBrief - бриф, валидный против стартовых справочников и правил v1.
func seededBrief() map[string]interface{} {
	return map[string]interface{}{
		"therapeuticFocus": map[string]string{
			"primaryTopic":      "fear_anxiety",
			"specificSituation": "fear_of_school",
		},
		"childProfile": map[string]string{
			"ageGroup":             "6_9",
			"emotionalSensitivity": "medium",
		},
		"therapeuticIntent": map[string]interface{}{
			"emotionalGoals": []string{"reduce_fear"},
			"keyMessage":     "School can feel safe.",
		},
		"languageTone": map[string]string{
			"complexity":    "simple",
			"emotionalTone": "warm",
		},
		"safetyConstraints": map[string]interface{}{
			"exclusions": []string{"darkness"},
		},
		"storyPreferences": map[string]string{
			"caregiverPresence": "included",
			"endingStyle":       "calm_resolution",
		},
	}
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPIRequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/api/v1/briefs", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSubmitBrief(t *testing.T) {
	t.Run("valid brief returns 201", func(t *testing.T) {
		env := newTestEnv(t)
		env.briefs.On("Create", mock.Anything, mock.AnythingOfType("*models.StoryBrief")).Return(nil).Once().
			Run(func(args mock.Arguments) {
				brief := args.Get(1).(*models.StoryBrief)
				// createdBy подставляется из токена.
				assert.Equal(t, "user-1", brief.Input.CreatedBy)
			})
		env.contracts.On("Get", mock.Anything, mock.AnythingOfType("string")).Return(nil, models.ErrContractNotFound).Once()
		env.contracts.On("Save", mock.Anything, mock.AnythingOfType("*models.GenerationContract")).Return(nil).Once()

		w := env.do(t, http.MethodPost, "/api/v1/briefs", seededBrief(), models.RoleSpecialist)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp models.APIResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
	})

	t.Run("invalid brief returns 422 with failed contract", func(t *testing.T) {
		env := newTestEnv(t)
		env.briefs.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
		env.briefs.On("Update", mock.Anything, mock.Anything).Return(nil).Once()
		env.contracts.On("Get", mock.Anything, mock.AnythingOfType("string")).Return(nil, models.ErrContractNotFound).Once()
		env.contracts.On("Save", mock.Anything, mock.AnythingOfType("*models.GenerationContract")).Return(nil).Once()

		body := seededBrief()
		body["therapeuticFocus"] = map[string]string{
			"primaryTopic":      "no_such_topic",
			"specificSituation": "fear_of_school",
		}

		w := env.do(t, http.MethodPost, "/api/v1/briefs", body, models.RoleSpecialist)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

		var resp models.APIResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.Equal(t, "brief failed validation", resp.Error)
	})

	t.Run("malformed body returns 400", func(t *testing.T) {
		env := newTestEnv(t)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/briefs", bytes.NewBufferString("{not json"))
		token, err := auth.GenerateTestJWT("user-1", []string{models.RoleSpecialist}, testSecret, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetContract_NotFound(t *testing.T) {
	env := newTestEnv(t)
	env.contracts.On("Get", mock.Anything, "missing").Return(nil, models.ErrContractNotFound).Once()

	w := env.do(t, http.MethodGet, "/api/v1/briefs/missing/contract", nil, models.RoleSpecialist)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRequestGeneration(t *testing.T) {
	t.Run("queues task for ok contract", func(t *testing.T) {
		env := newTestEnv(t)
		env.contracts.On("Get", mock.Anything, "brief-1").Return(&models.GenerationContract{
			BriefID: "brief-1", Status: models.ContractStatusOK, RulesVersionUsed: "v1",
		}, nil).Once()
		env.publisher.On("PublishGenerationTask", mock.Anything, mock.Anything).Return(nil).Once()

		w := env.do(t, http.MethodPost, "/api/v1/briefs/brief-1/generate", nil, models.RoleSpecialist)
		require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), "taskId")
	})

	t.Run("conflict for failed contract", func(t *testing.T) {
		env := newTestEnv(t)
		env.contracts.On("Get", mock.Anything, "brief-1").Return(&models.GenerationContract{
			BriefID: "brief-1", Status: models.ContractStatusFailedValidation,
		}, nil).Once()

		w := env.do(t, http.MethodPost, "/api/v1/briefs/brief-1/generate", nil, models.RoleSpecialist)
		assert.Equal(t, http.StatusConflict, w.Code)
		env.publisher.AssertNotCalled(t, "PublishGenerationTask")
	})
}

func TestReferenceEndpoint(t *testing.T) {
	env := newTestEnv(t)

	t.Run("lists seeded topics", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/reference/topics", nil, models.RoleSpecialist)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "fear_anxiety")
	})

	t.Run("unknown category", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/reference/colors", nil, models.RoleSpecialist)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAdminEndpoints(t *testing.T) {
	t.Run("specialist is forbidden", func(t *testing.T) {
		env := newTestEnv(t)
		w := env.do(t, http.MethodGet, "/api/v1/admin/rules/versions", nil, models.RoleSpecialist)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("admin lists rules versions", func(t *testing.T) {
		env := newTestEnv(t)
		w := env.do(t, http.MethodGet, "/api/v1/admin/rules/versions", nil, models.RoleAdmin)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "v1")
		assert.Contains(t, w.Body.String(), "defaultVersion")
	})

	t.Run("admin upserts reference item", func(t *testing.T) {
		env := newTestEnv(t)
		item := map[string]interface{}{"label": "New topic", "active": true}
		w := env.do(t, http.MethodPut, "/api/v1/admin/reference/topics/new_topic", item, models.RoleAdmin)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		listed := env.do(t, http.MethodGet, "/api/v1/reference/topics", nil, models.RoleAdmin)
		assert.Contains(t, listed.Body.String(), "new_topic")
	})

	t.Run("admin saves and publishes a new rules version", func(t *testing.T) {
		env := newTestEnv(t)

		bundle, err := seed.LoadRulesFixture()
		require.NoError(t, err)
		bundle.Version = "v2"

		w := env.do(t, http.MethodPut, "/api/v1/admin/rules/v2", bundle, models.RoleAdmin)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = env.do(t, http.MethodPost, "/api/v1/admin/rules/v2/publish", nil, models.RoleAdmin)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		defaultVersion, err := env.rules.DefaultVersion(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "v2", defaultVersion)
	})
}

func TestPersonalizeTemplate(t *testing.T) {
	env := newTestEnv(t)
	env.templates.On("GetByID", mock.Anything, "tpl-1").Return(&models.StoryTemplate{
		Body: fmt.Sprintf("%s smiled.", models.PlaceholderChildName),
	}, nil).Once()

	w := env.do(t, http.MethodPost, "/api/v1/templates/tpl-1/personalize",
		map[string]string{"childName": "Mila"}, models.RoleSpecialist)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Mila smiled.")
}
