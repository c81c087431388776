package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storycare-server/internal/contract"
	"storycare-server/internal/messaging"
	"storycare-server/internal/mocks"
	"storycare-server/internal/models"
	"storycare-server/internal/refdata"
	"storycare-server/internal/rules"
	"storycare-server/internal/service"
)

// newServiceCompiler собирает настоящий компилятор на фикстурах: сервис
// принимает конкретный *contract.Compiler, подменять его нечем.
func newServiceCompiler(t *testing.T, contracts contract.Store) *contract.Compiler {
	t.Helper()
	ctx := context.Background()

	accessor := refdata.NewMemoryAccessor(map[string][]models.ReferenceItem{
		models.CategoryTopics:     {{Key: "fear_anxiety", Active: true}},
		models.CategorySituations: {{Key: "fear_of_school", Active: true, TopicKey: "fear_anxiety"}},
		models.CategoryEmotionalGoals: {
			{Key: "reduce_fear", Active: true},
		},
		models.CategoryExclusions: {{Key: "darkness", Active: true}},
	})

	store := rules.NewMemoryStore()
	require.NoError(t, store.SaveBundle(ctx, &models.ClinicalRulesBundle{
		Version: "v1",
		AgeRules: map[string]models.AgeRule{
			"6_9": {MinScenes: 4, MaxScenes: 7, MaxWords: 900, MandatoryElements: []string{"protagonist_agency"}},
		},
		GoalMappings: map[string]models.GoalMapping{
			"reduce_fear": {RequiredElements: []string{"fear_named"}, RecommendedCopingTools: []string{"deep_breathing"}},
		},
		CopingTools: map[string]models.CopingTool{"deep_breathing": {}},
		EndingRules: map[string]models.EndingRule{
			"calm_resolution": {RequiresSafeClosure: true, ForbiddenPatterns: []string{"unresolved_threat"}},
		},
		SensitivityRules: map[string]models.SensitivityRule{"medium": {}},
		Exclusions:       map[string]models.ExclusionRule{"darkness": {MustAvoidPhrasesOrThemes: []string{"dark_rooms"}}},
	}))
	require.NoError(t, store.SetDefaultVersion(ctx, "v1"))

	loader := rules.NewCachedLoader(store, rules.NewMemoryCache(), zap.NewNop())
	return contract.NewCompiler(accessor, loader, contracts, zap.NewNop())
}

func submittableBrief() *models.StoryBriefInput {
	return &models.StoryBriefInput{
		CreatedBy: "specialist-1",
		TherapeuticFocus: models.TherapeuticFocus{
			PrimaryTopic:      "fear_anxiety",
			SpecificSituation: "fear_of_school",
		},
		ChildProfile: models.ChildProfile{
			AgeGroup:             models.AgeGroup6to9,
			EmotionalSensitivity: models.SensitivityMedium,
		},
		TherapeuticIntent: models.TherapeuticIntent{
			EmotionalGoals: []string{"reduce_fear"},
			KeyMessage:     "School can feel safe.",
		},
		LanguageTone: models.LanguageTone{
			Complexity:    models.ComplexitySimple,
			EmotionalTone: models.ToneWarm,
		},
		SafetyConstraints: models.SafetyConstraints{Exclusions: []string{"darkness"}},
		StoryPreferences: models.StoryPreferences{
			CaregiverPresence: models.CaregiverIncluded,
			EndingStyle:       models.EndingCalmResolution,
		},
	}
}

func TestBriefService_SubmitBrief_Success(t *testing.T) {
	briefs := mocks.NewMockBriefRepository(t)
	contracts := mocks.NewMockContractStore(t)
	publisher := mocks.NewMockTaskPublisher(t)

	briefs.On("Create", mock.Anything, mock.AnythingOfType("*models.StoryBrief")).Return(nil).Once()
	contracts.On("Get", mock.Anything, mock.AnythingOfType("string")).Return(nil, models.ErrContractNotFound).Once()
	contracts.On("Save", mock.Anything, mock.AnythingOfType("*models.GenerationContract")).Return(nil).Once()

	svc := service.NewBriefService(briefs, contracts, newServiceCompiler(t, contracts), publisher, zap.NewNop())

	brief, compiled, err := svc.SubmitBrief(context.Background(), submittableBrief())
	require.NoError(t, err)
	require.NotNil(t, brief)
	require.NotNil(t, compiled)

	assert.Equal(t, models.BriefStatusCompiled, brief.Status)
	assert.Equal(t, models.ContractStatusOK, compiled.Status)
	assert.Equal(t, brief.ID.String(), compiled.BriefID)

	briefs.AssertExpectations(t)
	contracts.AssertExpectations(t)
	// Постановка в очередь - отдельная операция, не часть SubmitBrief.
	publisher.AssertNotCalled(t, "PublishGenerationTask")
}

func TestBriefService_SubmitBrief_FailedValidation(t *testing.T) {
	briefs := mocks.NewMockBriefRepository(t)
	contracts := mocks.NewMockContractStore(t)
	publisher := mocks.NewMockTaskPublisher(t)

	briefs.On("Create", mock.Anything, mock.AnythingOfType("*models.StoryBrief")).Return(nil).Once()
	contracts.On("Get", mock.Anything, mock.AnythingOfType("string")).Return(nil, models.ErrContractNotFound).Once()
	contracts.On("Save", mock.Anything, mock.AnythingOfType("*models.GenerationContract")).Return(nil).Once()
	// Бриф переводится в failed_validation после неудачной компиляции.
	briefs.On("Update", mock.Anything, mock.AnythingOfType("*models.StoryBrief")).Return(nil).Once().
		Run(func(args mock.Arguments) {
			updated := args.Get(1).(*models.StoryBrief)
			assert.Equal(t, models.BriefStatusFailedValidation, updated.Status)
		})

	svc := service.NewBriefService(briefs, contracts, newServiceCompiler(t, contracts), publisher, zap.NewNop())

	input := submittableBrief()
	input.TherapeuticFocus.PrimaryTopic = "no_such_topic"

	brief, compiled, err := svc.SubmitBrief(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, models.BriefStatusFailedValidation, brief.Status)
	assert.Equal(t, models.ContractStatusFailedValidation, compiled.Status)
	assert.NotEmpty(t, compiled.Errors)

	briefs.AssertExpectations(t)
}

func TestBriefService_SubmitBrief_NilInput(t *testing.T) {
	briefs := mocks.NewMockBriefRepository(t)
	contracts := mocks.NewMockContractStore(t)
	publisher := mocks.NewMockTaskPublisher(t)

	svc := service.NewBriefService(briefs, contracts, newServiceCompiler(t, contracts), publisher, zap.NewNop())

	_, _, err := svc.SubmitBrief(context.Background(), nil)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	briefs.AssertNotCalled(t, "Create")
}

func TestBriefService_DeleteBrief_CascadesToContract(t *testing.T) {
	t.Run("deletes contract together with brief", func(t *testing.T) {
		briefs := mocks.NewMockBriefRepository(t)
		contracts := mocks.NewMockContractStore(t)
		publisher := mocks.NewMockTaskPublisher(t)

		briefs.On("Delete", mock.Anything, "brief-1").Return(nil).Once()
		contracts.On("Delete", mock.Anything, "brief-1").Return(nil).Once()

		svc := service.NewBriefService(briefs, contracts, newServiceCompiler(t, contracts), publisher, zap.NewNop())
		require.NoError(t, svc.DeleteBrief(context.Background(), "brief-1"))
		contracts.AssertNumberOfCalls(t, "Delete", 1)
	})

	t.Run("missing contract is not an error", func(t *testing.T) {
		briefs := mocks.NewMockBriefRepository(t)
		contracts := mocks.NewMockContractStore(t)
		publisher := mocks.NewMockTaskPublisher(t)

		briefs.On("Delete", mock.Anything, "brief-1").Return(nil).Once()
		contracts.On("Delete", mock.Anything, "brief-1").Return(models.ErrContractNotFound).Once()

		svc := service.NewBriefService(briefs, contracts, newServiceCompiler(t, contracts), publisher, zap.NewNop())
		assert.NoError(t, svc.DeleteBrief(context.Background(), "brief-1"))
	})
}

func TestBriefService_RequestGeneration(t *testing.T) {
	t.Run("publishes task for ok contract", func(t *testing.T) {
		briefs := mocks.NewMockBriefRepository(t)
		contracts := mocks.NewMockContractStore(t)
		publisher := mocks.NewMockTaskPublisher(t)

		contracts.On("Get", mock.Anything, "brief-1").Return(&models.GenerationContract{
			BriefID:          "brief-1",
			Status:           models.ContractStatusOK,
			RulesVersionUsed: "v1",
		}, nil).Once()

		var published messaging.GenerationTaskPayload
		publisher.On("PublishGenerationTask", mock.Anything, mock.AnythingOfType("messaging.GenerationTaskPayload")).
			Return(nil).Once().
			Run(func(args mock.Arguments) {
				published = args.Get(1).(messaging.GenerationTaskPayload)
			})

		svc := service.NewBriefService(briefs, contracts, newServiceCompiler(t, contracts), publisher, zap.NewNop())

		taskID, err := svc.RequestGeneration(context.Background(), "brief-1", "specialist-1")
		require.NoError(t, err)
		assert.NotEmpty(t, taskID)
		assert.Equal(t, taskID, published.TaskID)
		assert.Equal(t, "brief-1", published.BriefID)
		assert.Equal(t, "specialist-1", published.SpecialistID)
		assert.Equal(t, "v1", published.RulesVersion)
		assert.False(t, published.QueuedAt.IsZero())
	})

	t.Run("rejects failed_validation contract", func(t *testing.T) {
		briefs := mocks.NewMockBriefRepository(t)
		contracts := mocks.NewMockContractStore(t)
		publisher := mocks.NewMockTaskPublisher(t)

		contracts.On("Get", mock.Anything, "brief-1").Return(&models.GenerationContract{
			BriefID: "brief-1",
			Status:  models.ContractStatusFailedValidation,
		}, nil).Once()

		svc := service.NewBriefService(briefs, contracts, newServiceCompiler(t, contracts), publisher, zap.NewNop())

		_, err := svc.RequestGeneration(context.Background(), "brief-1", "specialist-1")
		assert.ErrorIs(t, err, models.ErrContractNotCompiled)
		publisher.AssertNotCalled(t, "PublishGenerationTask")
	})

	t.Run("propagates publish error", func(t *testing.T) {
		briefs := mocks.NewMockBriefRepository(t)
		contracts := mocks.NewMockContractStore(t)
		publisher := mocks.NewMockTaskPublisher(t)

		contracts.On("Get", mock.Anything, "brief-1").Return(&models.GenerationContract{
			BriefID: "brief-1",
			Status:  models.ContractStatusOK,
		}, nil).Once()
		pubErr := errors.New("broker is down")
		publisher.On("PublishGenerationTask", mock.Anything, mock.Anything).Return(pubErr).Once()

		svc := service.NewBriefService(briefs, contracts, newServiceCompiler(t, contracts), publisher, zap.NewNop())

		_, err := svc.RequestGeneration(context.Background(), "brief-1", "specialist-1")
		assert.ErrorIs(t, err, pubErr)
	})
}

func TestBriefService_Recompile_UpdatesBriefStatus(t *testing.T) {
	briefs := mocks.NewMockBriefRepository(t)
	contracts := mocks.NewMockContractStore(t)
	publisher := mocks.NewMockTaskPublisher(t)

	// Бриф ранее провалил валидацию, но его ввод теперь валиден.
	stored := &models.StoryBrief{
		Input:  *submittableBrief(),
		Status: models.BriefStatusFailedValidation,
	}
	briefs.On("GetByID", mock.Anything, mock.AnythingOfType("string")).Return(stored, nil).Once()
	contracts.On("Get", mock.Anything, mock.AnythingOfType("string")).Return(nil, models.ErrContractNotFound).Once()
	contracts.On("Save", mock.Anything, mock.AnythingOfType("*models.GenerationContract")).Return(nil).Once()
	briefs.On("Update", mock.Anything, mock.AnythingOfType("*models.StoryBrief")).Return(nil).Once().
		Run(func(args mock.Arguments) {
			updated := args.Get(1).(*models.StoryBrief)
			assert.Equal(t, models.BriefStatusCompiled, updated.Status)
		})

	svc := service.NewBriefService(briefs, contracts, newServiceCompiler(t, contracts), publisher, zap.NewNop())

	compiled, err := svc.Recompile(context.Background(), stored.ID.String())
	require.NoError(t, err)
	assert.Equal(t, models.ContractStatusOK, compiled.Status)

	briefs.AssertExpectations(t)
}
