package prompt_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storycare-server/internal/models"
	"storycare-server/internal/prompt"
)

func okContract() *models.GenerationContract {
	return &models.GenerationContract{
		BriefID:          "brief-1",
		RulesVersionUsed: "v1",
		Status:           models.ContractStatusOK,
		LengthBudget:     models.LengthBudget{MinScenes: 4, MaxScenes: 7, MaxWords: 900},
		RequiredElements: []string{"protagonist_agency", "fear_named"},
		AllowedCopingTools: []string{
			"deep_breathing", "brave_phrase",
		},
		MustAvoid: []string{"unresolved_threat", "dark_rooms"},
		EndingContract: models.EndingContract{
			Style:               models.EndingCalmResolution,
			RequiresSafeClosure: true,
		},
	}
}

func promptBrief() *models.StoryBriefInput {
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
		StoryPreferences: models.StoryPreferences{
			CaregiverPresence: models.CaregiverIncluded,
			EndingStyle:       models.EndingCalmResolution,
		},
	}
}

func TestBuildSystemPrompt_MentionsPlaceholders(t *testing.T) {
	p := prompt.BuildSystemPrompt()
	assert.Contains(t, p, "{{child_name}}")
	assert.Contains(t, p, "{{they}}")
	assert.Contains(t, p, "{{them}}")
	assert.Contains(t, p, "{{their}}")
}

func TestBuildUserPrompt_ContainsAllSections(t *testing.T) {
	p, err := prompt.BuildUserPrompt(okContract(), promptBrief())
	require.NoError(t, err)

	assert.Contains(t, p, "## Context")
	assert.Contains(t, p, "## Therapeutic intent")
	assert.Contains(t, p, "## Structure")
	assert.Contains(t, p, "## Required elements")
	assert.Contains(t, p, "## Coping tools")
	assert.Contains(t, p, "## MUST AVOID")
	assert.Contains(t, p, "## Output format")

	assert.Contains(t, p, "Between 4 and 7 scenes.")
	assert.Contains(t, p, "At most 900 words in total.")
	assert.Contains(t, p, "feeling safe and emotionally settled")
	assert.Contains(t, p, "unresolved_threat")
	assert.Contains(t, p, `"School can feel safe."`)
}

func TestBuildUserPrompt_IsDeterministic(t *testing.T) {
	first, err := prompt.BuildUserPrompt(okContract(), promptBrief())
	require.NoError(t, err)
	second, err := prompt.BuildUserPrompt(okContract(), promptBrief())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBuildUserPrompt_OmitsEmptySections(t *testing.T) {
	c := okContract()
	c.AllowedCopingTools = []string{}
	c.MustAvoid = []string{}

	p, err := prompt.BuildUserPrompt(c, promptBrief())
	require.NoError(t, err)
	assert.NotContains(t, p, "## Coping tools")
	assert.NotContains(t, p, "## MUST AVOID")
}

func TestBuildUserPrompt_CaregiverPresence(t *testing.T) {
	t.Run("included", func(t *testing.T) {
		p, err := prompt.BuildUserPrompt(okContract(), promptBrief())
		require.NoError(t, err)
		assert.Contains(t, p, "supportive caregiver figure must be present")
	})

	t.Run("self guided", func(t *testing.T) {
		brief := promptBrief()
		brief.StoryPreferences.CaregiverPresence = models.CaregiverSelfGuided
		p, err := prompt.BuildUserPrompt(okContract(), brief)
		require.NoError(t, err)
		assert.Contains(t, p, "without direct adult intervention")
	})
}

func TestBuildUserPrompt_RejectsBadInput(t *testing.T) {
	t.Run("nil contract", func(t *testing.T) {
		_, err := prompt.BuildUserPrompt(nil, promptBrief())
		assert.ErrorIs(t, err, models.ErrInvalidInput)
	})

	t.Run("nil brief", func(t *testing.T) {
		_, err := prompt.BuildUserPrompt(okContract(), nil)
		assert.ErrorIs(t, err, models.ErrInvalidInput)
	})

	t.Run("failed validation contract", func(t *testing.T) {
		c := okContract()
		c.Status = models.ContractStatusFailedValidation
		_, err := prompt.BuildUserPrompt(c, promptBrief())
		assert.ErrorIs(t, err, models.ErrContractNotCompiled)
	})
}

func TestBuildUserPrompt_PreservesListOrder(t *testing.T) {
	p, err := prompt.BuildUserPrompt(okContract(), promptBrief())
	require.NoError(t, err)

	// Порядок элементов контракта переносится в промпт как есть.
	idxAgency := strings.Index(p, "protagonist_agency")
	idxFear := strings.Index(p, "fear_named")
	require.NotEqual(t, -1, idxAgency)
	require.NotEqual(t, -1, idxFear)
	assert.Less(t, idxAgency, idxFear)
}
