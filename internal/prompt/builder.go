// Package prompt строит промпты для генерации терапевтических историй из
// скомпилированного контракта. Построение детерминировано: один и тот же
// контракт и бриф всегда дают байт-в-байт одинаковый промпт.
package prompt

import (
	"fmt"
	"strings"

	"storycare-server/internal/models"
)

const systemPrompt = `You are a children's story writer working under the guidance of child psychologists.
You write short therapeutic stories that help children process difficult situations.
You always follow the structural requirements and safety constraints given to you exactly.
You never include content from the MUST AVOID list, directly or indirectly.
You write in simple, warm language appropriate for the target age group.
The protagonist is referred to as {{child_name}}; use the neutral placeholders {{they}}, {{them}} and {{their}} for pronouns.`

// ErrContractNotCompilable возвращается при попытке построить промпт из
// контракта, не прошедшего валидацию.
var errContractNotOK = models.ErrContractNotCompiled

// BuildSystemPrompt returns the fixed system prompt for story generation.
func BuildSystemPrompt() string {
	return systemPrompt
}

// BuildUserPrompt собирает пользовательский промпт из контракта и брифа.
// Контракт обязан иметь статус ok: промпты никогда не строятся из
// контрактов с ошибками валидации.
func BuildUserPrompt(contract *models.GenerationContract, brief *models.StoryBriefInput) (string, error) {
	if contract == nil || brief == nil {
		return "", fmt.Errorf("%w: contract or brief is nil", models.ErrInvalidInput)
	}
	if contract.Status != models.ContractStatusOK {
		return "", fmt.Errorf("%w: contract status is %s", errContractNotOK, contract.Status)
	}

	var b strings.Builder

	b.WriteString("Write a therapeutic children's story.\n\n")

	b.WriteString("## Context\n")
	fmt.Fprintf(&b, "- Topic: %s\n", brief.TherapeuticFocus.PrimaryTopic)
	fmt.Fprintf(&b, "- Situation: %s\n", brief.TherapeuticFocus.SpecificSituation)
	fmt.Fprintf(&b, "- Age group: %s\n", ageGroupLabel(brief.ChildProfile.AgeGroup))
	fmt.Fprintf(&b, "- Emotional sensitivity: %s\n", brief.ChildProfile.EmotionalSensitivity)
	fmt.Fprintf(&b, "- Language complexity: %s\n", brief.LanguageTone.Complexity)
	fmt.Fprintf(&b, "- Emotional tone: %s\n", brief.LanguageTone.EmotionalTone)
	if brief.StoryPreferences.CaregiverPresence == models.CaregiverIncluded {
		b.WriteString("- A supportive caregiver figure must be present in the story.\n")
	} else {
		b.WriteString("- The child resolves the situation without direct adult intervention; adults may exist in the background.\n")
	}
	b.WriteString("\n")

	b.WriteString("## Therapeutic intent\n")
	fmt.Fprintf(&b, "- Key message the child should internalize: %q\n", brief.TherapeuticIntent.KeyMessage)
	writeList(&b, "- Emotional goals:", brief.TherapeuticIntent.EmotionalGoals)
	b.WriteString("\n")

	b.WriteString("## Structure\n")
	fmt.Fprintf(&b, "- Between %d and %d scenes.\n", contract.LengthBudget.MinScenes, contract.LengthBudget.MaxScenes)
	fmt.Fprintf(&b, "- At most %d words in total.\n", contract.LengthBudget.MaxWords)
	fmt.Fprintf(&b, "- Ending style: %s.\n", endingStyleLabel(contract.EndingContract.Style))
	if contract.EndingContract.RequiresSafeClosure {
		b.WriteString("- The story must end with the child feeling safe and emotionally settled.\n")
	}
	b.WriteString("\n")

	b.WriteString("## Required elements\n")
	b.WriteString("Every element below must appear in the story:\n")
	writeList(&b, "", contract.RequiredElements)
	b.WriteString("\n")

	if len(contract.AllowedCopingTools) > 0 {
		b.WriteString("## Coping tools\n")
		b.WriteString("The child may use only these coping techniques:\n")
		writeList(&b, "", contract.AllowedCopingTools)
		b.WriteString("\n")
	}

	if len(contract.MustAvoid) > 0 {
		b.WriteString("## MUST AVOID\n")
		b.WriteString("The story must not contain, reference or allude to any of the following:\n")
		writeList(&b, "", contract.MustAvoid)
		b.WriteString("\n")
	}

	b.WriteString("## Output format\n")
	b.WriteString("Return the story title on the first line, then a blank line, then the story text.\n")
	b.WriteString("Use the placeholders {{child_name}}, {{they}}, {{them}} and {{their}} for the protagonist.\n")

	return b.String(), nil
}

// writeList пишет элементы маркированным списком, сохраняя порядок.
func writeList(b *strings.Builder, header string, items []string) {
	if header != "" {
		b.WriteString(header)
		b.WriteString("\n")
	}
	for _, item := range items {
		fmt.Fprintf(b, "  - %s\n", item)
	}
}

func ageGroupLabel(a models.AgeGroup) string {
	switch a {
	case models.AgeGroup3to5:
		return "3-5 years"
	case models.AgeGroup6to9:
		return "6-9 years"
	case models.AgeGroup10to12:
		return "10-12 years"
	default:
		return string(a)
	}
}

func endingStyleLabel(e models.EndingStyle) string {
	switch e {
	case models.EndingCalmResolution:
		return "a calm, fully resolved ending"
	case models.EndingOpenEnded:
		return "a gentle open ending that invites conversation"
	case models.EndingEmpowering:
		return "an empowering ending where the child's own action matters"
	default:
		return string(e)
	}
}
