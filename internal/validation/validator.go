// Package validation проверяет сырой бриф специалиста против справочных
// данных и структурных ограничений. Все проверки выполняются за один проход
// без короткого замыкания: специалист видит сразу все нарушения.
package validation

import (
	"context"
	"errors"
	"fmt"

	"storycare-server/internal/models"
	"storycare-server/internal/refdata"
)

// Validate валидирует бриф. Ошибки валидации возвращаются как данные в
// ValidationResult; ошибка Go возвращается только при сбое обращения к
// справочным данным (недоступность хранилища и т.п.).
func Validate(ctx context.Context, brief *models.StoryBriefInput, ref refdata.Accessor) (*models.ValidationResult, error) {
	res := &models.ValidationResult{
		Errors:   []models.ValidationIssue{},
		Warnings: []models.ValidationIssue{},
	}

	if brief == nil {
		res.Errors = append(res.Errors, models.NewIssue(models.CodeMissingField, []string{"brief"}, "brief is missing"))
		res.IsValid = false
		return res, nil
	}

	checkPresence(brief, res)

	if err := checkReferenceData(ctx, brief, ref, res); err != nil {
		return nil, err
	}

	checkCardinality(brief, res)
	checkKeyMessageLength(brief, res)
	checkEnums(brief, res)
	checkDuplicateGoals(brief, res)

	res.IsValid = len(res.Errors) == 0
	return res, nil
}

// missingField добавляет ошибку MISSING_FIELD:<path>.
func missingField(res *models.ValidationResult, path string) {
	res.Errors = append(res.Errors,
		models.NewIssue(models.CodeMissingField, []string{path}, "required field %q is missing", path))
}

func checkPresence(brief *models.StoryBriefInput, res *models.ValidationResult) {
	if brief.CreatedBy == "" {
		missingField(res, "createdBy")
	}
	if brief.TherapeuticFocus.PrimaryTopic == "" {
		missingField(res, "therapeuticFocus.primaryTopic")
	}
	if brief.TherapeuticFocus.SpecificSituation == "" {
		missingField(res, "therapeuticFocus.specificSituation")
	}
	if brief.ChildProfile.AgeGroup == "" {
		missingField(res, "childProfile.ageGroup")
	}
	if brief.ChildProfile.EmotionalSensitivity == "" {
		missingField(res, "childProfile.emotionalSensitivity")
	}
	if brief.TherapeuticIntent.KeyMessage == "" {
		missingField(res, "therapeuticIntent.keyMessage")
	}
	if brief.LanguageTone.Complexity == "" {
		missingField(res, "languageTone.complexity")
	}
	if brief.LanguageTone.EmotionalTone == "" {
		missingField(res, "languageTone.emotionalTone")
	}
	if brief.StoryPreferences.CaregiverPresence == "" {
		missingField(res, "storyPreferences.caregiverPresence")
	}
	if brief.StoryPreferences.EndingStyle == "" {
		missingField(res, "storyPreferences.endingStyle")
	}
}

// lookupItem проверяет один справочный ключ. Возвращает найденный элемент
// (может быть nil) и инфраструктурную ошибку доступа к хранилищу.
func lookupItem(ctx context.Context, ref refdata.Accessor, category, field, key string, res *models.ValidationResult) (*models.ReferenceItem, error) {
	item, err := ref.GetItem(ctx, category, key)
	if err != nil {
		if errors.Is(err, models.ErrRefItemNotFound) {
			res.Errors = append(res.Errors, models.NewIssue(models.CodeUnknownOrInactive,
				[]string{field, key}, "value %q is not a known %s", key, category))
			return nil, nil
		}
		return nil, fmt.Errorf("reference lookup failed for %s/%s: %w", category, key, err)
	}
	if !item.Active {
		res.Errors = append(res.Errors, models.NewIssue(models.CodeUnknownOrInactive,
			[]string{field, key}, "value %q is inactive in %s", key, category))
	}
	if item.Caution {
		res.Warnings = append(res.Warnings, models.NewIssue(models.CodeReferenceItemCaution,
			[]string{field, key}, "value %q is flagged for caution, review before use", key))
	}
	return item, nil
}

func checkReferenceData(ctx context.Context, brief *models.StoryBriefInput, ref refdata.Accessor, res *models.ValidationResult) error {
	var situation *models.ReferenceItem

	if key := brief.TherapeuticFocus.PrimaryTopic; key != "" {
		if _, err := lookupItem(ctx, ref, models.CategoryTopics, "therapeuticFocus.primaryTopic", key, res); err != nil {
			return err
		}
	}
	if key := brief.TherapeuticFocus.SpecificSituation; key != "" {
		item, err := lookupItem(ctx, ref, models.CategorySituations, "therapeuticFocus.specificSituation", key, res)
		if err != nil {
			return err
		}
		situation = item
	}
	for _, goal := range brief.TherapeuticIntent.EmotionalGoals {
		if _, err := lookupItem(ctx, ref, models.CategoryEmotionalGoals, "therapeuticIntent.emotionalGoals", goal, res); err != nil {
			return err
		}
	}
	for _, excl := range brief.SafetyConstraints.Exclusions {
		if _, err := lookupItem(ctx, ref, models.CategoryExclusions, "safetyConstraints.exclusions", excl, res); err != nil {
			return err
		}
	}

	// Кросс-проверка: ситуация обязана принадлежать выбранной теме.
	// Выполняется всегда, когда ситуация найдена, независимо от активности
	// обоих ключей.
	if situation != nil && brief.TherapeuticFocus.PrimaryTopic != "" &&
		situation.TopicKey != brief.TherapeuticFocus.PrimaryTopic {
		res.Errors = append(res.Errors, models.NewIssue(models.CodeTopicSituationMismatch, nil,
			"situation %q belongs to topic %q, not %q",
			brief.TherapeuticFocus.SpecificSituation, situation.TopicKey, brief.TherapeuticFocus.PrimaryTopic))
	}
	return nil
}

func checkCardinality(brief *models.StoryBriefInput, res *models.ValidationResult) {
	n := len(brief.TherapeuticIntent.EmotionalGoals)
	if n < models.MinEmotionalGoals || n > models.MaxEmotionalGoals {
		res.Errors = append(res.Errors, models.NewIssue(models.CodeGoalsCardinality, nil,
			"emotionalGoals must contain between %d and %d entries, got %d",
			models.MinEmotionalGoals, models.MaxEmotionalGoals, n))
	}
}

func checkKeyMessageLength(brief *models.StoryBriefInput, res *models.ValidationResult) {
	// Длина в символах, не в байтах.
	if n := len([]rune(brief.TherapeuticIntent.KeyMessage)); n > models.MaxKeyMessageLength {
		res.Errors = append(res.Errors, models.NewIssue(models.CodeKeyMessageTooLong, nil,
			"keyMessage is %d characters, the limit is %d", n, models.MaxKeyMessageLength))
	}
}

// checkEnums проверяет закрытые множества. Пустые значения уже учтены
// проверкой обязательности и не дублируются как INVALID_ENUM.
func checkEnums(brief *models.StoryBriefInput, res *models.ValidationResult) {
	invalidEnum := func(path string, value string) {
		res.Errors = append(res.Errors, models.NewIssue(models.CodeInvalidEnum, []string{path},
			"value %q is not allowed for %s", value, path))
	}

	if v := brief.ChildProfile.AgeGroup; v != "" && !v.Valid() {
		invalidEnum("childProfile.ageGroup", string(v))
	}
	if v := brief.ChildProfile.EmotionalSensitivity; v != "" && !v.Valid() {
		invalidEnum("childProfile.emotionalSensitivity", string(v))
	}
	if v := brief.LanguageTone.Complexity; v != "" && !v.Valid() {
		invalidEnum("languageTone.complexity", string(v))
	}
	if v := brief.LanguageTone.EmotionalTone; v != "" && !v.Valid() {
		invalidEnum("languageTone.emotionalTone", string(v))
	}
	if v := brief.StoryPreferences.CaregiverPresence; v != "" && !v.Valid() {
		invalidEnum("storyPreferences.caregiverPresence", string(v))
	}
	if v := brief.StoryPreferences.EndingStyle; v != "" && !v.Valid() {
		invalidEnum("storyPreferences.endingStyle", string(v))
	}
}

// checkDuplicateGoals помечает дубликаты целей предупреждением: компилятор
// дедуплицирует их молча, но специалисту полезно это видеть.
func checkDuplicateGoals(brief *models.StoryBriefInput, res *models.ValidationResult) {
	seen := make(map[string]struct{}, len(brief.TherapeuticIntent.EmotionalGoals))
	for _, goal := range brief.TherapeuticIntent.EmotionalGoals {
		if _, ok := seen[goal]; ok {
			res.Warnings = append(res.Warnings, models.NewIssue(models.CodeDuplicateGoals, nil,
				"emotionalGoals contains duplicates, they are merged during compilation"))
			return
		}
		seen[goal] = struct{}{}
	}
}
