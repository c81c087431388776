package models

import (
	"time"

	"github.com/google/uuid"
)

// AgeGroup identifies the child's age bracket used for clinical rule lookups.
type AgeGroup string

const (
	AgeGroup3to5   AgeGroup = "3_5"
	AgeGroup6to9   AgeGroup = "6_9"
	AgeGroup10to12 AgeGroup = "10_12"
)

// AgeGroups lists every valid age group in canonical order.
var AgeGroups = []AgeGroup{AgeGroup3to5, AgeGroup6to9, AgeGroup10to12}

func (a AgeGroup) Valid() bool {
	for _, v := range AgeGroups {
		if a == v {
			return true
		}
	}
	return false
}

// Sensitivity is the child's emotional sensitivity level.
type Sensitivity string

const (
	SensitivityLow    Sensitivity = "low"
	SensitivityMedium Sensitivity = "medium"
	SensitivityHigh   Sensitivity = "high"
)

func (s Sensitivity) Valid() bool {
	return s == SensitivityLow || s == SensitivityMedium || s == SensitivityHigh
}

// Complexity controls the language complexity of the generated story.
type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityAdvanced Complexity = "advanced"
)

func (c Complexity) Valid() bool {
	return c == ComplexitySimple || c == ComplexityModerate || c == ComplexityAdvanced
}

// EmotionalTone controls the overall tone of the generated story.
type EmotionalTone string

const (
	ToneWarm    EmotionalTone = "warm"
	ToneGentle  EmotionalTone = "gentle"
	TonePlayful EmotionalTone = "playful"
	ToneCalm    EmotionalTone = "calm"
)

func (t EmotionalTone) Valid() bool {
	return t == ToneWarm || t == ToneGentle || t == TonePlayful || t == ToneCalm
}

// CaregiverPresence determines whether a caregiver figure appears in the story.
type CaregiverPresence string

const (
	CaregiverIncluded   CaregiverPresence = "included"
	CaregiverSelfGuided CaregiverPresence = "self_guided"
)

func (p CaregiverPresence) Valid() bool {
	return p == CaregiverIncluded || p == CaregiverSelfGuided
}

// EndingStyle determines how the generated story has to end.
type EndingStyle string

const (
	EndingCalmResolution EndingStyle = "calm_resolution"
	EndingOpenEnded      EndingStyle = "open_ended"
	EndingEmpowering     EndingStyle = "empowering"
)

func (e EndingStyle) Valid() bool {
	return e == EndingCalmResolution || e == EndingOpenEnded || e == EndingEmpowering
}

// MaxKeyMessageLength ограничение длины ключевого сообщения брифа (в символах).
const MaxKeyMessageLength = 200

// Границы количества эмоциональных целей в одном брифе.
const (
	MinEmotionalGoals = 1
	MaxEmotionalGoals = 3
)

// TherapeuticFocus pins the brief to one topic and one concrete situation.
type TherapeuticFocus struct {
	PrimaryTopic      string `firestore:"primaryTopic" json:"primaryTopic"`
	SpecificSituation string `firestore:"specificSituation" json:"specificSituation"`
}

// ChildProfile describes the child the story is generated for.
type ChildProfile struct {
	AgeGroup             AgeGroup    `firestore:"ageGroup" json:"ageGroup"`
	EmotionalSensitivity Sensitivity `firestore:"emotionalSensitivity" json:"emotionalSensitivity"`
}

// TherapeuticIntent carries the emotional goals and the key message of the story.
type TherapeuticIntent struct {
	EmotionalGoals []string `firestore:"emotionalGoals" json:"emotionalGoals"`
	KeyMessage     string   `firestore:"keyMessage" json:"keyMessage"`
}

// LanguageTone controls complexity and tone of the generated text.
type LanguageTone struct {
	Complexity    Complexity    `firestore:"complexity" json:"complexity"`
	EmotionalTone EmotionalTone `firestore:"emotionalTone" json:"emotionalTone"`
}

// SafetyConstraints lists exclusion keys the story must respect.
type SafetyConstraints struct {
	Exclusions []string `firestore:"exclusions" json:"exclusions"`
}

// StoryPreferences carries structural preferences for the story.
type StoryPreferences struct {
	CaregiverPresence CaregiverPresence `firestore:"caregiverPresence" json:"caregiverPresence"`
	EndingStyle       EndingStyle       `firestore:"endingStyle" json:"endingStyle"`
}

// StoryBriefInput - сырые данные брифа, которые отправляет специалист.
// Все enum-поля проверяются валидатором на принадлежность закрытым множествам,
// ссылки на справочные данные - через ReferenceDataAccessor.
type StoryBriefInput struct {
	CreatedBy         string            `firestore:"createdBy" json:"createdBy"`
	TherapeuticFocus  TherapeuticFocus  `firestore:"therapeuticFocus" json:"therapeuticFocus"`
	ChildProfile      ChildProfile      `firestore:"childProfile" json:"childProfile"`
	TherapeuticIntent TherapeuticIntent `firestore:"therapeuticIntent" json:"therapeuticIntent"`
	LanguageTone      LanguageTone      `firestore:"languageTone" json:"languageTone"`
	SafetyConstraints SafetyConstraints `firestore:"safetyConstraints" json:"safetyConstraints"`
	StoryPreferences  StoryPreferences  `firestore:"storyPreferences" json:"storyPreferences"`
	// RulesVersion опционально пинит версию клинических правил для компиляции.
	// Пустая строка означает версию по умолчанию.
	RulesVersion string `firestore:"rulesVersion,omitempty" json:"rulesVersion,omitempty"`
}

// BriefStatus is the lifecycle status of a persisted brief.
type BriefStatus string

const (
	BriefStatusCompiled         BriefStatus = "compiled"
	BriefStatusFailedValidation BriefStatus = "failed_validation"
)

// StoryBrief is the persisted brief document.
type StoryBrief struct {
	ID        uuid.UUID       `firestore:"id" json:"id"`
	Input     StoryBriefInput `firestore:"input" json:"input"`
	Status    BriefStatus     `firestore:"status" json:"status"`
	CreatedAt time.Time       `firestore:"createdAt" json:"createdAt"`
	UpdatedAt time.Time       `firestore:"updatedAt" json:"updatedAt"`
}
