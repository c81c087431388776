package models

import (
	"fmt"
	"time"
)

// Коды ошибок валидации брифа. Коды с параметрами (путь поля, ключ)
// собираются через двоеточие, например "MISSING_FIELD:therapeuticFocus.primaryTopic".
const (
	CodeMissingField           = "MISSING_FIELD"
	CodeUnknownOrInactive      = "UNKNOWN_OR_INACTIVE"
	CodeTopicSituationMismatch = "TOPIC_SITUATION_MISMATCH"
	CodeGoalsCardinality       = "GOALS_CARDINALITY"
	CodeKeyMessageTooLong      = "KEY_MESSAGE_TOO_LONG"
	CodeInvalidEnum            = "INVALID_ENUM"
)

// Коды предупреждений (не блокируют компиляцию).
const (
	CodeReferenceItemCaution = "REFERENCE_ITEM_CAUTION"
	CodeDuplicateGoals       = "DUPLICATE_GOALS"
)

// ValidationIssue is one structured error or warning produced by brief validation.
type ValidationIssue struct {
	Code    string `firestore:"code" json:"code"`
	Message string `firestore:"message" json:"message"`
}

// NewIssue собирает ValidationIssue, склеивая код с параметрами через двоеточие.
func NewIssue(code string, params []string, format string, args ...interface{}) ValidationIssue {
	full := code
	for _, p := range params {
		full += ":" + p
	}
	return ValidationIssue{Code: full, Message: fmt.Sprintf(format, args...)}
}

// ValidationResult is the outcome of validating a StoryBriefInput.
// IsValid is true iff Errors is empty; warnings never block compilation.
type ValidationResult struct {
	IsValid  bool              `json:"isValid"`
	Errors   []ValidationIssue `json:"errors"`
	Warnings []ValidationIssue `json:"warnings"`
}

// ContractStatus is the compilation status of a GenerationContract.
type ContractStatus string

const (
	ContractStatusOK               ContractStatus = "ok"
	ContractStatusFailedValidation ContractStatus = "failed_validation"
)

// LengthBudget is the scene/word budget taken from the age rule.
type LengthBudget struct {
	MinScenes int `firestore:"minScenes" json:"minScenes"`
	MaxScenes int `firestore:"maxScenes" json:"maxScenes"`
	MaxWords  int `firestore:"maxWords" json:"maxWords"`
}

// EndingContract fixes the ending style and its safe-closure requirement.
type EndingContract struct {
	Style               EndingStyle `firestore:"style" json:"style"`
	RequiresSafeClosure bool        `firestore:"requiresSafeClosure" json:"requiresSafeClosure"`
}

// GenerationContract - скомпилированный контракт генерации: единственный
// источник требований для построения промптов. Контракт принадлежит ровно
// одному брифу и перезаписывается при рекомпиляции (CreatedAt сохраняется).
type GenerationContract struct {
	BriefID            string            `firestore:"briefId" json:"briefId"`
	RulesVersionUsed   string            `firestore:"rulesVersionUsed" json:"rulesVersionUsed"`
	Status             ContractStatus    `firestore:"status" json:"status"`
	Errors             []ValidationIssue `firestore:"errors" json:"errors"`
	Warnings           []ValidationIssue `firestore:"warnings" json:"warnings"`
	LengthBudget       LengthBudget      `firestore:"lengthBudget" json:"lengthBudget"`
	RequiredElements   []string          `firestore:"requiredElements" json:"requiredElements"`
	AllowedCopingTools []string          `firestore:"allowedCopingTools" json:"allowedCopingTools"`
	MustAvoid          []string          `firestore:"mustAvoid" json:"mustAvoid"`
	EndingContract     EndingContract    `firestore:"endingContract" json:"endingContract"`
	CreatedAt          time.Time         `firestore:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time         `firestore:"updatedAt" json:"updatedAt"`
}
