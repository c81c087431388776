package models

// Категории справочных данных. Каждая категория хранится
// в отдельной коллекции документного хранилища.
const (
	CategoryTopics         = "topics"
	CategorySituations     = "situations"
	CategoryEmotionalGoals = "emotionalGoals"
	CategoryExclusions     = "exclusions"
)

// ReferenceCategories lists every known reference data category.
var ReferenceCategories = []string{
	CategoryTopics,
	CategorySituations,
	CategoryEmotionalGoals,
	CategoryExclusions,
}

// ReferenceItem is a single enumerated reference value (topic, situation,
// emotional goal or exclusion). Inactive items fail validation; items flagged
// with Caution pass validation but produce a warning.
type ReferenceItem struct {
	Key    string `firestore:"key" json:"key" yaml:"key"`
	Label  string `firestore:"label" json:"label" yaml:"label"`
	Active bool   `firestore:"active" json:"active" yaml:"active"`
	// TopicKey заполняется только для ситуаций: ключ родительской темы.
	TopicKey string `firestore:"topicKey,omitempty" json:"topicKey,omitempty" yaml:"topicKey,omitempty"`
	Caution  bool   `firestore:"caution,omitempty" json:"caution,omitempty" yaml:"caution,omitempty"`
}
