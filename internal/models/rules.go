package models

// AgeRule задает структурные рамки истории для возрастной группы.
type AgeRule struct {
	MinScenes          int      `firestore:"minScenes" json:"minScenes" yaml:"minScenes"`
	MaxScenes          int      `firestore:"maxScenes" json:"maxScenes" yaml:"maxScenes"`
	MaxWords           int      `firestore:"maxWords" json:"maxWords" yaml:"maxWords"`
	RecommendedDevices []string `firestore:"recommendedDevices" json:"recommendedDevices" yaml:"recommendedDevices"`
	MandatoryElements  []string `firestore:"mandatoryElements" json:"mandatoryElements" yaml:"mandatoryElements"`
}

// GoalMapping maps an emotional goal to the narrative elements it requires
// and the coping tools it recommends.
type GoalMapping struct {
	RequiredElements       []string `firestore:"requiredElements" json:"requiredElements" yaml:"requiredElements"`
	RecommendedCopingTools []string `firestore:"recommendedCopingTools" json:"recommendedCopingTools" yaml:"recommendedCopingTools"`
}

// CopingTool describes a coping technique that can appear in a story.
// An empty AgeApplicability means the tool fits every age group.
type CopingTool struct {
	Description      string   `firestore:"description" json:"description" yaml:"description"`
	AgeApplicability []string `firestore:"ageApplicability" json:"ageApplicability" yaml:"ageApplicability"`
}

// AppliesTo reports whether the tool is applicable to the given age group.
func (t CopingTool) AppliesTo(age AgeGroup) bool {
	if len(t.AgeApplicability) == 0 {
		return true
	}
	for _, a := range t.AgeApplicability {
		if a == string(age) {
			return true
		}
	}
	return false
}

// EndingRule constrains the story ending for a given ending style.
type EndingRule struct {
	RequiresSafeClosure bool     `firestore:"requiresSafeClosure" json:"requiresSafeClosure" yaml:"requiresSafeClosure"`
	ForbiddenPatterns   []string `firestore:"forbiddenPatterns" json:"forbiddenPatterns" yaml:"forbiddenPatterns"`
}

// SensitivityRule adds avoid-items and a tone adjustment for a sensitivity level.
type SensitivityRule struct {
	ExtraMustAvoid []string `firestore:"extraMustAvoid" json:"extraMustAvoid" yaml:"extraMustAvoid"`
	ToneAdjustment string   `firestore:"toneAdjustment" json:"toneAdjustment" yaml:"toneAdjustment"`
}

// ExclusionRule lists phrases and themes a selected exclusion bans.
type ExclusionRule struct {
	MustAvoidPhrasesOrThemes []string `firestore:"mustAvoidPhrasesOrThemes" json:"mustAvoidPhrasesOrThemes" yaml:"mustAvoidPhrasesOrThemes"`
}

// ClinicalRulesBundle - версионированный набор клинических правил.
// Бандл загружается и применяется только целиком: смешивание карт правил из
// разных версий запрещено.
type ClinicalRulesBundle struct {
	Version          string                     `firestore:"version" json:"version" yaml:"version"`
	AgeRules         map[string]AgeRule         `firestore:"ageRules" json:"ageRules" yaml:"ageRules"`
	GoalMappings     map[string]GoalMapping     `firestore:"goalMappings" json:"goalMappings" yaml:"goalMappings"`
	CopingTools      map[string]CopingTool      `firestore:"copingTools" json:"copingTools" yaml:"copingTools"`
	EndingRules      map[string]EndingRule      `firestore:"endingRules" json:"endingRules" yaml:"endingRules"`
	SensitivityRules map[string]SensitivityRule `firestore:"sensitivityRules" json:"sensitivityRules" yaml:"sensitivityRules"`
	Exclusions       map[string]ExclusionRule   `firestore:"exclusions" json:"exclusions" yaml:"exclusions"`
}
