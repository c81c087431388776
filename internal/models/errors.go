package models

import "errors"

// Application-wide standard errors
var (
	// Common Resource/DB Errors
	ErrNotFound         = errors.New("resource not found") // General not found
	ErrBriefNotFound    = errors.New("story brief not found")
	ErrContractNotFound = errors.New("generation contract not found")
	ErrDraftNotFound    = errors.New("story draft not found")
	ErrTemplateNotFound = errors.New("story template not found")
	ErrRefItemNotFound  = errors.New("reference data item not found")

	// Clinical Rules Errors (data-integrity, not user errors)
	ErrRulesVersionNotFound = errors.New("clinical rules version not found")            // RULES_VERSION_NOT_FOUND
	ErrNoAgeRule            = errors.New("no age rule for age group")                   // NO_AGE_RULE
	ErrNoGoalMapping        = errors.New("no goal mapping for emotional goal")          // NO_GOAL_MAPPING
	ErrNoCopingToolRule     = errors.New("no coping tool entry for recommended tool")   // NO_COPING_TOOL_RULE
	ErrNoEndingRule         = errors.New("no ending rule for ending style")             // NO_ENDING_RULE
	ErrNoSensitivityRule    = errors.New("no sensitivity rule for sensitivity level")   // NO_SENSITIVITY_RULE
	ErrNoExclusionRule      = errors.New("no exclusion rule for selected exclusion")    // NO_EXCLUSION_RULE
	ErrContractNotCompiled  = errors.New("generation contract is not compiled as ok")   // генерация невозможна
	ErrBundleIncomplete     = errors.New("clinical rules bundle is missing a rule map") // частичный бандл

	// Token Errors
	ErrTokenInvalid   = errors.New("token is invalid")
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenExpired   = errors.New("token has expired")

	// Authz Errors
	ErrUnauthorized = errors.New("unauthorized") // Authentication required or failed
	ErrForbidden    = errors.New("forbidden")    // Authenticated, but lacks permission

	// Review Workflow Errors
	ErrDraftNotReviewable        = errors.New("draft cannot be reviewed in its current state")
	ErrSuggestionNotFound        = errors.New("edit suggestion not found")
	ErrSuggestionAlreadyResolved = errors.New("edit suggestion is already resolved")

	// General Request/Server Errors
	ErrInternalServer = errors.New("internal server error")
	ErrInvalidInput   = errors.New("invalid input data")
)
