package handler

import "storycare-server/internal/service"

// suggestEditRequest - тело запроса на предложение правки.
type suggestEditRequest struct {
	TargetText    string `json:"targetText" binding:"required"`
	SuggestedText string `json:"suggestedText" binding:"required"`
	Note          string `json:"note"`
}

// resolveSuggestionRequest - тело запроса на решение по предложению.
type resolveSuggestionRequest struct {
	Accept bool `json:"accept"`
}

// personalizeRequest - тело запроса на персонализацию шаблона.
type personalizeRequest struct {
	ChildName string `json:"childName" binding:"required"`
	They      string `json:"they"`
	Them      string `json:"them"`
	Their     string `json:"their"`
}

func (r personalizeRequest) toInput() service.PersonalizationInput {
	return service.PersonalizationInput{
		ChildName: r.ChildName,
		TheyWord:  r.They,
		ThemWord:  r.Them,
		TheirWord: r.Their,
	}
}
