package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storycare-server/internal/middleware"
	"storycare-server/internal/models"
)

func (h *Handler) listDrafts(c *gin.Context) {
	drafts, err := h.review.ListDrafts(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	models.RespondOK(c, http.StatusOK, drafts)
}

func (h *Handler) getDraft(c *gin.Context) {
	draft, err := h.review.GetDraft(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	models.RespondOK(c, http.StatusOK, draft)
}

func (h *Handler) suggestEdit(c *gin.Context) {
	var req suggestEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		models.RespondError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	draft, err := h.review.SuggestEdit(c.Request.Context(),
		c.Param("id"), middleware.GetUserID(c), req.TargetText, req.SuggestedText, req.Note)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	models.RespondOK(c, http.StatusCreated, draft)
}

func (h *Handler) resolveSuggestion(c *gin.Context) {
	var req resolveSuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		models.RespondError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	draft, err := h.review.ResolveSuggestion(c.Request.Context(),
		c.Param("id"), c.Param("suggestionId"), middleware.GetUserID(c), req.Accept)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	models.RespondOK(c, http.StatusOK, draft)
}

func (h *Handler) approveDraft(c *gin.Context) {
	tpl, err := h.review.ApproveDraft(c.Request.Context(), c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	models.RespondOK(c, http.StatusOK, tpl)
}

func (h *Handler) rejectDraft(c *gin.Context) {
	draft, err := h.review.RejectDraft(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	models.RespondOK(c, http.StatusOK, draft)
}

func (h *Handler) listTemplates(c *gin.Context) {
	templates, err := h.review.ListTemplates(c.Request.Context(), 100)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	models.RespondOK(c, http.StatusOK, templates)
}

func (h *Handler) getTemplate(c *gin.Context) {
	tpl, err := h.review.GetTemplate(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	models.RespondOK(c, http.StatusOK, tpl)
}

func (h *Handler) personalizeTemplate(c *gin.Context) {
	var req personalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		models.RespondError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	text, err := h.review.PersonalizeTemplate(c.Request.Context(), c.Param("id"), req.toInput())
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	models.RespondOK(c, http.StatusOK, gin.H{"text": text})
}
