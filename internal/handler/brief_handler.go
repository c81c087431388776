package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storycare-server/internal/middleware"
	"storycare-server/internal/models"
)

// submitBrief принимает бриф, валидирует и компилирует контракт.
// Невалидный бриф - это 422 с контрактом failed_validation в details,
// а не 500: бриф и контракт при этом персистятся.
func (h *Handler) submitBrief(c *gin.Context) {
	var input models.StoryBriefInput
	if err := c.ShouldBindJSON(&input); err != nil {
		models.RespondError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if input.CreatedBy == "" {
		input.CreatedBy = middleware.GetUserID(c)
	}

	brief, compiled, err := h.briefs.SubmitBrief(c.Request.Context(), &input)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	resp := gin.H{"brief": brief, "contract": compiled}
	if compiled.Status == models.ContractStatusFailedValidation {
		c.JSON(http.StatusUnprocessableEntity, models.APIResponse{
			Success: false,
			Error:   "brief failed validation",
			Details: resp,
		})
		return
	}
	models.RespondOK(c, http.StatusCreated, resp)
}

func (h *Handler) getBrief(c *gin.Context) {
	brief, err := h.briefs.GetBrief(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	models.RespondOK(c, http.StatusOK, brief)
}

func (h *Handler) listBriefs(c *gin.Context) {
	createdBy := c.Query("createdBy")
	briefs, err := h.briefs.ListBriefs(c.Request.Context(), createdBy, 100)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	models.RespondOK(c, http.StatusOK, briefs)
}

func (h *Handler) deleteBrief(c *gin.Context) {
	if err := h.briefs.DeleteBrief(c.Request.Context(), c.Param("id")); err != nil {
		h.respondServiceError(c, err)
		return
	}
	models.RespondOK(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) getContract(c *gin.Context) {
	contract, err := h.briefs.GetContract(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	models.RespondOK(c, http.StatusOK, contract)
}

func (h *Handler) recompileBrief(c *gin.Context) {
	compiled, err := h.briefs.Recompile(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	if compiled.Status == models.ContractStatusFailedValidation {
		c.JSON(http.StatusUnprocessableEntity, models.APIResponse{
			Success: false,
			Error:   "brief failed validation",
			Details: compiled,
		})
		return
	}
	models.RespondOK(c, http.StatusOK, compiled)
}

func (h *Handler) requestGeneration(c *gin.Context) {
	briefID := c.Param("id")
	taskID, err := h.briefs.RequestGeneration(c.Request.Context(), briefID, middleware.GetUserID(c))
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	models.RespondOK(c, http.StatusAccepted, gin.H{"taskId": taskID, "briefId": briefID})
}

// respondServiceError переводит доменные ошибки в HTTP статусы.
func (h *Handler) respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrBriefNotFound),
		errors.Is(err, models.ErrContractNotFound),
		errors.Is(err, models.ErrDraftNotFound),
		errors.Is(err, models.ErrTemplateNotFound),
		errors.Is(err, models.ErrSuggestionNotFound),
		errors.Is(err, models.ErrRulesVersionNotFound),
		errors.Is(err, models.ErrRefItemNotFound),
		errors.Is(err, models.ErrNotFound):
		models.RespondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrInvalidInput):
		models.RespondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrContractNotCompiled),
		errors.Is(err, models.ErrDraftNotReviewable),
		errors.Is(err, models.ErrSuggestionAlreadyResolved):
		models.RespondError(c, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrForbidden):
		models.RespondError(c, http.StatusForbidden, err.Error())
	default:
		h.logger.Error("Internal error while handling request",
			zap.String("path", c.FullPath()), zap.Error(err))
		models.RespondError(c, http.StatusInternalServerError, models.ErrInternalServer.Error())
	}
}
