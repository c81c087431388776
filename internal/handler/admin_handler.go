package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storycare-server/internal/models"
)

// validCategory проверяет, что категория справочника известна системе.
func validCategory(category string) bool {
	for _, c := range models.ReferenceCategories {
		if c == category {
			return true
		}
	}
	return false
}

func (h *Handler) listReferenceItems(c *gin.Context) {
	category := c.Param("category")
	if !validCategory(category) {
		models.RespondError(c, http.StatusNotFound, "unknown reference category")
		return
	}
	items, err := h.ref.ListItems(c.Request.Context(), category)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	models.RespondOK(c, http.StatusOK, items)
}

// upsertReferenceItem создает или обновляет элемент справочника.
// Деактивация (active=false) не трогает уже скомпилированные контракты.
func (h *Handler) upsertReferenceItem(c *gin.Context) {
	category := c.Param("category")
	if !validCategory(category) {
		models.RespondError(c, http.StatusNotFound, "unknown reference category")
		return
	}

	var item models.ReferenceItem
	if err := c.ShouldBindJSON(&item); err != nil {
		models.RespondError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	item.Key = c.Param("key")

	if err := h.ref.UpsertItem(c.Request.Context(), category, item); err != nil {
		h.respondServiceError(c, err)
		return
	}
	h.logger.Info("Reference item upserted by admin",
		zap.String("category", category), zap.String("key", item.Key))
	models.RespondOK(c, http.StatusOK, item)
}

func (h *Handler) listRulesVersions(c *gin.Context) {
	versions, err := h.rules.ListVersions(c.Request.Context())
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	defaultVersion, err := h.rules.DefaultVersion(c.Request.Context())
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	models.RespondOK(c, http.StatusOK, gin.H{
		"versions":       versions,
		"defaultVersion": defaultVersion,
	})
}

func (h *Handler) getRulesBundle(c *gin.Context) {
	bundle, err := h.rules.GetBundle(c.Request.Context(), c.Param("version"))
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	models.RespondOK(c, http.StatusOK, bundle)
}

// saveRulesBundle сохраняет бандл под версией из пути. Сохранение не делает
// версию активной: публикация - отдельная операция.
func (h *Handler) saveRulesBundle(c *gin.Context) {
	var bundle models.ClinicalRulesBundle
	if err := c.ShouldBindJSON(&bundle); err != nil {
		models.RespondError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	bundle.Version = c.Param("version")

	if err := h.rules.SaveBundle(c.Request.Context(), &bundle); err != nil {
		h.respondServiceError(c, err)
		return
	}
	// Сбрасываем кеш на случай перезаписи уже закешированной версии.
	h.loader.Invalidate(c.Request.Context(), bundle.Version)
	h.logger.Info("Clinical rules bundle saved", zap.String("version", bundle.Version))
	models.RespondOK(c, http.StatusOK, gin.H{"version": bundle.Version})
}

// publishRulesVersion делает версию бандла версией по умолчанию.
func (h *Handler) publishRulesVersion(c *gin.Context) {
	version := c.Param("version")
	if err := h.rules.SetDefaultVersion(c.Request.Context(), version); err != nil {
		h.respondServiceError(c, err)
		return
	}
	// Резолв версии по умолчанию закеширован - сбрасываем.
	h.loader.Invalidate(c.Request.Context(), "")
	h.logger.Info("Clinical rules version published", zap.String("version", version))
	models.RespondOK(c, http.StatusOK, gin.H{"defaultVersion": version})
}
