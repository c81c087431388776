// Package handler содержит HTTP слой API сервера.
package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"

	"storycare-server/internal/auth"
	"storycare-server/internal/middleware"
	"storycare-server/internal/models"
	"storycare-server/internal/refdata"
	"storycare-server/internal/rules"
	"storycare-server/internal/service"
)

// Handler агрегирует сервисы для HTTP эндпоинтов.
type Handler struct {
	briefs   service.BriefService
	review   service.ReviewService
	ref      refdata.Accessor
	rules    rules.Store
	loader   rules.Loader
	verifier auth.TokenVerifier
	logger   *zap.Logger
}

// NewHandler создает Handler.
func NewHandler(
	briefs service.BriefService,
	review service.ReviewService,
	ref refdata.Accessor,
	rulesStore rules.Store,
	loader rules.Loader,
	verifier auth.TokenVerifier,
	logger *zap.Logger,
) *Handler {
	if briefs == nil {
		log.Fatal().Msg("BriefService is nil for Handler")
	}
	if review == nil {
		log.Fatal().Msg("ReviewService is nil for Handler")
	}
	if ref == nil {
		log.Fatal().Msg("Reference data accessor is nil for Handler")
	}
	if rulesStore == nil {
		log.Fatal().Msg("Rules store is nil for Handler")
	}
	if loader == nil {
		log.Fatal().Msg("Rules loader is nil for Handler")
	}
	if verifier == nil {
		log.Fatal().Msg("TokenVerifier is nil for Handler")
	}
	if logger == nil {
		log.Fatal().Msg("Logger is nil for Handler")
	}
	return &Handler{
		briefs:   briefs,
		review:   review,
		ref:      ref,
		rules:    rulesStore,
		loader:   loader,
		verifier: verifier,
		logger:   logger.Named("HTTPHandler"),
	}
}

// NewRouter собирает gin.Engine со всеми middleware и маршрутами.
func (h *Handler) NewRouter(allowedOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ZapLoggingMiddleware(h.logger))

	corsConfig := cors.DefaultConfig()
	if len(allowedOrigins) > 0 {
		corsConfig.AllowOrigins = allowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	prom := ginprometheus.NewPrometheus("storycare_api")
	prom.Use(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(h.verifier))
	{
		briefs := api.Group("/briefs")
		{
			briefs.POST("", h.submitBrief)
			briefs.GET("", h.listBriefs)
			briefs.GET("/:id", h.getBrief)
			briefs.DELETE("/:id", h.deleteBrief)
			briefs.GET("/:id/contract", h.getContract)
			briefs.POST("/:id/recompile", h.recompileBrief)
			briefs.POST("/:id/generate", h.requestGeneration)
			briefs.GET("/:id/drafts", h.listDrafts)
		}

		drafts := api.Group("/drafts")
		{
			drafts.GET("/:id", h.getDraft)
			drafts.POST("/:id/suggestions", h.suggestEdit)
			drafts.POST("/:id/suggestions/:suggestionId/resolve", h.resolveSuggestion)
			drafts.POST("/:id/approve", h.approveDraft)
			drafts.POST("/:id/reject", h.rejectDraft)
		}

		templates := api.Group("/templates")
		{
			templates.GET("", h.listTemplates)
			templates.GET("/:id", h.getTemplate)
			templates.POST("/:id/personalize", h.personalizeTemplate)
		}

		reference := api.Group("/reference")
		{
			reference.GET("/:category", h.listReferenceItems)
		}

		admin := api.Group("/admin")
		admin.Use(middleware.RequireRole(models.RoleAdmin))
		{
			admin.PUT("/reference/:category/:key", h.upsertReferenceItem)
			admin.GET("/rules/versions", h.listRulesVersions)
			admin.GET("/rules/:version", h.getRulesBundle)
			admin.PUT("/rules/:version", h.saveRulesBundle)
			admin.POST("/rules/:version/publish", h.publishRulesVersion)
		}
	}

	return router
}
