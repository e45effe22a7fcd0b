package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"quotecompare/internal/utils"
	"quotecompare/pkg/logger"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	store   Pinger
	version string
	logger  *logger.Logger
}

func NewHealthHandler(store Pinger, version string, logger *logger.Logger) *HealthHandler {
	return &HealthHandler{
		store:   store,
		version: version,
		logger:  logger,
	}
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Store   string `json:"store"`
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), utils.StorePingTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.logger.WithContext(c.Request.Context()).WithError(err).Warn("Store health check failed")
		utils.ServiceUnavailableResponse(c, healthResponse{
			Status:  "unhealthy",
			Version: h.version,
			Store:   "unreachable",
		})
		return
	}

	utils.SuccessResponse(c, healthResponse{
		Status:  "healthy",
		Version: h.version,
		Store:   "ok",
	})
}
