package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"quotecompare/internal/middleware"
	"quotecompare/internal/services"
	"quotecompare/internal/utils"
	"quotecompare/pkg/logger"
)

// respondError maps service errors onto the public error contract. Only
// validation messages reach the client; everything else is an opaque 500.
func respondError(c *gin.Context, log *logger.Logger, op string, err error) {
	var vErr *services.ValidationError
	if errors.As(err, &vErr) {
		utils.BadRequestResponse(c, vErr.Message)
		return
	}

	log.WithContext(c.Request.Context()).
		WithError(err).
		WithFields(map[string]interface{}{
			"operation":  op,
			"request_id": c.GetString(middleware.RequestIDKey),
		}).
		Error("Request failed")
	utils.InternalServerErrorResponse(c)
}
