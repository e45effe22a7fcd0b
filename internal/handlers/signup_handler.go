package handlers

import (
	"github.com/gin-gonic/gin"

	"quotecompare/internal/services"
	"quotecompare/internal/utils"
	"quotecompare/internal/validators"
	"quotecompare/pkg/logger"
)

type SignupHandler struct {
	signupService services.SignupService
	logger        *logger.Logger
}

func NewSignupHandler(signupService services.SignupService, logger *logger.Logger) *SignupHandler {
	return &SignupHandler{
		signupService: signupService,
		logger:        logger,
	}
}

// RecordSignup stores a declared purchase and pays out a matching referral
func (h *SignupHandler) RecordSignup(c *gin.Context) {
	var request validators.SignupRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, utils.ErrSignupFieldsRequired)
		return
	}

	if _, err := h.signupService.RecordSignup(c.Request.Context(), &request); err != nil {
		respondError(c, h.logger, "record signup", err)
		return
	}

	utils.AcknowledgeResponse(c)
}
