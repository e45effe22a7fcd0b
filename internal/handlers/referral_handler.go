package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"quotecompare/internal/services"
	"quotecompare/internal/utils"
	"quotecompare/internal/validators"
	"quotecompare/pkg/logger"
)

// DashboardStream upgrades a request into a live event feed for one user.
type DashboardStream interface {
	Serve(c *gin.Context, userID int64)
}

type ReferralHandler struct {
	referralService services.ReferralService
	stream          DashboardStream
	logger          *logger.Logger
}

func NewReferralHandler(referralService services.ReferralService, stream DashboardStream, logger *logger.Logger) *ReferralHandler {
	return &ReferralHandler{
		referralService: referralService,
		stream:          stream,
		logger:          logger,
	}
}

// StreamEnabled reports whether live dashboard updates are served.
func (h *ReferralHandler) StreamEnabled() bool {
	return h.stream != nil
}

type userResponse struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	ReferralCode string `json:"referralCode"`
}

// CreateUser returns the user for an email, registering it on first sight
func (h *ReferralHandler) CreateUser(c *gin.Context) {
	var request validators.CreateUserRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, utils.ErrValidEmailRequired)
		return
	}

	user, err := h.referralService.EnsureUser(c.Request.Context(), request.Email)
	if err != nil {
		respondError(c, h.logger, "create user", err)
		return
	}

	utils.SuccessResponse(c, userResponse{
		ID:           user.ID,
		Email:        user.Email,
		ReferralCode: user.ReferralCode,
	})
}

// CreateReferral records that a referrer invited an email
func (h *ReferralHandler) CreateReferral(c *gin.Context) {
	var request validators.CreateReferralRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, utils.ErrReferralFieldsRequired)
		return
	}

	if _, err := h.referralService.CreateReferral(c.Request.Context(), &request); err != nil {
		respondError(c, h.logger, "create referral", err)
		return
	}

	utils.AcknowledgeResponse(c)
}

// GetDashboard returns the referrals and accumulated bonus for an email
func (h *ReferralHandler) GetDashboard(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		utils.BadRequestResponse(c, utils.ErrEmailRequired)
		return
	}

	dashboard, err := h.referralService.GetDashboard(c.Request.Context(), email)
	if err != nil {
		respondError(c, h.logger, "get dashboard", err)
		return
	}

	utils.SuccessResponse(c, dashboard)
}

// StreamDashboard pushes referral_completed events to an open dashboard
func (h *ReferralHandler) StreamDashboard(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		utils.BadRequestResponse(c, utils.ErrEmailRequired)
		return
	}

	user, err := h.referralService.GetUserByEmail(c.Request.Context(), email)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			utils.NotFoundResponse(c, utils.ErrUserNotFound)
			return
		}
		respondError(c, h.logger, "stream dashboard", err)
		return
	}

	h.stream.Serve(c, user.ID)
}
