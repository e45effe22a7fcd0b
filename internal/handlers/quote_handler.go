package handlers

import (
	"github.com/gin-gonic/gin"

	"quotecompare/internal/models"
	"quotecompare/internal/services"
	"quotecompare/internal/utils"
)

type QuoteHandler struct {
	quoteService services.QuoteService
}

func NewQuoteHandler(quoteService services.QuoteService) *QuoteHandler {
	return &QuoteHandler{quoteService: quoteService}
}

// ListQuotes supports minPrice, maxPrice, sortBy and search query parameters
func (h *QuoteHandler) ListQuotes(c *gin.Context) {
	var filter models.QuoteFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		utils.BadRequestResponse(c, utils.ErrInvalidRequestBody)
		return
	}

	utils.SuccessResponse(c, h.quoteService.List(filter))
}

func (h *QuoteHandler) GetQuote(c *gin.Context) {
	quote, err := h.quoteService.GetByID(c.Param("id"))
	if err != nil {
		utils.NotFoundResponse(c, utils.ErrQuoteNotFound)
		return
	}

	utils.SuccessResponse(c, quote)
}
