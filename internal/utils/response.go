package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type ErrorBody struct {
	Error string `json:"error"`
}

type SuccessBody struct {
	Success bool `json:"success"`
}

func SuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

func AcknowledgeResponse(c *gin.Context) {
	c.JSON(http.StatusOK, SuccessBody{Success: true})
}

func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, ErrorBody{Error: message})
}

func BadRequestResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusBadRequest, message)
}

func NotFoundResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusNotFound, message)
}

// InternalServerErrorResponse never leaks the underlying error to the client.
func InternalServerErrorResponse(c *gin.Context) {
	ErrorResponse(c, http.StatusInternalServerError, ErrInternalServer)
}

func ServiceUnavailableResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusServiceUnavailable, data)
}
