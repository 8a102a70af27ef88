package httpkit

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"dealership_crm_backend/platform/apperr"
)

// JSON writes a success payload.
func JSON(c *gin.Context, status int, data any) {
	c.JSON(status, data)
}

// OK writes a 200 with the payload.
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Created writes a 201 with the payload.
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// NoContent writes a 204.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error writes an error payload with the given status.
func Error(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// HandleError maps an error to its HTTP response. Application errors
// use their kind's status; anything else becomes a 500 without leaking
// internals.
func HandleError(c *gin.Context, err error) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		body := gin.H{"error": appErr.Message}
		if len(appErr.Details) > 0 {
			body["details"] = appErr.Details
		}
		c.JSON(appErr.HTTPStatus(), body)
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
