package httpserver

import (
	"errors"
	"log"
	"net/http"

	"nimbus-pos/internal/domain"
	"nimbus-pos/internal/service/checkout"
	staffsvc "nimbus-pos/internal/service/staff"

	"github.com/gin-gonic/gin"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyExists),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusConflict
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, staffsvc.ErrInvalidPIN):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrInsufficientPayment):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// writeError renders err with the status it maps to. Internal errors are
// logged and hidden from the client.
func writeError(c *gin.Context, logger *log.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Printf("http: %s %s error=%v", c.Request.Method, c.FullPath(), err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
