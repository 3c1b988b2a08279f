package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/quickreserve/internal/domain"
	"github.com/gin-gonic/gin"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrPrecondition):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateRequest):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	code := statusFor(err)
	msg := err.Error()
	if code == http.StatusInternalServerError && !errors.Is(err, domain.ErrCallPlacement) {
		msg = "internal error"
	}
	_ = c.Error(err)
	c.JSON(code, gin.H{"error": msg})
}
