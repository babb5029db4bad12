package httpapi

import (
	"errors"
	"net/http"

	"coldcall-crm/internal/analysis"
	"coldcall-crm/internal/audit"
	"coldcall-crm/internal/callers"
	"coldcall-crm/internal/leads"
	"coldcall-crm/internal/session"
	"coldcall-crm/internal/transcripts"

	"github.com/gin-gonic/gin"
)

// statusFor maps domain errors to HTTP status codes. Unrecognized errors are
// storage or programming failures and surface as 500 without leaking detail.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrInvalidArgument),
		errors.Is(err, leads.ErrInvalidArgument),
		errors.Is(err, leads.ErrInvalidLead),
		errors.Is(err, callers.ErrInvalidArgument),
		errors.Is(err, transcripts.ErrInvalidArgument),
		errors.Is(err, analysis.ErrInvalidArgument),
		errors.Is(err, audit.ErrInvalidEvent):
		return http.StatusBadRequest

	case errors.Is(err, session.ErrNotFound),
		errors.Is(err, leads.ErrNotFound),
		errors.Is(err, callers.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, session.ErrSessionClosed),
		errors.Is(err, leads.ErrAlreadyCompleted),
		errors.Is(err, callers.ErrDuplicateEmail):
		return http.StatusConflict

	case errors.Is(err, leads.ErrNoActiveCallers):
		return http.StatusUnprocessableEntity

	case errors.Is(err, transcripts.ErrTranscriptionFailed),
		errors.Is(err, transcripts.ErrTranscriptionTimeout):
		return http.StatusBadGateway

	case errors.Is(err, analysis.ErrRateLimited):
		return http.StatusTooManyRequests

	case errors.Is(err, analysis.ErrQuotaExhausted):
		return http.StatusPaymentRequired

	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
