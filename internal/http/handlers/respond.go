package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zitaharry/ai-podcast-saas/internal/pkg/faults"
)

// respondError maps a fault kind onto an HTTP status with the standard error
// envelope. Errors carrying no kind are treated as internal.
func respondError(c *gin.Context, err error) {
	kind := faults.KindOf(err)
	status := http.StatusInternalServerError
	code := "internal"
	switch kind {
	case faults.KindValidation:
		status = http.StatusBadRequest
		code = "validation"
	case faults.KindNotFound:
		status = http.StatusNotFound
		code = "not_found"
	case faults.KindNotEntitled:
		status = http.StatusForbidden
		code = "not_entitled"
	case faults.KindPrecondition:
		status = http.StatusUnprocessableEntity
		code = "precondition"
	case faults.KindMissingTranscript:
		status = http.StatusConflict
		code = "missing_transcript"
	case faults.KindProvider, faults.KindNetwork:
		status = http.StatusBadGateway
		code = "upstream"
	}
	c.JSON(status, gin.H{
		"error": gin.H{"message": err.Error(), "code": code},
	})
}
