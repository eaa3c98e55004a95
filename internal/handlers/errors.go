package handlers

import (
	"errors"
	"net/http"

	"kscore-go/internal/archive"
	"kscore-go/internal/export"
	"kscore-go/internal/services"
	"kscore-go/internal/session"
	"kscore-go/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps a domain error to a status code and JSON body.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	var (
		renderErr *export.RenderFailure
		writeErr  *archive.WriteFailure
	)

	switch {
	case errors.Is(err, utils.ErrMalformedSelection), errors.Is(err, session.ErrInvalidAnswer):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, session.ErrIncompleteInput),
		errors.Is(err, session.ErrInvalidTransition),
		errors.Is(err, session.ErrNoActivePhase),
		errors.Is(err, services.ErrBusy):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &renderErr):
		log.Error("Export failed while rendering", zap.String("artifact", renderErr.Artifact), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Export failed. Please try again.", "detail": err.Error()})
	case errors.As(err, &writeErr):
		log.Error("Export failed while writing", zap.String("path", writeErr.Path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Export failed. Please try again.", "detail": err.Error()})
	default:
		log.Error("Request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}

func badRequest(c *gin.Context, log *zap.Logger, err error) {
	log.Debug("Rejected request body", zap.String("path", c.Request.URL.Path), zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data"})
}
