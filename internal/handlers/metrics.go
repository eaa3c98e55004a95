package handlers

import (
	"net/http"

	"kscore-go/internal/models"
	"kscore-go/internal/session"
	"kscore-go/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type MetricsHandler struct {
	log        *zap.Logger
	controller *session.Controller
}

func NewMetricsHandler(log *zap.Logger, controller *session.Controller) *MetricsHandler {
	return &MetricsHandler{log: log, controller: controller}
}

type keystrokeRequest struct {
	Key         string `json:"key" binding:"required"`
	Code        string `json:"code"`
	TimestampMs *int64 `json:"timestampMs"`
	CtrlKey     bool   `json:"ctrlKey"`
	MetaKey     bool   `json:"metaKey"`
	AltKey      bool   `json:"altKey"`
}

type autocorrectRequest struct {
	Text           string `json:"text"`
	SelectionStart int    `json:"selectionStart"`
	SelectionEnd   int    `json:"selectionEnd"`
}

type autocorrectResponse struct {
	Event models.AutocorrectEvent `json:"event"`
	Text  string                  `json:"text"`
	Caret int                     `json:"caret"`
}

// RecordKeystroke logs one keydown against the running phase.
func (h *MetricsHandler) RecordKeystroke(c *gin.Context) {
	var req keystrokeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.log, err)
		return
	}

	event, err := h.controller.Session().RecordKeystroke(session.KeystrokeInput{
		Key:         req.Key,
		Code:        req.Code,
		TimestampMs: req.TimestampMs,
		CtrlKey:     req.CtrlKey,
		MetaKey:     req.MetaKey,
		AltKey:      req.AltKey,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

// Autocorrect corrects the highlighted word and returns the updated text
// with the caret placed after the replacement.
func (h *MetricsHandler) Autocorrect(c *gin.Context) {
	var req autocorrectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.log, err)
		return
	}

	sel := utils.Selection{Text: req.Text, Start: req.SelectionStart, End: req.SelectionEnd}
	word, err := sel.Selected()
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	event, err := h.controller.Autocorrect(c.Request.Context(), word)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	text, caret, err := sel.Replace(event.CorrectedWord)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if event.Phase == models.PhaseEssay {
		if err := h.controller.Session().SetEssayText(text); err != nil {
			h.log.Warn("Failed to store corrected essay text", zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, autocorrectResponse{Event: event, Text: text, Caret: caret})
}
