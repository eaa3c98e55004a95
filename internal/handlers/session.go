package handlers

import (
	"net/http"

	"kscore-go/internal/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SessionHandler struct {
	log        *zap.Logger
	controller *session.Controller
}

func NewSessionHandler(log *zap.Logger, controller *session.Controller) *SessionHandler {
	return &SessionHandler{log: log, controller: controller}
}

type consentRequest struct {
	TypingConsent bool   `json:"typingConsent"`
	PhqGadConsent bool   `json:"phqGadConsent"`
	FullName      string `json:"fullName"`
}

type navigateRequest struct {
	Screen session.Screen `json:"screen" binding:"required"`
}

type essayRequest struct {
	Text string `json:"text"`
}

// Show returns the review view of the session.
func (h *SessionHandler) Show(c *gin.Context) {
	c.JSON(http.StatusOK, h.controller.Review())
}

func (h *SessionHandler) Consent(c *gin.Context) {
	var req consentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.log, err)
		return
	}

	record := h.controller.Session().SetConsent(req.TypingConsent, req.PhqGadConsent, req.FullName)
	c.JSON(http.StatusOK, gin.H{
		"consent":  record,
		"signedAt": record.SignedAtString(),
		"complete": record.Complete(),
	})
}

func (h *SessionHandler) Navigate(c *gin.Context) {
	var req navigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.log, err)
		return
	}

	summary, err := h.controller.Navigate(req.Screen)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"screen": req.Screen, "endedPhase": summary})
}

func (h *SessionHandler) Essay(c *gin.Context) {
	var req essayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.log, err)
		return
	}

	if err := h.controller.Session().SetEssayText(req.Text); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
