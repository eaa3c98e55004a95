package handlers

import (
	"net/http"

	"kscore-go/internal/models"
	"kscore-go/internal/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AssessmentHandler struct {
	log        *zap.Logger
	controller *session.Controller
	Assessment *models.Assessment
}

func NewAssessmentHandler(log *zap.Logger, controller *session.Controller, assessment *models.Assessment) *AssessmentHandler {
	return &AssessmentHandler{log: log, controller: controller, Assessment: assessment}
}

// answerRequest sets an item score, the difficulty, or both.
type answerRequest struct {
	ItemIndex  *int               `json:"itemIndex"`
	Score      *int               `json:"score"`
	Difficulty *models.Difficulty `json:"difficulty"`
}

type questionnaireView struct {
	Questionnaire *models.Questionnaire        `json:"questionnaire"`
	Choices       []models.Option              `json:"choices"`
	Difficulties  []models.DifficultyOption    `json:"difficulties"`
	Response      models.QuestionnaireResponse `json:"response"`
}

func (h *AssessmentHandler) kind(c *gin.Context) (models.QuestionnaireKind, bool) {
	kind, err := models.ParseQuestionnaireKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return "", false
	}
	return kind, true
}

// Show returns the questionnaire text with the current answers.
func (h *AssessmentHandler) Show(c *gin.Context) {
	kind, ok := h.kind(c)
	if !ok {
		return
	}
	q, _ := h.Assessment.Questionnaire(kind)
	c.JSON(http.StatusOK, questionnaireView{
		Questionnaire: q,
		Choices:       h.Assessment.Choices,
		Difficulties:  h.Assessment.Difficulties,
		Response:      h.controller.Session().Response(kind),
	})
}

// Answer records an item score and/or the difficulty.
func (h *AssessmentHandler) Answer(c *gin.Context) {
	kind, ok := h.kind(c)
	if !ok {
		return
	}

	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.log, err)
		return
	}
	if (req.ItemIndex == nil) != (req.Score == nil) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "itemIndex and score must be sent together"})
		return
	}
	if req.ItemIndex == nil && req.Difficulty == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to record"})
		return
	}

	sess := h.controller.Session()
	resp := sess.Response(kind)
	var err error
	if req.ItemIndex != nil {
		if resp, err = sess.AnswerItem(kind, *req.ItemIndex, *req.Score); err != nil {
			respondError(c, h.log, err)
			return
		}
	}
	if req.Difficulty != nil {
		if resp, err = sess.SetDifficulty(kind, *req.Difficulty); err != nil {
			respondError(c, h.log, err)
			return
		}
	}
	c.JSON(http.StatusOK, resp)
}
