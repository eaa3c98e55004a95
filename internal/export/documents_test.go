package export

import (
	"context"
	"strings"
	"testing"

	"kscore-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsentDocumentHTML(t *testing.T) {
	html, err := ConsentDocument(completePayload()).HTML(context.Background())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(html, "<!doctype html>"), html)
	assert.Contains(t, html, "<title>Consent - Participant ab12cd34</title>")
	assert.Contains(t, html, "<h2>Typing / Keystroke Consent</h2>")
	assert.Contains(t, html, "<strong>PHQ-9 / GAD-7 Consent Given:</strong> Yes")
	assert.True(t, strings.HasSuffix(html, "</body></html>"), html)
}

func TestQuestionnaireDocumentHTML(t *testing.T) {
	a, err := models.DefaultAssessment()
	require.NoError(t, err)
	gad, ok := a.Questionnaire(models.GAD7)
	require.True(t, ok)

	resp := models.NewQuestionnaireResponse(7)
	two := 2
	resp.ItemScores[0] = &two

	html, err := QuestionnaireDocument(a, gad, "ab12cd34", resp).HTML(context.Background())
	require.NoError(t, err)
	assert.Contains(t, html, "<title>GAD-7 - Participant ab12cd34</title>")
	assert.Contains(t, html, "<td>1</td><td>Feeling nervous, anxious or on edge</td><td>2</td><td>More than half the days</td>")
	assert.Contains(t, html, "<td>7</td>")
	assert.Contains(t, html, "<strong>Total Score:</strong> </td>", "incomplete responses have no total")
	assert.Contains(t, html, "<strong>Difficulty:</strong> N/A")

	empty, err := QuestionnaireDocument(a, gad, "ab12cd34", models.QuestionnaireResponse{}).HTML(context.Background())
	require.NoError(t, err)
	assert.Contains(t, empty, "<body><h1>GAD-7</h1><p>No data.</p></body>")
}
