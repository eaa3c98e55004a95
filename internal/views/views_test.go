package views

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, ctx context.Context, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(ctx, &buf))
	return buf.String()
}

func TestDocumentLayoutWrapsChildren(t *testing.T) {
	ctx := templ.WithChildren(context.Background(), NoData("GAD-7"))
	html := render(t, ctx, DocumentLayout(`GAD-7 & "more"`))

	assert.True(t, strings.HasPrefix(html, "<!doctype html><html><head>"), html)
	assert.Contains(t, html, "<title>GAD-7 &amp; &#34;more&#34;</title>")
	assert.Contains(t, html, "border-collapse: collapse")
	assert.Contains(t, html, "<body><h1>GAD-7</h1><p>No data.</p></body>")
}

func TestDocumentLayoutWithoutChildren(t *testing.T) {
	html := render(t, context.Background(), DocumentLayout("Empty"))
	assert.Contains(t, html, "<body></body>")
}

func TestConsentPage(t *testing.T) {
	html := render(t, context.Background(), ConsentPage(ConsentView{
		ParticipantID: "ab12cd34",
		FullName:      "<b>Jane</b>",
		SignedAt:      "2024-03-01T09:30:00.000Z",
		Sections: []ConsentSection{
			{Heading: "Typing", Explanation: "Logs keys.", Label: "Typing Consent Given:", Given: true},
			{Heading: "Questionnaires", Explanation: "Asks questions.", Label: "PHQ-9 / GAD-7 Consent Given:"},
		},
	}))

	assert.Contains(t, html, "<strong>Participant ID:</strong> ab12cd34")
	assert.Contains(t, html, "&lt;b&gt;Jane&lt;/b&gt;")
	assert.NotContains(t, html, "<b>")
	assert.Contains(t, html, "<strong>Typing Consent Given:</strong> Yes")
	assert.Contains(t, html, "<strong>PHQ-9 / GAD-7 Consent Given:</strong> No")
	assert.Equal(t, 3, strings.Count(html, `<div class="section">`))
}

func TestQuestionnairePage(t *testing.T) {
	html := render(t, context.Background(), QuestionnairePage(QuestionnaireView{
		Title:         "PHQ-9",
		ParticipantID: "ab12cd34",
		Rows: []QuestionRow{
			{Number: 1, Text: "Little interest", Score: "3", Response: "Nearly every day"},
			{Number: 2, Text: "Feeling down"},
		},
		Total:      "",
		Difficulty: "N/A",
	}))

	assert.Contains(t, html, "<h1>PHQ-9 Responses</h1>")
	assert.Contains(t, html, "<tr><td>1</td><td>Little interest</td><td>3</td><td>Nearly every day</td></tr>")
	assert.Contains(t, html, "<tr><td>2</td><td>Feeling down</td><td></td><td></td></tr>")
	assert.Contains(t, html, "<strong>Total Score:</strong> </td>")
	assert.Contains(t, html, "<strong>Difficulty:</strong> N/A</p>")
}
