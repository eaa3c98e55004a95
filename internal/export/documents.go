package export

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"kscore-go/internal/metrics"
	"kscore-go/internal/models"
	"kscore-go/internal/views"

	"github.com/a-h/templ"
)

const (
	typingConsentText = "The participant agrees to take part in a typing study that logs keystroke timing, backspace use, and essay content using a local application. " +
		"Data will be stored under an anonymous participant ID."
	phqGadConsentText = "The participant agrees to complete the PHQ-9 and GAD-7 self-report questionnaires, which include questions about mood, anxiety, and related symptoms. " +
		"These questionnaires are used as research measures only and do not provide a diagnosis."
)

// Document is a page body rendered inside the shared document layout.
type Document struct {
	Title string
	Body  templ.Component
}

// HTML renders the full page.
func (d Document) HTML(ctx context.Context) (string, error) {
	var buf bytes.Buffer
	if err := views.DocumentLayout(d.Title).Render(templ.WithChildren(ctx, d.Body), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ConsentDocument shows the e-signature and both consent decisions.
func ConsentDocument(p *models.ExportPayload) Document {
	return Document{
		Title: "Consent - Participant " + p.ParticipantID,
		Body: views.ConsentPage(views.ConsentView{
			ParticipantID: p.ParticipantID,
			FullName:      p.Consent.FullName,
			SignedAt:      p.Consent.SignedAtString(),
			Sections: []views.ConsentSection{
				{Heading: "Typing / Keystroke Consent", Explanation: typingConsentText, Label: "Typing Consent Given:", Given: p.Consent.TypingConsent},
				{Heading: "PHQ-9 and GAD-7 Consent", Explanation: phqGadConsentText, Label: "PHQ-9 / GAD-7 Consent Given:", Given: p.Consent.PhqGadConsent},
			},
		}),
	}
}

// QuestionnaireDocument lists every item with its response label, followed
// by the total and the difficulty. A response without item scores renders
// a "No data." notice instead.
func QuestionnaireDocument(a *models.Assessment, q *models.Questionnaire, participantID string, resp models.QuestionnaireResponse) Document {
	title := fmt.Sprintf("%s - Participant %s", q.Title, participantID)
	if !resp.HasData() {
		return Document{Title: title, Body: views.NoData(q.Title)}
	}

	rows := make([]views.QuestionRow, len(resp.ItemScores))
	for idx, score := range resp.ItemScores {
		rows[idx] = views.QuestionRow{Number: idx + 1, Text: q.QuestionText(idx)}
		if score != nil {
			rows[idx].Score = strconv.Itoa(*score)
			rows[idx].Response = a.ChoiceLabel(*score)
		}
	}

	difficulty := "N/A"
	if resp.Difficulty != nil {
		difficulty = a.DifficultyLabel(*resp.Difficulty)
	}

	return Document{
		Title: title,
		Body: views.QuestionnairePage(views.QuestionnaireView{
			Title:         q.Title,
			ParticipantID: participantID,
			Rows:          rows,
			Total:         Cell(metrics.ScoreItems(resp.ItemScores)),
			Difficulty:    difficulty,
		}),
	}
}
