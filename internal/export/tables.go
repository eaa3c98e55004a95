package export

import (
	"sort"

	"kscore-go/internal/metrics"
	"kscore-go/internal/models"
)

var (
	keystrokeHeader     = []string{"participantId", "phase", "timestampMs", "key", "code", "isBackspace", "isCharacter"}
	summaryHeader       = []string{"participantId", "phase", "totalKeys", "totalBackspaces", "backspaceRate", "medianIkiMs", "meanIkiMs", "durationMs"}
	autocorrectHeader   = []string{"participantId", "phase", "timestampMs", "originalWord", "correctedWord", "changed"}
	questionnaireHeader = []string{"participantId", "itemIndex", "questionText", "score", "difficulty", "totalScore"}
	combinedHeader      = []string{"participantId", "phq9_total", "gad7_total", "phq9_plus_gad7"}
)

func keystrokesTable(p *models.ExportPayload) *Table {
	t := NewTable(keystrokeHeader...)
	for _, e := range p.Keystrokes {
		t.Append(e.ParticipantID, e.Phase, e.TimestampMs, e.Key, e.Code, e.IsBackspace, e.IsCharacter)
	}
	return t
}

// summariesTable writes summaries in phase order regardless of the order
// they were stored in.
func summariesTable(p *models.ExportPayload) *Table {
	summaries := append([]models.PhaseSummary(nil), p.Summaries...)
	sort.SliceStable(summaries, func(i, j int) bool {
		return phaseRank(summaries[i].Phase) < phaseRank(summaries[j].Phase)
	})

	t := NewTable(summaryHeader...)
	for _, s := range summaries {
		t.Append(s.ParticipantID, s.Phase, s.TotalKeys, s.TotalBackspaces, s.BackspaceRate, s.MedianIkiMs, s.MeanIkiMs, s.DurationMs)
	}
	return t
}

func autocorrectTable(p *models.ExportPayload) *Table {
	t := NewTable(autocorrectHeader...)
	for _, e := range p.AutocorrectEvents {
		t.Append(e.ParticipantID, e.Phase, e.TimestampMs, e.OriginalWord, e.CorrectedWord, e.Changed)
	}
	return t
}

// questionnaireTable emits one row per answered-or-not item. Difficulty and
// total only appear on the first row.
func questionnaireTable(participantID string, q *models.Questionnaire, resp models.QuestionnaireResponse) *Table {
	total := metrics.ScoreItems(resp.ItemScores)
	difficulty := ""
	if resp.Difficulty != nil {
		difficulty = string(*resp.Difficulty)
	}

	t := NewTable(questionnaireHeader...)
	for idx, score := range resp.ItemScores {
		if idx == 0 {
			t.Append(participantID, idx+1, q.QuestionText(idx), score, difficulty, total)
			continue
		}
		t.Append(participantID, idx+1, q.QuestionText(idx), score, "", "")
	}
	return t
}

func combinedTable(p *models.ExportPayload) *Table {
	phq := metrics.ScoreItems(p.PHQ9.ItemScores)
	gad := metrics.ScoreItems(p.GAD7.ItemScores)

	t := NewTable(combinedHeader...)
	t.Append(p.ParticipantID, phq, gad, metrics.CombinedTotal(phq, gad))
	return t
}

func phaseRank(phase models.Phase) int {
	for i, p := range models.Phases {
		if p == phase {
			return i
		}
	}
	return len(models.Phases)
}
