package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultAssessment(t *testing.T) {
	a, err := DefaultAssessment()
	require.NoError(t, err)

	phq, ok := a.Questionnaire(PHQ9)
	require.True(t, ok)
	assert.Len(t, phq.Questions, 9)
	assert.Equal(t, "PHQ-9", phq.Title)

	gad, ok := a.Questionnaire(GAD7)
	require.True(t, ok)
	assert.Len(t, gad.Questions, 7)

	assert.Equal(t, "Not at all", a.ChoiceLabel(0))
	assert.Equal(t, "Nearly every day", a.ChoiceLabel(3))
	assert.Equal(t, "Score 5", a.ChoiceLabel(5))
	assert.Equal(t, "Somewhat difficult", a.DifficultyLabel(DifficultySomewhat))

	assert.Equal(t, "Trouble relaxing", gad.QuestionText(3))
	assert.Empty(t, gad.QuestionText(7))
	assert.Empty(t, gad.QuestionText(-1))
}

func TestParseAssessmentValidation(t *testing.T) {
	valid, err := DefaultAssessment()
	require.NoError(t, err)

	tests := []struct {
		name    string
		mutate  func(a *Assessment)
		wantErr string
	}{
		{name: "three choices", mutate: func(a *Assessment) { a.Choices = a.Choices[:3] }, wantErr: "4 choices"},
		{name: "choice out of order", mutate: func(a *Assessment) { a.Choices[1].Value = 2 }, wantErr: "choice 1"},
		{name: "unknown difficulty", mutate: func(a *Assessment) { a.Difficulties[0].Value = "mild" }, wantErr: "mild"},
		{name: "short phq9", mutate: func(a *Assessment) { a.Questionnaires[0].Questions = a.Questionnaires[0].Questions[:8] }, wantErr: "must have 9"},
		{name: "missing gad7", mutate: func(a *Assessment) { a.Questionnaires = a.Questionnaires[:1] }, wantErr: "gad7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := *valid
			a.Choices = append([]Option(nil), valid.Choices...)
			a.Difficulties = append([]DifficultyOption(nil), valid.Difficulties...)
			a.Questionnaires = append([]Questionnaire(nil), valid.Questionnaires...)
			tt.mutate(&a)

			err := a.validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseAssessmentBadYAML(t *testing.T) {
	_, err := ParseAssessment([]byte("choices: [unterminated"))
	assert.Error(t, err)

	_, err = LoadAssessment("/nonexistent/questionnaires.yaml")
	assert.Error(t, err)
}

func TestParsePhase(t *testing.T) {
	for _, s := range []string{"baseline", "essay"} {
		p, err := ParsePhase(s)
		require.NoError(t, err)
		assert.Equal(t, s, p.String())
	}

	for _, s := range []string{"", "Essay", "review"} {
		_, err := ParsePhase(s)
		assert.Error(t, err, s)
	}
}

func TestPhaseRejectsUnknownInJSON(t *testing.T) {
	var e KeystrokeEvent
	err := json.Unmarshal([]byte(`{"participantId":"p","phase":"warmup","timestampMs":1}`), &e)
	assert.Error(t, err)

	require.NoError(t, json.Unmarshal([]byte(`{"participantId":"p","phase":"essay","timestampMs":1}`), &e))
	assert.Equal(t, PhaseEssay, e.Phase)
}

func TestParseDifficulty(t *testing.T) {
	for _, d := range []Difficulty{DifficultyNone, DifficultySomewhat, DifficultyVery, DifficultyExtremely} {
		got, err := ParseDifficulty(string(d))
		require.NoError(t, err)
		assert.Equal(t, d, got)
	}
	_, err := ParseDifficulty("moderately")
	assert.Error(t, err)
}

func TestQuestionnaireResponseClone(t *testing.T) {
	r := NewQuestionnaireResponse(3)
	assert.True(t, r.HasData())
	assert.False(t, QuestionnaireResponse{}.HasData())

	v := 2
	d := DifficultyVery
	r.ItemScores[1] = &v
	r.Difficulty = &d

	c := r.Clone()
	*c.ItemScores[1] = 0
	*c.Difficulty = DifficultyNone

	assert.Equal(t, 2, *r.ItemScores[1])
	assert.Equal(t, DifficultyVery, *r.Difficulty)
	assert.Nil(t, c.ItemScores[0])
	assert.Nil(t, QuestionnaireResponse{}.Clone().ItemScores)
}

func TestConsentRecord(t *testing.T) {
	c := ConsentRecord{TypingConsent: true, PhqGadConsent: true, FullName: " \t"}
	assert.False(t, c.Complete())
	assert.Empty(t, c.SignedAtString())

	c.FullName = "Jane Doe"
	c.SignedAt = time.Date(2024, 3, 1, 9, 30, 15, 250_000_000, time.FixedZone("EST", -5*3600))
	assert.True(t, c.Complete())
	assert.Equal(t, "2024-03-01T14:30:15.250Z", c.SignedAtString())
}

func TestParseQuestionnaireKind(t *testing.T) {
	k, err := ParseQuestionnaireKind("gad7")
	require.NoError(t, err)
	assert.Equal(t, 7, k.ItemCount())

	_, err = ParseQuestionnaireKind(strings.ToUpper("phq9"))
	assert.Error(t, err)
}
