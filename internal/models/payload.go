package models

import (
	"strings"
	"unicode"
)

// ExportPayload is the immutable snapshot handed to the export pipeline.
// It only carries phases that have ended.
type ExportPayload struct {
	ParticipantID     string                `json:"participantId"`
	Consent           ConsentRecord         `json:"consent"`
	Keystrokes        []KeystrokeEvent      `json:"keystrokes"`
	Summaries         []PhaseSummary        `json:"summaries"`
	EssayText         string                `json:"essayText"`
	PHQ9              QuestionnaireResponse `json:"phq9"`
	GAD7              QuestionnaireResponse `json:"gad7"`
	AutocorrectEvents []AutocorrectEvent    `json:"autocorrectEvents"`
}

// Response returns the questionnaire response for kind.
func (p *ExportPayload) Response(kind QuestionnaireKind) QuestionnaireResponse {
	if kind == GAD7 {
		return p.GAD7
	}
	return p.PHQ9
}

func hasText(s string) bool {
	return strings.TrimFunc(s, unicode.IsSpace) != ""
}
