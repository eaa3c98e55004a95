package models

// KeystrokeEvent is a single keydown captured during a typing phase.
// TimestampMs is relative to the start of the phase.
type KeystrokeEvent struct {
	ParticipantID string `json:"participantId"`
	Phase         Phase  `json:"phase"`
	TimestampMs   int64  `json:"timestampMs"`
	Key           string `json:"key"`
	Code          string `json:"code"`
	IsBackspace   bool   `json:"isBackspace"`
	IsCharacter   bool   `json:"isCharacter"`
}

// PhaseSummary holds the typing statistics computed when a phase ends.
type PhaseSummary struct {
	ParticipantID   string  `json:"participantId"`
	Phase           Phase   `json:"phase"`
	TotalKeys       uint    `json:"totalKeys"`
	TotalBackspaces uint    `json:"totalBackspaces"`
	BackspaceRate   float64 `json:"backspaceRate"`
	MedianIkiMs     uint    `json:"medianIkiMs"`
	MeanIkiMs       uint    `json:"meanIkiMs"`
	DurationMs      uint    `json:"durationMs"`

	// OutOfOrderIntervals counts consecutive events, in capture order, whose
	// timestamp went backwards. Statistics use the timestamp-sorted order, so
	// these never contribute a negative interval. Diagnostic only; not
	// exported to CSV.
	OutOfOrderIntervals uint `json:"outOfOrderIntervals"`
}

// AutocorrectEvent records one invocation of the word corrector.
type AutocorrectEvent struct {
	ParticipantID string `json:"participantId"`
	Phase         Phase  `json:"phase"`
	TimestampMs   int64  `json:"timestampMs"`
	OriginalWord  string `json:"originalWord"`
	CorrectedWord string `json:"correctedWord"`
	Changed       bool   `json:"changed"`
}
