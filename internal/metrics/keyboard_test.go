package metrics

import (
	"testing"

	"kscore-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keystrokes(phase models.Phase, timestamps ...int64) []models.KeystrokeEvent {
	events := make([]models.KeystrokeEvent, 0, len(timestamps))
	for _, ts := range timestamps {
		events = append(events, models.KeystrokeEvent{
			ParticipantID: "p1",
			Phase:         phase,
			TimestampMs:   ts,
			Key:           "a",
			Code:          "KeyA",
			IsCharacter:   true,
		})
	}
	return events
}

func TestSummarizePhaseEmpty(t *testing.T) {
	tests := []struct {
		name   string
		events []models.KeystrokeEvent
	}{
		{name: "nil log", events: nil},
		{name: "only other phase", events: keystrokes(models.PhaseEssay, 0, 10, 20)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SummarizePhase("p1", tt.events, models.PhaseBaseline)
			assert.Equal(t, models.PhaseSummary{ParticipantID: "p1", Phase: models.PhaseBaseline}, got)
		})
	}
}

func TestSummarizePhaseIntervals(t *testing.T) {
	events := keystrokes(models.PhaseBaseline, 0, 100, 250, 260, 400)

	got := SummarizePhase("p1", events, models.PhaseBaseline)

	assert.Equal(t, uint(5), got.TotalKeys)
	assert.Equal(t, uint(120), got.MedianIkiMs)
	assert.Equal(t, uint(100), got.MeanIkiMs)
	assert.Equal(t, uint(400), got.DurationMs)
	assert.Zero(t, got.OutOfOrderIntervals)
}

func TestSummarizePhaseSingleEvent(t *testing.T) {
	got := SummarizePhase("p1", keystrokes(models.PhaseEssay, 1234), models.PhaseEssay)

	assert.Equal(t, uint(1), got.TotalKeys)
	assert.Zero(t, got.MedianIkiMs)
	assert.Zero(t, got.MeanIkiMs)
	assert.Zero(t, got.DurationMs)
}

func TestSummarizePhaseBackspaces(t *testing.T) {
	events := keystrokes(models.PhaseBaseline, 0, 10, 20, 30)
	events[1].IsBackspace, events[1].IsCharacter, events[1].Key = true, false, "Backspace"
	events[3].IsBackspace, events[3].IsCharacter, events[3].Key = true, false, "Backspace"
	events = append(events, keystrokes(models.PhaseEssay, 5, 6)...)

	got := SummarizePhase("p1", events, models.PhaseBaseline)

	require.Equal(t, uint(4), got.TotalKeys)
	assert.Equal(t, uint(2), got.TotalBackspaces)
	assert.LessOrEqual(t, got.TotalBackspaces, got.TotalKeys)
	assert.Equal(t, float64(got.TotalBackspaces)/float64(got.TotalKeys), got.BackspaceRate)
}

func TestSummarizePhaseOutOfOrder(t *testing.T) {
	// Captured as 0, 300, 100, 400; statistics use 0, 100, 300, 400.
	events := keystrokes(models.PhaseBaseline, 0, 300, 100, 400)
	events[2].IsBackspace = true
	original := append([]models.KeystrokeEvent(nil), events...)

	got := SummarizePhase("p1", events, models.PhaseBaseline)

	assert.Equal(t, uint(4), got.TotalKeys)
	assert.Equal(t, uint(1), got.TotalBackspaces)
	assert.Equal(t, uint(1), got.OutOfOrderIntervals)
	// intervals 100, 200, 100
	assert.Equal(t, uint(100), got.MedianIkiMs)
	assert.Equal(t, uint(133), got.MeanIkiMs)
	assert.Equal(t, uint(400), got.DurationMs)
	assert.Equal(t, original, events, "input must not be reordered")
}

func TestSummarizePhaseRounding(t *testing.T) {
	// intervals 1, 2 -> median 1.5, mean 1.5
	got := SummarizePhase("p1", keystrokes(models.PhaseEssay, 0, 1, 3), models.PhaseEssay)

	assert.Equal(t, uint(2), got.MedianIkiMs)
	assert.Equal(t, uint(2), got.MeanIkiMs)
}

func TestSummarizePhaseDeterministic(t *testing.T) {
	events := keystrokes(models.PhaseEssay, 40, 10, 10, 70, 55)

	first := SummarizePhase("p1", events, models.PhaseEssay)
	second := SummarizePhase("p1", events, models.PhaseEssay)

	assert.Equal(t, first, second)
}

func TestPhaseIntervals(t *testing.T) {
	events := append(keystrokes(models.PhaseBaseline, 0, 300, 100, 400), keystrokes(models.PhaseEssay, 50)...)

	assert.Equal(t, []int64{100, 200, 100}, PhaseIntervals(events, models.PhaseBaseline))
	assert.Empty(t, PhaseIntervals(events, models.PhaseEssay))
}
