package metrics

import (
	"sort"

	"kscore-go/internal/models"
)

// SummarizePhase computes the typing summary for one phase. It is pure: the
// input slice is never reordered and identical input gives identical output.
func SummarizePhase(participantID string, events []models.KeystrokeEvent, phase models.Phase) models.PhaseSummary {
	summary := models.PhaseSummary{ParticipantID: participantID, Phase: phase}

	phaseEvents := filterKeystrokesByPhase(phase, events)
	if len(phaseEvents) == 0 {
		return summary
	}

	var backspaces uint
	for _, e := range phaseEvents {
		if e.IsBackspace {
			backspaces++
		}
	}
	summary.TotalKeys = uint(len(phaseEvents))
	summary.TotalBackspaces = backspaces
	summary.BackspaceRate = float64(backspaces) / float64(len(phaseEvents))

	for i := 1; i < len(phaseEvents); i++ {
		if phaseEvents[i].TimestampMs < phaseEvents[i-1].TimestampMs {
			summary.OutOfOrderIntervals++
		}
	}

	// Capture order is not authoritative; timestamps are.
	sort.SliceStable(phaseEvents, func(i, j int) bool {
		return phaseEvents[i].TimestampMs < phaseEvents[j].TimestampMs
	})

	intervals := interKeyIntervals(phaseEvents)
	if len(intervals) > 0 {
		summary.MedianIkiMs = roundMs(median(intervals))
		summary.MeanIkiMs = roundMs(mean(intervals))
	}

	summary.DurationMs = roundMs(float64(phaseEvents[len(phaseEvents)-1].TimestampMs - phaseEvents[0].TimestampMs))
	return summary
}

// PhaseIntervals returns the timestamp-ordered inter-key intervals of one
// phase, as used for the median and mean.
func PhaseIntervals(events []models.KeystrokeEvent, phase models.Phase) []int64 {
	phaseEvents := filterKeystrokesByPhase(phase, events)
	sort.SliceStable(phaseEvents, func(i, j int) bool {
		return phaseEvents[i].TimestampMs < phaseEvents[j].TimestampMs
	})
	return interKeyIntervals(phaseEvents)
}

// interKeyIntervals returns the consecutive differences of sorted events.
// Negative differences are dropped.
func interKeyIntervals(sorted []models.KeystrokeEvent) []int64 {
	intervals := make([]int64, 0, len(sorted))
	for i := 1; i < len(sorted); i++ {
		diff := sorted[i].TimestampMs - sorted[i-1].TimestampMs
		if diff >= 0 {
			intervals = append(intervals, diff)
		}
	}
	return intervals
}

// filterKeystrokesByPhase always returns a fresh slice so callers may sort it.
func filterKeystrokesByPhase(phase models.Phase, events []models.KeystrokeEvent) []models.KeystrokeEvent {
	filtered := make([]models.KeystrokeEvent, 0, len(events))
	for _, event := range events {
		if event.Phase == phase {
			filtered = append(filtered, event)
		}
	}
	return filtered
}
