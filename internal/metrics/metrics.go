package metrics

import (
	"math"
	"sort"

	"kscore-go/internal/models"
)

type MetricResult struct {
	Value      float64 `json:"value"`
	Calculated bool    `json:"calculated"`
	SampleSize int     `json:"sampleSize,omitempty"`
}

// TypingProfile holds the descriptive metrics shown on the review screen for
// each ended phase. They are not part of the export.
type TypingProfile struct {
	Phase   models.Phase            `json:"phase"`
	Metrics map[string]MetricResult `json:"metrics"`
}

// CalculateTypingProfiles computes a profile for every phase listed.
func CalculateTypingProfiles(events []models.KeystrokeEvent, phases []models.Phase) []TypingProfile {
	profiles := make([]TypingProfile, 0, len(phases))
	for _, phase := range phases {
		profiles = append(profiles, TypingProfile{
			Phase:   phase,
			Metrics: calculateKeyboardProfile(filterKeystrokesByPhase(phase, events)),
		})
	}
	return profiles
}

// median expects a non-empty slice. It sorts a copy.
func median(values []int64) float64 {
	sorted := make([]int64, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return float64(sorted[mid-1]+sorted[mid]) / 2
	}
	return float64(sorted[mid])
}

// mean expects a non-empty slice.
func mean(values []int64) float64 {
	var sum int64
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

// roundMs rounds half away from zero and clamps at 0.
func roundMs(v float64) uint {
	if v <= 0 {
		return 0
	}
	return uint(math.Round(v))
}
