package metrics

import (
	"math"
	"sort"

	"kscore-go/internal/models"
)

const (
	pauseFloorMs     = 1000.0
	longPauseMs      = 5000
	immediateWindow  = 3
	minProfileEvents = 5
)

// calculateKeyboardProfile derives rhythm and editing metrics from one
// phase's keydowns. Metrics that lack enough samples stay uncalculated.
func calculateKeyboardProfile(events []models.KeystrokeEvent) map[string]MetricResult {
	profile := map[string]MetricResult{
		"typing_speed":                  {SampleSize: len(events)},
		"average_inter_key_interval":    {},
		"typing_rhythm_variability":     {},
		"correction_rate":               {},
		"immediate_correction_tendency": {},
		"pause_rate":                    {},
		"deep_thinking_pause_rate":      {},
	}
	if len(events) < minProfileEvents {
		return profile
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].TimestampMs < events[j].TimestampMs
	})

	contentKeys := 0
	for _, e := range events {
		if e.IsCharacter || e.Key == "Enter" {
			contentKeys++
		}
	}
	seconds := float64(events[len(events)-1].TimestampMs-events[0].TimestampMs) / 1000
	if seconds > 0 && contentKeys > 0 {
		profile["typing_speed"] = MetricResult{Value: float64(contentKeys) / seconds, Calculated: true, SampleSize: contentKeys}
	}

	intervals := interKeyIntervals(events)

	// Trim outliers above 1.5x the 95th percentile before measuring rhythm.
	if len(intervals) >= 3 {
		sorted := make([]int64, len(intervals))
		copy(sorted, intervals)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		p95 := int(float64(len(sorted)) * 0.95)
		if p95 >= len(sorted) {
			p95 = len(sorted) - 1
		}
		ceiling := float64(sorted[p95]) * 1.5

		kept := make([]int64, 0, len(intervals))
		for _, iv := range intervals {
			if float64(iv) <= ceiling {
				kept = append(kept, iv)
			}
		}

		if len(kept) >= 3 {
			avg := mean(kept)
			profile["average_inter_key_interval"] = MetricResult{Value: avg, Calculated: true, SampleSize: len(kept)}

			if avg > 0 {
				var variance float64
				for _, iv := range kept {
					variance += math.Pow(float64(iv)-avg, 2)
				}
				variance /= float64(len(kept) - 1)
				profile["typing_rhythm_variability"] = MetricResult{Value: math.Sqrt(variance) / avg, Calculated: true, SampleSize: len(kept)}
			}
		}
	}

	if len(intervals) >= minProfileEvents {
		threshold := math.Max(mean(intervals)*3.0, pauseFloorMs)
		pauses, longPauses := 0, 0
		for _, iv := range intervals {
			if float64(iv) > threshold {
				pauses++
				if iv > longPauseMs {
					longPauses++
				}
			}
		}
		n := float64(len(intervals))
		profile["pause_rate"] = MetricResult{Value: float64(pauses) / n, Calculated: true, SampleSize: len(intervals)}
		profile["deep_thinking_pause_rate"] = MetricResult{Value: float64(longPauses) / n, Calculated: true, SampleSize: len(intervals)}
	}

	corrections, immediate, chars := 0, 0, 0
	lastCorrection := -1
	for i, e := range events {
		switch {
		case e.IsBackspace || e.Key == "Delete":
			corrections++
			if lastCorrection >= 0 && i-lastCorrection <= immediateWindow {
				immediate++
			}
			lastCorrection = i
		case e.IsCharacter || e.Key == "Enter":
			chars++
		}
	}
	if chars >= 3 {
		profile["correction_rate"] = MetricResult{Value: float64(corrections) / float64(chars), Calculated: true, SampleSize: chars}
		if corrections > 0 {
			profile["immediate_correction_tendency"] = MetricResult{Value: float64(immediate) / float64(corrections), Calculated: true, SampleSize: corrections}
		}
	}

	return profile
}
