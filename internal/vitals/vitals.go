// Package vitals computes trend advisories from a user's recorded health
// readings. Analyze is a pure function over its inputs with no persistence
// and no side effects; callers fetch history through the store.
package vitals

import (
	"fmt"
	"sort"

	"healthcopilot/internal/database"
)

// windowSize is the number of most recent readings the trend average covers.
const windowSize = 5

// NoDataMessage is returned when the user has no readings of the requested kind.
const NoDataMessage = "No data available yet to provide suggestions."

// Blood pressure thresholds (mmHg) and glucose thresholds (mg/dL).
const (
	systolicHigh  = 140.0
	diastolicHigh = 90.0
	systolicLow   = 90.0
	diastolicLow  = 60.0
	sugarHigh     = 180.0
	sugarLow      = 70.0
)

// Analyze returns an advisory message for the trend over the most recent
// readings of one kind. History may mix kinds and arrive in any order: it is
// filtered to the requested kind and sorted by timestamp, stably, so readings
// sharing a timestamp keep their input order and identical input always
// yields an identical advisory.
func Analyze(history []database.VitalReading, kind string) string {
	sorted := make([]database.VitalReading, 0, len(history))
	for _, r := range history {
		if r.Kind == kind {
			sorted = append(sorted, r)
		}
	}
	if len(sorted) == 0 {
		return NoDataMessage
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	window := sorted
	if len(window) > windowSize {
		window = window[len(window)-windowSize:]
	}

	switch kind {
	case database.KindBloodPressure:
		return analyzeBloodPressure(window)
	case database.KindSugar:
		return analyzeSugar(window)
	}

	return "Trend analysis complete. Keep monitoring regularly."
}

func analyzeBloodPressure(window []database.VitalReading) string {
	var systolicSum, diastolicSum float64
	for _, r := range window {
		systolicSum += r.ValuePrimary
		diastolicSum += r.ValueSecondary.Float64
	}
	systolicAvg := systolicSum / float64(len(window))
	diastolicAvg := diastolicSum / float64(len(window))

	switch {
	case systolicAvg > systolicHigh || diastolicAvg > diastolicHigh:
		return fmt.Sprintf("Your recent average (%d/%d) is high. "+
			"Try reducing salt intake, staying hydrated, and consulting a doctor if this persists.",
			int(systolicAvg), int(diastolicAvg))
	case systolicAvg < systolicLow || diastolicAvg < diastolicLow:
		return "Your recent average is on the lower side. Ensure you are well-hydrated and nourished."
	}
	return "Your blood pressure trends look stable and within a healthy range. Keep up the good work!"
}

func analyzeSugar(window []database.VitalReading) string {
	var sum float64
	for _, r := range window {
		sum += r.ValuePrimary
	}
	avg := sum / float64(len(window))

	switch {
	case avg > sugarHigh:
		return fmt.Sprintf("Your recent average sugar level (%d mg/dL) is elevated. "+
			"Consider monitoring your carb intake and staying active. Please speak with your doctor about these readings.",
			int(avg))
	case avg < sugarLow:
		return "Your recent sugar levels are low (hypoglycemia). Ensure you're eating consistent meals."
	}
	return "Your blood sugar levels are currently within target ranges."
}
