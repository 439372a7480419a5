package whoop

import (
	"fmt"
	"strings"
)

// The formatters render each measurement as readable lines so embedded
// records carry the numbers in text form. Absent measurements are
// skipped rather than rendered as zeros.

func formatRecovery(r recoveryRecord) string {
	lines := []string{
		fmt.Sprintf("Recovery Score: %.0f", r.Score.RecoveryScore),
		fmt.Sprintf("Resting Heart Rate: %.0f bpm", r.Score.RestingHeartRate),
	}
	if r.Score.HRVMilli > 0 {
		lines = append(lines, fmt.Sprintf("HRV: %.0f ms", r.Score.HRVMilli))
	}
	if r.Score.SkinTempCelsius > 0 {
		lines = append(lines, fmt.Sprintf("Skin Temperature: %.1f C", r.Score.SkinTempCelsius))
	}
	if r.Score.SpO2Percentage > 0 {
		lines = append(lines, fmt.Sprintf("SpO2: %.1f%%", r.Score.SpO2Percentage))
	}
	return strings.Join(lines, "\n")
}

func formatSleep(s sleepRecord) string {
	stages := s.Score.StageSummary
	lines := []string{
		fmt.Sprintf("Total Sleep: %.2f hours", stages.TotalSleepMilli/3600000),
		fmt.Sprintf("Sleep Efficiency: %.1f%%", s.Score.SleepEfficiencyPercentage),
		fmt.Sprintf("Time in Bed: %.2f hours", stages.TotalInBedMilli/3600000),
		fmt.Sprintf("Awake Time: %.2f hours", stages.TotalAwakeMilli/3600000),
		fmt.Sprintf("Light Sleep: %.2f hours", stages.TotalLightSleepMilli/3600000),
		fmt.Sprintf("Slow Wave Sleep: %.2f hours", stages.TotalSlowWaveSleepMilli/3600000),
		fmt.Sprintf("REM Sleep: %.2f hours", stages.TotalREMSleepMilli/3600000),
	}
	return strings.Join(lines, "\n")
}

func formatWorkout(w workoutRecord) string {
	lines := []string{
		fmt.Sprintf("Strain Score: %.1f", w.Score.Strain),
	}
	if w.Score.AverageHeartRate > 0 {
		lines = append(lines, fmt.Sprintf("Average Heart Rate: %.0f bpm", w.Score.AverageHeartRate))
	}
	if w.Score.MaxHeartRate > 0 {
		lines = append(lines, fmt.Sprintf("Max Heart Rate: %.0f bpm", w.Score.MaxHeartRate))
	}
	if w.Score.Kilojoule > 0 {
		lines = append(lines, fmt.Sprintf("Calories: %.0f kcal", w.Score.Kilojoule/4.184))
	}
	if !w.Start.IsZero() && w.End.After(w.Start) {
		lines = append(lines, fmt.Sprintf("Duration: %.1f minutes", w.End.Sub(w.Start).Minutes()))
	}
	return strings.Join(lines, "\n")
}
