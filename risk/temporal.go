package risk

import "github.com/aavahealth/migraine-api/schema"

// TemporalAdjustment inspects a short run of days for patterns that raise
// migraine risk beyond what today's snapshot shows, and returns a bounded
// percentage-point addition to the base probability. Each pattern carries
// its own cap so no single signal can dominate. An empty history means no
// pattern can be established and the adjustment is 0.
func TemporalAdjustment(history []schema.SensorDay, today schema.SensorDay) float64 {
	if len(history) == 0 {
		return 0
	}

	days := make([]schema.SensorDay, 0, len(history)+1)
	days = append(days, history...)
	days = append(days, today)

	var adjustment float64

	// accumulated sleep debt against a 7h/night baseline
	var totalSleep float64
	for _, d := range days {
		totalSleep += d.SleepHours
	}
	sleepDebt := 7.0*float64(len(days)) - totalSleep
	if sleepDebt > 7 {
		adjustment += minFloat(10, sleepDebt)
	}

	var highStress, extremeStress, highScreen, elevatedHR, veryPoorSleep int
	for _, d := range days {
		if d.StressLevel > 70 {
			highStress++
		}
		if d.StressLevel > 85 {
			extremeStress++
		}
		if d.ScreenTimeHours > 9 {
			highScreen++
		}
		if d.HeartRateBPM > 78 {
			elevatedHR++
		}
		if d.SleepHours < 5.5 {
			veryPoorSleep++
		}
	}

	if highStress >= 3 {
		adjustment += minFloat(8, float64(highStress)*2)
	}

	// a run of days with two or more poor indicators at once
	var run, longestRun int
	for _, d := range days {
		indicators := 0
		if d.SleepHours < 6.5 {
			indicators++
		}
		if d.StressLevel > 70 {
			indicators++
		}
		if d.Steps < 5000 {
			indicators++
		}
		if d.ScreenTimeHours > 8 {
			indicators++
		}

		if indicators >= 2 {
			run++
			if run > longestRun {
				longestRun = run
			}
		} else {
			run = 0
		}
	}
	if longestRun >= 3 {
		adjustment += minFloat(15, float64(longestRun)*4)
	}

	// pronounced activity decline over the window
	if len(days) >= 3 && days[len(days)-1].Steps < days[0].Steps*0.6 {
		adjustment += 3
	}

	if highScreen >= 4 {
		adjustment += minFloat(5, float64(highScreen))
	}
	if elevatedHR >= 4 {
		adjustment += minFloat(5, float64(elevatedHR))
	}
	if veryPoorSleep >= 4 {
		adjustment += minFloat(8, float64(veryPoorSleep)*2)
	}
	if extremeStress >= 3 {
		adjustment += minFloat(10, float64(extremeStress)*3)
	}

	return adjustment
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
