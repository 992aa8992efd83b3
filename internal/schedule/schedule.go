// Package schedule implements admission control for automated
// publication. The caps and slot layout are editorial policy: spread
// the daily allowance across the day instead of bursting it early, go
// quiet at night, and catch up when behind pace.
package schedule

import (
	"math"
	"time"
)

const (
	weekdayMax = 12
	weekendMax = 7

	// slotCeiling bounds how many articles a single run may publish,
	// even when catching up.
	slotCeiling = 3

	// forceLimit bounds manual override requests.
	forceLimit = 20

	nightStartHour = 23
	nightEndHour   = 6
)

// idealHours are the local hours at which publication should ideally
// happen. Pace is measured as the fraction of these already passed.
var idealHours = []int{7, 9, 10, 11, 12, 13, 15, 17, 19, 21}

// Budget is the admission-control decision for one run.
type Budget struct {
	Allowed    bool   `json:"allowed"`
	MaxThisRun int    `json:"maxThisRun"`
	Reason     string `json:"reason,omitempty"`
}

// ComputeRunBudget decides how many new articles the current run may
// publish, from wall-clock time and today's already-published count.
// Force mode bypasses the night gate, the daily cap, and slot pacing.
func ComputeRunBudget(now time.Time, todayPublished int, force bool, forceCount int) Budget {
	if force {
		n := forceCount
		if n < 1 {
			n = 1
		}
		if n > forceLimit {
			n = forceLimit
		}
		return Budget{Allowed: true, MaxThisRun: n, Reason: "force mode"}
	}

	hour := now.Hour()
	if hour >= nightStartHour || hour < nightEndHour {
		return Budget{Reason: "night mode"}
	}

	dailyMax := DailyMax(now)
	if todayPublished >= dailyMax {
		return Budget{Reason: "daily max reached"}
	}

	slotsPassed := 0
	for _, h := range idealHours {
		if h <= hour {
			slotsPassed++
		}
	}

	idealCount := int(math.Round(float64(dailyMax) * float64(slotsPassed) / float64(len(idealHours))))

	baseSlotMax := 1
	if !isWeekend(now) {
		baseSlotMax = int(math.Ceil(float64(dailyMax) / float64(len(idealHours))))
		if baseSlotMax > 2 {
			baseSlotMax = 2
		}
	}

	slotMax := baseSlotMax
	if idealCount-todayPublished > 0 {
		// Behind pace: allow one extra this run.
		slotMax = baseSlotMax + 1
	}
	if slotMax > slotCeiling {
		slotMax = slotCeiling
	}

	maxThisRun := dailyMax - todayPublished
	if slotMax < maxThisRun {
		maxThisRun = slotMax
	}

	return Budget{Allowed: true, MaxThisRun: maxThisRun}
}

// DailyMax returns the publication cap for the day of now.
func DailyMax(now time.Time) int {
	if isWeekend(now) {
		return weekendMax
	}
	return weekdayMax
}

func isWeekend(now time.Time) bool {
	wd := now.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
