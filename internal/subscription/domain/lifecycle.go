package domain

import (
	"math"
	"sort"
	"time"
)

const day = 24 * time.Hour

// Classification is the read-time view of a customer plan at a given instant.
type Classification struct {
	Status          Status `json:"status"`
	DaysUntilExpiry int    `json:"days_until_expiry"`
	ExpiringSoon    bool   `json:"expiring_soon"`
}

// EffectiveStatus recomputes the status from EndDate. A stored pending status is kept,
// and a stored cancellation always reads as expired.
func EffectiveStatus(plan CustomerPlan, now time.Time) Status {
	switch plan.Status {
	case StatusPending:
		return StatusPending
	case StatusCanceled:
		return StatusExpired
	}
	if now.After(plan.EndDate) {
		return StatusExpired
	}
	return StatusActive
}

// DaysUntilExpiry is floor((EndDate - now) / 1 day); negative once the plan has ended.
func DaysUntilExpiry(plan CustomerPlan, now time.Time) int {
	return int(math.Floor(float64(plan.EndDate.Sub(now)) / float64(day)))
}

// Classify derives status and expiry information with an expiring-soon window in days.
func Classify(plan CustomerPlan, now time.Time, windowDays int) Classification {
	status := EffectiveStatus(plan, now)
	days := DaysUntilExpiry(plan, now)
	return Classification{
		Status:          status,
		DaysUntilExpiry: days,
		ExpiringSoon:    status == StatusActive && days >= 0 && days <= windowDays,
	}
}

// ExpiringSoon returns the plans inside the window, ordered by EndDate then ID.
func ExpiringSoon(plans []CustomerPlan, now time.Time, windowDays int) []CustomerPlan {
	out := make([]CustomerPlan, 0)
	for _, plan := range plans {
		if Classify(plan, now, windowDays).ExpiringSoon {
			out = append(out, plan)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].EndDate.Equal(out[j].EndDate) {
			return out[i].EndDate.Before(out[j].EndDate)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func CanSendReminder(plan CustomerPlan, now time.Time, windowDays int) bool {
	return !plan.ReminderSent && Classify(plan, now, windowDays).ExpiringSoon
}
