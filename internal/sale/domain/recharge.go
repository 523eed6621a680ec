package domain

import "time"

// RechargePolicy parameterises recharge validity and the reminder window, in days.
type RechargePolicy struct {
	ValidityDays int
	WindowDays   int
}

func DefaultRechargePolicy() RechargePolicy {
	return RechargePolicy{ValidityDays: 30, WindowDays: 3}
}

type Window struct {
	ExpiryDate         time.Time `json:"expiry_date"`
	IsExpiringSoon     bool      `json:"is_expiring_soon"`
	HasRecentlyExpired bool      `json:"has_recently_expired"`
	CanSendReminder    bool      `json:"can_send_reminder"`
}

// RechargeWindow places a sale's expiry relative to now. Expiring soon covers
// [now, now+window] and takes the boundary instant; recently expired covers [now-window, now).
func RechargeWindow(sale Sale, now time.Time, policy RechargePolicy) Window {
	expiry := sale.Date.AddDate(0, 0, policy.ValidityDays)
	window := time.Duration(policy.WindowDays) * 24 * time.Hour

	soon := !expiry.Before(now) && !expiry.After(now.Add(window))
	recent := !soon && expiry.Before(now) && !expiry.Before(now.Add(-window))

	return Window{
		ExpiryDate:         expiry,
		IsExpiringSoon:     soon,
		HasRecentlyExpired: recent,
		CanSendReminder:    (soon || recent) && !sale.ReminderSent,
	}
}
