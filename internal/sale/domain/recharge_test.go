package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var now = time.Date(2024, 7, 10, 15, 30, 0, 0, time.UTC)

func TestRechargeWindowBoundaryIsExpiringSoon(t *testing.T) {
	sale := Sale{BusinessType: BusinessTypeTelecomRecharge, Date: now.AddDate(0, 0, -30)}

	w := RechargeWindow(sale, now, DefaultRechargePolicy())
	assert.True(t, w.ExpiryDate.Equal(now))
	assert.True(t, w.IsExpiringSoon)
	assert.False(t, w.HasRecentlyExpired)
	assert.True(t, w.CanSendReminder)
}

func TestRechargeWindowBuckets(t *testing.T) {
	policy := DefaultRechargePolicy()
	tests := []struct {
		name     string
		age      time.Duration
		soon     bool
		recent   bool
		reminder bool
	}{
		{name: "fresh", age: 10 * 24 * time.Hour},
		{name: "three days left", age: 27 * 24 * time.Hour, soon: true, reminder: true},
		{name: "just over three days left", age: 27*24*time.Hour - time.Minute},
		{name: "expired yesterday", age: 31 * 24 * time.Hour, recent: true, reminder: true},
		{name: "expired three days ago", age: 33 * 24 * time.Hour, recent: true, reminder: true},
		{name: "long expired", age: 33*24*time.Hour + time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := RechargeWindow(Sale{Date: now.Add(-tt.age)}, now, policy)
			assert.Equal(t, tt.soon, w.IsExpiringSoon)
			assert.Equal(t, tt.recent, w.HasRecentlyExpired)
			assert.Equal(t, tt.reminder, w.CanSendReminder)
		})
	}
}

func TestRechargeWindowsAreDisjoint(t *testing.T) {
	policy := DefaultRechargePolicy()
	for h := 0; h < 24*40; h++ {
		w := RechargeWindow(Sale{Date: now.Add(-time.Duration(h) * time.Hour)}, now, policy)
		assert.False(t, w.IsExpiringSoon && w.HasRecentlyExpired, "hour %d", h)
	}
}

func TestRechargeReminderAlreadySent(t *testing.T) {
	sale := Sale{Date: now.AddDate(0, 0, -29), ReminderSent: true}
	w := RechargeWindow(sale, now, DefaultRechargePolicy())
	assert.True(t, w.IsExpiringSoon)
	assert.False(t, w.CanSendReminder)
}

func TestRechargeWindowCustomPolicy(t *testing.T) {
	sale := Sale{Date: now.AddDate(0, 0, -5)}
	w := RechargeWindow(sale, now, RechargePolicy{ValidityDays: 7, WindowDays: 2})
	assert.True(t, w.ExpiryDate.Equal(now.AddDate(0, 0, 2)))
	assert.True(t, w.IsExpiringSoon)
}

func TestDerivePaymentStatus(t *testing.T) {
	amount := decimalOf("25.00")
	assert.Equal(t, PaymentStatusPaid, DerivePaymentStatus(amount, decimalOf("25")))
	assert.Equal(t, PaymentStatusPaid, DerivePaymentStatus(amount, decimalOf("30")))
	assert.Equal(t, PaymentStatusPartial, DerivePaymentStatus(amount, decimalOf("0.01")))
	assert.Equal(t, PaymentStatusUnpaid, DerivePaymentStatus(amount, decimalOf("0")))
}

func TestBusinessTypeBucket(t *testing.T) {
	assert.Equal(t, "other", BusinessType("").Bucket())
	assert.Equal(t, "travel_domestic", BusinessTypeTravelDomestic.Bucket())
	assert.True(t, BusinessTypeTravelDomestic.IsTravel())
	assert.True(t, BusinessTypeTelecomPhone.IsTelecom())
}
