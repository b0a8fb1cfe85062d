package models

import (
	"testing"
	"time"
)

func TestBillReminder_NextDue(t *testing.T) {
	tests := []struct {
		name   string
		dueDay int
		from   time.Time
		want   time.Time
	}{
		{"later this month", 15, date(2026, 3, 10), date(2026, 3, 15)},
		{"due today", 10, date(2026, 3, 10), date(2026, 3, 10)},
		{"rolls into next month", 5, date(2026, 3, 10), date(2026, 4, 5)},
		{"clamped to february end", 31, date(2026, 2, 1), date(2026, 2, 28)},
		{"clamped next month", 31, date(2026, 4, 30), date(2026, 4, 30)},
		{"december rolls into january", 1, date(2026, 12, 2), date(2027, 1, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := BillReminder{DueDay: tt.dueDay}
			if got := b.NextDue(tt.from); !got.Equal(tt.want) {
				t.Errorf("NextDue = %s, want %s", got.Format(time.DateOnly), tt.want.Format(time.DateOnly))
			}
		})
	}
}

func TestSavingsGoal_Progress(t *testing.T) {
	if got := (SavingsGoal{TargetAmount: 1000, CurrentAmount: 250}).Progress(); got != 25 {
		t.Errorf("progress = %v, want 25", got)
	}
	if got := (SavingsGoal{}).Progress(); got != 0 {
		t.Errorf("progress with no target = %v, want 0", got)
	}
}

func TestSubscription_IsPremium(t *testing.T) {
	for status, want := range map[SubscriptionStatus]bool{
		SubscriptionActive:   true,
		SubscriptionTrialing: true,
		SubscriptionPastDue:  false,
		SubscriptionCanceled: false,
	} {
		if got := (Subscription{Status: status}).IsPremium(); got != want {
			t.Errorf("%s: IsPremium = %v, want %v", status, got, want)
		}
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
