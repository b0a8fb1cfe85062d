package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"centsible/internal/events"
	"centsible/internal/finance"
	"centsible/internal/models"
	"centsible/internal/testutil"
)

func TestCreateBill_Validation(t *testing.T) {
	valid := BillInput{Name: "Rent", Amount: 150000, DueDay: 1, Category: finance.Housing, RemindDays: 3}

	tests := []struct {
		name     string
		mutate   func(*BillInput)
		wantCode string
	}{
		{"valid", func(*BillInput) {}, ""},
		{"day_31", func(in *BillInput) { in.DueDay = 31 }, ""},
		{"day_zero", func(in *BillInput) { in.DueDay = 0 }, "INVALID_INPUT"},
		{"day_32", func(in *BillInput) { in.DueDay = 32 }, "INVALID_INPUT"},
		{"remind_too_far", func(in *BillInput) { in.RemindDays = 15 }, "INVALID_INPUT"},
		{"no_amount", func(in *BillInput) { in.Amount = 0 }, "INVALID_INPUT"},
		{"no_category", func(in *BillInput) { in.Category = finance.CategoryKey{} }, "UNKNOWN_CATEGORY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.SetupTestDB(t)
			defer testutil.TeardownTestDB(t, db)
			svc := NewBillService(db)
			user := testutil.CreateTestUser(t, db)

			in := valid
			tt.mutate(&in)
			_, err := svc.CreateBill(user.ID, in)
			if tt.wantCode != "" {
				testutil.AssertAppError(t, err, tt.wantCode)
				return
			}
			testutil.AssertNoError(t, err)
		})
	}
}

func TestGetUpcomingBills(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewBillService(db)
	user := testutil.CreateTestUser(t, db)

	now := time.Date(2026, 2, 25, 15, 0, 0, 0, time.UTC)
	soon := testutil.CreateTestBill(t, db, user.ID, 27, 3)
	endOfMonth := testutil.CreateTestBill(t, db, user.ID, 31, 3)
	nextMonth := testutil.CreateTestBill(t, db, user.ID, 3, 3)
	testutil.CreateTestBill(t, db, user.ID, 20, 3)

	upcoming, err := svc.GetUpcomingBills(user.ID, 7, now)
	testutil.AssertNoError(t, err)
	if len(upcoming) != 3 {
		t.Fatalf("expected 3 upcoming bills, got %d", len(upcoming))
	}

	want := []struct {
		id   string
		due  time.Time
		left int
	}{
		{soon.ID, time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC), 2},
		{endOfMonth.ID, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), 3},
		{nextMonth.ID, time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), 6},
	}
	for i, w := range want {
		got := upcoming[i]
		if got.ID != w.id || !got.DueDate.Equal(w.due) || got.DaysLeft != w.left {
			t.Errorf("upcoming[%d] = %s due %s in %d days, want %s in %d",
				i, got.Name, got.DueDate.Format(time.DateOnly), got.DaysLeft, w.due.Format(time.DateOnly), w.left)
		}
	}
}

type mockPublisher struct {
	PublishBillReminderFunc func(ctx context.Context, m *events.BillReminder) error
	published               []*events.BillReminder
}

func (m *mockPublisher) PublishBillReminder(ctx context.Context, r *events.BillReminder) error {
	if m.PublishBillReminderFunc != nil {
		if err := m.PublishBillReminderFunc(ctx, r); err != nil {
			return err
		}
	}
	m.published = append(m.published, r)
	return nil
}

func TestSendDueReminders(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	pub := &mockPublisher{}
	svc := NewReminderService(db, pub)
	user := testutil.CreateTestUser(t, db)

	asOf := time.Date(2026, 3, 8, 8, 0, 0, 0, time.UTC)
	inWindow := testutil.CreateTestBill(t, db, user.ID, 10, 3)
	testutil.CreateTestBill(t, db, user.ID, 20, 3)
	dueToday := testutil.CreateTestBill(t, db, user.ID, 8, 0)

	sent, err := svc.SendDueReminders(asOf)
	testutil.AssertNoError(t, err)
	if sent != 2 || len(pub.published) != 2 {
		t.Fatalf("expected 2 reminders, got %d", sent)
	}
	ids := map[string]bool{}
	for _, m := range pub.published {
		ids[m.BillID] = true
		if m.Email != user.Email || m.Currency != "USD" {
			t.Errorf("unexpected event %+v", m)
		}
	}
	if !ids[inWindow.ID] || !ids[dueToday.ID] {
		t.Errorf("unexpected bills reminded: %v", ids)
	}

	// Same window: nothing new.
	sent, err = svc.SendDueReminders(asOf.Add(24 * time.Hour))
	testutil.AssertNoError(t, err)
	if sent != 0 {
		t.Errorf("expected no repeat reminders, got %d", sent)
	}

	// Next month's window reminds again.
	sent, err = svc.SendDueReminders(time.Date(2026, 4, 7, 8, 0, 0, 0, time.UTC))
	testutil.AssertNoError(t, err)
	if sent != 1 {
		t.Errorf("expected 1 reminder next month, got %d", sent)
	}
}

func TestSendDueReminders_PublishFailureRetries(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	pub := &mockPublisher{PublishBillReminderFunc: func(context.Context, *events.BillReminder) error {
		return errors.New("broker unavailable")
	}}
	svc := NewReminderService(db, pub)
	user := testutil.CreateTestUser(t, db)
	bill := testutil.CreateTestBill(t, db, user.ID, 10, 3)

	asOf := time.Date(2026, 3, 8, 8, 0, 0, 0, time.UTC)
	sent, err := svc.SendDueReminders(asOf)
	testutil.AssertNoError(t, err)
	if sent != 0 {
		t.Errorf("expected 0 sent, got %d", sent)
	}

	var stored models.BillReminder
	testutil.AssertNoError(t, db.First(&stored, "id = ?", bill.ID).Error)
	if stored.LastRemindedAt != nil {
		t.Error("expected bill to stay unmarked after a failed publish")
	}

	pub.PublishBillReminderFunc = nil
	sent, err = svc.SendDueReminders(asOf)
	testutil.AssertNoError(t, err)
	if sent != 1 {
		t.Errorf("expected retry to send 1, got %d", sent)
	}
}
