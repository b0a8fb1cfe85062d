package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "centsible/internal/errors"
	"centsible/internal/events"
	"centsible/internal/logger"
	"centsible/internal/models"
	"centsible/internal/pagination"
)

const (
	maxRemindDays       = 14
	defaultUpcomingDays = 7
)

// billService handles bill reminder business logic.
type billService struct {
	db *gorm.DB
}

// NewBillService creates a new BillServicer.
func NewBillService(db *gorm.DB) BillServicer {
	return &billService{db: db}
}

func (in BillInput) validate() error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required")
	case in.Amount <= 0:
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	case in.DueDay < 1 || in.DueDay > 31:
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "due day must be between 1 and 31")
	case in.RemindDays < 0 || in.RemindDays > maxRemindDays:
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "remind days must be between 0 and 14")
	case in.Category.IsZero():
		return apperrors.ErrUnknownCategory
	}
	return nil
}

// CreateBill adds a monthly bill reminder.
func (s *billService) CreateBill(userID string, in BillInput) (*models.BillReminder, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	bill := &models.BillReminder{
		UserID:     userID,
		Name:       strings.TrimSpace(in.Name),
		Amount:     in.Amount,
		DueDay:     in.DueDay,
		Category:   in.Category,
		RemindDays: in.RemindDays,
		IsActive:   in.IsActive == nil || *in.IsActive,
	}
	if err := s.db.Create(bill).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return bill, nil
}

// GetUserBills lists a user's bills by due day.
func (s *billService) GetUserBills(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.BillReminder], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.BillReminder{}).Where("user_id = ?", userID)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var bills []models.BillReminder
	if err := base.Order("due_day, name").Scopes(pagination.Paginate(page)).Find(&bills).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(bills, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetBillByID retrieves a bill owned by the user.
func (s *billService) GetBillByID(userID, billID string) (*models.BillReminder, error) {
	var bill models.BillReminder
	if err := s.db.Where("id = ? AND user_id = ?", billID, userID).First(&bill).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBillNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &bill, nil
}

// UpdateBill replaces the editable fields of a bill.
func (s *billService) UpdateBill(userID, billID string, in BillInput) (*models.BillReminder, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	bill, err := s.GetBillByID(userID, billID)
	if err != nil {
		return nil, err
	}

	if bill.DueDay != in.DueDay {
		bill.LastRemindedAt = nil
	}
	bill.Name = strings.TrimSpace(in.Name)
	bill.Amount = in.Amount
	bill.DueDay = in.DueDay
	bill.Category = in.Category
	bill.RemindDays = in.RemindDays
	if in.IsActive != nil {
		bill.IsActive = *in.IsActive
	}

	if err := s.db.Save(bill).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return bill, nil
}

// DeleteBill soft-deletes a bill.
func (s *billService) DeleteBill(userID, billID string) error {
	bill, err := s.GetBillByID(userID, billID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(bill).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetUpcomingBills returns active bills falling due within days of now,
// soonest first.
func (s *billService) GetUpcomingBills(userID string, days int, now time.Time) ([]UpcomingBill, error) {
	if days <= 0 {
		days = defaultUpcomingDays
	}

	var bills []models.BillReminder
	if err := s.db.Where("user_id = ? AND is_active = ?", userID, true).Find(&bills).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	today := startOfDay(now)
	upcoming := make([]UpcomingBill, 0, len(bills))
	for _, b := range bills {
		due := b.NextDue(today)
		left := daysBetween(today, due)
		if left > days {
			continue
		}
		upcoming = append(upcoming, UpcomingBill{BillReminder: b, DueDate: due, DaysLeft: left})
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		if !upcoming[i].DueDate.Equal(upcoming[j].DueDate) {
			return upcoming[i].DueDate.Before(upcoming[j].DueDate)
		}
		return upcoming[i].Name < upcoming[j].Name
	})
	return upcoming, nil
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

// reminderService publishes reminders for bills entering their window.
type reminderService struct {
	db        *gorm.DB
	publisher events.Publisher
}

// NewReminderService creates a new ReminderServicer.
func NewReminderService(db *gorm.DB, publisher events.Publisher) ReminderServicer {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &reminderService{db: db, publisher: publisher}
}

// SendDueReminders publishes one reminder per bill whose next due date is
// within its reminder window as of asOf and that has not been reminded for
// that due date yet. Bills whose event cannot be published stay unmarked so
// the next run retries them.
func (s *reminderService) SendDueReminders(asOf time.Time) (int, error) {
	var bills []models.BillReminder
	if err := s.db.Where("is_active = ?", true).Find(&bills).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	today := startOfDay(asOf)
	users := map[string]*models.User{}
	log := logger.Named("reminders")
	sent := 0

	for i := range bills {
		b := &bills[i]
		due := b.NextDue(today)
		if daysBetween(today, due) > b.RemindDays {
			continue
		}
		windowStart := due.AddDate(0, 0, -b.RemindDays)
		if b.LastRemindedAt != nil && !b.LastRemindedAt.Before(windowStart) {
			continue
		}

		user, ok := users[b.UserID]
		if !ok {
			user = &models.User{}
			if err := s.db.Where("id = ?", b.UserID).First(user).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					users[b.UserID] = nil
					continue
				}
				return sent, apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			users[b.UserID] = user
		}
		if user == nil || !user.IsActive {
			continue
		}

		event := events.NewBillReminder(b.ID, user.ID, user.Email, b.Name, b.Amount, user.Currency, due)
		event.FirstName = user.FirstName
		if err := s.publisher.PublishBillReminder(context.Background(), event); err != nil {
			log.Errorw("failed to publish bill reminder", "error", err, "bill_id", b.ID)
			continue
		}
		if err := s.db.Model(b).Update("last_reminded_at", asOf).Error; err != nil {
			return sent, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		sent++
	}
	return sent, nil
}
