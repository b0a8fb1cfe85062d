package services

import (
	"time"

	"gorm.io/gorm"

	apperrors "centsible/internal/errors"
	"centsible/internal/ledger"
)

// summaryService computes financial summaries from stored records.
type summaryService struct {
	db         *gorm.DB
	households HouseholdServicer
	users      UserServicer
}

// NewSummaryService creates a new SummaryServicer.
func NewSummaryService(db *gorm.DB, households HouseholdServicer, users UserServicer) SummaryServicer {
	return &summaryService{db: db, households: households, users: users}
}

// LoadState reads the records of userIDs with transactions dated in [from, to).
func (s *summaryService) LoadState(userIDs []string, from, to time.Time) (ledger.State, error) {
	return loadState(s.db, userIDs, from, to)
}

// GetSummary returns the user's summary and health for the month containing now.
func (s *summaryService) GetSummary(userID string, now time.Time) (*Summary, error) {
	user, err := s.users.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	return s.summarize([]string{userID}, user.Currency, now)
}

// GetHouseholdSummary aggregates every member of a household. Categories
// with the same key are combined.
func (s *summaryService) GetHouseholdSummary(userID, householdID string, now time.Time) (*Summary, error) {
	household, err := s.households.GetHousehold(userID, householdID)
	if err != nil {
		return nil, err
	}
	owner, err := s.users.GetUserByID(household.OwnerID)
	if err != nil {
		return nil, err
	}
	memberIDs, err := s.households.MemberIDs(householdID)
	if err != nil {
		return nil, err
	}
	return s.summarize(memberIDs, owner.Currency, now)
}

func (s *summaryService) summarize(userIDs []string, currency string, now time.Time) (*Summary, error) {
	from, to := currentPeriod(now)

	states := make([]ledger.State, 0, len(userIDs))
	for _, id := range userIDs {
		st, err := s.LoadState([]string{id}, from, to)
		if err != nil {
			return nil, err
		}
		states = append(states, st)
	}

	summary, health, err := ledger.Merge(states...).Summary()
	if err != nil {
		return nil, apperrors.FromDomain(err)
	}
	return &Summary{
		PeriodStart: from,
		PeriodEnd:   to,
		Currency:    currency,
		Summary:     summary,
		Health:      health,
	}, nil
}
