package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "centsible/internal/errors"
	"centsible/internal/models"
	"centsible/internal/uuid"
)

const invitationTTL = 7 * 24 * time.Hour

// householdService handles household collaboration.
type householdService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewHouseholdService creates a new HouseholdServicer.
func NewHouseholdService(db *gorm.DB) HouseholdServicer {
	return &householdService{db: db, now: time.Now}
}

// CreateHousehold creates a household with userID as its owner and first member.
func (s *householdService) CreateHousehold(userID, name string) (*models.Household, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required")
	}

	household := &models.Household{Name: name, OwnerID: userID}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(household).Error; err != nil {
			return err
		}
		return tx.Create(&models.HouseholdMember{
			HouseholdID: household.ID,
			UserID:      userID,
			Role:        models.HouseholdRoleOwner,
			JoinedAt:    s.now().UTC(),
		}).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetHousehold(userID, household.ID)
}

// GetUserHouseholds lists the households userID belongs to.
func (s *householdService) GetUserHouseholds(userID string) ([]models.Household, error) {
	var households []models.Household
	if err := s.db.
		Joins("JOIN household_members ON household_members.household_id = households.id AND household_members.deleted_at IS NULL").
		Where("household_members.user_id = ?", userID).
		Order("households.created_at").
		Find(&households).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return households, nil
}

// GetHousehold returns a household with its members. Only members may read it.
func (s *householdService) GetHousehold(userID, householdID string) (*models.Household, error) {
	var household models.Household
	if err := s.db.Preload("Members", func(db *gorm.DB) *gorm.DB {
		return db.Order("joined_at")
	}).Preload("Members.User").Where("id = ?", householdID).First(&household).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrHouseholdNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for _, m := range household.Members {
		if m.UserID == userID {
			return &household, nil
		}
	}
	return nil, apperrors.ErrNotHouseholdMember
}

// CreateInvitation invites email to join a household. Any member may invite.
func (s *householdService) CreateInvitation(userID, householdID, email string) (*models.Invitation, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "email is required")
	}
	household, err := s.GetHousehold(userID, householdID)
	if err != nil {
		return nil, err
	}
	for _, m := range household.Members {
		if m.User != nil && m.User.Email == email {
			return nil, apperrors.ErrAlreadyMember
		}
	}

	invitation := &models.Invitation{
		HouseholdID: householdID,
		InvitedByID: userID,
		Email:       email,
		Token:       uuid.Token(),
		Status:      models.InvitationPending,
		ExpiresAt:   s.now().UTC().Add(invitationTTL),
	}
	if err := s.db.Create(invitation).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return invitation, nil
}

// AcceptInvitation adds userID to the invitation's household. The invitation
// must be pending, unexpired and addressed to the user's email.
func (s *householdService) AcceptInvitation(userID, token string) (*models.Household, error) {
	var user models.User
	if err := s.db.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var invitation models.Invitation
	if err := s.db.Where("token = ?", token).First(&invitation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvitationInvalid
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if invitation.Status != models.InvitationPending ||
		!s.now().Before(invitation.ExpiresAt) ||
		invitation.Email != user.Email {
		return nil, apperrors.ErrInvitationInvalid
	}

	if ok, err := s.IsMember(userID, invitation.HouseholdID); err != nil {
		return nil, err
	} else if ok {
		return nil, apperrors.ErrAlreadyMember
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// A member removed earlier left a soft-deleted row behind.
		if err := tx.Unscoped().
			Where("household_id = ? AND user_id = ?", invitation.HouseholdID, userID).
			Delete(&models.HouseholdMember{}).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.HouseholdMember{
			HouseholdID: invitation.HouseholdID,
			UserID:      userID,
			Role:        models.HouseholdRoleMember,
			JoinedAt:    s.now().UTC(),
		}).Error; err != nil {
			return err
		}
		return tx.Model(&invitation).Update("status", models.InvitationAccepted).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetHousehold(userID, invitation.HouseholdID)
}

// RemoveMember removes memberID from a household. Only the owner may remove
// others; any member may remove themselves. The owner cannot be removed.
func (s *householdService) RemoveMember(userID, householdID, memberID string) error {
	household, err := s.GetHousehold(userID, householdID)
	if err != nil {
		return err
	}
	if memberID == household.OwnerID {
		return apperrors.ErrCannotRemoveOwner
	}
	if userID != household.OwnerID && userID != memberID {
		return apperrors.ErrForbidden
	}

	result := s.db.Where("household_id = ? AND user_id = ?", householdID, memberID).Delete(&models.HouseholdMember{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotHouseholdMember
	}
	return nil
}

// IsMember reports whether userID belongs to householdID.
func (s *householdService) IsMember(userID, householdID string) (bool, error) {
	var count int64
	if err := s.db.Model(&models.HouseholdMember{}).
		Where("household_id = ? AND user_id = ?", householdID, userID).
		Count(&count).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, nil
}

// MemberIDs returns the user ids of a household's members.
func (s *householdService) MemberIDs(householdID string) ([]string, error) {
	var ids []string
	if err := s.db.Model(&models.HouseholdMember{}).
		Where("household_id = ?", householdID).
		Order("joined_at").
		Pluck("user_id", &ids).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return ids, nil
}

// HouseholdIDsForUser returns the ids of the households userID belongs to.
func (s *householdService) HouseholdIDsForUser(userID string) ([]string, error) {
	var ids []string
	if err := s.db.Model(&models.HouseholdMember{}).
		Where("user_id = ?", userID).
		Pluck("household_id", &ids).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return ids, nil
}
