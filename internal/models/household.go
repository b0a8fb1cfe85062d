package models

import "time"

// HouseholdRole is a member's role within a household.
type HouseholdRole string

const (
	HouseholdRoleOwner  HouseholdRole = "owner"
	HouseholdRoleMember HouseholdRole = "member"
)

// Household groups users who share a budget view.
type Household struct {
	Base
	Name    string            `gorm:"not null" json:"name"`
	OwnerID string            `gorm:"type:uuid;not null;index" json:"owner_id"`
	Members []HouseholdMember `gorm:"foreignKey:HouseholdID" json:"members,omitempty"`
}

// HouseholdMember links a user to a household.
type HouseholdMember struct {
	Base
	HouseholdID string        `gorm:"type:uuid;not null;uniqueIndex:idx_household_member" json:"household_id"`
	UserID      string        `gorm:"type:uuid;not null;uniqueIndex:idx_household_member;index" json:"user_id"`
	Role        HouseholdRole `gorm:"not null" json:"role"`
	JoinedAt    time.Time     `gorm:"not null" json:"joined_at"`
	User        *User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// InvitationStatus tracks the lifecycle of an invitation.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationRevoked  InvitationStatus = "revoked"
)

// Invitation asks someone to join a household.
type Invitation struct {
	Base
	HouseholdID string           `gorm:"type:uuid;not null;index" json:"household_id"`
	InvitedByID string           `gorm:"type:uuid;not null" json:"invited_by_id"`
	Email       string           `gorm:"not null" json:"email"`
	Token       string           `gorm:"uniqueIndex;not null" json:"-"`
	Status      InvitationStatus `gorm:"not null;default:'pending'" json:"status"`
	ExpiresAt   time.Time        `gorm:"not null" json:"expires_at"`
}
