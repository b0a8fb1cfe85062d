package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "centsible/internal/errors"
	"centsible/internal/logger"
	"centsible/internal/services"
)

// LiveServer upgrades a request into a household live-update stream.
type LiveServer interface {
	Serve(w http.ResponseWriter, r *http.Request, householdID, userID string) error
}

// HouseholdHandler handles household collaboration requests.
type HouseholdHandler struct {
	householdService services.HouseholdServicer
	auditService     services.AuditServicer
	live             LiveServer
}

// NewHouseholdHandler creates a new HouseholdHandler. live may be nil when
// websockets are disabled.
func NewHouseholdHandler(householdService services.HouseholdServicer, auditService services.AuditServicer, live LiveServer) *HouseholdHandler {
	return &HouseholdHandler{householdService: householdService, auditService: auditService, live: live}
}

// CreateHouseholdRequest represents the payload for a new household.
type CreateHouseholdRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// InvitationRequest invites someone by email.
type InvitationRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// CreateHousehold creates a household owned by the caller.
// @Summary     Create household
// @Tags        households
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateHouseholdRequest true "Household name"
// @Success     201 {object} models.Household "Household created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /households [post]
func (h *HouseholdHandler) CreateHousehold(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateHouseholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	household, err := h.householdService.CreateHousehold(userID, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_HOUSEHOLD", "household", household.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name})

	c.JSON(http.StatusCreated, gin.H{"household": household})
}

// GetHouseholds lists the caller's households.
// @Summary     List households
// @Tags        households
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.Household "Households"
// @Router      /households [get]
func (h *HouseholdHandler) GetHouseholds(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	households, err := h.householdService.GetUserHouseholds(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"households": households})
}

// GetHousehold returns a household with its members.
// @Summary     Get household
// @Tags        households
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Household ID"
// @Success     200 {object} models.Household "Household"
// @Failure     403 {object} ErrorResponse "Not a member"
// @Failure     404 {object} ErrorResponse "Household not found"
// @Router      /households/{id} [get]
func (h *HouseholdHandler) GetHousehold(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	householdID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	household, err := h.householdService.GetHousehold(userID, householdID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"household": household})
}

// CreateInvitation invites an email address to the household.
// @Summary     Invite member
// @Tags        households
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string            true "Household ID"
// @Param       request body InvitationRequest true "Invitee"
// @Success     201 {object} models.Invitation "Invitation created"
// @Failure     403 {object} ErrorResponse "Not a member"
// @Failure     409 {object} ErrorResponse "Already a member"
// @Router      /households/{id}/invitations [post]
func (h *HouseholdHandler) CreateInvitation(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	householdID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req InvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	inv, err := h.householdService.CreateInvitation(userID, householdID, req.Email)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "INVITE_MEMBER", "household", householdID, c.ClientIP(),
		map[string]interface{}{"email": req.Email})

	c.JSON(http.StatusCreated, gin.H{"invitation": inv})
}

// AcceptInvitation joins the household behind an invitation token.
// @Summary     Accept invitation
// @Tags        households
// @Produce     json
// @Security    BearerAuth
// @Param       token path string true "Invitation token"
// @Success     200 {object} models.Household "Joined household"
// @Failure     400 {object} ErrorResponse "Invalid or expired invitation"
// @Router      /invitations/{token}/accept [post]
func (h *HouseholdHandler) AcceptInvitation(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	token := c.Param("token")
	if token == "" {
		respondWithError(c, apperrors.ErrInvitationInvalid)
		return
	}

	household, err := h.householdService.AcceptInvitation(userID, token)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "JOIN_HOUSEHOLD", "household", household.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"household": household})
}

// RemoveMember removes a member, or lets a member leave.
// @Summary     Remove member
// @Tags        households
// @Produce     json
// @Security    BearerAuth
// @Param       id     path string true "Household ID"
// @Param       userId path string true "Member user ID"
// @Success     200 {object} MessageResponse "Member removed"
// @Failure     400 {object} ErrorResponse "Cannot remove the owner"
// @Failure     403 {object} ErrorResponse "Not allowed"
// @Router      /households/{id}/members/{userId} [delete]
func (h *HouseholdHandler) RemoveMember(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	householdID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	memberID, err := parsePathID(c, "userId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.householdService.RemoveMember(userID, householdID, memberID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "REMOVE_MEMBER", "household", householdID, c.ClientIP(),
		map[string]interface{}{"member_id": memberID})

	c.JSON(http.StatusOK, gin.H{"message": "Member removed successfully"})
}

// Live upgrades to a websocket that receives change events for the household.
// @Summary     Household live updates
// @Description Websocket stream of {"type","user"} events. Browsers pass the token as ?access_token=.
// @Tags        households
// @Security    BearerAuth
// @Param       id path string true "Household ID"
// @Success     101 "Switching protocols"
// @Failure     403 {object} ErrorResponse "Not a member"
// @Router      /households/{id}/ws [get]
func (h *HouseholdHandler) Live(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	householdID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if h.live == nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrNotFound, "Live updates are disabled"))
		return
	}

	ok, err := h.householdService.IsMember(userID, householdID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if !ok {
		respondWithError(c, apperrors.ErrNotHouseholdMember)
		return
	}

	if err := h.live.Serve(c.Writer, c.Request, householdID, userID); err != nil {
		logger.Get().Warnw("websocket upgrade failed", "household_id", householdID, "error", err)
	}
}
