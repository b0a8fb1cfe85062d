package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "centsible/internal/errors"
	"centsible/internal/finance"
	"centsible/internal/services"
)

// IncomeHandler handles income source requests.
type IncomeHandler struct {
	incomeService services.IncomeServicer
	auditService  services.AuditServicer
}

// NewIncomeHandler creates a new IncomeHandler.
func NewIncomeHandler(incomeService services.IncomeServicer, auditService services.AuditServicer) *IncomeHandler {
	return &IncomeHandler{incomeService: incomeService, auditService: auditService}
}

// IncomeRequest represents the payload for creating or replacing an income source.
// Amount is in minor units per payment.
type IncomeRequest struct {
	Source      string            `json:"source" binding:"required,min=1,max=100"`
	Amount      int64             `json:"amount" binding:"required,gt=0"`
	Frequency   finance.Frequency `json:"frequency" binding:"required"`
	StartDate   *string           `json:"start_date"`
	Category    string            `json:"category" binding:"max=50"`
	Description string            `json:"description" binding:"max=500"`
	IsActive    *bool             `json:"is_active"`
}

func (r IncomeRequest) input() (services.IncomeInput, error) {
	in := services.IncomeInput{
		Source:      r.Source,
		Amount:      r.Amount,
		Frequency:   r.Frequency,
		Category:    r.Category,
		Description: r.Description,
		IsActive:    r.IsActive,
	}
	if r.StartDate != nil && *r.StartDate != "" {
		t, err := parseFlexibleTime(*r.StartDate)
		if err != nil {
			return in, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
		}
		in.StartDate = t
	}
	return in, nil
}

// CreateIncome handles creating an income source.
// @Summary     Create income source
// @Tags        income
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body IncomeRequest true "Income details"
// @Success     201 {object} models.IncomeSource "Income source created"
// @Failure     400 {object} ErrorResponse "Invalid input or frequency"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /income [post]
func (h *IncomeHandler) CreateIncome(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req IncomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	in, err := req.input()
	if err != nil {
		respondWithError(c, err)
		return
	}

	income, err := h.incomeService.CreateIncome(userID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_INCOME", "income_source", income.ID, c.ClientIP(),
		map[string]interface{}{"source": req.Source, "amount": req.Amount, "frequency": req.Frequency})

	c.JSON(http.StatusCreated, gin.H{"income": income})
}

// GetIncome lists income sources.
// @Summary     List income sources
// @Tags        income
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.IncomeSource] "Paginated income sources"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /income [get]
func (h *IncomeHandler) GetIncome(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	page, err := bindPage(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.incomeService.GetUserIncome(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetIncomeByID returns one income source.
// @Summary     Get income source
// @Tags        income
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Income source ID"
// @Success     200 {object} models.IncomeSource "Income source"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /income/{id} [get]
func (h *IncomeHandler) GetIncomeByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	incomeID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	income, err := h.incomeService.GetIncomeByID(userID, incomeID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"income": income})
}

// UpdateIncome replaces an income source.
// @Summary     Update income source
// @Tags        income
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string        true "Income source ID"
// @Param       request body IncomeRequest true "Income details"
// @Success     200 {object} models.IncomeSource "Updated income source"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /income/{id} [put]
func (h *IncomeHandler) UpdateIncome(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	incomeID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req IncomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	in, err := req.input()
	if err != nil {
		respondWithError(c, err)
		return
	}

	income, err := h.incomeService.UpdateIncome(userID, incomeID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_INCOME", "income_source", incomeID, c.ClientIP(),
		map[string]interface{}{"amount": req.Amount, "frequency": req.Frequency})

	c.JSON(http.StatusOK, gin.H{"income": income})
}

// ToggleIncome flips the active flag of an income source.
// @Summary     Toggle income source
// @Tags        income
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Income source ID"
// @Success     200 {object} models.IncomeSource "Updated income source"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /income/{id}/toggle [patch]
func (h *IncomeHandler) ToggleIncome(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	incomeID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	income, err := h.incomeService.ToggleIncome(userID, incomeID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"income": income})
}

// DeleteIncome removes an income source.
// @Summary     Delete income source
// @Tags        income
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Income source ID"
// @Success     200 {object} MessageResponse "Income source deleted"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /income/{id} [delete]
func (h *IncomeHandler) DeleteIncome(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	incomeID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.incomeService.DeleteIncome(userID, incomeID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_INCOME", "income_source", incomeID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Income source deleted successfully"})
}
