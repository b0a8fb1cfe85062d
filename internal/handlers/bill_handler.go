package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "centsible/internal/errors"
	"centsible/internal/finance"
	"centsible/internal/services"
)

// BillHandler handles bill reminder requests.
type BillHandler struct {
	billService  services.BillServicer
	auditService services.AuditServicer
	now          func() time.Time
}

// NewBillHandler creates a new BillHandler.
func NewBillHandler(billService services.BillServicer, auditService services.AuditServicer) *BillHandler {
	return &BillHandler{billService: billService, auditService: auditService, now: time.Now}
}

// BillRequest represents the payload for creating or replacing a bill.
type BillRequest struct {
	Name       string `json:"name" binding:"required,min=1,max=100"`
	Amount     int64  `json:"amount" binding:"required,gt=0"`
	DueDay     int    `json:"due_day" binding:"required,min=1,max=31"`
	Category   string `json:"category" binding:"required"`
	RemindDays *int   `json:"remind_days" binding:"omitempty,min=0,max=14"`
	IsActive   *bool  `json:"is_active"`
}

func (r BillRequest) input() (services.BillInput, error) {
	key, err := finance.ParseCategoryKey(r.Category)
	if err != nil {
		return services.BillInput{}, apperrors.FromDomain(err)
	}
	in := services.BillInput{
		Name:       r.Name,
		Amount:     r.Amount,
		DueDay:     r.DueDay,
		Category:   key,
		RemindDays: 3,
		IsActive:   r.IsActive,
	}
	if r.RemindDays != nil {
		in.RemindDays = *r.RemindDays
	}
	return in, nil
}

// CreateBill handles the creation of a bill reminder.
// @Summary     Create bill reminder
// @Tags        bills
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body BillRequest true "Bill details"
// @Success     201 {object} models.BillReminder "Bill created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /bills [post]
func (h *BillHandler) CreateBill(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req BillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	in, err := req.input()
	if err != nil {
		respondWithError(c, err)
		return
	}

	bill, err := h.billService.CreateBill(userID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_BILL", "bill_reminder", bill.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name, "amount": req.Amount, "due_day": req.DueDay})

	c.JSON(http.StatusCreated, gin.H{"bill": bill})
}

// GetBills lists bill reminders.
// @Summary     List bill reminders
// @Tags        bills
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.BillReminder] "Paginated bills"
// @Router      /bills [get]
func (h *BillHandler) GetBills(c *gin.Context) {
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

	result, err := h.billService.GetUserBills(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetUpcomingBills lists bills due within the next days (default 7).
// @Summary     Upcoming bills
// @Tags        bills
// @Produce     json
// @Security    BearerAuth
// @Param       days query int false "Look-ahead window in days (default 7, max 62)"
// @Success     200 {array}  services.UpcomingBill "Upcoming bills"
// @Failure     400 {object} ErrorResponse "Invalid days"
// @Router      /bills/upcoming [get]
func (h *BillHandler) GetUpcomingBills(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	days := 7
	if v := c.Query("days"); v != "" {
		days, err = strconv.Atoi(v)
		if err != nil || days < 1 || days > 62 {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "days must be between 1 and 62"))
			return
		}
	}

	bills, err := h.billService.GetUpcomingBills(userID, days, h.now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bills": bills})
}

// GetBill returns a single bill reminder.
// @Summary     Get bill reminder
// @Tags        bills
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Bill ID"
// @Success     200 {object} models.BillReminder "Bill"
// @Failure     404 {object} ErrorResponse "Bill not found"
// @Router      /bills/{id} [get]
func (h *BillHandler) GetBill(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	billID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	bill, err := h.billService.GetBillByID(userID, billID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bill": bill})
}

// UpdateBill replaces a bill reminder.
// @Summary     Update bill reminder
// @Tags        bills
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string      true "Bill ID"
// @Param       request body BillRequest true "Bill details"
// @Success     200 {object} models.BillReminder "Updated bill"
// @Failure     404 {object} ErrorResponse "Bill not found"
// @Router      /bills/{id} [put]
func (h *BillHandler) UpdateBill(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	billID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req BillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	in, err := req.input()
	if err != nil {
		respondWithError(c, err)
		return
	}

	bill, err := h.billService.UpdateBill(userID, billID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bill": bill})
}

// DeleteBill removes a bill reminder.
// @Summary     Delete bill reminder
// @Tags        bills
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Bill ID"
// @Success     200 {object} MessageResponse "Bill deleted"
// @Failure     404 {object} ErrorResponse "Bill not found"
// @Router      /bills/{id} [delete]
func (h *BillHandler) DeleteBill(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	billID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.billService.DeleteBill(userID, billID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_BILL", "bill_reminder", billID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Bill deleted successfully"})
}
