package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "centsible/internal/errors"
	"centsible/internal/format"
	"centsible/internal/services"
)

// SummaryHandler serves the financial summary, health score and the
// recorded health history.
type SummaryHandler struct {
	summaryService  services.SummaryServicer
	snapshotService services.SnapshotServicer
	now             func() time.Time
}

// NewSummaryHandler creates a new SummaryHandler.
func NewSummaryHandler(summaryService services.SummaryServicer, snapshotService services.SnapshotServicer) *SummaryHandler {
	return &SummaryHandler{summaryService: summaryService, snapshotService: snapshotService, now: time.Now}
}

// DisplaySummary is the pre-formatted summary returned for view=display.
type DisplaySummary struct {
	PeriodStart time.Time      `json:"period_start"`
	PeriodEnd   time.Time      `json:"period_end"`
	Currency    string         `json:"currency"`
	Display     format.Summary `json:"display"`
}

func (h *SummaryHandler) respond(c *gin.Context, s *services.Summary) {
	if c.Query("view") == "display" {
		c.JSON(http.StatusOK, DisplaySummary{
			PeriodStart: s.PeriodStart,
			PeriodEnd:   s.PeriodEnd,
			Currency:    s.Currency,
			Display:     format.Display(s.Summary, s.Health, s.Currency),
		})
		return
	}
	c.JSON(http.StatusOK, s)
}

// GetSummary returns the current month's summary and health score.
// @Summary     Financial summary
// @Description Monthly income, spending, allocations, per-category variance, cash flow and health score for the current calendar month (UTC). Pass view=display for formatted strings.
// @Tags        summary
// @Produce     json
// @Security    BearerAuth
// @Param       view query string false "Set to 'display' for formatted values"
// @Success     200 {object} services.Summary "Summary"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /summary [get]
func (h *SummaryHandler) GetSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	s, err := h.summaryService.GetSummary(userID, h.now())
	if err != nil {
		respondWithError(c, err)
		return
	}
	h.respond(c, s)
}

// GetHouseholdSummary returns the combined summary of every household member.
// @Summary     Household summary
// @Tags        households
// @Produce     json
// @Security    BearerAuth
// @Param       id   path  string true  "Household ID"
// @Param       view query string false "Set to 'display' for formatted values"
// @Success     200 {object} services.Summary "Summary"
// @Failure     403 {object} ErrorResponse "Not a member"
// @Failure     404 {object} ErrorResponse "Household not found"
// @Router      /households/{id}/summary [get]
func (h *SummaryHandler) GetHouseholdSummary(c *gin.Context) {
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

	s, err := h.summaryService.GetHouseholdSummary(userID, householdID, h.now())
	if err != nil {
		respondWithError(c, err)
		return
	}
	h.respond(c, s)
}

// GetSnapshots lists recorded health snapshots, newest first.
// @Summary     Health history
// @Tags        summary
// @Produce     json
// @Security    BearerAuth
// @Param       from_date query string false "Start date (RFC3339 or YYYY-MM-DD)"
// @Param       to_date   query string false "End date (RFC3339 or YYYY-MM-DD)"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.HealthSnapshot] "Paginated snapshots"
// @Failure     400 {object} ErrorResponse "Invalid date"
// @Router      /health/snapshots [get]
func (h *SummaryHandler) GetSnapshots(c *gin.Context) {
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

	to := h.now()
	from := to.AddDate(-1, 0, 0)
	if v := c.Query("from_date"); v != "" {
		if from, err = parseFlexibleTime(v); err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
			return
		}
	}
	if v := c.Query("to_date"); v != "" {
		if to, err = parseFlexibleTime(v); err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
			return
		}
	}
	if from.After(to) {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "from_date must be before to_date"))
		return
	}

	result, err := h.snapshotService.GetSnapshots(userID, from, to, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
