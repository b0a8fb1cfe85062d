package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "centsible/internal/errors"
	"centsible/internal/services"
)

// PipelineHandler exposes the scheduled jobs to the worker.
type PipelineHandler struct {
	snapshotService services.SnapshotServicer
	reminderService services.ReminderServicer
	now             func() time.Time
}

// NewPipelineHandler creates a new PipelineHandler.
func NewPipelineHandler(snapshotService services.SnapshotServicer, reminderService services.ReminderServicer) *PipelineHandler {
	return &PipelineHandler{snapshotService: snapshotService, reminderService: reminderService, now: time.Now}
}

// ComputeSnapshotsRequest is the optional body of the snapshot job.
type ComputeSnapshotsRequest struct {
	RecordedAt *string `json:"recorded_at"`
}

// SendRemindersRequest is the optional body of the reminder job.
type SendRemindersRequest struct {
	AsOf *string `json:"as_of"`
}

func (h *PipelineHandler) jobTime(c *gin.Context, raw *string) (time.Time, bool) {
	if raw == nil || *raw == "" {
		return h.now(), true
	}
	t, err := parseFlexibleTime(*raw)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return time.Time{}, false
	}
	return t, true
}

// ComputeSnapshots records a health snapshot for every user.
// @Summary     Record health snapshots
// @Tags        pipeline
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
// @Param       request body ComputeSnapshotsRequest false "Snapshot time (default now)"
// @Success     200 {object} map[string]int "snapshots_recorded"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Router      /pipeline/snapshots [post]
func (h *PipelineHandler) ComputeSnapshots(c *gin.Context) {
	var req ComputeSnapshotsRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
			return
		}
	}
	recordedAt, ok := h.jobTime(c, req.RecordedAt)
	if !ok {
		return
	}

	n, err := h.snapshotService.ComputeAndRecordSnapshots(recordedAt)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"snapshots_recorded": n})
}

// SendReminders publishes reminders for bills entering their window.
// @Summary     Send bill reminders
// @Tags        pipeline
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
// @Param       request body SendRemindersRequest false "Reference time (default now)"
// @Success     200 {object} map[string]int "reminders_sent"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Router      /pipeline/reminders [post]
func (h *PipelineHandler) SendReminders(c *gin.Context) {
	var req SendRemindersRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
			return
		}
	}
	asOf, ok := h.jobTime(c, req.AsOf)
	if !ok {
		return
	}

	n, err := h.reminderService.SendDueReminders(asOf)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reminders_sent": n})
}
