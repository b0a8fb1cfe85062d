package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "centsible/internal/errors"
	"centsible/internal/services"
)

const maxWebhookBytes = 64 << 10

// BillingHandler handles premium subscription requests and Stripe webhooks.
type BillingHandler struct {
	billingService services.BillingServicer
	auditService   services.AuditServicer
}

// NewBillingHandler creates a new BillingHandler.
func NewBillingHandler(billingService services.BillingServicer, auditService services.AuditServicer) *BillingHandler {
	return &BillingHandler{billingService: billingService, auditService: auditService}
}

// CreateCheckout opens a hosted checkout page for the premium plan.
// @Summary     Start premium checkout
// @Tags        billing
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.CheckoutSession "Checkout session"
// @Failure     503 {object} ErrorResponse "Billing not configured"
// @Router      /billing/checkout [post]
func (h *BillingHandler) CreateCheckout(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	sess, err := h.billingService.CreateCheckout(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "START_CHECKOUT", "subscription", sess.SessionID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, sess)
}

// GetSubscription returns the caller's subscription.
// @Summary     Get subscription
// @Tags        billing
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} models.Subscription "Subscription"
// @Failure     404 {object} ErrorResponse "No subscription"
// @Router      /billing/subscription [get]
func (h *BillingHandler) GetSubscription(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	sub, err := h.billingService.GetSubscription(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"subscription": sub, "premium": sub.IsPremium()})
}

// Webhook receives Stripe events. The body must reach the service unmodified
// for signature verification.
// @Summary     Stripe webhook
// @Tags        billing
// @Accept      json
// @Produce     json
// @Param       Stripe-Signature header string true "Stripe signature"
// @Success     200 {object} MessageResponse "Event accepted"
// @Failure     400 {object} ErrorResponse "Invalid signature"
// @Router      /webhooks/stripe [post]
func (h *BillingHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBytes))
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Unreadable webhook body"))
		return
	}

	if err := h.billingService.HandleWebhook(payload, c.GetHeader("Stripe-Signature")); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "received"})
}
