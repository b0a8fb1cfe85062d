package services

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
	"gorm.io/gorm"

	apperrors "centsible/internal/errors"
	"centsible/internal/logger"
	"centsible/internal/models"
)

// BillingConfig holds the Stripe settings used by the billing service.
type BillingConfig struct {
	SecretKey     string
	WebhookSecret string
	PriceID       string
	FrontendURL   string
}

// checkoutCreator is the slice of the Stripe API used to open checkout sessions.
type checkoutCreator interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

type billingService struct {
	db       *gorm.DB
	cfg      BillingConfig
	checkout checkoutCreator
}

// NewBillingService creates a new BillingServicer. Without a secret key and
// price the service answers BILLING_NOT_CONFIGURED.
func NewBillingService(db *gorm.DB, cfg BillingConfig) BillingServicer {
	s := &billingService{db: db, cfg: cfg}
	if cfg.SecretKey != "" && cfg.PriceID != "" {
		s.checkout = client.New(cfg.SecretKey, nil).CheckoutSessions
	}
	return s
}

// CreateCheckout opens a subscription checkout session for the user.
func (s *billingService) CreateCheckout(userID string) (*CheckoutSession, error) {
	if s.checkout == nil {
		return nil, apperrors.ErrBillingNotConfigured
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		ClientReferenceID: stripe.String(userID),
		SuccessURL:        stripe.String(s.cfg.FrontendURL + "/billing?status=success"),
		CancelURL:         stripe.String(s.cfg.FrontendURL + "/billing?status=cancelled"),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(s.cfg.PriceID), Quantity: stripe.Int64(1)},
		},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{"user_id": userID},
		},
	}

	// Returning customers keep their Stripe customer record.
	var existing models.Subscription
	if err := s.db.Where("user_id = ?", userID).First(&existing).Error; err == nil && existing.CustomerID != "" {
		params.Customer = stripe.String(existing.CustomerID)
	} else {
		params.CustomerEmail = stripe.String(user.Email)
	}

	sess, err := s.checkout.New(params)
	if err != nil {
		logger.Get().Errorw("stripe checkout failed", "user_id", userID, "error", err)
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &CheckoutSession{URL: sess.URL, SessionID: sess.ID}, nil
}

// GetSubscription returns the user's subscription.
func (s *billingService) GetSubscription(userID string) (*models.Subscription, error) {
	var sub models.Subscription
	if err := s.db.Where("user_id = ?", userID).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSubscriptionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &sub, nil
}

// HandleWebhook verifies a Stripe event and applies it to the stored
// subscription. Unknown event types are acknowledged and ignored.
func (s *billingService) HandleWebhook(payload []byte, signature string) error {
	if s.cfg.WebhookSecret == "" {
		return apperrors.ErrBillingNotConfigured
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, s.cfg.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrWebhookSignatureInvalid, err)
	}

	log := logger.Get().With("event_id", event.ID, "event_type", event.Type)

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return apperrors.Wrap(apperrors.ErrInvalidInput, err)
		}
		return s.checkoutCompleted(&sess)

	case "customer.subscription.created", "customer.subscription.updated", "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return apperrors.Wrap(apperrors.ErrInvalidInput, err)
		}
		status := subscriptionStatus(sub.Status)
		if event.Type == "customer.subscription.deleted" {
			status = models.SubscriptionCanceled
		}
		return s.subscriptionChanged(&sub, status)

	case "invoice.payment_failed":
		var inv stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			return apperrors.Wrap(apperrors.ErrInvalidInput, err)
		}
		if inv.Customer == nil {
			return nil
		}
		res := s.db.Model(&models.Subscription{}).
			Where("customer_id = ?", inv.Customer.ID).
			Update("status", models.SubscriptionPastDue)
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		if res.RowsAffected == 0 {
			log.Warnw("payment failure for unknown customer", "customer_id", inv.Customer.ID)
		}
		return nil
	}

	log.Debugw("ignoring stripe event")
	return nil
}

func (s *billingService) checkoutCompleted(sess *stripe.CheckoutSession) error {
	if sess.ClientReferenceID == "" {
		logger.Get().Warnw("checkout session without client reference", "session_id", sess.ID)
		return nil
	}

	sub := models.Subscription{
		UserID: sess.ClientReferenceID,
		Status: models.SubscriptionActive,
		Plan:   s.cfg.PriceID,
	}
	if sess.Customer != nil {
		sub.CustomerID = sess.Customer.ID
	}
	if sess.Subscription != nil {
		sub.SubscriptionID = sess.Subscription.ID
		if sess.Subscription.Status != "" {
			sub.Status = subscriptionStatus(sess.Subscription.Status)
		}
	}
	return s.upsert(sub)
}

func (s *billingService) subscriptionChanged(in *stripe.Subscription, status models.SubscriptionStatus) error {
	var existing models.Subscription
	q := s.db.Where("subscription_id = ?", in.ID)
	if in.Customer != nil {
		q = q.Or("customer_id = ?", in.Customer.ID)
	}
	err := q.First(&existing).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	userID := existing.UserID
	if userID == "" {
		userID = in.Metadata["user_id"]
	}
	if userID == "" {
		logger.Get().Warnw("subscription event for unknown user", "subscription_id", in.ID)
		return nil
	}

	sub := models.Subscription{
		UserID:         userID,
		SubscriptionID: in.ID,
		Status:         status,
		Plan:           existing.Plan,
	}
	if in.Customer != nil {
		sub.CustomerID = in.Customer.ID
	}
	if in.Items != nil && len(in.Items.Data) > 0 && in.Items.Data[0].Price != nil {
		sub.Plan = in.Items.Data[0].Price.ID
	}
	if in.CurrentPeriodEnd > 0 {
		end := time.Unix(in.CurrentPeriodEnd, 0).UTC()
		sub.CurrentPeriodEnd = &end
	}
	return s.upsert(sub)
}

// upsert stores the subscription keyed by user, keeping known fields the
// incoming event leaves blank.
func (s *billingService) upsert(sub models.Subscription) error {
	var existing models.Subscription
	err := s.db.Where("user_id = ?", sub.UserID).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := s.db.Create(&sub).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	case err != nil:
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	updates := map[string]interface{}{"status": sub.Status}
	if sub.CustomerID != "" {
		updates["customer_id"] = sub.CustomerID
	}
	if sub.SubscriptionID != "" {
		updates["subscription_id"] = sub.SubscriptionID
	}
	if sub.Plan != "" {
		updates["plan"] = sub.Plan
	}
	if sub.CurrentPeriodEnd != nil {
		updates["current_period_end"] = sub.CurrentPeriodEnd
	}
	if err := s.db.Model(&existing).Updates(updates).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func subscriptionStatus(st stripe.SubscriptionStatus) models.SubscriptionStatus {
	switch st {
	case stripe.SubscriptionStatusActive:
		return models.SubscriptionActive
	case stripe.SubscriptionStatusTrialing:
		return models.SubscriptionTrialing
	case stripe.SubscriptionStatusPastDue, stripe.SubscriptionStatusUnpaid:
		return models.SubscriptionPastDue
	case stripe.SubscriptionStatusIncomplete:
		return models.SubscriptionIncomplete
	}
	return models.SubscriptionCanceled
}
