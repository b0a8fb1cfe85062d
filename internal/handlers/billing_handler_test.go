package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "centsible/internal/errors"
	"centsible/internal/models"
	"centsible/internal/services"
)

type mockBillingService struct {
	createCheckoutFn  func(userID string) (*services.CheckoutSession, error)
	getSubscriptionFn func(userID string) (*models.Subscription, error)
	handleWebhookFn   func(payload []byte, signature string) error
}

func (m *mockBillingService) CreateCheckout(userID string) (*services.CheckoutSession, error) {
	if m.createCheckoutFn != nil {
		return m.createCheckoutFn(userID)
	}
	return &services.CheckoutSession{URL: "https://checkout.stripe.test/cs_1", SessionID: "cs_1"}, nil
}

func (m *mockBillingService) GetSubscription(userID string) (*models.Subscription, error) {
	if m.getSubscriptionFn != nil {
		return m.getSubscriptionFn(userID)
	}
	return &models.Subscription{UserID: userID, Status: models.SubscriptionActive}, nil
}

func (m *mockBillingService) HandleWebhook(payload []byte, signature string) error {
	if m.handleWebhookFn != nil {
		return m.handleWebhookFn(payload, signature)
	}
	return nil
}

func setupBillingRouter(h *BillingHandler) *gin.Engine {
	r := gin.New()
	g := r.Group("/billing", injectUserID(testUserID))
	g.POST("/checkout", h.CreateCheckout)
	g.GET("/subscription", h.GetSubscription)
	r.POST("/webhooks/stripe", h.Webhook)
	return r
}

func TestBillingHandler_CreateCheckout(t *testing.T) {
	t.Run("returns session url", func(t *testing.T) {
		audit := &mockAuditService{}
		r := setupBillingRouter(NewBillingHandler(&mockBillingService{}, audit))

		rec := doRequest(r, "POST", "/billing/checkout", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if parseJSON(t, rec)["url"] != "https://checkout.stripe.test/cs_1" {
			t.Error("expected checkout url")
		}
		if !audit.logged("START_CHECKOUT") {
			t.Error("expected START_CHECKOUT audit entry")
		}
	})

	t.Run("not configured", func(t *testing.T) {
		svc := &mockBillingService{
			createCheckoutFn: func(string) (*services.CheckoutSession, error) {
				return nil, apperrors.ErrBillingNotConfigured
			},
		}
		r := setupBillingRouter(NewBillingHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/billing/checkout", "")

		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "BILLING_NOT_CONFIGURED")
	})
}

func TestBillingHandler_GetSubscription(t *testing.T) {
	tests := []struct {
		status  models.SubscriptionStatus
		premium bool
	}{
		{models.SubscriptionActive, true},
		{models.SubscriptionTrialing, true},
		{models.SubscriptionPastDue, false},
		{models.SubscriptionCanceled, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			svc := &mockBillingService{
				getSubscriptionFn: func(uid string) (*models.Subscription, error) {
					return &models.Subscription{UserID: uid, Status: tt.status}, nil
				},
			}
			r := setupBillingRouter(NewBillingHandler(svc, &mockAuditService{}))

			rec := doRequest(r, "GET", "/billing/subscription", "")

			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			if parseJSON(t, rec)["premium"] != tt.premium {
				t.Errorf("expected premium=%v", tt.premium)
			}
		})
	}
}

func TestBillingHandler_Webhook(t *testing.T) {
	t.Run("forwards raw body and signature", func(t *testing.T) {
		var gotPayload, gotSig string
		svc := &mockBillingService{
			handleWebhookFn: func(payload []byte, sig string) error {
				gotPayload, gotSig = string(payload), sig
				return nil
			},
		}
		r := setupBillingRouter(NewBillingHandler(svc, &mockAuditService{}))

		body := `{"id":"evt_1","type":"checkout.session.completed"}`
		req := httptest.NewRequest("POST", "/webhooks/stripe", strings.NewReader(body))
		req.Header.Set("Stripe-Signature", "t=1,v1=abc")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotPayload != body || gotSig != "t=1,v1=abc" {
			t.Errorf("unexpected forward payload=%q sig=%q", gotPayload, gotSig)
		}
	})

	t.Run("bad signature", func(t *testing.T) {
		svc := &mockBillingService{
			handleWebhookFn: func([]byte, string) error { return apperrors.ErrWebhookSignatureInvalid },
		}
		r := setupBillingRouter(NewBillingHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/webhooks/stripe", `{}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "WEBHOOK_SIGNATURE_INVALID")
	})
}
