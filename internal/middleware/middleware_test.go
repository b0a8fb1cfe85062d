package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"

	"centsible/internal/config"
	apperrors "centsible/internal/errors"
	"centsible/internal/models"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "test-secret")
	if _, err := config.Load(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func testUser() *models.User {
	u := &models.User{Email: "ana@example.com"}
	u.ID = "0190a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5b"
	return u
}

func setupAuthRouter() *gin.Engine {
	r := gin.New()
	r.Use(AuthMiddleware())
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("userID")})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	access, err := GenerateAccessToken(testUser())
	if err != nil {
		t.Fatalf("generate access: %v", err)
	}
	refresh, err := GenerateRefreshToken(testUser())
	if err != nil {
		t.Fatalf("generate refresh: %v", err)
	}

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid_access_token", "Bearer " + access, http.StatusOK},
		{"missing_header", "", http.StatusUnauthorized},
		{"wrong_scheme", "Token " + access, http.StatusUnauthorized},
		{"garbage_token", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"refresh_token_rejected", "Bearer " + refresh, http.StatusUnauthorized},
	}

	router := setupAuthRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", http.NoBody)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK {
				body := parseBody(t, rec)
				if body["user_id"] != testUser().ID {
					t.Errorf("user_id = %v", body["user_id"])
				}
			}
		})
	}
}

func TestAuthMiddleware_WebsocketQueryToken(t *testing.T) {
	access, _ := GenerateAccessToken(testUser())
	router := setupAuthRouter()

	req := httptest.NewRequest(http.MethodGet, "/me?access_token="+access, http.NoBody)
	req.Header.Set("Connection", "upgrade")
	req.Header.Set("Upgrade", "websocket")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("websocket query token: status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/me?access_token="+access, http.NoBody)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("plain request with query token: status = %d", rec.Code)
	}
}

func TestValidateRefreshToken(t *testing.T) {
	refresh, _ := GenerateRefreshToken(testUser())
	claims, err := ValidateRefreshToken(refresh)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.UserID != testUser().ID || claims.Issuer != "centsible-api" {
		t.Errorf("unexpected claims %+v", claims)
	}

	access, _ := GenerateAccessToken(testUser())
	if _, err := ValidateRefreshToken(access); err == nil {
		t.Error("access token must not validate as refresh token")
	}
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"app_error", apperrors.ErrGoalNotFound, http.StatusNotFound, "GOAL_NOT_FOUND"},
		{"wrapped_app_error", apperrors.Wrap(apperrors.ErrInternalServer, errors.New("db")), http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"plain_error", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(RequestLogging(), ErrorHandler())
			r.GET("/fail", func(c *gin.Context) { _ = c.Error(tt.err) })

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fail", http.NoBody))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			errObj, _ := parseBody(t, rec)["error"].(map[string]interface{})
			if errObj["code"] != tt.wantCode {
				t.Errorf("code = %v, want %s", errObj["code"], tt.wantCode)
			}
			if rec.Header().Get("X-Request-ID") == "" {
				t.Error("expected X-Request-ID header")
			}
		})
	}
}

func TestRequestLogging_ReusesRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogging())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("X-Request-ID = %q", got)
	}
}

type mockAnnouncer struct {
	events []string
}

func (m *mockAnnouncer) Announce(userID, eventType string) {
	m.events = append(m.events, userID+":"+eventType)
}

func TestChangeFeed(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		status int
		want   string
	}{
		{"create", http.MethodPost, "/goals", http.StatusCreated, "u1:goal.created"},
		{"nested_post_is_update", http.MethodPost, "/goals/g1/funds", http.StatusOK, "u1:goal.updated"},
		{"update", http.MethodPut, "/goals/g1", http.StatusOK, "u1:goal.updated"},
		{"delete", http.MethodDelete, "/goals/g1", http.StatusOK, "u1:goal.deleted"},
		{"read_ignored", http.MethodGet, "/goals", http.StatusOK, ""},
		{"failure_ignored", http.MethodPost, "/goals", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &mockAnnouncer{}
			r := gin.New()
			g := r.Group("/goals")
			g.Use(func(c *gin.Context) { c.Set("userID", "u1") }, ChangeFeed(a, "goal"))
			h := func(c *gin.Context) { c.Status(tt.status) }
			g.POST("", h)
			g.GET("", h)
			g.POST("/:id/funds", h)
			g.PUT("/:id", h)
			g.DELETE("/:id", h)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, http.NoBody))

			switch {
			case tt.want == "" && len(a.events) != 0:
				t.Errorf("expected no events, got %v", a.events)
			case tt.want != "" && (len(a.events) != 1 || a.events[0] != tt.want):
				t.Errorf("events = %v, want [%s]", a.events, tt.want)
			}
		})
	}
}
