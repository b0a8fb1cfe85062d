package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "centsible/internal/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// pipelineRouter mounts both pipeline jobs behind the key check and records
// which job ran.
func pipelineRouter(apiKey string, ran *[]string) *gin.Engine {
	r := gin.New()
	pipeline := r.Group("/api/v1/pipeline", PipelineAuthMiddleware(apiKey))
	for _, job := range []string{"snapshots", "reminders"} {
		job := job
		pipeline.POST("/"+job, func(c *gin.Context) {
			*ran = append(*ran, job)
			c.JSON(http.StatusOK, gin.H{job: 0})
		})
	}
	return r
}

func parseBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse response body: %v", err)
	}
	return result
}

func TestPipelineAuthMiddleware(t *testing.T) {
	const key = "worker-key"

	tests := []struct {
		name       string
		configured string
		header     string
		path       string
		wantErr    *apperrors.AppError
	}{
		{"snapshots_with_key", key, key, "/api/v1/pipeline/snapshots", nil},
		{"reminders_with_key", key, key, "/api/v1/pipeline/reminders", nil},
		{"wrong_key", key, "other-key", "/api/v1/pipeline/snapshots", apperrors.ErrInvalidAPIKey},
		{"missing_key", key, "", "/api/v1/pipeline/reminders", apperrors.ErrInvalidAPIKey},
		{"key_prefix", key, "worker", "/api/v1/pipeline/reminders", apperrors.ErrInvalidAPIKey},
		{"key_with_suffix", key, key + "x", "/api/v1/pipeline/snapshots", apperrors.ErrInvalidAPIKey},
		{"not_configured", "", key, "/api/v1/pipeline/snapshots", apperrors.ErrPipelineDisabled},
		{"not_configured_no_header", "", "", "/api/v1/pipeline/reminders", apperrors.ErrPipelineDisabled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ran []string
			r := pipelineRouter(tt.configured, &ran)

			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(`{}`))
			if tt.header != "" {
				req.Header.Set("X-API-Key", tt.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if tt.wantErr == nil {
				if rec.Code != http.StatusOK {
					t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
				}
				job := tt.path[strings.LastIndex(tt.path, "/")+1:]
				if len(ran) != 1 || ran[0] != job {
					t.Errorf("ran = %v, want [%s]", ran, job)
				}
				return
			}

			if rec.Code != tt.wantErr.StatusCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantErr.StatusCode)
			}
			if len(ran) != 0 {
				t.Errorf("job should not run, ran %v", ran)
			}
			errObj, ok := parseBody(t, rec)["error"].(map[string]interface{})
			if !ok {
				t.Fatalf("expected error envelope, got %s", rec.Body.String())
			}
			if errObj["code"] != tt.wantErr.Code || errObj["message"] != tt.wantErr.Message {
				t.Errorf("error = %v, want %s %q", errObj, tt.wantErr.Code, tt.wantErr.Message)
			}
		})
	}
}
