package router_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/student-management/internal/config"
	"github.com/stemsi/student-management/internal/handler"
	"github.com/stemsi/student-management/internal/middleware"
	"github.com/stemsi/student-management/internal/model"
	"github.com/stemsi/student-management/internal/repository/repositorytest"
	"github.com/stemsi/student-management/internal/router"
	"github.com/stemsi/student-management/internal/service"
	"github.com/stemsi/student-management/internal/validator"
)

func init() {
	validator.Setup()
}

func newTestEngine(t *testing.T, cfg *config.Config, limiter *middleware.RateLimiter) *gin.Engine {
	t.Helper()
	store := repositorytest.NewStudentStore()
	svc := service.NewStudentService(store, zerolog.Nop())
	handlers := &router.Handlers{
		Student: handler.NewStudentHandler(svc, zerolog.Nop()),
		Health:  handler.NewHealthHandler(nil, zerolog.Nop()),
	}
	return router.SetupRouter(handlers, cfg, limiter)
}

func testConfig() *config.Config {
	return &config.Config{GinMode: gin.TestMode}
}

func do(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

// Create, duplicate create, read, partial update, delete, read again.
func TestStudentLifecycle(t *testing.T) {
	r := newTestEngine(t, testConfig(), nil)
	asha := map[string]string{"name": "Asha", "email": "asha@x.com", "phone": "111", "course": "CS"}

	w := do(t, r, http.MethodPost, "/api/students", asha)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created model.Student
	decode(t, w, &created)
	if created.ID != 1 || created.Name != "Asha" || created.Email != "asha@x.com" || created.Phone != "111" || created.Course != "CS" {
		t.Fatalf("unexpected created record %+v", created)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Fatalf("expected timestamps in %s", w.Body.String())
	}

	w = do(t, r, http.MethodPost, "/api/students", asha)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("duplicate: expected 422, got %d", w.Code)
	}
	var verr struct {
		Message string            `json:"message"`
		Errors  map[string]string `json:"errors"`
	}
	decode(t, w, &verr)
	if verr.Errors["email"] != service.MsgEmailTaken {
		t.Fatalf("expected email error, got %+v", verr)
	}

	w = do(t, r, http.MethodGet, "/api/students", nil)
	var list []model.Student
	decode(t, w, &list)
	if len(list) != 1 {
		t.Fatalf("duplicate must not create a record, list has %d", len(list))
	}

	w = do(t, r, http.MethodGet, "/api/students/1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("read: expected 200, got %d", w.Code)
	}
	var read model.Student
	decode(t, w, &read)
	if read.ID != created.ID || read.Email != created.Email {
		t.Fatalf("read returned %+v", read)
	}

	w = do(t, r, http.MethodPut, "/api/students/1", map[string]string{"course": "Math"})
	if w.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var updated model.Student
	decode(t, w, &updated)
	if updated.Course != "Math" || updated.Name != "Asha" || updated.Phone != "111" {
		t.Fatalf("unexpected updated record %+v", updated)
	}

	w = do(t, r, http.MethodGet, "/api/students/1", nil)
	decode(t, w, &read)
	if read.Course != "Math" {
		t.Fatalf("read after update returned course %s", read.Course)
	}

	w = do(t, r, http.MethodDelete, "/api/students/1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", w.Code)
	}
	var msg map[string]string
	decode(t, w, &msg)
	if msg["message"] != handler.MsgStudentDeleted {
		t.Fatalf("unexpected delete body %v", msg)
	}

	w = do(t, r, http.MethodGet, "/api/students/1", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("read after delete: expected 404, got %d", w.Code)
	}
	decode(t, w, &msg)
	if msg["message"] != "Student not found" {
		t.Fatalf("unexpected not found body %v", msg)
	}
}

func TestListEmptyIsArray(t *testing.T) {
	r := newTestEngine(t, testConfig(), nil)
	w := do(t, r, http.MethodGet, "/api/students", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := bytes.TrimSpace(w.Body.Bytes()); string(got) != "[]" {
		t.Fatalf("expected [], got %s", got)
	}
}

func TestHealth(t *testing.T) {
	r := newTestEngine(t, testConfig(), nil)
	w := do(t, r, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]string
	decode(t, w, &body)
	if body["status"] != "ok" {
		t.Fatalf("unexpected health body %v", body)
	}
}

func TestCORSPreflight(t *testing.T) {
	cfg := testConfig()
	cfg.AllowedOrigins = []string{"http://ui.local"}
	r := newTestEngine(t, cfg, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/students", nil)
	req.Header.Set("Origin", "http://ui.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://ui.local" {
		t.Fatalf("expected allowed origin echoed, got %q", got)
	}
}

func TestRateLimitAppliesToAPI(t *testing.T) {
	limiter := middleware.NewRateLimiter(1, time.Minute)
	defer limiter.Stop()
	r := newTestEngine(t, testConfig(), limiter)

	if w := do(t, r, http.MethodGet, "/api/students", nil); w.Code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", w.Code)
	}
	if w := do(t, r, http.MethodGet, "/api/students", nil); w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected 429, got %d", w.Code)
	}
	if w := do(t, r, http.MethodGet, "/health", nil); w.Code != http.StatusOK {
		t.Fatalf("health is not rate limited, got %d", w.Code)
	}
}
