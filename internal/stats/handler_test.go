package stats

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/SlpAus/portfolio-backend/internal/platform/validation"
	"github.com/gin-gonic/gin"
)

type failingCounter struct{}

func (failingCounter) Get(context.Context) (SiteStats, error) {
	return SiteStats{}, ErrStorageUnavailable
}
func (failingCounter) IncrementViews(context.Context) (int64, error) {
	return 0, ErrStorageUnavailable
}
func (failingCounter) IncrementLoves(context.Context) (int64, error) {
	return 0, ErrStorageUnavailable
}
func (failingCounter) Initialize(context.Context, int64, int64) (SiteStats, error) {
	return SiteStats{}, errors.New("disk full")
}

func newTestRouter(counter Counter, adminToken string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	validation.Setup()
	r := gin.New()
	h := NewHandler(counter)
	g := r.Group("/api/stats")
	g.GET("", h.GetStats)
	g.POST("/views", h.IncrementViews)
	g.POST("/loves", h.IncrementLoves)
	g.POST("/init", RequireAdminToken(adminToken), h.InitStats)
	return r
}

func do(t *testing.T, r http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return m
}

func TestHandler_GetOnEmptyTable(t *testing.T) {
	r := newTestRouter(newTestStore(t), "")

	for i := 0; i < 2; i++ {
		rr := do(t, r, http.MethodGet, "/api/stats", "")
		if rr.Code != http.StatusOK {
			t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
		}
		m := decode(t, rr)
		if m["id"] != float64(1) || m["site_views"] != float64(0) || m["love_count"] != float64(0) {
			t.Fatalf("unexpected body: %v", m)
		}
	}
}

func TestHandler_InitThenGet(t *testing.T) {
	r := newTestRouter(newTestStore(t), "")

	rr := do(t, r, http.MethodPost, "/api/stats/init", `{"site_views":5,"love_count":2}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("init status %d: %s", rr.Code, rr.Body.String())
	}

	m := decode(t, do(t, r, http.MethodGet, "/api/stats", ""))
	if m["site_views"] != float64(5) || m["love_count"] != float64(2) {
		t.Fatalf("unexpected body after init: %v", m)
	}
}

func TestHandler_InitDefaults(t *testing.T) {
	r := newTestRouter(newTestStore(t), "")
	do(t, r, http.MethodPost, "/api/stats/views", "")

	rr := do(t, r, http.MethodPost, "/api/stats/init", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("init status %d: %s", rr.Code, rr.Body.String())
	}
	m := decode(t, rr)
	if m["site_views"] != float64(0) || m["love_count"] != float64(0) {
		t.Fatalf("empty body should reset to zero: %v", m)
	}

	rr = do(t, r, http.MethodPost, "/api/stats/init", `{"love_count":7}`)
	m = decode(t, rr)
	if m["site_views"] != float64(0) || m["love_count"] != float64(7) {
		t.Fatalf("partial body: %v", m)
	}
}

func TestHandler_InitRejectsNegative(t *testing.T) {
	r := newTestRouter(newTestStore(t), "")

	rr := do(t, r, http.MethodPost, "/api/stats/init", `{"site_views":-1}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", rr.Code)
	}
	if msg := decode(t, rr)["error"]; msg != "site_views must be at least 0." {
		t.Fatalf("unexpected error message: %v", msg)
	}
}

func TestHandler_Increments(t *testing.T) {
	r := newTestRouter(newTestStore(t), "")

	m := decode(t, do(t, r, http.MethodPost, "/api/stats/views", ""))
	if m["newViewCount"] != float64(1) {
		t.Fatalf("views: %v", m)
	}
	m = decode(t, do(t, r, http.MethodPost, "/api/stats/views", ""))
	if m["newViewCount"] != float64(2) {
		t.Fatalf("views: %v", m)
	}
	m = decode(t, do(t, r, http.MethodPost, "/api/stats/loves", ""))
	if m["newLoveCount"] != float64(1) {
		t.Fatalf("loves: %v", m)
	}
}

func TestHandler_StorageFailuresAre500(t *testing.T) {
	r := newTestRouter(failingCounter{}, "")

	cases := []struct{ method, path string }{
		{http.MethodGet, "/api/stats"},
		{http.MethodPost, "/api/stats/views"},
		{http.MethodPost, "/api/stats/loves"},
		{http.MethodPost, "/api/stats/init"},
	}
	for _, tc := range cases {
		rr := do(t, r, tc.method, tc.path, "")
		if rr.Code != http.StatusInternalServerError {
			t.Errorf("%s %s: want 500, got %d", tc.method, tc.path, rr.Code)
			continue
		}
		if _, ok := decode(t, rr)["error"].(string); !ok {
			t.Errorf("%s %s: missing error field", tc.method, tc.path)
		}
	}
}

func TestHandler_InitRequiresTokenWhenConfigured(t *testing.T) {
	r := newTestRouter(newTestStore(t), "s3cret")

	if rr := do(t, r, http.MethodPost, "/api/stats/init", `{"site_views":1}`); rr.Code != http.StatusUnauthorized {
		t.Fatalf("no token: want 401, got %d", rr.Code)
	}
	if rr := do(t, r, http.MethodPost, "/api/stats/init", `{"site_views":1}`, "Authorization", "Bearer wrong"); rr.Code != http.StatusUnauthorized {
		t.Fatalf("wrong token: want 401, got %d", rr.Code)
	}
	rr := do(t, r, http.MethodPost, "/api/stats/init", `{"site_views":1}`, "Authorization", "Bearer s3cret")
	if rr.Code != http.StatusOK {
		t.Fatalf("good token: want 200, got %d", rr.Code)
	}
}
