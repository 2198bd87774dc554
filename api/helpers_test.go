package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"github.com/garnizeh/candidatures/api"
	"github.com/garnizeh/candidatures/internal/config"
	"github.com/garnizeh/candidatures/internal/tracker"
	"github.com/garnizeh/candidatures/pkg/repository/mock"
)

const testSecret = "testsecret"

func init() {
	api.SetLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newService(m *mock.Mocks) *tracker.Service {
	return tracker.New(m.Repo,
		tracker.WithBcryptCost(bcrypt.MinCost),
		tracker.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func newRouter(t *testing.T, m *mock.Mocks, backups api.BackupStore) *mux.Router {
	t.Helper()
	cfg := &config.Config{JWTSecret: testSecret, TokenDuration: time.Hour}
	return api.SetupRoutes(cfg, "test", "now", newService(m), backups)
}

func do(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// signup registers an owner through the router and returns its token.
func signup(t *testing.T, h http.Handler, handle string) string {
	t.Helper()
	w := do(t, h, http.MethodPost, "/v1/auth/signup", "", map[string]string{
		"handle":   handle,
		"contact":  handle + "@example.com",
		"password": "s3cret!",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("signup %s: expected 201 got %d body=%s", handle, w.Code, w.Body.String())
	}
	var ar struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &ar); err != nil || ar.Token == "" {
		t.Fatalf("signup %s: no token in %s", handle, w.Body.String())
	}
	return ar.Token
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
}
