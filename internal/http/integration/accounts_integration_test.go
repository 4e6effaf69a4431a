package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/geocoder89/accounthub/internal/config"
	"github.com/geocoder89/accounthub/internal/db"
	apphttp "github.com/geocoder89/accounthub/internal/http"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// These tests need a throwaway postgres instance; they are skipped unless
// TEST_DB_DSN points at one.

func testConfig() config.Config {
	return config.Config{
		Env:                 "test",
		JWTSecret:           "test-secret-key",
		JWTAccessTTLMinutes: 60,
		RateLimitRequests:   1000,
		RateLimitWindowSeconds: 60,
		MaxBodyBytes:        1 << 20,
	}
}

func setupRouter(t *testing.T) (*gin.Engine, *pgxpool.Pool) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := os.Getenv("TEST_DB_DSN")

	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dsn)

	if err != nil {
		t.Fatalf("failed to create pgx pool: %v", err)
	}

	t.Cleanup(pool.Close)

	if err := db.EnsureSchema(ctx, pool); err != nil {
		t.Fatalf("failed to ensure schema: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))

	router := apphttp.NewRouter(logger, pool, nil, testConfig())

	return router, pool
}

func resetDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(), `TRUNCATE users RESTART IDENTITY`)
	if err != nil {
		t.Fatalf("failed to truncate users: %v", err)
	}
}

func doRequest(router http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))

	if method == http.MethodPost || method == http.MethodPut {
		req.Header.Set("Content-Type", "application/json")
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func TestAccountLifecycle(t *testing.T) {
	router, pool := setupRouter(t)
	resetDB(t, pool)

	defer resetDB(t, pool)

	// sign up

	signupBody := `{"name":"Sam Doe","email":"sam@example.com","phone":"0712345678","password":"password123"}`

	w := doRequest(router, http.MethodPost, "/signup", signupBody, "")

	if w.Code != http.StatusCreated {
		t.Fatalf("signup got status %d, body=%s", w.Code, w.Body.String())
	}

	// duplicate signup rejected with a conflict, regardless of which field matches

	dupPhone := `{"name":"Other","email":"other@example.com","phone":"0712345678","password":"pw"}`

	w = doRequest(router, http.MethodPost, "/signup", dupPhone, "")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate phone signup got status %d, body=%s", w.Code, w.Body.String())
	}

	// login

	w = doRequest(router, http.MethodPost, "/login", `{"email":"sam@example.com","password":"password123"}`, "")

	if w.Code != http.StatusOK {
		t.Fatalf("login got status %d, body=%s", w.Code, w.Body.String())
	}

	var loginResp struct {
		Token  string `json:"token"`
		UserID int64  `json:"userId"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &loginResp); err != nil {
		t.Fatalf("unmarshal login: %v", err)
	}

	if loginResp.Token == "" || loginResp.UserID == 0 {
		t.Fatalf("login response incomplete: %s", w.Body.String())
	}

	// the guarded list rejects anonymous callers and admits the token

	w = doRequest(router, http.MethodGet, "/all", "", "")

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous list got status %d", w.Code)
	}

	w = doRequest(router, http.MethodGet, "/all", "", loginResp.Token)

	if w.Code != http.StatusOK {
		t.Fatalf("authorized list got status %d, body=%s", w.Code, w.Body.String())
	}

	if bytes.Contains(w.Body.Bytes(), []byte("argon2")) {
		t.Fatalf("credential leaked into list: %s", w.Body.String())
	}

	// update then read back

	w = doRequest(router, http.MethodPut, "/1", `{"name":"Sam Updated","email":"sam@example.com","phone":"0712345678"}`, "")

	if w.Code != http.StatusOK {
		t.Fatalf("update got status %d, body=%s", w.Code, w.Body.String())
	}

	w = doRequest(router, http.MethodGet, "/1", "", "")

	if w.Code != http.StatusOK {
		t.Fatalf("get got status %d", w.Code)
	}

	if !bytes.Contains(w.Body.Bytes(), []byte("Sam Updated")) {
		t.Fatalf("get did not reflect update: %s", w.Body.String())
	}

	// delete, then the silent no-op on the second delete

	w = doRequest(router, http.MethodDelete, "/1", "", "")

	if w.Code != http.StatusOK {
		t.Fatalf("delete got status %d", w.Code)
	}

	w = doRequest(router, http.MethodDelete, "/1", "", "")

	if w.Code != http.StatusOK {
		t.Fatalf("repeat delete got status %d, want 200", w.Code)
	}

	w = doRequest(router, http.MethodDelete, "/", "", "")

	if w.Code != http.StatusOK {
		t.Fatalf("delete-all on empty table got status %d, want 200", w.Code)
	}
}

func TestForgotPasswordFlow(t *testing.T) {
	router, pool := setupRouter(t)
	resetDB(t, pool)

	defer resetDB(t, pool)

	signupBody := `{"name":"Sam","email":"sam@example.com","phone":"0712345678","password":"old-password"}`

	if w := doRequest(router, http.MethodPost, "/signup", signupBody, ""); w.Code != http.StatusCreated {
		t.Fatalf("signup got status %d, body=%s", w.Code, w.Body.String())
	}

	w := doRequest(router, http.MethodPost, "/forgot-password", `{"email":"sam@example.com","newPassword":"new-password"}`, "")

	if w.Code != http.StatusOK {
		t.Fatalf("forgot-password got status %d, body=%s", w.Code, w.Body.String())
	}

	// old credential rejected, new one accepted

	w = doRequest(router, http.MethodPost, "/login", `{"email":"sam@example.com","password":"old-password"}`, "")

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("old password login got status %d, want 401", w.Code)
	}

	w = doRequest(router, http.MethodPost, "/login", `{"email":"sam@example.com","password":"new-password"}`, "")

	if w.Code != http.StatusOK {
		t.Fatalf("new password login got status %d, body=%s", w.Code, w.Body.String())
	}

	// unknown email is a 404 on this route, unlike login
	w = doRequest(router, http.MethodPost, "/forgot-password", `{"email":"ghost@example.com","newPassword":"pw"}`, "")

	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown email got status %d, want 404", w.Code)
	}
}
