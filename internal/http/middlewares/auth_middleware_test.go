package middlewares_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/geocoder89/accounthub/internal/auth"
	"github.com/geocoder89/accounthub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func guardedRouter(m *middlewares.AuthMiddleware) *gin.Engine {
	r := gin.New()

	r.GET("/all", m.RequireAuth(), func(c *gin.Context) {
		id, _ := middlewares.UserIDFromContext(c)
		role, _ := middlewares.RoleFromContext(c)
		email, _ := middlewares.EmailFromContext(c)

		c.JSON(http.StatusOK, gin.H{"userId": id, "role": role, "email": email})
	})

	return r
}

func get(r http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/all", nil)

	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func newGuard(mgr *auth.Manager) *middlewares.AuthMiddleware {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return middlewares.NewAuthMiddleware(mgr, log)
}

func TestRequireAuth_ValidToken(t *testing.T) {
	mgr := auth.NewManager("test-secret-key", time.Hour)

	token, err := mgr.GenerateAccessToken(5, "sam@example.com", "user")

	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	r := guardedRouter(newGuard(mgr))

	w := get(r, "Bearer "+token)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}
}

func TestRequireAuth_RejectionsAreUniform(t *testing.T) {
	issuedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	past := auth.NewManager("test-secret-key", time.Hour).WithClock(func() time.Time {
		return issuedAt
	})

	expiredToken, err := past.GenerateAccessToken(5, "sam@example.com", "user")

	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	otherSecret := auth.NewManager("other-secret", time.Hour)

	foreignToken, err := otherSecret.GenerateAccessToken(5, "sam@example.com", "user")

	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	// verifier runs on the real clock, so expiredToken is long past its TTL
	r := guardedRouter(newGuard(auth.NewManager("test-secret-key", time.Hour)))

	cases := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"not bearer", "Basic dXNlcjpwdw=="},
		{"empty bearer", "Bearer "},
		{"garbage token", "Bearer not.a.token"},
		{"wrong secret", "Bearer " + foreignToken},
		{"expired", "Bearer " + expiredToken},
	}

	var firstBody string

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := get(r, tc.header)

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("got status %d, want 401", w.Code)
			}

			if firstBody == "" {
				firstBody = w.Body.String()
				return
			}

			// every rejection looks the same to the caller
			if w.Body.String() != firstBody {
				t.Errorf("rejection body differs: %s vs %s", w.Body.String(), firstBody)
			}
		})
	}
}
