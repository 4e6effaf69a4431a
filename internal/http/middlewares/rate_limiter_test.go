package middlewares

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestMemoryLimiterFixedWindow(t *testing.T) {
	l := NewMemoryLimiter(2, 50*time.Millisecond)

	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, _, err := l.Allow(ctx, "client")

		if err != nil {
			t.Fatalf("Allow returned error: %v", err)
		}

		if !ok {
			t.Fatalf("request %d denied within limit", i+1)
		}
	}

	ok, retryAfter, err := l.Allow(ctx, "client")

	if err != nil {
		t.Fatalf("Allow returned error: %v", err)
	}

	if ok {
		t.Fatal("third request allowed over limit")
	}

	if retryAfter <= 0 {
		t.Fatalf("retryAfter = %v, want positive", retryAfter)
	}

	// a different key has its own bucket

	if ok, _, _ := l.Allow(ctx, "other"); !ok {
		t.Fatal("independent key denied")
	}

	// window rolls over

	time.Sleep(60 * time.Millisecond)

	if ok, _, _ := l.Allow(ctx, "client"); !ok {
		t.Fatal("request denied after window reset")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RateLimit(NewMemoryLimiter(1, time.Minute), KeyByIP))
	r.POST("/login", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"

		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		return w
	}

	if w := do(); w.Code != http.StatusOK {
		t.Fatalf("first request got status %d", w.Code)
	}

	w := do()

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request got status %d, want 429", w.Code)
	}

	if w.Header().Get("Retry-After") == "" {
		t.Fatal("429 response missing Retry-After header")
	}

	want := `{"message":"Too many requests"}`

	if w.Body.String() != want {
		t.Fatalf("429 body = %s, want %s", w.Body.String(), want)
	}
}

type errorLimiter struct{}

func (errorLimiter) Allow(context.Context, string) (bool, time.Duration, error) {
	return false, 0, context.DeadlineExceeded
}

func TestRateLimitFailsOpenOnBackendError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RateLimit(errorLimiter{}, KeyByIP))
	r.POST("/login", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200 when limiter backend errors", w.Code)
	}
}
