package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"tourism/pkg/logger"
	"tourism/pkg/model"
	"tourism/pkg/token"

	"github.com/julienschmidt/httprouter"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Format: logger.JSON, Service: "test"})
}

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute, nil, testLogger())
	defer rl.Stop()

	if !rl.Allow("1.2.3.4") || !rl.Allow("1.2.3.4") {
		t.Fatal("first two requests should pass")
	}
	if rl.Allow("1.2.3.4") {
		t.Error("third request should be limited")
	}
	if !rl.Allow("5.6.7.8") {
		t.Error("other clients have their own window")
	}
	if !rl.Allow("") {
		t.Error("empty key is never limited")
	}
}

func TestRateLimit_Returns429(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute, nil, testLogger())
	defer rl.Stop()

	h := RateLimit(rl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodGet, "/api/properties/search", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Errorf("request %d: status = %d, want %d", i, rec.Code, want)
		}
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	if got := ClientIP(req); got != "10.0.0.1" {
		t.Errorf("ClientIP() = %q", got)
	}

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.2")
	if got := ClientIP(req); got != "203.0.113.7" {
		t.Errorf("ClientIP() with XFF = %q", got)
	}
}

func TestIdempotency_ReplaysSuccess(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Stop()

	var calls int32
	h := Idempotency(store, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"1"}}`))
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(`{}`))
		req.Header.Set(IdempotencyHeader, "abc")
		req.Header.Set("Authorization", "Bearer t1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d", rec.Code)
		}
		if rec.Body.String() != `{"data":{"id":"1"}}` {
			t.Errorf("body = %q", rec.Body.String())
		}
	}
	if calls != 1 {
		t.Errorf("handler called %d times, want 1", calls)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(`{}`))
	req.Header.Set(IdempotencyHeader, "abc")
	req.Header.Set("Authorization", "Bearer other-user")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if calls != 2 {
		t.Errorf("keys must be scoped per caller, calls = %d", calls)
	}
}

func TestIdempotency_DoesNotCacheFailures(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Stop()

	var calls int32
	h := Idempotency(store, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusConflict)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/bookings", nil)
		req.Header.Set(IdempotencyHeader, "abc")
		h.ServeHTTP(httptest.NewRecorder(), req)
	}
	if calls != 2 {
		t.Errorf("failed responses must not be replayed, calls = %d", calls)
	}
}

type stubParser struct {
	claims *token.Claims
	err    error
}

func (s stubParser) Parse(string) (*token.Claims, error) { return s.claims, s.err }

func TestAuthenticate(t *testing.T) {
	claims := &token.Claims{Role: "host"}
	claims.Subject = "507f1f77bcf86cd799439011"

	var seen *model.Principal
	next := func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		seen = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}

	tests := []struct {
		name   string
		header string
		parser stubParser
		want   int
	}{
		{"missing header", "", stubParser{claims: claims}, http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", stubParser{claims: claims}, http.StatusUnauthorized},
		{"invalid token", "Bearer abc", stubParser{err: token.ErrInvalidToken}, http.StatusUnauthorized},
		{"expired token", "Bearer abc", stubParser{err: token.ErrExpiredToken}, http.StatusUnauthorized},
		{"valid token", "Bearer abc", stubParser{claims: claims}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			auth := NewAuthenticator(tt.parser, testLogger())
			req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			auth.Authenticate(next)(rec, req, nil)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.want == http.StatusOK && (seen == nil || seen.UserID != claims.Subject || seen.Role != model.RoleHost) {
				t.Errorf("principal = %+v", seen)
			}
		})
	}
}

func TestAuthenticate_AccountLookup(t *testing.T) {
	claims := &token.Claims{Role: "admin"}
	claims.Subject = "507f1f77bcf86cd799439011"

	tests := []struct {
		name     string
		role     model.Role
		active   bool
		err      error
		want     int
		wantRole model.Role
	}{
		{"active account uses stored role", model.RoleCustomer, true, nil, http.StatusOK, model.RoleCustomer},
		{"deleted account", model.RoleCustomer, false, nil, http.StatusUnauthorized, ""},
		{"unknown account", "", false, ErrAccountNotFound, http.StatusUnauthorized, ""},
		{"store unreachable", "", false, errors.New("connection refused"), http.StatusServiceUnavailable, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen *model.Principal
			next := func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
				seen = PrincipalFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}
			auth := NewAuthenticator(stubParser{claims: claims}, testLogger()).
				WithAccounts(func(_ context.Context, userID string) (model.Role, bool, error) {
					if userID != claims.Subject {
						t.Errorf("lookup for %q", userID)
					}
					return tt.role, tt.active, tt.err
				})

			req := httptest.NewRequest(http.MethodPost, "/api/bookings", nil)
			req.Header.Set("Authorization", "Bearer abc")
			rec := httptest.NewRecorder()
			auth.Authenticate(next)(rec, req, nil)

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.want == http.StatusOK {
				if seen == nil || seen.Role != tt.wantRole {
					t.Errorf("principal = %+v", seen)
				}
			} else if seen != nil {
				t.Error("next handler ran for a rejected account")
			}
		})
	}
}

func TestContentTypeValidation(t *testing.T) {
	h := ContentTypeValidation(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader("a=b"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("status = %d, want 415", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/bookings/id/x/confirm", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("bodyless POST status = %d, want 200", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPut, "/api/users/me", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("json PUT status = %d, want 200", rec.Code)
	}
}

func TestRecovery(t *testing.T) {
	h := Recovery(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "boom") {
		t.Error("panic value must not leak")
	}
}

func TestRequestTimeout(t *testing.T) {
	h := RequestTimeout(20 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusGatewayTimeout {
		t.Errorf("status = %d, want 504", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"code":"TIMEOUT"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestRouteLabel(t *testing.T) {
	got := routeLabel("/api/bookings/id/507f1f77bcf86cd799439011/confirm")
	if got != "/api/bookings/id/:id/confirm" {
		t.Errorf("routeLabel() = %q", got)
	}
}
