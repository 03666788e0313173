package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tourism/internal/users/service"
	apperrors "tourism/pkg/errors"
	"tourism/pkg/logger"
	"tourism/pkg/middleware"
	"tourism/pkg/model"
	"tourism/pkg/token"

	"github.com/julienschmidt/httprouter"
)

// mockUserService implements only what a test sets; other calls panic.
type mockUserService struct {
	service.UserService
	updateProfileFunc    func(ctx context.Context, p *model.Principal, u *model.ProfileUpdate) (*model.User, error)
	addPaymentMethodFunc func(ctx context.Context, p *model.Principal, req *model.PaymentMethodCreate) (*model.PaymentMethod, error)
	deleteFunc           func(ctx context.Context, p *model.Principal) error
}

func (m *mockUserService) UpdateProfile(ctx context.Context, p *model.Principal, u *model.ProfileUpdate) (*model.User, error) {
	return m.updateProfileFunc(ctx, p, u)
}

func (m *mockUserService) AddPaymentMethod(ctx context.Context, p *model.Principal, req *model.PaymentMethodCreate) (*model.PaymentMethod, error) {
	return m.addPaymentMethodFunc(ctx, p, req)
}

func (m *mockUserService) Delete(ctx context.Context, p *model.Principal) error {
	return m.deleteFunc(ctx, p)
}

func newTestRouter(svc service.UserService) (*httprouter.Router, string) {
	log := logger.Discard()
	tokens := token.NewManager("test-secret-test-secret-test-secret", time.Hour, "test")
	router := httprouter.New()
	NewUserHandler(svc, middleware.NewAuthenticator(tokens, log), log).RegisterRoutes(router)
	tok, _, _ := tokens.Issue("u1", string(model.RoleCustomer))
	return router, tok
}

func serve(router *httprouter.Router, method, path, tok, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRoutesRequireToken(t *testing.T) {
	router, _ := newTestRouter(&mockUserService{})

	paths := []struct{ method, path string }{
		{http.MethodGet, "/api/users/me"},
		{http.MethodPut, "/api/users/me/password"},
		{http.MethodGet, "/api/users/me/payment-methods"},
		{http.MethodGet, "/api/admin/users"},
	}
	for _, p := range paths {
		if rec := serve(router, p.method, p.path, "", "{}"); rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401, got %d", p.method, p.path, rec.Code)
		}
	}
}

func TestUpdateProfile_DropsProtectedFields(t *testing.T) {
	svc := &mockUserService{
		updateProfileFunc: func(ctx context.Context, p *model.Principal, u *model.ProfileUpdate) (*model.User, error) {
			if p.UserID != "u1" {
				t.Errorf("expected principal u1, got %s", p.UserID)
			}
			if u.FirstName == nil || *u.FirstName != "Ana" {
				t.Errorf("expected firstName to be forwarded, got %+v", u)
			}
			return &model.User{ID: "u1", Role: model.RoleCustomer, Profile: model.Profile{FirstName: *u.FirstName}}, nil
		},
	}
	router, tok := newTestRouter(svc)

	rec := serve(router, http.MethodPut, "/api/users/me", tok,
		`{"firstName":"Ana","role":"admin","email":"x@example.com","password":"hijack"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Data model.User `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Data.Role != model.RoleCustomer {
		t.Errorf("role changed to %s", body.Data.Role)
	}
}

func TestAddPaymentMethod_Created(t *testing.T) {
	svc := &mockUserService{
		addPaymentMethodFunc: func(ctx context.Context, p *model.Principal, req *model.PaymentMethodCreate) (*model.PaymentMethod, error) {
			return &model.PaymentMethod{ID: "pm1", Brand: "visa", Last4: "1111", Token: "sealed", IsDefault: true}, nil
		},
	}
	router, tok := newTestRouter(svc)

	rec := serve(router, http.MethodPost, "/api/users/me/payment-methods", tok,
		`{"cardNumber":"4111111111111111","expMonth":12,"expYear":2031}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "sealed") || strings.Contains(rec.Body.String(), "4111111111111111") {
		t.Errorf("card data leaked: %s", rec.Body.String())
	}
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"deactivated", nil, http.StatusNoContent},
		{"active bookings", apperrors.Conflict("Account has active bookings"), http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockUserService{
				deleteFunc: func(ctx context.Context, p *model.Principal) error { return tt.err },
			}
			router, tok := newTestRouter(svc)

			if rec := serve(router, http.MethodDelete, "/api/users/me", tok, ""); rec.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}
