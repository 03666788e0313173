package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"tourism/internal/properties/service"
	"tourism/internal/search"
	apperrors "tourism/pkg/errors"
	"tourism/pkg/logger"
	"tourism/pkg/middleware"
	"tourism/pkg/model"
	"tourism/pkg/token"

	"github.com/julienschmidt/httprouter"
)

type mockPropertyService struct {
	createFunc       func(ctx context.Context, p *model.Principal, prop *model.Property) error
	getByIDFunc      func(ctx context.Context, id string) (*model.PropertyDetails, error)
	searchFunc       func(ctx context.Context, values url.Values) (*service.SearchResult, error)
	updateFunc       func(ctx context.Context, p *model.Principal, id string, u *model.PropertyUpdate) (*model.Property, error)
	deactivateFunc   func(ctx context.Context, p *model.Principal, id string) error
	availabilityFunc func(ctx context.Context, id, checkIn, checkOut string) (*service.AvailabilityResult, error)
}

func (m *mockPropertyService) Create(ctx context.Context, p *model.Principal, prop *model.Property) error {
	return m.createFunc(ctx, p, prop)
}

func (m *mockPropertyService) GetByID(ctx context.Context, id string) (*model.PropertyDetails, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockPropertyService) Search(ctx context.Context, values url.Values) (*service.SearchResult, error) {
	return m.searchFunc(ctx, values)
}

func (m *mockPropertyService) Update(ctx context.Context, p *model.Principal, id string, u *model.PropertyUpdate) (*model.Property, error) {
	return m.updateFunc(ctx, p, id, u)
}

func (m *mockPropertyService) Deactivate(ctx context.Context, p *model.Principal, id string) error {
	return m.deactivateFunc(ctx, p, id)
}

func (m *mockPropertyService) Availability(ctx context.Context, id, checkIn, checkOut string) (*service.AvailabilityResult, error) {
	return m.availabilityFunc(ctx, id, checkIn, checkOut)
}

func newTestRouter(svc service.PropertyService) (*httprouter.Router, *token.Manager) {
	log := logger.Discard()
	tokens := token.NewManager("test-secret-test-secret-test-secret", time.Hour, "test")
	router := httprouter.New()
	NewPropertyHandler(svc, middleware.NewAuthenticator(tokens, log), log).RegisterRoutes(router)
	return router, tokens
}

func TestSearch_ResponseShape(t *testing.T) {
	svc := &mockPropertyService{
		searchFunc: func(ctx context.Context, values url.Values) (*service.SearchResult, error) {
			if values.Get("destination") != "Lisbon" {
				t.Errorf("expected destination to be forwarded, got %q", values.Get("destination"))
			}
			return &service.SearchResult{
				Properties: []service.PropertyResult{{Property: &model.Property{ID: "p1", Name: "Harbour View"}, FromPrice: 120}},
				Pagination: search.NewPage(1, 20).Pagination(1),
				Filters:    search.NewFilters(map[string]any{"destination": "Lisbon"}, nil),
			}, nil
		},
	}
	router, _ := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/properties/search?destination=Lisbon", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Data struct {
			Properties []map[string]any `json:"properties"`
			Pagination map[string]any   `json:"pagination"`
			Filters    struct {
				Applied map[string]any `json:"applied"`
				Ignored []string       `json:"ignored"`
			} `json:"filters"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if len(body.Data.Properties) != 1 || body.Data.Properties[0]["fromPrice"] != 120.0 {
		t.Errorf("unexpected properties: %+v", body.Data.Properties)
	}
	if body.Data.Pagination["pages"] != 1.0 {
		t.Errorf("expected 1 page, got %v", body.Data.Pagination["pages"])
	}
	if body.Data.Filters.Ignored == nil {
		t.Error("expected ignored to be an empty list, got null")
	}
}

func TestCreate_RequiresToken(t *testing.T) {
	called := false
	svc := &mockPropertyService{
		createFunc: func(ctx context.Context, p *model.Principal, prop *model.Property) error {
			called = true
			return nil
		},
	}
	router, _ := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/properties", strings.NewReader(`{"name":"x"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if called {
		t.Error("service must not be called without a token")
	}
}

func TestCreate_PassesPrincipal(t *testing.T) {
	svc := &mockPropertyService{
		createFunc: func(ctx context.Context, p *model.Principal, prop *model.Property) error {
			if p == nil || p.UserID != "u1" || p.Role != model.RoleHost {
				t.Errorf("unexpected principal %+v", p)
			}
			prop.ID = "p1"
			return nil
		},
	}
	router, tokens := newTestRouter(svc)
	tok, _, err := tokens.Issue("u1", string(model.RoleHost))
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/properties", strings.NewReader(`{"name":"Harbour View"}`))
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", apperrors.NotFoundWithID("Property", "p1"), http.StatusNotFound},
		{"invalid id", apperrors.InvalidInput("Invalid property ID format"), http.StatusBadRequest},
		{"internal", apperrors.Internal("boom", nil), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockPropertyService{
				getByIDFunc: func(ctx context.Context, id string) (*model.PropertyDetails, error) {
					return nil, tt.err
				},
			}
			router, _ := newTestRouter(svc)

			req := httptest.NewRequest(http.MethodGet, "/api/properties/id/p1", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Errorf("expected %d, got %d", tt.status, rec.Code)
			}
		})
	}
}

func TestDelete_NoContent(t *testing.T) {
	svc := &mockPropertyService{
		deactivateFunc: func(ctx context.Context, p *model.Principal, id string) error {
			if id != "p1" {
				t.Errorf("expected id p1, got %s", id)
			}
			return nil
		},
	}
	router, tokens := newTestRouter(svc)
	tok, _, _ := tokens.Issue("u1", string(model.RoleHost))

	req := httptest.NewRequest(http.MethodDelete, "/api/properties/id/p1", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}
