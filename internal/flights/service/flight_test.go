package service

import (
	"context"
	"fmt"
	"net/url"
	"testing"
	"time"

	flightserrors "tourism/internal/flights/errors"
	"tourism/internal/flights/validator"
	"tourism/internal/search"
	"tourism/pkg/cache"
	"tourism/pkg/config"
	apperrors "tourism/pkg/errors"
	"tourism/pkg/logger"
	"tourism/pkg/metrics"
	"tourism/pkg/model"
	"tourism/pkg/validation"

	"go.mongodb.org/mongo-driver/bson"
)

type mockFlightRepository struct {
	createFunc       func(ctx context.Context, f *model.Flight) error
	findByIDFunc     func(ctx context.Context, id string) (*model.Flight, error)
	searchFunc       func(ctx context.Context, filter bson.M, sort bson.D, page search.Page) ([]*model.Flight, error)
	countFunc        func(ctx context.Context, filter bson.M) (int64, error)
	updateStatusFunc func(ctx context.Context, id string, status model.FlightStatus) error
}

func (m *mockFlightRepository) Create(ctx context.Context, f *model.Flight) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, f)
	}
	f.ID = "65f1c0a2b3c4d5e6f7a8b9e0"
	return nil
}

func (m *mockFlightRepository) FindByID(ctx context.Context, id string) (*model.Flight, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, fmt.Errorf("%w: %s", flightserrors.ErrNotFound, id)
}

func (m *mockFlightRepository) Search(ctx context.Context, filter bson.M, sort bson.D, page search.Page) ([]*model.Flight, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, filter, sort, page)
	}
	return []*model.Flight{}, nil
}

func (m *mockFlightRepository) Count(ctx context.Context, filter bson.M) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx, filter)
	}
	return 0, nil
}

func (m *mockFlightRepository) UpdateStatus(ctx context.Context, id string, status model.FlightStatus) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status)
	}
	return nil
}

var admin = &model.Principal{UserID: "65f1c0a2b3c4d5e6f7a8b9c1", Role: model.RoleAdmin}

func newTestService(repo *mockFlightRepository) FlightService {
	log := logger.Discard()
	cfg := &config.Config{Log: log, ReadTimeout: time.Second, WriteTimeout: time.Second}
	return NewFlightService(repo, validator.NewFlightValidator(validation.New(log)), cache.Noop{}, metrics.NewMetrics("test"), cfg)
}

func sampleFlight() *model.Flight {
	dep := time.Date(2025, 7, 10, 8, 0, 0, 0, time.UTC)
	return &model.Flight{
		FlightNumber:    "tp-1234",
		Airline:         " TAP  Air Portugal ",
		Departure:       model.FlightLeg{Airport: "lis", City: "Lisbon", Country: "Portugal", Time: dep},
		Arrival:         model.FlightLeg{Airport: "cdg", City: "Paris", Country: "France", Time: dep.Add(150 * time.Minute)},
		DurationMinutes: 150,
		Fares: model.Fares{
			Economy:  model.Fare{Price: 120, Currency: "eur", SeatsAvailable: 150},
			Business: &model.Fare{Price: 480.5, Currency: "eur", SeatsAvailable: 12},
		},
	}
}

func TestCreate(t *testing.T) {
	var stored *model.Flight
	svc := newTestService(&mockFlightRepository{
		createFunc: func(ctx context.Context, f *model.Flight) error {
			stored = f
			return nil
		},
	})

	if err := svc.Create(context.Background(), &model.Principal{UserID: "h1", Role: model.RoleHost}, sampleFlight()); !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Fatalf("expected forbidden for host, got %v", err)
	}

	if err := svc.Create(context.Background(), admin, sampleFlight()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.FlightNumber != "TP1234" {
		t.Errorf("expected flight number TP1234, got %s", stored.FlightNumber)
	}
	if stored.Departure.Airport != "LIS" || stored.Fares.Business.Currency != "EUR" {
		t.Errorf("expected upper-cased codes, got %s / %s", stored.Departure.Airport, stored.Fares.Business.Currency)
	}
	if stored.Status != model.FlightScheduled {
		t.Errorf("expected default status scheduled, got %s", stored.Status)
	}
	if stored.Airline != "TAP Air Portugal" {
		t.Errorf("expected normalized airline, got %q", stored.Airline)
	}
}

func TestCreate_DuplicateFlightNumber(t *testing.T) {
	svc := newTestService(&mockFlightRepository{
		createFunc: func(ctx context.Context, f *model.Flight) error {
			return fmt.Errorf("%w: %s", flightserrors.ErrDuplicateFlightNumber, f.FlightNumber)
		},
	})

	if err := svc.Create(context.Background(), admin, sampleFlight()); !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Errorf("expected conflict, got %v", err)
	}
}

func TestSearch_PricesChosenClass(t *testing.T) {
	svc := newTestService(&mockFlightRepository{
		countFunc: func(ctx context.Context, filter bson.M) (int64, error) { return 1, nil },
		searchFunc: func(ctx context.Context, filter bson.M, sort bson.D, page search.Page) ([]*model.Flight, error) {
			if _, ok := filter["fares.business.seats_available"]; !ok {
				t.Errorf("expected seat filter on business class, got %v", filter)
			}
			return []*model.Flight{sampleFlight()}, nil
		},
	})

	result, err := svc.Search(context.Background(), url.Values{"class": {"business"}, "passengers": {"2"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Flights) != 1 {
		t.Fatalf("expected 1 flight, got %d", len(result.Flights))
	}
	if got := result.Flights[0].TotalPrice; got != 961 {
		t.Errorf("expected total 961, got %v", got)
	}
	if result.Flights[0].Class != model.FareBusiness {
		t.Errorf("expected business class, got %s", result.Flights[0].Class)
	}
}

func TestUpdateStatus(t *testing.T) {
	var got model.FlightStatus
	svc := newTestService(&mockFlightRepository{
		updateStatusFunc: func(ctx context.Context, id string, status model.FlightStatus) error {
			got = status
			return nil
		},
	})

	tests := []struct {
		name     string
		status   model.FlightStatus
		wantCode string
	}{
		{"valid", " Delayed ", ""},
		{"unknown", "lost", apperrors.CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.UpdateStatus(context.Background(), admin, "65f1c0a2b3c4d5e6f7a8b9e0", &model.FlightStatusUpdate{Status: tt.status})
			if tt.wantCode != "" {
				if !apperrors.HasCode(err, tt.wantCode) {
					t.Errorf("expected %s, got %v", tt.wantCode, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != model.FlightDelayed {
				t.Errorf("expected delayed, got %s", got)
			}
		})
	}
}
