package model

import "time"

// Service is a bookable activity or tour sold in hourly slots.
type Service struct {
	ID              string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	OwnerID         string    `json:"ownerId" bson:"owner_id" validate:"required,mongodb"`
	Name            string    `json:"name" bson:"name" validate:"required,min=2,max=150"`
	Description     string    `json:"description" bson:"description" validate:"omitempty,max=5000"`
	Category        string    `json:"category" bson:"category" validate:"required,min=2,max=60"`
	City            string    `json:"city" bson:"city" validate:"required,min=2,max=100"`
	Country         string    `json:"country" bson:"country" validate:"required,min=2,max=100"`
	Price           float64   `json:"price" bson:"price" validate:"gt=0"`
	Currency        string    `json:"currency" bson:"currency" validate:"required,iso4217"`
	DurationMinutes int       `json:"durationMinutes" bson:"duration_minutes" validate:"gt=0,max=1440"`
	Capacity        int       `json:"capacity" bson:"capacity" validate:"min=1,max=1000"`
	AvailableDays   []int     `json:"availableDays" bson:"available_days" validate:"required,min=1,max=7,unique,dive,min=0,max=6"`
	StartHour       int       `json:"startHour" bson:"start_hour" validate:"min=0,max=23"`
	EndHour         int       `json:"endHour" bson:"end_hour" validate:"min=1,max=24,gtfield=StartHour"`
	Images          []string  `json:"images,omitempty" bson:"images,omitempty" validate:"omitempty,max=50,dive,url"`
	IsActive        bool      `json:"isActive" bson:"is_active"`
	CreatedAt       time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" bson:"updated_at"`
}

// OffersSlot reports whether a slot starting at t (UTC) is inside the
// service's weekly schedule.
func (s *Service) OffersSlot(t time.Time) bool {
	t = t.UTC()
	if t.Minute() != 0 || t.Second() != 0 || t.Nanosecond() != 0 {
		return false
	}
	if t.Hour() < s.StartHour || t.Hour() >= s.EndHour {
		return false
	}
	weekday := int(t.Weekday())
	for _, d := range s.AvailableDays {
		if d == weekday {
			return true
		}
	}
	return false
}

type ServiceUpdate struct {
	Name            *string  `json:"name,omitempty" validate:"omitempty,min=2,max=150"`
	Description     *string  `json:"description,omitempty" validate:"omitempty,max=5000"`
	Category        *string  `json:"category,omitempty" validate:"omitempty,min=2,max=60"`
	Price           *float64 `json:"price,omitempty" validate:"omitempty,gt=0"`
	DurationMinutes *int     `json:"durationMinutes,omitempty" validate:"omitempty,gt=0,max=1440"`
	Capacity        *int     `json:"capacity,omitempty" validate:"omitempty,min=1,max=1000"`
	AvailableDays   []int    `json:"availableDays,omitempty" validate:"omitempty,min=1,max=7,unique,dive,min=0,max=6"`
	StartHour       *int     `json:"startHour,omitempty" validate:"omitempty,min=0,max=23"`
	EndHour         *int     `json:"endHour,omitempty" validate:"omitempty,min=1,max=24"`
	Images          []string `json:"images,omitempty" validate:"omitempty,max=50,dive,url"`
	IsActive        *bool    `json:"isActive,omitempty"`
}
