package model

import "time"

type ReviewRatings struct {
	Cleanliness   int `json:"cleanliness" bson:"cleanliness" validate:"min=1,max=5"`
	Accuracy      int `json:"accuracy" bson:"accuracy" validate:"min=1,max=5"`
	CheckIn       int `json:"checkIn" bson:"check_in" validate:"min=1,max=5"`
	Communication int `json:"communication" bson:"communication" validate:"min=1,max=5"`
	Location      int `json:"location" bson:"location" validate:"min=1,max=5"`
	Value         int `json:"value" bson:"value" validate:"min=1,max=5"`
}

type HostResponse struct {
	Comment     string    `json:"comment" bson:"comment"`
	RespondedAt time.Time `json:"respondedAt" bson:"responded_at"`
	RespondedBy string    `json:"respondedBy" bson:"responded_by"`
}

type Review struct {
	ID           string        `json:"id,omitempty" bson:"_id,omitempty"`
	PropertyID   string        `json:"propertyId" bson:"property_id"`
	BookingID    string        `json:"bookingId" bson:"booking_id"`
	UserID       string        `json:"userId" bson:"user_id"`
	Ratings      ReviewRatings `json:"ratings" bson:"ratings"`
	Rating       int           `json:"rating" bson:"rating"`
	Title        string        `json:"title,omitempty" bson:"title,omitempty"`
	Comment      string        `json:"comment" bson:"comment"`
	HelpfulVotes []string      `json:"-" bson:"helpful_votes"`
	HelpfulCount int           `json:"helpfulCount" bson:"helpful_count"`
	HostResponse *HostResponse `json:"hostResponse,omitempty" bson:"host_response,omitempty"`
	CreatedAt    time.Time     `json:"createdAt" bson:"created_at"`
	UpdatedAt    time.Time     `json:"updatedAt" bson:"updated_at"`
}

// HasHelpfulVote reports whether userID currently marks the review helpful.
func (r *Review) HasHelpfulVote(userID string) bool {
	for _, v := range r.HelpfulVotes {
		if v == userID {
			return true
		}
	}
	return false
}

type ReviewCreate struct {
	PropertyID string        `json:"propertyId" validate:"required,mongodb"`
	BookingID  string        `json:"bookingId" validate:"required,mongodb"`
	Ratings    ReviewRatings `json:"ratings" validate:"required"`
	Rating     int           `json:"rating" validate:"min=1,max=5"`
	Title      string        `json:"title,omitempty" validate:"omitempty,max=120"`
	Comment    string        `json:"comment" validate:"required,min=10,max=5000"`
}

type ReviewUpdate struct {
	Ratings *ReviewRatings `json:"ratings,omitempty"`
	Rating  *int           `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Title   *string        `json:"title,omitempty" validate:"omitempty,max=120"`
	Comment *string        `json:"comment,omitempty" validate:"omitempty,min=10,max=5000"`
}

type HostResponseCreate struct {
	Comment string `json:"comment" validate:"required,min=2,max=2000"`
}
