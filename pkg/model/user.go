package model

import "time"

type Profile struct {
	FirstName string `json:"firstName" bson:"first_name"`
	LastName  string `json:"lastName" bson:"last_name"`
	Phone     string `json:"phone,omitempty" bson:"phone,omitempty"`
	Avatar    string `json:"avatar,omitempty" bson:"avatar,omitempty"`
	Country   string `json:"country,omitempty" bson:"country,omitempty"`
}

type Preferences struct {
	Currency   string `json:"currency" bson:"currency"`
	Language   string `json:"language" bson:"language"`
	Timezone   string `json:"timezone,omitempty" bson:"timezone,omitempty"`
	Newsletter bool   `json:"newsletter" bson:"newsletter"`
}

type LoyaltyTier string

const (
	TierBronze   LoyaltyTier = "bronze"
	TierSilver   LoyaltyTier = "silver"
	TierGold     LoyaltyTier = "gold"
	TierPlatinum LoyaltyTier = "platinum"
)

type Loyalty struct {
	Points         int         `json:"points" bson:"points"`
	Tier           LoyaltyTier `json:"tier" bson:"tier"`
	CompletedStays int         `json:"completedStays" bson:"completed_stays"`
}

// TierFor returns the loyalty tier reached with the given points balance.
func TierFor(points int) LoyaltyTier {
	switch {
	case points >= 10000:
		return TierPlatinum
	case points >= 5000:
		return TierGold
	case points >= 1000:
		return TierSilver
	default:
		return TierBronze
	}
}

// PaymentMethod is a saved card. Token is an opaque sealed reference and the
// raw card number is never stored.
type PaymentMethod struct {
	ID        string    `json:"id" bson:"id"`
	Brand     string    `json:"brand" bson:"brand"`
	Last4     string    `json:"last4" bson:"last4"`
	ExpMonth  int       `json:"expMonth" bson:"exp_month"`
	ExpYear   int       `json:"expYear" bson:"exp_year"`
	Token     string    `json:"-" bson:"token"`
	IsDefault bool      `json:"isDefault" bson:"is_default"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}

type User struct {
	ID             string          `json:"id,omitempty" bson:"_id,omitempty"`
	Email          string          `json:"email" bson:"email"`
	PasswordHash   string          `json:"-" bson:"password_hash"`
	Role           Role            `json:"role" bson:"role"`
	Profile        Profile         `json:"profile" bson:"profile"`
	Preferences    Preferences     `json:"preferences" bson:"preferences"`
	Loyalty        Loyalty         `json:"loyalty" bson:"loyalty"`
	PaymentMethods []PaymentMethod `json:"paymentMethods" bson:"payment_methods"`
	IsActive       bool            `json:"isActive" bson:"is_active"`
	DeletedAt      *time.Time      `json:"deletedAt,omitempty" bson:"deleted_at,omitempty"`
	LastLoginAt    *time.Time      `json:"lastLoginAt,omitempty" bson:"last_login_at,omitempty"`
	CreatedAt      time.Time       `json:"createdAt" bson:"created_at"`
	UpdatedAt      time.Time       `json:"updatedAt" bson:"updated_at"`
}

type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"firstName" validate:"required,min=1,max=60"`
	LastName  string `json:"lastName" validate:"required,min=1,max=60"`
	Phone     string `json:"phone,omitempty" validate:"omitempty,e164"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      *User     `json:"user"`
}

// ProfileUpdate has no credential or role fields; anything else in the
// payload is discarded on decode.
type ProfileUpdate struct {
	FirstName *string `json:"firstName,omitempty" validate:"omitempty,min=1,max=60"`
	LastName  *string `json:"lastName,omitempty" validate:"omitempty,min=1,max=60"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,e164"`
	Avatar    *string `json:"avatar,omitempty" validate:"omitempty,url,max=500"`
	Country   *string `json:"country,omitempty" validate:"omitempty,min=2,max=100"`
}

type PasswordChange struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=72,nefield=CurrentPassword"`
}

type PreferencesUpdate struct {
	Currency   *string `json:"currency,omitempty" validate:"omitempty,iso4217"`
	Language   *string `json:"language,omitempty" validate:"omitempty,bcp47_language_tag"`
	Timezone   *string `json:"timezone,omitempty" validate:"omitempty,timezone"`
	Newsletter *bool   `json:"newsletter,omitempty"`
}

type PaymentMethodCreate struct {
	CardNumber string `json:"cardNumber" validate:"required,credit_card"`
	ExpMonth   int    `json:"expMonth" validate:"min=1,max=12"`
	ExpYear    int    `json:"expYear" validate:"min=2000,max=2100"`
	IsDefault  bool   `json:"isDefault"`
}

type RoleUpdate struct {
	Role Role `json:"role" validate:"required,role"`
}

// UserStats totals spending per currency since bookings keep the currency of
// the resource they were made for.
type UserStats struct {
	TotalBookings     int64                   `json:"totalBookings"`
	ByStatus          map[BookingStatus]int64 `json:"byStatus"`
	TotalSpent        map[string]float64      `json:"totalSpent"`
	ReviewsWritten    int64                   `json:"reviewsWritten"`
	LoyaltyPoints     int                     `json:"loyaltyPoints"`
	LoyaltyTier       LoyaltyTier             `json:"loyaltyTier"`
	CompletedStays    int                     `json:"completedStays"`
	UpcomingBookings  int64                   `json:"upcomingBookings"`
	CompletedBookings int64                   `json:"completedBookings"`
}
