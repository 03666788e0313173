package locale

import (
	"testing"
)

func TestInferCountryFromPhone(t *testing.T) {
	tests := []struct {
		name     string
		phone    string
		wantCode string
		wantNil  bool
	}{
		{
			name:     "Israel phone",
			phone:    "+972541234567",
			wantCode: "IL",
		},
		{
			name:     "Israel phone without plus",
			phone:    "972541234567",
			wantCode: "IL",
		},
		{
			name:     "US phone",
			phone:    "+12125551234",
			wantCode: "US",
		},
		{
			name:     "UK phone",
			phone:    "+442071838750",
			wantCode: "GB",
		},
		{
			name:    "unserved country",
			phone:   "+5511987654321",
			wantNil: true,
		},
		{
			name:    "empty phone",
			phone:   "",
			wantNil: true,
		},
		{
			name:    "invalid phone",
			phone:   "not-a-phone",
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InferCountryFromPhone(tt.phone)
			if tt.wantNil {
				if got != nil {
					t.Errorf("InferCountryFromPhone(%q) = %v, want nil", tt.phone, got)
				}
				return
			}
			if got == nil {
				t.Fatalf("InferCountryFromPhone(%q) = nil, want country with code %q", tt.phone, tt.wantCode)
			}
			if got.Code != tt.wantCode {
				t.Errorf("InferCountryFromPhone(%q).Code = %q, want %q", tt.phone, got.Code, tt.wantCode)
			}
		})
	}
}

func TestInferTimezoneFromPhone(t *testing.T) {
	tests := []struct {
		name  string
		phone string
		want  string
	}{
		{
			name:  "Israel phone returns Jerusalem timezone",
			phone: "+972541234567",
			want:  "Asia/Jerusalem",
		},
		{
			name:  "US phone returns New York timezone",
			phone: "+12125551234",
			want:  "America/New_York",
		},
		{
			name:  "empty phone returns UTC",
			phone: "",
			want:  "UTC",
		},
		{
			name:  "invalid phone returns UTC",
			phone: "invalid",
			want:  "UTC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InferTimezoneFromPhone(tt.phone)
			if got != tt.want {
				t.Errorf("InferTimezoneFromPhone(%q) = %q, want %q", tt.phone, got, tt.want)
			}
		})
	}
}

func TestInferCurrencyFromPhone(t *testing.T) {
	tests := []struct {
		name  string
		phone string
		want  string
	}{
		{"UK", "+442071838750", "GBP"},
		{"Israel", "+972541234567", "ILS"},
		{"unknown falls back", "", "USD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InferCurrencyFromPhone(tt.phone, "USD"); got != tt.want {
				t.Errorf("InferCurrencyFromPhone(%q) = %q, want %q", tt.phone, got, tt.want)
			}
		})
	}
}
