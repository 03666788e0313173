package locale

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// InferCountryFromPhone resolves the country of an E.164 number, or nil when
// the number is invalid or the country is not served.
func InferCountryFromPhone(phone string) *Country {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil
	}
	if !strings.HasPrefix(phone, "+") {
		phone = "+" + phone
	}

	parsed, err := phonenumbers.Parse(phone, "")
	if err != nil || !phonenumbers.IsValidNumber(parsed) {
		return nil
	}

	country, ok := Countries[phonenumbers.GetRegionCodeForNumber(parsed)]
	if !ok {
		return nil
	}
	return &country
}

func InferTimezoneFromPhone(phone string) string {
	if country := InferCountryFromPhone(phone); country != nil {
		return country.DefaultTimezone
	}
	return DefaultTimezone
}

// InferCurrencyFromPhone falls back to the given currency when the country
// cannot be determined.
func InferCurrencyFromPhone(phone, fallback string) string {
	if country := InferCountryFromPhone(phone); country != nil {
		return country.Currency
	}
	return fallback
}

func InferLanguageFromPhone(phone string) string {
	if country := InferCountryFromPhone(phone); country != nil {
		return country.Language
	}
	return DefaultLanguage
}
