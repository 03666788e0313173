package sanitizer

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// Regions tried, in order, for numbers written without a country code.
var fallbackRegions = []string{
	"US",
	"GB",
	"IL",
	"FR",
	"DE",
	"ES",
	"IT",
}

func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)

	if phone == "" {
		return ""
	}

	if !strings.HasPrefix(phone, "+") {
		if normalized := parseValid("+"+phone, ""); normalized != "" {
			return normalized
		}
		for _, region := range fallbackRegions {
			if normalized := parseValid(phone, region); normalized != "" {
				return normalized
			}
		}
		return ""
	}

	return parseValid(phone, "")
}

func parseValid(phone, region string) string {
	parsed, err := phonenumbers.Parse(phone, region)
	if err != nil || !phonenumbers.IsValidNumber(parsed) {
		return ""
	}
	return phonenumbers.Format(parsed, phonenumbers.E164)
}
