package locale

const (
	DefaultTimezone = "UTC"
	DefaultLanguage = "en"
)

type Country struct {
	Code            string // ISO 3166-1 alpha-2 country code (e.g., "PT", "US")
	Name            string // Human-readable country name
	Currency        string // ISO 4217 currency code
	Language        string // Default BCP 47 language tag
	DefaultTimezone string // IANA timezone identifier
}

var Countries = map[string]Country{
	"US": {Code: "US", Name: "United States", Currency: "USD", Language: "en", DefaultTimezone: "America/New_York"},
	"CA": {Code: "CA", Name: "Canada", Currency: "CAD", Language: "en", DefaultTimezone: "America/Toronto"},
	"GB": {Code: "GB", Name: "United Kingdom", Currency: "GBP", Language: "en", DefaultTimezone: "Europe/London"},
	"IL": {Code: "IL", Name: "Israel", Currency: "ILS", Language: "he", DefaultTimezone: "Asia/Jerusalem"},
	"FR": {Code: "FR", Name: "France", Currency: "EUR", Language: "fr", DefaultTimezone: "Europe/Paris"},
	"DE": {Code: "DE", Name: "Germany", Currency: "EUR", Language: "de", DefaultTimezone: "Europe/Berlin"},
	"ES": {Code: "ES", Name: "Spain", Currency: "EUR", Language: "es", DefaultTimezone: "Europe/Madrid"},
	"IT": {Code: "IT", Name: "Italy", Currency: "EUR", Language: "it", DefaultTimezone: "Europe/Rome"},
	"PT": {Code: "PT", Name: "Portugal", Currency: "EUR", Language: "pt", DefaultTimezone: "Europe/Lisbon"},
	"GR": {Code: "GR", Name: "Greece", Currency: "EUR", Language: "el", DefaultTimezone: "Europe/Athens"},
	"AE": {Code: "AE", Name: "United Arab Emirates", Currency: "AED", Language: "ar", DefaultTimezone: "Asia/Dubai"},
	"JP": {Code: "JP", Name: "Japan", Currency: "JPY", Language: "ja", DefaultTimezone: "Asia/Tokyo"},
	"AU": {Code: "AU", Name: "Australia", Currency: "AUD", Language: "en", DefaultTimezone: "Australia/Sydney"},
}
