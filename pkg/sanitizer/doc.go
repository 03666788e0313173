// Package sanitizer normalizes user supplied values before validation and
// storage.
//
// All functions are idempotent and never fail: invalid input yields an empty
// string or an empty slice and is left for the validators to reject.
//
// Normalization includes:
//   - Phone numbers: E.164 (+[country][number])
//   - Emails: trimmed and lower-cased
//   - Names and cities: whitespace collapsed, case preserved
//   - Tags (amenities, categories): lower-cased, whitespace collapsed
//   - Codes (discount codes, airports): upper-cased, non alphanumerics removed
//   - URLs: https enforced, host lower-cased, tracking parameters dropped
//   - Slices and comma separated lists: duplicates and empty values removed
package sanitizer
