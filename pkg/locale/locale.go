// Package locale resolves a guest's timezone from their phone number.
package locale

import (
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/nyaruka/phonenumbers"
)

type Country struct {
	Code            string // ISO 3166-1 alpha-2
	Name            string
	DefaultTimezone string // IANA name
}

// Countries lists the regions guests are expected from. Anything else falls back to UTC.
var Countries = map[string]Country{
	"US": {Code: "US", Name: "United States", DefaultTimezone: "America/New_York"},
	"CA": {Code: "CA", Name: "Canada", DefaultTimezone: "America/Toronto"},
	"GB": {Code: "GB", Name: "United Kingdom", DefaultTimezone: "Europe/London"},
	"IL": {Code: "IL", Name: "Israel", DefaultTimezone: "Asia/Jerusalem"},
	"DE": {Code: "DE", Name: "Germany", DefaultTimezone: "Europe/Berlin"},
	"FR": {Code: "FR", Name: "France", DefaultTimezone: "Europe/Paris"},
	"ID": {Code: "ID", Name: "Indonesia", DefaultTimezone: "Asia/Jakarta"},
}

// CountryForPhone returns the country of an E.164 phone number, or nil.
func CountryForPhone(phone string) *Country {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil
	}
	num, err := phonenumbers.Parse(phone, "")
	if err != nil {
		return nil
	}
	country, ok := Countries[phonenumbers.GetRegionCodeForNumber(num)]
	if !ok {
		return nil
	}
	return &country
}

// LocationForPhone returns the default timezone of the phone's country, UTC when unknown.
func LocationForPhone(phone string) *time.Location {
	country := CountryForPhone(phone)
	if country == nil {
		return time.UTC
	}
	loc, err := time.LoadLocation(country.DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
