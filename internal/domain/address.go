package domain

import (
	"slices"
	"strings"
)

// DefaultCountry is applied when a submitted address leaves country blank.
const DefaultCountry = "USA"

// User-facing messages of the address form.
const (
	MsgAddressIncomplete   = "Please fill in all required fields"
	MsgOutsideDeliveryArea = "Sorry, we don't deliver to this area yet. Please try a different address."
)

// Coordinates is a WGS84 position.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Address is the single delivery address a session keeps.
type Address struct {
	Street      string       `json:"street"`
	City        string       `json:"city"`
	State       string       `json:"state"`
	ZipCode     string       `json:"zip_code"`
	Country     string       `json:"country"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// IsComplete reports whether street, city, state and ZIP code are all filled in.
func (a Address) IsComplete() bool {
	for _, v := range []string{a.Street, a.City, a.State, a.ZipCode} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

// WithDefaults fills a blank country with DefaultCountry.
func (a Address) WithDefaults() Address {
	if strings.TrimSpace(a.Country) == "" {
		a.Country = DefaultCountry
	}
	return a
}

// DeliveryArea is a served city with its literal set of ZIP codes.
type DeliveryArea struct {
	City     string   `json:"city"`
	State    string   `json:"state"`
	ZipCodes []string `json:"zip_codes"`
}

// DeliveryAreas is the fixed list of areas the storefront delivers to.
var DeliveryAreas = []DeliveryArea{
	{City: "New York", State: "NY", ZipCodes: []string{"10001", "10002", "10003", "10004", "10005"}},
	{City: "Los Angeles", State: "CA", ZipCodes: []string{"90001", "90002", "90003", "90004", "90005"}},
	{City: "Chicago", State: "IL", ZipCodes: []string{"60601", "60602", "60603", "60604", "60605"}},
}

// InDeliveryArea reports whether a matches an area: city and state compare
// case-insensitively and the ZIP code must be one of the area's codes exactly.
func InDeliveryArea(a Address) bool {
	for _, area := range DeliveryAreas {
		if strings.EqualFold(area.City, a.City) &&
			strings.EqualFold(area.State, a.State) &&
			slices.Contains(area.ZipCodes, a.ZipCode) {
			return true
		}
	}
	return false
}

// CheckSubmission validates a form-submitted address and returns the message
// to show, or "" when the address can be saved.
func CheckSubmission(a Address) string {
	if !a.IsComplete() {
		return MsgAddressIncomplete
	}
	if !InDeliveryArea(a) {
		return MsgOutsideDeliveryArea
	}
	return ""
}

// PlaceholderAddress is the address synthesized for a geolocated position
// until a real reverse geocoder is configured.
func PlaceholderAddress(c Coordinates) Address {
	return Address{
		Street:      "123 Current Location St",
		City:        "New York",
		State:       "NY",
		ZipCode:     "10001",
		Country:     DefaultCountry,
		Coordinates: &c,
	}
}

// AddressBook is the address state a session sees: the saved address, whether
// it came from geolocation, and the advisory error of the last failed operation.
type AddressBook struct {
	Current         *Address `json:"current_address"`
	LocationEnabled bool     `json:"is_location_enabled"`
	Error           string   `json:"error,omitempty"`
}
