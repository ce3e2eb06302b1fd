package state

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// AmenityType is an OpenStreetMap amenity tag value the explorer can filter on.
type AmenityType string

const (
	AmenityNone       AmenityType = ""
	AmenitySchool     AmenityType = "school"
	AmenityHospital   AmenityType = "hospital"
	AmenityRestaurant AmenityType = "restaurant"
	AmenityMall       AmenityType = "mall"
	AmenityPharmacy   AmenityType = "pharmacy"
	AmenityBank       AmenityType = "bank"
	AmenityATM        AmenityType = "atm"
	AmenityLibrary    AmenityType = "library"
	AmenityCafe       AmenityType = "cafe"
	AmenityParking    AmenityType = "parking"
	AmenityHotel      AmenityType = "hotel"
	AmenityCinema     AmenityType = "cinema"
)

// Amenities lists the selectable categories in dropdown order.
var Amenities = []AmenityType{
	AmenitySchool,
	AmenityHospital,
	AmenityRestaurant,
	AmenityMall,
	AmenityPharmacy,
	AmenityBank,
	AmenityATM,
	AmenityLibrary,
	AmenityCafe,
	AmenityParking,
	AmenityHotel,
	AmenityCinema,
}

// Valid reports whether a is AmenityNone or one of Amenities.
func (a AmenityType) Valid() bool {
	if a == AmenityNone {
		return true
	}
	for _, known := range Amenities {
		if a == known {
			return true
		}
	}
	return false
}

// Label is the human-readable dropdown text.
func (a AmenityType) Label() string {
	switch a {
	case AmenityNone:
		return "Select Amenity"
	case AmenityATM:
		return "ATM"
	default:
		return cases.Title(language.English).String(string(a))
	}
}

// ParseAmenity converts a raw value into an AmenityType.
func ParseAmenity(raw string) (AmenityType, error) {
	a := AmenityType(strings.ToLower(strings.TrimSpace(raw)))
	if !a.Valid() {
		return AmenityNone, fmt.Errorf("unknown amenity %q", raw)
	}
	return a, nil
}

// AmenityValues returns the accepted raw values including the empty selection.
func AmenityValues() []string {
	values := make([]string, 0, len(Amenities)+1)
	values = append(values, string(AmenityNone))
	for _, a := range Amenities {
		values = append(values, string(a))
	}
	return values
}
