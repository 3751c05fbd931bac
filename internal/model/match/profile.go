package match

import "strings"

// Gender labels used across profiles and discovery filters.
type Gender string

const (
	Male        Gender = "Male"
	Female      Gender = "Female"
	Transgender Gender = "Transgender"
)

// Genders lists every supported gender label.
var Genders = []Gender{Male, Female, Transgender}

// ParseGender normalises a free-form label. Unknown labels are rejected.
func ParseGender(raw string) (Gender, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "male", "man", "men":
		return Male, true
	case "female", "woman", "women":
		return Female, true
	case "transgender", "trans":
		return Transgender, true
	default:
		return "", false
	}
}

// Profile is a candidate surfaced on the discovery dashboard.
type Profile struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Age        int    `json:"age"`
	Gender     Gender `json:"gender"`
	County     string `json:"county"`
	Town       string `json:"town"`
	Bio        string `json:"bio"`
	ImageURL   string `json:"imageUrl"`
	IsOnline   bool   `json:"isOnline"`
	DistanceKm int    `json:"distanceKm"`
}
