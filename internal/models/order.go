// internal/models/order.go
package models

import "time"

// Budget is the buyer's price envelope for an order. Either a min/max range
// or a fixed price is populated, never both.
type Budget struct {
	Min        float64  `json:"min"`
	Max        float64  `json:"max"`
	Currency   string   `json:"currency"`
	FixedPrice *float64 `json:"fixedPrice,omitempty"`
}

// EffectiveMin returns the lower bound of the budget envelope.
func (b *Budget) EffectiveMin() float64 {
	if b.FixedPrice != nil {
		return *b.FixedPrice
	}
	return b.Min
}

// EffectiveMax returns the upper bound of the budget envelope.
func (b *Budget) EffectiveMax() float64 {
	if b.FixedPrice != nil {
		return *b.FixedPrice
	}
	return b.Max
}

// GeoPreference expresses where the buyer wants production to happen.
type GeoPreference struct {
	Country         string   `json:"country"`
	Region          string   `json:"region,omitempty"`
	City            string   `json:"city,omitempty"`
	Latitude        *float64 `json:"latitude,omitempty"`
	Longitude       *float64 `json:"longitude,omitempty"`
	MaxDistanceKM   float64  `json:"maxDistanceKm,omitempty"`
	InternationalOK bool     `json:"internationalOk"`
}

// Location converts the preference into a Location for distance calculation.
func (g *GeoPreference) Location() Location {
	return Location{
		Latitude:  g.Latitude,
		Longitude: g.Longitude,
		Country:   g.Country,
		Region:    g.Region,
		City:      g.City,
	}
}

// Order is a manufacturing request as seen by the matching engine.
// The engine treats it as an immutable snapshot; it never writes orders.
type Order struct {
	ID                  string         `json:"id"`
	Processes           []string       `json:"processes"`
	Materials           []string       `json:"materials"`
	Certifications      []string       `json:"certifications,omitempty"`
	SpecialRequirements []string       `json:"specialRequirements,omitempty"`
	Industry            string         `json:"industry,omitempty"`
	Quantity            int            `json:"quantity"`
	Budget              *Budget        `json:"budget,omitempty"`
	Deadline            time.Time      `json:"deadline"`
	FlexibilityDays     int            `json:"flexibilityDays,omitempty"`
	GeoPreference       *GeoPreference `json:"geoPreference,omitempty"`
	Rush                bool           `json:"rush"`
}
