// internal/models/manufacturer.go
package models

import "time"

// Capabilities is the typed form of a manufacturer's declared capability set.
// Entries are free-text and compared with fuzzy matching, since spelling and
// terminology vary across profiles.
type Capabilities struct {
	Processes      []string `json:"processes"`
	Materials      []string `json:"materials"`
	Certifications []string `json:"certifications,omitempty"`
	Industries     []string `json:"industries,omitempty"`
}

// All returns every declared capability string across categories.
func (c Capabilities) All() []string {
	out := make([]string, 0, len(c.Processes)+len(c.Materials)+len(c.Certifications)+len(c.Industries))
	out = append(out, c.Processes...)
	out = append(out, c.Materials...)
	out = append(out, c.Certifications...)
	out = append(out, c.Industries...)
	return out
}

// Location holds geographic coordinates plus administrative location.
// Coordinates are pointers because many imported profiles lack them.
type Location struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Country   string   `json:"country"`
	Region    string   `json:"region,omitempty"`
	City      string   `json:"city,omitempty"`
}

// HasCoordinates reports whether both latitude and longitude are present.
func (l Location) HasCoordinates() bool {
	return l.Latitude != nil && l.Longitude != nil
}

// Capacity describes production volume limits and current load.
type Capacity struct {
	MonthlyCapacity int     `json:"monthlyCapacity"`
	UtilizationPct  float64 `json:"utilizationPct"`
	MinOrderQty     int     `json:"minOrderQty"`
	MaxOrderQty     int     `json:"maxOrderQty"`
	MinOrderValue   float64 `json:"minOrderValue"`
	MaxOrderValue   float64 `json:"maxOrderValue"`
}

// LeadTime describes standard and rush turnaround.
type LeadTime struct {
	StandardDays  int  `json:"standardDays"`
	RushAvailable bool `json:"rushAvailable"`
	RushDays      int  `json:"rushDays,omitempty"`
}

// Performance is the manufacturer's historical track record.
// Ratings are on a 0-5 scale, OnTimeRate is a percentage.
type Performance struct {
	OverallRating       float64 `json:"overallRating"`
	QualityRating       float64 `json:"qualityRating"`
	DeliveryRating      float64 `json:"deliveryRating"`
	CommunicationRating float64 `json:"communicationRating"`
	CompletedOrders     int     `json:"completedOrders"`
	OnTimeRate          float64 `json:"onTimeRate"`
}

// ManufacturerProfile is a candidate as seen by the matching engine.
// Like Order it is a read-only snapshot supplied by the caller.
type ManufacturerProfile struct {
	ID                 string       `json:"id"`
	Name               string       `json:"name,omitempty"`
	Capabilities       Capabilities `json:"capabilities"`
	Location           Location     `json:"location"`
	Capacity           Capacity     `json:"capacity"`
	LeadTime           LeadTime     `json:"leadTime"`
	Performance        Performance  `json:"performance"`
	IsActive           bool         `json:"isActive"`
	IsVerified         bool         `json:"isVerified"`
	OnboardingComplete bool         `json:"onboardingComplete"`
	LastActiveAt       time.Time    `json:"lastActiveAt,omitempty"`
}
