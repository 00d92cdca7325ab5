package model

import "time"

// Host represents a property manager whose year is being recapped.  This
// struct corresponds to a row in the `hosts` table.
//
// Fields:
//
//	ID        – stable UUID-shaped identifier; never exposed raw in short links.
//	Name      – display name of the host (e.g. "Horizon Stays").
//	Location  – city or region shown in the admin host picker.
//	Stats     – read-only statistics blob the slides are composed from.
//	CreatedAt – timestamp when the host row was created.
type Host struct {
	ID        string     `json:"id"`       // hosts.id
	Name      string     `json:"name"`     // hosts.name
	Location  string     `json:"location"` // hosts.location
	Stats     *HostStats `json:"stats,omitempty"`
	CreatedAt time.Time  `json:"created_at"` // hosts.created_at
}

// Coordinates is a [longitude, latitude] pair.
type Coordinates [2]float64

// GuestOrigin aggregates guests by home city for the map slide.
type GuestOrigin struct {
	City        string      `json:"city"`
	Country     string      `json:"country"`
	Count       int         `json:"count"`
	Coordinates Coordinates `json:"coordinates"`
}

// MonthlyDataPoint is one month of occupancy and revenue.
type MonthlyDataPoint struct {
	Month     string  `json:"month"`
	Occupancy float64 `json:"occupancy"`
	Revenue   float64 `json:"revenue"`
}

// Review is a guest review shown on the review slide.
type Review struct {
	Text     string `json:"text"`
	Rating   int    `json:"rating"`
	Date     string `json:"date,omitempty"`
	Property string `json:"property,omitempty"`
}

// GuestRecord holds one guest's stay, keyed by the guest's secret token.  It
// never carries the guest's email or name.
type GuestRecord struct {
	Origin       string  `json:"origin"`
	CheckIn      string  `json:"check_in"`
	CheckOut     string  `json:"check_out"`
	NightsStayed int     `json:"nights_stayed"`
	PropertyName string  `json:"property_name,omitempty"`
	LocalSpend   float64 `json:"local_spend,omitempty"`
	SavedVsHotel float64 `json:"saved_vs_hotel,omitempty"`
	TheirReview  *Review `json:"their_review,omitempty"`
}

// StaffRecord holds one staff member's year, keyed by their secret token.
type StaffRecord struct {
	Role                  string `json:"role"`
	CleaningHours         int    `json:"cleaning_hours,omitempty"`
	TurnoversCompleted    int    `json:"turnovers_completed,omitempty"`
	FiveStarReviewsEarned int    `json:"five_star_reviews_earned,omitempty"`
	MaintenanceResolved   int    `json:"maintenance_resolved,omitempty"`
}

// HostStats is the per-host statistics blob.  The story core treats it as
// opaque data handed to the renderer; only Year is read server side.
type HostStats struct {
	Year                     int                    `json:"year"`
	TotalGuests              int                    `json:"total_guests"`
	TotalNights              int                    `json:"total_nights"`
	TotalRevenue             float64                `json:"total_revenue"`
	OccupancyRate            float64                `json:"occupancy_rate"`
	DirectBookingIncrease    float64                `json:"direct_booking_increase"`
	EconomicImpact           float64                `json:"economic_impact"`
	LocalBusinessesSupported int                    `json:"local_businesses_supported"`
	TopSearchTerm            string                 `json:"top_search_term,omitempty"`
	BusiestDate              string                 `json:"busiest_date,omitempty"`
	HomeCoordinates          Coordinates            `json:"home_coordinates"`
	MonthlyData              []MonthlyDataPoint     `json:"monthly_data,omitempty"`
	GuestOrigins             []GuestOrigin          `json:"guest_origins,omitempty"`
	SpotlightReview          *Review                `json:"spotlight_review,omitempty"`
	Guests                   map[string]GuestRecord `json:"guests,omitempty"`
	Staff                    map[string]StaffRecord `json:"staff,omitempty"`
}

// PlatformStats are the brand-wide numbers used by the HOSTAI story.
type PlatformStats struct {
	Year                   int     `json:"year"`
	TotalPropertiesManaged int     `json:"total_properties_managed"`
	CountriesActive        int     `json:"countries_active"`
	PlatformGlobalRevenue  float64 `json:"platform_global_revenue"`
	AIConversationsHandled int     `json:"ai_conversations_handled"`
	TotalGuestsServed      int     `json:"total_guests_served"`
}
