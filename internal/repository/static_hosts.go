package repository

import (
	"context"
	"strings"
	"time"

	"github.com/iliyamo/wrapped-story/internal/model"
	"github.com/iliyamo/wrapped-story/internal/utils"
)

// StaticHostRepo is an in-memory host directory.  It backs local runs and
// tests, and is the fallback when MySQL is not configured.  Hosts are kept in
// insertion order, which doubles as creation order.
type StaticHostRepo struct {
	hosts    []*model.Host
	platform model.PlatformStats
}

// NewStaticHostRepo returns a directory holding hosts in the given order.
func NewStaticHostRepo(platform model.PlatformStats, hosts ...*model.Host) *StaticHostRepo {
	return &StaticHostRepo{hosts: hosts, platform: platform}
}

// NewSampleHostRepo returns the four demo hosts and the demo platform stats.
func NewSampleHostRepo() *StaticHostRepo {
	return NewStaticHostRepo(SamplePlatformStats(), SampleHosts()...)
}

func (r *StaticHostRepo) List(_ context.Context) ([]*model.Host, error) {
	out := make([]*model.Host, len(r.hosts))
	copy(out, r.hosts)
	return out, nil
}

func (r *StaticHostRepo) Get(_ context.Context, id string) (*model.Host, error) {
	for _, h := range r.hosts {
		if strings.EqualFold(h.ID, id) {
			return h, nil
		}
	}
	return nil, ErrHostNotFound
}

func (r *StaticHostRepo) FindByToken(_ context.Context, token string) (*model.Host, error) {
	for _, h := range r.hosts {
		if utils.HostToken(h.ID) == token {
			return h, nil
		}
	}
	return nil, ErrHostNotFound
}

func (r *StaticHostRepo) Search(_ context.Context, q string) ([]*model.Host, error) {
	q = strings.ToLower(strings.TrimSpace(q))
	out := make([]*model.Host, 0, len(r.hosts))
	for _, h := range r.hosts {
		if q == "" ||
			strings.Contains(strings.ToLower(h.Name), q) ||
			strings.Contains(strings.ToLower(h.Location), q) {
			out = append(out, h)
		}
	}
	return out, nil
}

func (r *StaticHostRepo) Platform(_ context.Context) (*model.PlatformStats, error) {
	p := r.platform
	return &p, nil
}

// Sample data.  Guest and staff records are keyed by the namespaced tokens
// of the demo addresses, so personal links built from those addresses
// resolve.

// SampleGuestEmails and SampleStaffEmails are the demo viewers with records
// in the sample stats.
var (
	SampleGuestEmails = []string{
		"jordan.rivera@email.com",
		"emma.wilson@email.com",
		"kenji.tanaka@email.com",
	}
	SampleStaffEmails = []string{
		"elena.martinez@company.com",
		"james.wilson@company.com",
	}
)

// SamplePlatformStats are the brand-wide figures of the demo year.
func SamplePlatformStats() model.PlatformStats {
	return model.PlatformStats{
		Year:                   2025,
		TotalPropertiesManaged: 14800,
		CountriesActive:        42,
		PlatformGlobalRevenue:  520_000_000,
		AIConversationsHandled: 3_200_000,
		TotalGuestsServed:      1_250_000,
	}
}

// SampleHosts returns fresh copies of the four demo hosts.
func SampleHosts() []*model.Host {
	base := time.Date(2024, time.January, 15, 9, 0, 0, 0, time.UTC)
	return []*model.Host{
		{
			ID:        "550e8400-e29b-41d4-a716-446655440000",
			Name:      "Horizon Stays",
			Location:  "Washington DC",
			CreatedAt: base,
			Stats:     horizonStats(),
		},
		{
			ID:        "a1b2c3d4-e5f6-7890-abcd-ef1234567890",
			Name:      "Coastal Retreats",
			Location:  "Miami Beach",
			CreatedAt: base.Add(24 * time.Hour),
			Stats:     smallStats(2025, 412, 3180, 498_000, model.Coordinates{-80.1300, 25.7907}),
		},
		{
			ID:        "b2c3d4e5-f6a7-8901-bcde-f12345678901",
			Name:      "Mountain View Rentals",
			Location:  "Aspen",
			CreatedAt: base.Add(48 * time.Hour),
			Stats:     smallStats(2025, 288, 2410, 1_120_000, model.Coordinates{-106.8175, 39.1911}),
		},
		{
			ID:        "c3d4e5f6-a7b8-9012-cdef-123456789012",
			Name:      "Urban Nest Collective",
			Location:  "Brooklyn",
			CreatedAt: base.Add(72 * time.Hour),
			Stats:     smallStats(2025, 530, 2960, 610_000, model.Coordinates{-73.9442, 40.6782}),
		},
	}
}

func horizonStats() *model.HostStats {
	review := &model.Review{
		Text:     "Incredible experience from start to finish. The space was immaculate and the host communication was top-notch.",
		Rating:   5,
		Property: "Horizon Premier Suite",
	}
	return &model.HostStats{
		Year:                     2025,
		TotalGuests:              756,
		TotalNights:              68420,
		TotalRevenue:             824_000,
		OccupancyRate:            84,
		DirectBookingIncrease:    28,
		EconomicImpact:           1_180_000,
		LocalBusinessesSupported: 24,
		TopSearchTerm:            "downtown luxury rentals",
		BusiestDate:              "June 14",
		HomeCoordinates:          model.Coordinates{-77.0369, 38.9072},
		MonthlyData: []model.MonthlyDataPoint{
			{Month: "Jan", Occupancy: 65, Revenue: 45000},
			{Month: "Feb", Occupancy: 70, Revenue: 52000},
			{Month: "Mar", Occupancy: 85, Revenue: 78000},
			{Month: "Apr", Occupancy: 92, Revenue: 89000},
			{Month: "May", Occupancy: 98, Revenue: 95000},
			{Month: "Jun", Occupancy: 95, Revenue: 92000},
			{Month: "Jul", Occupancy: 88, Revenue: 85000},
			{Month: "Aug", Occupancy: 80, Revenue: 75000},
			{Month: "Sep", Occupancy: 90, Revenue: 88000},
			{Month: "Oct", Occupancy: 94, Revenue: 91000},
			{Month: "Nov", Occupancy: 82, Revenue: 70000},
			{Month: "Dec", Occupancy: 75, Revenue: 60000},
		},
		GuestOrigins: []model.GuestOrigin{
			{City: "London", Country: "UK", Count: 124, Coordinates: model.Coordinates{-0.1276, 51.5074}},
			{City: "New York", Country: "USA", Count: 98, Coordinates: model.Coordinates{-74.0060, 40.7128}},
			{City: "Los Angeles", Country: "USA", Count: 85, Coordinates: model.Coordinates{-118.2437, 34.0522}},
			{City: "Paris", Country: "France", Count: 65, Coordinates: model.Coordinates{2.3522, 48.8566}},
			{City: "San Francisco", Country: "USA", Count: 62, Coordinates: model.Coordinates{-122.4194, 37.7749}},
			{City: "Toronto", Country: "Canada", Count: 56, Coordinates: model.Coordinates{-79.3832, 43.6532}},
			{City: "Tokyo", Country: "Japan", Count: 42, Coordinates: model.Coordinates{139.6917, 35.6895}},
			{City: "Austin", Country: "USA", Count: 22, Coordinates: model.Coordinates{-97.7431, 30.2672}},
		},
		SpotlightReview: review,
		Guests: map[string]model.GuestRecord{
			utils.GuestToken("jordan.rivera@email.com"): {
				Origin: "Austin", CheckIn: "2025-06-12", CheckOut: "2025-06-16", NightsStayed: 4,
				PropertyName: "Horizon Premier Suite", LocalSpend: 640, SavedVsHotel: 215,
				TheirReview: &model.Review{Text: "Felt like home from the first night.", Rating: 5},
			},
			utils.GuestToken("emma.wilson@email.com"): {
				Origin: "London", CheckIn: "2025-04-03", CheckOut: "2025-04-10", NightsStayed: 7,
				PropertyName: "Capitol Hill Loft", LocalSpend: 1120, SavedVsHotel: 380,
			},
			utils.GuestToken("kenji.tanaka@email.com"): {
				Origin: "Tokyo", CheckIn: "2025-10-20", CheckOut: "2025-10-25", NightsStayed: 5,
				PropertyName: "Urban Loft with Skyline Views", LocalSpend: 890, SavedVsHotel: 260,
			},
		},
		Staff: map[string]model.StaffRecord{
			utils.StaffToken("elena.martinez@company.com"): {
				Role: "Housekeeping Lead", CleaningHours: 1240, TurnoversCompleted: 412, FiveStarReviewsEarned: 96,
			},
			utils.StaffToken("james.wilson@company.com"): {
				Role: "Maintenance", MaintenanceResolved: 298, FiveStarReviewsEarned: 38,
			},
		},
	}
}

func smallStats(year, guests, nights int, revenue float64, home model.Coordinates) *model.HostStats {
	return &model.HostStats{
		Year:            year,
		TotalGuests:     guests,
		TotalNights:     nights,
		TotalRevenue:    revenue,
		OccupancyRate:   78,
		HomeCoordinates: home,
		SpotlightReview: &model.Review{Text: "Spotless, thoughtful and easy. We will be back.", Rating: 5},
	}
}
