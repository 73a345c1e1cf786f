package models

import "time"

// BookingTotals are the headline counters of the admin dashboard.
type BookingTotals struct {
	Total   int64   `json:"totalBookings"`
	Monthly int64   `json:"monthlyBookings"` // created since the start of the month
	Pending int64   `json:"pendingBookings"`
	Revenue float64 `json:"totalRevenue"` // revenue-earning bookings created this year
}

// MonthlyRevenue is one point of the revenue chart. Month runs 1-12.
type MonthlyRevenue struct {
	Month    int     `json:"month"`
	Revenue  float64 `json:"revenue"`
	Bookings int64   `json:"bookings"`
}

// PackageStat is how often a package was booked and what it brought in.
type PackageStat struct {
	Package PackageKind `json:"package"`
	Count   int64       `json:"count"`
	Revenue float64     `json:"revenue"`
}

// DashboardStats is the admin overview.
type DashboardStats struct {
	Stats          DashboardCounters `json:"stats"`
	RecentBookings []DashboardEntry  `json:"recentBookings"`
	UpcomingEvents []DashboardEntry  `json:"upcomingEvents"`
}

// DashboardEntry is a booking row on the dashboard.
type DashboardEntry struct {
	BookingSummary
	CreatedAt time.Time `json:"createdAt"`
}

type DashboardCounters struct {
	BookingTotals
	UnreadContacts int64 `json:"unreadContacts"`
}

// RevenueStatuses are the statuses whose price counts as earned.
var RevenueStatuses = []BookingStatus{StatusConfirmed, StatusCompleted}

func (s BookingStatus) EarnsRevenue() bool {
	return s == StatusConfirmed || s == StatusCompleted
}

// MonthStart and YearStart return the first instant of t's month and year in loc.
func MonthStart(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
}

func YearStart(year int, loc *time.Location) time.Time {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
}
