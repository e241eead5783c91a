package entities

import "time"

// PackageStatus represents the lifecycle of a prepaid session bundle
type PackageStatus string

const (
	PackageStatusActive    PackageStatus = "ACTIVE"
	PackageStatusCompleted PackageStatus = "COMPLETED"
)

// Package represents a prepaid bundle of sessions bound to one service
type Package struct {
	ID            string        `json:"id" db:"id"`
	UserID        string        `json:"user_id" db:"user_id"`
	ServiceID     string        `json:"service_id" db:"service_id"`
	TotalSessions int           `json:"total_sessions" db:"total_sessions"`
	UsedSessions  int           `json:"used_sessions" db:"used_sessions"`
	Status        PackageStatus `json:"status" db:"status"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
}

// HasCredit reports whether the package can fund one more booking
func (p *Package) HasCredit() bool {
	return p.Status == PackageStatusActive && p.UsedSessions < p.TotalSessions
}

// PackageUsage is the usage snapshot returned alongside a booking that
// consumed a package credit
type PackageUsage struct {
	PackageID         string `json:"package_id"`
	UsedSessions      int    `json:"used_sessions"`
	TotalSessions     int    `json:"total_sessions"`
	RemainingSessions int    `json:"remaining_sessions"`
}
