package repositories

import (
	"context"

	"github.com/studioavelar/booking-backend/internal/domain/entities"
)

// PackageRepository defines the package operations the booking core needs.
// Package creation belongs to the purchase flow and is not part of this
// interface; credits are consumed inside BookingRepository.Book.
type PackageRepository interface {
	GetByID(ctx context.Context, id string) (*entities.Package, error)
	// FindReversible returns the most recently updated ACTIVE package for
	// the user and service with at least one used session, or nil when none
	// qualifies. Used as the fallback when an appointment predates the
	// package_id column.
	FindReversible(ctx context.Context, userID, serviceID string) (*entities.Package, error)
	// ReverseCredit returns one consumed session to the package and
	// reactivates it if the decrement takes it below its total
	ReverseCredit(ctx context.Context, packageID string) error
}
