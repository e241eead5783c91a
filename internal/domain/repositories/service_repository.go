package repositories

import (
	"context"

	"github.com/studioavelar/booking-backend/internal/domain/entities"
)

// ServiceRepository defines read access to the service catalog
type ServiceRepository interface {
	GetByID(ctx context.Context, id string) (*entities.Service, error)
	ListActive(ctx context.Context) ([]*entities.Service, error)
}
