package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/studioavelar/booking-backend/internal/domain/entities"
	"github.com/studioavelar/booking-backend/internal/domain/repositories"
	"github.com/studioavelar/booking-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/studioavelar/booking-backend/pkg/errors"
)

var serviceColumns = []interface{}{
	"id", "name", "description", "duration", "price", "price_return",
	"active", "created_at", "updated_at",
}

// ServiceAdapter implements the ServiceRepository interface
type ServiceAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewServiceAdapter creates a new service adapter
func NewServiceAdapter(client *postgres.Client) repositories.ServiceRepository {
	return &ServiceAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// GetByID retrieves a service by ID
func (a *ServiceAdapter) GetByID(ctx context.Context, id string) (*entities.Service, error) {
	query, args, err := a.db.Select(serviceColumns...).
		From("services").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	service, err := scanService(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("service with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get service", err)
	}
	return service, nil
}

// ListActive returns the bookable service catalog
func (a *ServiceAdapter) ListActive(ctx context.Context) ([]*entities.Service, error) {
	query, args, err := a.db.Select(serviceColumns...).
		From("services").
		Where(goqu.Ex{"active": true}).
		Order(goqu.C("name").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list services", err)
	}
	defer rows.Close()

	var services []*entities.Service
	for rows.Next() {
		service, err := scanService(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan service", err)
		}
		services = append(services, service)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate services", err)
	}
	return services, nil
}

func scanService(row rowScanner) (*entities.Service, error) {
	service := &entities.Service{}
	var description sql.NullString
	var priceReturn sql.NullFloat64

	err := row.Scan(
		&service.ID,
		&service.Name,
		&description,
		&service.Duration,
		&service.Price,
		&priceReturn,
		&service.Active,
		&service.CreatedAt,
		&service.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	service.Description = description.String
	if priceReturn.Valid {
		service.PriceReturn = &priceReturn.Float64
	}
	return service, nil
}
