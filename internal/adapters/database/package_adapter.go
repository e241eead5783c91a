package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/studioavelar/booking-backend/internal/domain/entities"
	"github.com/studioavelar/booking-backend/internal/domain/repositories"
	"github.com/studioavelar/booking-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/studioavelar/booking-backend/pkg/errors"
)

var packageColumns = []interface{}{
	"id", "user_id", "service_id", "total_sessions", "used_sessions",
	"status", "created_at", "updated_at",
}

// PackageAdapter implements the PackageRepository interface
type PackageAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewPackageAdapter creates a new package adapter
func NewPackageAdapter(client *postgres.Client) repositories.PackageRepository {
	return &PackageAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// GetByID retrieves a package by ID
func (a *PackageAdapter) GetByID(ctx context.Context, id string) (*entities.Package, error) {
	query, args, err := a.db.Select(packageColumns...).
		From("packages").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	pkg, err := scanPackage(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("package with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get package", err)
	}
	return pkg, nil
}

// FindReversible returns the most recently updated ACTIVE package for the
// user and service with at least one used session, or nil when none
// qualifies
func (a *PackageAdapter) FindReversible(ctx context.Context, userID, serviceID string) (*entities.Package, error) {
	query, args, err := a.db.Select(packageColumns...).
		From("packages").
		Where(
			goqu.Ex{
				"user_id":    userID,
				"service_id": serviceID,
				"status":     string(entities.PackageStatusActive),
			},
			goqu.C("used_sessions").Gt(0),
		).
		Order(goqu.C("updated_at").Desc()).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	pkg, err := scanPackage(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to find reversible package", err)
	}
	return pkg, nil
}

// ReverseCredit returns one consumed session to the package. An exhausted
// package becomes ACTIVE again since the decrement frees a session.
func (a *PackageAdapter) ReverseCredit(ctx context.Context, packageID string) error {
	query, args, err := a.db.Update("packages").
		Set(goqu.Record{
			"used_sessions": goqu.L("used_sessions - 1"),
			"status":        string(entities.PackageStatusActive),
			"updated_at":    time.Now(),
		}).
		Where(
			goqu.Ex{"id": packageID},
			goqu.C("used_sessions").Gt(0),
		).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to reverse package credit", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to read update result", err)
	}
	if affected == 0 {
		return apperrors.NewBusinessRuleError(fmt.Sprintf("package %s has no session to reverse", packageID))
	}
	return nil
}

func scanPackage(row rowScanner) (*entities.Package, error) {
	pkg := &entities.Package{}
	err := row.Scan(
		&pkg.ID,
		&pkg.UserID,
		&pkg.ServiceID,
		&pkg.TotalSessions,
		&pkg.UsedSessions,
		&pkg.Status,
		&pkg.CreatedAt,
		&pkg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return pkg, nil
}
