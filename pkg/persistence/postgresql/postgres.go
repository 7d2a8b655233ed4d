// Package postgresql provides PostgreSQL persistence for deals.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	// Registers the "postgres" database/sql driver.
	_ "github.com/lib/pq"

	"github.com/paddockhq/dealflow/pkg/models"
	"github.com/paddockhq/dealflow/pkg/persistence"
	"github.com/paddockhq/dealflow/pkg/persistence/sqlbase"
)

// Persistence implements the persistence layer for PostgreSQL.
type Persistence struct {
	db       *sql.DB
	logger   *slog.Logger
	dealRepo *DealRepository
}

// NewPersistence creates a new PostgreSQL persistence layer and runs
// pending migrations.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())
	dealRepo := NewDealRepository(database, logger)

	postgres := &Persistence{
		db:       database,
		logger:   logger,
		dealRepo: dealRepo,
	}

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return postgres, nil
}

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

func (p *Persistence) Deals(ctx context.Context) ([]*models.Deal, error) {
	return p.dealRepo.GetAll(ctx)
}

func (p *Persistence) ListDeals(ctx context.Context, opts persistence.ListDealsOptions) (*persistence.DealListResult, error) {
	return p.dealRepo.List(ctx, opts)
}

func (p *Persistence) DealByID(ctx context.Context, id string) (*models.Deal, error) {
	return p.dealRepo.GetByID(ctx, id)
}

func (p *Persistence) SaveDeal(ctx context.Context, deal *models.Deal) error {
	return p.dealRepo.Save(ctx, deal)
}

func (p *Persistence) DeleteDeal(ctx context.Context, id string) error {
	return p.dealRepo.Delete(ctx, id)
}
