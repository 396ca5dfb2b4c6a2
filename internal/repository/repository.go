package repository

import (
	"context"
	"database/sql"
	"time"

	drive "drive_diagnostics"
)

type Authorization interface {
	Create(ctx context.Context, username, hash string) (int, error)
	GetByUsername(ctx context.Context, username string) (*drive.User, error)
}

type EventRepo interface {
	Append(ctx context.Context, e drive.DiagnosticEvent) error
	List(ctx context.Context, from, to time.Time, kind, component string) ([]drive.DiagnosticEvent, error)
}

type MaintenanceRepo interface {
	Save(ctx context.Context, rec drive.MaintenanceRecord) error
	Load(ctx context.Context) ([]drive.MaintenanceRecord, error)
}

type Repository struct {
	Events      EventRepo
	Maintenance MaintenanceRepo
	Auth        Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Events:      NewEventSQLite(db),
		Maintenance: NewMaintenanceSQLite(db),
		Auth:        NewUserRepository(db),
	}
}
