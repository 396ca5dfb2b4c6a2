package repository

import (
	"context"
	"database/sql"
	drive "drive_diagnostics"
	"time"
)

type MaintenanceSQLite struct {
	db *sql.DB
}

func NewMaintenanceSQLite(db *sql.DB) *MaintenanceSQLite {
	return &MaintenanceSQLite{db: db}
}

// constants for clarity and reuse
const (
	insertOrUpdateMaintenanceSQL = `
		INSERT INTO maintenance (component_id, last_maintenance, next_maintenance)
		VALUES (?, ?, ?)
		ON CONFLICT(component_id) DO UPDATE SET
			last_maintenance=excluded.last_maintenance,
			next_maintenance=excluded.next_maintenance
	`

	selectMaintenanceSQL = `
		SELECT component_id, last_maintenance, next_maintenance
		FROM maintenance ORDER BY component_id ASC
	`
)

// Save updates or inserts the maintenance row of one component.
func (r *MaintenanceSQLite) Save(ctx context.Context, rec drive.MaintenanceRecord) error {
	// ensure timestamps are always persisted as UTC; set Last if zero
	lastUTC := rec.Last
	if lastUTC.IsZero() {
		lastUTC = time.Now().UTC()
	} else {
		lastUTC = lastUTC.UTC()
	}

	_, err := r.db.ExecContext(ctx, insertOrUpdateMaintenanceSQL,
		rec.ComponentID,
		lastUTC,
		rec.Next.UTC(),
	)
	return err
}

// Load fetches the maintenance rows of every component ever serviced.
func (r *MaintenanceSQLite) Load(ctx context.Context) ([]drive.MaintenanceRecord, error) {
	rows, err := r.db.QueryContext(ctx, selectMaintenanceSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]drive.MaintenanceRecord, 0, 8)
	for rows.Next() {
		var rec drive.MaintenanceRecord
		if err := rows.Scan(&rec.ComponentID, &rec.Last, &rec.Next); err != nil {
			return nil, err
		}
		rec.Last = rec.Last.UTC()
		rec.Next = rec.Next.UTC()
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
