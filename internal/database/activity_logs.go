package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"touragency/internal/models"
)

func (db *DB) CreateActivityLog(ctx context.Context, entry *models.ActivityLogEntry) error {
	query := `INSERT INTO activity_logs (user_id, action, details, ip_address, timestamp) VALUES (?, ?, ?, ?, ?)`
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	var userID sql.NullInt64
	if entry.UserID != nil {
		userID = sql.NullInt64{Int64: *entry.UserID, Valid: true}
	}
	var details sql.NullString
	if entry.Details != nil {
		details = sql.NullString{String: *entry.Details, Valid: true}
	}

	result, err := db.ExecContext(ctx, query, userID, entry.Action, details, entry.IPAddress, entry.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to create activity log: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	entry.ID = id
	return nil
}

// GetRecentActivity returns the newest entries first. The application never
// reads its own audit trail; this exists for operators and tests.
func (db *DB) GetRecentActivity(ctx context.Context, limit int) ([]*models.ActivityLogEntry, error) {
	query := `SELECT id, user_id, action, details, COALESCE(ip_address, ''), timestamp
              FROM activity_logs ORDER BY id DESC LIMIT ?`
	rows, err := db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get activity logs: %w", err)
	}
	defer rows.Close()

	var entries []*models.ActivityLogEntry
	for rows.Next() {
		var (
			e       models.ActivityLogEntry
			userID  sql.NullInt64
			details sql.NullString
		)
		if err := rows.Scan(&e.ID, &userID, &e.Action, &details, &e.IPAddress, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan activity log: %w", err)
		}
		if userID.Valid {
			e.UserID = &userID.Int64
		}
		if details.Valid {
			e.Details = &details.String
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
