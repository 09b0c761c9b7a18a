package postgres

import (
	"context"
	"encoding/json"

	"github.com/cherrycherry3/crt-backend/internal/audit"
)

type AuditLogRepository struct {
	db *DB
}

func NewAuditLogRepository(db *DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

func (r *AuditLogRepository) InsertAuditLog(ctx context.Context, entry *audit.Entry) error {
	var newValues []byte
	if entry.NewValues != nil {
		encoded, err := json.Marshal(entry.NewValues)
		if err != nil {
			return errFailedInsertAuditEvent(err)
		}
		newValues = encoded
	}

	status := entry.Status
	if status == "" {
		status = auditStatusSuccess
	}

	query := `
		INSERT INTO audit_logs (user_id, action_type, description, entity_type, entity_id, new_values, status, created_at)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7, $8)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		entry.UserID,
		entry.Action,
		entry.Description,
		entry.EntityType,
		entry.EntityID,
		newValues,
		status,
		entry.CreatedAt,
	)
	if err != nil {
		return errFailedInsertAuditEvent(err)
	}

	return nil
}
