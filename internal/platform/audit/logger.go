package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	apiContext "hookstash/internal/api/context"
	"hookstash/internal/platform/auth"
)

type AuditLog struct {
	ID           string                 `json:"id"`
	UserID       string                 `json:"user_id"`
	Action       string                 `json:"action"`
	ResourceType string                 `json:"resource_type"`
	ResourceID   string                 `json:"resource_id"`
	Metadata     map[string]interface{} `json:"metadata"`
	CreatedAt    int64                  `json:"created_at"`
}

type Logger struct {
	db *sql.DB
}

func NewLogger(db *sql.DB) *Logger {
	return &Logger{db: db}
}

// Log writes an audit row asynchronously. The user id is taken from the
// request claims when present.
func (l *Logger) Log(ctx context.Context, action, resourceType, resourceID string, metadata map[string]interface{}) {
	var userID string
	if claims, ok := ctx.Value(apiContext.Claims).(*auth.Claims); ok {
		userID = claims.UserID
	}

	metaJSON, _ := json.Marshal(metadata)

	entry := &AuditLog{
		ID:           "audit_" + uuid.New().String(),
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		CreatedAt:    time.Now().Unix(),
	}

	go func() {
		query := `
			INSERT INTO audit_logs (id, user_id, action, resource_type, resource_id, metadata, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`
		l.db.Exec(query, entry.ID, entry.UserID, entry.Action, entry.ResourceType, entry.ResourceID, string(metaJSON), entry.CreatedAt)
	}()
}
