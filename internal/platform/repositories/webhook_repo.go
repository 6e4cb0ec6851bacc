package repositories

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"hookstash/internal/platform/models"
)

type WebhookRepository struct {
	db *sql.DB
}

func NewWebhookRepository(db *sql.DB) *WebhookRepository {
	return &WebhookRepository{db: db}
}

func (r *WebhookRepository) Create(webhook *models.Webhook) error {
	webhook.ID = "wh_" + uuid.New().String()
	webhook.CreatedAt = time.Now().Unix()

	_, err := r.db.Exec(`
		INSERT INTO webhooks (id, user_id, data, created_at)
		VALUES (?, ?, ?, ?)
	`, webhook.ID, webhook.UserID, string(webhook.Data), webhook.CreatedAt)
	return err
}

// GetByIDAndUser returns (nil, nil) both for unknown ids and for records
// owned by someone else, so callers cannot tell the two apart.
func (r *WebhookRepository) GetByIDAndUser(id, userID string) (*models.Webhook, error) {
	row := r.db.QueryRow(`SELECT id, user_id, data, created_at FROM webhooks WHERE id = ? AND user_id = ?`, id, userID)
	return scanWebhook(row)
}

func (r *WebhookRepository) ListByUser(userID string) ([]*models.Webhook, error) {
	rows, err := r.db.Query(`SELECT id, user_id, data, created_at FROM webhooks WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	webhooks := []*models.Webhook{}
	for rows.Next() {
		w, err := scanWebhook(rows)
		if err != nil {
			return nil, err
		}
		webhooks = append(webhooks, w)
	}
	return webhooks, rows.Err()
}

func (r *WebhookRepository) Delete(id, userID string) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM webhooks WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// DeleteOlderThan removes every record created strictly before the cutoff.
func (r *WebhookRepository) DeleteOlderThan(cutoff int64) (int64, error) {
	res, err := r.db.Exec(`DELETE FROM webhooks WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanWebhook(s interface {
	Scan(dest ...interface{}) error
}) (*models.Webhook, error) {
	var w models.Webhook
	var data string

	err := s.Scan(&w.ID, &w.UserID, &data, &w.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	w.Data = []byte(data)
	return &w, nil
}
