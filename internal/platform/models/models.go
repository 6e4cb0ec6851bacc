package models

import "encoding/json"

type User struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   int64  `json:"updated_at"`
}

// Webhook is a stored payload document, not an outbound delivery target.
type Webhook struct {
	ID        string          `json:"id"`
	UserID    string          `json:"-"`
	Data      json.RawMessage `json:"data"`
	CreatedAt int64           `json:"created_at"`
}
