package handlers

import (
	"context"
	"database/sql"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	_ "github.com/mattn/go-sqlite3"
	apiContext "hookstash/internal/api/context"
	"hookstash/internal/platform/auth"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	query := `
	CREATE TABLE users (
		id TEXT PRIMARY KEY,
		username TEXT UNIQUE NOT NULL,
		email TEXT,
		first_name TEXT,
		last_name TEXT,
		is_staff INTEGER NOT NULL DEFAULT 0,
		is_superuser INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE TABLE webhooks (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		data TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE TABLE audit_logs (
		id TEXT PRIMARY KEY,
		user_id TEXT,
		action TEXT NOT NULL,
		resource_type TEXT,
		resource_id TEXT,
		metadata TEXT,
		created_at INTEGER NOT NULL
	);
	`
	if _, err := db.Exec(query); err != nil {
		t.Fatalf("Failed to create tables: %v", err)
	}
	return db
}

// authedRequest builds a request carrying claims and route params the way
// the router middleware chain would.
func authedRequest(method, target string, body io.Reader, userID string, params httprouter.Params) *http.Request {
	req := httptest.NewRequest(method, target, body)

	ctx := req.Context()
	if userID != "" {
		ctx = context.WithValue(ctx, apiContext.Claims, &auth.Claims{UserID: userID, Username: userID})
	}
	if params != nil {
		ctx = context.WithValue(ctx, apiContext.Params, params)
	}
	return req.WithContext(ctx)
}

func webhookParams(id string) httprouter.Params {
	return httprouter.Params{{Key: "webhook_id", Value: id}}
}
