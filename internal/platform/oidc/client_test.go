package oidc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"hookstash/internal/platform/config"
)

func TestClient_AuthCodeURL(t *testing.T) {
	client := NewClient(config.OIDCConfig{
		IssuerURL:   "https://id.example.com/realms/main",
		ClientID:    "hookstash",
		RedirectURL: "http://localhost:8080/accounts/login",
	})

	raw := client.AuthCodeURL("state-123")
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("Failed to parse URL: %v", err)
	}

	if u.Path != "/realms/main/protocol/openid-connect/auth" {
		t.Errorf("Unexpected path %s", u.Path)
	}
	q := u.Query()
	if q.Get("client_id") != "hookstash" {
		t.Errorf("Expected client_id hookstash, got %q", q.Get("client_id"))
	}
	if q.Get("response_type") != "code" {
		t.Errorf("Expected response_type code, got %q", q.Get("response_type"))
	}
	if q.Get("state") != "state-123" {
		t.Errorf("Expected state to round-trip, got %q", q.Get("state"))
	}
	if q.Get("scope") != "openid profile roles" {
		t.Errorf("Expected default scopes, got %q", q.Get("scope"))
	}
}

func TestClient_Exchange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/protocol/openid-connect/token" {
			http.NotFound(w, r)
			return
		}
		if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
			t.Errorf("Unexpected content type %q", ct)
		}
		if r.FormValue("code") != "auth-code" || r.FormValue("client_secret") != "secret" {
			http.Error(w, `{"error": "invalid_grant"}`, http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"access_token": "tok"})
	}))
	defer srv.Close()

	client := NewClient(config.OIDCConfig{
		IssuerURL:    srv.URL,
		ClientID:     "hookstash",
		ClientSecret: "secret",
	})

	token, err := client.Exchange(context.Background(), "auth-code")
	if err != nil {
		t.Fatalf("Exchange failed: %v", err)
	}
	if token != "tok" {
		t.Errorf("Expected token tok, got %q", token)
	}

	if _, err := client.Exchange(context.Background(), "wrong-code"); err == nil {
		t.Error("Expected an error for a rejected code")
	}
}

func TestClient_FetchUserInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"sub":                "abc",
			"preferred_username": "jdoe",
			"groups":             []string{"/staff"},
		})
	}))
	defer srv.Close()

	client := NewClient(config.OIDCConfig{IssuerURL: srv.URL})

	info, err := client.FetchUserInfo(context.Background(), "tok")
	if err != nil {
		t.Fatalf("FetchUserInfo failed: %v", err)
	}
	if info.PreferredUsername != "jdoe" {
		t.Errorf("Expected username jdoe, got %q", info.PreferredUsername)
	}
	if len(info.Groups) != 1 || info.Groups[0] != "/staff" {
		t.Errorf("Unexpected groups %v", info.Groups)
	}

	if _, err := client.FetchUserInfo(context.Background(), "bad"); err == nil {
		t.Error("Expected an error for a rejected token")
	}
}
