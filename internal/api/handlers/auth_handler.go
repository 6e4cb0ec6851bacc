package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"hookstash/internal/pkg/errors"
	"hookstash/internal/platform/audit"
	"hookstash/internal/platform/auth"
	"hookstash/internal/platform/models"
	"hookstash/internal/platform/oidc"
	"hookstash/internal/platform/repositories"
)

// Group names from the provider that map to local privilege flags.
// Superuser implies staff.
const (
	superuserGroup = "/superuser"
	staffGroup     = "/staff"
)

type AuthHandler struct {
	userRepo *repositories.UserRepository
	tokenSvc *auth.TokenService
	oidc     *oidc.Client
	audit    *audit.Logger
}

func NewAuthHandler(userRepo *repositories.UserRepository, tokenSvc *auth.TokenService, oidcClient *oidc.Client, auditLog *audit.Logger) *AuthHandler {
	return &AuthHandler{
		userRepo: userRepo,
		tokenSvc: tokenSvc,
		oidc:     oidcClient,
		audit:    auditLog,
	}
}

type LoginResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         *models.User `json:"user"`
}

// Login is both ends of the authorization-code flow: without a code it
// redirects to the provider, with one it exchanges, syncs the local user
// and issues session tokens.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Redirect(w, r, h.oidc.AuthCodeURL(uuid.NewString()), http.StatusTemporaryRedirect)
		return
	}

	accessToken, err := h.oidc.Exchange(r.Context(), code)
	if err != nil {
		log.Error().Err(err).Msg("oidc token exchange failed")
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Authentication failed", nil)
		return
	}

	info, err := h.oidc.FetchUserInfo(r.Context(), accessToken)
	if err != nil {
		log.Error().Err(err).Msg("oidc userinfo fetch failed")
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Authentication failed", nil)
		return
	}

	user, err := h.syncUser(info)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to sync user", nil)
		return
	}

	sessionToken, err := h.tokenSvc.GenerateAccessToken(user)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to generate token", nil)
		return
	}
	refreshToken, err := h.tokenSvc.GenerateRefreshToken(user.ID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to generate token", nil)
		return
	}

	h.audit.Log(r.Context(), "auth.login", "user", user.ID, map[string]interface{}{"username": user.Username})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(LoginResponse{
		AccessToken:  sessionToken,
		RefreshToken: refreshToken,
		User:         user,
	})
}

// syncUser upserts the local identity keyed by preferred_username, mirroring
// the provider's profile fields and group-derived privilege flags.
func (h *AuthHandler) syncUser(info *oidc.UserInfo) (*models.User, error) {
	isSuperuser := containsGroup(info.Groups, superuserGroup)
	isStaff := containsGroup(info.Groups, staffGroup) || isSuperuser

	user, err := h.userRepo.GetByUsername(info.PreferredUsername)
	if err != nil {
		return nil, err
	}

	if user == nil {
		user = &models.User{
			Username:    info.PreferredUsername,
			Email:       info.Email,
			FirstName:   info.GivenName,
			LastName:    info.FamilyName,
			IsStaff:     isStaff,
			IsSuperuser: isSuperuser,
		}
		if err := h.userRepo.Create(user); err != nil {
			return nil, err
		}
		return user, nil
	}

	changed := user.Email != info.Email ||
		user.FirstName != info.GivenName ||
		user.LastName != info.FamilyName ||
		user.IsStaff != isStaff ||
		user.IsSuperuser != isSuperuser

	if changed {
		user.Email = info.Email
		user.FirstName = info.GivenName
		user.LastName = info.FamilyName
		user.IsStaff = isStaff
		user.IsSuperuser = isSuperuser
		if err := h.userRepo.Update(user); err != nil {
			return nil, err
		}
	}

	return user, nil
}

func containsGroup(groups []string, name string) bool {
	for _, g := range groups {
		if g == name {
			return true
		}
	}
	return false
}
