package handlers

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/arnold/studytrack-api/internal/models"
	"github.com/arnold/studytrack-api/internal/rpc"
	"github.com/arnold/studytrack-api/internal/store"
)

const loginMethodGoogle = "google"

func (h *Handler) me(c *rpc.Call, _ rpc.Empty) (*models.User, error) {
	return c.User, nil
}

func (h *Handler) logout(c *rpc.Call, _ rpc.Empty) (models.SuccessResponse, error) {
	if c.HTTP != nil {
		h.sessions.ClearCookie(c.HTTP)
	}
	return ok(), nil
}

func (h *Handler) googleLogin(c *rpc.Call, in models.GoogleAuthRequest) (models.AuthResponse, error) {
	info, err := h.google.Verify(c.Ctx, in.IDToken)
	if err != nil {
		h.log.Warn("google token verification failed", "err", err)
		return models.AuthResponse{}, rpc.Unauthorized("Invalid Google token")
	}

	// The token's aud is the client ID of the platform that signed in.
	if len(h.cfg.GoogleClientIDs) > 0 && !contains(h.cfg.GoogleClientIDs, info.Audience) {
		return models.AuthResponse{}, rpc.Unauthorized("Token not intended for this app")
	}

	method := loginMethodGoogle
	identity := store.Identity{OpenID: info.Subject, LoginMethod: &method}
	if info.Name != "" {
		identity.Name = &info.Name
	}
	if info.Email != "" {
		identity.Email = &info.Email
	}
	if h.cfg.OwnerOpenID != "" && info.Subject == h.cfg.OwnerOpenID {
		admin := models.RoleAdmin
		identity.Role = &admin
	}

	user, err := h.store.UpsertUser(c.Ctx, identity)
	if err != nil {
		return models.AuthResponse{}, err
	}
	return h.startSession(c, user)
}

func (h *Handler) login(c *rpc.Call, in models.LoginRequest) (models.AuthResponse, error) {
	user := h.store.GetUserByEmail(c.Ctx, in.Email)
	if user == nil {
		return models.AuthResponse{}, rpc.Unauthorized("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return models.AuthResponse{}, rpc.Unauthorized("Invalid credentials")
	}

	if err := h.store.TouchSignIn(c.Ctx, user.ID); err != nil {
		h.log.Warn("sign-in not recorded", "err", err, "user", user)
	}
	return h.startSession(c, user)
}

// startSession issues a token for user and, over HTTP, also sets the cookie.
func (h *Handler) startSession(c *rpc.Call, user *models.User) (models.AuthResponse, error) {
	token, err := h.sessions.GenerateToken(user)
	if err != nil {
		return models.AuthResponse{}, err
	}
	if c.HTTP != nil {
		h.sessions.SetCookie(c.HTTP, token)
	}

	h.log.Info("signed in", "method", user.LoginMethod, "user", user)
	return models.AuthResponse{Token: token, User: *user}, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
