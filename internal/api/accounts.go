package api

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/joestump/mediashare/internal/auth"
	"github.com/joestump/mediashare/internal/content"
	"github.com/joestump/mediashare/internal/store"
)

type accountsAPIHandler struct {
	deps Deps
}

func registerAuthRoutes(r chi.Router, deps Deps) {
	h := &accountsAPIHandler{deps: deps}
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.With(deps.Auth.Require).Post("/logout", h.Logout)
		r.With(deps.Auth.Require).Get("/me", h.Me)
	})
}

// Register creates a local account and signs it in.
//
// @Summary      Register
// @Description  Creates an account. Addresses on the admin allow-list are provisioned as admins.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      RegisterRequest  true  "Account details"
// @Success      201   {object}  AuthResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Router       /auth/register [post]
func (h *accountsAPIHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := content.CheckInput(req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	user, err := h.deps.Users.Create(r.Context(), store.NewUser{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		IsAdmin:      h.deps.IsAdminEmail(req.Email),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.signIn(w, r, http.StatusCreated, user)
}

// Login exchanges an email and password for a bearer token and session.
//
// @Summary      Log in
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      LoginRequest  true  "Credentials"
// @Success      200   {object}  AuthResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Router       /auth/login [post]
func (h *accountsAPIHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := content.CheckInput(req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	user, err := h.deps.Users.GetByEmail(r.Context(), req.Email)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusUnauthorized, auth.ErrBadPassword.Error(), "UNAUTHORIZED")
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		writeError(w, http.StatusUnauthorized, err.Error(), "UNAUTHORIZED")
		return
	}
	if !user.IsActive {
		writeError(w, http.StatusForbidden, "account suspended", "FORBIDDEN")
		return
	}

	user, err = auth.EnsureAdmin(r.Context(), h.deps.Users, user, h.deps.IsAdminEmail(user.Email))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.signIn(w, r, http.StatusOK, user)
}

// signIn issues a bearer token and, when sessions are enabled, binds the
// user to a fresh session.
func (h *accountsAPIHandler) signIn(w http.ResponseWriter, r *http.Request, status int, user *store.User) {
	token, claims, err := h.deps.Issuer.Issue(user.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if h.deps.Sessions != nil {
		if err := h.deps.Sessions.RenewToken(r.Context()); err != nil {
			writeServiceError(w, r, err)
			return
		}
		h.deps.Sessions.Put(r.Context(), auth.SessionUserIDKey, user.ID)
	}
	writeJSON(w, status, AuthResponse{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		User:      toUserResponse(user),
	})
}

// Logout revokes the presented bearer token and ends the session.
//
// @Summary      Log out
// @Tags         Auth
// @Success      204
// @Failure      401  {object}  ErrorResponse
// @Security     BearerToken
// @Router       /auth/logout [post]
func (h *accountsAPIHandler) Logout(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())
	if id.Claims != nil {
		if err := h.deps.Revocations.Revoke(r.Context(), id.Claims.ID, id.User.ID, id.Claims.ExpiresAt.Time); err != nil {
			writeServiceError(w, r, err)
			return
		}
	}
	if h.deps.Sessions != nil {
		if err := h.deps.Sessions.Destroy(r.Context()); err != nil {
			log.Printf("api: destroy session: %v", err)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the authenticated caller's account.
//
// @Summary      Current user
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  UserResponse
// @Failure      401  {object}  ErrorResponse
// @Security     BearerToken
// @Router       /auth/me [get]
func (h *accountsAPIHandler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toUserResponse(auth.UserFromContext(r.Context())))
}
