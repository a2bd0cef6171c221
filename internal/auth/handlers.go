package auth

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/joestump/mediashare/internal/store"
)

const (
	cookieState        = "__auth_state"
	cookieCodeVerifier = "__auth_pkce"
	cookieRedirect     = "__auth_redirect"
)

// AdminSetter grants admin rights to an account.
type AdminSetter interface {
	SetAdmin(ctx context.Context, id string, admin bool) (*store.User, error)
}

// EnsureAdmin promotes u when allowListed is true and u is not yet an admin.
// Accounts are never demoted here; removing an address from the allow-list
// only affects accounts provisioned afterwards.
func EnsureAdmin(ctx context.Context, users AdminSetter, u *store.User, allowListed bool) (*store.User, error) {
	if !allowListed || u.IsAdmin {
		return u, nil
	}
	return users.SetAdmin(ctx, u.ID, true)
}

// Handlers serves the single sign-on login flow.
type Handlers struct {
	provider     *Provider
	sessions     *scs.SessionManager
	users        *store.UserStore
	isAdminEmail func(string) bool
	secure       bool
}

func NewHandlers(p *Provider, sm *scs.SessionManager, us *store.UserStore, isAdminEmail func(string) bool, secure bool) *Handlers {
	return &Handlers{provider: p, sessions: sm, users: us, isAdminEmail: isAdminEmail, secure: secure}
}

// Login initiates the OIDC authorization code flow with PKCE.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	state, err := GenerateState()
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	verifier, challenge, err := GeneratePKCE()
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.setPreAuthCookie(w, cookieState, state)
	h.setPreAuthCookie(w, cookieCodeVerifier, verifier)
	h.setPreAuthCookie(w, cookieRedirect, safeRedirect(r.URL.Query().Get("redirect")))

	http.Redirect(w, r, h.provider.AuthCodeURL(state, challenge), http.StatusFound)
}

// Callback completes the flow: it verifies state, exchanges the code,
// provisions the account and starts a session.
func (h *Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(cookieState)
	if err != nil || stateCookie.Value != r.URL.Query().Get("state") {
		http.Error(w, "invalid state", http.StatusBadRequest)
		return
	}
	verifierCookie, err := r.Cookie(cookieCodeVerifier)
	if err != nil {
		http.Error(w, "missing code verifier", http.StatusBadRequest)
		return
	}

	claims, err := h.provider.Exchange(r.Context(), r.URL.Query().Get("code"), verifierCookie.Value)
	if err != nil {
		log.Printf("auth: oidc exchange: %v", err)
		http.Error(w, "authentication failed", http.StatusUnauthorized)
		return
	}

	allowListed := h.isAdminEmail(claims.Email)
	user, err := h.users.Upsert(r.Context(), claims.Issuer, claims.Subject, claims.Email, claims.Name, allowListed)
	if err != nil {
		log.Printf("auth: oidc upsert %s: %v", claims.Email, err)
		http.Error(w, "user record error", http.StatusInternalServerError)
		return
	}
	promoted, err := EnsureAdmin(r.Context(), h.users, user, allowListed)
	if err != nil {
		log.Printf("auth: oidc promote %s: %v", user.ID, err)
		http.Error(w, "user record error", http.StatusInternalServerError)
		return
	}
	user = promoted
	if !user.IsActive {
		http.Error(w, "account suspended", http.StatusForbidden)
		return
	}

	if err := h.sessions.RenewToken(r.Context()); err != nil {
		http.Error(w, "session error", http.StatusInternalServerError)
		return
	}
	h.sessions.Put(r.Context(), SessionUserIDKey, user.ID)

	clearCookie(w, cookieState)
	clearCookie(w, cookieCodeVerifier)

	redirect := "/"
	if c, err := r.Cookie(cookieRedirect); err == nil {
		redirect = safeRedirect(c.Value)
	}
	clearCookie(w, cookieRedirect)

	http.Redirect(w, r, redirect, http.StatusFound)
}

// safeRedirect keeps post-login redirects on this host.
func safeRedirect(target string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return "/"
	}
	return target
}

func (h *Handlers) setPreAuthCookie(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:    name,
		Value:   "",
		Path:    "/",
		MaxAge:  -1,
		Expires: time.Unix(0, 0),
	})
}
