package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/joestump/mediashare/internal/auth"
	"github.com/joestump/mediashare/internal/content"
	"github.com/joestump/mediashare/internal/store"
)

// adminAPIHandler provides REST handlers for admin-only endpoints.
type adminAPIHandler struct {
	users *store.UserStore
	stats *store.StatsStore
	posts *content.PostService
}

// registerAdminRoutes registers admin routes inside a group that requires an
// authenticated admin; non-admins get 403.
func registerAdminRoutes(r chi.Router, deps Deps) {
	h := &adminAPIHandler{users: deps.Users, stats: deps.Stats, posts: deps.Posts}

	r.Route("/admin", func(admin chi.Router) {
		admin.Use(deps.Auth.Require)
		admin.Use(auth.RequireAdmin)

		admin.Get("/stats", h.Stats)
		admin.Get("/users", h.ListUsers)
		admin.Put("/users/{id}/status", h.UpdateStatus)
		admin.Put("/users/{id}/role", h.UpdateRole)
		admin.Delete("/users/{id}", h.DeleteUser)
		admin.Get("/posts", h.ListPosts)
		admin.Put("/posts/{id}/visibility", h.ToggleVisibility)
		admin.Delete("/posts/{id}", h.DeletePost)
	})
}

// Stats returns site-wide totals.
//
// @Summary      Dashboard stats (admin)
// @Tags         Admin
// @Produce      json
// @Success      200  {object}  store.DashboardStats
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Security     BearerToken
// @Router       /admin/stats [get]
func (h *adminAPIHandler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.stats.Dashboard(r.Context(), time.Now())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// ListUsers returns a page of users, optionally filtered by name or email.
//
// @Summary      List users (admin)
// @Tags         Admin
// @Produce      json
// @Param        page    query     int     false  "Page (default 1)"
// @Param        limit   query     int     false  "Page size (default 10, max 100)"
// @Param        search  query     string  false  "Case-insensitive match on name or email"
// @Success      200     {object}  UserListResponse
// @Failure      401     {object}  ErrorResponse
// @Failure      403     {object}  ErrorResponse
// @Security     BearerToken
// @Router       /admin/users [get]
func (h *adminAPIHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	pg := parsePagination(r)
	users, total, err := h.users.List(r.Context(), strings.TrimSpace(r.URL.Query().Get("search")), pg.Limit, pg.Offset())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := UserListResponse{
		Users:      make([]UserResponse, 0, len(users)),
		Page:       pg.Page,
		Limit:      pg.Limit,
		Total:      total,
		TotalPages: pg.TotalPages(total),
	}
	for _, u := range users {
		resp.Users = append(resp.Users, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, resp)
}

// UpdateStatus suspends or reactivates an account. Suspended accounts
// cannot authenticate.
//
// @Summary      Set user status (admin)
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        id    path      string               true  "User ID"
// @Param        body  body      UpdateStatusRequest  true  "active or suspended"
// @Success      200   {object}  UserResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Security     BearerToken
// @Router       /admin/users/{id}/status [put]
func (h *adminAPIHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	var req UpdateStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := content.CheckInput(req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if isSelf(r, userID) {
		writeError(w, http.StatusBadRequest, "cannot change the status of your own account", "BAD_REQUEST")
		return
	}

	updated, err := h.users.SetActive(r.Context(), userID, req.Status == "active")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(updated))
}

// UpdateRole grants or removes admin rights. Accepts only "user" and "admin".
//
// @Summary      Set user role (admin)
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "User ID"
// @Param        body  body      UpdateRoleRequest  true  "user or admin"
// @Success      200   {object}  UserResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Security     BearerToken
// @Router       /admin/users/{id}/role [put]
func (h *adminAPIHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	var req UpdateRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := content.CheckInput(req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if isSelf(r, userID) && req.Role != "admin" {
		writeError(w, http.StatusBadRequest, "cannot remove your own admin role", "BAD_REQUEST")
		return
	}

	updated, err := h.users.SetAdmin(r.Context(), userID, req.Role == "admin")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(updated))
}

// DeleteUser removes an account with its posts, comments and likes.
//
// @Summary      Delete user (admin)
// @Tags         Admin
// @Param        id   path  string  true  "User ID"
// @Success      204
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Security     BearerToken
// @Router       /admin/users/{id} [delete]
func (h *adminAPIHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if isSelf(r, userID) {
		writeError(w, http.StatusBadRequest, "cannot delete your own account", "BAD_REQUEST")
		return
	}
	if err := h.users.Delete(r.Context(), userID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListPosts returns every post, hidden ones included.
//
// @Summary      List posts (admin)
// @Tags         Admin
// @Produce      json
// @Param        page    query     int     false  "Page (default 1)"
// @Param        limit   query     int     false  "Page size (default 10, max 100)"
// @Param        search  query     string  false  "Case-insensitive match on title or description"
// @Param        type    query     string  false  "image or video"
// @Success      200     {object}  PostListResponse
// @Failure      403     {object}  ErrorResponse
// @Security     BearerToken
// @Router       /admin/posts [get]
func (h *adminAPIHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	pg := parsePagination(r)
	q := r.URL.Query()
	posts, total, err := h.posts.List(r.Context(), auth.PrincipalFromContext(r.Context()), content.ListQuery{
		Search:    q.Get("search"),
		MediaType: q.Get("type"),
		Limit:     pg.Limit,
		Offset:    pg.Offset(),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := PostListResponse{
		Posts:      make([]PostResponse, 0, len(posts)),
		Page:       pg.Page,
		Limit:      pg.Limit,
		Total:      total,
		TotalPages: pg.TotalPages(total),
	}
	for _, p := range posts {
		resp.Posts = append(resp.Posts, toPostSummaryResponse(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

// ToggleVisibility flips a post between public and hidden.
//
// @Summary      Toggle post visibility (admin)
// @Tags         Admin
// @Produce      json
// @Param        id   path      string  true  "Post ID"
// @Success      200  {object}  PostResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Security     BearerToken
// @Router       /admin/posts/{id}/visibility [put]
func (h *adminAPIHandler) ToggleVisibility(w http.ResponseWriter, r *http.Request) {
	p, err := h.posts.ToggleVisibility(r.Context(), auth.PrincipalFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPostResponse(p))
}

// DeletePost removes any post and its comments.
//
// @Summary      Delete post (admin)
// @Tags         Admin
// @Param        id   path  string  true  "Post ID"
// @Success      204
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Security     BearerToken
// @Router       /admin/posts/{id} [delete]
func (h *adminAPIHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	if err := h.posts.Delete(r.Context(), auth.PrincipalFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func isSelf(r *http.Request, userID string) bool {
	p := auth.PrincipalFromContext(r.Context())
	return p != nil && p.ID == userID
}
