package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/joestump/mediashare/internal/auth"
	"github.com/joestump/mediashare/internal/content"
)

type commentsAPIHandler struct {
	comments *content.CommentService
}

func registerCommentRoutes(r chi.Router, deps Deps) {
	h := &commentsAPIHandler{comments: deps.Comments}
	r.Route("/comments/{id}", func(r chi.Router) {
		r.Use(deps.Auth.Require)
		r.Put("/", h.Update)
		r.Delete("/", h.Delete)
		r.Put("/like", h.ToggleLike)
	})
}

// Update edits a comment. Author or admin only.
//
// @Summary      Update comment
// @Tags         Comments
// @Accept       json
// @Produce      json
// @Param        id    path      string                true  "Comment ID"
// @Param        body  body      content.CommentInput  true  "New content"
// @Success      200   {object}  CommentResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Security     BearerToken
// @Router       /comments/{id} [put]
func (h *commentsAPIHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in content.CommentInput
	if !decodeJSON(w, r, &in) {
		return
	}
	c, err := h.comments.Update(r.Context(), auth.PrincipalFromContext(r.Context()), chi.URLParam(r, "id"), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCommentResponse(c))
}

// Delete removes a comment. Author, post owner or admin.
//
// @Summary      Delete comment
// @Tags         Comments
// @Param        id   path  string  true  "Comment ID"
// @Success      204
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Security     BearerToken
// @Router       /comments/{id} [delete]
func (h *commentsAPIHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.comments.Delete(r.Context(), auth.PrincipalFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleLike likes the comment, or removes the caller's like.
//
// @Summary      Toggle comment like
// @Tags         Comments
// @Produce      json
// @Param        id   path      string  true  "Comment ID"
// @Success      200  {object}  LikeResponse
// @Failure      404  {object}  ErrorResponse
// @Security     BearerToken
// @Router       /comments/{id}/like [put]
func (h *commentsAPIHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	res, err := h.comments.ToggleLike(r.Context(), auth.PrincipalFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LikeResponse{Liked: res.Liked, LikeCount: res.Count})
}
