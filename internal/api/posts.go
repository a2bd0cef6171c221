package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/joestump/mediashare/internal/auth"
	"github.com/joestump/mediashare/internal/content"
)

type postsAPIHandler struct {
	posts    *content.PostService
	comments *content.CommentService
}

func registerPostRoutes(r chi.Router, deps Deps) {
	h := &postsAPIHandler{posts: deps.Posts, comments: deps.Comments}

	r.Route("/posts", func(r chi.Router) {
		r.With(deps.Auth.Optional).Get("/", h.List)
		r.With(deps.Auth.Require).Post("/", h.Create)

		r.Route("/{id}", func(r chi.Router) {
			r.With(deps.Auth.Optional).Get("/", h.Get)
			r.With(deps.Auth.Require).Put("/", h.Update)
			r.With(deps.Auth.Require).Delete("/", h.Delete)
			r.With(deps.Auth.Require).Put("/like", h.ToggleLike)
			r.With(deps.Auth.Optional).Put("/view", h.RecordView)
			r.With(deps.Auth.Optional).Get("/comments", h.ListComments)
			r.With(deps.Auth.Require).Post("/comments", h.CreateComment)
		})
	})
}

// List returns a page of posts visible to the caller, newest first.
//
// @Summary      List posts
// @Description  Public posts plus the caller's own; admins see all. Optional bearer token.
// @Tags         Posts
// @Produce      json
// @Param        page    query     int     false  "Page (default 1)"
// @Param        limit   query     int     false  "Page size (default 10, max 100)"
// @Param        search  query     string  false  "Case-insensitive match on title or description"
// @Param        userId  query     string  false  "Only posts owned by this user"
// @Param        tag     query     string  false  "Tag name or slug"
// @Param        type    query     string  false  "image or video"
// @Success      200     {object}  PostListResponse
// @Failure      400     {object}  ErrorResponse
// @Router       /posts [get]
func (h *postsAPIHandler) List(w http.ResponseWriter, r *http.Request) {
	pg := parsePagination(r)
	q := r.URL.Query()
	posts, total, err := h.posts.List(r.Context(), auth.PrincipalFromContext(r.Context()), content.ListQuery{
		Search:    q.Get("search"),
		OwnerID:   q.Get("userId"),
		Tag:       q.Get("tag"),
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

// Create publishes a post owned by the caller.
//
// @Summary      Create post
// @Tags         Posts
// @Accept       json
// @Produce      json
// @Param        body  body      content.CreatePostInput  true  "Post"
// @Success      201   {object}  PostResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Security     BearerToken
// @Router       /posts [post]
func (h *postsAPIHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in content.CreatePostInput
	if !decodeJSON(w, r, &in) {
		return
	}
	principal := auth.PrincipalFromContext(r.Context())
	p, err := h.posts.Create(r.Context(), principal, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	d, err := h.posts.Get(r.Context(), principal, p.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPostDetailResponse(d, principal.ID))
}

// Get returns one post with its tags, likers and comment IDs.
//
// @Summary      Get post
// @Tags         Posts
// @Produce      json
// @Param        id   path      string  true  "Post ID"
// @Success      200  {object}  PostResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /posts/{id} [get]
func (h *postsAPIHandler) Get(w http.ResponseWriter, r *http.Request) {
	p := auth.PrincipalFromContext(r.Context())
	d, err := h.posts.Get(r.Context(), p, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	viewerID := ""
	if p != nil {
		viewerID = p.ID
	}
	writeJSON(w, http.StatusOK, toPostDetailResponse(d, viewerID))
}

// Update edits a post. Owner or admin only.
//
// @Summary      Update post
// @Tags         Posts
// @Accept       json
// @Produce      json
// @Param        id    path      string                   true  "Post ID"
// @Param        body  body      content.UpdatePostInput  true  "Fields to change"
// @Success      200   {object}  PostResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Security     BearerToken
// @Router       /posts/{id} [put]
func (h *postsAPIHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in content.UpdatePostInput
	if !decodeJSON(w, r, &in) {
		return
	}
	p, err := h.posts.Update(r.Context(), auth.PrincipalFromContext(r.Context()), chi.URLParam(r, "id"), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPostResponse(p))
}

// Delete removes a post and its comments. Owner or admin only.
//
// @Summary      Delete post
// @Tags         Posts
// @Param        id   path  string  true  "Post ID"
// @Success      204
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Security     BearerToken
// @Router       /posts/{id} [delete]
func (h *postsAPIHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.posts.Delete(r.Context(), auth.PrincipalFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleLike likes the post, or removes the caller's like.
//
// @Summary      Toggle post like
// @Tags         Posts
// @Produce      json
// @Param        id   path      string  true  "Post ID"
// @Success      200  {object}  LikeResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Security     BearerToken
// @Router       /posts/{id}/like [put]
func (h *postsAPIHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	res, err := h.posts.ToggleLike(r.Context(), auth.PrincipalFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LikeResponse{Liked: res.Liked, LikeCount: res.Count})
}

// RecordView counts a view once per viewer.
//
// @Summary      Record view
// @Description  Viewer is the signed-in user, else the body's session_id, else the client address.
// @Tags         Posts
// @Accept       json
// @Produce      json
// @Param        id    path      string       true   "Post ID"
// @Param        body  body      ViewRequest  false  "Anonymous session"
// @Success      200   {object}  ViewResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /posts/{id}/view [put]
func (h *postsAPIHandler) RecordView(w http.ResponseWriter, r *http.Request) {
	var req ViewRequest
	if r.ContentLength != 0 && r.Body != nil && r.Body != http.NoBody {
		if !decodeJSON(w, r, &req) {
			return
		}
	}
	res, err := h.posts.RecordView(r.Context(), content.Viewer{
		Principal:  auth.PrincipalFromContext(r.Context()),
		SessionID:  req.SessionID,
		RemoteAddr: r.RemoteAddr,
	}, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ViewResponse{Views: res.Views, HasViewed: res.AlreadyViewed})
}

// ListComments returns a page of a post's comments, newest first.
//
// @Summary      List comments
// @Tags         Comments
// @Produce      json
// @Param        id     path      string  true   "Post ID"
// @Param        page   query     int     false  "Page (default 1)"
// @Param        limit  query     int     false  "Page size (default 10, max 100)"
// @Success      200    {object}  CommentListResponse
// @Failure      404    {object}  ErrorResponse
// @Router       /posts/{id}/comments [get]
func (h *postsAPIHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	pg := parsePagination(r)
	comments, total, err := h.comments.List(r.Context(), auth.PrincipalFromContext(r.Context()), chi.URLParam(r, "id"), pg.Limit, pg.Offset())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	resp := CommentListResponse{
		Comments:   make([]CommentResponse, 0, len(comments)),
		Page:       pg.Page,
		Limit:      pg.Limit,
		Total:      total,
		TotalPages: pg.TotalPages(total),
	}
	for _, c := range comments {
		resp.Comments = append(resp.Comments, toCommentViewResponse(c))
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateComment adds a comment by the caller.
//
// @Summary      Create comment
// @Tags         Comments
// @Accept       json
// @Produce      json
// @Param        id    path      string                true  "Post ID"
// @Param        body  body      content.CommentInput  true  "Comment"
// @Success      201   {object}  CommentResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Security     BearerToken
// @Router       /posts/{id}/comments [post]
func (h *postsAPIHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	var in content.CommentInput
	if !decodeJSON(w, r, &in) {
		return
	}
	c, err := h.comments.Create(r.Context(), auth.PrincipalFromContext(r.Context()), chi.URLParam(r, "id"), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCommentViewResponse(c))
}
