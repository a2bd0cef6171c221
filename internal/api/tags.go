package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/joestump/mediashare/internal/store"
)

type tagsAPIHandler struct {
	tags *store.TagStore
}

func registerTagRoutes(r chi.Router, tags *store.TagStore) {
	h := &tagsAPIHandler{tags: tags}
	r.Get("/tags", h.List)
}

// List returns tags used by at least one public post, most used first.
//
// @Summary      List tags
// @Tags         Tags
// @Produce      json
// @Success      200  {object}  TagListResponse
// @Router       /tags [get]
func (h *tagsAPIHandler) List(w http.ResponseWriter, r *http.Request) {
	tags, err := h.tags.ListWithCounts(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := TagListResponse{Tags: make([]TagResponse, 0, len(tags))}
	for _, t := range tags {
		resp.Tags = append(resp.Tags, TagResponse{Slug: t.Slug, Name: t.Name, PostCount: t.PostCount})
	}
	writeJSON(w, http.StatusOK, resp)
}
