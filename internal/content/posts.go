package content

import (
	"context"
	"strings"

	"github.com/joestump/mediashare/internal/authz"
	"github.com/joestump/mediashare/internal/metrics"
	"github.com/joestump/mediashare/internal/store"
)

type CreatePostInput struct {
	Title        string   `json:"title" validate:"required,max=200"`
	Description  string   `json:"description" validate:"max=5000"`
	MediaType    string   `json:"media_type" validate:"required,oneof=image video"`
	MediaURL     string   `json:"media_url" validate:"required,http_url,max=2048"`
	ThumbnailURL string   `json:"thumbnail_url" validate:"omitempty,http_url,max=2048"`
	Tags         []string `json:"tags" validate:"max=20,dive,max=50,tagname"`
}

// UpdatePostInput is a partial update; nil fields are left unchanged.
type UpdatePostInput struct {
	Title        *string  `json:"title" validate:"omitempty,min=1,max=200"`
	Description  *string  `json:"description" validate:"omitempty,max=5000"`
	ThumbnailURL *string  `json:"thumbnail_url" validate:"omitempty,http_url,max=2048"`
	Tags         []string `json:"tags" validate:"omitempty,max=20,dive,max=50,tagname"`
}

// ListQuery selects a page of posts.
type ListQuery struct {
	Search    string
	OwnerID   string
	Tag       string
	MediaType string
	Limit     int
	Offset    int
}

// PostDetail is a post with everything a single-post view shows.
type PostDetail struct {
	*store.PostSummary
	Tags       []string
	LikedBy    []string
	CommentIDs []string
}

// LikedByUser reports whether userID is in the post's like set.
func (d *PostDetail) LikedByUser(userID string) bool {
	for _, id := range d.LikedBy {
		if id == userID {
			return true
		}
	}
	return false
}

type LikeResult struct {
	Liked bool
	Count int
}

type ViewResult struct {
	AlreadyViewed bool
	Views         int64
}

type PostService struct {
	posts    store.PostStoreIface
	comments store.CommentStoreIface
}

func NewPostService(posts store.PostStoreIface, comments store.CommentStoreIface) *PostService {
	return &PostService{posts: posts, comments: comments}
}

// List returns a page of posts visible to p, newest first, and the total.
// Admins see hidden posts; everyone else sees public posts plus their own.
func (s *PostService) List(ctx context.Context, p *authz.Principal, q ListQuery) ([]*store.PostSummary, int, error) {
	if q.MediaType != "" && q.MediaType != store.MediaImage && q.MediaType != store.MediaVideo {
		return nil, 0, &ValidationError{Field: "type", Reason: "must be one of: image, video"}
	}
	f := store.PostFilter{
		Search:    strings.TrimSpace(q.Search),
		OwnerID:   q.OwnerID,
		TagSlug:   store.DeriveTagSlug(q.Tag),
		MediaType: q.MediaType,
		Limit:     q.Limit,
		Offset:    q.Offset,
	}
	if p != nil {
		f.ViewerID = p.ID
		f.IncludeHidden = p.IsAdmin
	}
	return s.posts.List(ctx, f)
}

// Get returns a post with its tags, likers and comment IDs. Hidden posts
// are reported as not found to callers who may not see them.
func (s *PostService) Get(ctx context.Context, p *authz.Principal, id string) (*PostDetail, error) {
	sum, err := s.posts.GetSummary(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, authz.KindPost, id)
	}
	if !authz.CanView(p, sum.OwnerID, sum.IsPublic) {
		return nil, notFound(authz.KindPost, id)
	}

	d := &PostDetail{PostSummary: sum}
	if d.Tags, err = s.posts.ListTags(ctx, id); err != nil {
		return nil, err
	}
	if d.LikedBy, err = s.posts.Likers(ctx, id); err != nil {
		return nil, err
	}
	if d.CommentIDs, err = s.comments.IDsByPost(ctx, id); err != nil {
		return nil, err
	}
	return d, nil
}

// Create publishes a post owned by p.
func (s *PostService) Create(ctx context.Context, p *authz.Principal, in CreatePostInput) (*store.Post, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Tags = trimAll(in.Tags)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	return s.posts.Create(ctx, store.NewPost{
		OwnerID:      p.ID,
		Title:        in.Title,
		Description:  in.Description,
		MediaType:    in.MediaType,
		MediaURL:     in.MediaURL,
		ThumbnailURL: in.ThumbnailURL,
		Tags:         in.Tags,
	})
}

// Update applies in to the post if p owns it or is an admin.
func (s *PostService) Update(ctx context.Context, p *authz.Principal, id string, in UpdatePostInput) (*store.Post, error) {
	post, err := s.loadForMutation(ctx, p, id, authz.ActionUpdate)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		in.Title = &t
	}
	if in.Description != nil {
		d := strings.TrimSpace(*in.Description)
		in.Description = &d
	}
	in.Tags = trimAll(in.Tags)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	u := store.PostUpdate{
		Title:        post.Title,
		Description:  post.Description,
		ThumbnailURL: post.ThumbnailURL,
		Tags:         in.Tags,
	}
	if in.Title != nil {
		u.Title = *in.Title
	}
	if in.Description != nil {
		u.Description = *in.Description
	}
	if in.ThumbnailURL != nil {
		u.ThumbnailURL = *in.ThumbnailURL
	}
	updated, err := s.posts.Update(ctx, id, u)
	if err != nil {
		return nil, wrapNotFound(err, authz.KindPost, id)
	}
	return updated, nil
}

// Delete removes the post, its comments and its like, view and tag links.
func (s *PostService) Delete(ctx context.Context, p *authz.Principal, id string) error {
	if _, err := s.loadForMutation(ctx, p, id, authz.ActionDelete); err != nil {
		return err
	}
	return wrapNotFound(s.posts.Delete(ctx, id), authz.KindPost, id)
}

// ToggleLike adds p to the post's like set, or removes them if present.
func (s *PostService) ToggleLike(ctx context.Context, p *authz.Principal, id string) (LikeResult, error) {
	if _, err := s.loadForMutation(ctx, p, id, authz.ActionLike); err != nil {
		return LikeResult{}, err
	}
	liked, n, err := s.posts.ToggleLike(ctx, id, p.ID)
	if err != nil {
		return LikeResult{}, err
	}
	metrics.LikesToggledTotal.WithLabelValues(string(authz.KindPost), likeState(liked)).Inc()
	return LikeResult{Liked: liked, Count: n}, nil
}

// ToggleVisibility flips the post's public flag. Admin only.
func (s *PostService) ToggleVisibility(ctx context.Context, p *authz.Principal, id string) (*store.Post, error) {
	post, err := s.loadForMutation(ctx, p, id, authz.ActionToggleVisibility)
	if err != nil {
		return nil, err
	}
	updated, err := s.posts.SetVisibility(ctx, id, !post.IsPublic)
	if err != nil {
		return nil, wrapNotFound(err, authz.KindPost, id)
	}
	return updated, nil
}

// RecordView counts v's view of the post once per viewer key.
func (s *PostService) RecordView(ctx context.Context, v Viewer, id string) (ViewResult, error) {
	key, err := v.Key()
	if err != nil {
		return ViewResult{}, err
	}
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return ViewResult{}, wrapNotFound(err, authz.KindPost, id)
	}
	if !authz.CanView(v.Principal, post.OwnerID, post.IsPublic) {
		return ViewResult{}, notFound(authz.KindPost, id)
	}

	seen, views, err := s.posts.RecordView(ctx, id, key)
	if err != nil {
		return ViewResult{}, wrapNotFound(err, authz.KindPost, id)
	}
	result := "new"
	if seen {
		result = "duplicate"
	}
	metrics.ViewsRecordedTotal.WithLabelValues(result).Inc()
	return ViewResult{AlreadyViewed: seen, Views: views}, nil
}

// loadForMutation authenticates p, loads the post and checks a against it.
// A hidden post the caller cannot see is reported as not found.
func (s *PostService) loadForMutation(ctx context.Context, p *authz.Principal, id string, a authz.Action) (*store.Post, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, authz.KindPost, id)
	}
	if !authz.CanView(p, post.OwnerID, post.IsPublic) {
		return nil, notFound(authz.KindPost, id)
	}
	if err := authorize(p, authz.PostResource(post.OwnerID), a, id); err != nil {
		return nil, err
	}
	return post, nil
}

func likeState(liked bool) string {
	if liked {
		return "liked"
	}
	return "unliked"
}

func trimAll(ss []string) []string {
	if ss == nil {
		return nil
	}
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
