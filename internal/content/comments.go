package content

import (
	"context"
	"errors"
	"strings"

	"github.com/joestump/mediashare/internal/authz"
	"github.com/joestump/mediashare/internal/metrics"
	"github.com/joestump/mediashare/internal/store"
)

type CommentInput struct {
	Content string `json:"content" validate:"required,max=2000"`
}

func (in *CommentInput) normalize() { in.Content = strings.TrimSpace(in.Content) }

type CommentService struct {
	posts    store.PostStoreIface
	comments store.CommentStoreIface
}

func NewCommentService(posts store.PostStoreIface, comments store.CommentStoreIface) *CommentService {
	return &CommentService{posts: posts, comments: comments}
}

// List returns a page of comments on a post the caller can see, newest first.
func (s *CommentService) List(ctx context.Context, p *authz.Principal, postID string, limit, offset int) ([]*store.CommentView, int, error) {
	if _, err := s.visiblePost(ctx, p, postID); err != nil {
		return nil, 0, err
	}
	return s.comments.ListByPost(ctx, postID, limit, offset)
}

// Create adds a comment by p. Any authenticated principal may comment on a
// post they can see.
func (s *CommentService) Create(ctx context.Context, p *authz.Principal, postID string, in CommentInput) (*store.CommentView, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	if _, err := s.visiblePost(ctx, p, postID); err != nil {
		return nil, err
	}
	in.normalize()
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	c, err := s.comments.Create(ctx, postID, p.ID, in.Content)
	if err != nil {
		return nil, wrapNotFound(err, authz.KindPost, postID)
	}
	return s.comments.GetView(ctx, c.ID)
}

// Update replaces the comment's content. Author or admin only.
func (s *CommentService) Update(ctx context.Context, p *authz.Principal, id string, in CommentInput) (*store.Comment, error) {
	if _, err := s.loadForMutation(ctx, p, id, authz.ActionUpdate); err != nil {
		return nil, err
	}
	in.normalize()
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	c, err := s.comments.Update(ctx, id, in.Content)
	if err != nil {
		return nil, wrapNotFound(err, authz.KindComment, id)
	}
	return c, nil
}

// Delete removes the comment. Its author, the owner of the post it is on,
// or an admin may delete it.
func (s *CommentService) Delete(ctx context.Context, p *authz.Principal, id string) error {
	if _, err := s.loadForMutation(ctx, p, id, authz.ActionDelete); err != nil {
		return err
	}
	return wrapNotFound(s.comments.Delete(ctx, id), authz.KindComment, id)
}

// ToggleLike adds p to the comment's like set, or removes them if present.
func (s *CommentService) ToggleLike(ctx context.Context, p *authz.Principal, id string) (LikeResult, error) {
	if _, err := s.loadForMutation(ctx, p, id, authz.ActionLike); err != nil {
		return LikeResult{}, err
	}
	liked, n, err := s.comments.ToggleLike(ctx, id, p.ID)
	if err != nil {
		return LikeResult{}, err
	}
	metrics.LikesToggledTotal.WithLabelValues(string(authz.KindComment), likeState(liked)).Inc()
	return LikeResult{Liked: liked, Count: n}, nil
}

func (s *CommentService) visiblePost(ctx context.Context, p *authz.Principal, postID string) (*store.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, wrapNotFound(err, authz.KindPost, postID)
	}
	if !authz.CanView(p, post.OwnerID, post.IsPublic) {
		return nil, notFound(authz.KindPost, postID)
	}
	return post, nil
}

// loadForMutation authenticates p, loads the comment and its parent post's
// owner, and checks a against them.
func (s *CommentService) loadForMutation(ctx context.Context, p *authz.Principal, id string, a authz.Action) (*store.Comment, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	c, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, authz.KindComment, id)
	}

	var postOwner string
	post, err := s.posts.GetByID(ctx, c.PostID)
	switch {
	case err == nil:
		postOwner = post.OwnerID
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}

	if err := authorize(p, authz.CommentResource(c.AuthorID, postOwner), a, id); err != nil {
		return nil, err
	}
	return c, nil
}
