package api

import (
	"time"

	"github.com/joestump/mediashare/internal/content"
	"github.com/joestump/mediashare/internal/store"
)

// --- Account types ---

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// --- User types ---

type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type UserListResponse struct {
	Users      []UserResponse `json:"users"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	Total      int            `json:"total"`
	TotalPages int            `json:"total_pages"`
}

// UpdateRoleRequest is the request body for PUT /api/v1/admin/users/{id}/role.
type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}

// UpdateStatusRequest is the request body for PUT /api/v1/admin/users/{id}/status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active suspended"`
}

func toUserResponse(u *store.User) UserResponse {
	role, status := "user", "active"
	if u.IsAdmin {
		role = "admin"
	}
	if !u.IsActive {
		status = "suspended"
	}
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		AvatarURL: u.AvatarURL,
		Role:      role,
		Status:    status,
		CreatedAt: u.CreatedAt,
	}
}

// --- Post types ---

type PostResponse struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id"`
	OwnerName    string    `json:"owner_name,omitempty"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	MediaType    string    `json:"media_type"`
	MediaURL     string    `json:"media_url"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	Tags         []string  `json:"tags,omitempty"`
	IsPublic     bool      `json:"is_public"`
	ViewCount    int64     `json:"view_count"`
	LikeCount    int       `json:"like_count"`
	CommentCount int       `json:"comment_count"`
	LikedBy      []string  `json:"liked_by,omitempty"`
	CommentIDs   []string  `json:"comment_ids,omitempty"`
	Liked        *bool     `json:"liked,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type PostListResponse struct {
	Posts      []PostResponse `json:"posts"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	Total      int            `json:"total"`
	TotalPages int            `json:"total_pages"`
}

func toPostResponse(p *store.Post) PostResponse {
	return PostResponse{
		ID:           p.ID,
		OwnerID:      p.OwnerID,
		Title:        p.Title,
		Description:  p.Description,
		MediaType:    p.MediaType,
		MediaURL:     p.MediaURL,
		ThumbnailURL: p.ThumbnailURL,
		IsPublic:     p.IsPublic,
		ViewCount:    p.ViewCount,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func toPostSummaryResponse(s *store.PostSummary) PostResponse {
	resp := toPostResponse(&s.Post)
	resp.OwnerName = s.OwnerName
	resp.LikeCount = s.LikeCount
	resp.CommentCount = s.CommentCount
	return resp
}

// toPostDetailResponse renders a single post; viewerID, when set, fills Liked.
func toPostDetailResponse(d *content.PostDetail, viewerID string) PostResponse {
	resp := toPostSummaryResponse(d.PostSummary)
	resp.Tags = d.Tags
	resp.LikedBy = d.LikedBy
	resp.CommentIDs = d.CommentIDs
	if viewerID != "" {
		liked := d.LikedByUser(viewerID)
		resp.Liked = &liked
	}
	return resp
}

// --- Comment types ---

type CommentResponse struct {
	ID         string    `json:"id"`
	PostID     string    `json:"post_id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name,omitempty"`
	Content    string    `json:"content"`
	LikeCount  int       `json:"like_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type CommentListResponse struct {
	Comments   []CommentResponse `json:"comments"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	Total      int               `json:"total"`
	TotalPages int               `json:"total_pages"`
}

func toCommentResponse(c *store.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		PostID:    c.PostID,
		AuthorID:  c.AuthorID,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toCommentViewResponse(c *store.CommentView) CommentResponse {
	resp := toCommentResponse(&c.Comment)
	resp.AuthorName = c.AuthorName
	resp.LikeCount = c.LikeCount
	return resp
}

// --- Like / view types ---

type LikeResponse struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}

// ViewRequest optionally carries a client-generated session ID used to
// recognise repeat anonymous viewers.
type ViewRequest struct {
	SessionID string `json:"session_id"`
}

type ViewResponse struct {
	Views     int64 `json:"views"`
	HasViewed bool  `json:"has_viewed"`
}

// --- Tag types ---

type TagResponse struct {
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	PostCount int    `json:"post_count"`
}

type TagListResponse struct {
	Tags []TagResponse `json:"tags"`
}
