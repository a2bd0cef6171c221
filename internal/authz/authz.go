// Package authz decides whether a principal may mutate a post or comment.
//
// The rules are pure functions of the principal and the resource's ownership
// fields; callers load the resource first (a missing resource is NotFound,
// not Forbidden) and consult CanMutate before applying any change.
package authz

// Principal is the authenticated identity attached to a request.
type Principal struct {
	ID      string
	Email   string
	IsAdmin bool
}

// Action is a mutation a principal may attempt.
type Action string

const (
	ActionUpdate           Action = "update"
	ActionDelete           Action = "delete"
	ActionLike             Action = "like"
	ActionToggleVisibility Action = "toggle-visibility"
)

// Kind distinguishes the resource types the predicate understands.
type Kind string

const (
	KindPost    Kind = "post"
	KindComment Kind = "comment"
)

// Resource carries the ownership facts of a post or comment. For a post
// OwnerID is the creator; for a comment OwnerID is the author and
// ParentOwnerID the owner of the post it sits on.
type Resource struct {
	Kind          Kind
	OwnerID       string
	ParentOwnerID string
}

func PostResource(ownerID string) Resource {
	return Resource{Kind: KindPost, OwnerID: ownerID}
}

func CommentResource(authorID, postOwnerID string) Resource {
	return Resource{Kind: KindComment, OwnerID: authorID, ParentOwnerID: postOwnerID}
}

// CanMutate reports whether p may perform a on r. An absent principal is
// never allowed. Admin rights come only from Principal.IsAdmin.
func CanMutate(p *Principal, r Resource, a Action) bool {
	if p == nil || p.ID == "" {
		return false
	}
	switch r.Kind {
	case KindPost:
		switch a {
		case ActionUpdate, ActionDelete:
			return p.IsAdmin || p.ID == r.OwnerID
		case ActionLike:
			return true
		case ActionToggleVisibility:
			return p.IsAdmin
		}
	case KindComment:
		switch a {
		case ActionUpdate:
			return p.IsAdmin || p.ID == r.OwnerID
		case ActionDelete:
			return p.IsAdmin || p.ID == r.OwnerID || (r.ParentOwnerID != "" && p.ID == r.ParentOwnerID)
		case ActionLike:
			return true
		}
	}
	return false
}

// CanView reports whether p may read a post with the given owner and
// visibility. Public posts are readable by anyone.
func CanView(p *Principal, ownerID string, isPublic bool) bool {
	if isPublic {
		return true
	}
	if p == nil || p.ID == "" {
		return false
	}
	return p.IsAdmin || p.ID == ownerID
}
