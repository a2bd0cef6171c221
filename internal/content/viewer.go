package content

import (
	"net"
	"strings"

	"github.com/joestump/mediashare/internal/authz"
)

const maxSessionIDLen = 128

// Viewer identifies whoever is looking at a post. The first available of
// principal, client session ID and network address is used, so anonymous
// viewers behind one shared address count once.
type Viewer struct {
	Principal  *authz.Principal
	SessionID  string
	RemoteAddr string
}

// Key returns the dedup key for v.
func (v Viewer) Key() (string, error) {
	if v.Principal != nil && v.Principal.ID != "" {
		return "user:" + v.Principal.ID, nil
	}
	if sid := strings.TrimSpace(v.SessionID); sid != "" {
		if len(sid) > maxSessionIDLen {
			return "", &ValidationError{Field: "session_id", Reason: "must be at most 128 characters"}
		}
		return "session:" + sid, nil
	}
	if addr := hostOnly(v.RemoteAddr); addr != "" {
		return "ip:" + addr, nil
	}
	return "", &ValidationError{Field: "viewer", Reason: "no viewer identity available"}
}

func hostOnly(addr string) string {
	addr = strings.TrimSpace(addr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
