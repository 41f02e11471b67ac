package verify

import (
	"context"
	"strings"

	"github.com/blacktop/postdeck/internal/postdeck"
)

// Verifier checks platform credentials before they are linked.
type Verifier interface {
	Platform() postdeck.Platform
	Verify(ctx context.Context, accessToken, username string) error
}

// Registry maps platforms to their verifier.
type Registry map[postdeck.Platform]Verifier

// NewRegistry indexes verifiers by platform.
func NewRegistry(verifiers ...Verifier) Registry {
	r := make(Registry, len(verifiers))
	for _, v := range verifiers {
		r[v.Platform()] = v
	}
	return r
}

// Lookup returns the verifier for platform, if one is registered.
func (r Registry) Lookup(platform postdeck.Platform) (Verifier, bool) {
	v, ok := r[platform]
	return v, ok
}

// SameUser compares account handles, ignoring case, a leading @ and any @domain suffix.
func SameUser(a, b string) bool {
	return bareHandle(a) == bareHandle(b)
}

func bareHandle(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "@")
	if i := strings.Index(s, "@"); i >= 0 {
		s = s[:i]
	}
	return s
}
