package postdeck

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Sentinel is the placeholder the backend returns while content is still being produced.
const Sentinel = "undefined"

// Readiness tracks whether a post's content can be shown.
type Readiness int

const (
	Pending Readiness = iota
	Ready
)

func (r Readiness) String() string {
	if r == Ready {
		return "ready"
	}
	return "pending"
}

// PostID is the opaque, server-assigned identifier of a post.
type PostID string

// UnmarshalJSON accepts both numeric and string identifiers.
func (id *PostID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = PostID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("post id: %w", err)
	}
	*id = PostID(n.String())
	return nil
}

func (id PostID) String() string { return string(id) }

// Post is a generated social post as held by the running session.
type Post struct {
	ID        PostID
	Title     string
	Prompt    string
	Content   string
	Readiness Readiness
	CreatedAt time.Time
}

// MarkReady moves the post to Ready. It reports false if the post was already ready.
func (p *Post) MarkReady() bool {
	if p.Readiness == Ready {
		return false
	}
	p.Readiness = Ready
	return true
}

// Usable reports whether content may be rendered.
func Usable(content string) bool {
	trimmed := strings.TrimSpace(content)
	return trimmed != "" && trimmed != Sentinel
}

// HistoryEntry is one prior version of an edited post.
type HistoryEntry struct {
	EditedAt        string `json:"edited_at"`
	PreviousContent string `json:"previous_content"`
}

// Platform tags a third-party publish target.
type Platform string

const (
	Mastodon Platform = "mastodon"
	Bluesky  Platform = "bluesky"
	Twitter  Platform = "twitter"
)

var platformNames = map[Platform]string{
	Mastodon: "Mastodon",
	Bluesky:  "Bluesky",
	Twitter:  "X",
}

// Platforms lists every supported platform in a stable order.
func Platforms() []Platform {
	return []Platform{Bluesky, Mastodon, Twitter}
}

// ParsePlatform normalizes a user-supplied platform tag.
func ParsePlatform(raw string) (Platform, error) {
	p := Platform(strings.TrimSpace(strings.ToLower(raw)))
	if p == "x" {
		p = Twitter
	}
	if _, ok := platformNames[p]; !ok {
		return "", fmt.Errorf("unsupported platform %q", raw)
	}
	return p, nil
}

// DisplayName is the human-readable platform label.
func (p Platform) DisplayName() string {
	if name, ok := platformNames[p]; ok {
		return name
	}
	return string(p)
}

// LinkedAccount is a publish target the current user has authorized.
type LinkedAccount struct {
	Platform Platform `json:"platform"`
	Username string   `json:"username"`
}

// Affordance is the derived state of a "publish to platform" control.
type Affordance struct {
	Platform Platform
	Enabled  bool
	Tooltip  string
}

// AffordanceFor derives the control state for platform from the fetched account set.
func AffordanceFor(accounts []LinkedAccount, platform Platform) Affordance {
	for _, acct := range accounts {
		if acct.Platform == platform {
			return Affordance{Platform: platform, Enabled: true}
		}
	}
	return Affordance{
		Platform: platform,
		Tooltip:  fmt.Sprintf("You must link a %s account first!", platform.DisplayName()),
	}
}
