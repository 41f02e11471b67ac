package mastodon

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/blacktop/postdeck/internal/logutil"
	"github.com/blacktop/postdeck/internal/postdeck"
	"github.com/blacktop/postdeck/internal/verify"
	mastodonapi "github.com/mattn/go-mastodon"
)

const (
	envServer = "POSTDECK_MASTODON_SERVER"

	providerName   = "mastodon"
	requestTimeout = 30 * time.Second
)

// Config contains the settings needed to reach a Mastodon server.
type Config struct {
	Server string
}

// Verifier checks Mastodon access tokens against the configured instance.
type Verifier struct {
	server  string
	timeout time.Duration
}

// New constructs a Mastodon verifier. The server falls back to the environment.
func New(ctx context.Context, base Config) (verify.Verifier, error) {
	cfg := Config{Server: strings.TrimSpace(base.Server)}
	if cfg.Server == "" {
		cfg.Server = strings.TrimSpace(os.Getenv(envServer))
	}
	if cfg.Server == "" {
		return nil, postdeck.MissingEnvError{Provider: providerName, Variables: []string{envServer}}
	}

	return &Verifier{server: strings.TrimRight(cfg.Server, "/"), timeout: requestTimeout}, nil
}

// Platform identifies the provider.
func (v *Verifier) Platform() postdeck.Platform { return postdeck.Mastodon }

// Verify resolves the account behind accessToken and requires it to be username.
func (v *Verifier) Verify(ctx context.Context, accessToken, username string) error {
	client := mastodonapi.NewClient(&mastodonapi.Config{
		Server:      v.server,
		AccessToken: accessToken,
	})
	client.Timeout = v.timeout

	logutil.Debugf("verifying mastodon credentials: server=%s", v.server)
	acct, err := client.GetAccountCurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("verify credentials: %w", err)
	}

	if !verify.SameUser(acct.Username, username) && !verify.SameUser(acct.Acct, username) {
		return postdeck.ValidationError{
			Provider: providerName,
			Reason:   fmt.Sprintf("token belongs to @%s, not %q", acct.Acct, username),
		}
	}
	return nil
}
