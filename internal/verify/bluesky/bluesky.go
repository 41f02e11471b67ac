package bluesky

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/blacktop/postdeck/internal/logutil"
	"github.com/blacktop/postdeck/internal/postdeck"
	"github.com/blacktop/postdeck/internal/verify"
	"github.com/bluesky-social/indigo/api/atproto"
	"github.com/bluesky-social/indigo/xrpc"
)

const (
	envPDSURL = "POSTDECK_BLUESKY_PDS_URL"

	providerName   = "bluesky"
	requestTimeout = 30 * time.Second
	defaultPDSURL  = "https://bsky.social"
)

// Config allows the caller to supply defaults prior to reading environment variables.
type Config struct {
	PDSURL string
}

// Verifier checks Bluesky app passwords by opening a session on the PDS.
type Verifier struct {
	pdsURL string
	http   *http.Client
}

// New constructs a Bluesky verifier.
func New(ctx context.Context, base Config) (verify.Verifier, error) {
	pds := strings.TrimSpace(base.PDSURL)
	if pds == "" {
		pds = strings.TrimSpace(os.Getenv(envPDSURL))
	}
	if pds == "" {
		pds = defaultPDSURL
	}

	return &Verifier{pdsURL: pds, http: &http.Client{Timeout: requestTimeout}}, nil
}

// Platform identifies the provider.
func (v *Verifier) Platform() postdeck.Platform { return postdeck.Bluesky }

// Verify logs in with username and the app password given as accessToken.
func (v *Verifier) Verify(ctx context.Context, accessToken, username string) error {
	userAgent := "postdeck/1"
	client := &xrpc.Client{
		Client:    v.http,
		Host:      v.pdsURL,
		UserAgent: &userAgent,
	}

	logutil.Debugf("verifying bluesky credentials: pds=%s", v.pdsURL)
	session, err := atproto.ServerCreateSession(ctx, client, &atproto.ServerCreateSession_Input{
		Identifier: strings.TrimPrefix(strings.TrimSpace(username), "@"),
		Password:   accessToken,
	})
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if session.Did == "" {
		return postdeck.ValidationError{Provider: providerName, Reason: "session has no DID"}
	}

	logutil.Debugf("bluesky session opened: handle=%s did=%s", session.Handle, session.Did)
	return nil
}
