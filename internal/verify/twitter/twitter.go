package twitter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/blacktop/postdeck/internal/logutil"
	"github.com/blacktop/postdeck/internal/postdeck"
	"github.com/blacktop/postdeck/internal/verify"
	"github.com/michimani/gotwi"
	"github.com/michimani/gotwi/user/userlookup"
	"github.com/michimani/gotwi/user/userlookup/types"
)

const providerName = "twitter"

var httpTimeout = 30 * time.Second

// Verifier checks OAuth 2.0 user access tokens for X (Twitter).
type Verifier struct {
	http *http.Client
}

// New constructs an X verifier.
func New(ctx context.Context) (verify.Verifier, error) {
	return &Verifier{http: &http.Client{Timeout: httpTimeout}}, nil
}

// Platform returns the provider identifier.
func (v *Verifier) Platform() postdeck.Platform { return postdeck.Twitter }

// Verify looks up the user behind accessToken and requires it to be username.
func (v *Verifier) Verify(ctx context.Context, accessToken, username string) error {
	client, err := gotwi.NewClientWithAccessToken(&gotwi.NewClientWithAccessTokenInput{
		HTTPClient:  v.http,
		AccessToken: accessToken,
	})
	if err != nil {
		return fmt.Errorf("create X client: %w", err)
	}

	logutil.Debugf("verifying X credentials")
	res, err := userlookup.GetMe(ctx, client, &types.GetMeInput{})
	if err != nil {
		return fmt.Errorf("lookup user: %w", unwrapGotwiError(err))
	}

	if res.Data.Username == nil {
		return postdeck.ValidationError{Provider: providerName, Reason: "token is not bound to a user"}
	}
	if me := *res.Data.Username; !verify.SameUser(me, username) {
		return postdeck.ValidationError{
			Provider: providerName,
			Reason:   fmt.Sprintf("token belongs to @%s, not %q", me, username),
		}
	}
	return nil
}

func unwrapGotwiError(err error) error {
	var gwErr *gotwi.GotwiError
	if errors.As(err, &gwErr) && gwErr != nil {
		return fmt.Errorf("%s", summarizeGotwiError(gwErr))
	}
	return err
}

func summarizeGotwiError(err *gotwi.GotwiError) string {
	if err == nil {
		return "unknown X API error"
	}

	parts := make([]string, 0, 4)
	if err.Title != "" {
		parts = append(parts, err.Title)
	}
	if err.Detail != "" {
		parts = append(parts, err.Detail)
	}
	for _, apiErr := range err.APIErrors {
		if apiErr.Message != "" {
			parts = append(parts, apiErr.Message)
		}
	}
	if len(parts) == 0 {
		if msg := err.Error(); msg != "" {
			parts = append(parts, msg)
		}
	}
	if len(parts) == 0 {
		parts = append(parts, "X API request failed")
	}

	return strings.Join(parts, "; ")
}
