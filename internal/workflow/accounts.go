package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/blacktop/postdeck/internal/logutil"
	"github.com/blacktop/postdeck/internal/postdeck"
)

// RefreshLinkedAccounts fetches the authoritative account set and applies it
// to the view, which recomputes every publish affordance. Failures are only
// logged; the view keeps its previous state and nothing is retried.
func (c *Controller) RefreshLinkedAccounts(ctx context.Context) {
	accounts, err := c.backend.LinkedAccounts(ctx)
	if err != nil {
		logutil.Errorf("fetching linked accounts: %v", err)
		return
	}
	logutil.Debugf("linked accounts: %d", len(accounts))
	c.view.SetAccounts(accounts)
}

// Link prompts for credentials, verifies them with the platform when a
// verifier is registered, stores them server-side and resynchronizes.
func (c *Controller) Link(ctx context.Context, platform postdeck.Platform) error {
	name := platform.DisplayName()

	accessToken, err := c.prompt.Prompt(fmt.Sprintf("Enter your %s Access Token:", name), true)
	if err != nil {
		return fmt.Errorf("read access token: %w", err)
	}
	username, err := c.prompt.Prompt(fmt.Sprintf("Enter your %s Username:", name), false)
	if err != nil {
		return fmt.Errorf("read username: %w", err)
	}
	accessToken = strings.TrimSpace(accessToken)
	username = strings.TrimSpace(username)
	if accessToken == "" || username == "" {
		c.notify.Warn("Linking failed: Missing access token or username.")
		return postdeck.Reported(postdeck.ValidationError{Provider: string(platform), Reason: "access token and username are required"})
	}

	if v, ok := c.opts.Verifiers.Lookup(platform); ok {
		if err := v.Verify(ctx, accessToken, username); err != nil {
			logutil.Errorf("verifying %s credentials: %v", platform, err)
			c.notify.Fail(fmt.Sprintf("Linking failed: %v", err))
			return postdeck.Reported(err)
		}
	}

	if err := c.backend.Link(ctx, platform, accessToken, username); err != nil {
		logutil.Errorf("linking %s: %v", platform, err)
		c.notify.Fail(fmt.Sprintf("Failed to link %s: %s", name, postdeck.Reason(err, postdeck.UnknownError)))
		return postdeck.Reported(err)
	}

	c.notify.Success(fmt.Sprintf("%s account linked successfully!", name))
	c.RefreshLinkedAccounts(ctx)
	return nil
}

// Unlink removes a linked account after explicit confirmation. Declining does
// nothing at all.
func (c *Controller) Unlink(ctx context.Context, platform postdeck.Platform) error {
	ok, err := c.prompt.Confirm(fmt.Sprintf("Are you sure you want to unlink %s?", platform))
	if err != nil {
		logutil.Debugf("unlink confirmation aborted: %v", err)
		return nil
	}
	if !ok {
		return nil
	}

	if err := c.backend.Unlink(ctx, platform); err != nil {
		logutil.Errorf("unlinking %s: %v", platform, err)
		c.notify.Fail(fmt.Sprintf("Failed to unlink %s: %s", platform, postdeck.Reason(err, postdeck.UnknownError)))
		return postdeck.Reported(err)
	}

	c.notify.Success(fmt.Sprintf("Successfully unlinked %s!", platform))
	c.RefreshLinkedAccounts(ctx)
	return nil
}
