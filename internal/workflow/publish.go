package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/blacktop/postdeck/internal/logutil"
	"github.com/blacktop/postdeck/internal/postdeck"
)

// Publish sends message to the linked account on platform. It does not look at
// link state itself; a platform unlinked behind an enabled control is reported
// by the backend and surfaced like any other rejection.
func (c *Controller) Publish(ctx context.Context, platform postdeck.Platform, message string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		c.notify.Warn("Cannot post an empty message!")
		return postdeck.Reported(postdeck.ValidationError{Provider: string(platform), Reason: "message is empty"})
	}

	logutil.Debugf("publishing to %s: %q", platform, message)
	if err := c.backend.Publish(ctx, platform, message); err != nil {
		logutil.Errorf("publishing to %s: %v", platform, err)
		c.notify.Fail(fmt.Sprintf("Failed to post: %s", postdeck.Reason(err, postdeck.UnknownError)))
		return postdeck.Reported(err)
	}

	c.notify.Success(fmt.Sprintf("Successfully posted to %s!", platform.DisplayName()))
	return nil
}

// PublishCard publishes the exact content rendered on card id.
func (c *Controller) PublishCard(ctx context.Context, id postdeck.PostID, platform postdeck.Platform) error {
	ctl, _, err := c.view.PublishControl(id, platform)
	if err != nil {
		return err
	}
	return c.Publish(ctx, platform, ctl.Message)
}
