package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/blacktop/postdeck/internal/logutil"
	"github.com/blacktop/postdeck/internal/postdeck"
)

const (
	msgMissingInput     = "Please enter both a title and a prompt!"
	msgInvalidContent   = "Error: Generated post content is invalid."
	msgGenerationFailed = "Error: Post generation failed. Please try again."
)

// checkInput trims title and prompt and warns when either is blank.
func (c *Controller) checkInput(title, prompt string) (string, string, error) {
	title = strings.TrimSpace(title)
	prompt = strings.TrimSpace(prompt)
	if title == "" || prompt == "" {
		c.notify.Warn(msgMissingInput)
		return "", "", postdeck.Reported(postdeck.ValidationError{Provider: "generate", Reason: "title and prompt are required"})
	}
	return title, prompt, nil
}

// SubmitGeneration requests a post for prompt and renders it under title.
// The busy indicator is shown for the whole request lifecycle, including errors.
func (c *Controller) SubmitGeneration(ctx context.Context, title, prompt string) error {
	title, prompt, err := c.checkInput(title, prompt)
	if err != nil {
		return err
	}

	c.view.ShowBusy()
	defer c.view.HideBusy()

	logutil.Debugf("submitting generation: title=%q", title)
	res, err := c.backend.Generate(ctx, prompt)
	if err != nil {
		logutil.Errorf("generating post: %v", err)
		c.view.ShowError(postdeck.Reason(err, postdeck.UnknownError))
		return postdeck.Reported(err)
	}

	switch c.opts.Strategy {
	case Confirm:
		if res.ID == "" {
			return c.missingID()
		}
		if err := c.WaitForReady(ctx, res.ID, title, prompt, c.opts.PollAttempts); err != nil {
			return err
		}
	default:
		if !postdeck.Usable(res.Content) {
			logutil.Errorf("invalid post content received: %q", res.Content)
			c.notify.Fail(msgInvalidContent)
			return postdeck.Reported(postdeck.ErrInvalidContent)
		}
		if res.ID == "" {
			return c.missingID()
		}
		if _, err := c.view.Render(title, prompt, res.Content, res.ID); err != nil {
			return err
		}
		logutil.Infof("post %s rendered", res.ID)
	}

	c.view.ClearInput()
	c.view.ClearError()
	return nil
}

// WaitForReady polls post id until its content is usable, then renders it.
// Each attempt issues one fetch; failed fetches and unready content both cost
// an attempt. Running out of attempts is terminal and nothing is rendered.
// A blank title or prompt is rejected before any fetch.
func (c *Controller) WaitForReady(ctx context.Context, id postdeck.PostID, title, prompt string, attempts int) error {
	title, prompt, err := c.checkInput(title, prompt)
	if err != nil {
		return err
	}
	if id == "" {
		return postdeck.ErrMissingID
	}

	var lastErr error
	for remaining := attempts; remaining > 0; remaining-- {
		logutil.Debugf("checking if post %s is ready (%d attempts left)", id, remaining)

		content, err := c.backend.GetPost(ctx, id)
		switch {
		case err != nil:
			lastErr = err
			logutil.Warnf("fetching post %s: %v", id, err)
		case postdeck.Usable(content):
			rendered, err := c.view.Render(title, prompt, content, id)
			if err != nil {
				return err
			}
			if rendered {
				logutil.Infof("post %s is ready", id)
			} else {
				logutil.Debugf("post %s already on screen", id)
			}
			return nil
		default:
			logutil.Debugf("post %s not ready yet", id)
		}

		if remaining > 1 {
			if err := sleep(ctx, c.opts.PollDelay); err != nil {
				return err
			}
		}
	}

	logutil.Errorf("post %s still not ready after %d attempts", id, attempts)
	c.notify.Fail(msgGenerationFailed)
	if lastErr != nil {
		return postdeck.Reported(fmt.Errorf("%w: %w", postdeck.ErrConfirmationExhausted, lastErr))
	}
	return postdeck.Reported(postdeck.ErrConfirmationExhausted)
}

// missingID reports a generation response without a post id.
func (c *Controller) missingID() error {
	logutil.Errorf("generation response carries no post id")
	c.notify.Fail(msgGenerationFailed)
	return postdeck.Reported(postdeck.ErrMissingID)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
