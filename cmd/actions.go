/*
Copyright © 2025 blacktop

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/blacktop/postdeck/internal/postdeck"
)

var errControlDisabled = postdeck.Reported(errors.New("publish control is disabled"))

// askMissing prompts for whichever of title and prompt is blank.
func (s *session) askMissing(title, prompt string) (string, string, error) {
	var err error
	if strings.TrimSpace(title) == "" {
		if title, err = s.term.Prompt("Title:", false); err != nil {
			return "", "", err
		}
	}
	if strings.TrimSpace(prompt) == "" {
		if prompt, err = s.term.Prompt("Prompt:", false); err != nil {
			return "", "", err
		}
	}
	return title, prompt, nil
}

// generate fills the input fields, asking for anything missing, and submits them.
func (s *session) generate(ctx context.Context, title, prompt string) error {
	title, prompt, err := s.askMissing(title, prompt)
	if err != nil {
		return err
	}

	view := s.ctrl.View()
	view.SetInput(title, prompt)
	return s.ctrl.SubmitGeneration(ctx, title, prompt)
}

// wait polls post id, asking for a missing title or prompt first.
func (s *session) wait(ctx context.Context, id postdeck.PostID, title, prompt string, attempts int) error {
	title, prompt, err := s.askMissing(title, prompt)
	if err != nil {
		return err
	}
	return s.ctrl.WaitForReady(ctx, id, title, prompt, attempts)
}

// publish sends a card's content, but only through an enabled control.
func (s *session) publish(ctx context.Context, id postdeck.PostID, rawPlatform string) error {
	platform, err := s.platformArg(rawPlatform)
	if err != nil {
		return err
	}
	_, aff, err := s.ctrl.View().PublishControl(id, platform)
	if err != nil {
		return err
	}
	if !aff.Enabled {
		s.term.Warn(aff.Tooltip)
		return errControlDisabled
	}
	return s.ctrl.PublishCard(ctx, id, platform)
}

func (s *session) history(ctx context.Context, id postdeck.PostID) error {
	entries, err := s.ctrl.ShowHistory(ctx, id)
	if err != nil {
		return err
	}
	out := s.term.Out()
	if len(entries) == 0 {
		fmt.Fprintf(out, "post #%s has no edits\n", id)
		return nil
	}
	fmt.Fprintf(out, "edit history of post #%s:\n", id)
	for _, e := range entries {
		fmt.Fprintf(out, "  %s  %s\n", e.EditedAt, e.PreviousContent)
	}
	return nil
}

func (s *session) link(ctx context.Context, rawPlatform string) error {
	platform, err := s.platformArg(rawPlatform)
	if err != nil {
		return err
	}
	return s.ctrl.Link(ctx, platform)
}

func (s *session) unlink(ctx context.Context, rawPlatform string) error {
	if rawPlatform == "" {
		return errors.New("unlink needs a platform")
	}
	platform, err := postdeck.ParsePlatform(rawPlatform)
	if err != nil {
		return err
	}
	return s.ctrl.Unlink(ctx, platform)
}
