package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/blacktop/postdeck/internal/logutil"
	"github.com/blacktop/postdeck/internal/postdeck"
)

// LoadPosts renders the posts already stored server-side. The backend lists
// newest first, so they are rendered in reverse to keep the newest on top.
func (c *Controller) LoadPosts(ctx context.Context) {
	posts, err := c.backend.ListPosts(ctx)
	if err != nil {
		logutil.Errorf("loading posts: %v", err)
		return
	}
	for i := len(posts) - 1; i >= 0; i-- {
		p := posts[i]
		if _, err := c.view.RenderPost(p); err != nil {
			logutil.Debugf("skipping post %s: %v", p.ID, err)
		}
	}
}

// TogglePrompt shows or hides the prompt on a card.
func (c *Controller) TogglePrompt(id postdeck.PostID) error {
	_, err := c.view.TogglePrompt(id)
	return err
}

// ShowHistory fetches the edit history of a post.
func (c *Controller) ShowHistory(ctx context.Context, id postdeck.PostID) ([]postdeck.HistoryEntry, error) {
	history, err := c.backend.History(ctx, id)
	if err != nil {
		logutil.Errorf("fetching history of %s: %v", id, err)
		c.notify.Fail(fmt.Sprintf("Failed to load edit history: %s", postdeck.Reason(err, postdeck.UnknownError)))
		return nil, postdeck.Reported(err)
	}
	return history, nil
}

// EditPost prompts for a new title and content, keeping the current value for
// any blank answer, and stores the edit.
func (c *Controller) EditPost(ctx context.Context, id postdeck.PostID) error {
	card, ok := c.view.Card(id)
	if !ok {
		return fmt.Errorf("no post #%s on screen", id)
	}

	title, err := c.prompt.Prompt(fmt.Sprintf("Title [%s]:", card.Post.Title), false)
	if err != nil {
		return fmt.Errorf("read title: %w", err)
	}
	content, err := c.prompt.Prompt("Content (blank keeps current):", false)
	if err != nil {
		return fmt.Errorf("read content: %w", err)
	}
	if strings.TrimSpace(title) == "" {
		title = card.Post.Title
	}
	if strings.TrimSpace(content) == "" {
		content = card.Post.Content
	}

	newTitle, newContent, err := c.backend.EditPost(ctx, id, strings.TrimSpace(title), strings.TrimSpace(content))
	if err != nil {
		logutil.Errorf("editing post %s: %v", id, err)
		c.notify.Fail(fmt.Sprintf("Failed to edit post: %s", postdeck.Reason(err, postdeck.UnknownError)))
		return postdeck.Reported(err)
	}

	c.view.UpdateCard(id, newTitle, newContent)
	c.notify.Success("Post updated!")
	return nil
}

// DeletePost removes a post after confirmation.
func (c *Controller) DeletePost(ctx context.Context, id postdeck.PostID) error {
	ok, err := c.prompt.Confirm(fmt.Sprintf("Are you sure you want to delete post #%s?", id))
	if err != nil || !ok {
		return nil
	}

	if err := c.backend.DeletePost(ctx, id); err != nil {
		logutil.Errorf("deleting post %s: %v", id, err)
		c.notify.Fail(fmt.Sprintf("Failed to delete post: %s", postdeck.Reason(err, postdeck.UnknownError)))
		return postdeck.Reported(err)
	}

	c.view.RemoveCard(id)
	c.notify.Success("Post deleted.")
	return nil
}
