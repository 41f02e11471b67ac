package workflow

import (
	"context"
	"time"

	"github.com/blacktop/postdeck/internal/backend"
	"github.com/blacktop/postdeck/internal/postdeck"
	"github.com/blacktop/postdeck/internal/ui"
	"github.com/blacktop/postdeck/internal/verify"
)

// Backend is the set of server calls the workflows depend on.
type Backend interface {
	LinkedAccounts(ctx context.Context) ([]postdeck.LinkedAccount, error)
	Unlink(ctx context.Context, platform postdeck.Platform) error
	Link(ctx context.Context, platform postdeck.Platform, accessToken, username string) error
	Generate(ctx context.Context, prompt string) (*backend.GenerateResult, error)
	GetPost(ctx context.Context, id postdeck.PostID) (string, error)
	Publish(ctx context.Context, platform postdeck.Platform, message string) error
	ListPosts(ctx context.Context) ([]postdeck.Post, error)
	History(ctx context.Context, id postdeck.PostID) ([]postdeck.HistoryEntry, error)
	EditPost(ctx context.Context, id postdeck.PostID, title, content string) (string, string, error)
	DeletePost(ctx context.Context, id postdeck.PostID) error
}

// Strategy selects how a generated post reaches the screen.
type Strategy string

const (
	// Immediate renders straight from the generation response.
	Immediate Strategy = "immediate"
	// Confirm ignores the response body and polls the post until it is ready.
	Confirm Strategy = "confirm"
)

// DefaultPollAttempts is the confirmation budget used when none is configured.
const DefaultPollAttempts = 5

type Options struct {
	Strategy     Strategy
	PollAttempts int
	PollDelay    time.Duration
	Verifiers    verify.Registry
}

// Controller runs the session's workflows against one view.
type Controller struct {
	backend Backend
	view    *ui.View
	notify  ui.Notifier
	prompt  ui.Prompter
	opts    Options
}

// New wires a controller. A zero strategy means Immediate.
func New(b Backend, view *ui.View, notify ui.Notifier, prompt ui.Prompter, opts Options) *Controller {
	if opts.Strategy == "" {
		opts.Strategy = Immediate
	}
	if opts.Verifiers == nil {
		opts.Verifiers = verify.Registry{}
	}
	return &Controller{backend: b, view: view, notify: notify, prompt: prompt, opts: opts}
}

// View exposes the session's view state.
func (c *Controller) View() *ui.View { return c.view }

// PollAttempts is the configured confirmation budget.
func (c *Controller) PollAttempts() int { return c.opts.PollAttempts }

// Start performs the page-load work: sync linked accounts and show existing posts.
func (c *Controller) Start(ctx context.Context) {
	c.RefreshLinkedAccounts(ctx)
	c.LoadPosts(ctx)
}
