package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/blacktop/postdeck/internal/postdeck"
)

// View owns all view state of a session. Handlers go through its methods
// rather than mutating shared elements; each method completes its mutation
// under the lock before returning.
type View struct {
	mu sync.Mutex

	platforms []postdeck.Platform
	cards     []*Card // most recent first
	index     map[postdeck.PostID]*Card

	accounts []postdeck.LinkedAccount
	busy     bool
	errMsg   string

	inputTitle  string
	inputPrompt string

	renderer CardRenderer
}

// NewView creates an empty view whose cards carry a publish control per platform.
func NewView(platforms []postdeck.Platform) *View {
	return &View{
		platforms: append([]postdeck.Platform(nil), platforms...),
		index:     make(map[postdeck.PostID]*Card),
		renderer:  NewCardRenderer(),
	}
}

// Render prepends a new card for a confirmed post. It is idempotent per post
// ID: a post already on screen is left alone and Render reports false.
func (v *View) Render(title, prompt, content string, id postdeck.PostID) (bool, error) {
	return v.RenderPost(postdeck.Post{ID: id, Title: title, Prompt: prompt, Content: content})
}

// RenderPost is Render for a post that already carries its metadata, such as
// one loaded from the stored post list. Posts without an ID are rejected.
func (v *View) RenderPost(post postdeck.Post) (bool, error) {
	if !postdeck.Usable(post.Content) {
		return false, postdeck.ErrInvalidContent
	}
	if post.ID == "" {
		return false, postdeck.ErrMissingID
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.index[post.ID]; ok {
		return false, nil
	}

	post.MarkReady()
	card := newCard(post, v.platforms)

	v.cards = append([]*Card{card}, v.cards...)
	v.index[post.ID] = card
	return true, nil
}

// Cards returns a snapshot of the post list, most recent first.
func (v *View) Cards() []Card {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := make([]Card, 0, len(v.cards))
	for _, c := range v.cards {
		out = append(out, c.snapshot())
	}
	return out
}

// Card returns a snapshot of the card for id.
func (v *View) Card(id postdeck.PostID) (Card, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	c, ok := v.index[id]
	if !ok {
		return Card{}, false
	}
	return c.snapshot(), true
}

func (c *Card) snapshot() Card {
	cp := *c
	cp.Controls = append([]Control(nil), c.Controls...)
	return cp
}

// PublishControl returns the publish control of a card together with its current affordance.
func (v *View) PublishControl(id postdeck.PostID, platform postdeck.Platform) (Control, postdeck.Affordance, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	c, ok := v.index[id]
	if !ok {
		return Control{}, postdeck.Affordance{}, fmt.Errorf("no post #%s on screen", id)
	}
	for _, ctl := range c.Controls {
		if ctl.Kind == Publish && ctl.Platform == platform {
			return ctl, postdeck.AffordanceFor(v.accounts, platform), nil
		}
	}
	return Control{}, postdeck.Affordance{}, fmt.Errorf("post #%s has no %s control", id, platform.DisplayName())
}

// TogglePrompt flips prompt visibility and returns the new state.
func (v *View) TogglePrompt(id postdeck.PostID) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	c, ok := v.index[id]
	if !ok {
		return false, fmt.Errorf("no post #%s on screen", id)
	}
	c.PromptVisible = !c.PromptVisible
	return c.PromptVisible, nil
}

// UpdateCard replaces the title and content of an edited post in place.
func (v *View) UpdateCard(id postdeck.PostID, title, content string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	c, ok := v.index[id]
	if !ok {
		return false
	}
	c.setContent(title, content)
	return true
}

// RemoveCard drops a deleted post from the list.
func (v *View) RemoveCard(id postdeck.PostID) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	c, ok := v.index[id]
	if !ok {
		return false
	}
	delete(v.index, id)
	for i, existing := range v.cards {
		if existing == c {
			v.cards = append(v.cards[:i], v.cards[i+1:]...)
			break
		}
	}
	return true
}

// SetAccounts replaces the linked-account list with the latest fetch. Every
// publish affordance is derived from it from now on.
func (v *View) SetAccounts(accounts []postdeck.LinkedAccount) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.accounts = append([]postdeck.LinkedAccount{}, accounts...)
}

// Accounts returns the last fetched account set.
func (v *View) Accounts() []postdeck.LinkedAccount {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]postdeck.LinkedAccount(nil), v.accounts...)
}

// Affordance is the current state of every "publish to platform" control.
func (v *View) Affordance(platform postdeck.Platform) postdeck.Affordance {
	v.mu.Lock()
	defer v.mu.Unlock()
	return postdeck.AffordanceFor(v.accounts, platform)
}

func (v *View) affordancesLocked() map[postdeck.Platform]postdeck.Affordance {
	out := make(map[postdeck.Platform]postdeck.Affordance, len(v.platforms))
	for _, p := range v.platforms {
		out[p] = postdeck.AffordanceFor(v.accounts, p)
	}
	return out
}

func (v *View) ShowBusy() {
	v.mu.Lock()
	v.busy = true
	v.mu.Unlock()
}

func (v *View) HideBusy() {
	v.mu.Lock()
	v.busy = false
	v.mu.Unlock()
}

func (v *View) Busy() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.busy
}

// ShowError fills the persistent error region. It stays until ClearError.
func (v *View) ShowError(msg string) {
	v.mu.Lock()
	v.errMsg = msg
	v.mu.Unlock()
}

func (v *View) ClearError() {
	v.mu.Lock()
	v.errMsg = ""
	v.mu.Unlock()
}

func (v *View) ErrorMessage() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.errMsg
}

// SetInput fills the title and prompt input fields.
func (v *View) SetInput(title, prompt string) {
	v.mu.Lock()
	v.inputTitle, v.inputPrompt = title, prompt
	v.mu.Unlock()
}

func (v *View) Input() (string, string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.inputTitle, v.inputPrompt
}

func (v *View) ClearInput() {
	v.SetInput("", "")
}

// WriteTo draws the whole screen: busy line, error region, accounts, then cards.
func (v *View) WriteTo(w io.Writer) (int64, error) {
	v.mu.Lock()
	var b strings.Builder
	if v.busy {
		b.WriteString("Generating...\n")
	}
	if v.errMsg != "" {
		b.WriteString(v.renderer.ErrorRegion(v.errMsg))
		b.WriteString("\n")
	}
	b.WriteString("Linked accounts:\n")
	for _, row := range v.renderer.AccountRows(v.accounts) {
		b.WriteString("  " + row + "\n")
	}
	affordances := v.affordancesLocked()
	for _, c := range v.cards {
		b.WriteString(v.renderer.Card(*c, affordances))
		b.WriteString("\n")
	}
	v.mu.Unlock()

	n, err := io.WriteString(w, b.String())
	return int64(n), err
}
