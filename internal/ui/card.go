package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/blacktop/postdeck/internal/postdeck"
	"github.com/charmbracelet/lipgloss"
)

// ControlKind identifies an action exposed on a card.
type ControlKind int

const (
	ShowPrompt ControlKind = iota
	ViewHistory
	Edit
	Delete
	Publish
)

// Control is one affordance on a rendered card.
type Control struct {
	Kind     ControlKind
	Label    string
	PostID   postdeck.PostID
	Platform postdeck.Platform
	// Message is the exact rendered content a publish control sends.
	Message string
}

// Card is one entry of the post list.
type Card struct {
	Post          postdeck.Post
	PromptVisible bool
	Controls      []Control
}

func newCard(post postdeck.Post, platforms []postdeck.Platform) *Card {
	controls := []Control{
		{Kind: ShowPrompt, Label: "Show Prompt", PostID: post.ID},
		{Kind: ViewHistory, Label: "View Edit History", PostID: post.ID},
		{Kind: Edit, Label: "Edit", PostID: post.ID},
		{Kind: Delete, Label: "Delete", PostID: post.ID},
	}
	for _, p := range platforms {
		controls = append(controls, Control{
			Kind:     Publish,
			Label:    "Post to " + p.DisplayName(),
			PostID:   post.ID,
			Platform: p,
			Message:  post.Content,
		})
	}
	return &Card{Post: post, Controls: controls}
}

func (c *Card) setContent(title, content string) {
	c.Post.Title = title
	c.Post.Content = content
	for i := range c.Controls {
		if c.Controls[i].Kind == Publish {
			c.Controls[i].Message = content
		}
	}
}

// CardRenderer turns view state into terminal markup.
type CardRenderer struct {
	frame    lipgloss.Style
	title    lipgloss.Style
	muted    lipgloss.Style
	enabled  lipgloss.Style
	disabled lipgloss.Style
	errStyle lipgloss.Style
}

// NewCardRenderer builds the default styles.
func NewCardRenderer() CardRenderer {
	return CardRenderer{
		frame:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).MarginTop(1),
		title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		muted:    lipgloss.NewStyle().Faint(true),
		enabled:  lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		disabled: lipgloss.NewStyle().Strikethrough(true).Faint(true),
		errStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}
}

// Card renders one card. Publish controls are drawn from the given affordances.
func (r CardRenderer) Card(c Card, affordances map[postdeck.Platform]postdeck.Affordance) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", r.title.Render(c.Post.Title), r.muted.Render("#"+c.Post.ID.String()))
	b.WriteString(c.Post.Content)
	b.WriteString("\n")
	created := "Generated just now"
	if !c.Post.CreatedAt.IsZero() {
		created = "Generated " + c.Post.CreatedAt.Format(time.DateTime)
	}
	b.WriteString(r.muted.Render(created))
	if c.PromptVisible {
		fmt.Fprintf(&b, "\n%s %s", r.muted.Render("Prompt:"), c.Post.Prompt)
	}
	b.WriteString("\n")

	labels := make([]string, 0, len(c.Controls))
	for _, ctl := range c.Controls {
		label := ctl.Label
		if ctl.Kind == ShowPrompt && c.PromptVisible {
			label = "Hide Prompt"
		}
		if ctl.Kind != Publish {
			labels = append(labels, "["+label+"]")
			continue
		}
		aff := affordances[ctl.Platform]
		if aff.Enabled {
			labels = append(labels, r.enabled.Render("["+label+"]"))
		} else {
			labels = append(labels, r.disabled.Render("["+label+"]")+" "+r.muted.Render(aff.Tooltip))
		}
	}
	b.WriteString(strings.Join(labels, " "))

	return r.frame.Render(b.String())
}

// AccountRows renders the linked-account list, or a placeholder row when empty.
func (r CardRenderer) AccountRows(accounts []postdeck.LinkedAccount) []string {
	if len(accounts) == 0 {
		return []string{r.muted.Render("No accounts linked.")}
	}
	rows := make([]string, 0, len(accounts))
	for _, acct := range accounts {
		rows = append(rows, fmt.Sprintf("%s - %s [unlink %s]", strings.ToUpper(string(acct.Platform)), acct.Username, acct.Platform))
	}
	return rows
}

// ErrorRegion renders the persistent error message.
func (r CardRenderer) ErrorRegion(msg string) string {
	return r.errStyle.Render("Error: " + msg)
}
