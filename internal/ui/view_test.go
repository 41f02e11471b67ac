package ui

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/blacktop/postdeck/internal/postdeck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPrependsReadyCard(t *testing.T) {
	v := NewView([]postdeck.Platform{postdeck.Mastodon})

	ok, err := v.Render("First", "p1", "one", "1")
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = v.Render("Daily", "write a haiku", "autumn leaves fall...", "42")
	require.NoError(t, err)
	require.True(t, ok)

	cards := v.Cards()
	require.Len(t, cards, 2)
	assert.Equal(t, "Daily", cards[0].Post.Title)
	assert.Equal(t, postdeck.Ready, cards[0].Post.Readiness)
	assert.Equal(t, "First", cards[1].Post.Title)

	ctl, aff, err := v.PublishControl("42", postdeck.Mastodon)
	require.NoError(t, err)
	assert.Equal(t, "autumn leaves fall...", ctl.Message)
	assert.False(t, aff.Enabled)
}

func TestRenderRejectsUnusableContent(t *testing.T) {
	v := NewView(nil)
	for _, content := range []string{"", "   ", "undefined", " undefined\n"} {
		ok, err := v.Render("t", "p", content, "1")
		assert.False(t, ok)
		assert.ErrorIs(t, err, postdeck.ErrInvalidContent)
	}
	assert.Empty(t, v.Cards())
}

func TestRenderRejectsMissingID(t *testing.T) {
	v := NewView([]postdeck.Platform{postdeck.Mastodon})
	for range 2 {
		ok, err := v.Render("t", "p", "content", "")
		assert.False(t, ok)
		assert.ErrorIs(t, err, postdeck.ErrMissingID)
	}
	assert.Empty(t, v.Cards())
}

func TestRenderIsIdempotentPerID(t *testing.T) {
	v := NewView(nil)

	var wg sync.WaitGroup
	var mu sync.Mutex
	rendered := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := v.Render("t", "p", "content", "7")
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				rendered++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, rendered)
	assert.Len(t, v.Cards(), 1)
}

func TestConcurrentRendersDoNotInterleave(t *testing.T) {
	v := NewView([]postdeck.Platform{postdeck.Mastodon})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := v.Render(fmt.Sprintf("t%d", i), "p", fmt.Sprintf("c%d", i), postdeck.PostID(fmt.Sprint(i)))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	cards := v.Cards()
	require.Len(t, cards, 50)
	for _, c := range cards {
		require.Len(t, c.Controls, 5)
		assert.Equal(t, c.Post.Content, c.Controls[4].Message)
	}
}

func TestRenderPostKeepsStoredTimestamp(t *testing.T) {
	v := NewView([]postdeck.Platform{postdeck.Mastodon})
	created := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

	ok, err := v.RenderPost(postdeck.Post{ID: "7", Title: "Stored", Content: "old news", CreatedAt: created})
	require.NoError(t, err)
	require.True(t, ok)

	var buf bytes.Buffer
	_, err = v.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Generated 2025-03-01 09:30:00")

	_, err = v.Render("Fresh", "p", "new", "8")
	require.NoError(t, err)
	buf.Reset()
	_, err = v.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Generated just now")
}

func TestAffordancesFollowAccounts(t *testing.T) {
	v := NewView([]postdeck.Platform{postdeck.Mastodon, postdeck.Bluesky})

	v.SetAccounts([]postdeck.LinkedAccount{{Platform: postdeck.Mastodon, Username: "alice"}})
	assert.True(t, v.Affordance(postdeck.Mastodon).Enabled)
	assert.Empty(t, v.Affordance(postdeck.Mastodon).Tooltip)
	assert.False(t, v.Affordance(postdeck.Bluesky).Enabled)

	v.SetAccounts(nil)
	aff := v.Affordance(postdeck.Mastodon)
	assert.False(t, aff.Enabled)
	assert.Equal(t, "You must link a Mastodon account first!", aff.Tooltip)
}

func TestEditDeleteAndToggle(t *testing.T) {
	v := NewView([]postdeck.Platform{postdeck.Mastodon})
	_, err := v.Render("t", "secret prompt", "c", "3")
	require.NoError(t, err)

	visible, err := v.TogglePrompt("3")
	require.NoError(t, err)
	assert.True(t, visible)

	require.True(t, v.UpdateCard("3", "t2", "c2"))
	ctl, _, err := v.PublishControl("3", postdeck.Mastodon)
	require.NoError(t, err)
	assert.Equal(t, "c2", ctl.Message)

	require.True(t, v.RemoveCard("3"))
	assert.False(t, v.RemoveCard("3"))
	_, err = v.TogglePrompt("3")
	assert.Error(t, err)
	assert.Empty(t, v.Cards())
}

func TestWriteToShowsScreen(t *testing.T) {
	v := NewView([]postdeck.Platform{postdeck.Mastodon})
	v.ShowError("Server error: boom")

	var buf bytes.Buffer
	_, err := v.WriteTo(&buf)
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Server error: boom")
	assert.Contains(t, out, "No accounts linked.")

	v.SetAccounts([]postdeck.LinkedAccount{{Platform: postdeck.Mastodon, Username: "alice"}})
	_, err = v.Render("Daily", "write a haiku", "autumn leaves fall...", "42")
	require.NoError(t, err)
	buf.Reset()
	_, err = v.WriteTo(&buf)
	require.NoError(t, err)
	out = buf.String()
	assert.Contains(t, out, "MASTODON - alice")
	assert.Contains(t, out, "Daily")
	assert.Contains(t, out, "autumn leaves fall...")
	assert.Contains(t, out, "Post to Mastodon")
	assert.NotContains(t, out, "write a haiku")
	assert.NotContains(t, out, "You must link")
}

func TestCardRendererIsPure(t *testing.T) {
	r := NewCardRenderer()
	card := *newCard(postdeck.Post{ID: "1", Title: "T", Prompt: "P", Content: "C"}, []postdeck.Platform{postdeck.Mastodon})
	aff := map[postdeck.Platform]postdeck.Affordance{
		postdeck.Mastodon: postdeck.AffordanceFor(nil, postdeck.Mastodon),
	}

	first := r.Card(card, aff)
	assert.Equal(t, first, r.Card(card, aff))
	assert.True(t, strings.Contains(first, "You must link a Mastodon account first!"))
}

func TestTerminalPromptAndConfirm(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminal(strings.NewReader("tok\nalice\nyes\nno"), &out)

	tok, err := term.Prompt("Token:", true)
	require.NoError(t, err)
	assert.Equal(t, "tok", tok)

	name, err := term.Prompt("Username:", false)
	require.NoError(t, err)
	assert.Equal(t, "alice", name)

	ok, err := term.Confirm("Sure?")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = term.Confirm("Sure?")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = term.Confirm("Again?")
	assert.Error(t, err)

	term.Warn("careful")
	assert.Contains(t, out.String(), "careful")
}
