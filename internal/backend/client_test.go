package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/blacktop/postdeck/internal/postdeck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken struct {
	value string
	ok    bool
	calls int
}

func (s *staticToken) Token() (string, bool) {
	s.calls++
	return s.value, s.ok
}

func newTestClient(t *testing.T, handler http.HandlerFunc, tokens TokenSource) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Config{BaseURL: srv.URL + "/", Timeout: 5 * time.Second, Tokens: tokens})
	require.NoError(t, err)
	return c
}

func decodeBody(t *testing.T, r *http.Request) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	return body
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewRejectsRelativeURL(t *testing.T) {
	_, err := New(Config{BaseURL: "localhost"})
	var verr postdeck.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestGenerateSendsPromptAndToken(t *testing.T) {
	tokens := &staticToken{value: "tok", ok: true}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/generate/", r.URL.Path)
		assert.Equal(t, "tok", r.Header.Get("X-CSRFToken"))
		assert.Equal(t, map[string]string{"prompt": "write a haiku"}, decodeBody(t, r))
		writeJSON(w, http.StatusOK, map[string]any{"post": "autumn leaves fall...", "id": 42})
	}, tokens)

	res, err := c.Generate(context.Background(), "write a haiku")
	require.NoError(t, err)
	assert.Equal(t, postdeck.PostID("42"), res.ID)
	assert.Equal(t, "autumn leaves fall...", res.Content)
	assert.Equal(t, 1, tokens.calls)
}

func TestMissingTokenStillSendsRequest(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("X-CSRFToken"))
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "CSRF verification failed"})
	}, &staticToken{})

	_, err := c.Generate(context.Background(), "p")
	var apiErr *postdeck.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, "CSRF verification failed", apiErr.Message)
}

func TestGetRequestsAreNotSigned(t *testing.T) {
	tokens := &staticToken{value: "tok", ok: true}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/linked-accounts/", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{
			"linked_accounts": []map[string]string{{"platform": "mastodon", "username": "alice"}},
		})
	}, tokens)

	accounts, err := c.LinkedAccounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []postdeck.LinkedAccount{{Platform: postdeck.Mastodon, Username: "alice"}}, accounts)
	assert.Zero(t, tokens.calls)
}

func TestLinkedAccountsDecodeFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>login</html>"))
	}, nil)

	_, err := c.LinkedAccounts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestUnlinkSuccessVariants(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]any
		wantErr string
	}{
		{name: "bool", payload: map[string]any{"success": true}},
		{name: "message string", payload: map[string]any{"success": "mastodon account unlinked successfully!"}},
		{name: "rejected", payload: map[string]any{"success": false, "error": "not linked"}, wantErr: "not linked"},
		{name: "missing", payload: map[string]any{}, wantErr: "request failed (status 200)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/unlink-account/", r.URL.Path)
				assert.Equal(t, map[string]string{"platform": "mastodon"}, decodeBody(t, r))
				writeJSON(w, http.StatusOK, tt.payload)
			}, nil)

			err := c.Unlink(context.Background(), postdeck.Mastodon)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestLinkSurfacesServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/link-bluesky/", r.URL.Path)
		assert.Equal(t, map[string]string{"access_token": "t", "username": "bob"}, decodeBody(t, r))
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing token or username"})
	}, nil)

	err := c.Link(context.Background(), postdeck.Bluesky, "t", "bob")
	assert.Equal(t, "Missing token or username", postdeck.Reason(err, postdeck.UnknownError))
}

func TestPublishAndGetPost(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/mastodon-post/":
			assert.Equal(t, map[string]string{"message": "hello"}, decodeBody(t, r))
			writeJSON(w, http.StatusOK, map[string]any{"success": false, "error": "no linked account"})
		case "/get-post/7/":
			writeJSON(w, http.StatusOK, map[string]string{"content": "undefined"})
		default:
			http.NotFound(w, r)
		}
	}, nil)

	err := c.Publish(context.Background(), postdeck.Mastodon, "hello")
	assert.EqualError(t, err, "no linked account")

	content, err := c.GetPost(context.Background(), "7")
	require.NoError(t, err)
	assert.False(t, postdeck.Usable(content))
}

func TestPostCollaborators(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/posts/":
			writeJSON(w, http.StatusOK, map[string]any{"posts": []map[string]any{
				{"id": 2, "title": "B", "prompt": "pb", "content": "cb", "created_at": "2025-03-01 10:00:00"},
				{"id": 1, "title": "A", "prompt": "pa", "content": "ca", "created_at": "bogus"},
			}})
		case r.URL.Path == "/post-history/2/":
			writeJSON(w, http.StatusOK, map[string]any{"history": []map[string]string{
				{"edited_at": "2025-03-02 09:00:00", "previous_content": "old"},
			}})
		case r.URL.Path == "/edit-post/2/":
			assert.Equal(t, map[string]string{"title": "B2", "content": "cb2"}, decodeBody(t, r))
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "new_title": "B2", "new_content": "cb2"})
		case r.URL.Path == "/delete-post/2/" && r.Method == http.MethodDelete:
			writeJSON(w, http.StatusOK, map[string]any{"success": true})
		default:
			http.NotFound(w, r)
		}
	}, nil)
	ctx := context.Background()

	posts, err := c.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, postdeck.PostID("2"), posts[0].ID)
	assert.Equal(t, 2025, posts[0].CreatedAt.Year())
	assert.True(t, posts[1].CreatedAt.IsZero())

	history, err := c.History(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, []postdeck.HistoryEntry{{EditedAt: "2025-03-02 09:00:00", PreviousContent: "old"}}, history)

	title, content, err := c.EditPost(ctx, "2", "B2", "cb2")
	require.NoError(t, err)
	assert.Equal(t, "B2", title)
	assert.Equal(t, "cb2", content)

	assert.NoError(t, c.DeletePost(ctx, "2"))
}

func TestPostIDAcceptsStrings(t *testing.T) {
	var res GenerateResult
	require.NoError(t, json.Unmarshal([]byte(`{"post":"x","id":"abc-1"}`), &res))
	assert.Equal(t, postdeck.PostID("abc-1"), res.ID)
}
