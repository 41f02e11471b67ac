package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/blacktop/postdeck/internal/logutil"
	"github.com/blacktop/postdeck/internal/postdeck"
	"github.com/hashicorp/go-cleanhttp"
)

const userAgent = "postdeck/1"

// TokenSource supplies the request-signing token.
type TokenSource interface {
	Token() (string, bool)
}

// Config describes how to reach the generation backend.
type Config struct {
	BaseURL     string
	TokenHeader string
	Timeout     time.Duration
	Jar         http.CookieJar
	Tokens      TokenSource
}

// Client talks to the post-generation backend over JSON.
type Client struct {
	http   *http.Client
	base   *url.URL
	header string
	tokens TokenSource
}

// GenerateResult is the backend's answer to a generation request.
type GenerateResult struct {
	ID      postdeck.PostID `json:"id"`
	Content string          `json:"post"`
	Title   string          `json:"title"`
}

// New constructs a backend client.
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, postdeck.ValidationError{Provider: "backend", Reason: fmt.Sprintf("base url %q must be absolute", cfg.BaseURL)}
	}

	httpClient := cleanhttp.DefaultPooledClient()
	httpClient.Timeout = cfg.Timeout
	httpClient.Jar = cfg.Jar

	header := cfg.TokenHeader
	if header == "" {
		header = "X-CSRFToken"
	}

	return &Client{http: httpClient, base: base, header: header, tokens: cfg.Tokens}, nil
}

// LinkedAccounts fetches the authoritative set of linked publish targets.
func (c *Client) LinkedAccounts(ctx context.Context) ([]postdeck.LinkedAccount, error) {
	var out struct {
		LinkedAccounts []postdeck.LinkedAccount `json:"linked_accounts"`
	}
	if err := c.do(ctx, http.MethodGet, "/linked-accounts/", nil, &out); err != nil {
		return nil, fmt.Errorf("linked accounts: %w", err)
	}
	return out.LinkedAccounts, nil
}

// Unlink removes the linked account for platform.
func (c *Client) Unlink(ctx context.Context, platform postdeck.Platform) error {
	var out outcome
	if err := c.do(ctx, http.MethodPost, "/unlink-account/", map[string]string{"platform": string(platform)}, &out); err != nil {
		return fmt.Errorf("unlink %s: %w", platform, err)
	}
	return out.err()
}

// Link stores platform credentials server-side.
func (c *Client) Link(ctx context.Context, platform postdeck.Platform, accessToken, username string) error {
	body := map[string]string{"access_token": accessToken, "username": username}
	if err := c.do(ctx, http.MethodPost, "/link-"+string(platform)+"/", body, nil); err != nil {
		return fmt.Errorf("link %s: %w", platform, err)
	}
	return nil
}

// Generate requests a new post for prompt. The title is a client-side label and is not sent.
func (c *Client) Generate(ctx context.Context, prompt string) (*GenerateResult, error) {
	var out GenerateResult
	if err := c.do(ctx, http.MethodPost, "/generate/", map[string]string{"prompt": prompt}, &out); err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	return &out, nil
}

// GetPost returns the current content of a post.
func (c *Client) GetPost(ctx context.Context, id postdeck.PostID) (string, error) {
	var out struct {
		Content string `json:"content"`
	}
	if err := c.do(ctx, http.MethodGet, "/get-post/"+url.PathEscape(id.String())+"/", nil, &out); err != nil {
		return "", fmt.Errorf("get post %s: %w", id, err)
	}
	return out.Content, nil
}

// Publish posts message to the linked account on platform.
func (c *Client) Publish(ctx context.Context, platform postdeck.Platform, message string) error {
	var out outcome
	if err := c.do(ctx, http.MethodPost, "/"+string(platform)+"-post/", map[string]string{"message": message}, &out); err != nil {
		return fmt.Errorf("publish to %s: %w", platform, err)
	}
	return out.err()
}

type postRecord struct {
	ID        postdeck.PostID `json:"id"`
	Title     string          `json:"title"`
	Prompt    string          `json:"prompt"`
	Content   string          `json:"content"`
	CreatedAt string          `json:"created_at"`
}

// ListPosts returns every stored post, most recent first.
func (c *Client) ListPosts(ctx context.Context) ([]postdeck.Post, error) {
	var out struct {
		Posts []postRecord `json:"posts"`
	}
	if err := c.do(ctx, http.MethodGet, "/posts/", nil, &out); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	posts := make([]postdeck.Post, 0, len(out.Posts))
	for _, rec := range out.Posts {
		p := postdeck.Post{ID: rec.ID, Title: rec.Title, Prompt: rec.Prompt, Content: rec.Content}
		if ts, err := time.Parse(time.DateTime, rec.CreatedAt); err == nil {
			p.CreatedAt = ts
		}
		posts = append(posts, p)
	}
	return posts, nil
}

// History returns the edit history of a post, newest first.
func (c *Client) History(ctx context.Context, id postdeck.PostID) ([]postdeck.HistoryEntry, error) {
	var out struct {
		History []postdeck.HistoryEntry `json:"history"`
	}
	if err := c.do(ctx, http.MethodGet, "/post-history/"+url.PathEscape(id.String())+"/", nil, &out); err != nil {
		return nil, fmt.Errorf("post history %s: %w", id, err)
	}
	return out.History, nil
}

// EditPost replaces a post's title and content and returns the stored values.
func (c *Client) EditPost(ctx context.Context, id postdeck.PostID, title, content string) (string, string, error) {
	var out struct {
		outcome
		NewTitle   string `json:"new_title"`
		NewContent string `json:"new_content"`
	}
	body := map[string]string{"title": title, "content": content}
	if err := c.do(ctx, http.MethodPost, "/edit-post/"+url.PathEscape(id.String())+"/", body, &out); err != nil {
		return "", "", fmt.Errorf("edit post %s: %w", id, err)
	}
	if err := out.err(); err != nil {
		return "", "", err
	}
	return out.NewTitle, out.NewContent, nil
}

// DeletePost soft-deletes a post.
func (c *Client) DeletePost(ctx context.Context, id postdeck.PostID) error {
	var out outcome
	if err := c.do(ctx, http.MethodDelete, "/delete-post/"+url.PathEscape(id.String())+"/", nil, &out); err != nil {
		return fmt.Errorf("delete post %s: %w", id, err)
	}
	return out.err()
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet && c.tokens != nil {
		if tok, ok := c.tokens.Token(); ok {
			req.Header.Set(c.header, tok)
		}
	}

	logutil.Debugf("%s %s", method, req.URL.Path)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &postdeck.APIError{Status: resp.StatusCode, Message: errorMessage(raw)}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func errorMessage(raw []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	return payload.Error
}

// outcome is the {success, error} envelope used by mutating endpoints.
type outcome struct {
	Success flexBool `json:"success"`
	Error   string   `json:"error"`
}

func (o outcome) err() error {
	if o.Success {
		return nil
	}
	return &postdeck.APIError{Status: http.StatusOK, Message: o.Error}
}

// flexBool treats JSON true and any non-empty string as success.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case bool:
		*b = flexBool(t)
	case string:
		*b = flexBool(t != "")
	default:
		*b = false
	}
	return nil
}
