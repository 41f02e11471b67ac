package workflow

import (
	"context"
	"errors"
	"sync"

	"github.com/blacktop/postdeck/internal/backend"
	"github.com/blacktop/postdeck/internal/postdeck"
)

var errNotStubbed = errors.New("not stubbed")

// fakeBackend records calls and answers from per-method stubs.
type fakeBackend struct {
	mu    sync.Mutex
	calls map[string]int

	accounts    func() ([]postdeck.LinkedAccount, error)
	unlink      func(postdeck.Platform) error
	link        func(postdeck.Platform, string, string) error
	generate    func(string) (*backend.GenerateResult, error)
	getPost     func(postdeck.PostID) (string, error)
	publish     func(postdeck.Platform, string) error
	listPosts   func() ([]postdeck.Post, error)
	history     func(postdeck.PostID) ([]postdeck.HistoryEntry, error)
	editPost    func(postdeck.PostID, string, string) (string, string, error)
	deletePost  func(postdeck.PostID) error
	lastMessage string
}

func (f *fakeBackend) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[name]++
}

func (f *fakeBackend) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) LinkedAccounts(context.Context) ([]postdeck.LinkedAccount, error) {
	f.record("LinkedAccounts")
	if f.accounts == nil {
		return nil, errNotStubbed
	}
	return f.accounts()
}

func (f *fakeBackend) Unlink(_ context.Context, p postdeck.Platform) error {
	f.record("Unlink")
	if f.unlink == nil {
		return errNotStubbed
	}
	return f.unlink(p)
}

func (f *fakeBackend) Link(_ context.Context, p postdeck.Platform, tok, user string) error {
	f.record("Link")
	if f.link == nil {
		return errNotStubbed
	}
	return f.link(p, tok, user)
}

func (f *fakeBackend) Generate(_ context.Context, prompt string) (*backend.GenerateResult, error) {
	f.record("Generate")
	if f.generate == nil {
		return nil, errNotStubbed
	}
	return f.generate(prompt)
}

func (f *fakeBackend) GetPost(_ context.Context, id postdeck.PostID) (string, error) {
	f.record("GetPost")
	if f.getPost == nil {
		return "", errNotStubbed
	}
	return f.getPost(id)
}

func (f *fakeBackend) Publish(_ context.Context, p postdeck.Platform, msg string) error {
	f.record("Publish")
	f.mu.Lock()
	f.lastMessage = msg
	f.mu.Unlock()
	if f.publish == nil {
		return errNotStubbed
	}
	return f.publish(p, msg)
}

func (f *fakeBackend) ListPosts(context.Context) ([]postdeck.Post, error) {
	f.record("ListPosts")
	if f.listPosts == nil {
		return nil, errNotStubbed
	}
	return f.listPosts()
}

func (f *fakeBackend) History(_ context.Context, id postdeck.PostID) ([]postdeck.HistoryEntry, error) {
	f.record("History")
	if f.history == nil {
		return nil, errNotStubbed
	}
	return f.history(id)
}

func (f *fakeBackend) EditPost(_ context.Context, id postdeck.PostID, title, content string) (string, string, error) {
	f.record("EditPost")
	if f.editPost == nil {
		return "", "", errNotStubbed
	}
	return f.editPost(id, title, content)
}

func (f *fakeBackend) DeletePost(_ context.Context, id postdeck.PostID) error {
	f.record("DeletePost")
	if f.deletePost == nil {
		return errNotStubbed
	}
	return f.deletePost(id)
}

type note struct {
	level string
	msg   string
}

// fakeUser is both notifier and prompter. Answers are consumed in order.
type fakeUser struct {
	notes    []note
	answers  []string
	confirms []bool
	prompts  []string
}

func (u *fakeUser) Success(msg string) { u.notes = append(u.notes, note{"success", msg}) }
func (u *fakeUser) Warn(msg string)    { u.notes = append(u.notes, note{"warn", msg}) }
func (u *fakeUser) Fail(msg string)    { u.notes = append(u.notes, note{"fail", msg}) }

func (u *fakeUser) Prompt(label string, _ bool) (string, error) {
	u.prompts = append(u.prompts, label)
	if len(u.answers) == 0 {
		return "", errors.New("no more answers")
	}
	a := u.answers[0]
	u.answers = u.answers[1:]
	return a, nil
}

func (u *fakeUser) Confirm(question string) (bool, error) {
	u.prompts = append(u.prompts, question)
	if len(u.confirms) == 0 {
		return false, errors.New("no more confirmations")
	}
	c := u.confirms[0]
	u.confirms = u.confirms[1:]
	return c, nil
}

func (u *fakeUser) last() note {
	if len(u.notes) == 0 {
		return note{}
	}
	return u.notes[len(u.notes)-1]
}
