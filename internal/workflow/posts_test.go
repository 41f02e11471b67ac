package workflow

import (
	"errors"

	"github.com/blacktop/postdeck/internal/postdeck"
)

func (s *WorkflowTestSuite) TestStart_LoadsAccountsAndPostsNewestOnTop() {
	s.backend.accounts = func() ([]postdeck.LinkedAccount, error) {
		return []postdeck.LinkedAccount{{Platform: postdeck.Mastodon, Username: "alice"}}, nil
	}
	s.backend.listPosts = func() ([]postdeck.Post, error) {
		return []postdeck.Post{
			{ID: "3", Title: "newest", Content: "c3"},
			{ID: "2", Title: "broken", Content: "undefined"},
			{ID: "1", Title: "oldest", Content: "c1"},
		}, nil
	}

	s.ctrl.Start(s.ctx)

	cards := s.view.Cards()
	s.Require().Len(cards, 2)
	s.Equal("newest", cards[0].Post.Title)
	s.Equal("oldest", cards[1].Post.Title)
	s.True(s.view.Affordance(postdeck.Mastodon).Enabled)
}

func (s *WorkflowTestSuite) TestTogglePrompt() {
	_, err := s.view.Render("t", "p", "c", "1")
	s.Require().NoError(err)

	s.Require().NoError(s.ctrl.TogglePrompt("1"))
	card, ok := s.view.Card("1")
	s.Require().True(ok)
	s.True(card.PromptVisible)
	s.Error(s.ctrl.TogglePrompt("2"))
}

func (s *WorkflowTestSuite) TestShowHistory() {
	s.backend.history = func(id postdeck.PostID) ([]postdeck.HistoryEntry, error) {
		s.Equal(postdeck.PostID("4"), id)
		return []postdeck.HistoryEntry{{EditedAt: "2025-01-01 00:00:00", PreviousContent: "v1"}}, nil
	}
	history, err := s.ctrl.ShowHistory(s.ctx, "4")
	s.Require().NoError(err)
	s.Len(history, 1)

	s.backend.history = func(postdeck.PostID) ([]postdeck.HistoryEntry, error) {
		return nil, &postdeck.APIError{Status: 404, Message: "Not found"}
	}
	_, err = s.ctrl.ShowHistory(s.ctx, "4")
	s.Error(err)
	s.Equal(note{"fail", "Failed to load edit history: Not found"}, s.user.last())
}

func (s *WorkflowTestSuite) TestEditPost_KeepsBlankFields() {
	_, err := s.view.Render("old title", "p", "old content", "8")
	s.Require().NoError(err)
	s.user.answers = []string{"", "new content"}
	s.backend.editPost = func(id postdeck.PostID, title, content string) (string, string, error) {
		s.Equal("old title", title)
		s.Equal("new content", content)
		return title, content, nil
	}

	s.Require().NoError(s.ctrl.EditPost(s.ctx, "8"))
	ctl, _, err := s.view.PublishControl("8", postdeck.Mastodon)
	s.Require().NoError(err)
	s.Equal("new content", ctl.Message)
	s.Equal(note{"success", "Post updated!"}, s.user.last())
}

func (s *WorkflowTestSuite) TestEditPost_Rejected() {
	_, err := s.view.Render("t", "p", "c", "8")
	s.Require().NoError(err)
	s.user.answers = []string{"t2", "c2"}
	s.backend.editPost = func(postdeck.PostID, string, string) (string, string, error) {
		return "", "", &postdeck.APIError{Status: 400, Message: "Title and content cannot be empty"}
	}

	s.Error(s.ctrl.EditPost(s.ctx, "8"))
	card, _ := s.view.Card("8")
	s.Equal("c", card.Post.Content)
	s.Error(s.ctrl.EditPost(s.ctx, "missing"))
}

func (s *WorkflowTestSuite) TestDeletePost() {
	_, err := s.view.Render("t", "p", "c", "8")
	s.Require().NoError(err)

	s.user.confirms = []bool{false, true, true}
	s.NoError(s.ctrl.DeletePost(s.ctx, "8"))
	s.Zero(s.backend.count("DeletePost"))

	s.backend.deletePost = func(postdeck.PostID) error { return errors.New("offline") }
	s.Error(s.ctrl.DeletePost(s.ctx, "8"))
	s.Len(s.view.Cards(), 1)

	s.backend.deletePost = func(postdeck.PostID) error { return nil }
	s.NoError(s.ctrl.DeletePost(s.ctx, "8"))
	s.Empty(s.view.Cards())
}
