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
	"github.com/blacktop/postdeck/internal/postdeck"
	"github.com/spf13/cobra"
)

// withSession opens a session, performs the page-load sync and runs fn. The
// screen is drawn afterwards when draw is set, even if fn failed.
func withSession(cmd *cobra.Command, draw bool, fn func(s *session) error) error {
	sess, err := newSession(cmd)
	if err != nil {
		return err
	}
	sess.ctrl.Start(cmd.Context())

	err = fn(sess)
	if draw {
		sess.draw()
	}
	return err
}

func newGenerateCommand() *cobra.Command {
	var title, prompt string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a post and show it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, true, func(s *session) error {
				return s.generate(cmd.Context(), title, prompt)
			})
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "Card title (kept client-side)")
	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "Prompt sent to the generator")
	return cmd
}

func newWaitCommand() *cobra.Command {
	var title, prompt string
	var attempts int
	cmd := &cobra.Command{
		Use:   "wait <id>",
		Short: "Poll a post until its content is ready, then show it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, true, func(s *session) error {
				if !cmd.Flags().Changed("attempts") {
					attempts = s.ctrl.PollAttempts()
				}
				return s.wait(cmd.Context(), postdeck.PostID(args[0]), title, prompt, attempts)
			})
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "Card title")
	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "Prompt the post was generated from")
	cmd.Flags().IntVar(&attempts, "attempts", 0, "Fetch attempts before giving up (default from config)")
	return cmd
}

func newPostsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "posts",
		Short: "Show linked accounts and existing posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, true, func(*session) error { return nil })
		},
	}
}

func newHistoryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "history <id>",
		Short: "Show a post's edit history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, false, func(s *session) error {
				return s.history(cmd.Context(), postdeck.PostID(args[0]))
			})
		},
	}
}

func newEditCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a post's title and content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, true, func(s *session) error {
				return s.ctrl.EditPost(cmd.Context(), postdeck.PostID(args[0]))
			})
		},
	}
}

func newDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, false, func(s *session) error {
				return s.ctrl.DeletePost(cmd.Context(), postdeck.PostID(args[0]))
			})
		},
	}
}

func newPublishCommand() *cobra.Command {
	var platform string
	cmd := &cobra.Command{
		Use:   "publish <id>",
		Short: "Publish a post's content to a linked account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, false, func(s *session) error {
				return s.publish(cmd.Context(), postdeck.PostID(args[0]), platform)
			})
		},
	}
	cmd.Flags().StringVar(&platform, "platform", "", "Target platform (defaults to the first configured one)")
	return cmd
}

func newAccountsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "Show linked accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := newSession(cmd)
			if err != nil {
				return err
			}
			sess.ctrl.RefreshLinkedAccounts(cmd.Context())
			sess.draw()
			return nil
		},
	}
}

func newLinkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "link [platform]",
		Short: "Link a Mastodon, Bluesky or X account",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, true, func(s *session) error {
				return s.link(cmd.Context(), optArg(args, 0))
			})
		},
	}
}

func newUnlinkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unlink <platform>",
		Short: "Unlink an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, true, func(s *session) error {
				return s.unlink(cmd.Context(), args[0])
			})
		},
	}
}
