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
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/blacktop/postdeck/internal/logutil"
	"github.com/blacktop/postdeck/internal/postdeck"
	"github.com/spf13/cobra"
)

type shellCommand struct {
	usage string
	help  string
	// redraw reports whether the screen is drawn again after the command.
	redraw bool
	run    func(ctx context.Context, s *session, args []string) error
}

var errQuit = errors.New("quit")

func newShellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive session",
		Args:  cobra.NoArgs,
		RunE:  runShell,
	}
}

func runShell(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	sess, err := newSession(cmd)
	if err != nil {
		return err
	}
	sess.ctrl.Start(ctx)
	sess.draw()

	commands := shellCommands()
	for {
		line, err := sess.term.Prompt("postdeck>", false)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		name, rest := strings.ToLower(fields[0]), fields[1:]
		sc, ok := commands[name]
		if !ok {
			sess.term.Warn(fmt.Sprintf("unknown command %q (try help)", name))
			continue
		}

		err = sc.run(ctx, sess, rest)
		switch {
		case errors.Is(err, errQuit):
			return nil
		case err != nil:
			logutil.Debugf("%s: %v", name, err)
			reportShellError(sess, err)
		}
		if sc.redraw {
			sess.draw()
		}
	}
}

// reportShellError surfaces errors the workflows have not already shown to the user.
func reportShellError(s *session, err error) {
	if errors.Is(err, postdeck.ErrReported) {
		return
	}
	s.term.Warn(err.Error())
}

func shellCommands() map[string]shellCommand {
	commands := map[string]shellCommand{
		"generate": {
			usage: "generate", help: "generate a post from a title and prompt", redraw: true,
			run: func(ctx context.Context, s *session, _ []string) error {
				return s.generate(ctx, "", "")
			},
		},
		"wait": {
			usage: "wait <id> [attempts]", help: "poll a post until it is ready, then show it", redraw: true,
			run: func(ctx context.Context, s *session, args []string) error {
				id, err := idArg(args)
				if err != nil {
					return err
				}
				attempts := s.ctrl.PollAttempts()
				if len(args) > 1 {
					if attempts, err = strconv.Atoi(args[1]); err != nil {
						return fmt.Errorf("attempts: %w", err)
					}
				}
				return s.wait(ctx, id, "", "", attempts)
			},
		},
		"publish": {
			usage: "publish <id> [platform]", help: "publish a card's content to a linked account",
			run: func(ctx context.Context, s *session, args []string) error {
				id, err := idArg(args)
				if err != nil {
					return err
				}
				return s.publish(ctx, id, optArg(args, 1))
			},
		},
		"prompt": {
			usage: "prompt <id>", help: "show or hide a card's prompt", redraw: true,
			run: func(_ context.Context, s *session, args []string) error {
				id, err := idArg(args)
				if err != nil {
					return err
				}
				return s.ctrl.TogglePrompt(id)
			},
		},
		"history": {
			usage: "history <id>", help: "show a post's edit history",
			run: func(ctx context.Context, s *session, args []string) error {
				id, err := idArg(args)
				if err != nil {
					return err
				}
				return s.history(ctx, id)
			},
		},
		"edit": {
			usage: "edit <id>", help: "edit a post's title and content", redraw: true,
			run: func(ctx context.Context, s *session, args []string) error {
				id, err := idArg(args)
				if err != nil {
					return err
				}
				return s.ctrl.EditPost(ctx, id)
			},
		},
		"delete": {
			usage: "delete <id>", help: "delete a post", redraw: true,
			run: func(ctx context.Context, s *session, args []string) error {
				id, err := idArg(args)
				if err != nil {
					return err
				}
				return s.ctrl.DeletePost(ctx, id)
			},
		},
		"accounts": {
			usage: "accounts", help: "refresh linked accounts", redraw: true,
			run: func(ctx context.Context, s *session, _ []string) error {
				s.ctrl.RefreshLinkedAccounts(ctx)
				return nil
			},
		},
		"link": {
			usage: "link [platform]", help: "link an account", redraw: true,
			run: func(ctx context.Context, s *session, args []string) error {
				return s.link(ctx, optArg(args, 0))
			},
		},
		"unlink": {
			usage: "unlink <platform>", help: "unlink an account", redraw: true,
			run: func(ctx context.Context, s *session, args []string) error {
				return s.unlink(ctx, optArg(args, 0))
			},
		},
		"show": {
			usage: "show", help: "draw the screen again", redraw: true,
			run: func(context.Context, *session, []string) error { return nil },
		},
		"quit": {
			usage: "quit", help: "leave the session",
			run: func(context.Context, *session, []string) error { return errQuit },
		},
	}
	commands["exit"] = commands["quit"]
	commands["help"] = shellCommand{
		usage: "help", help: "list commands",
		run: func(_ context.Context, s *session, _ []string) error {
			printShellHelp(s.term.Out(), commands)
			return nil
		},
	}
	return commands
}

func printShellHelp(w io.Writer, commands map[string]shellCommand) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		sc := commands[name]
		fmt.Fprintf(w, "  %-26s %s\n", sc.usage, sc.help)
	}
}

func idArg(args []string) (postdeck.PostID, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return "", errors.New("missing post id")
	}
	return postdeck.PostID(strings.TrimPrefix(args[0], "#")), nil
}

func optArg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
