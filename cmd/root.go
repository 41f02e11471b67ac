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
	"net/http/cookiejar"
	"net/url"

	"github.com/blacktop/postdeck/internal/backend"
	"github.com/blacktop/postdeck/internal/config"
	"github.com/blacktop/postdeck/internal/logutil"
	"github.com/blacktop/postdeck/internal/postdeck"
	"github.com/blacktop/postdeck/internal/token"
	"github.com/blacktop/postdeck/internal/ui"
	"github.com/blacktop/postdeck/internal/verify"
	"github.com/blacktop/postdeck/internal/verify/bluesky"
	"github.com/blacktop/postdeck/internal/verify/mastodon"
	"github.com/blacktop/postdeck/internal/verify/twitter"
	"github.com/blacktop/postdeck/internal/workflow"
	"github.com/spf13/cobra"
)

var (
	configPath   string
	baseURLFlag  string
	cookieFlag   string
	strategyFlag string
	verboseFlag  bool
)

// Execute runs the root command.
func Execute() error {
	return newRootCommand().Execute()
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "postdeck",
		Short: "Generate social posts and publish them to linked accounts",
		Long: "postdeck drives a post-generation backend from the terminal: submit a prompt, " +
			"review the generated card, and publish it to a linked Mastodon, Bluesky or X account. " +
			"Without a subcommand it starts an interactive shell.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runShell,
		Example: `  postdeck --base-url http://localhost:8000 --cookie "sessionid=...; csrftoken=..."
  postdeck generate --title Daily --prompt "write a haiku"
  postdeck link mastodon
  postdeck publish 42 --platform mastodon`,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	flags.StringVar(&baseURLFlag, "base-url", "", "Backend base URL")
	flags.StringVar(&cookieFlag, "cookie", "", "Cookie header carrying the session and signing token")
	flags.StringVar(&strategyFlag, "strategy", "", "How generated posts are shown (immediate or confirm)")
	flags.BoolVarP(&verboseFlag, "verbose", "V", false, "Enable debug logging")
	cmd.Flags().SortFlags = false

	cmd.AddCommand(
		newShellCommand(),
		newGenerateCommand(),
		newWaitCommand(),
		newPostsCommand(),
		newHistoryCommand(),
		newEditCommand(),
		newDeleteCommand(),
		newPublishCommand(),
		newAccountsCommand(),
		newLinkCommand(),
		newUnlinkCommand(),
		newCompletionCommand(),
	)

	return cmd
}

// session is one "page lifetime": its view state lives until the command returns.
type session struct {
	cfg       *config.Config
	platforms []postdeck.Platform
	term      *ui.Terminal
	ctrl      *workflow.Controller
}

func newSession(cmd *cobra.Command) (*session, error) {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	platforms, err := cfg.PublishPlatforms()
	if err != nil {
		return nil, err
	}

	term := ui.NewTerminal(cmd.InOrStdin(), cmd.OutOrStdout())

	origin, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	if err := token.Seed(jar, origin, cfg.Cookie); err != nil {
		return nil, fmt.Errorf("parse cookie: %w", err)
	}

	client, err := backend.New(backend.Config{
		BaseURL:     cfg.BaseURL,
		TokenHeader: cfg.TokenHeader,
		Timeout:     cfg.Timeout,
		Jar:         jar,
		Tokens:      token.New(jar, origin, cfg.TokenCookie, term),
	})
	if err != nil {
		return nil, err
	}

	ctrl := workflow.New(client, ui.NewView(platforms), term, term, workflow.Options{
		Strategy:     workflow.Strategy(cfg.Strategy),
		PollAttempts: cfg.Poll.Attempts,
		PollDelay:    cfg.Poll.Delay,
		Verifiers:    buildVerifiers(ctx, cfg),
	})

	return &session{cfg: cfg, platforms: platforms, term: term, ctrl: ctrl}, nil
}

func loadConfig() (*config.Config, error) {
	logutil.SetVerbose(verboseFlag)

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if baseURLFlag != "" {
		cfg.BaseURL = baseURLFlag
	}
	if cookieFlag != "" {
		cfg.Cookie = cookieFlag
	}
	if strategyFlag != "" {
		cfg.Strategy = strategyFlag
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := logutil.SetLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	return cfg, nil
}

// buildVerifiers registers a credential check for every platform that can be
// reached. Platforms without configuration are linked unverified.
func buildVerifiers(ctx context.Context, cfg *config.Config) verify.Registry {
	constructors := map[postdeck.Platform]func(context.Context) (verify.Verifier, error){
		postdeck.Bluesky: func(ctx context.Context) (verify.Verifier, error) {
			return bluesky.New(ctx, bluesky.Config{PDSURL: cfg.Bluesky.PDSURL})
		},
		postdeck.Mastodon: func(ctx context.Context) (verify.Verifier, error) {
			return mastodon.New(ctx, mastodon.Config{Server: cfg.Mastodon.Server})
		},
		postdeck.Twitter: func(ctx context.Context) (verify.Verifier, error) {
			return twitter.New(ctx)
		},
	}

	verifiers := make([]verify.Verifier, 0, len(constructors))
	for _, platform := range postdeck.Platforms() {
		v, err := constructors[platform](ctx)
		if err != nil {
			var missing postdeck.MissingEnvError
			if errors.As(err, &missing) {
				logutil.Debugf("%s credentials will not be verified: %v", platform, err)
			} else {
				logutil.Warnf("%s verifier unavailable: %v", platform, err)
			}
			continue
		}
		verifiers = append(verifiers, v)
	}
	return verify.NewRegistry(verifiers...)
}

func (s *session) draw() {
	if _, err := s.ctrl.View().WriteTo(s.term.Out()); err != nil {
		logutil.Errorf("draw: %v", err)
	}
}

func (s *session) platformArg(raw string) (postdeck.Platform, error) {
	if raw == "" {
		if len(s.platforms) == 0 {
			return "", errors.New("no publish platforms configured")
		}
		return s.platforms[0], nil
	}
	return postdeck.ParsePlatform(raw)
}
