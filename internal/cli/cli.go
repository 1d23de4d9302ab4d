// Package cli is the command line front end of the blog client. Each command plays the part of a page:
// it reads the shared state, calls the stores and prints the result.
package cli

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/goblog/internal/auth"
	"github.com/sidereusnuntius/goblog/internal/client"
	"github.com/sidereusnuntius/goblog/internal/config"
	"github.com/sidereusnuntius/goblog/internal/initialization"
	"github.com/sidereusnuntius/goblog/internal/posts"
	"github.com/sidereusnuntius/goblog/internal/session"
	"github.com/sidereusnuntius/goblog/internal/state"
	"github.com/spf13/cobra"
)

var ErrNotLoggedIn = errors.New("not logged in; run \"goblog login\" first")

// Handler carries the dependencies shared by all commands. It is built once per invocation, before the
// selected command runs.
type Handler struct {
	Config  *config.Configuration
	State   *state.Store
	Client  *client.HttpClient
	Session *session.Store
	Posts   *posts.Store
	Auth    *auth.Service

	now   func() time.Time
	close func() error
}

// NewHandler restores the persisted session and wires the stores around it.
func NewHandler(cfg *config.Configuration) (*Handler, error) {
	s, closeFn, err := initialization.OpenStorage(cfg)
	if err != nil {
		return nil, err
	}

	st := state.NewStore(state.Initial(session.Restore(s)))
	if cfg.Debug {
		st.Subscribe(func(action state.Action, next state.AppState) {
			log.Debug().
				Str("action", action.Kind()).
				Bool("authenticated", next.Session.Authenticated).
				Str("posts_status", string(next.Posts.Status)).
				Int("posts", len(next.Posts.Posts)).
				Msg("state changed")
		})
	}

	api := client.New(cfg.BaseURL, &http.Client{Timeout: cfg.Timeout})
	sessions := session.New(s, st)

	return &Handler{
		Config:  cfg,
		State:   st,
		Client:  api,
		Session: sessions,
		Posts:   posts.New(api, st),
		Auth:    auth.New(api, sessions),
		now:     time.Now,
		close:   closeFn,
	}, nil
}

// Close releases the session storage.
func (h *Handler) Close() error {
	return h.close()
}

// RequireLogin fails unless somebody is logged in.
func (h *Handler) RequireLogin() error {
	if !h.Session.Current().Authenticated {
		return ErrNotLoggedIn
	}
	return nil
}

// newRootCommand builds the goblog command tree. Configuration is read and the handler stored in *h in
// the persistent pre-run, so "goblog help" works without a reachable backend or a writable session store.
func newRootCommand(h **Handler) *cobra.Command {
	root := &cobra.Command{
		Use:           "goblog",
		Short:         "Command line client for a blog REST backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.ReadConfig()
			if err != nil {
				return err
			}
			if cfg.Debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
			*h, err = NewHandler(&cfg)
			return err
		},
	}

	handler := func() *Handler { return *h }
	root.AddCommand(
		signupCommand(handler),
		loginCommand(handler),
		logoutCommand(handler),
		whoamiCommand(handler),
		dashboardCommand(handler),
		postsCommand(handler),
	)
	return root
}

// Execute runs the command tree with the given arguments and streams.
func Execute(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	var h *Handler
	root := newRootCommand(&h)
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.ExecuteContext(ctx)
	if h != nil {
		if cerr := h.Close(); cerr != nil {
			log.Error().Err(cerr).Msg("failed to close session storage")
		}
	}
	return err
}

// authenticated wraps a RunE so it only runs for a logged in user.
func authenticated(handler func() *Handler, run func(cmd *cobra.Command, args []string, h *Handler) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		h := handler()
		if err := h.RequireLogin(); err != nil {
			return err
		}
		return run(cmd, args, h)
	}
}
