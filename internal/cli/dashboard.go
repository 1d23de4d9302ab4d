package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/goblog/internal/domain"
	"github.com/spf13/cobra"
)

func greeting(t time.Time) string {
	switch h := t.Hour(); {
	case h < 12:
		return "Good morning"
	case h < 18:
		return "Good afternoon"
	default:
		return "Good evening"
	}
}

// displayName is the local part of the user's email, or "Guest".
func displayName(user *domain.User) string {
	if user == nil || user.Email == "" {
		return "Guest"
	}
	name, _, _ := strings.Cut(user.Email, "@")
	return name
}

func dashboardCommand(handler func() *Handler) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show a summary of the blog and the account",
		Args:  cobra.NoArgs,
		RunE: authenticated(handler, func(cmd *cobra.Command, args []string, h *Handler) error {
			ctx := cmd.Context()
			user := h.Session.Current().User

			// Posts are only fetched when nothing is loaded yet.
			if len(h.Posts.Snapshot().Posts) == 0 {
				if _, err := h.Posts.FetchAll(ctx); err != nil {
					log.Warn().Err(err).Msg("dashboard shows a stale post count")
				}
			}

			users, err := h.Client.CountUsers(ctx)
			if err != nil {
				log.Error().Err(err).Msg("error fetching users")
				users = 0
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s, %s!\n\n", greeting(h.now()), displayName(user))
			fmt.Fprintf(out, "Total posts:  %d\n", len(h.Posts.Snapshot().Posts))
			fmt.Fprintf(out, "Total users:  %d\n", users)
			fmt.Fprintf(out, "Account:      %s\n", user.Email)
			return nil
		}),
	}
}
