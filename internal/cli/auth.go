package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sidereusnuntius/goblog/internal/auth"
	"github.com/spf13/cobra"
)

type credentials struct {
	email    string
	password string
}

func (c *credentials) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&c.email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&c.password, "password", "p", "", "account password; read from standard input if omitted")
}

// fill reads the password from in when it was not given as a flag.
func (c *credentials) fill(cmd *cobra.Command) error {
	if cmd.Flags().Changed("password") {
		return nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	c.password = strings.TrimRight(line, "\r\n")
	return nil
}

func signupCommand(handler func() *Handler) *cobra.Command {
	var c credentials
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and log into it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.fill(cmd); err != nil {
				return err
			}
			user, err := handler().Auth.Signup(cmd.Context(), c.email, c.password)
			if err != nil {
				return errors.New(auth.Message(err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account created. Logged in as %s\n", user.Email)
			return nil
		},
	}
	c.bind(cmd)
	return cmd
}

func loginCommand(handler func() *Handler) *cobra.Command {
	var c credentials
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log into an existing account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.fill(cmd); err != nil {
				return err
			}
			user, err := handler().Auth.Login(cmd.Context(), c.email, c.password)
			if err != nil {
				return errors.New(auth.Message(err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", user.Email)
			return nil
		},
	}
	c.bind(cmd)
	return cmd
}

func logoutCommand(handler func() *Handler) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			handler().Session.Logout()
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func whoamiCommand(handler func() *Handler) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the logged in account",
		Args:  cobra.NoArgs,
		RunE: authenticated(handler, func(cmd *cobra.Command, args []string, h *Handler) error {
			user := h.Session.Current().User
			fmt.Fprintf(cmd.OutOrStdout(), "%s (id %d, member since %s)\n", user.Email, user.ID, user.CreatedAt)
			return nil
		}),
	}
}
