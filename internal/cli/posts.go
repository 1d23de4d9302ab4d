package cli

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/sidereusnuntius/goblog/internal/diff"
	"github.com/sidereusnuntius/goblog/internal/domain"
	"github.com/sidereusnuntius/goblog/internal/form"
	"github.com/spf13/cobra"
)

func postsCommand(handler func() *Handler) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "posts",
		Short: "List and manage posts",
	}
	cmd.AddCommand(
		listPostsCommand(handler),
		newPostCommand(handler),
		editPostCommand(handler),
		deletePostCommand(handler),
	)
	return cmd
}

func listPostsCommand(handler func() *Handler) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all posts",
		Args:  cobra.NoArgs,
		RunE: authenticated(handler, func(cmd *cobra.Command, args []string, h *Handler) error {
			list, err := h.Posts.FetchAll(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, "No posts yet.")
				return nil
			}
			for _, p := range list {
				fmt.Fprintf(out, "%d\t%s\n", p.ID, p.Title)
			}
			return nil
		}),
	}
}

type postFields struct {
	title   string
	content string
	dryRun  bool
}

func (p *postFields) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&p.title, "title", "t", "", "post title")
	cmd.Flags().StringVarP(&p.content, "content", "c", "", `post content; "-" reads it from standard input`)
}

func (p *postFields) readContent(cmd *cobra.Command) error {
	if p.content != "-" {
		return nil
	}
	b, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return err
	}
	p.content = string(b)
	return nil
}

// submit runs the form and prints its field errors when it is rejected.
func submit(cmd *cobra.Command, f *form.Form) error {
	err := f.Submit(cmd.Context())
	if err == nil {
		return nil
	}

	errs := f.Errors()
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", k, errs[k])
	}

	if errors.Is(err, form.ErrSaveFailed) {
		return errors.New(form.MsgSaveFailed)
	}
	return err
}

func (h *Handler) newForm(post *domain.Post, onSuccess func(domain.Post)) *form.Form {
	return form.New(h.Posts, form.Options{
		Post:             post,
		OnSuccess:        onSuccess,
		MaxTitleLength:   h.Config.MaxTitleLength,
		MaxContentLength: h.Config.MaxContentLength,
	})
}

func newPostCommand(handler func() *Handler) *cobra.Command {
	var fields postFields
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a post",
		Args:  cobra.NoArgs,
		RunE: authenticated(handler, func(cmd *cobra.Command, args []string, h *Handler) error {
			if err := fields.readContent(cmd); err != nil {
				return err
			}

			f := h.newForm(nil, func(p domain.Post) {
				fmt.Fprintf(cmd.OutOrStdout(), "Created post %d\n", p.ID)
			})
			defer f.Close()
			f.SetTitle(fields.title)
			f.SetContent(fields.content)
			return submit(cmd, f)
		}),
	}
	fields.bind(cmd)
	return cmd
}

func editPostCommand(handler func() *Handler) *cobra.Command {
	var fields postFields
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Edit a post; only the given fields change",
		Args:  cobra.ExactArgs(1),
		RunE: authenticated(handler, func(cmd *cobra.Command, args []string, h *Handler) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid post id %q", args[0])
			}
			if err := fields.readContent(cmd); err != nil {
				return err
			}

			post, err := h.findPost(cmd, id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			f := h.newForm(&post, func(p domain.Post) {
				fmt.Fprintf(out, "Updated post %d\n", p.ID)
			})
			defer f.Close()
			if cmd.Flags().Changed("title") {
				f.SetTitle(fields.title)
			}
			if cmd.Flags().Changed("content") {
				f.SetContent(fields.content)
			}

			inserted, deleted := diff.Stats(post.Content, f.Content())
			fmt.Fprintf(out, "%d characters added, %d removed\n", inserted, deleted)
			if patch := f.Changes(); patch != "" {
				fmt.Fprint(out, patch)
			}
			if fields.dryRun {
				return nil
			}
			return submit(cmd, f)
		}),
	}
	fields.bind(cmd)
	cmd.Flags().BoolVar(&fields.dryRun, "dry-run", false, "show the changes without saving them")
	return cmd
}

func deletePostCommand(handler func() *Handler) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a post",
		Args:  cobra.ExactArgs(1),
		RunE: authenticated(handler, func(cmd *cobra.Command, args []string, h *Handler) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid post id %q", args[0])
			}
			if _, err := h.Posts.Delete(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to delete post %d: %w", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted post %d\n", id)
			return nil
		}),
	}
}

// findPost looks the post up in the collection, loading the collection first if it is empty.
func (h *Handler) findPost(cmd *cobra.Command, id int64) (domain.Post, error) {
	list := h.Posts.Snapshot().Posts
	if len(list) == 0 {
		var err error
		if list, err = h.Posts.FetchAll(cmd.Context()); err != nil {
			return domain.Post{}, err
		}
	}
	for _, p := range list {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Post{}, fmt.Errorf("post %d not found", id)
}
