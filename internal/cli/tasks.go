package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/tada-tasks/internal/board"
	"github.com/Makepad-fr/tada-tasks/internal/model"
	"github.com/Makepad-fr/tada-tasks/internal/ui"
	"github.com/Makepad-fr/tada-tasks/internal/view"
)

func newListCmd() *cobra.Command {
	var group bool
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List pending tasks",
		Args:    usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			if err := e.board.Reload(cmd.Context()); err != nil {
				return err
			}
			cards := view.Cards(e.board.Tasks(), model.Today(), e.locale)
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, view.Render(cards, ui.Current(), group))
			fmt.Fprintln(out, ui.Current().Muted.Render(`Tip: add with `+"`"+`tada add "Buy milk" --due 2025-07-01`+"`"))
			return nil
		},
	}
	cmd.Flags().BoolVar(&group, "group", false, "group output by urgency")
	return cmd
}

func newAddCmd() *cobra.Command {
	var due string
	cmd := &cobra.Command{
		Use:   "add <text...>",
		Short: "Add a task (text can be multiple words)",
		Args:  usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			var f board.Form
			f.Text = strings.TrimSpace(strings.Join(args, " "))
			if f.Text == "" {
				return usagef("add: empty text")
			}
			if err := f.SetExpireText(due); err != nil {
				return usageError{fmt.Errorf("add: %w", err)}
			}
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			err = e.board.Submit(cmd.Context(), &f)
			var ae *board.ActionError
			if err != nil && !(errors.As(err, &ae) && ae.Action == board.ActionReload) {
				return err
			}
			ui.OK(cmd.OutOrStdout(), "added")
			if err != nil {
				// The task exists; only the follow-up list failed.
				ui.Fail(cmd.ErrOrStderr(), err.Error())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&due, "due", "", "due date, YYYY-MM-DD")
	return cmd
}

func newDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Mark the task with this id done",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return usagef("done: not a number: %s", args[0])
			}
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			if err := e.board.Reload(cmd.Context()); err != nil {
				return err
			}
			task, ok := findTask(e.board.Tasks(), id)
			if !ok {
				fmt.Fprintln(cmd.ErrOrStderr(), ui.Current().Muted.Render("Hint: run `tada ls` to see pending ids"))
				return usagef("done: no pending task with id %d", id)
			}
			if err := e.board.MarkDone(cmd.Context(), task); err != nil {
				return err
			}
			ui.OK(cmd.OutOrStdout(), "done")
			return nil
		},
	}
}

func findTask(tasks []model.Task, id int) (model.Task, bool) {
	for _, t := range tasks {
		if t.ID != nil && *t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}
