package cli

import (
	"fmt"

	"github.com/alexanderramin/arbor/internal/cli/formatter"
	"github.com/alexanderramin/arbor/internal/contract"
	"github.com/spf13/cobra"
)

func newTaskCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}

	cmd.AddCommand(
		newTaskAddCmd(app),
		newTaskUpdateCmd(app),
		newTaskStatusCmd(app),
		newTaskRemoveCmd(app),
		newTaskShowCmd(app),
	)

	return cmd
}

func newTaskAddCmd(app *App) *cobra.Command {
	var projectRef, title, parent string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a task at the top of its group",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := app.Projects.Resolve(ctx, projectRef)
			if err != nil {
				return err
			}
			req := contract.CreateTaskRequest{Title: title, ProjectID: p.ID}
			if parent != "" {
				req.ParentTaskID = &parent
			}
			task, err := app.createTaskUseCase().Create(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created task %s %s\n", formatter.TruncID(task.ID), task.Title)
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectRef, "project", "p", "", "Project short ID or UUID")
	cmd.Flags().StringVar(&title, "title", "", "Task title")
	cmd.Flags().StringVar(&parent, "parent", "", "Parent task ID")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func newTaskUpdateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Rename, reorder or move a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs := cmd.Flags()
			req := contract.UpdateTaskRequest{ID: args[0]}
			var err error
			if req.Title, err = optionalString(fs, "title"); err != nil {
				return err
			}
			if req.ParentKey, err = optionalString(fs, "parent"); err != nil {
				return err
			}
			if req.Order, err = optionalInt(fs, "order"); err != nil {
				return err
			}
			if req.Title == nil && req.ParentKey == nil && req.Order == nil {
				return fmt.Errorf("nothing to update: pass --title, --parent or --order")
			}

			task, err := app.updateTaskUseCase().Update(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated task %s %s (order %d)\n", formatter.TruncID(task.ID), task.Title, task.Order)
			return nil
		},
	}

	cmd.Flags().String("title", "", "New title")
	cmd.Flags().String("parent", "", "New parent task ID, or \"root\" for the top level")
	cmd.Flags().Int("order", 0, "New position among siblings (0 = first)")

	return cmd
}

func newTaskStatusCmd(app *App) *cobra.Command {
	var completed bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status ID",
		Short: "Mark a task done (or pending with --completed=false)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hint, err := optionalString(cmd.Flags(), "parent")
			if err != nil {
				return err
			}
			res, err := app.updateStatusUseCase().UpdateStatus(cmd.Context(), contract.UpdateStatusRequest{
				ID:           args[0],
				ParentTaskID: hint,
				Completed:    completed,
			})
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatStatusResult(res))
			return nil
		},
	}

	cmd.Flags().BoolVar(&completed, "completed", true, "Completion state to set")
	cmd.Flags().String("parent", "", "Expected parent task ID (\"root\" for top level); fails on mismatch")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")

	return cmd
}

func newTaskRemoveCmd(app *App) *cobra.Command {
	var yes, asJSON bool

	cmd := &cobra.Command{
		Use:   "remove ID",
		Short: "Delete a task and all of its subtasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := args[0]
			if !yes {
				desc, err := app.Tasks.Descendants(ctx, id)
				if err != nil {
					return err
				}
				if len(desc) > 0 {
					ok, err := app.confirm(
						fmt.Sprintf("Delete task %s?", formatter.TruncID(id)),
						fmt.Sprintf("%d subtask(s) are deleted with it.", len(desc)))
					if err != nil {
						return err
					}
					if !ok {
						return fmt.Errorf("task has %d subtask(s); not deleting without confirmation (use --yes)", len(desc))
					}
				}
			}

			res, err := app.deleteTaskUseCase().Delete(ctx, id)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatDeleteResult(res))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")

	return cmd
}

func newTaskShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a task and its subtasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			task, err := app.Tasks.GetByID(ctx, args[0])
			if err != nil {
				return err
			}
			desc, err := app.Tasks.Descendants(ctx, task.ID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatTask(task, desc))
			return nil
		},
	}
}
