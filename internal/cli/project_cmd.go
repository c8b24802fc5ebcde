package cli

import (
	"fmt"

	"github.com/alexanderramin/arbor/internal/cli/formatter"
	"github.com/alexanderramin/arbor/internal/contract"
	"github.com/alexanderramin/arbor/internal/domain"
	"github.com/spf13/cobra"
)

func newProjectCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}

	cmd.AddCommand(
		newProjectAddCmd(app),
		newProjectListCmd(app),
		newProjectShowCmd(app),
		newProjectRemoveCmd(app),
		newProjectImportCmd(app),
	)

	return cmd
}

func newProjectAddCmd(app *App) *cobra.Command {
	var req contract.CreateProjectRequest

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a new project",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := &domain.Project{Name: req.Name, ShortID: req.ShortID}
			if err := app.Projects.Create(cmd.Context(), p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created project %s [%s]\n", p.Name, p.DisplayID())
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "Project name")
	cmd.Flags().StringVar(&req.ShortID, "id", "", "Short ID (3-6 letters + 2-4 digits, e.g. WEB01)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newProjectListCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := app.Projects.List(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				type row struct {
					ID      string `json:"id"`
					ShortID string `json:"shortId,omitempty"`
					Name    string `json:"name"`
				}
				rows := make([]row, 0, len(projects))
				for _, p := range projects {
					rows = append(rows, row{ID: p.ID, ShortID: p.ShortID, Name: p.Name})
				}
				return writeJSON(out, rows)
			}
			if len(projects) == 0 {
				fmt.Fprintln(out, "No projects found.")
				return nil
			}
			fmt.Fprintln(out, formatter.FormatProjectList(projects))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")

	return cmd
}

func newProjectShowCmd(app *App) *cobra.Command {
	var search string
	var asJSON, withIDs bool

	cmd := &cobra.Command{
		Use:   "show PROJECT",
		Short: "Show a project's task tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := app.Projects.Resolve(ctx, args[0])
			if err != nil {
				return err
			}
			completed, err := optionalBool(cmd.Flags(), "completed")
			if err != nil {
				return err
			}

			req := contract.NewProjectViewRequest(p.ID)
			req.Search = search
			req.Completed = completed
			view, err := app.projectViewUseCase().ProjectView(ctx, req)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), view)
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatProjectView(view, withIDs))
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Only tasks whose title matches (typo tolerant)")
	cmd.Flags().Bool("completed", false, "Only completed (true) or pending (false) tasks")
	cmd.Flags().BoolVar(&withIDs, "ids", false, "Show task IDs")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")

	return cmd
}

func newProjectRemoveCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "remove PROJECT",
		Short: "Delete a project and all of its tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := app.Projects.Resolve(ctx, args[0])
			if err != nil {
				return err
			}
			if !yes {
				ok, err := app.confirm(fmt.Sprintf("Delete project %q?", p.Name), "All of its tasks are deleted too.")
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("not deleting project %s without confirmation (use --yes)", p.DisplayID())
				}
			}
			if err := app.Projects.Delete(ctx, p.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted project %s\n", p.Name)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")

	return cmd
}

func newProjectImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Create a project from a YAML or JSON task tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.importProjectUseCase().ImportProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatImportResult(res))
			return nil
		},
	}
}
