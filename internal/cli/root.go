package cli

import (
	"github.com/alexanderramin/arbor/internal/app"
	"github.com/alexanderramin/arbor/internal/service"
	"github.com/spf13/cobra"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Projects service.ProjectService
	Tasks    service.TaskService
	Import   service.ImportService

	// Optional use-case overrides. When nil, the services above are used.
	CreateTask    app.CreateTaskUseCase
	UpdateTask    app.UpdateTaskUseCase
	UpdateStatus  app.UpdateStatusUseCase
	DeleteTask    app.DeleteTaskUseCase
	ProjectView   app.ProjectViewUseCase
	ImportProject app.ImportProjectUseCase

	// IsInteractive reports whether prompts can be shown. Nil means never.
	IsInteractive func() bool
	// Confirm asks a yes/no question. Nil uses a huh confirm form.
	Confirm func(title, description string) (bool, error)
}

// NewRootCmd creates the top-level "arbor" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "arbor",
		Short:         "Per-project task trees with ordered subtasks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newProjectCmd(app),
		newTaskCmd(app),
	)

	return root
}
