package cli

import "github.com/alexanderramin/arbor/internal/app"

func (a *App) createTaskUseCase() app.CreateTaskUseCase {
	if a.CreateTask != nil {
		return a.CreateTask
	}
	return a.Tasks
}

func (a *App) updateTaskUseCase() app.UpdateTaskUseCase {
	if a.UpdateTask != nil {
		return a.UpdateTask
	}
	return a.Tasks
}

func (a *App) updateStatusUseCase() app.UpdateStatusUseCase {
	if a.UpdateStatus != nil {
		return a.UpdateStatus
	}
	return a.Tasks
}

func (a *App) deleteTaskUseCase() app.DeleteTaskUseCase {
	if a.DeleteTask != nil {
		return a.DeleteTask
	}
	return a.Tasks
}

func (a *App) projectViewUseCase() app.ProjectViewUseCase {
	if a.ProjectView != nil {
		return a.ProjectView
	}
	return a.Tasks
}

func (a *App) importProjectUseCase() app.ImportProjectUseCase {
	if a.ImportProject != nil {
		return a.ImportProject
	}
	return a.Import
}
