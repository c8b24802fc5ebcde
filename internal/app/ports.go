package app

import (
	"context"

	"github.com/alexanderramin/arbor/internal/contract"
	"github.com/alexanderramin/arbor/internal/domain"
)

// Use-case ports consumed by the CLI. The service package provides the
// implementations.

type CreateTaskUseCase interface {
	Create(ctx context.Context, req contract.CreateTaskRequest) (*domain.Task, error)
}

type UpdateTaskUseCase interface {
	Update(ctx context.Context, req contract.UpdateTaskRequest) (*domain.Task, error)
}

type UpdateStatusUseCase interface {
	UpdateStatus(ctx context.Context, req contract.UpdateStatusRequest) (*contract.UpdateStatusResult, error)
}

type DeleteTaskUseCase interface {
	Delete(ctx context.Context, id string) (*contract.DeleteResult, error)
}

type ProjectViewUseCase interface {
	ProjectView(ctx context.Context, req contract.ProjectViewRequest) (*contract.ProjectView, error)
}

type ImportProjectUseCase interface {
	ImportProject(ctx context.Context, filePath string) (*contract.ImportResult, error)
}
