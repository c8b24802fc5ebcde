package service

import (
	"context"

	"github.com/alexanderramin/arbor/internal/contract"
	"github.com/alexanderramin/arbor/internal/domain"
	"github.com/alexanderramin/arbor/internal/importer"
	"github.com/alexanderramin/arbor/internal/repository"
)

type ProjectService interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	// Resolve finds a project by short id (case-insensitive) or by UUID.
	Resolve(ctx context.Context, ref string) (*domain.Project, error)
	List(ctx context.Context) ([]*domain.Project, error)
	Delete(ctx context.Context, id string) error
}

type TaskService interface {
	Create(ctx context.Context, req contract.CreateTaskRequest) (*domain.Task, error)
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	Descendants(ctx context.Context, id string) ([]repository.Descendant, error)
	ProjectView(ctx context.Context, req contract.ProjectViewRequest) (*contract.ProjectView, error)
	Update(ctx context.Context, req contract.UpdateTaskRequest) (*domain.Task, error)
	UpdateStatus(ctx context.Context, req contract.UpdateStatusRequest) (*contract.UpdateStatusResult, error)
	Delete(ctx context.Context, id string) (*contract.DeleteResult, error)
}

type ImportService interface {
	ImportProject(ctx context.Context, filePath string) (*contract.ImportResult, error)
	ImportProjectFromSchema(ctx context.Context, schema *importer.ImportSchema) (*contract.ImportResult, error)
}
