package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/arbor/internal/domain"
	"github.com/alexanderramin/arbor/internal/repository"
	"github.com/google/uuid"
)

type projectService struct {
	store    repository.Store
	observer UseCaseObserver
}

func NewProjectService(store repository.Store, observers ...UseCaseObserver) ProjectService {
	return &projectService{store: store, observer: useCaseObserverOrNoop(observers)}
}

func (s *projectService) Create(ctx context.Context, p *domain.Project) (err error) {
	span := startUseCase(s.observer, "create-project", nil)
	defer func() { span.finish(ctx, err) }()

	p.Name = strings.TrimSpace(p.Name)
	p.ShortID = strings.ToUpper(strings.TrimSpace(p.ShortID))
	if err = p.Validate(); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	span.set("project_id", p.ID)
	return s.store.Projects().Create(ctx, p)
}

func (s *projectService) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	if err := domain.ValidateID("project", id); err != nil {
		return nil, err
	}
	return s.store.Projects().GetByID(ctx, id)
}

func (s *projectService) Resolve(ctx context.Context, ref string) (*domain.Project, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: project reference is required", domain.ErrValidation)
	}
	if _, err := uuid.Parse(ref); err == nil {
		return s.store.Projects().GetByID(ctx, ref)
	}
	return s.store.Projects().GetByShortID(ctx, strings.ToUpper(ref))
}

func (s *projectService) List(ctx context.Context) ([]*domain.Project, error) {
	return s.store.Projects().List(ctx)
}

func (s *projectService) Delete(ctx context.Context, id string) (err error) {
	span := startUseCase(s.observer, "delete-project", map[string]any{"project_id": id})
	defer func() { span.finish(ctx, err) }()

	if err = domain.ValidateID("project", id); err != nil {
		return err
	}
	return s.store.Projects().Delete(ctx, id)
}
