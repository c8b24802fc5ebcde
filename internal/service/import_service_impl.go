package service

import (
	"context"
	"fmt"

	"github.com/alexanderramin/arbor/internal/contract"
	"github.com/alexanderramin/arbor/internal/domain"
	"github.com/alexanderramin/arbor/internal/importer"
	"github.com/alexanderramin/arbor/internal/repository"
)

type importService struct {
	store     repository.Store
	observers []UseCaseObserver
}

// NewImportService builds projects from tree files through the regular
// project and task services, so ordering and completion rules apply to
// imported data exactly as they do to interactive edits. The whole import
// runs in one transaction.
func NewImportService(store repository.Store, observers ...UseCaseObserver) ImportService {
	return &importService{store: store, observers: observers}
}

func (s *importService) ImportProject(ctx context.Context, filePath string) (*contract.ImportResult, error) {
	schema, err := importer.LoadImportSchema(filePath)
	if err != nil {
		return nil, fmt.Errorf("loading import file: %w", err)
	}
	return s.importSchema(ctx, schema)
}

func (s *importService) ImportProjectFromSchema(ctx context.Context, schema *importer.ImportSchema) (*contract.ImportResult, error) {
	return s.importSchema(ctx, schema)
}

func (s *importService) importSchema(ctx context.Context, schema *importer.ImportSchema) (*contract.ImportResult, error) {
	if errs := importer.ValidateImportSchema(schema); len(errs) > 0 {
		return nil, formatValidationErrors(errs)
	}

	var result *contract.ImportResult
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		res, err := importInto(ctx, NewProjectService(tx, s.observers...), NewTaskService(tx, s.observers...), schema)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func importInto(ctx context.Context, projects ProjectService, tasks TaskService, schema *importer.ImportSchema) (*contract.ImportResult, error) {
	project := &domain.Project{Name: schema.Project.Name, ShortID: schema.Project.ShortID}
	if err := projects.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}

	steps := importer.Plan(schema)
	ids := make([]string, len(steps))
	var completed []string
	for i, step := range steps {
		req := contract.CreateTaskRequest{Title: step.Title, ProjectID: project.ID}
		if step.Parent >= 0 {
			req.ParentTaskID = &ids[step.Parent]
		}
		task, err := tasks.Create(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("creating task %q: %w", step.Title, err)
		}
		ids[i] = task.ID
		if step.Completed {
			completed = append(completed, task.ID)
		}
	}

	done := map[string]bool{}
	for _, id := range completed {
		if done[id] {
			continue
		}
		res, err := tasks.UpdateStatus(ctx, contract.UpdateStatusRequest{ID: id, Completed: true})
		if err != nil {
			return nil, fmt.Errorf("completing task %s: %w", id, err)
		}
		for _, u := range res.UpdatedIDs {
			done[u] = true
		}
	}

	return &contract.ImportResult{
		ProjectID:      project.ID,
		ProjectName:    project.Name,
		TaskCount:      len(steps),
		CompletedCount: len(done),
	}, nil
}

func formatValidationErrors(errs []error) error {
	msg := fmt.Sprintf("import validation failed (%d errors):", len(errs))
	for _, e := range errs {
		msg += "\n  - " + e.Error()
	}
	return fmt.Errorf("%w: %s", domain.ErrValidation, msg)
}
