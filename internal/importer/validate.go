package importer

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/arbor/internal/domain"
)

// MaxDepth bounds how deeply tasks may nest in an import file.
const MaxDepth = 32

// ValidateImportSchema checks the import schema for errors before any write.
// Returns a slice of all validation errors found.
func ValidateImportSchema(schema *ImportSchema) []error {
	var errs []error

	errs = append(errs, validateProject(&schema.Project)...)
	errs = append(errs, validateTasks("tasks", schema.Tasks, 1)...)

	return errs
}

func validateProject(p *ProjectImport) []error {
	var errs []error

	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, fmt.Errorf("project.name is required"))
	}
	if p.ShortID != "" {
		candidate := domain.Project{Name: p.Name, ShortID: strings.ToUpper(p.ShortID)}
		if err := candidate.ValidateShortID(); err != nil {
			errs = append(errs, fmt.Errorf("project.short_id: %w", err))
		}
	}
	return errs
}

func validateTasks(prefix string, tasks []TaskImport, depth int) []error {
	if len(tasks) == 0 {
		return nil
	}
	if depth > MaxDepth {
		return []error{fmt.Errorf("%s: nesting deeper than %d levels", prefix, MaxDepth)}
	}

	var errs []error
	for i, t := range tasks {
		p := fmt.Sprintf("%s[%d]", prefix, i)
		if strings.TrimSpace(t.Title) == "" {
			errs = append(errs, fmt.Errorf("%s.title is required", p))
		}
		errs = append(errs, validateTasks(p+".children", t.Children, depth+1)...)
	}
	return errs
}
