package importer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ImportSchema is the top-level structure of a project tree file.
type ImportSchema struct {
	Project ProjectImport `json:"project" yaml:"project"`
	Tasks   []TaskImport  `json:"tasks" yaml:"tasks"`
}

// ProjectImport defines the project-level fields in the import file.
type ProjectImport struct {
	Name    string `json:"name" yaml:"name"`
	ShortID string `json:"short_id,omitempty" yaml:"short_id,omitempty"`
}

// TaskImport is one task and its children, listed in display order.
type TaskImport struct {
	Title     string       `json:"title" yaml:"title"`
	Completed bool         `json:"completed,omitempty" yaml:"completed,omitempty"`
	Children  []TaskImport `json:"children,omitempty" yaml:"children,omitempty"`
}

// LoadImportSchema reads a project tree file. The format follows the
// extension: .yaml and .yml are YAML, anything else is JSON.
func LoadImportSchema(path string) (*ImportSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseImportSchema(data, filepath.Ext(path))
}

// ParseImportSchema decodes data according to ext (".yaml", ".yml" or ".json").
func ParseImportSchema(data []byte, ext string) (*ImportSchema, error) {
	var schema ImportSchema
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &schema); err != nil {
			return nil, fmt.Errorf("parsing import file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &schema); err != nil {
			return nil, fmt.Errorf("parsing import file: %w", err)
		}
	}
	return &schema, nil
}
