package importer

import "strings"

// Step is one task creation in an import plan. Parent indexes an earlier
// step in the plan, or is -1 for a top-level task.
type Step struct {
	Title     string
	Completed bool
	Parent    int
	Depth     int
}

// Plan flattens the task tree into creation steps. New tasks are always
// inserted at the head of their sibling group, so siblings are emitted last
// to first; every parent precedes its children.
func Plan(schema *ImportSchema) []Step {
	var steps []Step
	var visit func(tasks []TaskImport, parent, depth int)
	visit = func(tasks []TaskImport, parent, depth int) {
		for i := len(tasks) - 1; i >= 0; i-- {
			t := tasks[i]
			steps = append(steps, Step{
				Title:     strings.TrimSpace(t.Title),
				Completed: t.Completed,
				Parent:    parent,
				Depth:     depth,
			})
			visit(t.Children, len(steps)-1, depth+1)
		}
	}
	visit(schema.Tasks, -1, 1)
	return steps
}
