package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/arbor/internal/contract"
	"github.com/alexanderramin/arbor/internal/domain"
)

// FormatProjectList renders the project list inside a bordered box.
func FormatProjectList(projects []*domain.Project) string {
	headers := []string{"ID", "NAME", "UUID", "CREATED"}
	rows := make([][]string, 0, len(projects))

	for _, p := range projects {
		id := p.ShortID
		if strings.TrimSpace(id) == "" {
			id = Dim("--")
		}
		rows = append(rows, []string{
			id,
			Bold(p.Name),
			Dim(TruncID(p.ID)),
			HumanDate(p.CreatedAt),
		})
	}

	return RenderBox("Projects", RenderTable(headers, rows))
}

// FormatProjectView renders a project header and its task forest.
func FormatProjectView(view *contract.ProjectView, withIDs bool) string {
	var b strings.Builder

	b.WriteString(StyleBold.Render(view.Name))
	if view.ShortID != "" {
		b.WriteString("  " + StyleBlue.Render(view.ShortID))
	}
	b.WriteString("\n")
	b.WriteString(Dim(fmt.Sprintf("%s · created %s", TruncID(view.ID), HumanDate(view.CreatedAt))))
	b.WriteString("\n\n")

	items := TreeItems(view.Tasks, withIDs)
	if len(items) == 0 {
		b.WriteString(Dim("No tasks."))
		return RenderBox("", b.String())
	}

	done := 0
	for _, e := range view.Tasks.Entities {
		if e.Completed {
			done++
		}
	}
	b.WriteString(strings.TrimRight(RenderTree(items), "\n"))
	b.WriteString("\n\n")
	b.WriteString(Dim(fmt.Sprintf("%d/%d done", done, len(view.Tasks.Entities))))

	return RenderBox("", b.String())
}

// FormatImportResult summarizes an imported project.
func FormatImportResult(res *contract.ImportResult) string {
	return fmt.Sprintf("Imported project %s (%s): %d tasks, %d completed",
		Bold(res.ProjectName), TruncID(res.ProjectID), res.TaskCount, res.CompletedCount)
}
