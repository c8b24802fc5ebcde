package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/arbor/internal/contract"
	"github.com/alexanderramin/arbor/internal/domain"
	"github.com/alexanderramin/arbor/internal/repository"
	"github.com/alexanderramin/arbor/internal/tree"
)

// FormatTask renders one task with its subtree below it.
func FormatTask(t *domain.Task, desc []repository.Descendant) string {
	var b strings.Builder

	b.WriteString(StyleBold.Render(t.Title) + "\n\n")
	field := func(label, value string) {
		b.WriteString(fmt.Sprintf("%s  %s\n", StyleDim.Render(fmt.Sprintf("%-7s", label)), value))
	}
	field("STATUS", CompletionPill(t.Completed))
	field("ID", t.ID)
	parent := Dim(domain.RootKey)
	if t.ParentTaskID != nil {
		parent = *t.ParentTaskID
	}
	field("PARENT", parent)
	field("ORDER", fmt.Sprintf("%d", t.Order))
	field("CREATED", HumanDate(t.CreatedAt))

	if len(desc) > 0 {
		tasks := make([]*domain.Task, 0, len(desc))
		for _, d := range desc {
			tasks = append(tasks, d.Task)
		}
		b.WriteString("\n" + Header("Subtasks") + "\n")
		b.WriteString(strings.TrimRight(RenderTree(TreeItems(tree.Project(tasks), false)), "\n"))
	}

	return RenderBox("", b.String())
}

// FormatStatusResult lists the tasks a status change wrote.
func FormatStatusResult(res *contract.UpdateStatusResult) string {
	state := "pending"
	if res.NewStatus {
		state = "done"
	}
	ids := make([]string, len(res.UpdatedIDs))
	for i, id := range res.UpdatedIDs {
		ids[i] = TruncID(id)
	}
	return fmt.Sprintf("Marked %d task(s) %s: %s", len(ids), state, strings.Join(ids, ", "))
}

// FormatDeleteResult summarizes a subtree deletion.
func FormatDeleteResult(res *contract.DeleteResult) string {
	if len(res.DeletedDescendants) == 0 {
		return fmt.Sprintf("Deleted task %s", TruncID(res.DeletedRoot))
	}
	return fmt.Sprintf("Deleted task %s and %d subtask(s)", TruncID(res.DeletedRoot), len(res.DeletedDescendants))
}
