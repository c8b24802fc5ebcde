package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/arbor/internal/tree"
	"github.com/charmbracelet/lipgloss"
)

// TreeItem represents a single node in a tree display.
type TreeItem struct {
	Title     string
	Level     int    // 1 for top-level tasks
	Last      []bool // Last[i] reports whether the ancestor at level i+1 (or the item itself) ends its group
	Completed bool
	Detail    string
}

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
	treeBlank  = "   "
)

// TreeItems flattens a projection into display rows in hierarchy order.
func TreeItems(p tree.Projection, withIDs bool) []TreeItem {
	lastOf := map[string]bool{}
	for _, ids := range p.Hierarchy {
		if len(ids) > 0 {
			lastOf[ids[len(ids)-1]] = true
		}
	}

	var items []TreeItem
	var trail []bool
	p.Walk(func(e tree.Entity, depth int) {
		trail = append(trail[:depth], lastOf[e.ID])
		item := TreeItem{
			Title:     e.Title,
			Level:     depth + 1,
			Last:      append([]bool(nil), trail...),
			Completed: e.Completed,
		}
		if withIDs {
			item.Detail = TruncID(e.ID)
		}
		items = append(items, item)
	})
	return items
}

// RenderTree renders rows with box-drawing connectors. Completed tasks get a
// green ✔ prefix and dimmed titles; details are right-aligned badges.
func RenderTree(items []TreeItem) string {
	if len(items) == 0 {
		return ""
	}

	contents := make([]string, len(items))
	width := 0
	for i, item := range items {
		var prefix strings.Builder
		for lvl := 1; lvl < item.Level; lvl++ {
			if lvl-1 < len(item.Last) && item.Last[lvl-1] {
				prefix.WriteString(treeBlank)
			} else {
				prefix.WriteString(treePipe)
			}
		}
		if item.Level > 0 {
			if n := len(item.Last); n > 0 && item.Last[n-1] {
				prefix.WriteString(treeCorner)
			} else {
				prefix.WriteString(treeBranch)
			}
		}

		title := StyleFg.Render(item.Title)
		mark := StyleYellow.Render("○ ")
		if item.Completed {
			mark = StyleGreen.Render("✔ ")
			title = Dim(item.Title)
		}
		contents[i] = StyleDim.Render(prefix.String()) + mark + title
		width = max(width, lipgloss.Width(contents[i]))
	}

	var b strings.Builder
	for i, item := range items {
		b.WriteString(contents[i])
		if item.Detail != "" {
			pad := width - lipgloss.Width(contents[i])
			b.WriteString(strings.Repeat(" ", pad) + "  " + StyleBlue.Render(fmt.Sprintf("[ %s ]", item.Detail)))
		}
		b.WriteString("\n")
	}
	return b.String()
}
