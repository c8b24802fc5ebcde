// Package tree flattens a set of tasks into an id-keyed entity map plus a
// parent-key adjacency list that clients render as a forest.
package tree

import (
	"sort"
	"time"

	"github.com/alexanderramin/arbor/internal/domain"
)

// Entity is the client-facing record of one task.
type Entity struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	ParentTaskID *string   `json:"parentTaskId"`
	ProjectID    string    `json:"projectId"`
	Completed    bool      `json:"completed"`
	CreatedAt    time.Time `json:"createdAt"`
	Order        int       `json:"order"`
}

// Projection is the flattened forest. Hierarchy maps a parent key (a task id
// or domain.RootKey) to the ordered ids of its children and always has a
// domain.RootKey entry.
type Projection struct {
	Entities  map[string]Entity   `json:"entities"`
	Hierarchy map[string][]string `json:"hierarchy"`
}

// Project builds the projection of tasks. Children are listed by ascending
// order, ties keep their input order. A task whose parent is not among tasks
// is listed under domain.RootKey; its Entity still carries the real parent.
func Project(tasks []*domain.Task) Projection {
	sorted := make([]*domain.Task, len(tasks))
	copy(sorted, tasks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order < sorted[j].Order
	})

	p := Projection{
		Entities:  make(map[string]Entity, len(sorted)),
		Hierarchy: map[string][]string{domain.RootKey: {}},
	}
	for _, t := range sorted {
		p.Entities[t.ID] = toEntity(t)
	}
	for _, t := range sorted {
		key := t.ParentKey()
		if _, ok := p.Entities[key]; !ok {
			key = domain.RootKey
		}
		p.Hierarchy[key] = append(p.Hierarchy[key], t.ID)
	}
	return p
}

func toEntity(t *domain.Task) Entity {
	var parent *string
	if t.ParentTaskID != nil {
		id := *t.ParentTaskID
		parent = &id
	}
	return Entity{
		ID:           t.ID,
		Title:        t.Title,
		ParentTaskID: parent,
		ProjectID:    t.ProjectID,
		Completed:    t.Completed,
		CreatedAt:    t.CreatedAt,
		Order:        t.Order,
	}
}

// Walk visits the projection depth-first from the root, in hierarchy order.
// depth is 0 for top-level entries.
func (p Projection) Walk(fn func(e Entity, depth int)) {
	var visit func(key string, depth int)
	visit = func(key string, depth int) {
		for _, id := range p.Hierarchy[key] {
			fn(p.Entities[id], depth)
			visit(id, depth+1)
		}
	}
	visit(domain.RootKey, 0)
}
