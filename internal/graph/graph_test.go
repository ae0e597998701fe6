package graph

import (
	"testing"

	"github.com/RamXX/rollup/internal/model"
)

func entry(id string, typ model.WorkItemType, status model.Status, parent string) *model.RegistryEntry {
	return &model.RegistryEntry{
		ID: id, Type: typ, Path: id + ".md", Title: id,
		Status: status, Parent: parent,
	}
}

func sampleEntries() []*model.RegistryEntry {
	return []*model.RegistryEntry{
		entry("P0001", model.TypeProject, model.StatusInProgress, ""),
		entry("E0001", model.TypeEpic, model.StatusInProgress, "P0001"),
		entry("F0001", model.TypeFeature, model.StatusInProgress, "E0001"),
		entry("F0002", model.TypeFeature, model.StatusPlanned, "E0001"),
		entry("S0001", model.TypeStory, model.StatusCompleted, "F0001"),
		entry("S0002", model.TypeStory, model.StatusBlocked, "F0001"),
	}
}

func TestTree(t *testing.T) {
	g := Build(sampleEntries())

	root := g.Tree("P0001")
	if root == nil {
		t.Fatal("Tree(P0001) = nil")
	}
	if len(root.Children) != 1 || root.Children[0].Entry.ID != "E0001" {
		t.Fatalf("root children = %+v", root.Children)
	}
	epic := root.Children[0]
	if len(epic.Children) != 2 {
		t.Fatalf("epic children = %d, want 2", len(epic.Children))
	}
	// Sorted by id.
	if epic.Children[0].Entry.ID != "F0001" || epic.Children[1].Entry.ID != "F0002" {
		t.Errorf("epic children order: %s, %s", epic.Children[0].Entry.ID, epic.Children[1].Entry.ID)
	}
	if len(epic.Children[0].Children) != 2 {
		t.Errorf("feature children = %d, want 2", len(epic.Children[0].Children))
	}

	if g.Tree("X9999") != nil {
		t.Error("Tree of unknown id should be nil")
	}
}

func TestRoots(t *testing.T) {
	entries := sampleEntries()
	// An orphan whose parent is not in the graph counts as a root.
	entries = append(entries, entry("B0001", model.TypeBug, model.StatusPlanned, "F0099"))
	g := Build(entries)

	roots := g.Roots()
	if len(roots) != 2 {
		t.Fatalf("roots = %d, want 2", len(roots))
	}
	if roots[0].ID != "B0001" || roots[1].ID != "P0001" {
		t.Errorf("roots = %s, %s", roots[0].ID, roots[1].ID)
	}
}

func TestDetectCycles(t *testing.T) {
	g := Build(sampleEntries())
	if cycles := g.DetectCycles(); len(cycles) != 0 {
		t.Errorf("clean tree has cycles: %v", cycles)
	}

	g = Build([]*model.RegistryEntry{
		entry("E0001", model.TypeEpic, model.StatusPlanned, "F0001"),
		entry("F0001", model.TypeFeature, model.StatusPlanned, "E0001"),
		entry("S0001", model.TypeStory, model.StatusPlanned, "F0001"),
	})
	cycles := g.DetectCycles()
	if len(cycles) != 1 {
		t.Fatalf("cycles = %v, want one", cycles)
	}
	found := map[string]bool{}
	for _, id := range cycles[0] {
		found[id] = true
	}
	if !found["E0001"] || !found["F0001"] {
		t.Errorf("cycle %v does not name both ids", cycles[0])
	}
}

func TestStats(t *testing.T) {
	g := Build(sampleEntries())
	s := g.Stats()
	if s.Total != 6 {
		t.Errorf("total = %d, want 6", s.Total)
	}
	if s.Completed != 1 || s.Blocked != 1 || s.Planned != 1 || s.InProgress != 3 {
		t.Errorf("stats = %+v", s)
	}
	if s.ByType["Feature"] != 2 {
		t.Errorf("feature count = %d, want 2", s.ByType["Feature"])
	}
}
