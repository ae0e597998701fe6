package registry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/RamXX/rollup/internal/model"
)

func newService(t *testing.T) *Service {
	t.Helper()
	s := NewService(t.TempDir(), nil)
	if err := s.Bootstrap(); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	return s
}

func entry(id string, typ model.WorkItemType, parent string) *model.RegistryEntry {
	return &model.RegistryEntry{
		ID:      id,
		Type:    typ,
		Path:    id + "-item/" + id + ".md",
		Title:   "Item " + id,
		Status:  model.StatusPlanned,
		Parent:  parent,
		Created: model.Today(),
		Updated: model.Today(),
	}
}

func TestBootstrapAndLoad(t *testing.T) {
	dir := t.TempDir()
	s := NewService(dir, nil)

	// Load before bootstrap is a structural failure.
	if _, err := s.Load(); !errors.Is(err, model.ErrStructural) {
		t.Errorf("load without registry: err = %v, want ErrStructural", err)
	}

	if err := s.Bootstrap(); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if err := s.Bootstrap(); err == nil {
		t.Error("second Bootstrap should fail")
	}

	r, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, p := range model.AllPrefixes {
		if n, ok := r.IDCounters[p]; !ok || n != 0 {
			t.Errorf("counter %q = %d, %v", p, n, ok)
		}
	}
}

func TestLoadMalformed(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, Filename), []byte("{oops"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	s := NewService(dir, nil)
	if _, err := s.Load(); !errors.Is(err, model.ErrParse) {
		t.Errorf("malformed registry: err = %v, want ErrParse", err)
	}
}

func TestNextID(t *testing.T) {
	s := newService(t)

	id, err := s.NextID(model.TypeFeature)
	if err != nil {
		t.Fatalf("NextID: %v", err)
	}
	if id != "F0001" {
		t.Errorf("first id = %q, want F0001", id)
	}

	id, err = s.NextID(model.TypeFeature)
	if err != nil {
		t.Fatalf("NextID: %v", err)
	}
	if id != "F0002" {
		t.Errorf("second id = %q, want F0002", id)
	}

	// Counters survive a cache drop (they were persisted).
	s.Invalidate()
	id, err = s.NextID(model.TypePhase)
	if err != nil {
		t.Fatalf("NextID: %v", err)
	}
	if id != "PH0001" {
		t.Errorf("phase id = %q, want PH0001", id)
	}
	r, _ := s.Load()
	if r.IDCounters["F"] != 2 {
		t.Errorf("F counter = %d, want 2", r.IDCounters["F"])
	}
}

func TestAddGetUpdateDelete(t *testing.T) {
	s := newService(t)

	e := entry("E0001", model.TypeEpic, "P0001")
	if err := s.AddWorkItem(e); err != nil {
		t.Fatalf("AddWorkItem: %v", err)
	}
	if err := s.AddWorkItem(e); err == nil {
		t.Error("duplicate AddWorkItem should fail")
	}

	got, err := s.GetWorkItem("E0001")
	if err != nil {
		t.Fatalf("GetWorkItem: %v", err)
	}
	if got.Title != "Item E0001" {
		t.Errorf("title = %q", got.Title)
	}

	parent, err := s.GetParentID("E0001")
	if err != nil {
		t.Fatalf("GetParentID: %v", err)
	}
	if parent != "P0001" {
		t.Errorf("parent = %q, want P0001", parent)
	}

	status := model.StatusInProgress
	if err := s.UpdateWorkItem("E0001", Update{Status: &status}); err != nil {
		t.Fatalf("UpdateWorkItem: %v", err)
	}
	got, _ = s.GetWorkItem("E0001")
	if got.Status != model.StatusInProgress {
		t.Errorf("status = %q", got.Status)
	}

	if err := s.UpdateWorkItem("E9999", Update{Status: &status}); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("update missing: err = %v, want ErrNotFound", err)
	}

	if err := s.DeleteWorkItem("E0001"); err != nil {
		t.Fatalf("DeleteWorkItem: %v", err)
	}
	got, err = s.GetWorkItem("E0001")
	if err != nil {
		t.Fatalf("soft-deleted entry should still resolve: %v", err)
	}
	if !got.Deleted {
		t.Error("entry not marked deleted")
	}
}

func TestGetChildrenSkipsDeleted(t *testing.T) {
	s := newService(t)

	for _, e := range []*model.RegistryEntry{
		entry("F0001", model.TypeFeature, "E0001"),
		entry("S0001", model.TypeStory, "F0001"),
		entry("S0002", model.TypeStory, "F0001"),
		entry("B0001", model.TypeBug, "F0001"),
	} {
		if err := s.AddWorkItem(e); err != nil {
			t.Fatalf("AddWorkItem %s: %v", e.ID, err)
		}
	}
	if err := s.DeleteWorkItem("S0002"); err != nil {
		t.Fatalf("DeleteWorkItem: %v", err)
	}

	children, err := s.GetChildren("F0001")
	if err != nil {
		t.Fatalf("GetChildren: %v", err)
	}
	if len(children) != 2 {
		t.Fatalf("children = %d, want 2", len(children))
	}
	// Sorted by id: B before S.
	if children[0].ID != "B0001" || children[1].ID != "S0001" {
		t.Errorf("children order = %s, %s", children[0].ID, children[1].ID)
	}
}

func TestGetStatePath(t *testing.T) {
	s := newService(t)

	feature := entry("F0001", model.TypeFeature, "E0001")
	task := entry("T0001", model.TypeTask, "PH0001")
	project := entry("P0001", model.TypeProject, "")
	project.Path = "P0001.md"
	for _, e := range []*model.RegistryEntry{feature, task, project} {
		if err := s.AddWorkItem(e); err != nil {
			t.Fatalf("AddWorkItem %s: %v", e.ID, err)
		}
	}

	p, err := s.GetStatePath("F0001")
	if err != nil {
		t.Fatalf("GetStatePath: %v", err)
	}
	want := filepath.Join(s.Dir(), "F0001-item", "F0001.state.json")
	if p != want {
		t.Errorf("feature state path = %q, want %q", p, want)
	}

	// Tasks have no state document.
	p, err = s.GetStatePath("T0001")
	if err != nil {
		t.Fatalf("GetStatePath task: %v", err)
	}
	if p != "" {
		t.Errorf("task state path = %q, want empty", p)
	}

	// The project state document lives at the data-directory root.
	p, err = s.GetStatePath("P0001")
	if err != nil {
		t.Fatalf("GetStatePath project: %v", err)
	}
	if p != filepath.Join(s.Dir(), "P0001.state.json") {
		t.Errorf("project state path = %q", p)
	}
}
