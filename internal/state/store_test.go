package state

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/RamXX/rollup/internal/fsio"
	"github.com/RamXX/rollup/internal/model"
)

func TestCalculateProgress(t *testing.T) {
	tests := []struct {
		name     string
		children map[string]model.ChildSummary
		want     model.ProgressMetrics
	}{
		{
			name:     "empty",
			children: nil,
			want:     model.ProgressMetrics{},
		},
		{
			name: "even split",
			children: map[string]model.ChildSummary{
				"S0001": {Status: model.StatusCompleted, Progress: 100},
				"S0002": {Status: model.StatusCompleted, Progress: 100},
				"S0003": {Status: model.StatusInProgress, Progress: 40},
				"S0004": {Status: model.StatusPlanned},
			},
			want: model.ProgressMetrics{TotalItems: 4, Completed: 2, InProgress: 1, Planned: 1, Percentage: 50},
		},
		{
			name: "blocked children count only toward total",
			children: map[string]model.ChildSummary{
				"S0001": {Status: model.StatusCompleted, Progress: 100},
				"S0002": {Status: model.StatusBlocked},
				"S0003": {Status: model.StatusBlocked},
			},
			want: model.ProgressMetrics{TotalItems: 3, Completed: 1, Percentage: 33},
		},
		{
			name: "rounds half away from zero",
			children: map[string]model.ChildSummary{
				"S0001": {Status: model.StatusCompleted, Progress: 100},
				"S0002": {Status: model.StatusCompleted, Progress: 100},
				"S0003": {Status: model.StatusCompleted, Progress: 100},
				"S0004": {Status: model.StatusPlanned},
				"S0005": {Status: model.StatusPlanned},
				"S0006": {Status: model.StatusPlanned},
				"S0007": {Status: model.StatusPlanned},
				"S0008": {Status: model.StatusPlanned},
			},
			want: model.ProgressMetrics{TotalItems: 8, Completed: 3, Planned: 5, Percentage: 38},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateProgress(tt.children)
			if got != tt.want {
				t.Errorf("CalculateProgress = %+v, want %+v", got, tt.want)
			}
			sum := got.Completed + got.InProgress + got.Planned
			if sum > got.TotalItems {
				t.Errorf("bucket sum %d exceeds total %d", sum, got.TotalItems)
			}
		})
	}
}

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name     string
		children map[string]model.ChildSummary
		want     model.Status
	}{
		{"no children", nil, model.StatusPlanned},
		{"all completed", map[string]model.ChildSummary{
			"T0001": {Status: model.StatusCompleted},
			"T0002": {Status: model.StatusCompleted},
		}, model.StatusCompleted},
		{"some started", map[string]model.ChildSummary{
			"T0001": {Status: model.StatusCompleted},
			"T0002": {Status: model.StatusPlanned},
		}, model.StatusInProgress},
		{"in progress child", map[string]model.ChildSummary{
			"T0001": {Status: model.StatusInProgress},
		}, model.StatusInProgress},
		{"all planned", map[string]model.ChildSummary{
			"T0001": {Status: model.StatusPlanned},
			"T0002": {Status: model.StatusBlocked},
		}, model.StatusPlanned},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveStatus(tt.children); got != tt.want {
				t.Errorf("DeriveStatus = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUpdateChildSummaryIsPure(t *testing.T) {
	s := NewStore(nil)
	doc := s.CreateInitialState("F0001", model.StatusPlanned)

	a := UpdateChildSummary(doc, "S0001", model.StatusCompleted, 100)
	b := UpdateChildSummary(doc, "S0001", model.StatusCompleted, 100)

	// Input untouched.
	if len(doc.Children) != 0 {
		t.Fatal("UpdateChildSummary mutated its input")
	}
	// Identical output except the timestamp.
	if a.Progress != b.Progress || len(a.Children) != len(b.Children) {
		t.Errorf("outputs differ: %+v vs %+v", a, b)
	}
	if a.Children["S0001"] != b.Children["S0001"] {
		t.Errorf("child summaries differ")
	}
	if a.Progress.Percentage != 100 {
		t.Errorf("percentage = %d, want 100", a.Progress.Percentage)
	}
}

func TestUpdateChildSummaryReplaces(t *testing.T) {
	doc := &model.StateDocument{
		ID:     "F0001",
		Status: model.StatusInProgress,
		Children: map[string]model.ChildSummary{
			"S0001": {Status: model.StatusInProgress, Progress: 40},
			"S0002": {Status: model.StatusPlanned},
		},
	}
	out := UpdateChildSummary(doc, "S0001", model.StatusCompleted, 100)
	if out.Children["S0001"].Status != model.StatusCompleted {
		t.Errorf("child status = %q", out.Children["S0001"].Status)
	}
	want := model.ProgressMetrics{TotalItems: 2, Completed: 1, Planned: 1, Percentage: 50}
	if out.Progress != want {
		t.Errorf("progress = %+v, want %+v", out.Progress, want)
	}
}

func TestRemoveChildSummary(t *testing.T) {
	doc := &model.StateDocument{
		ID:     "F0001",
		Status: model.StatusInProgress,
		Children: map[string]model.ChildSummary{
			"S0001": {Status: model.StatusCompleted, Progress: 100},
			"S0002": {Status: model.StatusPlanned},
		},
	}
	out := RemoveChildSummary(doc, "S0002")
	if len(out.Children) != 1 || len(doc.Children) != 2 {
		t.Fatalf("children = %d (input %d)", len(out.Children), len(doc.Children))
	}
	if out.Progress.Percentage != 100 {
		t.Errorf("percentage = %d, want 100", out.Progress.Percentage)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := NewStore(nil)
	path := filepath.Join(t.TempDir(), "F0001.state.json")

	doc := s.CreateInitialState("F0001", model.StatusPlanned)
	doc = UpdateChildSummary(doc, "S0001", model.StatusInProgress, 40)
	if err := s.Save(path, doc); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.ID != doc.ID || got.Progress != doc.Progress || len(got.Children) != 1 {
		t.Errorf("round trip mismatch: %+v", got)
	}

	// Reconcile on a consistent document is a no-op.
	before, _ := os.ReadFile(path)
	if _, err := s.Reconcile(path); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	after, _ := os.ReadFile(path)
	if string(before) != string(after) {
		t.Error("Reconcile rewrote a consistent document")
	}
}

func TestReconcileCorrectsStaleProgress(t *testing.T) {
	s := NewStore(nil)
	path := filepath.Join(t.TempDir(), "F0001.state.json")

	doc := s.CreateInitialState("F0001", model.StatusInProgress)
	doc.Children["S0001"] = model.ChildSummary{Status: model.StatusCompleted, Progress: 100}
	doc.Children["S0002"] = model.ChildSummary{Status: model.StatusPlanned}
	doc.Progress = model.ProgressMetrics{TotalItems: 2, Completed: 2, Percentage: 100} // stale
	if err := fsio.WriteJSON(path, doc); err != nil {
		t.Fatalf("seed write: %v", err)
	}

	got, err := s.Reconcile(path)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	want := model.ProgressMetrics{TotalItems: 2, Completed: 1, Planned: 1, Percentage: 50}
	if got.Progress != want {
		t.Errorf("reconciled progress = %+v, want %+v", got.Progress, want)
	}

	// The correction was persisted.
	reread, err := s.Load(path)
	if err != nil {
		t.Fatalf("Load after reconcile: %v", err)
	}
	if reread.Progress != want {
		t.Errorf("persisted progress = %+v, want %+v", reread.Progress, want)
	}
}

func TestLoadErrors(t *testing.T) {
	s := NewStore(nil)
	dir := t.TempDir()

	if _, err := s.Load(filepath.Join(dir, "missing.state.json")); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("missing: err = %v, want ErrNotFound", err)
	}

	bad := filepath.Join(dir, "bad.state.json")
	os.WriteFile(bad, []byte("not json"), 0o644)
	if _, err := s.Load(bad); !errors.Is(err, model.ErrParse) {
		t.Errorf("malformed: err = %v, want ErrParse", err)
	}

	invalid := filepath.Join(dir, "invalid.state.json")
	os.WriteFile(invalid, []byte(`{"id":"F0001","status":"doing","progress":{},"children":{},"updated":"2025-10-12T14:03:00Z"}`), 0o644)
	if _, err := s.Load(invalid); !errors.Is(err, model.ErrValidation) {
		t.Errorf("invalid status: err = %v, want ErrValidation", err)
	}
}

func TestRegenerateFromChildren(t *testing.T) {
	s := NewStore(nil)
	dir := t.TempDir()

	childA := s.CreateInitialState("S0001", model.StatusCompleted)
	childA.Progress = model.ProgressMetrics{Percentage: 0}
	childB := s.CreateInitialState("S0002", model.StatusInProgress)
	pathA := filepath.Join(dir, "S0001.state.json")
	pathB := filepath.Join(dir, "S0002.state.json")
	if err := s.Save(pathA, childA); err != nil {
		t.Fatalf("save childA: %v", err)
	}
	if err := s.Save(pathB, childB); err != nil {
		t.Fatalf("save childB: %v", err)
	}
	// A corrupt sibling must be skipped, not fatal.
	corrupt := filepath.Join(dir, "S0003.state.json")
	os.WriteFile(corrupt, []byte("{"), 0o644)

	doc, err := s.RegenerateFromChildren("F0001", []string{pathA, pathB, corrupt})
	if err != nil {
		t.Fatalf("RegenerateFromChildren: %v", err)
	}
	if doc.ID != "F0001" {
		t.Errorf("id = %q", doc.ID)
	}
	if len(doc.Children) != 2 {
		t.Fatalf("children = %d, want 2", len(doc.Children))
	}
	if doc.Status != model.StatusInProgress {
		t.Errorf("status = %q, want in-progress", doc.Status)
	}
	want := model.ProgressMetrics{TotalItems: 2, Completed: 1, InProgress: 1, Percentage: 50}
	if doc.Progress != want {
		t.Errorf("progress = %+v, want %+v", doc.Progress, want)
	}
}

func TestRegenerateNoChildren(t *testing.T) {
	s := NewStore(nil)
	doc, err := s.RegenerateFromChildren("S0009", nil)
	if err != nil {
		t.Fatalf("RegenerateFromChildren: %v", err)
	}
	if doc.Status != model.StatusPlanned || doc.Progress.TotalItems != 0 {
		t.Errorf("empty regeneration = %+v", doc)
	}
}

// Regeneration over a child set must agree with folding the same children
// through UpdateChildSummary one at a time.
func TestRegenerateMatchesFold(t *testing.T) {
	s := NewStore(nil)
	dir := t.TempDir()

	statuses := []model.Status{model.StatusCompleted, model.StatusInProgress, model.StatusBlocked, model.StatusPlanned}
	var paths []string
	fold := s.CreateInitialState("E0001", model.StatusPlanned)
	for i, st := range statuses {
		id := string(rune('A'+i)) // distinct key per child
		child := s.CreateInitialState("S000"+id, st)
		p := filepath.Join(dir, child.ID+".state.json")
		if err := s.Save(p, child); err != nil {
			t.Fatalf("save child: %v", err)
		}
		paths = append(paths, p)
		fold = UpdateChildSummary(fold, child.ID, st, child.Progress.Percentage)
	}

	regen, err := s.RegenerateFromChildren("E0001", paths)
	if err != nil {
		t.Fatalf("RegenerateFromChildren: %v", err)
	}
	if regen.Progress != fold.Progress {
		t.Errorf("progress: regen %+v, fold %+v", regen.Progress, fold.Progress)
	}
	if len(regen.Children) != len(fold.Children) {
		t.Fatalf("children count: regen %d, fold %d", len(regen.Children), len(fold.Children))
	}
	for id, c := range fold.Children {
		if regen.Children[id] != c {
			t.Errorf("child %s: regen %+v, fold %+v", id, regen.Children[id], c)
		}
	}
}
