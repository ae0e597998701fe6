package engine

import (
	"os"
	"testing"

	"github.com/RamXX/rollup/internal/model"
	"github.com/RamXX/rollup/internal/state"
)

func findIssue(issues []Issue, itemID string, severity Severity) *Issue {
	for i := range issues {
		if issues[i].ItemID == itemID && issues[i].Severity == severity {
			return &issues[i]
		}
	}
	return nil
}

func TestValidateHierarchyCleanTree(t *testing.T) {
	f := newFixture(t)
	buildFeatureTree(t, f)
	// Make the upper levels consistent before validating.
	if err := f.engine.PropagateStateChange(f.statePath(t, "S0001")); err != nil {
		t.Fatalf("propagate: %v", err)
	}

	issues, err := f.engine.ValidateHierarchy()
	if err != nil {
		t.Fatalf("ValidateHierarchy: %v", err)
	}
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			t.Errorf("unexpected error issue: %+v", issue)
		}
	}
}

func TestValidateHierarchyMissingDocument(t *testing.T) {
	f := newFixture(t)
	buildFeatureTree(t, f)
	if err := os.Remove(f.statePath(t, "S0004")); err != nil {
		t.Fatalf("remove: %v", err)
	}

	issues, err := f.engine.ValidateHierarchy()
	if err != nil {
		t.Fatalf("ValidateHierarchy: %v", err)
	}
	issue := findIssue(issues, "S0004", SeverityError)
	if issue == nil {
		t.Fatalf("no error issue for S0004: %+v", issues)
	}
	if issue.Message != "missing state document" {
		t.Errorf("message = %q", issue.Message)
	}
}

func TestValidateHierarchyIDMismatch(t *testing.T) {
	f := newFixture(t)
	buildFeatureTree(t, f)

	doc := f.loadState(t, "S0004")
	doc.ID = "S9999"
	if err := f.states.Save(f.statePath(t, "S0004"), doc); err != nil {
		t.Fatalf("save: %v", err)
	}

	issues, err := f.engine.ValidateHierarchy()
	if err != nil {
		t.Fatalf("ValidateHierarchy: %v", err)
	}
	if findIssue(issues, "S0004", SeverityError) == nil {
		t.Errorf("no error for id mismatch: %+v", issues)
	}
}

func TestValidateHierarchyChildDisagreements(t *testing.T) {
	f := newFixture(t)
	buildFeatureTree(t, f)

	// A phantom child in the feature doc, and a registry child the epic
	// doc does not know about.
	feature := f.loadState(t, "F0001")
	feature = state.UpdateChildSummary(feature, "S0099", model.StatusPlanned, 0)
	f.saveState(t, "F0001", feature)

	issues, err := f.engine.ValidateHierarchy()
	if err != nil {
		t.Fatalf("ValidateHierarchy: %v", err)
	}
	if findIssue(issues, "F0001", SeverityError) == nil {
		t.Errorf("phantom child should be an error: %+v", issues)
	}
	// E0001's doc has no children recorded, but F0001 is its registry child.
	if findIssue(issues, "E0001", SeverityWarning) == nil {
		t.Errorf("missing registry child should be a warning: %+v", issues)
	}
}

func TestValidateHierarchyParentDisagreement(t *testing.T) {
	f := newFixture(t)
	buildFeatureTree(t, f)
	f.addItem(t, "F0002", model.TypeFeature, "E0001", model.StatusPlanned)

	// F0002's doc claims S0001, whose registry parent is F0001.
	doc := f.loadState(t, "F0002")
	doc = state.UpdateChildSummary(doc, "S0001", model.StatusCompleted, 0)
	f.saveState(t, "F0002", doc)

	issues, err := f.engine.ValidateHierarchy()
	if err != nil {
		t.Fatalf("ValidateHierarchy: %v", err)
	}
	if findIssue(issues, "F0002", SeverityWarning) == nil {
		t.Errorf("parent disagreement should be a warning: %+v", issues)
	}
}

func TestRepairHierarchyRegenerates(t *testing.T) {
	f := newFixture(t)
	buildFeatureTree(t, f)
	if err := os.Remove(f.statePath(t, "F0001")); err != nil {
		t.Fatalf("remove: %v", err)
	}

	results, err := f.engine.RepairHierarchy()
	if err != nil {
		t.Fatalf("RepairHierarchy: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %+v, want one", results)
	}
	if results[0].ItemID != "F0001" || !results[0].Success || results[0].Action != "regenerated" {
		t.Errorf("result = %+v", results[0])
	}

	feature := f.loadState(t, "F0001")
	if len(feature.Children) != 4 {
		t.Errorf("regenerated children = %d, want 4", len(feature.Children))
	}
}

func TestRepairHierarchyChildlessStory(t *testing.T) {
	f := newFixture(t)
	buildFeatureTree(t, f)
	if err := os.Remove(f.statePath(t, "S0002")); err != nil {
		t.Fatalf("remove: %v", err)
	}

	results, err := f.engine.RepairHierarchy()
	if err != nil {
		t.Fatalf("RepairHierarchy: %v", err)
	}
	if len(results) != 1 || !results[0].Success {
		t.Fatalf("results = %+v", results)
	}

	doc := f.loadState(t, "S0002")
	if doc.Status != model.StatusPlanned || doc.Progress.TotalItems != 0 {
		t.Errorf("childless regeneration = %+v", doc)
	}
	if len(doc.Children) != 0 {
		t.Errorf("children = %+v, want none", doc.Children)
	}
}
