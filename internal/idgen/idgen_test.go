package idgen

import (
	"testing"

	"github.com/RamXX/rollup/internal/model"
)

func TestFormatID(t *testing.T) {
	tests := []struct {
		typ  model.WorkItemType
		n    int
		want string
	}{
		{model.TypeFeature, 7, "F0007"},
		{model.TypeProject, 1, "P0001"},
		{model.TypePhase, 12, "PH0012"},
		{model.TypeTask, 130, "T0130"},
		{model.TypeStory, 10000, "S10000"},
	}
	for _, tt := range tests {
		if got := FormatID(tt.typ, tt.n); got != tt.want {
			t.Errorf("FormatID(%s, %d) = %q, want %q", tt.typ, tt.n, got, tt.want)
		}
	}
}

func TestSplit(t *testing.T) {
	prefix, n, err := Split("PH0012")
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if prefix != "PH" || n != 12 {
		t.Errorf("Split(PH0012) = %q, %d", prefix, n)
	}

	prefix, n, err = Split("P0001")
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if prefix != "P" || n != 1 {
		t.Errorf("Split(P0001) = %q, %d", prefix, n)
	}

	for _, bad := range []string{"", "F", "X0001", "F00a1", "0001"} {
		if _, _, err := Split(bad); err == nil {
			t.Errorf("Split(%q) expected error", bad)
		}
	}
}

func TestTypeOf(t *testing.T) {
	typ, err := TypeOf("T0042")
	if err != nil {
		t.Fatalf("TypeOf: %v", err)
	}
	if typ != model.TypeTask {
		t.Errorf("TypeOf(T0042) = %s, want Task", typ)
	}
	if _, err := TypeOf("Q0001"); err == nil {
		t.Error("TypeOf(Q0001) expected error")
	}
}
