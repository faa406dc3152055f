package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestProgressStateScanMalformed(t *testing.T) {
	cases := []struct {
		name  string
		value interface{}
	}{
		{"nil", nil},
		{"empty bytes", []byte{}},
		{"not json", []byte("{{nope")},
		{"wrong shape", []byte(`[1,2,3]`)},
	}

	for _, tc := range cases {
		var state ProgressState
		if err := state.Scan(tc.value); err != nil {
			t.Fatalf("%s: Scan returned error: %v", tc.name, err)
		}
		if state.Phase != PhaseDraft || state.PhaseStatus != PhaseStatusIdle {
			t.Errorf("%s: expected neutral state, got phase=%q status=%q", tc.name, state.Phase, state.PhaseStatus)
		}
	}
}

func TestProgressStateScanNormalizesUnknownValues(t *testing.T) {
	var state ProgressState
	blob := []byte(`{"phase":"banana","phase_status":"spinning","phase_error":"kept"}`)
	if err := state.Scan(blob); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if state.Phase != PhaseDraft {
		t.Errorf("unknown phase should normalize to draft, got %q", state.Phase)
	}
	if state.PhaseStatus != PhaseStatusIdle {
		t.Errorf("unknown status should normalize to idle, got %q", state.PhaseStatus)
	}
	if state.PhaseError != "kept" {
		t.Errorf("valid fields should survive normalization, got %q", state.PhaseError)
	}
}

func TestProgressStateRoundTrip(t *testing.T) {
	saved := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	original := ProgressState{
		Phase:       PhaseAwaitFinalize,
		PhaseStatus: PhaseStatusIdle,
		LastEval:    &EvalResult{Feedback: "solid", Score: 4, SavedAt: saved},
		LastCompare: &CompareResult{
			Decision:             CompareDecisionReuse,
			MatchedAnswerGroupID: 7,
			SavedAt:              saved,
		},
		ReviewSourceAnswerID: 12,
		ReviewNotesHistory:   []ReviewNote{{Note: "shorter intro", SavedAt: saved}},
	}

	value, err := original.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}

	var restored ProgressState
	if err := restored.Scan([]byte(value.(string))); err != nil {
		t.Fatalf("Scan: %v", err)
	}

	originalJSON, _ := json.Marshal(original)
	restoredJSON, _ := json.Marshal(restored)
	if string(originalJSON) != string(restoredJSON) {
		t.Fatalf("round trip mismatch:\noriginal: %s\nrestored: %s", originalJSON, restoredJSON)
	}
}
