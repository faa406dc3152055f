package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Workflow phases.
const (
	PhaseDraft         = "draft"
	PhaseAwaitNewGroup = "await_new_group"
	PhaseAwaitFinalize = "await_finalize"
	PhaseLearning      = "learning"
	PhaseCompleted     = "completed"
)

// Phase statuses.
const (
	PhaseStatusIdle    = "idle"
	PhaseStatusRunning = "running"
	PhaseStatusFailed  = "failed"
)

// Compare decisions.
const (
	CompareDecisionNewGroup = "new_group"
	CompareDecisionReuse    = "reuse"
)

type EvalResult struct {
	Feedback string    `json:"feedback"`
	Score    int       `json:"score"`
	SavedAt  time.Time `json:"saved_at"`
}

type ComposeResult struct {
	Title   string    `json:"title"`
	Text    string    `json:"text"`
	Outline []string  `json:"outline,omitempty"`
	Notes   string    `json:"notes,omitempty"`
	SavedAt time.Time `json:"saved_at"`
}

type CompareResult struct {
	Decision             string    `json:"decision"`
	MatchedAnswerGroupID uint      `json:"matched_answer_group_id,omitempty"`
	Reason               string    `json:"reason,omitempty"`
	Differences          []string  `json:"differences,omitempty"`
	SavedAt              time.Time `json:"saved_at"`
}

type ReviewNote struct {
	Note    string    `json:"note"`
	SavedAt time.Time `json:"saved_at"`
}

// ProgressState is the per-session workflow blob. It is persisted as JSONB;
// unknown or malformed persisted shapes decode to the neutral draft/idle
// state instead of failing the whole session read.
type ProgressState struct {
	Phase                string         `json:"phase"`
	PhaseStatus          string         `json:"phase_status"`
	PhaseError           string         `json:"phase_error,omitempty"`
	LastEval             *EvalResult    `json:"last_eval,omitempty"`
	LastCompose          *ComposeResult `json:"last_compose,omitempty"`
	LastCompare          *CompareResult `json:"last_compare,omitempty"`
	ReviewSourceAnswerID uint           `json:"review_source_answer_id,omitempty"`
	ReviewNotes          string         `json:"review_notes,omitempty"`
	ReviewNotesHistory   []ReviewNote   `json:"review_notes_history,omitempty"`
}

// NeutralProgressState is the default for new or unreadable sessions.
func NeutralProgressState() ProgressState {
	return ProgressState{Phase: PhaseDraft, PhaseStatus: PhaseStatusIdle}
}

func validPhase(p string) bool {
	switch p {
	case PhaseDraft, PhaseAwaitNewGroup, PhaseAwaitFinalize, PhaseLearning, PhaseCompleted:
		return true
	}
	return false
}

func validPhaseStatus(s string) bool {
	switch s {
	case PhaseStatusIdle, PhaseStatusRunning, PhaseStatusFailed:
		return true
	}
	return false
}

// Normalize coerces out-of-domain phase values back to the neutral state.
func (p *ProgressState) Normalize() {
	if !validPhase(p.Phase) {
		p.Phase = PhaseDraft
	}
	if !validPhaseStatus(p.PhaseStatus) {
		p.PhaseStatus = PhaseStatusIdle
	}
}

func (p ProgressState) Value() (driver.Value, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (p *ProgressState) Scan(value interface{}) error {
	*p = NeutralProgressState()
	if value == nil {
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("unsupported progress_state column type")
	}
	if len(data) == 0 {
		return nil
	}
	var decoded ProgressState
	if err := json.Unmarshal(data, &decoded); err != nil {
		// Malformed blobs fall back to the neutral state.
		return nil
	}
	decoded.Normalize()
	*p = decoded
	return nil
}

// JSONMap is a free-form JSONB column (task payloads, conversation logs).
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (m *JSONMap) Scan(value interface{}) error {
	*m = JSONMap{}
	if value == nil {
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("unsupported jsonb column type")
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, m)
}
