package model

import "time"

// Session statuses.
const (
	SessionStatusDraft     = "draft"
	SessionStatusCompleted = "completed"
)

// Session types.
const (
	SessionTypeFirst  = "first"
	SessionTypeReview = "review"
)

// Task statuses.
const (
	TaskStatusPending   = "pending"
	TaskStatusRunning   = "running"
	TaskStatusSucceeded = "succeeded"
	TaskStatusFailed    = "failed"
	TaskStatusCanceled  = "canceled"
)

// Task types.
const (
	TaskTypeEval         = "eval"
	TaskTypeCompose      = "compose"
	TaskTypeCompare      = "compare"
	TaskTypeGapHighlight = "gap-highlight"
	TaskTypeRefine       = "refine"
	TaskTypeTranslate    = "translate"
	TaskTypeStructure    = "structure"
)

type Question struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Title     string    `json:"title" gorm:"not null"`
	Body      string    `json:"body" gorm:"not null"`
	Type      string    `json:"type"`
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	Tags      string    `json:"tags"` // comma separated
	SourceURL string    `json:"source_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AnswerGroup is a titled bundle of answer versions for one question.
type AnswerGroup struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	QuestionID      uint      `json:"question_id" gorm:"not null;index"`
	Slug            string    `json:"slug"`
	Title           string    `json:"title" gorm:"not null"`
	Descriptor      string    `json:"descriptor"`
	DialogueProfile JSONMap   `json:"dialogue_profile" gorm:"type:jsonb"`
	Answers         []Answer  `json:"answers" gorm:"foreignKey:AnswerGroupID"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type Answer struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	AnswerGroupID uint      `json:"answer_group_id" gorm:"not null;index"`
	VersionIndex  int       `json:"version_index" gorm:"default:1"`
	Status        string    `json:"status" gorm:"default:'draft'"`
	Title         string    `json:"title" gorm:"not null"`
	Text          string    `json:"text"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Session is one authoring attempt at a question, tracked through the guided
// phase sequence kept in ProgressState.
type Session struct {
	ID              uint          `json:"id" gorm:"primaryKey"`
	QuestionID      uint          `json:"question_id" gorm:"not null;index"`
	AnswerID        *uint         `json:"answer_id" gorm:"index"`
	SessionType     string        `json:"session_type" gorm:"default:'first'"`
	Status          string        `json:"status" gorm:"default:'draft'"`
	UserAnswerDraft string        `json:"user_answer_draft"`
	ProgressState   ProgressState `json:"progress_state" gorm:"type:jsonb"`
	StartedAt       time.Time     `json:"started_at" gorm:"autoCreateTime"`
	CompletedAt     *time.Time    `json:"completed_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// Task is a single synchronously-executed backend operation record.
type Task struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	PublicID      string     `json:"public_id" gorm:"uniqueIndex"`
	Type          string     `json:"type" gorm:"not null;index"`
	Status        string     `json:"status" gorm:"default:'pending';index"`
	SessionID     *uint      `json:"session_id" gorm:"index"`
	AnswerID      *uint      `json:"answer_id" gorm:"index"`
	Payload       JSONMap    `json:"payload" gorm:"type:jsonb"`
	ResultSummary JSONMap    `json:"result_summary" gorm:"type:jsonb"`
	ErrorMessage  string     `json:"error_message"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// LLMConversation logs one model invocation for audit/debugging.
type LLMConversation struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	SessionID *uint     `json:"session_id" gorm:"index"`
	TaskID    *uint     `json:"task_id" gorm:"index"`
	Purpose   string    `json:"purpose"`
	Messages  JSONMap   `json:"messages" gorm:"type:jsonb"`
	Result    JSONMap   `json:"result" gorm:"type:jsonb"`
	ModelName string    `json:"model_name"`
	LatencyMS int       `json:"latency_ms"`
	CreatedAt time.Time `json:"created_at"`
}

// Paragraph/Sentence/Lexeme form the structure breakdown of a finalized
// answer, produced by the structure pipeline task.
type Paragraph struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	AnswerID  uint      `json:"answer_id" gorm:"not null;index"`
	Index     int       `json:"index"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}

type Sentence struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	ParagraphID   uint      `json:"paragraph_id" gorm:"not null;index"`
	AnswerID      uint      `json:"answer_id" gorm:"not null;index"`
	Index         int       `json:"index"`
	Text          string    `json:"text" gorm:"not null"`
	TranslationEN string    `json:"translation_en"`
	TranslationZH string    `json:"translation_zh"`
	CreatedAt     time.Time `json:"created_at"`
}

type Lexeme struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	SentenceID     uint      `json:"sentence_id" gorm:"not null;index"`
	AnswerID       uint      `json:"answer_id" gorm:"not null;index"`
	Lemma          string    `json:"lemma" gorm:"not null"`
	Gloss          string    `json:"gloss"`
	SampleSentence string    `json:"sample_sentence"`
	CreatedAt      time.Time `json:"created_at"`
}

// FlashcardProgress is one spaced-repetition progress row keyed by the
// reviewed entity.
type FlashcardProgress struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	EntityType   string    `json:"entity_type" gorm:"not null;index:idx_flashcard_entity,unique"`
	EntityID     uint      `json:"entity_id" gorm:"not null;index:idx_flashcard_entity,unique"`
	LastScore    *int      `json:"last_score"`
	DueAt        time.Time `json:"due_at" gorm:"index"`
	Streak       int       `json:"streak" gorm:"default:0"`
	IntervalDays int       `json:"interval_days" gorm:"default:1"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FlashcardStudyCard joins a progress row with the entity it reviews.
type FlashcardStudyCard struct {
	Card     FlashcardProgress `json:"card"`
	Sentence *Sentence         `json:"sentence,omitempty"`
	Lexeme   *Lexeme           `json:"lexeme,omitempty"`
}

// SessionHistory bundles a session with its task and conversation history.
type SessionHistory struct {
	Session       Session           `json:"session"`
	Tasks         []Task            `json:"tasks"`
	Conversations []LLMConversation `json:"conversations"`
}

// SessionFinalizePayload is the body of POST /sessions/:id/finalize. Either
// AnswerGroupID (reuse) or GroupTitle (new group) must be set.
type SessionFinalizePayload struct {
	AnswerGroupID   *uint   `json:"answer_group_id,omitempty"`
	GroupTitle      string  `json:"group_title,omitempty"`
	GroupDescriptor string  `json:"group_descriptor,omitempty"`
	DialogueProfile JSONMap `json:"dialogue_profile,omitempty"`
	AnswerTitle     string  `json:"answer_title" binding:"required"`
	AnswerText      string  `json:"answer_text" binding:"required"`
}
