package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"examloop-backend/internal/model"
)

// Client is the interface session tasks use to talk to a language model.
// Every operation returns a structured result parsed from a JSON response.
type Client interface {
	ModelName() string
	EvaluateAnswer(question *model.Question, draft string) (*model.EvalResult, error)
	ComposeAnswer(question *model.Question, draft string) (*model.ComposeResult, error)
	CompareAnswers(question *model.Question, draft string, groups []model.AnswerGroup) (*model.CompareResult, error)
	HighlightGaps(question *model.Question, draft, sourceText string) (*GapHighlight, error)
	RefineAnswer(question *model.Question, draft string) (*RefinedAnswer, error)
	TranslateText(text string) (*Translation, error)
	StructureAnswer(question *model.Question, answerText string) (*StructurePlan, error)
}

// Translation carries both study-language renderings of a text.
type Translation struct {
	TranslationEN string `json:"translation_en"`
	TranslationZH string `json:"translation_zh"`
}

// GapHighlight lists what a draft is missing versus a reference answer.
type GapHighlight struct {
	Summary string   `json:"summary"`
	Gaps    []string `json:"gaps"`
}

// RefinedAnswer is a polished rewrite of the user draft.
type RefinedAnswer struct {
	Title   string   `json:"title"`
	Text    string   `json:"text"`
	Changes []string `json:"changes,omitempty"`
}

// StructurePlan is the paragraph/sentence/lexeme breakdown of a finalized
// answer, used to seed the flashcard deck.
type StructurePlan struct {
	Paragraphs []ParagraphPlan `json:"paragraphs"`
}

type ParagraphPlan struct {
	Summary   string         `json:"summary"`
	Sentences []SentencePlan `json:"sentences"`
}

type SentencePlan struct {
	Text          string       `json:"text"`
	TranslationEN string       `json:"translation_en,omitempty"`
	TranslationZH string       `json:"translation_zh,omitempty"`
	Lexemes       []LexemePlan `json:"lexemes,omitempty"`
}

type LexemePlan struct {
	Lemma          string `json:"lemma"`
	Gloss          string `json:"gloss,omitempty"`
	SampleSentence string `json:"sample_sentence,omitempty"`
}

// decodeJSON parses a model response into out, tolerating markdown code
// fences around the JSON body.
func decodeJSON(response string, out interface{}) error {
	trimmed := strings.TrimSpace(response)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
			trimmed = trimmed[:idx]
		}
		trimmed = strings.TrimSpace(trimmed)
	}
	if err := json.Unmarshal([]byte(trimmed), out); err != nil {
		return fmt.Errorf("failed to parse model response: %w", err)
	}
	return nil
}
