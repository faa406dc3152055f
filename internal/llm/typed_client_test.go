package llm

import (
	"strings"
	"testing"

	"examloop-backend/internal/model"
)

type stubCompleter struct {
	response string
	err      error
	prompts  []string
}

func (s *stubCompleter) ModelName() string { return "stub" }

func (s *stubCompleter) complete(prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.response, s.err
}

func TestDecodeJSONStripsFences(t *testing.T) {
	var result model.EvalResult
	raw := "```json\n{\"feedback\":\"good\",\"score\":4}\n```"
	if err := decodeJSON(raw, &result); err != nil {
		t.Fatalf("decodeJSON: %v", err)
	}
	if result.Feedback != "good" || result.Score != 4 {
		t.Fatalf("unexpected result: %+v", result)
	}

	if err := decodeJSON("not json at all", &result); err == nil {
		t.Fatal("expected an error on garbage input")
	}
}

func TestCompareAnswersCoercesUnknownDecision(t *testing.T) {
	completer := &stubCompleter{response: `{"decision":"maybe","reason":"unsure"}`}
	client := &typedClient{completer: completer}

	result, err := client.CompareAnswers(&model.Question{Title: "Q"}, "draft", nil)
	if err != nil {
		t.Fatalf("CompareAnswers: %v", err)
	}
	if result.Decision != model.CompareDecisionNewGroup {
		t.Fatalf("unknown decisions should coerce to new_group, got %q", result.Decision)
	}
	if result.Reason != "unsure" {
		t.Fatalf("reason should survive, got %q", result.Reason)
	}
}

func TestCompareAnswersKeepsReuseDecision(t *testing.T) {
	completer := &stubCompleter{response: `{"decision":"reuse","matched_answer_group_id":7}`}
	client := &typedClient{completer: completer}

	result, err := client.CompareAnswers(&model.Question{Title: "Q"}, "draft", []model.AnswerGroup{{ID: 7, Title: "G"}})
	if err != nil {
		t.Fatalf("CompareAnswers: %v", err)
	}
	if result.Decision != model.CompareDecisionReuse || result.MatchedAnswerGroupID != 7 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestEvaluateAnswerUsesQuestionInPrompt(t *testing.T) {
	completer := &stubCompleter{response: `{"feedback":"ok","score":3}`}
	client := &typedClient{completer: completer}

	if _, err := client.EvaluateAnswer(&model.Question{Title: "Urbanisation", Body: "Discuss."}, "my draft"); err != nil {
		t.Fatalf("EvaluateAnswer: %v", err)
	}
	if len(completer.prompts) != 1 {
		t.Fatalf("expected one completion call, got %d", len(completer.prompts))
	}
	prompt := completer.prompts[0]
	for _, want := range []string{"Urbanisation", "my draft"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
