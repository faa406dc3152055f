package llm

import (
	"fmt"
	"strings"

	"examloop-backend/internal/model"
)

const evalPromptTemplate = `You are an examiner for long-form second-language exam answers.
Question (%s): %s
%s

Candidate draft:
%s

Evaluate the draft for content coverage, structure and language quality.
Output minimal JSON: {"feedback": "<feedback in the learner's native language>", "score": <integer 0-5>}`

const composePromptTemplate = `You are a writing coach for long-form second-language exam answers.
Question (%s): %s
%s

The learner's current draft (may be empty):
%s

Compose a model answer that keeps whatever is usable from the draft.
Output minimal JSON: {"title": "...", "text": "...", "outline": ["..."], "notes": "..."}`

const comparePromptTemplate = `You are comparing a new exam answer draft against existing answer bundles for the same question.
Question: %s

Draft:
%s

Existing bundles:
%s

Decide whether the draft is a variation of one existing bundle (decision "reuse",
set matched_answer_group_id) or takes a genuinely different angle (decision "new_group").
Output minimal JSON: {"decision": "reuse"|"new_group", "matched_answer_group_id": <id or 0>, "reason": "...", "differences": ["..."]}`

const gapHighlightPromptTemplate = `Compare a learner's draft against a reference answer and list what the draft is missing.
Question: %s

Reference answer:
%s

Draft:
%s

Output minimal JSON: {"summary": "...", "gaps": ["..."]}`

const refinePromptTemplate = `Polish the learner's draft answer without changing its argument.
Question (%s): %s

Draft:
%s

Output minimal JSON: {"title": "...", "text": "...", "changes": ["..."]}`

const translatePromptTemplate = `Translate the following text for a language learner.
Text:
%s

Output minimal JSON: {"translation_en": "...", "translation_zh": "..."}`

const structurePromptTemplate = `Break the following finalized exam answer into paragraphs, sentences and key lexemes for vocabulary study.
Question: %s

Answer:
%s

For every sentence include an English and a Chinese translation, and up to three
lexemes worth drilling (lemma, gloss, one sample sentence).
Output minimal JSON:
{"paragraphs": [{"summary": "...", "sentences": [{"text": "...", "translation_en": "...", "translation_zh": "...", "lexemes": [{"lemma": "...", "gloss": "...", "sample_sentence": "..."}]}]}]}`

func evalPrompt(question *model.Question, draft string) string {
	return fmt.Sprintf(evalPromptTemplate, question.Type, question.Title, question.Body, draft)
}

func composePrompt(question *model.Question, draft string) string {
	return fmt.Sprintf(composePromptTemplate, question.Type, question.Title, question.Body, draft)
}

func comparePrompt(question *model.Question, draft string, groups []model.AnswerGroup) string {
	var sb strings.Builder
	for _, group := range groups {
		sb.WriteString(fmt.Sprintf("- id=%d title=%q", group.ID, group.Title))
		if len(group.Answers) > 0 {
			latest := group.Answers[len(group.Answers)-1]
			sb.WriteString(fmt.Sprintf(" latest_version=%d text=%q", latest.VersionIndex, truncate(latest.Text, 400)))
		}
		sb.WriteString("\n")
	}
	if sb.Len() == 0 {
		sb.WriteString("(none)\n")
	}
	return fmt.Sprintf(comparePromptTemplate, question.Title, draft, sb.String())
}

func gapHighlightPrompt(question *model.Question, draft, sourceText string) string {
	return fmt.Sprintf(gapHighlightPromptTemplate, question.Title, sourceText, draft)
}

func refinePrompt(question *model.Question, draft string) string {
	return fmt.Sprintf(refinePromptTemplate, question.Type, question.Title, draft)
}

func translatePrompt(text string) string {
	return fmt.Sprintf(translatePromptTemplate, text)
}

func structurePrompt(question *model.Question, answerText string) string {
	return fmt.Sprintf(structurePromptTemplate, question.Title, answerText)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
