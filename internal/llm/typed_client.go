package llm

import "examloop-backend/internal/model"

// textCompleter is the raw prompt->text contract each provider implements.
type textCompleter interface {
	ModelName() string
	complete(prompt string) (string, error)
}

// typedClient turns a raw completer into the typed Client operations.
type typedClient struct {
	completer textCompleter
}

func (c *typedClient) ModelName() string {
	return c.completer.ModelName()
}

func (c *typedClient) EvaluateAnswer(question *model.Question, draft string) (*model.EvalResult, error) {
	response, err := c.completer.complete(evalPrompt(question, draft))
	if err != nil {
		return nil, err
	}
	var result model.EvalResult
	if err := decodeJSON(response, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *typedClient) ComposeAnswer(question *model.Question, draft string) (*model.ComposeResult, error) {
	response, err := c.completer.complete(composePrompt(question, draft))
	if err != nil {
		return nil, err
	}
	var result model.ComposeResult
	if err := decodeJSON(response, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *typedClient) CompareAnswers(question *model.Question, draft string, groups []model.AnswerGroup) (*model.CompareResult, error) {
	response, err := c.completer.complete(comparePrompt(question, draft, groups))
	if err != nil {
		return nil, err
	}
	var result model.CompareResult
	if err := decodeJSON(response, &result); err != nil {
		return nil, err
	}
	if result.Decision != model.CompareDecisionReuse {
		result.Decision = model.CompareDecisionNewGroup
	}
	return &result, nil
}

func (c *typedClient) HighlightGaps(question *model.Question, draft, sourceText string) (*GapHighlight, error) {
	response, err := c.completer.complete(gapHighlightPrompt(question, draft, sourceText))
	if err != nil {
		return nil, err
	}
	var result GapHighlight
	if err := decodeJSON(response, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *typedClient) RefineAnswer(question *model.Question, draft string) (*RefinedAnswer, error) {
	response, err := c.completer.complete(refinePrompt(question, draft))
	if err != nil {
		return nil, err
	}
	var result RefinedAnswer
	if err := decodeJSON(response, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *typedClient) TranslateText(text string) (*Translation, error) {
	response, err := c.completer.complete(translatePrompt(text))
	if err != nil {
		return nil, err
	}
	var result Translation
	if err := decodeJSON(response, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *typedClient) StructureAnswer(question *model.Question, answerText string) (*StructurePlan, error) {
	response, err := c.completer.complete(structurePrompt(question, answerText))
	if err != nil {
		return nil, err
	}
	var result StructurePlan
	if err := decodeJSON(response, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
