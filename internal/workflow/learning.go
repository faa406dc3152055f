package workflow

import (
	"context"

	"examloop-backend/internal/model"
)

const defaultDueLimit = 20

// LearningDriver walks the guided learning phase for one finalized answer:
// fetch the due cards, review them one at a time, refetch after every
// review. The due set is authoritative server state and is never mutated
// locally.
type LearningDriver struct {
	api      API
	answerID uint
	limit    int

	due    []model.FlashcardStudyCard
	loaded bool
}

func NewLearningDriver(api API, answerID uint) *LearningDriver {
	return &LearningDriver{api: api, answerID: answerID, limit: defaultDueLimit}
}

// Refresh re-fetches the due set from the backend.
func (d *LearningDriver) Refresh(ctx context.Context) error {
	cards, err := d.api.ListGuidedFlashcards(ctx, d.answerID, d.limit)
	if err != nil {
		return err
	}
	d.due = cards
	d.loaded = true
	return nil
}

// Due returns the last fetched due set.
func (d *LearningDriver) Due() []model.FlashcardStudyCard {
	return d.due
}

// Loaded reports whether at least one fetch has completed. Completion stays
// gated until then, even if the set would be empty.
func (d *LearningDriver) Loaded() bool {
	return d.loaded
}

// Review submits a score for one card and refetches the due set.
func (d *LearningDriver) Review(ctx context.Context, cardID uint, score int) (*model.FlashcardProgress, error) {
	progress, err := d.api.ReviewFlashcard(ctx, cardID, score)
	if err != nil {
		return nil, err
	}
	if err := d.Refresh(ctx); err != nil {
		return progress, err
	}
	return progress, nil
}
