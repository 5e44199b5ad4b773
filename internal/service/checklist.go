package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/termination-service/internal/model"
	"github.com/nurpe/termination-service/internal/repository"
)

type ChecklistResult struct {
	Checklist  model.Checklist `json:"checklist"`
	Progress   int             `json:"progress"`
	TotalSteps int             `json:"total_steps"`
}

// UpdateChecklist sets one checklist item. Repeating a call with the same
// value leaves the checklist unchanged.
func (s *TerminationService) UpdateChecklist(
	ctx context.Context,
	caseID uuid.UUID,
	item string,
	value bool,
	principal model.Principal,
) (*ChecklistResult, error) {
	item = strings.TrimSpace(item)
	if item == "" {
		return nil, fmt.Errorf("%w: item is required", ErrInvalidInput)
	}

	view, err := s.mutateCase(ctx, caseID, principal, func(_ repository.TerminationTx, c *model.TerminationCase, _ time.Time) error {
		if !model.HasChecklistItem(c.OfficeKind(), item) {
			return fmt.Errorf("%w: unknown checklist item %q for %s office", ErrInvalidInput, item, c.OfficeKind())
		}
		if c.Status.IsTerminal() {
			return fmt.Errorf("%w: case is %s", ErrInvalidState, c.Status)
		}
		if c.Checklist == nil {
			c.Checklist = model.NewChecklist(c.OfficeKind())
		}
		c.Checklist[item] = value
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ChecklistResult{
		Checklist:  view.Checklist,
		Progress:   view.Progress,
		TotalSteps: view.TotalSteps,
	}, nil
}
