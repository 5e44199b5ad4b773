package service

import (
	"fmt"

	"github.com/nurpe/termination-service/internal/model"
)

type Action string

const (
	ActionStartMoveOut            Action = "start_move_out"
	ActionSubmitDocs              Action = "submit_docs"
	ActionSettle                  Action = "settle"
	ActionRefund                  Action = "refund"
	ActionReportToAuthority       Action = "report_to_authority"
	ActionRecordAuthorityResponse Action = "record_authority_response"
	ActionCancel                  Action = "cancel"
)

type transitionKey struct {
	from   model.CaseStatus
	action Action
}

type transitionRule struct {
	to    model.CaseStatus
	guard func(c *model.TerminationCase) error
}

var transitions = map[transitionKey]transitionRule{
	{model.CaseStatusNoticeReceived, ActionStartMoveOut}: {
		to:    model.CaseStatusMovingOut,
		guard: requirePhysicalOffice,
	},
	{model.CaseStatusNoticeReceived, ActionSubmitDocs}: {
		to:    model.CaseStatusPendingDoc,
		guard: requireNoticeConfirmed,
	},
	{model.CaseStatusMovingOut, ActionSubmitDocs}: {
		to:    model.CaseStatusPendingDoc,
		guard: requireNoticeConfirmed,
	},
	{model.CaseStatusPendingDoc, ActionSettle}: {
		to: model.CaseStatusPendingSettlement,
	},
	// Recomputing a settlement overwrites the previous result.
	{model.CaseStatusPendingSettlement, ActionSettle}: {
		to: model.CaseStatusPendingSettlement,
	},
	{model.CaseStatusPendingSettlement, ActionRefund}: {
		to:    model.CaseStatusCompleted,
		guard: requireRefundable,
	},
	{model.CaseStatusPendingSettlement, ActionReportToAuthority}: {
		to:    model.CaseStatusPendingAuthority,
		guard: requireBadDebt,
	},
	{model.CaseStatusPendingAuthority, ActionRecordAuthorityResponse}: {
		to:    model.CaseStatusCompleted,
		guard: requireAuthorityResponse,
	},
	{model.CaseStatusNoticeReceived, ActionCancel}:    {to: model.CaseStatusCancelled},
	{model.CaseStatusMovingOut, ActionCancel}:         {to: model.CaseStatusCancelled},
	{model.CaseStatusPendingDoc, ActionCancel}:        {to: model.CaseStatusCancelled},
	{model.CaseStatusPendingSettlement, ActionCancel}: {to: model.CaseStatusCancelled},
	{model.CaseStatusPendingAuthority, ActionCancel}:  {to: model.CaseStatusCancelled},
}

// NextStatus resolves the status an action leads to from the case's current
// status, checking the transition's guard against the case.
func NextStatus(c *model.TerminationCase, action Action) (model.CaseStatus, error) {
	rule, ok := transitions[transitionKey{from: c.Status, action: action}]
	if !ok {
		return "", fmt.Errorf("%w: %s is not allowed from %s", ErrInvalidState, action, c.Status)
	}
	if rule.guard != nil {
		if err := rule.guard(c); err != nil {
			return "", err
		}
	}
	return rule.to, nil
}

// AllowedActions lists the actions whose guards currently pass, in a stable order.
func AllowedActions(c *model.TerminationCase) []Action {
	ordered := []Action{
		ActionStartMoveOut,
		ActionSubmitDocs,
		ActionSettle,
		ActionRefund,
		ActionReportToAuthority,
		ActionRecordAuthorityResponse,
		ActionCancel,
	}
	allowed := make([]Action, 0, len(ordered))
	for _, action := range ordered {
		if action == ActionRecordAuthorityResponse && c.Status == model.CaseStatusPendingAuthority {
			// the response date is supplied with the action itself
			allowed = append(allowed, action)
			continue
		}
		if _, err := NextStatus(c, action); err == nil {
			allowed = append(allowed, action)
		}
	}
	return allowed
}

func requirePhysicalOffice(c *model.TerminationCase) error {
	if !c.IsPhysicalOffice {
		return fmt.Errorf("%w: move-out applies to physical offices only", ErrInvalidState)
	}
	return nil
}

func requireNoticeConfirmed(c *model.TerminationCase) error {
	if !c.Checklist[model.ChecklistNoticeConfirmed] {
		return fmt.Errorf("%w: %s must be checked first", ErrInvalidState, model.ChecklistNoticeConfirmed)
	}
	return nil
}

func requireRefundable(c *model.TerminationCase) error {
	if c.IsBadDebt {
		return fmt.Errorf("%w: settlement is a bad debt, refund is not available", ErrInvalidState)
	}
	if c.RefundAmount == nil {
		return fmt.Errorf("%w: settlement has not been calculated", ErrInvalidState)
	}
	return nil
}

func requireBadDebt(c *model.TerminationCase) error {
	if !c.IsBadDebt {
		return fmt.Errorf("%w: only bad-debt settlements are reported to the authority", ErrInvalidState)
	}
	return nil
}

func requireAuthorityResponse(c *model.TerminationCase) error {
	if c.AuthorityResponseDate == nil {
		return fmt.Errorf("%w: authority response date is not recorded", ErrInvalidState)
	}
	return nil
}
