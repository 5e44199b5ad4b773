package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nurpe/termination-service/internal/model"
	"github.com/nurpe/termination-service/internal/repository"
)

// UpdateStatus applies a manual status change. Targets that are reached
// through a dedicated operation (settlement, refund) are rejected here.
func (s *TerminationService) UpdateStatus(
	ctx context.Context,
	caseID uuid.UUID,
	status model.CaseStatus,
	notes string,
	principal model.Principal,
) (*model.CaseView, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: invalid status %q", ErrInvalidInput, status)
	}

	switch status {
	case model.CaseStatusMovingOut:
		return s.simpleTransition(ctx, caseID, ActionStartMoveOut, notes, principal)
	case model.CaseStatusPendingDoc:
		return s.simpleTransition(ctx, caseID, ActionSubmitDocs, notes, principal)
	case model.CaseStatusPendingAuthority:
		return s.ReportToAuthority(ctx, AuthorityInput{CaseID: caseID, Notes: notes, Principal: principal})
	case model.CaseStatusCompleted:
		return s.completeManually(ctx, caseID, notes, principal)
	case model.CaseStatusCancelled:
		return s.CancelCase(ctx, caseID, notes, principal)
	case model.CaseStatusPendingSettlement:
		return nil, fmt.Errorf("%w: %s is reached by calculating the settlement", ErrInvalidState, status)
	default:
		return nil, fmt.Errorf("%w: cannot move a case back to %s", ErrInvalidState, status)
	}
}

func (s *TerminationService) simpleTransition(
	ctx context.Context,
	caseID uuid.UUID,
	action Action,
	notes string,
	principal model.Principal,
) (*model.CaseView, error) {
	return s.mutateCase(ctx, caseID, principal, func(_ repository.TerminationTx, c *model.TerminationCase, now time.Time) error {
		return s.transition(c, action, now, principal, "", notes)
	})
}

// completeManually only covers the authority path; refunds complete a case
// through ProcessRefund.
func (s *TerminationService) completeManually(
	ctx context.Context,
	caseID uuid.UUID,
	notes string,
	principal model.Principal,
) (*model.CaseView, error) {
	view, err := s.GetCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if view.Status != model.CaseStatusPendingAuthority {
		return nil, fmt.Errorf("%w: %s cases are completed by processing the refund", ErrInvalidState, view.Status)
	}
	return s.RecordAuthorityResponse(ctx, AuthorityInput{CaseID: caseID, Notes: notes, Principal: principal})
}

type SettlementRequest struct {
	CaseID              uuid.UUID
	DocApprovedDate     time.Time
	OtherDeductions     decimal.Decimal
	OtherDeductionNotes string
	Principal           model.Principal
}

// CalculateSettlement computes the deposit settlement of a case whose
// paperwork has been approved. Running it again overwrites the previous result.
func (s *TerminationService) CalculateSettlement(ctx context.Context, req SettlementRequest) (*model.CaseView, error) {
	if req.DocApprovedDate.IsZero() {
		return nil, fmt.Errorf("%w: doc_approved_date is required", ErrInvalidInput)
	}
	if req.OtherDeductions.IsNegative() {
		return nil, fmt.Errorf("%w: other_deductions must not be negative", ErrInvalidInput)
	}

	return s.mutateCase(ctx, req.CaseID, req.Principal, func(_ repository.TerminationTx, c *model.TerminationCase, now time.Time) error {
		approved := dateOnly(req.DocApprovedDate)
		if approved.Before(dateOnly(c.NoticeDate)) {
			return fmt.Errorf("%w: doc_approved_date is before notice_date", ErrInvalidInput)
		}

		result := ComputeSettlement(s.policy, SettlementInput{
			MonthlyRent:     c.MonthlyRent,
			DepositAmount:   c.DepositAmount,
			ContractEndDate: c.ContractEndDate,
			DocApprovedDate: approved,
			OtherDeductions: req.OtherDeductions,
			ArrearsAmount:   c.PendingPaymentAmount,
		})

		detail := fmt.Sprintf("deduction %s (%d days at %s), other %s, arrears %s",
			result.DeductionAmount.StringFixed(moneyPlaces),
			result.DeductionDays,
			result.DailyRate.StringFixed(ratePlaces),
			req.OtherDeductions.StringFixed(moneyPlaces),
			c.PendingPaymentAmount.StringFixed(moneyPlaces),
		)
		if result.IsBadDebt {
			detail += ", bad debt " + result.BadDebtAmount.StringFixed(moneyPlaces)
		} else {
			detail += ", refund " + result.RefundAmount.StringFixed(moneyPlaces)
		}
		if err := s.transition(c, ActionSettle, now, req.Principal, detail, ""); err != nil {
			return err
		}

		days := result.DeductionDays
		rate := result.DailyRate
		deduction := result.DeductionAmount
		c.DocApprovedDate = &approved
		c.DailyRate = &rate
		c.DeductionDays = &days
		c.DeductionAmount = &deduction
		c.OtherDeductions = req.OtherDeductions
		c.OtherDeductionNotes = optionalString(req.OtherDeductionNotes)
		c.ArrearsAmount = c.PendingPaymentAmount
		c.RefundAmount = result.RefundAmount
		c.IsBadDebt = result.IsBadDebt
		c.BadDebtAmount = result.BadDebtAmount
		c.Checklist[model.ChecklistDocApproved] = true
		c.Checklist[model.ChecklistSettlementCalculated] = true
		return nil
	})
}

type AuthorityInput struct {
	CaseID uuid.UUID
	// Date defaults to today when zero.
	Date      time.Time
	Notes     string
	Principal model.Principal
}

// ReportToAuthority starts the escalation of a bad-debt settlement.
func (s *TerminationService) ReportToAuthority(ctx context.Context, input AuthorityInput) (*model.CaseView, error) {
	return s.mutateCase(ctx, input.CaseID, input.Principal, func(_ repository.TerminationTx, c *model.TerminationCase, now time.Time) error {
		reported := dateOnly(input.Date)
		if reported.IsZero() {
			reported = dateOnly(now)
		}
		if c.DocApprovedDate != nil && reported.Before(*c.DocApprovedDate) {
			return fmt.Errorf("%w: reported date is before doc_approved_date", ErrInvalidInput)
		}
		if err := s.transition(c, ActionReportToAuthority, now, input.Principal,
			"reported "+reported.Format("2006-01-02"), input.Notes); err != nil {
			return err
		}
		c.AuthorityReportedDate = &reported
		return nil
	})
}

// RecordAuthorityResponse closes a bad-debt case once the authority has answered.
func (s *TerminationService) RecordAuthorityResponse(ctx context.Context, input AuthorityInput) (*model.CaseView, error) {
	return s.mutateCase(ctx, input.CaseID, input.Principal, func(tx repository.TerminationTx, c *model.TerminationCase, now time.Time) error {
		if c.Status != model.CaseStatusPendingAuthority {
			return fmt.Errorf("%w: %s is not allowed from %s", ErrInvalidState, ActionRecordAuthorityResponse, c.Status)
		}
		response := dateOnly(input.Date)
		if response.IsZero() {
			response = dateOnly(now)
		}
		if c.AuthorityReportedDate != nil && response.Before(*c.AuthorityReportedDate) {
			return fmt.Errorf("%w: response date is before the reported date", ErrInvalidInput)
		}
		c.AuthorityResponseDate = &response

		if err := s.transition(c, ActionRecordAuthorityResponse, now, input.Principal,
			"response "+response.Format("2006-01-02"), input.Notes); err != nil {
			return err
		}
		completedAt := now
		c.CompletedAt = &completedAt
		return tx.SetContractStatus(ctx, c.ContractID, model.ContractStatusTerminated)
	})
}

// CancelCase abandons the termination: the contract goes back to active and
// every receivable held at creation is restored.
func (s *TerminationService) CancelCase(
	ctx context.Context,
	caseID uuid.UUID,
	reason string,
	principal model.Principal,
) (*model.CaseView, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: reason is required", ErrInvalidInput)
	}

	return s.mutateCase(ctx, caseID, principal, func(tx repository.TerminationTx, c *model.TerminationCase, now time.Time) error {
		if _, err := NextStatus(c, ActionCancel); err != nil {
			return err
		}
		restored, err := tx.RestoreReceivables(ctx, c.ID)
		if err != nil {
			return err
		}
		detail := fmt.Sprintf("%d held payments restored", len(restored))
		if err := s.transition(c, ActionCancel, now, principal, detail, reason); err != nil {
			return err
		}
		cancelledAt := now
		c.CancelledAt = &cancelledAt
		return tx.SetContractStatus(ctx, c.ContractID, model.ContractStatusActive)
	})
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
