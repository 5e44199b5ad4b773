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

type RefundRequest struct {
	CaseID    uuid.UUID
	Method    model.RefundMethod
	Account   string
	Receipt   string
	Notes     string
	Principal model.Principal
}

// ProcessRefund records the paid-out deposit balance and completes the case.
// There is no way back: corrections are made outside the engine.
func (s *TerminationService) ProcessRefund(ctx context.Context, req RefundRequest) (*model.CaseView, error) {
	method := model.RefundMethod(strings.ToLower(strings.TrimSpace(string(req.Method))))
	if !method.Valid() {
		return nil, fmt.Errorf("%w: invalid refund_method", ErrInvalidInput)
	}
	account := strings.TrimSpace(req.Account)
	if method == model.RefundMethodTransfer && account == "" {
		return nil, fmt.Errorf("%w: refund_account is required for transfers", ErrInvalidInput)
	}

	return s.mutateCase(ctx, req.CaseID, req.Principal, func(tx repository.TerminationTx, c *model.TerminationCase, now time.Time) error {
		detail := ""
		if c.RefundAmount != nil {
			detail = fmt.Sprintf("refunded %s by %s", c.RefundAmount.StringFixed(moneyPlaces), method)
		}
		if err := s.transition(c, ActionRefund, now, req.Principal, detail, req.Notes); err != nil {
			return err
		}

		completedAt := now
		c.RefundMethod = &method
		c.RefundAccount = optionalString(account)
		c.RefundReceipt = optionalString(req.Receipt)
		c.Checklist[model.ChecklistRefundProcessed] = true
		c.CompletedAt = &completedAt
		return tx.SetContractStatus(ctx, c.ContractID, model.ContractStatusTerminated)
	})
}
