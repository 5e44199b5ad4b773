package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nurpe/termination-service/internal/model"
)

func (t *terminationTx) ListOpenReceivables(ctx context.Context, contractID uuid.UUID) ([]model.Receivable, error) {
	var rows []struct {
		ID         uuid.UUID
		ContractID uuid.UUID
		Amount     decimal.Decimal
		DueDate    time.Time
		Status     string
	}
	err := t.tx.WithContext(ctx).Raw(`
		SELECT id, contract_id, amount, due_date, status
		FROM payments
		WHERE contract_id = ?
			AND status IN (?, ?)
		ORDER BY due_date ASC
		FOR UPDATE
	`, contractID, string(model.PaymentStatusPending), string(model.PaymentStatusOverdue)).Scan(&rows).Error
	if err != nil {
		return nil, translateError(err)
	}

	items := make([]model.Receivable, 0, len(rows))
	for _, row := range rows {
		items = append(items, model.Receivable{
			ID:         row.ID,
			ContractID: row.ContractID,
			Amount:     row.Amount,
			DueDate:    row.DueDate,
			Status:     model.PaymentStatus(row.Status),
		})
	}
	return items, nil
}

// HoldReceivables snapshots items against the case and takes them out of
// general receivables reporting.
func (t *terminationTx) HoldReceivables(ctx context.Context, caseID uuid.UUID, items []model.Receivable) error {
	if len(items) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if err := t.tx.WithContext(ctx).Exec(`
			INSERT INTO termination_case_receivables (case_id, payment_id, amount, original_status)
			VALUES (?, ?, ?, ?)
		`, caseID, item.ID, item.Amount, string(item.Status)).Error; err != nil {
			return translateError(err)
		}
		ids = append(ids, item.ID)
	}

	return translateError(t.tx.WithContext(ctx).Exec(`
		UPDATE payments
		SET status = ?, updated_at = NOW()
		WHERE id IN ?
	`, string(model.PaymentStatusTerminationHold), ids).Error)
}

// RestoreReceivables puts every payment held by the case back to the status
// recorded in its snapshot row.
func (t *terminationTx) RestoreReceivables(ctx context.Context, caseID uuid.UUID) ([]model.HeldReceivable, error) {
	var rows []struct {
		CaseID         uuid.UUID
		PaymentID      uuid.UUID
		Amount         decimal.Decimal
		OriginalStatus string
		HeldAt         time.Time
		RestoredAt     *time.Time
	}
	err := t.tx.WithContext(ctx).Raw(`
		SELECT case_id, payment_id, amount, original_status, held_at, restored_at
		FROM termination_case_receivables
		WHERE case_id = ? AND restored_at IS NULL
		ORDER BY payment_id
		FOR UPDATE
	`, caseID).Scan(&rows).Error
	if err != nil {
		return nil, translateError(err)
	}

	now := time.Now().UTC()
	restored := make([]model.HeldReceivable, 0, len(rows))
	for _, row := range rows {
		if err := t.tx.WithContext(ctx).Exec(`
			UPDATE payments
			SET status = ?, updated_at = NOW()
			WHERE id = ? AND status = ?
		`, row.OriginalStatus, row.PaymentID, string(model.PaymentStatusTerminationHold)).Error; err != nil {
			return nil, translateError(err)
		}
		restoredAt := now
		restored = append(restored, model.HeldReceivable{
			CaseID:         row.CaseID,
			PaymentID:      row.PaymentID,
			Amount:         row.Amount,
			OriginalStatus: model.PaymentStatus(row.OriginalStatus),
			HeldAt:         row.HeldAt,
			RestoredAt:     &restoredAt,
		})
	}

	if err := t.tx.WithContext(ctx).Exec(`
		UPDATE termination_case_receivables
		SET restored_at = ?
		WHERE case_id = ? AND restored_at IS NULL
	`, now, caseID).Error; err != nil {
		return nil, translateError(err)
	}
	return restored, nil
}
