package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending         PaymentStatus = "pending"
	PaymentStatusOverdue         PaymentStatus = "overdue"
	PaymentStatusPaid            PaymentStatus = "paid"
	PaymentStatusTerminationHold PaymentStatus = "termination_hold"
)

// Receivable is an unpaid payment obligation of a contract.
type Receivable struct {
	ID         uuid.UUID
	ContractID uuid.UUID
	Amount     decimal.Decimal
	DueDate    time.Time
	Status     PaymentStatus
}

// HeldReceivable is the snapshot row recorded when a case takes a receivable
// out of general reporting. OriginalStatus is what cancellation restores.
type HeldReceivable struct {
	CaseID         uuid.UUID
	PaymentID      uuid.UUID
	Amount         decimal.Decimal
	OriginalStatus PaymentStatus
	HeldAt         time.Time
	RestoredAt     *time.Time
}

type ReceivablesSnapshot struct {
	Count  int
	Amount decimal.Decimal
}

func SnapshotOf(items []Receivable) ReceivablesSnapshot {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Amount)
	}
	return ReceivablesSnapshot{Count: len(items), Amount: total}
}
