package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/termination-service/internal/model"
)

var (
	ErrNotFound = gorm.ErrRecordNotFound
	// ErrConflict is returned when a write loses a race: a duplicate open case,
	// a locked row or a stale version.
	ErrConflict = errors.New("conflicting write")
)

// TerminationStore is the durable side of the termination engine.
type TerminationStore interface {
	// Transaction runs fn atomically. Any error returned by fn rolls back every write made through tx.
	Transaction(ctx context.Context, fn func(tx TerminationTx) error) error
	GetCaseView(ctx context.Context, id uuid.UUID) (*model.CaseView, error)
	ListCaseViews(ctx context.Context, filter model.CaseFilter) ([]model.CaseView, error)
}

// TerminationTx is the set of writes available inside a transaction.
type TerminationTx interface {
	LockContract(ctx context.Context, contractID uuid.UUID) (*model.Contract, error)
	SetContractStatus(ctx context.Context, contractID uuid.UUID, status model.ContractStatus) error

	InsertCase(ctx context.Context, c *model.TerminationCase) error
	LockCase(ctx context.Context, id uuid.UUID) (*model.TerminationCase, error)
	UpdateCase(ctx context.Context, c *model.TerminationCase) error

	ListOpenReceivables(ctx context.Context, contractID uuid.UUID) ([]model.Receivable, error)
	HoldReceivables(ctx context.Context, caseID uuid.UUID, items []model.Receivable) error
	RestoreReceivables(ctx context.Context, caseID uuid.UUID) ([]model.HeldReceivable, error)
}
