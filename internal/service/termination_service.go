package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/termination-service/internal/config"
	"github.com/nurpe/termination-service/internal/model"
	"github.com/nurpe/termination-service/internal/repository"
)

type ExcelGenerator interface {
	Generate(cases []model.CaseView) ([]byte, error)
}

type PDFGenerator interface {
	Generate(view model.CaseView) ([]byte, error)
}

type TerminationService struct {
	store  repository.TerminationStore
	excel  ExcelGenerator
	pdf    PDFGenerator
	policy DailyRatePolicy
	log    zerolog.Logger
	now    func() time.Time
}

func NewTerminationService(
	store repository.TerminationStore,
	excel ExcelGenerator,
	pdf PDFGenerator,
	cfg *config.Config,
	log zerolog.Logger,
) (*TerminationService, error) {
	policy, err := NewDailyRatePolicy(cfg.Settlement.DayBasis, cfg.Settlement.FixedDivisor)
	if err != nil {
		return nil, err
	}
	return &TerminationService{
		store:  store,
		excel:  excel,
		pdf:    pdf,
		policy: policy,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

type CreateCaseInput struct {
	ContractID      uuid.UUID
	TerminationType model.TerminationType
	NoticeDate      time.Time
	Notes           string
	Principal       model.Principal
}

// CreateCase opens a termination case for an active contract, snapshots the
// contract's unpaid receivables and marks the contract as terminating.
func (s *TerminationService) CreateCase(ctx context.Context, input CreateCaseInput) (*model.CaseView, error) {
	if !input.Principal.CanManageCases() {
		return nil, ErrPermissionDenied
	}
	if input.ContractID == uuid.Nil {
		return nil, fmt.Errorf("%w: contract_id is required", ErrInvalidInput)
	}
	if !input.TerminationType.Valid() {
		return nil, fmt.Errorf("%w: invalid termination_type", ErrInvalidInput)
	}
	if input.NoticeDate.IsZero() {
		return nil, fmt.Errorf("%w: notice_date is required", ErrInvalidInput)
	}

	now := s.now()
	caseID := uuid.New()

	err := s.store.Transaction(ctx, func(tx repository.TerminationTx) error {
		contract, err := tx.LockContract(ctx, input.ContractID)
		if err != nil {
			return err
		}
		switch contract.Status {
		case model.ContractStatusActive:
		case model.ContractStatusTerminating:
			return fmt.Errorf("%w: contract %s already has an open termination case", ErrConflict, contract.ID)
		default:
			return fmt.Errorf("%w: contract %s is %s, not active", ErrInvalidState, contract.ID, contract.Status)
		}

		receivables, err := tx.ListOpenReceivables(ctx, contract.ID)
		if err != nil {
			return err
		}
		snapshot := model.SnapshotOf(receivables)
		kind := contract.OfficeKind()

		c := &model.TerminationCase{
			ID:                   caseID,
			ContractID:           contract.ID,
			TerminationType:      input.TerminationType,
			Status:               model.CaseStatusNoticeReceived,
			NoticeDate:           dateOnly(input.NoticeDate),
			IsPhysicalOffice:     kind == model.OfficeKindPhysical,
			Checklist:            model.NewChecklist(kind),
			MonthlyRent:          contract.MonthlyRent,
			DepositAmount:        contract.DepositAmount,
			ContractEndDate:      dateOnly(contract.EndDate),
			PendingPaymentCount:  snapshot.Count,
			PendingPaymentAmount: snapshot.Amount,
			CreatedAt:            now,
			UpdatedAt:            now,
		}
		entry := fmt.Sprintf("case opened (%s), %d pending payments totaling %s held",
			input.TerminationType, snapshot.Count, snapshot.Amount.StringFixed(moneyPlaces))
		appendNote(c, now, input.Principal, entry, input.Notes)

		if err := tx.InsertCase(ctx, c); err != nil {
			return err
		}
		if err := tx.HoldReceivables(ctx, c.ID, receivables); err != nil {
			return err
		}
		return tx.SetContractStatus(ctx, contract.ID, model.ContractStatusTerminating)
	})
	if err != nil {
		return nil, s.translate(err)
	}

	s.log.Info().
		Str("case_id", caseID.String()).
		Str("contract_id", input.ContractID.String()).
		Str("operator", input.Principal.DisplayName()).
		Msg("termination case opened")

	return s.GetCase(ctx, caseID)
}

func (s *TerminationService) GetCase(ctx context.Context, id uuid.UUID) (*model.CaseView, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("%w: case_id is required", ErrInvalidInput)
	}
	view, err := s.store.GetCaseView(ctx, id)
	if err != nil {
		return nil, s.translate(err)
	}
	decorate(view)
	return view, nil
}

func (s *TerminationService) ListCases(ctx context.Context, filter model.CaseFilter) ([]model.CaseView, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: invalid status filter", ErrInvalidInput)
	}
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, fmt.Errorf("%w: limit and offset must not be negative", ErrInvalidInput)
	}
	views, err := s.store.ListCaseViews(ctx, filter)
	if err != nil {
		return nil, s.translate(err)
	}
	for i := range views {
		decorate(&views[i])
	}
	return views, nil
}

// mutateCase locks the case, lets fn change it and writes it back in one
// transaction. fn may also touch contracts and receivables through tx.
func (s *TerminationService) mutateCase(
	ctx context.Context,
	id uuid.UUID,
	principal model.Principal,
	fn func(tx repository.TerminationTx, c *model.TerminationCase, now time.Time) error,
) (*model.CaseView, error) {
	if !principal.CanManageCases() {
		return nil, ErrPermissionDenied
	}
	if id == uuid.Nil {
		return nil, fmt.Errorf("%w: case_id is required", ErrInvalidInput)
	}

	now := s.now()
	err := s.store.Transaction(ctx, func(tx repository.TerminationTx) error {
		c, err := tx.LockCase(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(tx, c, now); err != nil {
			return err
		}
		c.UpdatedAt = now
		return tx.UpdateCase(ctx, c)
	})
	if err != nil {
		return nil, s.translate(err)
	}
	return s.GetCase(ctx, id)
}

// transition moves c along action and records the move in its notes.
func (s *TerminationService) transition(
	c *model.TerminationCase,
	action Action,
	now time.Time,
	principal model.Principal,
	detail string,
	notes string,
) error {
	from := c.Status
	to, err := NextStatus(c, action)
	if err != nil {
		return err
	}
	c.Status = to

	entry := fmt.Sprintf("%s: %s -> %s", action, from, to)
	if detail != "" {
		entry += ", " + detail
	}
	appendNote(c, now, principal, entry, notes)

	s.log.Info().
		Str("case_id", c.ID.String()).
		Str("action", string(action)).
		Str("from", string(from)).
		Str("to", string(to)).
		Str("operator", principal.DisplayName()).
		Msg("termination case transition")
	return nil
}

func (s *TerminationService) translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrInvalidState),
		errors.Is(err, ErrConflict),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrPermissionDenied):
		return err
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrConflict):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	default:
		return err
	}
}

func decorate(view *model.CaseView) {
	view.Progress, view.TotalSteps = view.Checklist.Progress(view.OfficeKind())
	actions := AllowedActions(&view.TerminationCase)
	view.AllowedActions = make([]string, len(actions))
	for i, action := range actions {
		view.AllowedActions[i] = string(action)
	}
}

func appendNote(c *model.TerminationCase, now time.Time, principal model.Principal, entry, notes string) {
	line := fmt.Sprintf("[%s] %s: %s", now.Format("2006-01-02 15:04"), principal.DisplayName(), entry)
	if notes = strings.TrimSpace(notes); notes != "" {
		line += " - " + notes
	}
	if c.Notes == "" {
		c.Notes = line
		return
	}
	c.Notes += "\n" + line
}
