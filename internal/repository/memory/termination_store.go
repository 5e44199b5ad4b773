package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/termination-service/internal/model"
	"github.com/nurpe/termination-service/internal/repository"
)

type state struct {
	contracts   map[uuid.UUID]model.Contract
	receivables map[uuid.UUID]model.Receivable
	cases       map[uuid.UUID]*model.TerminationCase
	held        map[uuid.UUID][]model.HeldReceivable
}

func newState() *state {
	return &state{
		contracts:   make(map[uuid.UUID]model.Contract),
		receivables: make(map[uuid.UUID]model.Receivable),
		cases:       make(map[uuid.UUID]*model.TerminationCase),
		held:        make(map[uuid.UUID][]model.HeldReceivable),
	}
}

func (s *state) clone() *state {
	out := newState()
	for id, c := range s.contracts {
		out.contracts[id] = c
	}
	for id, r := range s.receivables {
		out.receivables[id] = r
	}
	for id, c := range s.cases {
		out.cases[id] = c.Clone()
	}
	for id, rows := range s.held {
		out.held[id] = append([]model.HeldReceivable(nil), rows...)
	}
	return out
}

// TerminationStore keeps contracts, receivables and cases in process memory.
// Transactions are serialized and applied copy-on-write, so a failed
// transaction leaves no partial writes behind.
type TerminationStore struct {
	mu    sync.Mutex
	state *state
}

func NewTerminationStore() *TerminationStore {
	return &TerminationStore{state: newState()}
}

func (s *TerminationStore) PutContract(contract model.Contract) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.contracts[contract.ID] = contract
}

func (s *TerminationStore) Contract(id uuid.UUID) (model.Contract, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.state.contracts[id]
	return c, ok
}

func (s *TerminationStore) PutReceivable(item model.Receivable) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.receivables[item.ID] = item
}

func (s *TerminationStore) Receivable(id uuid.UUID) (model.Receivable, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.state.receivables[id]
	return r, ok
}

func (s *TerminationStore) Transaction(ctx context.Context, fn func(tx repository.TerminationTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.state.clone()
	if err := fn(&terminationTx{state: working}); err != nil {
		return err
	}
	s.state = working
	return nil
}

func (s *TerminationStore) GetCaseView(_ context.Context, id uuid.UUID) (*model.CaseView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.state.cases[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	view := s.state.view(c)
	return &view, nil
}

func (s *TerminationStore) ListCaseViews(_ context.Context, filter model.CaseFilter) ([]model.CaseView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	views := make([]model.CaseView, 0, len(s.state.cases))
	for _, c := range s.state.cases {
		if filter.Status != nil && c.Status != *filter.Status {
			continue
		}
		if filter.ContractID != nil && c.ContractID != *filter.ContractID {
			continue
		}
		views = append(views, s.state.view(c))
	}
	sort.Slice(views, func(i, j int) bool {
		return views[i].CreatedAt.After(views[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(views) {
			return []model.CaseView{}, nil
		}
		views = views[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(views) {
		views = views[:filter.Limit]
	}
	return views, nil
}

func (s *state) view(c *model.TerminationCase) model.CaseView {
	contract := s.contracts[c.ContractID]
	return model.CaseView{
		TerminationCase: *c.Clone(),
		ContractNumber:  contract.ContractNumber,
		CustomerName:    contract.Customer.Name,
		CustomerCompany: contract.Customer.CompanyName,
	}
}

type terminationTx struct {
	state *state
}

func (t *terminationTx) LockContract(_ context.Context, contractID uuid.UUID) (*model.Contract, error) {
	c, ok := t.state.contracts[contractID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (t *terminationTx) SetContractStatus(_ context.Context, contractID uuid.UUID, status model.ContractStatus) error {
	c, ok := t.state.contracts[contractID]
	if !ok {
		return repository.ErrNotFound
	}
	c.Status = status
	t.state.contracts[contractID] = c
	return nil
}

func (t *terminationTx) InsertCase(_ context.Context, c *model.TerminationCase) error {
	if _, exists := t.state.cases[c.ID]; exists {
		return fmt.Errorf("%w: case %s already exists", repository.ErrConflict, c.ID)
	}
	for _, existing := range t.state.cases {
		if existing.ContractID == c.ContractID && !existing.Status.IsTerminal() {
			return fmt.Errorf("%w: contract %s already has open case %s", repository.ErrConflict, c.ContractID, existing.ID)
		}
	}
	t.state.cases[c.ID] = c.Clone()
	return nil
}

func (t *terminationTx) LockCase(_ context.Context, id uuid.UUID) (*model.TerminationCase, error) {
	c, ok := t.state.cases[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return c.Clone(), nil
}

func (t *terminationTx) UpdateCase(_ context.Context, c *model.TerminationCase) error {
	current, ok := t.state.cases[c.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if current.Version != c.Version {
		return fmt.Errorf("%w: case %s changed since version %d", repository.ErrConflict, c.ID, c.Version)
	}
	c.Version++
	t.state.cases[c.ID] = c.Clone()
	return nil
}

func (t *terminationTx) ListOpenReceivables(_ context.Context, contractID uuid.UUID) ([]model.Receivable, error) {
	var items []model.Receivable
	for _, r := range t.state.receivables {
		if r.ContractID != contractID {
			continue
		}
		if r.Status == model.PaymentStatusPending || r.Status == model.PaymentStatusOverdue {
			items = append(items, r)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].DueDate.Before(items[j].DueDate)
	})
	return items, nil
}

func (t *terminationTx) HoldReceivables(_ context.Context, caseID uuid.UUID, items []model.Receivable) error {
	now := time.Now().UTC()
	for _, item := range items {
		current, ok := t.state.receivables[item.ID]
		if !ok {
			return repository.ErrNotFound
		}
		t.state.held[caseID] = append(t.state.held[caseID], model.HeldReceivable{
			CaseID:         caseID,
			PaymentID:      item.ID,
			Amount:         item.Amount,
			OriginalStatus: item.Status,
			HeldAt:         now,
		})
		current.Status = model.PaymentStatusTerminationHold
		t.state.receivables[item.ID] = current
	}
	return nil
}

func (t *terminationTx) RestoreReceivables(_ context.Context, caseID uuid.UUID) ([]model.HeldReceivable, error) {
	now := time.Now().UTC()
	rows := t.state.held[caseID]
	restored := make([]model.HeldReceivable, 0, len(rows))
	for i := range rows {
		if rows[i].RestoredAt != nil {
			continue
		}
		if current, ok := t.state.receivables[rows[i].PaymentID]; ok && current.Status == model.PaymentStatusTerminationHold {
			current.Status = rows[i].OriginalStatus
			t.state.receivables[rows[i].PaymentID] = current
		}
		restoredAt := now
		rows[i].RestoredAt = &restoredAt
		restored = append(restored, rows[i])
	}
	t.state.held[caseID] = rows
	return restored, nil
}
