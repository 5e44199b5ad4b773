package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/termination-service/internal/config"
	"github.com/nurpe/termination-service/internal/model"
	"github.com/nurpe/termination-service/internal/repository/memory"
)

type stubExcel struct {
	rows int
}

func (s *stubExcel) Generate(cases []model.CaseView) ([]byte, error) {
	s.rows = len(cases)
	return []byte("xlsx"), nil
}

type stubPDF struct{}

func (stubPDF) Generate(view model.CaseView) ([]byte, error) {
	return []byte("pdf:" + view.ContractNumber), nil
}

var (
	operator = model.Principal{UserID: uuid.New(), Name: "Operator", Role: model.RoleOperator}
	viewer   = model.Principal{UserID: uuid.New(), Name: "Viewer", Role: model.RoleViewer}
)

type fixture struct {
	svc      *TerminationService
	store    *memory.TerminationStore
	excel    *stubExcel
	contract model.Contract
	payments []model.Receivable
}

func newFixture(t *testing.T, officeType string) *fixture {
	t.Helper()

	store := memory.NewTerminationStore()
	excel := &stubExcel{}
	cfg := &config.Config{Settlement: config.SettlementConfig{DayBasis: DayBasisFixed, FixedDivisor: 30}}
	svc, err := NewTerminationService(store, excel, stubPDF{}, cfg, zerolog.Nop())
	require.NoError(t, err)
	svc.now = func() time.Time { return time.Date(2025, time.February, 12, 9, 30, 0, 0, time.UTC) }

	contract := model.Contract{
		ID:             uuid.New(),
		ContractNumber: "C-2024-017",
		CustomerID:     uuid.New(),
		Status:         model.ContractStatusActive,
		OfficeType:     officeType,
		MonthlyRent:    dec("30000"),
		DepositAmount:  dec("60000"),
		StartDate:      date(2024, time.February, 1),
		EndDate:        date(2025, time.January, 31),
		Customer:       model.Customer{Name: "Lee", CompanyName: "Lee Trading"},
	}
	store.PutContract(contract)

	payments := []model.Receivable{
		{ID: uuid.New(), ContractID: contract.ID, Amount: dec("1500"), DueDate: date(2024, time.December, 5), Status: model.PaymentStatusOverdue},
		{ID: uuid.New(), ContractID: contract.ID, Amount: dec("2500"), DueDate: date(2025, time.January, 5), Status: model.PaymentStatusPending},
		{ID: uuid.New(), ContractID: contract.ID, Amount: dec("9999"), DueDate: date(2024, time.November, 5), Status: model.PaymentStatusPaid},
	}
	for _, p := range payments {
		store.PutReceivable(p)
	}

	return &fixture{svc: svc, store: store, excel: excel, contract: contract, payments: payments}
}

func (f *fixture) create(t *testing.T) *model.CaseView {
	t.Helper()
	view, err := f.svc.CreateCase(context.Background(), CreateCaseInput{
		ContractID:      f.contract.ID,
		TerminationType: model.TerminationTypeNotRenewing,
		NoticeDate:      date(2025, time.January, 2),
		Principal:       operator,
	})
	require.NoError(t, err)
	return view
}

func (f *fixture) check(t *testing.T, caseID uuid.UUID, items ...string) {
	t.Helper()
	for _, item := range items {
		_, err := f.svc.UpdateChecklist(context.Background(), caseID, item, true, operator)
		require.NoError(t, err)
	}
}

// settle walks a case to pending_settlement with the given deductions.
func (f *fixture) settle(t *testing.T, caseID uuid.UUID, approved time.Time, other string) *model.CaseView {
	t.Helper()
	ctx := context.Background()
	f.check(t, caseID, model.ChecklistNoticeConfirmed)
	_, err := f.svc.UpdateStatus(ctx, caseID, model.CaseStatusPendingDoc, "", operator)
	require.NoError(t, err)
	view, err := f.svc.CalculateSettlement(ctx, SettlementRequest{
		CaseID:          caseID,
		DocApprovedDate: approved,
		OtherDeductions: dec(other),
		Principal:       operator,
	})
	require.NoError(t, err)
	return view
}

func (f *fixture) contractStatus(t *testing.T) model.ContractStatus {
	t.Helper()
	contract, ok := f.store.Contract(f.contract.ID)
	require.True(t, ok)
	return contract.Status
}

func (f *fixture) paymentStatus(t *testing.T, i int) model.PaymentStatus {
	t.Helper()
	payment, ok := f.store.Receivable(f.payments[i].ID)
	require.True(t, ok)
	return payment.Status
}

func TestCreateCase(t *testing.T) {
	f := newFixture(t, model.OfficeTypePhysical)
	view := f.create(t)

	assert.Equal(t, model.CaseStatusNoticeReceived, view.Status)
	assert.True(t, view.IsPhysicalOffice)
	assert.Equal(t, "C-2024-017", view.ContractNumber)
	assert.Equal(t, "Lee", view.CustomerName)
	assert.Equal(t, 0, view.Progress)
	assert.Equal(t, 8, view.TotalSteps)
	assert.Len(t, view.Checklist, 8)
	assert.Equal(t, 2, view.PendingPaymentCount)
	assert.True(t, view.PendingPaymentAmount.Equal(dec("4000")))
	assert.True(t, view.MonthlyRent.Equal(dec("30000")))
	assert.Equal(t, date(2025, time.January, 31), view.ContractEndDate)
	assert.Contains(t, view.Notes, "2 pending payments totaling 4000.00 held")
	assert.Equal(t, []string{"start_move_out", "cancel"}, view.AllowedActions)

	assert.Equal(t, model.ContractStatusTerminating, f.contractStatus(t))
	assert.Equal(t, model.PaymentStatusTerminationHold, f.paymentStatus(t, 0))
	assert.Equal(t, model.PaymentStatusTerminationHold, f.paymentStatus(t, 1))
	assert.Equal(t, model.PaymentStatusPaid, f.paymentStatus(t, 2))
}

func TestCreateCaseNonPhysicalChecklist(t *testing.T) {
	f := newFixture(t, "virtual")
	view := f.create(t)

	assert.False(t, view.IsPhysicalOffice)
	assert.Equal(t, 5, view.TotalSteps)
	assert.NotContains(t, view.Checklist, model.ChecklistKeysReturned)
}

func TestCreateCaseRejects(t *testing.T) {
	f := newFixture(t, model.OfficeTypePhysical)
	ctx := context.Background()
	valid := CreateCaseInput{
		ContractID:      f.contract.ID,
		TerminationType: model.TerminationTypeEarly,
		NoticeDate:      date(2025, time.January, 2),
		Principal:       operator,
	}

	tests := []struct {
		name   string
		mutate func(in *CreateCaseInput)
		want   error
	}{
		{name: "viewer", mutate: func(in *CreateCaseInput) { in.Principal = viewer }, want: ErrPermissionDenied},
		{name: "missing contract id", mutate: func(in *CreateCaseInput) { in.ContractID = uuid.Nil }, want: ErrInvalidInput},
		{name: "unknown type", mutate: func(in *CreateCaseInput) { in.TerminationType = "merger" }, want: ErrInvalidInput},
		{name: "missing notice date", mutate: func(in *CreateCaseInput) { in.NoticeDate = time.Time{} }, want: ErrInvalidInput},
		{name: "unknown contract", mutate: func(in *CreateCaseInput) { in.ContractID = uuid.New() }, want: ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := f.svc.CreateCase(ctx, in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.Equal(t, model.ContractStatusActive, f.contractStatus(t))
}

func TestCreateCaseOnTerminatedContract(t *testing.T) {
	f := newFixture(t, model.OfficeTypePhysical)
	contract := f.contract
	contract.Status = model.ContractStatusTerminated
	f.store.PutContract(contract)

	_, err := f.svc.CreateCase(context.Background(), CreateCaseInput{
		ContractID:      contract.ID,
		TerminationType: model.TerminationTypeEarly,
		NoticeDate:      date(2025, time.January, 2),
		Principal:       operator,
	})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCreateSecondCaseConflicts(t *testing.T) {
	f := newFixture(t, model.OfficeTypePhysical)
	f.create(t)

	_, err := f.svc.CreateCase(context.Background(), CreateCaseInput{
		ContractID:      f.contract.ID,
		TerminationType: model.TerminationTypeBreach,
		NoticeDate:      date(2025, time.January, 3),
		Principal:       operator,
	})
	assert.ErrorIs(t, err, ErrConflict)

	cases, err := f.svc.ListCases(context.Background(), model.CaseFilter{ContractID: &f.contract.ID})
	require.NoError(t, err)
	assert.Len(t, cases, 1)
}

func TestConcurrentCreateOpensOneCase(t *testing.T) {
	f := newFixture(t, model.OfficeTypePhysical)

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.CreateCase(context.Background(), CreateCaseInput{
				ContractID:      f.contract.ID,
				TerminationType: model.TerminationTypeEarly,
				NoticeDate:      date(2025, time.January, 2),
				Principal:       operator,
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrConflict):
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, conflicts)
}

func TestUpdateChecklist(t *testing.T) {
	f := newFixture(t, model.OfficeTypePhysical)
	view := f.create(t)
	ctx := context.Background()

	first, err := f.svc.UpdateChecklist(ctx, view.ID, model.ChecklistKeysReturned, true, operator)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Progress)
	assert.Equal(t, 8, first.TotalSteps)

	second, err := f.svc.UpdateChecklist(ctx, view.ID, model.ChecklistKeysReturned, true, operator)
	require.NoError(t, err)
	assert.Equal(t, first.Checklist, second.Checklist)
	assert.Equal(t, first.Progress, second.Progress)

	_, err = f.svc.UpdateChecklist(ctx, view.ID, "wifi_disabled", true, operator)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.UpdateChecklist(ctx, view.ID, model.ChecklistNoticeConfirmed, true, viewer)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = f.svc.UpdateChecklist(ctx, uuid.New(), model.ChecklistNoticeConfirmed, true, operator)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateChecklistRejectsMoveOutItemsForVirtualOffice(t *testing.T) {
	f := newFixture(t, "virtual")
	view := f.create(t)

	_, err := f.svc.UpdateChecklist(context.Background(), view.ID, model.ChecklistRoomInspected, true, operator)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestStatusRequiresNoticeConfirmed(t *testing.T) {
	f := newFixture(t, model.OfficeTypePhysical)
	view := f.create(t)
	ctx := context.Background()

	_, err := f.svc.UpdateStatus(ctx, view.ID, model.CaseStatusPendingDoc, "", operator)
	assert.ErrorIs(t, err, ErrInvalidState)

	moving, err := f.svc.UpdateStatus(ctx, view.ID, model.CaseStatusMovingOut, "keys on Friday", operator)
	require.NoError(t, err)
	assert.Equal(t, model.CaseStatusMovingOut, moving.Status)
	assert.Contains(t, moving.Notes, "start_move_out: notice_received -> moving_out - keys on Friday")

	f.check(t, view.ID, model.ChecklistNoticeConfirmed)
	pending, err := f.svc.UpdateStatus(ctx, view.ID, model.CaseStatusPendingDoc, "", operator)
	require.NoError(t, err)
	assert.Equal(t, model.CaseStatusPendingDoc, pending.Status)

	_, err = f.svc.UpdateStatus(ctx, view.ID, model.CaseStatusPendingSettlement, "", operator)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = f.svc.UpdateStatus(ctx, view.ID, model.CaseStatusNoticeReceived, "", operator)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = f.svc.UpdateStatus(ctx, view.ID, "archived", "", operator)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestMoveOutOnlyForPhysicalOffices(t *testing.T) {
	f := newFixture(t, "virtual")
	view := f.create(t)

	_, err := f.svc.UpdateStatus(context.Background(), view.ID, model.CaseStatusMovingOut, "", operator)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestSettlementAndRefund(t *testing.T) {
	f := newFixture(t, model.OfficeTypePhysical)
	view := f.create(t)
	ctx := context.Background()

	settled := f.settle(t, view.ID, date(2025, time.February, 10), "0")
	assert.Equal(t, model.CaseStatusPendingSettlement, settled.Status)
	require.NotNil(t, settled.DeductionDays)
	assert.Equal(t, 10, *settled.DeductionDays)
	assert.True(t, settled.DailyRate.Equal(dec("1000")))
	assert.True(t, settled.DeductionAmount.Equal(dec("10000")))
	assert.True(t, settled.ArrearsAmount.Equal(dec("4000")))
	require.NotNil(t, settled.RefundAmount)
	assert.True(t, settled.RefundAmount.Equal(dec("46000")))
	assert.False(t, settled.IsBadDebt)
	assert.True(t, settled.Checklist[model.ChecklistDocApproved])
	assert.True(t, settled.Checklist[model.ChecklistSettlementCalculated])

	_, err := f.svc.ReportToAuthority(ctx, AuthorityInput{CaseID: view.ID, Principal: operator})
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = f.svc.ProcessRefund(ctx, RefundRequest{CaseID: view.ID, Method: model.RefundMethodTransfer, Principal: operator})
	assert.ErrorIs(t, err, ErrInvalidInput)

	done, err := f.svc.ProcessRefund(ctx, RefundRequest{
		CaseID:    view.ID,
		Method:    model.RefundMethodTransfer,
		Account:   "DE89 3704 0044 0532 0130 00",
		Receipt:   "TX-88",
		Principal: operator,
	})
	require.NoError(t, err)
	assert.Equal(t, model.CaseStatusCompleted, done.Status)
	assert.NotNil(t, done.CompletedAt)
	assert.True(t, done.Checklist[model.ChecklistRefundProcessed])
	require.NotNil(t, done.RefundMethod)
	assert.Equal(t, model.RefundMethodTransfer, *done.RefundMethod)
	assert.Equal(t, model.ContractStatusTerminated, f.contractStatus(t))

	_, err = f.svc.CancelCase(ctx, view.ID, "changed mind", operator)
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = f.svc.UpdateChecklist(ctx, view.ID, model.ChecklistKeysReturned, true, operator)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestSettlementRecomputeOverwrites(t *testing.T) {
	f := newFixture(t, model.OfficeTypePhysical)
	view := f.create(t)

	f.settle(t, view.ID, date(2025, time.February, 10), "0")
	again, err := f.svc.CalculateSettlement(context.Background(), SettlementRequest{
		CaseID:              view.ID,
		DocApprovedDate:     date(2025, time.January, 20),
		OtherDeductions:     dec("500"),
		OtherDeductionNotes: "carpet cleaning",
		Principal:           operator,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, *again.DeductionDays)
	assert.True(t, again.RefundAmount.Equal(dec("55500")))
	require.NotNil(t, again.OtherDeductionNotes)
	assert.Equal(t, "carpet cleaning", *again.OtherDeductionNotes)
}

func TestSettlementValidation(t *testing.T) {
	f := newFixture(t, model.OfficeTypePhysical)
	view := f.create(t)
	ctx := context.Background()

	_, err := f.svc.CalculateSettlement(ctx, SettlementRequest{CaseID: view.ID, DocApprovedDate: date(2025, time.February, 10), Principal: operator})
	assert.ErrorIs(t, err, ErrInvalidState, "settlement needs pending_doc")

	f.check(t, view.ID, model.ChecklistNoticeConfirmed)
	_, err = f.svc.UpdateStatus(ctx, view.ID, model.CaseStatusPendingDoc, "", operator)
	require.NoError(t, err)

	_, err = f.svc.CalculateSettlement(ctx, SettlementRequest{CaseID: view.ID, Principal: operator})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.CalculateSettlement(ctx, SettlementRequest{
		CaseID:          view.ID,
		DocApprovedDate: date(2025, time.February, 10),
		OtherDeductions: dec("-1"),
		Principal:       operator,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.CalculateSettlement(ctx, SettlementRequest{
		CaseID:          view.ID,
		DocApprovedDate: date(2024, time.December, 31),
		Principal:       operator,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestBadDebtEscalation(t *testing.T) {
	f := newFixture(t, model.OfficeTypePhysical)
	view := f.create(t)
	ctx := context.Background()

	settled := f.settle(t, view.ID, date(2025, time.February, 10), "55000")
	assert.True(t, settled.IsBadDebt)
	assert.Equal(t, []string{"settle", "report_to_authority", "cancel"}, settled.AllowedActions)
	assert.Nil(t, settled.RefundAmount)
	require.NotNil(t, settled.BadDebtAmount)
	// 60000 - 10000 - 55000 - 4000 arrears
	assert.True(t, settled.BadDebtAmount.Equal(dec("9000")))

	_, err := f.svc.ProcessRefund(ctx, RefundRequest{CaseID: view.ID, Method: model.RefundMethodCash, Principal: operator})
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = f.svc.ReportToAuthority(ctx, AuthorityInput{
		CaseID:    view.ID,
		Date:      date(2020, time.January, 1),
		Principal: operator,
	})
	assert.ErrorIs(t, err, ErrInvalidInput, "report cannot predate document approval")
	current, err := f.svc.GetCase(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CaseStatusPendingSettlement, current.Status)
	assert.Nil(t, current.AuthorityReportedDate)

	reported, err := f.svc.ReportToAuthority(ctx, AuthorityInput{
		CaseID:    view.ID,
		Date:      date(2025, time.February, 12),
		Principal: operator,
	})
	require.NoError(t, err)
	assert.Equal(t, model.CaseStatusPendingAuthority, reported.Status)
	require.NotNil(t, reported.AuthorityReportedDate)

	_, err = f.svc.RecordAuthorityResponse(ctx, AuthorityInput{
		CaseID:    view.ID,
		Date:      date(2025, time.February, 1),
		Principal: operator,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	done, err := f.svc.RecordAuthorityResponse(ctx, AuthorityInput{
		CaseID:    view.ID,
		Date:      date(2025, time.March, 1),
		Notes:     "ruling received",
		Principal: operator,
	})
	require.NoError(t, err)
	assert.Equal(t, model.CaseStatusCompleted, done.Status)
	assert.Equal(t, date(2025, time.March, 1), *done.AuthorityResponseDate)
	assert.NotNil(t, done.CompletedAt)
	assert.Equal(t, model.ContractStatusTerminated, f.contractStatus(t))
}

func TestCompleteViaStatusRequiresAuthority(t *testing.T) {
	f := newFixture(t, model.OfficeTypePhysical)
	view := f.create(t)
	f.settle(t, view.ID, date(2025, time.February, 10), "0")

	_, err := f.svc.UpdateStatus(context.Background(), view.ID, model.CaseStatusCompleted, "", operator)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCancelRestoresReceivables(t *testing.T) {
	f := newFixture(t, model.OfficeTypePhysical)
	view := f.create(t)
	ctx := context.Background()
	f.settle(t, view.ID, date(2025, time.February, 10), "0")

	_, err := f.svc.CancelCase(ctx, view.ID, "  ", operator)
	assert.ErrorIs(t, err, ErrInvalidInput)

	cancelled, err := f.svc.CancelCase(ctx, view.ID, "customer renewed", operator)
	require.NoError(t, err)
	assert.Equal(t, model.CaseStatusCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)
	assert.Contains(t, cancelled.Notes, "2 held payments restored - customer renewed")

	assert.Equal(t, model.ContractStatusActive, f.contractStatus(t))
	assert.Equal(t, model.PaymentStatusOverdue, f.paymentStatus(t, 0))
	assert.Equal(t, model.PaymentStatusPending, f.paymentStatus(t, 1))
	assert.Equal(t, model.PaymentStatusPaid, f.paymentStatus(t, 2))

	_, err = f.svc.CancelCase(ctx, view.ID, "again", operator)
	assert.ErrorIs(t, err, ErrInvalidState)

	reopened := f.create(t)
	assert.NotEqual(t, view.ID, reopened.ID)
	assert.Equal(t, 2, reopened.PendingPaymentCount)
	assert.True(t, reopened.PendingPaymentAmount.Equal(dec("4000")))
}

func TestCancelViaStatus(t *testing.T) {
	f := newFixture(t, model.OfficeTypePhysical)
	view := f.create(t)

	_, err := f.svc.UpdateStatus(context.Background(), view.ID, model.CaseStatusCancelled, "", operator)
	assert.ErrorIs(t, err, ErrInvalidInput)

	cancelled, err := f.svc.UpdateStatus(context.Background(), view.ID, model.CaseStatusCancelled, "duplicate notice", operator)
	require.NoError(t, err)
	assert.Equal(t, model.CaseStatusCancelled, cancelled.Status)
}

func TestListCases(t *testing.T) {
	f := newFixture(t, model.OfficeTypePhysical)
	view := f.create(t)
	ctx := context.Background()

	status := model.CaseStatusNoticeReceived
	list, err := f.svc.ListCases(ctx, model.CaseFilter{Status: &status})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, view.ID, list[0].ID)
	assert.Equal(t, 8, list[0].TotalSteps)

	completed := model.CaseStatusCompleted
	list, err = f.svc.ListCases(ctx, model.CaseFilter{Status: &completed})
	require.NoError(t, err)
	assert.Empty(t, list)

	bogus := model.CaseStatus("archived")
	_, err = f.svc.ListCases(ctx, model.CaseFilter{Status: &bogus})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.ListCases(ctx, model.CaseFilter{Limit: -1})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExports(t *testing.T) {
	f := newFixture(t, model.OfficeTypePhysical)
	view := f.create(t)
	ctx := context.Background()

	status := model.CaseStatusNoticeReceived
	file, err := f.svc.ExportCases(ctx, model.CaseFilter{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "termination-cases-notice_received-20250212.xlsx", file.FileName)
	assert.Equal(t, 1, f.excel.rows)

	_, err = f.svc.SettlementStatement(ctx, view.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	f.settle(t, view.ID, date(2025, time.February, 10), "0")
	statement, err := f.svc.SettlementStatement(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, "settlement-C-2024-017.pdf", statement.FileName)
	assert.Equal(t, []byte("pdf:C-2024-017"), statement.Content)
}

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "C-2024-017", sanitizeFileName("C-2024-017"))
	assert.Equal(t, "A-1-2", sanitizeFileName("A/1 2"))
	assert.Equal(t, "", sanitizeFileName("///"))
}

func TestOtherDeductionsKeepCents(t *testing.T) {
	f := newFixture(t, model.OfficeTypePhysical)
	view := f.create(t)

	settled := f.settle(t, view.ID, date(2025, time.February, 3), "0.10")
	assert.True(t, settled.OtherDeductions.Equal(decimal.RequireFromString("0.10")))
	// 60000 - 3*1000 - 0.10 - 4000
	assert.True(t, settled.RefundAmount.Equal(dec("52999.90")))
}
