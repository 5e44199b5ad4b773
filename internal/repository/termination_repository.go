package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/nurpe/termination-service/internal/model"
)

const (
	pgUniqueViolation   = "23505"
	pgLockNotAvailable  = "55P03"
	pgSerializationFail = "40001"
)

const caseColumns = `
	tc.id,
	tc.contract_id,
	tc.termination_type,
	tc.status,
	tc.notice_date,
	tc.is_physical_office,
	tc.checklist,
	tc.monthly_rent,
	tc.deposit_amount,
	tc.contract_end_date,
	tc.doc_approved_date,
	tc.daily_rate,
	tc.deduction_days,
	tc.deduction_amount,
	tc.other_deductions,
	tc.other_deduction_notes,
	tc.arrears_amount,
	tc.refund_amount,
	tc.is_bad_debt,
	tc.bad_debt_amount,
	tc.authority_reported_date,
	tc.authority_response_date,
	tc.refund_method,
	tc.refund_account,
	tc.refund_receipt,
	tc.pending_payment_count,
	tc.pending_payment_amount,
	tc.notes,
	tc.version,
	tc.created_at,
	tc.updated_at,
	tc.cancelled_at,
	tc.completed_at`

type caseRow struct {
	ID                    uuid.UUID
	ContractID            uuid.UUID
	TerminationType       string
	Status                string
	NoticeDate            time.Time
	IsPhysicalOffice      bool
	Checklist             datatypes.JSONType[model.Checklist]
	MonthlyRent           decimal.Decimal
	DepositAmount         decimal.Decimal
	ContractEndDate       time.Time
	DocApprovedDate       *time.Time
	DailyRate             decimal.NullDecimal
	DeductionDays         *int
	DeductionAmount       decimal.NullDecimal
	OtherDeductions       decimal.Decimal
	OtherDeductionNotes   *string
	ArrearsAmount         decimal.Decimal
	RefundAmount          decimal.NullDecimal
	IsBadDebt             bool
	BadDebtAmount         decimal.NullDecimal
	AuthorityReportedDate *time.Time
	AuthorityResponseDate *time.Time
	RefundMethod          *string
	RefundAccount         *string
	RefundReceipt         *string
	PendingPaymentCount   int
	PendingPaymentAmount  decimal.Decimal
	Notes                 string
	Version               int
	CreatedAt             time.Time
	UpdatedAt             time.Time
	CancelledAt           *time.Time
	CompletedAt           *time.Time
}

type caseViewRow struct {
	Case            caseRow `gorm:"embedded"`
	ContractNumber  string
	CustomerName    string
	CustomerCompany string
}

type TerminationRepository struct {
	db *gorm.DB
}

func NewTerminationRepository(db *gorm.DB) *TerminationRepository {
	return &TerminationRepository{db: db}
}

func (r *TerminationRepository) Transaction(ctx context.Context, fn func(tx TerminationTx) error) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&terminationTx{tx: tx})
	})
	return translateError(err)
}

func (r *TerminationRepository) GetCaseView(ctx context.Context, id uuid.UUID) (*model.CaseView, error) {
	var row caseViewRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+caseColumns+`,
			ct.contract_number,
			COALESCE(cu.name, '') AS customer_name,
			COALESCE(cu.company_name, '') AS customer_company
		FROM termination_cases tc
		JOIN contracts ct ON ct.id = tc.contract_id
		LEFT JOIN customers cu ON cu.id = ct.customer_id
		WHERE tc.id = ?
		LIMIT 1
	`, id).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.Case.ID == uuid.Nil {
		return nil, ErrNotFound
	}
	view := row.toView()
	return &view, nil
}

func (r *TerminationRepository) ListCaseViews(ctx context.Context, filter model.CaseFilter) ([]model.CaseView, error) {
	query := `
		SELECT ` + caseColumns + `,
			ct.contract_number,
			COALESCE(cu.name, '') AS customer_name,
			COALESCE(cu.company_name, '') AS customer_company
		FROM termination_cases tc
		JOIN contracts ct ON ct.id = tc.contract_id
		LEFT JOIN customers cu ON cu.id = ct.customer_id
	`
	var (
		filters []string
		args    []interface{}
	)
	if filter.Status != nil {
		filters = append(filters, "tc.status = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.ContractID != nil {
		filters = append(filters, "tc.contract_id = ?")
		args = append(args, *filter.ContractID)
	}
	if len(filters) > 0 {
		query += " WHERE " + strings.Join(filters, " AND ")
	}
	query += " ORDER BY tc.created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	var rows []caseViewRow
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	views := make([]model.CaseView, 0, len(rows))
	for _, row := range rows {
		views = append(views, row.toView())
	}
	return views, nil
}

type terminationTx struct {
	tx *gorm.DB
}

func (t *terminationTx) LockContract(ctx context.Context, contractID uuid.UUID) (*model.Contract, error) {
	var row struct {
		ID              uuid.UUID
		ContractNumber  string
		CustomerID      uuid.UUID
		Status          string
		OfficeType      string
		MonthlyRent     decimal.Decimal
		DepositAmount   decimal.Decimal
		StartDate       time.Time
		EndDate         time.Time
		CustomerName    string
		CustomerCompany string
		CustomerPhone   string
		CustomerEmail   string
	}

	err := t.tx.WithContext(ctx).Raw(`
		SELECT
			c.id,
			c.contract_number,
			c.customer_id,
			c.status,
			c.office_type,
			c.monthly_rent,
			c.deposit_amount,
			c.start_date,
			c.end_date,
			COALESCE(cu.name, '') AS customer_name,
			COALESCE(cu.company_name, '') AS customer_company,
			COALESCE(cu.phone, '') AS customer_phone,
			COALESCE(cu.email, '') AS customer_email
		FROM contracts c
		LEFT JOIN customers cu ON cu.id = c.customer_id
		WHERE c.id = ?
		FOR UPDATE OF c
	`, contractID).Scan(&row).Error
	if err != nil {
		return nil, translateError(err)
	}
	if row.ID == uuid.Nil {
		return nil, ErrNotFound
	}

	return &model.Contract{
		ID:             row.ID,
		ContractNumber: row.ContractNumber,
		CustomerID:     row.CustomerID,
		Status:         model.ContractStatus(row.Status),
		OfficeType:     row.OfficeType,
		MonthlyRent:    row.MonthlyRent,
		DepositAmount:  row.DepositAmount,
		StartDate:      row.StartDate,
		EndDate:        row.EndDate,
		Customer: model.Customer{
			ID:          row.CustomerID,
			Name:        row.CustomerName,
			CompanyName: row.CustomerCompany,
			Phone:       row.CustomerPhone,
			Email:       row.CustomerEmail,
		},
	}, nil
}

func (t *terminationTx) SetContractStatus(ctx context.Context, contractID uuid.UUID, status model.ContractStatus) error {
	result := t.tx.WithContext(ctx).Exec(`
		UPDATE contracts SET status = ?, updated_at = NOW() WHERE id = ?
	`, string(status), contractID)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *terminationTx) InsertCase(ctx context.Context, c *model.TerminationCase) error {
	err := t.tx.WithContext(ctx).Exec(`
		INSERT INTO termination_cases (
			id,
			contract_id,
			termination_type,
			status,
			notice_date,
			is_physical_office,
			checklist,
			monthly_rent,
			deposit_amount,
			contract_end_date,
			other_deductions,
			arrears_amount,
			is_bad_debt,
			pending_payment_count,
			pending_payment_amount,
			notes,
			version,
			created_at,
			updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		c.ID,
		c.ContractID,
		string(c.TerminationType),
		string(c.Status),
		c.NoticeDate,
		c.IsPhysicalOffice,
		datatypes.NewJSONType(c.Checklist),
		c.MonthlyRent,
		c.DepositAmount,
		c.ContractEndDate,
		c.OtherDeductions,
		c.ArrearsAmount,
		c.IsBadDebt,
		c.PendingPaymentCount,
		c.PendingPaymentAmount,
		c.Notes,
		c.Version,
		c.CreatedAt,
		c.UpdatedAt,
	).Error
	return translateError(err)
}

func (t *terminationTx) LockCase(ctx context.Context, id uuid.UUID) (*model.TerminationCase, error) {
	var row caseRow
	err := t.tx.WithContext(ctx).Raw(`
		SELECT `+caseColumns+`
		FROM termination_cases tc
		WHERE tc.id = ?
		FOR UPDATE NOWAIT
	`, id).Scan(&row).Error
	if err != nil {
		return nil, translateError(err)
	}
	if row.ID == uuid.Nil {
		return nil, ErrNotFound
	}
	c := row.toModel()
	return &c, nil
}

// UpdateCase writes every mutable column guarded by the version read under lock.
func (t *terminationTx) UpdateCase(ctx context.Context, c *model.TerminationCase) error {
	var refundMethod *string
	if c.RefundMethod != nil {
		method := string(*c.RefundMethod)
		refundMethod = &method
	}

	result := t.tx.WithContext(ctx).Exec(`
		UPDATE termination_cases
		SET
			status = ?,
			checklist = ?,
			doc_approved_date = ?,
			daily_rate = ?,
			deduction_days = ?,
			deduction_amount = ?,
			other_deductions = ?,
			other_deduction_notes = ?,
			arrears_amount = ?,
			refund_amount = ?,
			is_bad_debt = ?,
			bad_debt_amount = ?,
			authority_reported_date = ?,
			authority_response_date = ?,
			refund_method = ?,
			refund_account = ?,
			refund_receipt = ?,
			notes = ?,
			cancelled_at = ?,
			completed_at = ?,
			updated_at = ?,
			version = version + 1
		WHERE id = ? AND version = ?
	`,
		string(c.Status),
		datatypes.NewJSONType(c.Checklist),
		c.DocApprovedDate,
		nullDecimal(c.DailyRate),
		c.DeductionDays,
		nullDecimal(c.DeductionAmount),
		c.OtherDeductions,
		c.OtherDeductionNotes,
		c.ArrearsAmount,
		nullDecimal(c.RefundAmount),
		c.IsBadDebt,
		nullDecimal(c.BadDebtAmount),
		c.AuthorityReportedDate,
		c.AuthorityResponseDate,
		refundMethod,
		c.RefundAccount,
		c.RefundReceipt,
		c.Notes,
		c.CancelledAt,
		c.CompletedAt,
		c.UpdatedAt,
		c.ID,
		c.Version,
	)
	return applyVersionedUpdate(c, result.RowsAffected, result.Error)
}

// applyVersionedUpdate bumps c.Version after an optimistic update touched its
// row, and reports ErrConflict when the row moved on to another version.
func applyVersionedUpdate(c *model.TerminationCase, rowsAffected int64, err error) error {
	if err != nil {
		return translateError(err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: case %s changed since version %d", ErrConflict, c.ID, c.Version)
	}
	c.Version++
	return nil
}

func (r caseRow) toModel() model.TerminationCase {
	var refundMethod *model.RefundMethod
	if r.RefundMethod != nil {
		method := model.RefundMethod(*r.RefundMethod)
		refundMethod = &method
	}
	checklist := r.Checklist.Data()
	if checklist == nil {
		checklist = model.NewChecklist(model.OfficeKindFor(r.IsPhysicalOffice))
	}

	return model.TerminationCase{
		ID:                    r.ID,
		ContractID:            r.ContractID,
		TerminationType:       model.TerminationType(r.TerminationType),
		Status:                model.CaseStatus(r.Status),
		NoticeDate:            r.NoticeDate,
		IsPhysicalOffice:      r.IsPhysicalOffice,
		Checklist:             checklist,
		MonthlyRent:           r.MonthlyRent,
		DepositAmount:         r.DepositAmount,
		ContractEndDate:       r.ContractEndDate,
		DocApprovedDate:       r.DocApprovedDate,
		DailyRate:             decimalPtr(r.DailyRate),
		DeductionDays:         r.DeductionDays,
		DeductionAmount:       decimalPtr(r.DeductionAmount),
		OtherDeductions:       r.OtherDeductions,
		OtherDeductionNotes:   r.OtherDeductionNotes,
		ArrearsAmount:         r.ArrearsAmount,
		RefundAmount:          decimalPtr(r.RefundAmount),
		IsBadDebt:             r.IsBadDebt,
		BadDebtAmount:         decimalPtr(r.BadDebtAmount),
		AuthorityReportedDate: r.AuthorityReportedDate,
		AuthorityResponseDate: r.AuthorityResponseDate,
		RefundMethod:          refundMethod,
		RefundAccount:         r.RefundAccount,
		RefundReceipt:         r.RefundReceipt,
		PendingPaymentCount:   r.PendingPaymentCount,
		PendingPaymentAmount:  r.PendingPaymentAmount,
		Notes:                 r.Notes,
		Version:               r.Version,
		CreatedAt:             r.CreatedAt,
		UpdatedAt:             r.UpdatedAt,
		CancelledAt:           r.CancelledAt,
		CompletedAt:           r.CompletedAt,
	}
}

func (r caseViewRow) toView() model.CaseView {
	return model.CaseView{
		TerminationCase: r.Case.toModel(),
		ContractNumber:  r.ContractNumber,
		CustomerName:    r.CustomerName,
		CustomerCompany: r.CustomerCompany,
	}
}

func decimalPtr(value decimal.NullDecimal) *decimal.Decimal {
	if !value.Valid {
		return nil
	}
	d := value.Decimal
	return &d
}

func nullDecimal(value *decimal.Decimal) decimal.NullDecimal {
	if value == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *value, Valid: true}
}

// translateError maps Postgres lock and uniqueness failures to ErrConflict.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation, pgLockNotAvailable, pgSerializationFail:
			return fmt.Errorf("%w: %s", ErrConflict, pgErr.Message)
		}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}
