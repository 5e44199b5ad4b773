package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TerminationType string

const (
	TerminationTypeEarly       TerminationType = "early"
	TerminationTypeNotRenewing TerminationType = "not_renewing"
	TerminationTypeBreach      TerminationType = "breach"
)

func (t TerminationType) Valid() bool {
	switch t {
	case TerminationTypeEarly, TerminationTypeNotRenewing, TerminationTypeBreach:
		return true
	}
	return false
}

type CaseStatus string

const (
	CaseStatusNoticeReceived    CaseStatus = "notice_received"
	CaseStatusMovingOut         CaseStatus = "moving_out"
	CaseStatusPendingDoc        CaseStatus = "pending_doc"
	CaseStatusPendingSettlement CaseStatus = "pending_settlement"
	CaseStatusPendingAuthority  CaseStatus = "pending_authority"
	CaseStatusCompleted         CaseStatus = "completed"
	CaseStatusCancelled         CaseStatus = "cancelled"
)

func (s CaseStatus) IsTerminal() bool {
	return s == CaseStatusCompleted || s == CaseStatusCancelled
}

func (s CaseStatus) Valid() bool {
	switch s {
	case CaseStatusNoticeReceived, CaseStatusMovingOut, CaseStatusPendingDoc,
		CaseStatusPendingSettlement, CaseStatusPendingAuthority,
		CaseStatusCompleted, CaseStatusCancelled:
		return true
	}
	return false
}

type RefundMethod string

const (
	RefundMethodTransfer RefundMethod = "transfer"
	RefundMethodCash     RefundMethod = "cash"
	RefundMethodCheck    RefundMethod = "check"
	RefundMethodOffset   RefundMethod = "offset"
)

func (m RefundMethod) Valid() bool {
	switch m {
	case RefundMethodTransfer, RefundMethodCash, RefundMethodCheck, RefundMethodOffset:
		return true
	}
	return false
}

type TerminationCase struct {
	ID               uuid.UUID       `json:"id"`
	ContractID       uuid.UUID       `json:"contract_id"`
	TerminationType  TerminationType `json:"termination_type"`
	Status           CaseStatus      `json:"status"`
	NoticeDate       time.Time       `json:"notice_date"`
	IsPhysicalOffice bool            `json:"is_physical_office"`
	Checklist        Checklist       `json:"checklist"`

	// Contract facts seeded at creation.
	MonthlyRent     decimal.Decimal `json:"monthly_rent"`
	DepositAmount   decimal.Decimal `json:"deposit_amount"`
	ContractEndDate time.Time       `json:"contract_end_date"`

	DocApprovedDate     *time.Time       `json:"doc_approved_date"`
	DailyRate           *decimal.Decimal `json:"daily_rate"`
	DeductionDays       *int             `json:"deduction_days"`
	DeductionAmount     *decimal.Decimal `json:"deduction_amount"`
	OtherDeductions     decimal.Decimal  `json:"other_deductions"`
	OtherDeductionNotes *string          `json:"other_deduction_notes"`
	ArrearsAmount       decimal.Decimal  `json:"arrears_amount"`
	RefundAmount        *decimal.Decimal `json:"refund_amount"`
	IsBadDebt           bool             `json:"is_bad_debt"`
	BadDebtAmount       *decimal.Decimal `json:"bad_debt_amount"`

	AuthorityReportedDate *time.Time `json:"authority_reported_date"`
	AuthorityResponseDate *time.Time `json:"authority_response_date"`

	RefundMethod  *RefundMethod `json:"refund_method"`
	RefundAccount *string       `json:"refund_account"`
	RefundReceipt *string       `json:"refund_receipt"`

	PendingPaymentCount  int             `json:"pending_payment_count"`
	PendingPaymentAmount decimal.Decimal `json:"pending_payment_amount"`

	Notes   string `json:"notes"`
	Version int    `json:"version"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CancelledAt *time.Time `json:"cancelled_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

func (c *TerminationCase) OfficeKind() OfficeKind {
	return OfficeKindFor(c.IsPhysicalOffice)
}

func (c *TerminationCase) SettlementComputed() bool {
	return c.DeductionAmount != nil
}

// Clone returns a deep copy so callers can mutate without touching shared state.
func (c *TerminationCase) Clone() *TerminationCase {
	out := *c
	out.Checklist = c.Checklist.Clone()
	return &out
}

// CaseView is the read model returned to callers and dashboards.
type CaseView struct {
	TerminationCase
	ContractNumber  string `json:"contract_number"`
	CustomerName    string `json:"customer_name"`
	CustomerCompany string `json:"customer_company"`
	Progress        int    `json:"progress"`
	TotalSteps      int    `json:"total_steps"`
	// AllowedActions names the lifecycle actions currently open to the case.
	AllowedActions []string `json:"allowed_actions"`
}

type CaseFilter struct {
	Status     *CaseStatus
	ContractID *uuid.UUID
	Limit      int
	Offset     int
}
