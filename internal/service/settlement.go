package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DayBasisFixed    = "fixed"
	DayBasisCalendar = "calendar"

	moneyPlaces = 2
	ratePlaces  = 4
)

// DailyRatePolicy turns a monthly rent into the rate charged per day of overrun.
type DailyRatePolicy interface {
	DailyRate(monthlyRent decimal.Decimal, contractEnd time.Time) decimal.Decimal
	Describe() string
}

type fixedDivisorPolicy struct {
	divisor int64
}

func (p fixedDivisorPolicy) DailyRate(monthlyRent decimal.Decimal, _ time.Time) decimal.Decimal {
	return monthlyRent.Div(decimal.NewFromInt(p.divisor))
}

func (p fixedDivisorPolicy) Describe() string {
	return fmt.Sprintf("monthly rent / %d", p.divisor)
}

// calendarMonthPolicy divides by the number of days in the month the contract ends in.
type calendarMonthPolicy struct{}

func (calendarMonthPolicy) DailyRate(monthlyRent decimal.Decimal, contractEnd time.Time) decimal.Decimal {
	return monthlyRent.Div(decimal.NewFromInt(int64(daysInMonth(contractEnd))))
}

func (calendarMonthPolicy) Describe() string {
	return "monthly rent / days in contract end month"
}

func NewDailyRatePolicy(basis string, fixedDivisor int) (DailyRatePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(basis)) {
	case "", DayBasisFixed:
		if fixedDivisor <= 0 {
			return nil, fmt.Errorf("%w: fixed divisor must be positive", ErrInvalidInput)
		}
		return fixedDivisorPolicy{divisor: int64(fixedDivisor)}, nil
	case DayBasisCalendar:
		return calendarMonthPolicy{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown day basis %q", ErrInvalidInput, basis)
	}
}

type SettlementInput struct {
	MonthlyRent     decimal.Decimal
	DepositAmount   decimal.Decimal
	ContractEndDate time.Time
	DocApprovedDate time.Time
	OtherDeductions decimal.Decimal
	ArrearsAmount   decimal.Decimal
}

type Settlement struct {
	DeductionDays   int
	DailyRate       decimal.Decimal
	DeductionAmount decimal.Decimal
	// CandidateRefund is the unclamped deposit balance; negative means a deficit.
	CandidateRefund decimal.Decimal
	IsBadDebt       bool
	RefundAmount    *decimal.Decimal
	BadDebtAmount   *decimal.Decimal
}

// ComputeSettlement prorates the overrun past the contract end date and
// nets every deduction against the deposit.
func ComputeSettlement(policy DailyRatePolicy, input SettlementInput) Settlement {
	days := DeductionDays(input.ContractEndDate, input.DocApprovedDate)
	// The deduction is charged on the stored, rounded rate.
	rate := policy.DailyRate(input.MonthlyRent, input.ContractEndDate).Round(ratePlaces)
	deduction := rate.Mul(decimal.NewFromInt(int64(days))).Round(moneyPlaces)

	candidate := input.DepositAmount.
		Sub(deduction).
		Sub(input.OtherDeductions).
		Sub(input.ArrearsAmount)

	result := Settlement{
		DeductionDays:   days,
		DailyRate:       rate,
		DeductionAmount: deduction,
		CandidateRefund: candidate,
	}
	if candidate.IsNegative() {
		deficit := candidate.Neg()
		result.IsBadDebt = true
		result.BadDebtAmount = &deficit
		return result
	}
	refund := candidate
	result.RefundAmount = &refund
	return result
}

// DeductionDays counts whole days from the contract end date to the document
// approval date, clamped at zero.
func DeductionDays(contractEnd, docApproved time.Time) int {
	end := dateOnly(contractEnd)
	approved := dateOnly(docApproved)
	if !approved.After(end) {
		return 0
	}
	return int(approved.Sub(end).Hours() / 24)
}

func daysInMonth(t time.Time) int {
	y, m, _ := t.Date()
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func dateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
