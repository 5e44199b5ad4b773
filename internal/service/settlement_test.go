package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func fixedPolicy(t *testing.T) DailyRatePolicy {
	t.Helper()
	policy, err := NewDailyRatePolicy(DayBasisFixed, 30)
	require.NoError(t, err)
	return policy
}

func TestComputeSettlement(t *testing.T) {
	base := SettlementInput{
		MonthlyRent:     dec("30000"),
		DepositAmount:   dec("60000"),
		ContractEndDate: date(2025, time.January, 31),
		OtherDeductions: decimal.Zero,
		ArrearsAmount:   decimal.Zero,
	}

	tests := []struct {
		name          string
		approved      time.Time
		other         string
		arrears       string
		wantDays      int
		wantDeduction string
		wantRefund    string
		wantBadDebt   string
	}{
		{
			name:          "overrun is charged per day",
			approved:      date(2025, time.February, 10),
			other:         "0",
			arrears:       "0",
			wantDays:      10,
			wantDeduction: "10000",
			wantRefund:    "50000",
		},
		{
			name:          "approval before the end date costs nothing",
			approved:      date(2025, time.January, 20),
			other:         "0",
			arrears:       "0",
			wantDays:      0,
			wantDeduction: "0",
			wantRefund:    "60000",
		},
		{
			name:          "deficit becomes bad debt",
			approved:      date(2025, time.February, 10),
			other:         "55000",
			arrears:       "0",
			wantDays:      10,
			wantDeduction: "10000",
			wantBadDebt:   "5000",
		},
		{
			name:          "arrears reduce the refund",
			approved:      date(2025, time.January, 31),
			other:         "1500",
			arrears:       "4000",
			wantDays:      0,
			wantDeduction: "0",
			wantRefund:    "54500",
		},
		{
			name:          "exact zero is still a refund",
			approved:      date(2025, time.February, 10),
			other:         "50000",
			arrears:       "0",
			wantDays:      10,
			wantDeduction: "10000",
			wantRefund:    "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := base
			input.DocApprovedDate = tt.approved
			input.OtherDeductions = dec(tt.other)
			input.ArrearsAmount = dec(tt.arrears)

			got := ComputeSettlement(fixedPolicy(t), input)

			assert.Equal(t, tt.wantDays, got.DeductionDays)
			assert.True(t, got.DailyRate.Equal(dec("1000")), "daily rate %s", got.DailyRate)
			assert.True(t, got.DeductionAmount.Equal(dec(tt.wantDeduction)), "deduction %s", got.DeductionAmount)

			if tt.wantBadDebt != "" {
				assert.True(t, got.IsBadDebt)
				assert.Nil(t, got.RefundAmount)
				require.NotNil(t, got.BadDebtAmount)
				assert.True(t, got.BadDebtAmount.Equal(dec(tt.wantBadDebt)), "bad debt %s", got.BadDebtAmount)
				return
			}
			assert.False(t, got.IsBadDebt)
			assert.Nil(t, got.BadDebtAmount)
			require.NotNil(t, got.RefundAmount)
			assert.True(t, got.RefundAmount.Equal(dec(tt.wantRefund)), "refund %s", got.RefundAmount)
		})
	}
}

func TestComputeSettlementBalances(t *testing.T) {
	input := SettlementInput{
		MonthlyRent:     dec("12345.67"),
		DepositAmount:   dec("25000"),
		ContractEndDate: date(2025, time.March, 31),
		DocApprovedDate: date(2025, time.April, 17),
		OtherDeductions: dec("321.09"),
		ArrearsAmount:   dec("1000.50"),
	}
	got := ComputeSettlement(fixedPolicy(t), input)

	assert.Equal(t, int32(-2), got.DeductionAmount.Exponent(), "deduction is kept at cents")
	var outcome decimal.Decimal
	if got.RefundAmount != nil {
		outcome = *got.RefundAmount
	} else {
		outcome = got.BadDebtAmount.Neg()
	}
	total := outcome.Add(got.DeductionAmount).Add(input.OtherDeductions).Add(input.ArrearsAmount)
	assert.True(t, total.Equal(input.DepositAmount), "outcome and deductions sum to %s", total)
}

func TestComputeSettlementChargesStoredRate(t *testing.T) {
	input := SettlementInput{
		MonthlyRent:     dec("12345.67"),
		DepositAmount:   dec("25000"),
		ContractEndDate: date(2025, time.March, 31),
		DocApprovedDate: date(2025, time.April, 15),
		OtherDeductions: decimal.Zero,
		ArrearsAmount:   decimal.Zero,
	}
	got := ComputeSettlement(fixedPolicy(t), input)

	require.Equal(t, 15, got.DeductionDays)
	assert.True(t, got.DailyRate.Equal(dec("411.5223")), "daily rate %s", got.DailyRate)
	// 411.5223 x 15 = 6172.8345; the unrounded rate would give 6172.84.
	assert.True(t, got.DeductionAmount.Equal(dec("6172.83")), "deduction %s", got.DeductionAmount)
	recomputed := got.DailyRate.Mul(decimal.NewFromInt(int64(got.DeductionDays))).Round(2)
	assert.True(t, got.DeductionAmount.Equal(recomputed))
}

func TestComputeSettlementMonotonic(t *testing.T) {
	input := SettlementInput{
		MonthlyRent:     dec("30000"),
		DepositAmount:   dec("60000"),
		ContractEndDate: date(2025, time.January, 31),
		OtherDeductions: decimal.Zero,
		ArrearsAmount:   decimal.Zero,
	}

	previous := decimal.NewFromInt(-1)
	for day := 0; day <= 90; day++ {
		input.DocApprovedDate = input.ContractEndDate.AddDate(0, 0, day)
		got := ComputeSettlement(fixedPolicy(t), input)
		assert.True(t, got.DeductionAmount.GreaterThanOrEqual(previous), "day %d", day)
		previous = got.DeductionAmount
	}
}

func TestCalendarMonthPolicy(t *testing.T) {
	policy, err := NewDailyRatePolicy(DayBasisCalendar, 0)
	require.NoError(t, err)

	got := ComputeSettlement(policy, SettlementInput{
		MonthlyRent:     dec("28000"),
		DepositAmount:   dec("56000"),
		ContractEndDate: date(2025, time.February, 28),
		DocApprovedDate: date(2025, time.March, 3),
		OtherDeductions: decimal.Zero,
		ArrearsAmount:   decimal.Zero,
	})

	assert.Equal(t, 3, got.DeductionDays)
	assert.True(t, got.DailyRate.Equal(dec("1000")))
	assert.True(t, got.DeductionAmount.Equal(dec("3000")))
	require.NotNil(t, got.RefundAmount)
	assert.True(t, got.RefundAmount.Equal(dec("53000")))
}

func TestNewDailyRatePolicy(t *testing.T) {
	_, err := NewDailyRatePolicy(DayBasisFixed, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewDailyRatePolicy("weekly", 30)
	assert.ErrorIs(t, err, ErrInvalidInput)

	policy, err := NewDailyRatePolicy("", 31)
	require.NoError(t, err)
	assert.Equal(t, "monthly rent / 31", policy.Describe())
}

func TestDeductionDays(t *testing.T) {
	end := date(2025, time.January, 31)
	assert.Equal(t, 0, DeductionDays(end, end))
	assert.Equal(t, 0, DeductionDays(end, date(2024, time.December, 1)))
	assert.Equal(t, 1, DeductionDays(end, time.Date(2025, time.February, 1, 23, 59, 0, 0, time.UTC)))
	assert.Equal(t, 28, DeductionDays(end, date(2025, time.February, 28)))
}
