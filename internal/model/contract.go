package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ContractStatus string

const (
	ContractStatusActive      ContractStatus = "active"
	ContractStatusTerminating ContractStatus = "terminating"
	ContractStatusTerminated  ContractStatus = "terminated"
)

const OfficeTypePhysical = "physical"

type Contract struct {
	ID             uuid.UUID
	ContractNumber string
	CustomerID     uuid.UUID
	Status         ContractStatus
	OfficeType     string // "physical", "virtual", "registration"
	MonthlyRent    decimal.Decimal
	DepositAmount  decimal.Decimal
	StartDate      time.Time
	EndDate        time.Time
	Customer       Customer
}

func (c Contract) OfficeKind() OfficeKind {
	if c.OfficeType == OfficeTypePhysical {
		return OfficeKindPhysical
	}
	return OfficeKindNonPhysical
}

type Customer struct {
	ID          uuid.UUID
	Name        string
	CompanyName string
	Phone       string
	Email       string
}
