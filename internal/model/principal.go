package model

import "github.com/google/uuid"

const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
	RoleViewer   = "viewer"
)

type Principal struct {
	UserID uuid.UUID
	Name   string
	Role   string
}

func (p Principal) CanManageCases() bool {
	return p.Role == RoleAdmin || p.Role == RoleOperator
}

func (p Principal) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	if p.UserID != uuid.Nil {
		return p.UserID.String()
	}
	return "system"
}
