package domain

import "time"

// AgentRole enumerates support tiers.
type AgentRole string

const (
	AgentRoleL1      AgentRole = "L1"
	AgentRoleL2      AgentRole = "L2"
	AgentRoleL3      AgentRole = "L3"
	AgentRoleManager AgentRole = "MANAGER"
)

// Valid reports whether the role is known.
func (r AgentRole) Valid() bool {
	switch r {
	case AgentRoleL1, AgentRoleL2, AgentRoleL3, AgentRoleManager:
		return true
	}
	return false
}

// Agent models a helpdesk staff member who works tickets.
type Agent struct {
	ID           string
	Name         string
	Email        string
	Phone        string
	Role         AgentRole
	DepartmentID *string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
