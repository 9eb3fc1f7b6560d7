package domain

import "time"

// Employee is a member of staff who reports tickets.
type Employee struct {
	ID           string
	Name         string
	Email        string
	DepartmentID *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
