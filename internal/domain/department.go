package domain

import "time"

// Department represents a high-level organizational unit.
type Department struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Category groups tickets and carries the resolution SLA.
type Category struct {
	ID          string
	Name        string
	Description string
	SLAHours    int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
