package domain

import "time"

// Project represents a Toggl project in the domain layer.
type Project struct {
	ID          int64
	WorkspaceID int64
	Name        string
	Active      bool
	Private     bool
	Color       string
	ClientID    *int64
	Billable    *bool
	At          *time.Time // Last update timestamp from Toggl

	// Billing and estimate metadata, passthrough only.
	Currency       *string
	Rate           *float64
	FixedFee       *float64
	EstimatedHours *int64
	ActualHours    *int64
	AutoEstimates  *bool
	Recurring      *bool
	Template       *bool
	Status         *string
	StartDate      *string
	EndDate        *string
	CreatedAt      *string
}

// ProjectMembership associates a user with a project.
type ProjectMembership struct {
	ID          int64
	ProjectID   int64
	UserID      int64
	WorkspaceID int64
	Manager     bool
	GroupID     *int64
	Rate        *float64
	LaborCost   *float64
	At          *time.Time
}
