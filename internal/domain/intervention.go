package domain

import "time"

// InterventionType classifies a technician work session.
type InterventionType string

const (
	InterventionTypeMaintenance InterventionType = "MAINTENANCE"
	InterventionTypeRepair      InterventionType = "REPAIR"
	InterventionTypeInspection  InterventionType = "INSPECTION"
	InterventionTypeOther       InterventionType = "OTHER"
)

// Valid reports whether the intervention type is a known value.
func (t InterventionType) Valid() bool {
	switch t {
	case InterventionTypeMaintenance, InterventionTypeRepair, InterventionTypeInspection, InterventionTypeOther:
		return true
	}
	return false
}

// InterventionStatus tracks work session progress.
type InterventionStatus string

const (
	InterventionStatusPending    InterventionStatus = "PENDING"
	InterventionStatusInProgress InterventionStatus = "IN_PROGRESS"
	InterventionStatusCompleted  InterventionStatus = "COMPLETED"
)

// Valid reports whether the intervention status is a known value.
func (s InterventionStatus) Valid() bool {
	switch s {
	case InterventionStatusPending, InterventionStatusInProgress, InterventionStatusCompleted:
		return true
	}
	return false
}

// CostType classifies an itemized intervention cost line.
type CostType string

const (
	CostTypeLabor  CostType = "LABOR"
	CostTypePart   CostType = "PART"
	CostTypeTravel CostType = "TRAVEL"
	CostTypeOther  CostType = "OTHER"
)

// Valid reports whether the cost type is a known value.
func (t CostType) Valid() bool {
	switch t {
	case CostTypeLabor, CostTypePart, CostTypeTravel, CostTypeOther:
		return true
	}
	return false
}

// Intervention records a technician work session against a ticket. It owns its
// cost lines; its total equals the sum of the lines' TotalPrice. Interventions
// are soft-deleted independently of the parent ticket.
type Intervention struct {
	ID              string
	TicketID        string
	TechnicianID    string
	Type            InterventionType
	Description     string
	StartTime       time.Time
	EndTime         *time.Time
	DurationMinutes *int32
	Status          InterventionStatus
	Notes           *string
	DeletedAt       *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Costs     []InterventionCost
	TotalCost float64
}

// SumCosts recomputes TotalCost from the attached cost lines.
func (i *Intervention) SumCosts() float64 {
	var total float64
	for _, line := range i.Costs {
		total += line.TotalPrice
	}
	i.TotalCost = total
	return total
}

// InterventionCost is one itemized line. TotalPrice is caller-supplied and is
// not recomputed from Quantity and UnitPrice.
type InterventionCost struct {
	ID             string
	InterventionID string
	Description    string
	CostType       CostType
	Quantity       float64
	UnitPrice      float64
	TotalPrice     float64
	CreatedAt      time.Time
}
