package domain

import "time"

// The entity catalogs below are owned by other modules of the back office; the
// ticket core only reads them by id or join.

// UserStatus represents lifecycle states for a back-office user.
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// User is the read model for requesters, assignees and technicians.
type User struct {
	ID        string
	Name      string
	Email     string
	Status    UserStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Client is the read model for customer accounts a ticket may reference.
type Client struct {
	ID    string
	Name  string
	Email *string
	Phone *string
}

// Equipment is the read model for serviced equipment a ticket may reference.
type Equipment struct {
	ID           string
	Name         string
	SerialNumber *string
}
