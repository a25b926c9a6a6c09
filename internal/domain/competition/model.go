package competition

import (
	"errors"
	"strings"
	"time"
)

// Max length constants for organizer-editable fields.
const (
	MaxNameLength = 120
)

// Domain errors
var (
	ErrEmptyName       = errors.New("competition name cannot be empty")
	ErrNoEvents        = errors.New("competition must offer at least one event")
	ErrNegativeBaseFee = errors.New("base fee cannot be negative")
	ErrNegativeFee     = errors.New("event fees cannot be negative")
	ErrMissingFee      = errors.New("every offered event must have a fee entry")
	ErrInvalidWindow   = errors.New("registration window must have open before close")
	ErrNegativeCap     = errors.New("capacity cannot be negative")
)

// Competition holds state for the Competition concept.
// Capacity of 0 means unlimited.
type Competition struct {
	ID                string
	Name              string
	Description       string
	Date              time.Time
	BaseFee           float64
	EventFees         map[string]float64
	Events            []string
	RegistrationOpen  time.Time
	RegistrationClose time.Time
	Capacity          int
	CreatedBy         string
	CreatedAt         time.Time
}

// Validate checks if the Competition has valid data.
// PRE: Competition struct is populated
// POST: Returns nil if valid, error otherwise
// INVARIANT: every name in Events has an entry in EventFees
func (c *Competition) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > MaxNameLength {
		return errors.New("competition name cannot exceed 120 characters")
	}
	if len(c.Events) == 0 {
		return ErrNoEvents
	}
	if c.BaseFee < 0 {
		return ErrNegativeBaseFee
	}
	for _, name := range c.Events {
		fee, ok := c.EventFees[name]
		if !ok {
			return ErrMissingFee
		}
		if fee < 0 {
			return ErrNegativeFee
		}
	}
	if c.RegistrationClose.Before(c.RegistrationOpen) {
		return ErrInvalidWindow
	}
	if c.Capacity < 0 {
		return ErrNegativeCap
	}
	return nil
}

// OffersEvent returns true if the named event is on the competition's list.
// INVARIANT: Competition fields are not mutated
func (c *Competition) OffersEvent(name string) bool {
	for _, e := range c.Events {
		if e == name {
			return true
		}
	}
	return false
}

// HasCapacityLimit returns true if the competition caps participant count.
// INVARIANT: Competition fields are not mutated
func (c *Competition) HasCapacityLimit() bool {
	return c.Capacity > 0
}

// WindowOpen returns true when now falls inside the registration window.
// Both bounds are inclusive.
// INVARIANT: Competition fields are not mutated
func (c *Competition) WindowOpen(now time.Time) bool {
	return !now.Before(c.RegistrationOpen) && !now.After(c.RegistrationClose)
}
