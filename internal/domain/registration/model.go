package registration

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"compreg/internal/domain/competition"
)

// Payment status constants
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
	PaymentCancelled = "cancelled"
)

// Admission status constants
const (
	StatusConfirmed = "confirmed"
	StatusWaitlist  = "waitlist"
	StatusCancelled = "cancelled"
)

// FeeTolerance is the absolute tolerance used when comparing a stored fee
// against a recomputed one. Fees are decimal amounts, so exact float equality
// is not meaningful.
const FeeTolerance = 0.01

// Domain errors
var (
	ErrEmptySelection   = errors.New("at least one event must be selected")
	ErrAlreadyPaid      = errors.New("registration is already paid")
	ErrAlreadyCancelled = errors.New("registration is already cancelled")
	ErrNotPending       = errors.New("payment is not pending")
	ErrPaidCancellation = errors.New("paid registrations cannot be cancelled")
	ErrNotWaitlisted    = errors.New("only waitlisted registrations can be promoted")
)

// InvalidEventsError reports selected events that the competition does not offer.
type InvalidEventsError struct {
	Invalid []string
	Valid   []string
}

func (e *InvalidEventsError) Error() string {
	return fmt.Sprintf("invalid events: %s (valid events: %s)",
		strings.Join(e.Invalid, ", "), strings.Join(e.Valid, ", "))
}

// WindowClosedError reports a registration attempt outside the window.
type WindowClosedError struct {
	Open  time.Time
	Close time.Time
	Now   time.Time
}

func (e *WindowClosedError) Error() string {
	return fmt.Sprintf("registration window is closed (open %s to %s, now %s)",
		e.Open.Format("2006-01-02"), e.Close.Format("2006-01-02"), e.Now.Format("2006-01-02"))
}

// DuplicateRegistrationError reports an existing registration for the same
// (user, competition) pair.
type DuplicateRegistrationError struct {
	ExistingID string
}

func (e *DuplicateRegistrationError) Error() string {
	return fmt.Sprintf("user is already registered (registration %s)", e.ExistingID)
}

// FeeMismatchError reports a stored fee that no longer matches the recomputed one.
type FeeMismatchError struct {
	Stored   float64
	Expected float64
}

func (e *FeeMismatchError) Error() string {
	return fmt.Sprintf("stored fee %.2f does not match expected fee %.2f", e.Stored, e.Expected)
}

// Registration holds state for the Registration concept.
type Registration struct {
	ID             string
	UserID         string
	CompetitionID  string
	SelectedEvents []string
	TotalFee       float64
	PaymentStatus  string
	Status         string
	CreatedAt      time.Time
	PaidAt         time.Time
}

// ComputeTotalFee returns the base fee plus the per-event fee of every selected
// event. Events without a fee entry contribute zero; rejecting unknown events
// is ValidateEventSelection's job, which runs before this in every write path.
// PRE: comp is a valid competition
// POST: Result is deterministic and independent of selection order
// INVARIANT: Pure — no side effects, never fails
func ComputeTotalFee(comp competition.Competition, selected []string) float64 {
	total := comp.BaseFee
	for _, name := range selected {
		total += comp.EventFees[name]
	}
	return total
}

// ValidateEventSelection checks that the selection is non-empty and that every
// selected event is offered by the competition.
// PRE: comp is a valid competition
// POST: Returns nil, ErrEmptySelection, or *InvalidEventsError listing offenders
func ValidateEventSelection(comp competition.Competition, selected []string) error {
	if len(selected) == 0 {
		return ErrEmptySelection
	}
	var invalid []string
	for _, name := range selected {
		if !comp.OffersEvent(name) {
			invalid = append(invalid, name)
		}
	}
	if len(invalid) > 0 {
		return &InvalidEventsError{Invalid: invalid, Valid: comp.Events}
	}
	return nil
}

// ValidateRegistrationWindow checks that now falls within the competition's
// registration window, inclusive on both bounds.
// PRE: comp is a valid competition
// POST: Returns nil or *WindowClosedError carrying the bounds and now
func ValidateRegistrationWindow(comp competition.Competition, now time.Time) error {
	if !comp.WindowOpen(now) {
		return &WindowClosedError{Open: comp.RegistrationOpen, Close: comp.RegistrationClose, Now: now}
	}
	return nil
}

// DetermineAdmissionStatus decides between confirmed and waitlist admission.
// confirmedCount must exclude cancelled registrations.
// PRE: confirmedCount >= 0
// POST: Returns StatusConfirmed or StatusWaitlist
func DetermineAdmissionStatus(comp competition.Competition, confirmedCount int) string {
	if !comp.HasCapacityLimit() || confirmedCount < comp.Capacity {
		return StatusConfirmed
	}
	return StatusWaitlist
}

// ValidateStoredFee recomputes the fee for the registration's selection and
// compares it to the stored total within FeeTolerance.
// PRE: reg references comp
// POST: Returns nil or *FeeMismatchError
// INVARIANT: Registration fields are not mutated
func ValidateStoredFee(reg Registration, comp competition.Competition) error {
	expected := ComputeTotalFee(comp, reg.SelectedEvents)
	if math.Abs(reg.TotalFee-expected) > FeeTolerance {
		return &FeeMismatchError{Stored: reg.TotalFee, Expected: expected}
	}
	return nil
}

// IsCancelled returns true if the registration has been cancelled.
// INVARIANT: Registration fields are not mutated
func (r *Registration) IsCancelled() bool {
	return r.Status == StatusCancelled
}

// IsPaid returns true if payment has completed.
// INVARIANT: Registration fields are not mutated
func (r *Registration) IsPaid() bool {
	return r.PaymentStatus == PaymentCompleted
}

// IsWaitlisted returns true if the registration sits on the waitlist.
// INVARIANT: Registration fields are not mutated
func (r *Registration) IsWaitlisted() bool {
	return r.Status == StatusWaitlist
}

// MarkPaid transitions payment from pending to completed.
// PRE: PaymentStatus is pending
// POST: PaymentStatus is completed, PaidAt is set
func (r *Registration) MarkPaid(now time.Time) error {
	if r.PaymentStatus == PaymentCompleted {
		return ErrAlreadyPaid
	}
	if r.PaymentStatus != PaymentPending {
		return ErrNotPending
	}
	r.PaymentStatus = PaymentCompleted
	r.PaidAt = now
	return nil
}

// MarkPaymentFailed transitions payment from pending to failed.
// Failed is terminal — a retry means the caller creates a new payment attempt.
// PRE: PaymentStatus is pending
// POST: PaymentStatus is failed
func (r *Registration) MarkPaymentFailed() error {
	if r.PaymentStatus != PaymentPending {
		return ErrNotPending
	}
	r.PaymentStatus = PaymentFailed
	return nil
}

// MarkPaymentCancelled transitions payment from pending to cancelled. This is
// the user abandoning checkout; the admission status is untouched.
// PRE: PaymentStatus is pending
// POST: PaymentStatus is cancelled
func (r *Registration) MarkPaymentCancelled() error {
	if r.PaymentStatus != PaymentPending {
		return ErrNotPending
	}
	r.PaymentStatus = PaymentCancelled
	return nil
}

// Cancel transitions the registration to cancelled. Paid registrations cannot
// be cancelled through this path.
// PRE: Registration is not cancelled and not paid
// POST: Status and PaymentStatus are cancelled
func (r *Registration) Cancel() error {
	if r.Status == StatusCancelled {
		return ErrAlreadyCancelled
	}
	if r.IsPaid() {
		return ErrPaidCancellation
	}
	r.Status = StatusCancelled
	r.PaymentStatus = PaymentCancelled
	return nil
}

// Promote moves a waitlisted registration to confirmed. There is no automatic
// promotion when a slot frees up — organizers trigger this manually.
// PRE: Status is waitlist
// POST: Status is confirmed
func (r *Registration) Promote() error {
	if r.Status != StatusWaitlist {
		return ErrNotWaitlisted
	}
	r.Status = StatusConfirmed
	return nil
}
