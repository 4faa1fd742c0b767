// internal/models/errors.go
package models

import (
	"errors"
	"fmt"
)

// Error categories. Every domain error wraps exactly one of these so transport
// code can branch with errors.Is without knowing the concrete error.
var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrPolicyViolation   = errors.New("policy violation")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidState      = errors.New("invalid state")
	ErrInvalidInput      = errors.New("invalid input")
)

func categorize(category error, msg string) error {
	return fmt.Errorf("%w: %s", category, msg)
}

var (
	ErrMemberNotFound      = categorize(ErrNotFound, "member not found")
	ErrMemberInactive      = categorize(ErrPolicyViolation, "member is inactive")
	ErrCourtNotFound       = categorize(ErrNotFound, "court not found")
	ErrCourtInactive       = categorize(ErrPolicyViolation, "court is not active")
	ErrBookingNotFound     = categorize(ErrNotFound, "booking not found")
	ErrTransactionNotFound = categorize(ErrNotFound, "transaction not found")
	ErrTournamentNotFound  = categorize(ErrNotFound, "tournament not found")
	ErrMatchNotFound       = categorize(ErrNotFound, "match not found")
	ErrNotRegistered       = categorize(ErrNotFound, "member is not registered for this tournament")

	ErrSlotConflict         = categorize(ErrConflict, "court is already booked for this time")
	ErrAlreadyRegistered    = categorize(ErrConflict, "member is already registered for this tournament")
	ErrConcurrentUpdate     = categorize(ErrConflict, "record was modified concurrently")
	ErrNoRecurringInstances = categorize(ErrConflict, "no recurring bookings could be created")

	ErrTierNotAllowed        = categorize(ErrPolicyViolation, "membership tier does not allow recurring bookings")
	ErrRecurringRangeTooLong = categorize(ErrPolicyViolation, "recurring date range is too long")
	ErrOutsideOperatingHours = categorize(ErrPolicyViolation, "booking is outside operating hours")
	ErrRegistrationClosed    = categorize(ErrPolicyViolation, "tournament is not open for registration")
	ErrDeadlinePassed        = categorize(ErrPolicyViolation, "registration deadline has passed")
	ErrTournamentFull        = categorize(ErrPolicyViolation, "tournament is full")
	ErrTournamentStarted     = categorize(ErrPolicyViolation, "tournament has already started")
	ErrNotEnoughParticipants = categorize(ErrPolicyViolation, "at least two confirmed participants are required")

	ErrBookingAlreadyCancelled      = categorize(ErrInvalidState, "booking is already cancelled")
	ErrBookingNotPending            = categorize(ErrInvalidState, "booking is not pending")
	ErrTransactionNotPending        = categorize(ErrInvalidState, "transaction is not pending")
	ErrRegistrationAlreadyCancelled = categorize(ErrInvalidState, "registration is already cancelled")
	ErrMatchFinished                = categorize(ErrInvalidState, "match is already finished")
	ErrMatchNotReady                = categorize(ErrInvalidState, "match sides are not decided yet")

	ErrInvalidAmount    = categorize(ErrInvalidInput, "amount must be positive")
	ErrInvalidTimeRange = categorize(ErrInvalidInput, "end time must be after start time")
	ErrInvalidStatus    = categorize(ErrInvalidInput, "unknown status")
	ErrInvalidTier      = categorize(ErrInvalidInput, "unknown membership tier")
)
