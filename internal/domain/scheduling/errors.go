package scheduling

import "errors"

// Common errors returned by the scheduling and booking APIs.
var (
	ErrDoctorNotFound      = errors.New("doctor not found")
	ErrSessionNotFound     = errors.New("session not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrPastDate            = errors.New("date is in the past")
	ErrInvalidTime         = errors.New("time does not match an offered slot")
	ErrSlotUnavailable     = errors.New("slot is no longer available")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrForbidden           = errors.New("role is not permitted to perform this transition")
	ErrSessionReferenced   = errors.New("session is referenced by appointments")

	// ErrSlotTaken is the repository-level conflict signal raised when the
	// store's uniqueness guard rejects an insert. The service maps it to
	// ErrSlotUnavailable.
	ErrSlotTaken = errors.New("slot already taken")
)
