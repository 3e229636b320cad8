package scheduling

import (
	"time"

	"github.com/google/uuid"
)

// Session maps to the doctor_session table: a recurring weekly availability
// rule for one doctor. Inactive sessions stay in the table for history but
// never produce slots.
type Session struct {
	ID          uuid.UUID `db:"id" json:"id"`
	DoctorID    uuid.UUID `db:"doctor_id" json:"doctor_id"`
	DayOfWeek   int       `db:"day_of_week" json:"day_of_week"` // 0 = Sunday .. 6 = Saturday
	StartTime   string    `db:"start_time" json:"start_time"`   // "HH:MM"
	EndTime     string    `db:"end_time" json:"end_time"`       // "HH:MM", strictly after StartTime
	MaxPatients *int      `db:"max_patients" json:"max_patients,omitempty"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusCompleted AppointmentStatus = "completed"
)

// Valid reports whether s is a known status.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed out of s.
func (s AppointmentStatus) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// Occupies reports whether an appointment in this status holds its slot.
// Cancelled and completed appointments free the slot.
func (s AppointmentStatus) Occupies() bool {
	return s == StatusPending || s == StatusConfirmed
}

// CanTransition reports whether from -> to is an edge of the status machine.
func CanTransition(from, to AppointmentStatus) bool {
	switch from {
	case StatusPending:
		return to == StatusConfirmed || to == StatusCancelled
	case StatusConfirmed:
		return to == StatusCompleted || to == StatusCancelled
	}
	return false
}

// Actor roles recognised by the status machine.
const (
	RoleAdmin   = "admin"
	RoleDoctor  = "doctor"
	RolePatient = "patient"
)

// transitionAllowed checks the role gate for a legal transition: only a
// doctor or admin may confirm or complete; anyone involved may cancel.
func transitionAllowed(to AppointmentStatus, role string) bool {
	switch to {
	case StatusConfirmed, StatusCompleted:
		return role == RoleDoctor || role == RoleAdmin
	case StatusCancelled:
		return role == RolePatient || role == RoleDoctor || role == RoleAdmin
	}
	return false
}

// Appointment maps to the appointment table: a single booked visit. Rows are
// never deleted; cancellation is a status change.
type Appointment struct {
	ID             uuid.UUID         `db:"id" json:"id"`
	DoctorID       uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	PatientID      uuid.UUID         `db:"patient_id" json:"patient_id"`
	SessionID      *uuid.UUID        `db:"session_id" json:"session_id,omitempty"`
	Date           time.Time         `db:"date" json:"date"`
	Time           string            `db:"time" json:"time"` // "HH:MM" on the slot grid
	Status         AppointmentStatus `db:"status" json:"status"`
	Reason         *string           `db:"reason" json:"reason,omitempty"`
	Notes          *string           `db:"notes" json:"notes,omitempty"`
	IdempotencyKey *string           `db:"idempotency_key" json:"-"`
	CreatedAt      time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time         `db:"updated_at" json:"updated_at"`
}

// Slot is one bookable time point offered to a patient for a specific date.
// Slots are derived from sessions on demand and never persisted.
type Slot struct {
	Time      string    `json:"time"` // "HH:MM"
	SessionID uuid.UUID `json:"session_id"`
	Available bool      `json:"available"`
}

// BookingRequest carries a patient's attempt to book a specific slot.
type BookingRequest struct {
	DoctorID       uuid.UUID `json:"doctor_id"`
	PatientID      uuid.UUID `json:"patient_id"`
	Date           string    `json:"date"` // "YYYY-MM-DD"
	Time           string    `json:"time"` // "HH:MM"
	Reason         string    `json:"reason,omitempty"`
	IdempotencyKey string    `json:"idempotency_key,omitempty"`
}
