package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type SessionRepository interface {
	Create(ctx context.Context, s *Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*Session, error)
	Update(ctx context.Context, s *Session) error
	// Deactivate flips the active flag instead of deleting; sessions
	// referenced by appointments are never removed.
	Deactivate(ctx context.Context, id uuid.UUID) error
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Session, error)
	// ListActiveForDay returns the doctor's active sessions whose
	// day_of_week matches weekday.
	ListActiveForDay(ctx context.Context, doctorID uuid.UUID, weekday int) ([]*Session, error)
}

type AppointmentRepository interface {
	// TryInsert persists a new appointment and returns ErrSlotTaken when
	// the store's uniqueness guard on (doctor_id, date, time) over
	// occupying statuses rejects the row. The guard, not any prior read,
	// is the authoritative conflict signal.
	TryInsert(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*Appointment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status AppointmentStatus) error
	UpdateNotes(ctx context.Context, id uuid.UUID, notes string) error
	ListForDoctorDay(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*Appointment, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	CountBySession(ctx context.Context, sessionID uuid.UUID) (int, error)
}

// DoctorDirectory is the slice of the identity domain the scheduler needs:
// just enough to reject bookings against unknown doctors.
type DoctorDirectory interface {
	Exists(ctx context.Context, doctorID uuid.UUID) (bool, error)
}

// Notifier receives best-effort booking notifications. Implementations must
// not block; failures are the notifier's problem, never the booking's.
type Notifier interface {
	AppointmentBooked(ctx context.Context, a *Appointment)
	AppointmentStatusChanged(ctx context.Context, a *Appointment)
}
