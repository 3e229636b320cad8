package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Service struct {
	sessions     SessionRepository
	appointments AppointmentRepository
	doctors      DoctorDirectory
	notifier     Notifier
	logger       zerolog.Logger

	now func() time.Time
}

func NewService(sessions SessionRepository, appts AppointmentRepository, doctors DoctorDirectory, notifier Notifier, logger zerolog.Logger) *Service {
	return &Service{
		sessions:     sessions,
		appointments: appts,
		doctors:      doctors,
		notifier:     notifier,
		logger:       logger,
		now:          time.Now,
	}
}

// -- Sessions --

func (s *Service) CreateSession(ctx context.Context, sess *Session) error {
	if sess.DoctorID == uuid.Nil {
		return fmt.Errorf("doctor_id is required")
	}
	if sess.DayOfWeek < 0 || sess.DayOfWeek > 6 {
		return fmt.Errorf("day_of_week must be 0-6")
	}
	start, err := ParseClock(sess.StartTime)
	if err != nil {
		return err
	}
	end, err := ParseClock(sess.EndTime)
	if err != nil {
		return err
	}
	if end <= start {
		return fmt.Errorf("end_time must be after start_time")
	}
	if sess.MaxPatients != nil && *sess.MaxPatients <= 0 {
		return fmt.Errorf("max_patients must be positive")
	}
	if ok, err := s.doctors.Exists(ctx, sess.DoctorID); err != nil {
		return err
	} else if !ok {
		return ErrDoctorNotFound
	}
	sess.Active = true
	return s.sessions.Create(ctx, sess)
}

func (s *Service) GetSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	return s.sessions.GetByID(ctx, id)
}

func (s *Service) UpdateSession(ctx context.Context, sess *Session) error {
	start, err := ParseClock(sess.StartTime)
	if err != nil {
		return err
	}
	end, err := ParseClock(sess.EndTime)
	if err != nil {
		return err
	}
	if end <= start {
		return fmt.Errorf("end_time must be after start_time")
	}
	return s.sessions.Update(ctx, sess)
}

// RemoveSession deactivates a session. Sessions with appointments booked
// under them keep their history; there is no hard delete path.
func (s *Service) RemoveSession(ctx context.Context, id uuid.UUID) error {
	if _, err := s.sessions.GetByID(ctx, id); err != nil {
		return ErrSessionNotFound
	}
	return s.sessions.Deactivate(ctx, id)
}

func (s *Service) ListSessionsByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Session, error) {
	return s.sessions.ListByDoctor(ctx, doctorID)
}

// -- Availability --

// AvailableSlots computes the bookable slots for a doctor on one calendar
// date. A day with no matching active session yields an empty list, not an
// error. Read-only: safe to call concurrently and repeatedly.
func (s *Service) AvailableSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]Slot, error) {
	if ok, err := s.doctors.Exists(ctx, doctorID); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrDoctorNotFound
	}

	sessions, err := s.sessions.ListActiveForDay(ctx, doctorID, int(date.Weekday()))
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return []Slot{}, nil
	}

	appts, err := s.appointments.ListForDoctorDay(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}

	sess := make([]Session, len(sessions))
	for i, p := range sessions {
		sess[i] = *p
	}
	day := make([]Appointment, len(appts))
	for i, p := range appts {
		day[i] = *p
	}

	slots := BuildAvailability(date, sess, day)
	if slots == nil {
		slots = []Slot{}
	}
	return slots, nil
}

// -- Booking --

// Book attempts to create a pending appointment for one slot. The
// availability pre-check narrows the race window but the repository's
// uniqueness guard decides the winner; a conflict surfaces as
// ErrSlotUnavailable and the caller picks another slot. With an idempotency
// key, a replayed request returns the originally created appointment.
func (s *Service) Book(ctx context.Context, req BookingRequest) (*Appointment, error) {
	if req.DoctorID == uuid.Nil {
		return nil, fmt.Errorf("doctor_id is required")
	}
	if req.PatientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	date, err := ParseDate(req.Date)
	if err != nil {
		return nil, err
	}
	if beforeToday(date, s.now()) {
		return nil, ErrPastDate
	}
	if !OnGrid(req.Time) {
		return nil, ErrInvalidTime
	}

	if req.IdempotencyKey != "" {
		if prior, err := s.appointments.GetByIdempotencyKey(ctx, req.IdempotencyKey); err == nil && prior != nil {
			return prior, nil
		}
	}

	slots, err := s.AvailableSlots(ctx, req.DoctorID, date)
	if err != nil {
		return nil, err
	}
	var match *Slot
	for i := range slots {
		if slots[i].Time == req.Time {
			match = &slots[i]
			break
		}
	}
	if match == nil {
		return nil, ErrInvalidTime
	}
	if !match.Available {
		return nil, ErrSlotUnavailable
	}

	appt := &Appointment{
		DoctorID:  req.DoctorID,
		PatientID: req.PatientID,
		SessionID: &match.SessionID,
		Date:      date,
		Time:      req.Time,
		Status:    StatusPending,
	}
	if req.Reason != "" {
		reason := req.Reason
		appt.Reason = &reason
	}
	if req.IdempotencyKey != "" {
		key := req.IdempotencyKey
		appt.IdempotencyKey = &key
	}

	if err := s.appointments.TryInsert(ctx, appt); err != nil {
		if errors.Is(err, ErrSlotTaken) {
			return nil, ErrSlotUnavailable
		}
		return nil, err
	}

	s.logger.Info().
		Str("appointment_id", appt.ID.String()).
		Str("doctor_id", appt.DoctorID.String()).
		Str("date", FormatDate(appt.Date)).
		Str("time", appt.Time).
		Msg("appointment booked")

	if s.notifier != nil {
		s.notifier.AppointmentBooked(ctx, appt)
	}
	return appt, nil
}

// -- Status transitions --

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.appointments.GetByID(ctx, id)
}

// UpdateStatus advances an appointment through the status machine on behalf
// of actorRole. Illegal edges fail with ErrInvalidTransition; legal edges the
// role may not take fail with ErrForbidden.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, to AppointmentStatus, actorRole string) (*Appointment, error) {
	if !to.Valid() {
		return nil, fmt.Errorf("unknown status %q", to)
	}
	appt, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, ErrAppointmentNotFound
	}
	if !CanTransition(appt.Status, to) {
		return nil, ErrInvalidTransition
	}
	if !transitionAllowed(to, actorRole) {
		return nil, ErrForbidden
	}
	if err := s.appointments.UpdateStatus(ctx, id, to); err != nil {
		return nil, err
	}
	appt.Status = to

	s.logger.Info().
		Str("appointment_id", id.String()).
		Str("status", string(to)).
		Str("actor_role", actorRole).
		Msg("appointment status changed")

	if s.notifier != nil {
		s.notifier.AppointmentStatusChanged(ctx, appt)
	}
	return appt, nil
}

func (s *Service) UpdateNotes(ctx context.Context, id uuid.UUID, notes string) (*Appointment, error) {
	appt, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, ErrAppointmentNotFound
	}
	if err := s.appointments.UpdateNotes(ctx, id, notes); err != nil {
		return nil, err
	}
	appt.Notes = &notes
	return appt, nil
}

func (s *Service) ListAppointmentsByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListAppointmentsByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.ListByDoctor(ctx, doctorID, limit, offset)
}
