package notification

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Supun-Chathuranga/care-connect-pro/internal/domain/scheduling"
)

// Contact is the delivery address book entry for one person.
type Contact struct {
	Name  string
	Email string
	Phone string
}

// Directory resolves the people referenced by an appointment. The identity
// domain provides the implementation; main wires the adapter.
type Directory interface {
	PatientContact(ctx context.Context, patientID uuid.UUID) (*Contact, error)
	DoctorName(ctx context.Context, doctorID uuid.UUID) (string, error)
}

// BookingNotifier turns appointment events into queued patient messages. All
// failures are logged and swallowed: messaging never fails a booking.
type BookingNotifier struct {
	manager   *Manager
	directory Directory
	logger    zerolog.Logger
}

func NewBookingNotifier(manager *Manager, directory Directory, logger zerolog.Logger) *BookingNotifier {
	return &BookingNotifier{manager: manager, directory: directory, logger: logger}
}

var statusTemplates = map[scheduling.AppointmentStatus]string{
	scheduling.StatusPending:   "appointment-booked",
	scheduling.StatusConfirmed: "appointment-confirmed",
	scheduling.StatusCancelled: "appointment-cancelled",
}

func (n *BookingNotifier) AppointmentBooked(ctx context.Context, a *scheduling.Appointment) {
	n.send(ctx, a, "appointment-booked")
}

func (n *BookingNotifier) AppointmentStatusChanged(ctx context.Context, a *scheduling.Appointment) {
	tpl, ok := statusTemplates[a.Status]
	if !ok || a.Status == scheduling.StatusPending {
		// Completion needs no message.
		return
	}
	n.send(ctx, a, tpl)
}

func (n *BookingNotifier) send(ctx context.Context, a *scheduling.Appointment, templateID string) {
	contact, err := n.directory.PatientContact(ctx, a.PatientID)
	if err != nil {
		n.logger.Warn().Err(err).Str("patient_id", a.PatientID.String()).Msg("skip notification, contact lookup failed")
		return
	}
	if contact.Phone == "" {
		return
	}
	doctorName, err := n.directory.DoctorName(ctx, a.DoctorID)
	if err != nil {
		n.logger.Warn().Err(err).Str("doctor_id", a.DoctorID.String()).Msg("skip notification, doctor lookup failed")
		return
	}

	data := map[string]string{
		"patient_name": contact.Name,
		"doctor_name":  doctorName,
		"date":         scheduling.FormatDate(a.Date),
		"time":         a.Time,
	}
	if _, err := n.manager.EnqueueFromTemplate(templateID, data, contact.Phone); err != nil {
		n.logger.Warn().Err(err).Str("template", templateID).Msg("enqueue notification failed")
	}
}
