package reminder

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Supun-Chathuranga/care-connect-pro/internal/domain/scheduling"
	"github.com/Supun-Chathuranga/care-connect-pro/internal/platform/notification"
)

type stubAppointments struct {
	byDoctor map[uuid.UUID][]*scheduling.Appointment
}

func (s *stubAppointments) ListForDoctorDay(_ context.Context, doctorID uuid.UUID, _ time.Time) ([]*scheduling.Appointment, error) {
	return s.byDoctor[doctorID], nil
}

type stubDoctors struct {
	ids []uuid.UUID
}

func (s *stubDoctors) ActiveDoctorIDs(context.Context) ([]uuid.UUID, error) {
	return s.ids, nil
}

type stubDirectory struct {
	contacts map[uuid.UUID]*notification.Contact
	names    map[uuid.UUID]string
}

func (s *stubDirectory) PatientContact(_ context.Context, id uuid.UUID) (*notification.Contact, error) {
	c, ok := s.contacts[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return c, nil
}

func (s *stubDirectory) DoctorName(_ context.Context, id uuid.UUID) (string, error) {
	name, ok := s.names[id]
	if !ok {
		return "", fmt.Errorf("not found")
	}
	return name, nil
}

func TestReminderRunQueuesTomorrowsAppointments(t *testing.T) {
	doctorID := uuid.New()
	reachable := uuid.New()
	phoneless := uuid.New()

	appts := &stubAppointments{byDoctor: map[uuid.UUID][]*scheduling.Appointment{
		doctorID: {
			{ID: uuid.New(), DoctorID: doctorID, PatientID: reachable, Time: "09:00", Status: scheduling.StatusConfirmed},
			{ID: uuid.New(), DoctorID: doctorID, PatientID: reachable, Time: "09:30", Status: scheduling.StatusPending},
			// Cancelled appointments get no reminder.
			{ID: uuid.New(), DoctorID: doctorID, PatientID: reachable, Time: "10:00", Status: scheduling.StatusCancelled},
			// No phone number on file.
			{ID: uuid.New(), DoctorID: doctorID, PatientID: phoneless, Time: "10:30", Status: scheduling.StatusConfirmed},
		},
	}}
	dir := &stubDirectory{
		contacts: map[uuid.UUID]*notification.Contact{
			reachable: {Name: "Nimal", Phone: "+94771234567"},
			phoneless: {Name: "Kamal"},
		},
		names: map[uuid.UUID]string{doctorID: "Dr. Perera"},
	}

	sms := &notification.MockSMSSender{}
	manager := notification.NewManager(&notification.MockEmailSender{}, sms, notification.NewTemplateEngine(), zerolog.Nop())
	job := NewJob(appts, &stubDoctors{ids: []uuid.UUID{doctorID}}, manager, dir, zerolog.Nop())
	job.now = func() time.Time { return time.Date(2026, 9, 6, 12, 0, 0, 0, time.UTC) }

	if queued := job.Run(context.Background()); queued != 2 {
		t.Fatalf("queued %d reminders, want 2", queued)
	}
}

func TestReminderRunNoDoctors(t *testing.T) {
	manager := notification.NewManager(&notification.MockEmailSender{}, &notification.MockSMSSender{}, notification.NewTemplateEngine(), zerolog.Nop())
	job := NewJob(&stubAppointments{}, &stubDoctors{}, manager, &stubDirectory{}, zerolog.Nop())

	if queued := job.Run(context.Background()); queued != 0 {
		t.Fatalf("queued %d reminders, want 0", queued)
	}
}
