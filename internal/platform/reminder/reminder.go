// Package reminder runs the daily job that messages patients about tomorrow's
// appointments.
package reminder

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/Supun-Chathuranga/care-connect-pro/internal/domain/scheduling"
	"github.com/Supun-Chathuranga/care-connect-pro/internal/platform/notification"
)

// AppointmentSource lists the occupying appointments the reminder should
// cover for one doctor and day.
type AppointmentSource interface {
	ListForDoctorDay(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*scheduling.Appointment, error)
}

// DoctorSource enumerates the doctors whose appointments are scanned.
type DoctorSource interface {
	ActiveDoctorIDs(ctx context.Context) ([]uuid.UUID, error)
}

type Job struct {
	appointments AppointmentSource
	doctors      DoctorSource
	manager      *notification.Manager
	directory    notification.Directory
	logger       zerolog.Logger

	cron *cron.Cron
	now  func() time.Time
}

func NewJob(appts AppointmentSource, doctors DoctorSource, manager *notification.Manager, directory notification.Directory, logger zerolog.Logger) *Job {
	return &Job{
		appointments: appts,
		doctors:      doctors,
		manager:      manager,
		directory:    directory,
		logger:       logger,
		now:          time.Now,
	}
}

// Start schedules the daily run. The schedule is a standard 5-field cron
// expression, e.g. "0 18 * * *" for 18:00 every day.
func (j *Job) Start(schedule string) error {
	j.cron = cron.New()
	_, err := j.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		j.Run(ctx)
	})
	if err != nil {
		return err
	}
	j.cron.Start()
	j.logger.Info().Str("schedule", schedule).Msg("reminder job scheduled")
	return nil
}

// Stop halts the cron scheduler and waits for a running job to finish.
func (j *Job) Stop() {
	if j.cron != nil {
		<-j.cron.Stop().Done()
	}
}

// Run sends one reminder per appointment happening tomorrow. Returns the
// number of reminders queued.
func (j *Job) Run(ctx context.Context) int {
	tomorrow := j.now().AddDate(0, 0, 1)
	tomorrow = time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 0, 0, 0, 0, time.UTC)

	doctorIDs, err := j.doctors.ActiveDoctorIDs(ctx)
	if err != nil {
		j.logger.Error().Err(err).Msg("reminder run aborted, doctor listing failed")
		return 0
	}

	queued := 0
	for _, doctorID := range doctorIDs {
		appts, err := j.appointments.ListForDoctorDay(ctx, doctorID, tomorrow)
		if err != nil {
			j.logger.Warn().Err(err).Str("doctor_id", doctorID.String()).Msg("skip doctor, appointment listing failed")
			continue
		}
		for _, a := range appts {
			if !a.Status.Occupies() {
				continue
			}
			if j.remind(ctx, a) {
				queued++
			}
		}
	}

	j.logger.Info().Int("queued", queued).Str("date", scheduling.FormatDate(tomorrow)).Msg("reminder run finished")
	return queued
}

func (j *Job) remind(ctx context.Context, a *scheduling.Appointment) bool {
	contact, err := j.directory.PatientContact(ctx, a.PatientID)
	if err != nil || contact.Phone == "" {
		return false
	}
	doctorName, err := j.directory.DoctorName(ctx, a.DoctorID)
	if err != nil {
		return false
	}

	data := map[string]string{
		"patient_name": contact.Name,
		"doctor_name":  doctorName,
		"date":         scheduling.FormatDate(a.Date),
		"time":         a.Time,
	}
	if _, err := j.manager.EnqueueFromTemplate("appointment-reminder", data, contact.Phone); err != nil {
		j.logger.Warn().Err(err).Str("appointment_id", a.ID.String()).Msg("enqueue reminder failed")
		return false
	}
	return true
}
