package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Service struct {
	doctors  DoctorRepository
	patients PatientRepository
	logger   zerolog.Logger
}

func NewService(doctors DoctorRepository, patients PatientRepository, logger zerolog.Logger) *Service {
	return &Service{doctors: doctors, patients: patients, logger: logger}
}

// -- Doctors --

func (s *Service) CreateDoctor(ctx context.Context, d *Doctor) error {
	if err := validatePerson(d.Name, d.Email); err != nil {
		return err
	}
	if d.Specialization == "" {
		return fmt.Errorf("specialization is required")
	}
	d.Active = true
	if err := s.doctors.Create(ctx, d); err != nil {
		return err
	}
	s.logger.Info().Str("doctor_id", d.ID.String()).Str("name", d.Name).Msg("doctor registered")
	return nil
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	d, err := s.doctors.GetByID(ctx, id)
	if err != nil {
		return nil, ErrDoctorNotFound
	}
	return d, nil
}

func (s *Service) UpdateDoctor(ctx context.Context, d *Doctor) error {
	if err := validatePerson(d.Name, d.Email); err != nil {
		return err
	}
	if _, err := s.doctors.GetByID(ctx, d.ID); err != nil {
		return ErrDoctorNotFound
	}
	return s.doctors.Update(ctx, d)
}

// RemoveDoctor deactivates a doctor. Appointments already booked against the
// doctor are untouched.
func (s *Service) RemoveDoctor(ctx context.Context, id uuid.UUID) error {
	if _, err := s.doctors.GetByID(ctx, id); err != nil {
		return ErrDoctorNotFound
	}
	return s.doctors.Deactivate(ctx, id)
}

func (s *Service) ListDoctors(ctx context.Context, specialization string, limit, offset int) ([]*Doctor, int, error) {
	return s.doctors.List(ctx, specialization, limit, offset)
}

// DoctorExists reports whether an active doctor with the given id is
// registered. The scheduler consults this before computing availability.
func (s *Service) DoctorExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.doctors.Exists(ctx, id)
}

// ActiveDoctorIDs lists the ids of all active doctors.
func (s *Service) ActiveDoctorIDs(ctx context.Context) ([]uuid.UUID, error) {
	return s.doctors.ActiveIDs(ctx)
}

// -- Patients --

func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	if err := validatePerson(p.Name, p.Email); err != nil {
		return err
	}
	if err := s.patients.Create(ctx, p); err != nil {
		return err
	}
	s.logger.Info().Str("patient_id", p.ID.String()).Msg("patient registered")
	return nil
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, ErrPatientNotFound
	}
	return p, nil
}

func (s *Service) UpdatePatient(ctx context.Context, p *Patient) error {
	if err := validatePerson(p.Name, p.Email); err != nil {
		return err
	}
	if _, err := s.patients.GetByID(ctx, p.ID); err != nil {
		return ErrPatientNotFound
	}
	return s.patients.Update(ctx, p)
}

func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, limit, offset)
}

func validatePerson(name, email string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name is required")
	}
	if !strings.Contains(email, "@") {
		return fmt.Errorf("a valid email is required")
	}
	return nil
}
