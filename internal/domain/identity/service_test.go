package identity

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// -- Mock Repositories --

type mockDoctorRepo struct {
	doctors map[uuid.UUID]*Doctor
}

func newMockDoctorRepo() *mockDoctorRepo {
	return &mockDoctorRepo{doctors: make(map[uuid.UUID]*Doctor)}
}

func (m *mockDoctorRepo) Create(_ context.Context, d *Doctor) error {
	for _, other := range m.doctors {
		if other.Email == d.Email {
			return ErrDuplicateEmail
		}
	}
	d.ID = uuid.New()
	d.CreatedAt = time.Now()
	d.UpdatedAt = time.Now()
	m.doctors[d.ID] = d
	return nil
}

func (m *mockDoctorRepo) GetByID(_ context.Context, id uuid.UUID) (*Doctor, error) {
	d, ok := m.doctors[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return d, nil
}

func (m *mockDoctorRepo) Update(_ context.Context, d *Doctor) error {
	m.doctors[d.ID] = d
	return nil
}

func (m *mockDoctorRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	if d, ok := m.doctors[id]; ok {
		d.Active = false
	}
	return nil
}

func (m *mockDoctorRepo) List(_ context.Context, specialization string, limit, offset int) ([]*Doctor, int, error) {
	var out []*Doctor
	for _, d := range m.doctors {
		if d.Active && (specialization == "" || d.Specialization == specialization) {
			out = append(out, d)
		}
	}
	return out, len(out), nil
}

func (m *mockDoctorRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	d, ok := m.doctors[id]
	return ok && d.Active, nil
}

func (m *mockDoctorRepo) ActiveIDs(_ context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for id, d := range m.doctors {
		if d.Active {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type mockPatientRepo struct {
	patients map[uuid.UUID]*Patient
}

func newMockPatientRepo() *mockPatientRepo {
	return &mockPatientRepo{patients: make(map[uuid.UUID]*Patient)}
}

func (m *mockPatientRepo) Create(_ context.Context, p *Patient) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	m.patients[p.ID] = p
	return nil
}

func (m *mockPatientRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return p, nil
}

func (m *mockPatientRepo) Update(_ context.Context, p *Patient) error {
	m.patients[p.ID] = p
	return nil
}

func (m *mockPatientRepo) List(_ context.Context, limit, offset int) ([]*Patient, int, error) {
	var out []*Patient
	for _, p := range m.patients {
		out = append(out, p)
	}
	return out, len(out), nil
}

func newTestService() (*Service, *mockDoctorRepo, *mockPatientRepo) {
	doctors := newMockDoctorRepo()
	patients := newMockPatientRepo()
	return NewService(doctors, patients, zerolog.Nop()), doctors, patients
}

// -- Doctors --

func TestCreateDoctor(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	d := &Doctor{Name: "Dr. Perera", Specialization: "Cardiology", Email: "perera@clinic.lk"}
	if err := svc.CreateDoctor(ctx, d); err != nil {
		t.Fatalf("CreateDoctor: %v", err)
	}
	if !d.Active {
		t.Error("new doctors start active")
	}

	got, err := svc.GetDoctor(ctx, d.ID)
	if err != nil {
		t.Fatalf("GetDoctor: %v", err)
	}
	if got.Name != "Dr. Perera" {
		t.Errorf("got name %q", got.Name)
	}
}

func TestCreateDoctorValidation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	bad := []*Doctor{
		{Name: "", Specialization: "Cardiology", Email: "a@b.c"},
		{Name: "Dr. X", Specialization: "", Email: "a@b.c"},
		{Name: "Dr. X", Specialization: "Cardiology", Email: "not-an-email"},
	}
	for i, d := range bad {
		if err := svc.CreateDoctor(ctx, d); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func TestCreateDoctorDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	first := &Doctor{Name: "Dr. A", Specialization: "ENT", Email: "same@clinic.lk"}
	if err := svc.CreateDoctor(ctx, first); err != nil {
		t.Fatalf("first create: %v", err)
	}
	second := &Doctor{Name: "Dr. B", Specialization: "ENT", Email: "same@clinic.lk"}
	if err := svc.CreateDoctor(ctx, second); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("got %v, want ErrDuplicateEmail", err)
	}
}

func TestRemoveDoctorHidesFromBooking(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	d := &Doctor{Name: "Dr. C", Specialization: "GP", Email: "c@clinic.lk"}
	if err := svc.CreateDoctor(ctx, d); err != nil {
		t.Fatalf("CreateDoctor: %v", err)
	}
	if err := svc.RemoveDoctor(ctx, d.ID); err != nil {
		t.Fatalf("RemoveDoctor: %v", err)
	}

	ok, err := svc.DoctorExists(ctx, d.ID)
	if err != nil {
		t.Fatalf("DoctorExists: %v", err)
	}
	if ok {
		t.Error("deactivated doctor should not exist for booking")
	}

	ids, err := svc.ActiveDoctorIDs(ctx)
	if err != nil {
		t.Fatalf("ActiveDoctorIDs: %v", err)
	}
	for _, id := range ids {
		if id == d.ID {
			t.Error("deactivated doctor listed as active")
		}
	}
}

// -- Patients --

func TestCreateAndUpdatePatient(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	p := &Patient{Name: "Nimal", Email: "nimal@example.com"}
	if err := svc.CreatePatient(ctx, p); err != nil {
		t.Fatalf("CreatePatient: %v", err)
	}

	p.Name = "Nimal Silva"
	if err := svc.UpdatePatient(ctx, p); err != nil {
		t.Fatalf("UpdatePatient: %v", err)
	}

	got, err := svc.GetPatient(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPatient: %v", err)
	}
	if got.Name != "Nimal Silva" {
		t.Errorf("got name %q", got.Name)
	}
}

func TestUpdatePatientUnknown(t *testing.T) {
	svc, _, _ := newTestService()
	p := &Patient{ID: uuid.New(), Name: "Ghost", Email: "g@example.com"}
	if err := svc.UpdatePatient(context.Background(), p); !errors.Is(err, ErrPatientNotFound) {
		t.Fatalf("got %v, want ErrPatientNotFound", err)
	}
}
