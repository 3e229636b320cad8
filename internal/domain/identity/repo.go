package identity

import (
	"context"

	"github.com/google/uuid"
)

type DoctorRepository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	Update(ctx context.Context, d *Doctor) error
	// Deactivate hides a doctor from booking without touching history.
	Deactivate(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, specialization string, limit, offset int) ([]*Doctor, int, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	ActiveIDs(ctx context.Context) ([]uuid.UUID, error)
}

type PatientRepository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
}
