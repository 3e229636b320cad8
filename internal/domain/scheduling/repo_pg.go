package scheduling

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// slotGuardConstraint is the partial unique index on
// (doctor_id, date, time) over occupying statuses. Its violation is the
// authoritative double-booking signal.
const slotGuardConstraint = "appointment_slot_guard"

// =========== Session Repository ===========

type sessionRepoPG struct{ pool *pgxpool.Pool }

func NewSessionRepoPG(pool *pgxpool.Pool) SessionRepository { return &sessionRepoPG{pool: pool} }

const sessCols = `id, doctor_id, day_of_week, start_time, end_time, max_patients, active, created_at, updated_at`

func scanSession(row pgx.Row) (*Session, error) {
	var s Session
	err := row.Scan(&s.ID, &s.DoctorID, &s.DayOfWeek, &s.StartTime, &s.EndTime,
		&s.MaxPatients, &s.Active, &s.CreatedAt, &s.UpdatedAt)
	return &s, err
}

func (r *sessionRepoPG) Create(ctx context.Context, s *Session) error {
	s.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO doctor_session (id, doctor_id, day_of_week, start_time, end_time, max_patients, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		s.ID, s.DoctorID, s.DayOfWeek, s.StartTime, s.EndTime, s.MaxPatients, s.Active)
	return err
}

func (r *sessionRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Session, error) {
	return scanSession(r.pool.QueryRow(ctx, `SELECT `+sessCols+` FROM doctor_session WHERE id = $1`, id))
}

func (r *sessionRepoPG) Update(ctx context.Context, s *Session) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE doctor_session SET day_of_week=$2, start_time=$3, end_time=$4,
			max_patients=$5, active=$6, updated_at=NOW()
		WHERE id = $1`,
		s.ID, s.DayOfWeek, s.StartTime, s.EndTime, s.MaxPatients, s.Active)
	return err
}

func (r *sessionRepoPG) Deactivate(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE doctor_session SET active=false, updated_at=NOW() WHERE id = $1`, id)
	return err
}

func (r *sessionRepoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Session, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+sessCols+` FROM doctor_session
		WHERE doctor_id = $1 ORDER BY day_of_week, start_time`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSessions(rows)
}

func (r *sessionRepoPG) ListActiveForDay(ctx context.Context, doctorID uuid.UUID, weekday int) ([]*Session, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+sessCols+` FROM doctor_session
		WHERE doctor_id = $1 AND day_of_week = $2 AND active ORDER BY start_time`, doctorID, weekday)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSessions(rows)
}

func collectSessions(rows pgx.Rows) ([]*Session, error) {
	var items []*Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

// =========== Appointment Repository ===========

type appointmentRepoPG struct{ pool *pgxpool.Pool }

func NewAppointmentRepoPG(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepoPG{pool: pool}
}

const apptCols = `id, doctor_id, patient_id, session_id, date, "time", status, reason, notes, idempotency_key, created_at, updated_at`

func scanAppt(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.DoctorID, &a.PatientID, &a.SessionID, &a.Date, &a.Time,
		&a.Status, &a.Reason, &a.Notes, &a.IdempotencyKey, &a.CreatedAt, &a.UpdatedAt)
	return &a, err
}

func (r *appointmentRepoPG) TryInsert(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	err := r.pool.QueryRow(ctx, `
		INSERT INTO appointment (id, doctor_id, patient_id, session_id, date, "time", status, reason, idempotency_key)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING created_at, updated_at`,
		a.ID, a.DoctorID, a.PatientID, a.SessionID, a.Date, a.Time, a.Status, a.Reason, a.IdempotencyKey,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == slotGuardConstraint {
			return ErrSlotTaken
		}
		return err
	}
	return nil
}

func (r *appointmentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scanAppt(r.pool.QueryRow(ctx, `SELECT `+apptCols+` FROM appointment WHERE id = $1`, id))
}

func (r *appointmentRepoPG) GetByIdempotencyKey(ctx context.Context, key string) (*Appointment, error) {
	a, err := scanAppt(r.pool.QueryRow(ctx, `SELECT `+apptCols+` FROM appointment WHERE idempotency_key = $1`, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

func (r *appointmentRepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status AppointmentStatus) error {
	_, err := r.pool.Exec(ctx, `UPDATE appointment SET status=$2, updated_at=NOW() WHERE id = $1`, id, status)
	return err
}

func (r *appointmentRepoPG) UpdateNotes(ctx context.Context, id uuid.UUID, notes string) error {
	_, err := r.pool.Exec(ctx, `UPDATE appointment SET notes=$2, updated_at=NOW() WHERE id = $1`, id, notes)
	return err
}

func (r *appointmentRepoPG) ListForDoctorDay(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*Appointment, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+apptCols+` FROM appointment
		WHERE doctor_id = $1 AND date = $2 ORDER BY "time"`, doctorID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAppts(rows)
}

func (r *appointmentRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM appointment WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+apptCols+` FROM appointment
		WHERE patient_id = $1 ORDER BY date DESC, "time" DESC LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := collectAppts(rows)
	return items, total, err
}

func (r *appointmentRepoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM appointment WHERE doctor_id = $1`, doctorID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+apptCols+` FROM appointment
		WHERE doctor_id = $1 ORDER BY date DESC, "time" DESC LIMIT $2 OFFSET $3`, doctorID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := collectAppts(rows)
	return items, total, err
}

func (r *appointmentRepoPG) CountBySession(ctx context.Context, sessionID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM appointment WHERE session_id = $1`, sessionID).Scan(&n)
	return n, err
}

func collectAppts(rows pgx.Rows) ([]*Appointment, error) {
	var items []*Appointment
	for rows.Next() {
		a, err := scanAppt(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}
