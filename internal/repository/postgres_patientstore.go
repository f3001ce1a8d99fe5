package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RaidOuahioune/dms/pkg/models"
)

// PostgresPatientStore is a PostgreSQL implementation of PatientStore.
type PostgresPatientStore struct {
	db *pgxpool.Pool
}

// NewPostgresPatientStore creates a new PostgresPatientStore.
func NewPostgresPatientStore(db *pgxpool.Pool) *PostgresPatientStore {
	return &PostgresPatientStore{db: db}
}

func (s *PostgresPatientStore) Save(ctx context.Context, p *models.Patient) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO patients (id, name, age, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.Name, p.Age, p.CreatedAt, p.UpdatedAt)
	return err
}

func (s *PostgresPatientStore) Get(ctx context.Context, id uuid.UUID) (*models.Patient, error) {
	var p models.Patient
	err := s.db.QueryRow(ctx,
		`SELECT id, name, age, created_at, updated_at FROM patients WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Age, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostgresPatientStore) List(ctx context.Context) ([]*models.Patient, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, name, age, created_at, updated_at FROM patients ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var patients []*models.Patient
	for rows.Next() {
		var p models.Patient
		if err := rows.Scan(&p.ID, &p.Name, &p.Age, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		patients = append(patients, &p)
	}
	return patients, rows.Err()
}

func (s *PostgresPatientStore) Update(ctx context.Context, p *models.Patient) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE patients SET name = $1, age = $2, updated_at = $3 WHERE id = $4`,
		p.Name, p.Age, p.UpdatedAt, p.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresPatientStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
