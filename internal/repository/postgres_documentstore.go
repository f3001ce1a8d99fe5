package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RaidOuahioune/dms/pkg/models"
)

// PostgresDocumentStore is a PostgreSQL implementation of DocumentStore.
type PostgresDocumentStore struct {
	db *pgxpool.Pool
}

// NewPostgresDocumentStore creates a new PostgresDocumentStore.
func NewPostgresDocumentStore(db *pgxpool.Pool) *PostgresDocumentStore {
	return &PostgresDocumentStore{db: db}
}

const documentColumns = `id, title, patient_id, diagnosis, description, doctor_ids,
	status, procedure_date, created_at, updated_at, status_updated_at`

// Save inserts a new document.
func (s *PostgresDocumentStore) Save(ctx context.Context, doc *models.Document) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO documents (`+documentColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		doc.ID, doc.Title, doc.PatientID, doc.Diagnosis, doc.Description, doc.DoctorIDs,
		doc.Status, doc.ProcedureDate, doc.CreatedAt, doc.UpdatedAt, doc.StatusUpdatedAt)
	return err
}

// Get retrieves a document by id.
func (s *PostgresDocumentStore) Get(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	row := s.db.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id)
	return scanDocument(row)
}

// List returns all documents, newest first.
func (s *PostgresDocumentStore) List(ctx context.Context) ([]*models.Document, error) {
	rows, err := s.db.Query(ctx, `SELECT `+documentColumns+` FROM documents ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDocuments(rows)
}

// ListByPatient returns the documents referencing a patient.
func (s *PostgresDocumentStore) ListByPatient(ctx context.Context, patientID string) ([]*models.Document, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE patient_id = $1 ORDER BY created_at DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDocuments(rows)
}

// ListByStatus returns the documents in a given status.
func (s *PostgresDocumentStore) ListByStatus(ctx context.Context, status models.DocumentStatus) ([]*models.Document, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE status = $1 ORDER BY created_at DESC`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDocuments(rows)
}

// Update persists changes to an existing document.
func (s *PostgresDocumentStore) Update(ctx context.Context, doc *models.Document) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE documents SET title = $1, patient_id = $2, diagnosis = $3, description = $4,
		 doctor_ids = $5, status = $6, procedure_date = $7, updated_at = $8, status_updated_at = $9
		 WHERE id = $10`,
		doc.Title, doc.PatientID, doc.Diagnosis, doc.Description,
		doc.DoctorIDs, doc.Status, doc.ProcedureDate, doc.UpdatedAt, doc.StatusUpdatedAt,
		doc.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a document.
func (s *PostgresDocumentStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanDocument(row pgx.Row) (*models.Document, error) {
	var doc models.Document
	err := row.Scan(&doc.ID, &doc.Title, &doc.PatientID, &doc.Diagnosis, &doc.Description,
		&doc.DoctorIDs, &doc.Status, &doc.ProcedureDate, &doc.CreatedAt, &doc.UpdatedAt,
		&doc.StatusUpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func scanDocuments(rows pgx.Rows) ([]*models.Document, error) {
	var docs []*models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}
