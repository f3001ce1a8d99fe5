package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RaidOuahioune/dms/pkg/models"
)

// PostgresWorkflowStore is a PostgreSQL implementation of WorkflowStore.
type PostgresWorkflowStore struct {
	db *pgxpool.Pool
}

// NewPostgresWorkflowStore creates a new PostgresWorkflowStore.
func NewPostgresWorkflowStore(db *pgxpool.Pool) *PostgresWorkflowStore {
	return &PostgresWorkflowStore{db: db}
}

const workflowColumns = `id, document_id, workflow_type, current_status, created_at, updated_at`

// Save inserts or updates an instance by id.
func (s *PostgresWorkflowStore) Save(ctx context.Context, wf *models.WorkflowInstance) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO workflow_instances (`+workflowColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET
		   current_status = EXCLUDED.current_status,
		   updated_at = EXCLUDED.updated_at`,
		wf.ID, wf.DocumentID, wf.WorkflowType, wf.CurrentStatus, wf.CreatedAt, wf.UpdatedAt)
	return err
}

// Get retrieves an instance by its own id.
func (s *PostgresWorkflowStore) Get(ctx context.Context, id uuid.UUID) (*models.WorkflowInstance, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+workflowColumns+` FROM workflow_instances WHERE id = $1`, id)
	return scanWorkflow(row)
}

// GetByDocument retrieves the instance tracking a document. If more than
// one exists the most recently created wins.
func (s *PostgresWorkflowStore) GetByDocument(ctx context.Context, documentID uuid.UUID) (*models.WorkflowInstance, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+workflowColumns+` FROM workflow_instances
		 WHERE document_id = $1 ORDER BY created_at DESC LIMIT 1`, documentID)
	return scanWorkflow(row)
}

// ListByStatus returns the instances currently in a given status.
func (s *PostgresWorkflowStore) ListByStatus(ctx context.Context, status models.WorkflowStatus) ([]*models.WorkflowInstance, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+workflowColumns+` FROM workflow_instances
		 WHERE current_status = $1 ORDER BY created_at DESC`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var wfs []*models.WorkflowInstance
	for rows.Next() {
		wf, err := scanWorkflow(rows)
		if err != nil {
			return nil, err
		}
		wfs = append(wfs, wf)
	}
	return wfs, rows.Err()
}

// Delete removes an instance.
func (s *PostgresWorkflowStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM workflow_instances WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanWorkflow(row pgx.Row) (*models.WorkflowInstance, error) {
	var wf models.WorkflowInstance
	err := row.Scan(&wf.ID, &wf.DocumentID, &wf.WorkflowType, &wf.CurrentStatus,
		&wf.CreatedAt, &wf.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &wf, nil
}
