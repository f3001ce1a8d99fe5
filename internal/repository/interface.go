package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/RaidOuahioune/dms/pkg/models"
)

// ErrNotFound is returned when a record does not exist. The API layer maps
// it to 404; event consumers log and drop.
var ErrNotFound = errors.New("record not found")

// DocumentStore is the keyed persistence boundary for documents.
type DocumentStore interface {
	// Save inserts a new document.
	Save(ctx context.Context, doc *models.Document) error
	// Get retrieves a document by id.
	Get(ctx context.Context, id uuid.UUID) (*models.Document, error)
	// List returns all documents.
	List(ctx context.Context) ([]*models.Document, error)
	// ListByPatient returns the documents referencing a patient.
	ListByPatient(ctx context.Context, patientID string) ([]*models.Document, error)
	// ListByStatus returns the documents in a given status.
	ListByStatus(ctx context.Context, status models.DocumentStatus) ([]*models.Document, error)
	// Update persists changes to an existing document.
	Update(ctx context.Context, doc *models.Document) error
	// Delete removes a document.
	Delete(ctx context.Context, id uuid.UUID) error
}

// WorkflowStore is the keyed persistence boundary for workflow instances.
type WorkflowStore interface {
	// Save inserts or updates an instance.
	Save(ctx context.Context, wf *models.WorkflowInstance) error
	// Get retrieves an instance by its own id.
	Get(ctx context.Context, id uuid.UUID) (*models.WorkflowInstance, error)
	// GetByDocument retrieves the instance tracking a document.
	GetByDocument(ctx context.Context, documentID uuid.UUID) (*models.WorkflowInstance, error)
	// ListByStatus returns the instances currently in a given status.
	ListByStatus(ctx context.Context, status models.WorkflowStatus) ([]*models.WorkflowInstance, error)
	// Delete removes an instance.
	Delete(ctx context.Context, id uuid.UUID) error
}

// PatientStore is the keyed persistence boundary for patients.
type PatientStore interface {
	Save(ctx context.Context, p *models.Patient) error
	Get(ctx context.Context, id uuid.UUID) (*models.Patient, error)
	List(ctx context.Context) ([]*models.Patient, error)
	Update(ctx context.Context, p *models.Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
}
