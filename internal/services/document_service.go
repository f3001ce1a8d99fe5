package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/RaidOuahioune/dms/internal/events"
	"github.com/RaidOuahioune/dms/internal/repository"
	"github.com/RaidOuahioune/dms/pkg/models"
)

// ErrInvalidTransition is returned when a manual status update requests a
// jump the document-side table forbids. Only the HTTP surface sees it;
// the projector writes statuses unconditionally.
var ErrInvalidTransition = errors.New("invalid status transition")

// DocumentRequest carries the writable document fields for create and
// update calls.
type DocumentRequest struct {
	Title         string                `json:"title"`
	PatientID     string                `json:"patientId,omitempty"`
	Diagnosis     string                `json:"diagnosis,omitempty"`
	Description   string                `json:"description,omitempty"`
	DoctorIDs     string                `json:"doctorIds,omitempty"`
	Content       string                `json:"content,omitempty"`
	ProcedureDate *time.Time            `json:"procedureDate,omitempty"`
	Status        models.DocumentStatus `json:"status,omitempty"`
}

// DocumentService implements the documents CRUD surface and the publish
// side of the document lifecycle events.
type DocumentService struct {
	store  repository.DocumentStore
	bus    events.Bus
	logger *slog.Logger
}

// NewDocumentService creates a DocumentService.
func NewDocumentService(store repository.DocumentStore, bus events.Bus, logger *slog.Logger) *DocumentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentService{store: store, bus: bus, logger: logger}
}

// List returns all documents.
func (s *DocumentService) List(ctx context.Context) ([]*models.Document, error) {
	return s.store.List(ctx)
}

// Get returns one document by id.
func (s *DocumentService) Get(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	return s.store.Get(ctx, id)
}

// ListByPatient returns the documents referencing a patient.
func (s *DocumentService) ListByPatient(ctx context.Context, patientID string) ([]*models.Document, error) {
	return s.store.ListByPatient(ctx, patientID)
}

// ListByDoctor returns the documents whose doctor list contains the id.
func (s *DocumentService) ListByDoctor(ctx context.Context, doctorID string) ([]*models.Document, error) {
	docs, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []*models.Document
	for _, doc := range docs {
		for _, d := range strings.Split(doc.DoctorIDs, ",") {
			if strings.TrimSpace(d) == doctorID {
				out = append(out, doc)
				break
			}
		}
	}
	return out, nil
}

// ListByStatus returns the documents in a given status.
func (s *DocumentService) ListByStatus(ctx context.Context, status models.DocumentStatus) ([]*models.Document, error) {
	return s.store.ListByStatus(ctx, status)
}

// Create stores a new document and starts its workflow by publishing
// document-created, or document-uploaded when the request carries file
// content. The content presence is what distinguishes the two lifecycles.
func (s *DocumentService) Create(ctx context.Context, req DocumentRequest) (*models.Document, error) {
	isUpload := req.Content != ""

	now := time.Now().UTC()
	doc := &models.Document{
		ID:              uuid.New(),
		Title:           req.Title,
		PatientID:       req.PatientID,
		Diagnosis:       req.Diagnosis,
		Description:     req.Description,
		DoctorIDs:       req.DoctorIDs,
		ProcedureDate:   req.ProcedureDate,
		Status:          models.DocPending,
		CreatedAt:       now,
		UpdatedAt:       now,
		StatusUpdatedAt: now,
	}
	if req.Status != "" {
		doc.Status = req.Status
	}
	if isUpload {
		doc.Description = req.Content
	}

	if err := s.store.Save(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}

	topic := events.TopicDocumentCreated
	if isUpload {
		topic = events.TopicDocumentUploaded
	}
	if err := s.publishSummary(ctx, topic, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Upload stores an uploaded file's extracted text as a new document and
// follows the upload lifecycle. Text extraction from the file format is a
// collaborator concern; the bytes arriving here are already text.
func (s *DocumentService) Upload(ctx context.Context, filename, content, patientID, doctorID, diagnosis string) (*models.Document, error) {
	return s.Create(ctx, DocumentRequest{
		Title:     "Medical Document - " + filename,
		PatientID: patientID,
		DoctorIDs: doctorID,
		Diagnosis: diagnosis,
		Content:   content,
	})
}

// Update edits a document's content fields. A status in the request is
// applied only when the document-side transition table allows it.
func (s *DocumentService) Update(ctx context.Context, id uuid.UUID, req DocumentRequest) (*models.Document, error) {
	doc, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	doc.Title = req.Title
	doc.PatientID = req.PatientID
	doc.Diagnosis = req.Diagnosis
	doc.Description = req.Description
	doc.DoctorIDs = req.DoctorIDs
	doc.ProcedureDate = req.ProcedureDate
	doc.UpdatedAt = time.Now().UTC()

	if req.Status != "" && req.Status != doc.Status {
		if !validStatusTransition(doc.Status, req.Status) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, doc.Status, req.Status)
		}
		doc.Status = req.Status
		doc.StatusUpdatedAt = doc.UpdatedAt
	}

	if err := s.store.Update(ctx, doc); err != nil {
		return nil, err
	}
	if err := s.publishSummary(ctx, events.TopicDocumentUpdated, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// UpdateStatus applies a manual status change, enforcing the document-side
// transition table.
func (s *DocumentService) UpdateStatus(ctx context.Context, id uuid.UUID, status models.DocumentStatus) (*models.Document, error) {
	doc, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !validStatusTransition(doc.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, doc.Status, status)
	}

	now := time.Now().UTC()
	doc.Status = status
	doc.UpdatedAt = now
	doc.StatusUpdatedAt = now
	if err := s.store.Update(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Delete removes a document and announces it.
func (s *DocumentService) Delete(ctx context.Context, id uuid.UUID) error {
	doc, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	return s.publishSummary(ctx, events.TopicDocumentDeleted, doc)
}

func (s *DocumentService) publishSummary(ctx context.Context, topic string, doc *models.Document) error {
	body, err := json.Marshal(models.DocumentSummary{
		ID:        doc.ID,
		Title:     doc.Title,
		PatientID: doc.PatientID,
		Diagnosis: doc.Diagnosis,
	})
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", topic, err)
	}
	if err := s.bus.Publish(ctx, topic, doc.ID.String(), body); err != nil {
		return err
	}
	s.logger.Info("document event published", "topic", topic, "document_id", doc.ID)
	return nil
}

// validStatusTransition is the document-side table for manual status
// updates. The projector bypasses it: workflow notifications always win.
func validStatusTransition(current, next models.DocumentStatus) bool {
	if current == next {
		return true
	}
	switch current {
	case models.DocDraft:
		return next == models.DocPending
	case models.DocPending:
		return next == models.DocProcessing || next == models.DocValidated || next == models.DocRejected
	case models.DocProcessing:
		return next == models.DocValidated || next == models.DocRejected
	case models.DocValidated:
		return next == models.DocPublished || next == models.DocRejected
	case models.DocPublished:
		return next == models.DocArchived
	case models.DocRejected:
		return next == models.DocPending
	default:
		return false
	}
}
