package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/RaidOuahioune/dms/internal/events"
	"github.com/RaidOuahioune/dms/internal/repository"
	"github.com/RaidOuahioune/dms/pkg/models"
)

// RejectionReason accompanies every document-rejected event raised by the
// manual reject override.
const RejectionReason = "Document rejected during workflow validation step"

// WorkflowService owns the per-document workflow status. All mutations go
// through Create, Advance or SetStatus; the transition rules themselves
// live in NextStep.
type WorkflowService struct {
	store  repository.WorkflowStore
	bus    events.Bus
	logger *slog.Logger

	// Advance serializes per document so concurrent redelivery of the
	// same event cannot produce lost updates.
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// NewWorkflowService creates a WorkflowService.
func NewWorkflowService(store repository.WorkflowStore, bus events.Bus, logger *slog.Logger) *WorkflowService {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkflowService{
		store:  store,
		bus:    bus,
		logger: logger,
		locks:  make(map[uuid.UUID]*sync.Mutex),
	}
}

func (s *WorkflowService) lockDocument(id uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// Create opens a workflow instance for a document with the initial status
// for its type. If an instance already exists for the document it is
// replaced: duplicate instances would silently break the
// one-active-instance-per-document invariant, so the upsert is logged as
// a warning instead.
func (s *WorkflowService) Create(ctx context.Context, documentID uuid.UUID, t models.WorkflowType) (*models.WorkflowInstance, error) {
	l := s.lockDocument(documentID)
	l.Lock()
	defer l.Unlock()

	if existing, err := s.store.GetByDocument(ctx, documentID); err == nil {
		s.logger.Warn("workflow already exists for document, replacing",
			"document_id", documentID, "previous_status", existing.CurrentStatus)
		if err := s.store.Delete(ctx, existing.ID); err != nil {
			return nil, fmt.Errorf("replace workflow for document %s: %w", documentID, err)
		}
	}

	now := time.Now().UTC()
	wf := &models.WorkflowInstance{
		ID:            uuid.New(),
		DocumentID:    documentID,
		WorkflowType:  t,
		CurrentStatus: InitialStatus(t),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.Save(ctx, wf); err != nil {
		return nil, fmt.Errorf("create workflow for document %s: %w", documentID, err)
	}
	s.logger.Info("workflow created",
		"workflow_id", wf.ID, "document_id", documentID,
		"type", t, "status", wf.CurrentStatus)
	return wf, nil
}

// Advance moves the document's workflow one step forward and publishes the
// resulting events. On a terminal status it is an idempotent no-op: the
// instance is saved unchanged and nothing is emitted.
func (s *WorkflowService) Advance(ctx context.Context, documentID uuid.UUID, actionData string) (*models.WorkflowInstance, error) {
	l := s.lockDocument(documentID)
	l.Lock()
	defer l.Unlock()

	wf, err := s.store.GetByDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("advance workflow for document %s: %w", documentID, err)
	}

	outcome := NextStep(wf.WorkflowType, wf.CurrentStatus, actionData)
	s.logger.Info("advancing workflow",
		"document_id", documentID, "from", wf.CurrentStatus, "to", outcome.Next)

	wf.CurrentStatus = outcome.Next
	wf.UpdatedAt = time.Now().UTC()
	if err := s.store.Save(ctx, wf); err != nil {
		return nil, fmt.Errorf("save workflow for document %s: %w", documentID, err)
	}

	for _, em := range outcome.Events {
		if err := s.emit(ctx, em.Topic, documentID, em.Data); err != nil {
			return nil, err
		}
	}
	return wf, nil
}

// SetStatus is the administrative override behind the validate, publish
// and reject endpoints. It bypasses the transition table: any current
// status may jump to any target. Side effects are keyed by the target
// status alone.
func (s *WorkflowService) SetStatus(ctx context.Context, workflowID uuid.UUID, status models.WorkflowStatus) (*models.WorkflowInstance, error) {
	wf, err := s.store.Get(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("set status on workflow %s: %w", workflowID, err)
	}

	l := s.lockDocument(wf.DocumentID)
	l.Lock()
	defer l.Unlock()

	wf.CurrentStatus = status
	wf.UpdatedAt = time.Now().UTC()
	if err := s.store.Save(ctx, wf); err != nil {
		return nil, fmt.Errorf("save workflow %s: %w", workflowID, err)
	}

	switch status {
	case models.StatusValidated:
		err = s.emit(ctx, events.TopicDocumentValidated, wf.DocumentID, EmptyPayload)
	case models.StatusRejected:
		err = s.emit(ctx, events.TopicDocumentRejected, wf.DocumentID, RejectionReason)
	case models.StatusPublished:
		err = s.emit(ctx, events.TopicDocumentPublished, wf.DocumentID, EmptyPayload)
	}
	if err != nil {
		return nil, err
	}
	s.logger.Info("workflow status overridden",
		"workflow_id", workflowID, "document_id", wf.DocumentID, "status", status)
	return wf, nil
}

// ByDocument returns the workflow instance tracking a document.
func (s *WorkflowService) ByDocument(ctx context.Context, documentID uuid.UUID) (*models.WorkflowInstance, error) {
	return s.store.GetByDocument(ctx, documentID)
}

// ByStatus returns the instances currently in a given status.
func (s *WorkflowService) ByStatus(ctx context.Context, status models.WorkflowStatus) ([]*models.WorkflowInstance, error) {
	return s.store.ListByStatus(ctx, status)
}

// emit publishes one workflow event keyed by document id. Fields events
// and status events have different wire payloads; the topic decides.
func (s *WorkflowService) emit(ctx context.Context, topic string, documentID uuid.UUID, data string) error {
	var payload interface{}
	switch topic {
	case events.TopicDocumentFieldsExtracted:
		payload = models.FieldsEvent{DocumentID: documentID, ExtractedFields: data}
	default:
		payload = models.StatusEvent{
			DocumentID: documentID,
			Status:     statusForTopic(topic),
			Data:       data,
			Timestamp:  time.Now().UTC(),
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", topic, err)
	}
	if err := s.bus.Publish(ctx, topic, documentID.String(), body); err != nil {
		return err
	}
	s.logger.Info("workflow event published", "topic", topic, "document_id", documentID)
	return nil
}

func statusForTopic(topic string) string {
	switch topic {
	case events.TopicDocumentValidated:
		return string(models.StatusValidated)
	case events.TopicDocumentRejected:
		return string(models.StatusRejected)
	case events.TopicDocumentPublished:
		return string(models.StatusPublished)
	}
	return ""
}
