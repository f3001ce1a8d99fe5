package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/RaidOuahioune/dms/internal/events"
	"github.com/RaidOuahioune/dms/pkg/models"
)

// RegisterConsumers subscribes the workflow service to the document
// lifecycle topics. Handlers follow the consumer contract: errors are
// logged and the message dropped by the bus, never re-raised.
func (s *WorkflowService) RegisterConsumers(bus events.Bus, group string) {
	bus.Subscribe(events.TopicDocumentCreated, group, s.onDocumentCreated)
	bus.Subscribe(events.TopicDocumentUploaded, group, s.onDocumentUploaded)
	bus.Subscribe(events.TopicExtractionResponse, group, s.onExtractionResponse)
}

// onDocumentCreated opens a DOCUMENT_CREATION workflow. Directly created
// documents carry no file to extract, so they are immediately reported
// valid to the documents service.
func (s *WorkflowService) onDocumentCreated(ctx context.Context, env events.Envelope) error {
	var doc models.DocumentSummary
	if err := json.Unmarshal(env.Body, &doc); err != nil {
		return fmt.Errorf("malformed document-created event: %w", err)
	}

	if _, err := s.Create(ctx, doc.ID, models.WorkflowDocumentCreation); err != nil {
		return err
	}
	return s.emit(ctx, events.TopicDocumentValidated, doc.ID, EmptyPayload)
}

// onDocumentUploaded opens a DOCUMENT_UPLOAD workflow and hands the
// document to the extraction collaborator over the bus. The workflow sits
// in FIELD_EXTRACTION_PENDING until the collaborator answers on
// extraction-response; there is no in-process waiting.
func (s *WorkflowService) onDocumentUploaded(ctx context.Context, env events.Envelope) error {
	var doc models.DocumentSummary
	if err := json.Unmarshal(env.Body, &doc); err != nil {
		return fmt.Errorf("malformed document-uploaded event: %w", err)
	}

	if _, err := s.Create(ctx, doc.ID, models.WorkflowDocumentUpload); err != nil {
		return err
	}

	req := models.ExtractionRequest{
		DocumentID: doc.ID,
		Title:      doc.Title,
		PatientID:  doc.PatientID,
		Diagnosis:  doc.Diagnosis,
	}
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal extraction request: %w", err)
	}
	if err := s.bus.Publish(ctx, events.TopicExtractionRequest, doc.ID.String(), body); err != nil {
		return err
	}
	s.logger.Info("extraction requested", "document_id", doc.ID)
	return nil
}

// onExtractionResponse advances the workflow with the extracted fields,
// which emits document-fields-extracted toward the documents service.
func (s *WorkflowService) onExtractionResponse(ctx context.Context, env events.Envelope) error {
	var resp models.ExtractionResponse
	if err := json.Unmarshal(env.Body, &resp); err != nil {
		return fmt.Errorf("malformed extraction-response event: %w", err)
	}

	wf, err := s.Advance(ctx, resp.DocumentID, resp.Formatted)
	if err != nil {
		return err
	}
	s.logger.Info("extraction result applied",
		"document_id", resp.DocumentID, "status", wf.CurrentStatus)
	return nil
}
