package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/RaidOuahioune/dms/internal/events"
	"github.com/RaidOuahioune/dms/internal/repository"
	"github.com/RaidOuahioune/dms/pkg/models"
)

const extractedDataMarker = "\n\n--- EXTRACTED DATA ---\n"

// Projector makes workflow-emitted events visible on the Document entity.
// It is the only writer of document status on the consuming side, so a
// document's visible status eventually equals its workflow's last-notified
// status.
//
// Status application is idempotent; the metadata append is not, so a
// redelivered fields event duplicates the appended text. Known weakness,
// pinned by tests rather than patched here.
type Projector struct {
	store  repository.DocumentStore
	logger *slog.Logger
}

// NewProjector creates a Projector over the document store.
func NewProjector(store repository.DocumentStore, logger *slog.Logger) *Projector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Projector{store: store, logger: logger}
}

// RegisterConsumers subscribes the projector to the workflow topics.
func (p *Projector) RegisterConsumers(bus events.Bus, group string) {
	bus.Subscribe(events.TopicDocumentFieldsExtracted, group, p.onFieldsExtracted)
	bus.Subscribe(events.TopicDocumentValidated, group, p.onValidated)
	bus.Subscribe(events.TopicDocumentRejected, group, p.onRejected)
	bus.Subscribe(events.TopicDocumentPublished, group, p.onPublished)
}

// resolveDocumentID extracts the document id from an envelope: the routing
// key is tried first, then the JSON body. A message yielding neither is
// malformed and gets dropped by the caller.
func resolveDocumentID(env events.Envelope) (uuid.UUID, error) {
	if env.Key != "" {
		if id, err := uuid.Parse(env.Key); err == nil {
			return id, nil
		}
	}
	var evt models.StatusEvent
	if err := json.Unmarshal(env.Body, &evt); err == nil && evt.DocumentID != uuid.Nil {
		return evt.DocumentID, nil
	}
	return uuid.Nil, fmt.Errorf("no document id in key %q or body", env.Key)
}

// onFieldsExtracted appends the extraction payload to the document's
// description and marks it processing. Unknown documents are dropped with
// a log record; extraction results for them are unrecoverable anyway.
func (p *Projector) onFieldsExtracted(ctx context.Context, env events.Envelope) error {
	id, err := resolveDocumentID(env)
	if err != nil {
		return err
	}

	var evt models.FieldsEvent
	payload := string(env.Body)
	if err := json.Unmarshal(env.Body, &evt); err == nil && evt.ExtractedFields != "" {
		payload = evt.ExtractedFields
	}

	doc, err := p.store.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		p.logger.Error("fields extracted for unknown document, dropping", "document_id", id)
		return nil
	}
	if err != nil {
		return err
	}

	doc.Description += extractedDataMarker + payload
	p.setStatus(doc, models.DocProcessing)
	if err := p.store.Update(ctx, doc); err != nil {
		return err
	}
	p.logger.Info("document updated with extracted fields", "document_id", id)
	return nil
}

// onValidated marks the document validated; non-sentinel data is appended
// to the description as validated metadata.
func (p *Projector) onValidated(ctx context.Context, env events.Envelope) error {
	return p.applyStatus(ctx, env, models.DocValidated, true)
}

// onRejected marks the document rejected.
func (p *Projector) onRejected(ctx context.Context, env events.Envelope) error {
	return p.applyStatus(ctx, env, models.DocRejected, false)
}

// onPublished marks the document published.
func (p *Projector) onPublished(ctx context.Context, env events.Envelope) error {
	return p.applyStatus(ctx, env, models.DocPublished, false)
}

func (p *Projector) applyStatus(ctx context.Context, env events.Envelope, status models.DocumentStatus, appendData bool) error {
	id, err := resolveDocumentID(env)
	if err != nil {
		return err
	}

	doc, err := p.store.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		p.logger.Error("status event for unknown document, dropping",
			"document_id", id, "topic", env.Topic)
		return nil
	}
	if err != nil {
		return err
	}

	if appendData {
		var evt models.StatusEvent
		if err := json.Unmarshal(env.Body, &evt); err == nil &&
			evt.Data != "" && evt.Data != EmptyPayload {
			doc.Description += extractedDataMarker + evt.Data
		}
	}

	p.setStatus(doc, status)
	if err := p.store.Update(ctx, doc); err != nil {
		return err
	}
	p.logger.Info("document status updated", "document_id", id, "status", status)
	return nil
}

func (p *Projector) setStatus(doc *models.Document, status models.DocumentStatus) {
	now := time.Now().UTC()
	doc.Status = status
	doc.UpdatedAt = now
	doc.StatusUpdatedAt = now
}
