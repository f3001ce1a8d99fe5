package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/RaidOuahioune/dms/internal/events"
	"github.com/RaidOuahioune/dms/pkg/models"
)

// Extractor turns document content into a structured-fields JSON string.
// The real collaborator is an external service reached over the bus; this
// interface exists so deployments without it can plug in the simulator.
type Extractor interface {
	Extract(ctx context.Context, req models.ExtractionRequest) (string, error)
}

// SimulatedExtractor synthesizes extraction results from the document
// summary, standing in for the AI collaborator in dev and test
// deployments. Deterministic: same request, same fields.
type SimulatedExtractor struct{}

// Extract builds a structured-fields payload from the request.
func (SimulatedExtractor) Extract(_ context.Context, req models.ExtractionRequest) (string, error) {
	fields := map[string]interface{}{
		"title": req.Title,
		"extractedFields": map[string]string{
			"documentType": "Medical Record",
			"patientName":  req.PatientID,
			"documentDate": time.Now().UTC().Format("2006-01-02"),
			"diagnosis":    req.Diagnosis,
		},
	}
	out, err := json.Marshal(fields)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// ExtractionWorker consumes extraction requests and publishes responses,
// decoupling the workflow service from however long extraction takes.
type ExtractionWorker struct {
	extractor Extractor
	bus       events.Bus
	logger    *slog.Logger
}

// NewExtractionWorker creates an ExtractionWorker.
func NewExtractionWorker(extractor Extractor, bus events.Bus, logger *slog.Logger) *ExtractionWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractionWorker{extractor: extractor, bus: bus, logger: logger}
}

// RegisterConsumers subscribes the worker to the extraction request topic.
func (w *ExtractionWorker) RegisterConsumers(bus events.Bus, group string) {
	bus.Subscribe(events.TopicExtractionRequest, group, w.onRequest)
}

func (w *ExtractionWorker) onRequest(ctx context.Context, env events.Envelope) error {
	var req models.ExtractionRequest
	if err := json.Unmarshal(env.Body, &req); err != nil {
		return fmt.Errorf("malformed extraction request: %w", err)
	}

	formatted, err := w.extractor.Extract(ctx, req)
	if err != nil {
		return fmt.Errorf("extract fields for document %s: %w", req.DocumentID, err)
	}

	body, err := json.Marshal(models.ExtractionResponse{
		DocumentID: req.DocumentID,
		Formatted:  formatted,
	})
	if err != nil {
		return err
	}
	if err := w.bus.Publish(ctx, events.TopicExtractionResponse, req.DocumentID.String(), body); err != nil {
		return err
	}
	w.logger.Info("extraction completed", "document_id", req.DocumentID)
	return nil
}
