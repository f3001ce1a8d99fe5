package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RaidOuahioune/dms/internal/events"
	"github.com/RaidOuahioune/dms/internal/repository"
	"github.com/RaidOuahioune/dms/pkg/models"
)

// pipeline wires the full event loop over the in-process bus: documents
// service, workflow service, extraction worker and projector, the same
// topology cmd/server assembles.
type pipeline struct {
	bus       *events.MemoryBus
	documents *DocumentService
	workflows *WorkflowService
	docStore  *repository.MemoryDocumentStore
	wfStore   *repository.MemoryWorkflowStore
}

func newPipeline(t *testing.T) *pipeline {
	t.Helper()
	bus := events.NewMemoryBus(nil)
	t.Cleanup(func() { _ = bus.Close() })

	docStore := repository.NewMemoryDocumentStore()
	wfStore := repository.NewMemoryWorkflowStore()

	documents := NewDocumentService(docStore, bus, nil)
	workflows := NewWorkflowService(wfStore, bus, nil)
	projector := NewProjector(docStore, nil)
	worker := NewExtractionWorker(SimulatedExtractor{}, bus, nil)

	workflows.RegisterConsumers(bus, "test-workflow")
	projector.RegisterConsumers(bus, "test-documents")
	worker.RegisterConsumers(bus, "test-extractor")

	return &pipeline{
		bus:       bus,
		documents: documents,
		workflows: workflows,
		docStore:  docStore,
		wfStore:   wfStore,
	}
}

func (p *pipeline) waitWorkflowStatus(t *testing.T, docID uuid.UUID, want models.WorkflowStatus) {
	t.Helper()
	assert.Eventually(t, func() bool {
		wf, err := p.wfStore.GetByDocument(context.Background(), docID)
		return err == nil && wf.CurrentStatus == want
	}, 2*time.Second, 10*time.Millisecond, "workflow never reached %s", want)
}

func (p *pipeline) waitDocumentStatus(t *testing.T, docID uuid.UUID, want models.DocumentStatus) {
	t.Helper()
	assert.Eventually(t, func() bool {
		doc, err := p.docStore.Get(context.Background(), docID)
		return err == nil && doc.Status == want
	}, 2*time.Second, 10*time.Millisecond, "document never reached %s", want)
}

func TestPipelineUploadLifecycle(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(t)

	doc, err := p.documents.Upload(ctx, "scan.pdf", "Scanned text.", "PATIENT-001", "DR-101", "CARDIOLOGY_REPORT")
	require.NoError(t, err)

	// Upload opens an extraction workflow; the simulated collaborator
	// answers over the bus and the workflow lands in VALIDATION_PENDING.
	p.waitWorkflowStatus(t, doc.ID, models.StatusValidationPending)
	p.waitDocumentStatus(t, doc.ID, models.DocProcessing)

	stored, err := p.docStore.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored.Description, "Scanned text."))
	assert.Contains(t, stored.Description, extractedDataMarker)
	assert.Contains(t, stored.Description, `"documentType":"Medical Record"`)

	// Validation and publication steps are operator-driven.
	_, err = p.workflows.Advance(ctx, doc.ID, "")
	require.NoError(t, err)
	p.waitDocumentStatus(t, doc.ID, models.DocValidated)

	_, err = p.workflows.Advance(ctx, doc.ID, "")
	require.NoError(t, err)
	p.waitWorkflowStatus(t, doc.ID, models.StatusPublished)
	p.waitDocumentStatus(t, doc.ID, models.DocPublished)
}

func TestPipelineDirectCreationLifecycle(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(t)

	doc, err := p.documents.Create(ctx, DocumentRequest{
		Title:     "Annual Physical Exam",
		PatientID: "PATIENT-003",
		Diagnosis: "PHYSICAL_EXAM",
	})
	require.NoError(t, err)

	// Direct creation opens a SUBMITTED workflow and immediately reports
	// the document valid.
	p.waitWorkflowStatus(t, doc.ID, models.StatusSubmitted)
	p.waitDocumentStatus(t, doc.ID, models.DocValidated)

	_, err = p.workflows.Advance(ctx, doc.ID, "")
	require.NoError(t, err)
	p.waitWorkflowStatus(t, doc.ID, models.StatusPublished)
	p.waitDocumentStatus(t, doc.ID, models.DocPublished)
}

func TestPipelineManualRejection(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(t)

	doc, err := p.documents.Upload(ctx, "scan.pdf", "Scanned text.", "PATIENT-001", "DR-101", "")
	require.NoError(t, err)
	p.waitWorkflowStatus(t, doc.ID, models.StatusValidationPending)

	wf, err := p.workflows.ByDocument(ctx, doc.ID)
	require.NoError(t, err)
	_, err = p.workflows.SetStatus(ctx, wf.ID, models.StatusRejected)
	require.NoError(t, err)

	p.waitDocumentStatus(t, doc.ID, models.DocRejected)

	// Rejection is terminal: advancing afterwards is a no-op.
	wf, err = p.workflows.Advance(ctx, doc.ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, wf.CurrentStatus)
}
