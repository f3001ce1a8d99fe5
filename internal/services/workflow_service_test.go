package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RaidOuahioune/dms/internal/events"
	"github.com/RaidOuahioune/dms/internal/repository"
	"github.com/RaidOuahioune/dms/pkg/models"
)

// captureBus records published envelopes so tests can assert on the exact
// event traffic a service produced.
type captureBus struct {
	mu        sync.Mutex
	envelopes []events.Envelope
}

func (b *captureBus) Publish(_ context.Context, topic, key string, body []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.envelopes = append(b.envelopes, events.Envelope{Topic: topic, Key: key, Body: body})
	return nil
}

func (b *captureBus) Subscribe(string, string, events.Handler) {}

func (b *captureBus) Close() error { return nil }

func (b *captureBus) published() []events.Envelope {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]events.Envelope, len(b.envelopes))
	copy(out, b.envelopes)
	return out
}

func (b *captureBus) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.envelopes = nil
}

func (b *captureBus) topics() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.envelopes))
	for i, env := range b.envelopes {
		out[i] = env.Topic
	}
	return out
}

func newWorkflowFixture(t *testing.T) (*WorkflowService, *captureBus) {
	t.Helper()
	bus := &captureBus{}
	return NewWorkflowService(repository.NewMemoryWorkflowStore(), bus, nil), bus
}

func decodeStatusEvent(t *testing.T, env events.Envelope) models.StatusEvent {
	t.Helper()
	var evt models.StatusEvent
	require.NoError(t, json.Unmarshal(env.Body, &evt))
	return evt
}

func TestWorkflowUploadChain(t *testing.T) {
	ctx := context.Background()
	svc, bus := newWorkflowFixture(t)
	docID := uuid.New()

	wf, err := svc.Create(ctx, docID, models.WorkflowDocumentUpload)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFieldExtractionPending, wf.CurrentStatus)
	assert.Empty(t, bus.published())

	fields := `{"extractedFields":{"documentType":"CARDIOLOGY_REPORT"}}`
	wf, err = svc.Advance(ctx, docID, fields)
	require.NoError(t, err)
	assert.Equal(t, models.StatusValidationPending, wf.CurrentStatus)

	envs := bus.published()
	require.Len(t, envs, 1)
	assert.Equal(t, events.TopicDocumentFieldsExtracted, envs[0].Topic)
	assert.Equal(t, docID.String(), envs[0].Key)
	var fieldsEvt models.FieldsEvent
	require.NoError(t, json.Unmarshal(envs[0].Body, &fieldsEvt))
	assert.Equal(t, docID, fieldsEvt.DocumentID)
	assert.Equal(t, fields, fieldsEvt.ExtractedFields)
	bus.reset()

	wf, err = svc.Advance(ctx, docID, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusValidated, wf.CurrentStatus)
	envs = bus.published()
	require.Len(t, envs, 1)
	assert.Equal(t, events.TopicDocumentValidated, envs[0].Topic)
	evt := decodeStatusEvent(t, envs[0])
	assert.Equal(t, string(models.StatusValidated), evt.Status)
	assert.Equal(t, EmptyPayload, evt.Data)
	bus.reset()

	wf, err = svc.Advance(ctx, docID, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPublished, wf.CurrentStatus)
	envs = bus.published()
	require.Len(t, envs, 1)
	assert.Equal(t, events.TopicDocumentPublished, envs[0].Topic)
	bus.reset()

	// Terminal: advancing again changes nothing and stays silent.
	wf, err = svc.Advance(ctx, docID, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPublished, wf.CurrentStatus)
	assert.Empty(t, bus.published())
}

func TestWorkflowCreationChain(t *testing.T) {
	ctx := context.Background()
	svc, bus := newWorkflowFixture(t)
	docID := uuid.New()

	wf, err := svc.Create(ctx, docID, models.WorkflowDocumentCreation)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSubmitted, wf.CurrentStatus)

	wf, err = svc.Advance(ctx, docID, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPublished, wf.CurrentStatus)
	assert.Equal(t,
		[]string{events.TopicDocumentValidated, events.TopicDocumentPublished},
		bus.topics())
}

func TestWorkflowCreateReplacesExisting(t *testing.T) {
	ctx := context.Background()
	svc, _ := newWorkflowFixture(t)
	docID := uuid.New()

	first, err := svc.Create(ctx, docID, models.WorkflowDocumentCreation)
	require.NoError(t, err)

	second, err := svc.Create(ctx, docID, models.WorkflowDocumentUpload)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	wf, err := svc.ByDocument(ctx, docID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, wf.ID)
	assert.Equal(t, models.WorkflowDocumentUpload, wf.WorkflowType)
	assert.Equal(t, models.StatusFieldExtractionPending, wf.CurrentStatus)

	// The replaced instance is removed, not just shadowed: no zombie
	// SUBMITTED row lingers in status listings.
	submitted, err := svc.ByStatus(ctx, models.StatusSubmitted)
	require.NoError(t, err)
	assert.Empty(t, submitted)

	pending, err := svc.ByStatus(ctx, models.StatusFieldExtractionPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].ID)
}

func TestWorkflowSetStatusReject(t *testing.T) {
	ctx := context.Background()
	svc, bus := newWorkflowFixture(t)
	docID := uuid.New()

	wf, err := svc.Create(ctx, docID, models.WorkflowDocumentUpload)
	require.NoError(t, err)
	bus.reset()

	wf, err = svc.SetStatus(ctx, wf.ID, models.StatusRejected)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, wf.CurrentStatus)

	envs := bus.published()
	require.Len(t, envs, 1)
	assert.Equal(t, events.TopicDocumentRejected, envs[0].Topic)
	evt := decodeStatusEvent(t, envs[0])
	assert.Equal(t, RejectionReason, evt.Data)
	assert.Equal(t, string(models.StatusRejected), evt.Status)
	bus.reset()

	// A rejected workflow cannot be advanced past its terminal status.
	wf, err = svc.Advance(ctx, docID, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, wf.CurrentStatus)
	assert.Empty(t, bus.published())
}

func TestWorkflowSetStatusPublishOverride(t *testing.T) {
	ctx := context.Background()
	svc, bus := newWorkflowFixture(t)
	docID := uuid.New()

	wf, err := svc.Create(ctx, docID, models.WorkflowDocumentUpload)
	require.NoError(t, err)
	bus.reset()

	// Override jumps straight to PUBLISHED from FIELD_EXTRACTION_PENDING.
	wf, err = svc.SetStatus(ctx, wf.ID, models.StatusPublished)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPublished, wf.CurrentStatus)
	assert.Equal(t, []string{events.TopicDocumentPublished}, bus.topics())
}

func TestWorkflowAdvanceUnknownDocument(t *testing.T) {
	svc, _ := newWorkflowFixture(t)

	_, err := svc.Advance(context.Background(), uuid.New(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestWorkflowSetStatusUnknownWorkflow(t *testing.T) {
	svc, _ := newWorkflowFixture(t)

	_, err := svc.SetStatus(context.Background(), uuid.New(), models.StatusValidated)
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestWorkflowByStatus(t *testing.T) {
	ctx := context.Background()
	svc, _ := newWorkflowFixture(t)

	_, err := svc.Create(ctx, uuid.New(), models.WorkflowDocumentUpload)
	require.NoError(t, err)
	_, err = svc.Create(ctx, uuid.New(), models.WorkflowDocumentUpload)
	require.NoError(t, err)
	_, err = svc.Create(ctx, uuid.New(), models.WorkflowDocumentCreation)
	require.NoError(t, err)

	pending, err := svc.ByStatus(ctx, models.StatusFieldExtractionPending)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	submitted, err := svc.ByStatus(ctx, models.StatusSubmitted)
	require.NoError(t, err)
	assert.Len(t, submitted, 1)
}
