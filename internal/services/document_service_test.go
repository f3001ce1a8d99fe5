package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RaidOuahioune/dms/internal/events"
	"github.com/RaidOuahioune/dms/internal/repository"
	"github.com/RaidOuahioune/dms/pkg/models"
)

func newDocumentFixture(t *testing.T) (*DocumentService, *repository.MemoryDocumentStore, *captureBus) {
	t.Helper()
	store := repository.NewMemoryDocumentStore()
	bus := &captureBus{}
	return NewDocumentService(store, bus, nil), store, bus
}

func TestDocumentCreateDirect(t *testing.T) {
	ctx := context.Background()
	svc, store, bus := newDocumentFixture(t)

	doc, err := svc.Create(ctx, DocumentRequest{
		Title:     "Cardiology Report",
		PatientID: "PATIENT-001",
		Diagnosis: "CARDIOLOGY_REPORT",
		DoctorIDs: "DR-101,DR-102",
	})
	require.NoError(t, err)
	assert.Equal(t, models.DocPending, doc.Status)
	assert.NotEqual(t, uuid.Nil, doc.ID)

	stored, err := store.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cardiology Report", stored.Title)

	// No content means the direct-creation lifecycle.
	assert.Equal(t, []string{events.TopicDocumentCreated}, bus.topics())
	envs := bus.published()
	assert.Equal(t, doc.ID.String(), envs[0].Key)
}

func TestDocumentCreateWithContentIsUpload(t *testing.T) {
	ctx := context.Background()
	svc, store, bus := newDocumentFixture(t)

	doc, err := svc.Create(ctx, DocumentRequest{
		Title:     "Scanned Report",
		PatientID: "PATIENT-002",
		Content:   "Scanned text body.",
	})
	require.NoError(t, err)

	stored, err := store.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Scanned text body.", stored.Description)
	assert.Equal(t, []string{events.TopicDocumentUploaded}, bus.topics())
}

func TestDocumentUpload(t *testing.T) {
	ctx := context.Background()
	svc, _, bus := newDocumentFixture(t)

	doc, err := svc.Upload(ctx, "report.pdf", "file text", "PATIENT-003", "DR-104", "PHYSICAL_EXAM")
	require.NoError(t, err)
	assert.Equal(t, "Medical Document - report.pdf", doc.Title)
	assert.Equal(t, "file text", doc.Description)
	assert.Equal(t, []string{events.TopicDocumentUploaded}, bus.topics())
}

func TestDocumentUpdatePublishesEvent(t *testing.T) {
	ctx := context.Background()
	svc, _, bus := newDocumentFixture(t)

	doc, err := svc.Create(ctx, DocumentRequest{Title: "Before", PatientID: "PATIENT-001"})
	require.NoError(t, err)
	bus.reset()

	updated, err := svc.Update(ctx, doc.ID, DocumentRequest{
		Title:     "After",
		PatientID: "PATIENT-001",
	})
	require.NoError(t, err)
	assert.Equal(t, "After", updated.Title)
	assert.Equal(t, []string{events.TopicDocumentUpdated}, bus.topics())
}

func TestDocumentUpdateStatusTransitions(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newDocumentFixture(t)

	doc, err := svc.Create(ctx, DocumentRequest{Title: "Doc", PatientID: "PATIENT-001"})
	require.NoError(t, err)

	// PENDING -> VALIDATED -> PUBLISHED -> ARCHIVED is a legal path.
	for _, status := range []models.DocumentStatus{models.DocValidated, models.DocPublished, models.DocArchived} {
		doc, err = svc.UpdateStatus(ctx, doc.ID, status)
		require.NoError(t, err)
		assert.Equal(t, status, doc.Status)
	}

	// ARCHIVED is terminal for manual updates.
	_, err = svc.UpdateStatus(ctx, doc.ID, models.DocPending)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestDocumentUpdateStatusRejectsIllegalJump(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newDocumentFixture(t)

	doc, err := svc.Create(ctx, DocumentRequest{Title: "Doc", PatientID: "PATIENT-001"})
	require.NoError(t, err)

	// PENDING cannot jump straight to PUBLISHED.
	_, err = svc.UpdateStatus(ctx, doc.ID, models.DocPublished)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// Rejected documents can be resubmitted.
	doc, err = svc.UpdateStatus(ctx, doc.ID, models.DocRejected)
	require.NoError(t, err)
	doc, err = svc.UpdateStatus(ctx, doc.ID, models.DocPending)
	require.NoError(t, err)
	assert.Equal(t, models.DocPending, doc.Status)
}

func TestDocumentDelete(t *testing.T) {
	ctx := context.Background()
	svc, store, bus := newDocumentFixture(t)

	doc, err := svc.Create(ctx, DocumentRequest{Title: "Doc", PatientID: "PATIENT-001"})
	require.NoError(t, err)
	bus.reset()

	require.NoError(t, svc.Delete(ctx, doc.ID))
	_, err = store.Get(ctx, doc.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Equal(t, []string{events.TopicDocumentDeleted}, bus.topics())
}

func TestDocumentDeleteUnknown(t *testing.T) {
	svc, _, bus := newDocumentFixture(t)

	err := svc.Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Empty(t, bus.published())
}

func TestDocumentListByDoctor(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newDocumentFixture(t)

	_, err := svc.Create(ctx, DocumentRequest{Title: "A", PatientID: "P1", DoctorIDs: "DR-101,DR-102"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, DocumentRequest{Title: "B", PatientID: "P2", DoctorIDs: "DR-102"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, DocumentRequest{Title: "C", PatientID: "P3", DoctorIDs: "DR-103"})
	require.NoError(t, err)

	docs, err := svc.ListByDoctor(ctx, "DR-102")
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	docs, err = svc.ListByDoctor(ctx, "DR-999")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestValidStatusTransitionTable(t *testing.T) {
	tests := []struct {
		current models.DocumentStatus
		next    models.DocumentStatus
		want    bool
	}{
		{models.DocDraft, models.DocPending, true},
		{models.DocDraft, models.DocPublished, false},
		{models.DocPending, models.DocProcessing, true},
		{models.DocPending, models.DocValidated, true},
		{models.DocPending, models.DocRejected, true},
		{models.DocPending, models.DocArchived, false},
		{models.DocProcessing, models.DocValidated, true},
		{models.DocProcessing, models.DocRejected, true},
		{models.DocProcessing, models.DocPublished, false},
		{models.DocValidated, models.DocPublished, true},
		{models.DocValidated, models.DocRejected, true},
		{models.DocValidated, models.DocPending, false},
		{models.DocPublished, models.DocArchived, true},
		{models.DocPublished, models.DocRejected, false},
		{models.DocRejected, models.DocPending, true},
		{models.DocRejected, models.DocValidated, false},
		{models.DocArchived, models.DocPending, false},
		{models.DocValidated, models.DocValidated, true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, validStatusTransition(tt.current, tt.next),
			"%s -> %s", tt.current, tt.next)
	}
}
