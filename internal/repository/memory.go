package repository

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/RaidOuahioune/dms/pkg/models"
)

// In-memory store implementations backing unit tests and dev mode. Values
// are copied on the way in and out so callers never share state with the
// store.

// MemoryDocumentStore is a map-backed DocumentStore.
type MemoryDocumentStore struct {
	mu   sync.RWMutex
	docs map[uuid.UUID]models.Document
}

// NewMemoryDocumentStore creates an empty in-memory document store.
func NewMemoryDocumentStore() *MemoryDocumentStore {
	return &MemoryDocumentStore{docs: make(map[uuid.UUID]models.Document)}
}

func (s *MemoryDocumentStore) Save(_ context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = *doc
	return nil
}

func (s *MemoryDocumentStore) Get(_ context.Context, id uuid.UUID) (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &doc, nil
}

func (s *MemoryDocumentStore) List(_ context.Context) ([]*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]*models.Document, 0, len(s.docs))
	for _, doc := range s.docs {
		d := doc
		docs = append(docs, &d)
	}
	return docs, nil
}

func (s *MemoryDocumentStore) ListByPatient(_ context.Context, patientID string) ([]*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var docs []*models.Document
	for _, doc := range s.docs {
		if doc.PatientID == patientID {
			d := doc
			docs = append(docs, &d)
		}
	}
	return docs, nil
}

func (s *MemoryDocumentStore) ListByStatus(_ context.Context, status models.DocumentStatus) ([]*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var docs []*models.Document
	for _, doc := range s.docs {
		if doc.Status == status {
			d := doc
			docs = append(docs, &d)
		}
	}
	return docs, nil
}

func (s *MemoryDocumentStore) Update(_ context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[doc.ID]; !ok {
		return ErrNotFound
	}
	s.docs[doc.ID] = *doc
	return nil
}

func (s *MemoryDocumentStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

// MemoryWorkflowStore is a map-backed WorkflowStore.
type MemoryWorkflowStore struct {
	mu  sync.RWMutex
	wfs map[uuid.UUID]models.WorkflowInstance
}

// NewMemoryWorkflowStore creates an empty in-memory workflow store.
func NewMemoryWorkflowStore() *MemoryWorkflowStore {
	return &MemoryWorkflowStore{wfs: make(map[uuid.UUID]models.WorkflowInstance)}
}

func (s *MemoryWorkflowStore) Save(_ context.Context, wf *models.WorkflowInstance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wfs[wf.ID] = *wf
	return nil
}

func (s *MemoryWorkflowStore) Get(_ context.Context, id uuid.UUID) (*models.WorkflowInstance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wf, ok := s.wfs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &wf, nil
}

func (s *MemoryWorkflowStore) GetByDocument(_ context.Context, documentID uuid.UUID) (*models.WorkflowInstance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *models.WorkflowInstance
	for _, wf := range s.wfs {
		if wf.DocumentID != documentID {
			continue
		}
		if latest == nil || wf.CreatedAt.After(latest.CreatedAt) {
			w := wf
			latest = &w
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	return latest, nil
}

func (s *MemoryWorkflowStore) ListByStatus(_ context.Context, status models.WorkflowStatus) ([]*models.WorkflowInstance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var wfs []*models.WorkflowInstance
	for _, wf := range s.wfs {
		if wf.CurrentStatus == status {
			w := wf
			wfs = append(wfs, &w)
		}
	}
	return wfs, nil
}

func (s *MemoryWorkflowStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.wfs[id]; !ok {
		return ErrNotFound
	}
	delete(s.wfs, id)
	return nil
}

// MemoryPatientStore is a map-backed PatientStore.
type MemoryPatientStore struct {
	mu       sync.RWMutex
	patients map[uuid.UUID]models.Patient
}

// NewMemoryPatientStore creates an empty in-memory patient store.
func NewMemoryPatientStore() *MemoryPatientStore {
	return &MemoryPatientStore{patients: make(map[uuid.UUID]models.Patient)}
}

func (s *MemoryPatientStore) Save(_ context.Context, p *models.Patient) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patients[p.ID] = *p
	return nil
}

func (s *MemoryPatientStore) Get(_ context.Context, id uuid.UUID) (*models.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.patients[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *MemoryPatientStore) List(_ context.Context) ([]*models.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	patients := make([]*models.Patient, 0, len(s.patients))
	for _, p := range s.patients {
		cp := p
		patients = append(patients, &cp)
	}
	return patients, nil
}

func (s *MemoryPatientStore) Update(_ context.Context, p *models.Patient) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.patients[p.ID]; !ok {
		return ErrNotFound
	}
	s.patients[p.ID] = *p
	return nil
}

func (s *MemoryPatientStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.patients[id]; !ok {
		return ErrNotFound
	}
	delete(s.patients, id)
	return nil
}
