package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/RaidOuahioune/dms/internal/repository"
	"github.com/RaidOuahioune/dms/pkg/models"
)

// PatientService is plain CRUD over the patient store.
type PatientService struct {
	store repository.PatientStore
}

// NewPatientService creates a PatientService.
func NewPatientService(store repository.PatientStore) *PatientService {
	return &PatientService{store: store}
}

func (s *PatientService) List(ctx context.Context) ([]*models.Patient, error) {
	return s.store.List(ctx)
}

func (s *PatientService) Get(ctx context.Context, id uuid.UUID) (*models.Patient, error) {
	return s.store.Get(ctx, id)
}

func (s *PatientService) Create(ctx context.Context, name string, age int) (*models.Patient, error) {
	now := time.Now().UTC()
	p := &models.Patient{
		ID:        uuid.New(),
		Name:      name,
		Age:       age,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PatientService) Update(ctx context.Context, id uuid.UUID, name string, age int) (*models.Patient, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Name = name
	p.Age = age
	p.UpdatedAt = time.Now().UTC()
	if err := s.store.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PatientService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.Delete(ctx, id)
}
