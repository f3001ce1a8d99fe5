package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RaidOuahioune/dms/internal/config"
	"github.com/RaidOuahioune/dms/internal/logging"
	"github.com/RaidOuahioune/dms/internal/repository"
	"github.com/RaidOuahioune/dms/pkg/models"
)

func main() {
	ctx := context.Background()

	configFile := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger := logging.NewLogger(cfg.Log.Level)

	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name, cfg.DB.SSLMode,
	)
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pool.Close()

	if err := ensureSchema(ctx, pool); err != nil {
		log.Fatalf("Failed to create schema: %v", err)
	}

	documentStore := repository.NewPostgresDocumentStore(pool)
	patientStore := repository.NewPostgresPatientStore(pool)

	// Skip seeding if documents already exist.
	existing, err := documentStore.List(ctx)
	if err != nil {
		log.Fatalf("Failed to list documents: %v", err)
	}
	if len(existing) > 0 {
		logger.Info("Documents already present, skipping seed", "count", len(existing))
		return
	}

	patients := []*models.Patient{
		newPatient("Amina Benali", 54),
		newPatient("Karim Haddad", 37),
		newPatient("Leila Mansouri", 61),
	}
	for _, p := range patients {
		if err := patientStore.Save(ctx, p); err != nil {
			log.Fatalf("Failed to seed patient %s: %v", p.Name, err)
		}
		logger.Info("Seeded patient", "id", p.ID, "name", p.Name)
	}

	now := time.Now().UTC()
	docs := []*models.Document{
		newDocument("Cardiology Report", "PATIENT-001", "DR-101,DR-102", "CARDIOLOGY_REPORT",
			"Patient has a mild arrhythmia. Further monitoring advised.",
			models.DocPending, now.AddDate(0, 0, -10)),
		newDocument("Medical Record - Diabetes", "PATIENT-002", "DR-103", "MEDICAL_RECORD",
			"Patient diagnosed with Type 2 Diabetes. Medication prescribed.",
			models.DocValidated, now.AddDate(0, 0, -20)),
		newDocument("Annual Physical Exam", "PATIENT-003", "DR-104", "PHYSICAL_EXAM",
			"All vitals normal. No concerns.",
			models.DocRejected, now.AddDate(0, 0, -30)),
	}
	for _, doc := range docs {
		if err := documentStore.Save(ctx, doc); err != nil {
			log.Fatalf("Failed to seed document %q: %v", doc.Title, err)
		}
		logger.Info("Seeded document", "id", doc.ID, "title", doc.Title, "status", doc.Status)
	}

	logger.Info("Seeding complete")
}

func ensureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS documents (
	id UUID PRIMARY KEY,
	title TEXT NOT NULL,
	patient_id TEXT NOT NULL DEFAULT '',
	diagnosis TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	doctor_ids TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	procedure_date TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	status_updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS workflow_instances (
	id UUID PRIMARY KEY,
	document_id UUID NOT NULL,
	workflow_type TEXT NOT NULL,
	current_status TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS workflow_instances_document_idx ON workflow_instances (document_id, created_at DESC);

CREATE TABLE IF NOT EXISTS patients (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	age INT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);`)
	return err
}

func newPatient(name string, age int) *models.Patient {
	now := time.Now().UTC()
	return &models.Patient{ID: uuid.New(), Name: name, Age: age, CreatedAt: now, UpdatedAt: now}
}

func newDocument(title, patientID, doctorIDs, diagnosis, description string,
	status models.DocumentStatus, procedureDate time.Time) *models.Document {
	now := time.Now().UTC()
	return &models.Document{
		ID:              uuid.New(),
		Title:           title,
		PatientID:       patientID,
		DoctorIDs:       doctorIDs,
		Diagnosis:       diagnosis,
		Description:     description,
		Status:          status,
		ProcedureDate:   &procedureDate,
		CreatedAt:       now,
		UpdatedAt:       now,
		StatusUpdatedAt: now,
	}
}
