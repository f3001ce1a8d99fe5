package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DocumentStatus is the document-side view of processing state. It is
// written only by the status projector and by explicit API status updates.
type DocumentStatus string

const (
	DocPending    DocumentStatus = "PENDING"
	DocProcessing DocumentStatus = "PROCESSING"
	DocValidated  DocumentStatus = "VALIDATED"
	DocPublished  DocumentStatus = "PUBLISHED"
	DocRejected   DocumentStatus = "REJECTED"
	DocDraft      DocumentStatus = "DRAFT"
	DocArchived   DocumentStatus = "ARCHIVED"
)

// ParseDocumentStatus validates a document status received from the wire.
func ParseDocumentStatus(s string) (DocumentStatus, error) {
	switch DocumentStatus(s) {
	case DocPending, DocProcessing, DocValidated, DocPublished, DocRejected,
		DocDraft, DocArchived:
		return DocumentStatus(s), nil
	}
	return "", fmt.Errorf("unknown document status %q", s)
}

// Document is a medical document record. Description accumulates extraction
// payloads over time; StatusUpdatedAt tracks status changes separately from
// content edits.
type Document struct {
	ID              uuid.UUID      `json:"id"`
	Title           string         `json:"title"`
	PatientID       string         `json:"patientId,omitempty"`
	Diagnosis       string         `json:"diagnosis,omitempty"`
	Description     string         `json:"description,omitempty"`
	DoctorIDs       string         `json:"doctorIds,omitempty"`
	Status          DocumentStatus `json:"status"`
	ProcedureDate   *time.Time     `json:"procedureDate,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
	StatusUpdatedAt time.Time      `json:"statusUpdatedAt"`
}
