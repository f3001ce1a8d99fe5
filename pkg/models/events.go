package models

import (
	"time"

	"github.com/google/uuid"
)

// DocumentSummary is the payload of document-created and document-uploaded
// events: just enough for the workflow service to open an instance and for
// the extraction collaborator to synthesize fields.
type DocumentSummary struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	PatientID string    `json:"patientId,omitempty"`
	Diagnosis string    `json:"diagnosis,omitempty"`
}

// StatusEvent is published on document-validated, document-rejected and
// document-published. Data carries validated fields, a rejection reason or
// publish metadata depending on the topic; "{}" means "nothing attached".
type StatusEvent struct {
	DocumentID uuid.UUID `json:"documentId"`
	Status     string    `json:"status"`
	Data       string    `json:"data"`
	Timestamp  time.Time `json:"timestamp,omitempty"`
}

// FieldsEvent is published on document-fields-extracted. ExtractedFields is
// an opaque JSON string produced by the extraction collaborator.
type FieldsEvent struct {
	DocumentID      uuid.UUID `json:"documentId"`
	ExtractedFields string    `json:"extractedFields"`
}

// ExtractionRequest asks the extraction collaborator to turn document
// content into structured fields. Opaque request/response contract keyed
// by document id.
type ExtractionRequest struct {
	DocumentID uuid.UUID `json:"documentId"`
	Title      string    `json:"title,omitempty"`
	PatientID  string    `json:"patientId,omitempty"`
	Diagnosis  string    `json:"diagnosis,omitempty"`
	Content    string    `json:"content,omitempty"`
}

// ExtractionResponse is the collaborator's answer on extraction-response.
type ExtractionResponse struct {
	DocumentID uuid.UUID `json:"documentId"`
	Formatted  string    `json:"formatted"`
}
