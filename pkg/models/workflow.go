package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// WorkflowType selects the transition table that applies to an instance.
// It is set at creation and never changes.
type WorkflowType string

const (
	WorkflowDocumentCreation WorkflowType = "DOCUMENT_CREATION"
	WorkflowDocumentUpload   WorkflowType = "DOCUMENT_UPLOAD"
)

// ParseWorkflowType validates a workflow type received from the wire.
func ParseWorkflowType(s string) (WorkflowType, error) {
	switch WorkflowType(s) {
	case WorkflowDocumentCreation, WorkflowDocumentUpload:
		return WorkflowType(s), nil
	}
	return "", fmt.Errorf("unknown workflow type %q", s)
}

// WorkflowStatus is the processing stage of a document's workflow.
type WorkflowStatus string

const (
	StatusSubmitted              WorkflowStatus = "SUBMITTED"
	StatusFieldExtractionPending WorkflowStatus = "FIELD_EXTRACTION_PENDING"
	StatusValidationPending      WorkflowStatus = "VALIDATION_PENDING"
	StatusValidated              WorkflowStatus = "VALIDATED"
	StatusPublished              WorkflowStatus = "PUBLISHED"
	StatusRejected               WorkflowStatus = "REJECTED"
)

// ParseWorkflowStatus validates a status received from the wire.
func ParseWorkflowStatus(s string) (WorkflowStatus, error) {
	switch WorkflowStatus(s) {
	case StatusSubmitted, StatusFieldExtractionPending, StatusValidationPending,
		StatusValidated, StatusPublished, StatusRejected:
		return WorkflowStatus(s), nil
	}
	return "", fmt.Errorf("unknown workflow status %q", s)
}

// Terminal reports whether no further automatic transition exists.
func (s WorkflowStatus) Terminal() bool {
	return s == StatusPublished || s == StatusRejected
}

// WorkflowInstance tracks the processing stage of a single document.
// Exactly one active instance exists per document; terminal instances
// are retained for audit.
type WorkflowInstance struct {
	ID            uuid.UUID      `json:"id"`
	DocumentID    uuid.UUID      `json:"documentId"`
	WorkflowType  WorkflowType   `json:"workflowType"`
	CurrentStatus WorkflowStatus `json:"currentStatus"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}
