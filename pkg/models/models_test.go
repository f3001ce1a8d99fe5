package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWorkflowType(t *testing.T) {
	for _, s := range []string{"DOCUMENT_CREATION", "DOCUMENT_UPLOAD"} {
		got, err := ParseWorkflowType(s)
		require.NoError(t, err)
		assert.Equal(t, WorkflowType(s), got)
	}

	_, err := ParseWorkflowType("document_creation")
	assert.Error(t, err)
	_, err = ParseWorkflowType("")
	assert.Error(t, err)
}

func TestParseWorkflowStatus(t *testing.T) {
	valid := []string{
		"SUBMITTED", "FIELD_EXTRACTION_PENDING", "VALIDATION_PENDING",
		"VALIDATED", "PUBLISHED", "REJECTED",
	}
	for _, s := range valid {
		got, err := ParseWorkflowStatus(s)
		require.NoError(t, err)
		assert.Equal(t, WorkflowStatus(s), got)
	}

	_, err := ParseWorkflowStatus("PENDING")
	assert.Error(t, err)
}

func TestWorkflowStatusTerminal(t *testing.T) {
	assert.True(t, StatusPublished.Terminal())
	assert.True(t, StatusRejected.Terminal())
	assert.False(t, StatusSubmitted.Terminal())
	assert.False(t, StatusFieldExtractionPending.Terminal())
	assert.False(t, StatusValidationPending.Terminal())
	assert.False(t, StatusValidated.Terminal())
}

// All event payloads share one wire convention for the document id key.
func TestEventPayloadKeysAreCamelCase(t *testing.T) {
	docID := uuid.New()
	payloads := []interface{}{
		DocumentSummary{ID: docID},
		StatusEvent{DocumentID: docID},
		FieldsEvent{DocumentID: docID},
		ExtractionRequest{DocumentID: docID},
		ExtractionResponse{DocumentID: docID},
	}

	for _, p := range payloads {
		body, err := json.Marshal(p)
		require.NoError(t, err)
		assert.NotContains(t, string(body), "document_id", "%T", p)
		if _, ok := p.(DocumentSummary); !ok {
			assert.Contains(t, string(body), `"documentId"`, "%T", p)
		}
	}
}

func TestParseDocumentStatus(t *testing.T) {
	valid := []string{
		"PENDING", "PROCESSING", "VALIDATED", "PUBLISHED",
		"REJECTED", "DRAFT", "ARCHIVED",
	}
	for _, s := range valid {
		got, err := ParseDocumentStatus(s)
		require.NoError(t, err)
		assert.Equal(t, DocumentStatus(s), got)
	}

	_, err := ParseDocumentStatus("SUBMITTED")
	assert.Error(t, err)
}
