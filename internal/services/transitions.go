package services

import (
	"github.com/RaidOuahioune/dms/internal/events"
	"github.com/RaidOuahioune/dms/pkg/models"
)

// EmptyPayload marks a status event that carries no attached data. The
// projector treats it as "status only" and appends nothing.
const EmptyPayload = "{}"

// PlaceholderFields is emitted when extraction completes without any
// action data, so downstream consumers always receive a parseable payload.
const PlaceholderFields = `{"extractedFields": {"documentType": "Auto-detected"}}`

// Emission is one event the state machine wants published alongside a
// status change. The service layer attaches the document id and wraps Data
// in the topic's wire payload.
type Emission struct {
	Topic string
	Data  string
}

// Outcome is the result of one transition: the status to persist and the
// events to publish. An Outcome with Next == current and no events is a
// no-op.
type Outcome struct {
	Next   models.WorkflowStatus
	Events []Emission
}

// InitialStatus is the static initial-state table keyed by workflow type.
func InitialStatus(t models.WorkflowType) models.WorkflowStatus {
	if t == models.WorkflowDocumentUpload {
		return models.StatusFieldExtractionPending
	}
	return models.StatusSubmitted
}

// NextStep is the workflow transition function. It is pure: all business
// rules about what follows a given stage live here and nowhere else.
//
// SUBMITTED is only reachable by DOCUMENT_CREATION workflows (uploads
// start at FIELD_EXTRACTION_PENDING), so the upload branch of that row is
// deliberately absent; any such instance no-ops.
func NextStep(t models.WorkflowType, current models.WorkflowStatus, actionData string) Outcome {
	switch current {
	case models.StatusSubmitted:
		if t != models.WorkflowDocumentCreation {
			return Outcome{Next: current}
		}
		return Outcome{
			Next: models.StatusPublished,
			Events: []Emission{
				{Topic: events.TopicDocumentValidated, Data: EmptyPayload},
				{Topic: events.TopicDocumentPublished, Data: EmptyPayload},
			},
		}

	case models.StatusFieldExtractionPending:
		data := actionData
		if data == "" {
			data = PlaceholderFields
		}
		return Outcome{
			Next:   models.StatusValidationPending,
			Events: []Emission{{Topic: events.TopicDocumentFieldsExtracted, Data: data}},
		}

	case models.StatusValidationPending:
		data := actionData
		if data == "" {
			data = EmptyPayload
		}
		return Outcome{
			Next:   models.StatusValidated,
			Events: []Emission{{Topic: events.TopicDocumentValidated, Data: data}},
		}

	case models.StatusValidated:
		return Outcome{
			Next:   models.StatusPublished,
			Events: []Emission{{Topic: events.TopicDocumentPublished, Data: EmptyPayload}},
		}

	default:
		// PUBLISHED and REJECTED are terminal.
		return Outcome{Next: current}
	}
}
