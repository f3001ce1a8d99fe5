// Package events provides the topic-based event bus that connects the
// documents, workflow and patients services. Delivery is at-least-once;
// ordering is guaranteed only within a topic stream, so publishers key
// every message by document id and all events for one document land on
// the same stream.
package events

import "context"

// Topic names shared by all services.
const (
	TopicDocumentCreated         = "document-created"
	TopicDocumentUpdated         = "document-updated"
	TopicDocumentDeleted         = "document-deleted"
	TopicDocumentUploaded        = "document-uploaded"
	TopicDocumentFieldsExtracted = "document-fields-extracted"
	TopicDocumentValidated       = "document-validated"
	TopicDocumentRejected        = "document-rejected"
	TopicDocumentPublished       = "document-published"
	TopicExtractionRequest       = "medical-document-for-extraction"
	TopicExtractionResponse      = "extraction-response"
)

// Envelope is the single wire shape every consumer sees: an optional
// routing key plus the raw body. Consumers that need a document id try
// the key first and fall back to parsing the body.
type Envelope struct {
	Topic string
	Key   string
	Body  []byte
}

// Handler processes one delivered envelope. A returned error means the
// message is logged and dropped; it is never fatal to the consumer loop.
type Handler func(ctx context.Context, env Envelope) error

// Bus is the publish/subscribe boundary. Subscribe registers a handler
// for a topic under a consumer group; delivery runs on bus-owned
// goroutines until Close.
type Bus interface {
	Publish(ctx context.Context, topic, key string, body []byte) error
	Subscribe(topic, group string, h Handler)
	Close() error
}
