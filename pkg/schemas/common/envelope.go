package common

import (
	"time"

	"github.com/google/uuid"
)

type Envelope struct {
	Meta Meta `json:"meta"`
	Data any  `json:"data"`
}

type GenericEnvelope[T any] struct {
	Meta Meta `json:"meta"`
	Data T    `json:"data"`
}

// NewMeta stamps a fresh event ID and UTC time. An empty correlation ID
// falls back to the event ID.
func NewMeta(eventType, producer, correlationID string) Meta {
	id := uuid.NewString()
	if correlationID == "" {
		correlationID = id
	}
	return Meta{
		CorrelationID: correlationID,
		ID:            id,
		Producer:      producer,
		Time:          time.Now().UTC(),
		Type:          eventType,
	}
}
