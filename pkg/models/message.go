package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// MessageEnvelope is the wire format for every topic. Payload is the typed
// body for the topic it travels on; Metadata carries pipeline bookkeeping
// and never influences business logic.
type MessageEnvelope struct {
	ID        string          `json:"id"`
	Source    string          `json:"source"`
	GuildID   uint64          `json:"guild_id"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
	Metadata  Metadata        `json:"metadata"`
}

type Metadata struct {
	TraceID string                 `json:"trace_id,omitempty"`
	Kind    string                 `json:"kind,omitempty"`
	DLQ     map[string]interface{} `json:"dlq,omitempty"`
}

// NewEnvelope wraps a payload for publishing. Marshalling the payload here
// keeps producers from ever publishing a half-built envelope.
func NewEnvelope(source string, guildID uint64, payload interface{}) (MessageEnvelope, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return MessageEnvelope{}, err
	}

	return MessageEnvelope{
		ID:        uuid.New().String(),
		Source:    source,
		GuildID:   guildID,
		Timestamp: time.Now().UTC(),
		Payload:   body,
	}, nil
}

// DecodePayload unmarshals the envelope body into the caller's typed value.
func (e MessageEnvelope) DecodePayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}
