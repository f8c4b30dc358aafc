package domain

import (
	"encoding/json"
	"time"
)

// Action describes the mutation applied to a record.
type Action string

// Mutation actions recorded in Change entries.
const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Change captures a committed mutation for audit trails. Before is undefined
// for creates and After is undefined for deletes.
type Change struct {
	Entity     EntityKind    `json:"entity"`
	Action     Action        `json:"action"`
	ID         string        `json:"id"`
	Before     ChangePayload `json:"before"`
	After      ChangePayload `json:"after"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// ChangePayload wraps a JSON snapshot of a record's before/after state.
// Callers should unmarshal the raw bytes into typed structures as needed.
type ChangePayload struct {
	defined bool
	raw     json.RawMessage
}

// NewChangePayload builds a payload wrapper from raw JSON. The bytes are cloned
// so callers cannot mutate recorded history.
func NewChangePayload(raw json.RawMessage) ChangePayload {
	payload := ChangePayload{defined: true}
	if raw != nil {
		payload.raw = cloneRawMessage(raw)
	}
	return payload
}

// NewChangePayloadFromValue marshals a typed record into a ChangePayload.
func NewChangePayloadFromValue[T any](value T) (ChangePayload, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return ChangePayload{}, err
	}
	return NewChangePayload(raw), nil
}

// Defined reports whether the payload has been initialized.
func (p ChangePayload) Defined() bool {
	return p.defined
}

// Raw returns a cloned copy of the underlying JSON bytes. Nil is returned when
// the payload is undefined or empty.
func (p ChangePayload) Raw() json.RawMessage {
	if !p.defined || len(p.raw) == 0 {
		return nil
	}
	return cloneRawMessage(p.raw)
}

// Decode unmarshals the payload into dst. Undefined payloads leave dst untouched.
func (p ChangePayload) Decode(dst any) error {
	if !p.defined || len(p.raw) == 0 {
		return nil
	}
	return json.Unmarshal(p.raw, dst)
}

// MarshalJSON renders undefined payloads as null.
func (p ChangePayload) MarshalJSON() ([]byte, error) {
	if !p.defined || len(p.raw) == 0 {
		return []byte("null"), nil
	}
	return cloneRawMessage(p.raw), nil
}

func cloneRawMessage(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	cloned := make(json.RawMessage, len(raw))
	copy(cloned, raw)
	return cloned
}
