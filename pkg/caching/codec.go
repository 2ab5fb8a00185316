package caching

import (
	"encoding/json"
	"fmt"
	"time"
)

// SchemaVersion is bumped whenever a payload layout changes. Entries written
// under another version are treated as invalid.
const SchemaVersion = 1

// Kind names the payload type held by an envelope.
type Kind string

const (
	KindPage     Kind = "page"
	KindImages   Kind = "images"
	KindSnapshot Kind = "snapshot"
)

// Envelope wraps every cached value.
type Envelope struct {
	Version int             `json:"version"`
	Kind    Kind            `json:"kind"`
	SavedAt time.Time       `json:"saved_at"`
	Payload json.RawMessage `json:"payload"`
}

// Encode serializes v into a versioned envelope.
func Encode(kind Kind, v interface{}) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", kind, err)
	}
	return json.Marshal(Envelope{
		Version: SchemaVersion,
		Kind:    kind,
		SavedAt: time.Now().UTC(),
		Payload: payload,
	})
}

// Peek parses the envelope header without decoding the payload.
func Peek(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	return env, nil
}

// Decode checks version and kind, then unmarshals the payload into v.
// Every failure wraps ErrInvalidEntry.
func Decode(data []byte, kind Kind, v interface{}) error {
	env, err := Peek(data)
	if err != nil {
		return err
	}
	if env.Version != SchemaVersion {
		return fmt.Errorf("%w: schema version %d, want %d", ErrInvalidEntry, env.Version, SchemaVersion)
	}
	if env.Kind != kind {
		return fmt.Errorf("%w: kind %q, want %q", ErrInvalidEntry, env.Kind, kind)
	}
	if len(env.Payload) == 0 || string(env.Payload) == "null" {
		return fmt.Errorf("%w: empty payload", ErrInvalidEntry)
	}
	if err := json.Unmarshal(env.Payload, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	return nil
}
