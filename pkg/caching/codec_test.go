package caching

import (
	"encoding/json"
	"errors"
	"testing"
)

type payload struct {
	Names []string `json:"names"`
}

func TestEncodeDecode(t *testing.T) {
	data, err := Encode(KindPage, payload{Names: []string{"a", "b"}})
	if err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}

	var got payload
	if err := Decode(data, KindPage, &got); err != nil {
		t.Fatalf("Decode() failed: %v", err)
	}
	if len(got.Names) != 2 || got.Names[1] != "b" {
		t.Errorf("Decode() = %+v, want names [a b]", got)
	}

	env, err := Peek(data)
	if err != nil {
		t.Fatalf("Peek() failed: %v", err)
	}
	if env.Version != SchemaVersion || env.Kind != KindPage || env.SavedAt.IsZero() {
		t.Errorf("Peek() = %+v, want current version, page kind, saved_at set", env)
	}
}

func TestDecode_Invalid(t *testing.T) {
	valid, _ := Encode(KindImages, map[string]string{"Go": "go.png"})

	stale, _ := json.Marshal(Envelope{Version: SchemaVersion + 1, Kind: KindImages, Payload: json.RawMessage(`{}`)})
	empty, _ := json.Marshal(Envelope{Version: SchemaVersion, Kind: KindImages})

	tests := []struct {
		name string
		data []byte
		kind Kind
	}{
		{"garbage", []byte("not json"), KindImages},
		{"raw legacy blob", []byte(`[{"title":"x"}]`), KindPage},
		{"wrong kind", valid, KindSnapshot},
		{"stale version", stale, KindImages},
		{"empty payload", empty, KindImages},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v map[string]string
			err := Decode(tt.data, tt.kind, &v)
			if !errors.Is(err, ErrInvalidEntry) {
				t.Errorf("Decode() = %v, want ErrInvalidEntry", err)
			}
		})
	}
}
