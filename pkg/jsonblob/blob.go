package jsonblob

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// TypeTag marks a JSON object as an encoded binary payload.
const TypeTag = "Buffer"

// Blob is a binary payload that survives JSON round-trips. It marshals to
// {"type":"Buffer","data":"<base64>"} and unmarshals from that form, from a
// plain base64 string, or from the legacy array-of-bytes form.
type Blob []byte

type taggedForm struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

// MarshalJSON encodes the blob in the tagged base64 form.
func (b Blob) MarshalJSON() ([]byte, error) {
	return json.Marshal(taggedForm{
		Type: TypeTag,
		Data: b.Base64(),
	})
}

// UnmarshalJSON decodes any of the accepted binary forms.
func (b *Blob) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*b = nil
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var encoded string
		if err := json.Unmarshal(data, &encoded); err != nil {
			return fmt.Errorf("failed to decode blob string: %w", err)
		}
		raw, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return fmt.Errorf("failed to decode blob base64: %w", err)
		}
		*b = raw
		return nil
	}

	var tagged struct {
		Type   string          `json:"type"`
		Buffer bool            `json:"buffer"`
		Data   json.RawMessage `json:"data"`
		Value  json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &tagged); err != nil {
		return fmt.Errorf("failed to decode blob object: %w", err)
	}
	if tagged.Type != TypeTag && !tagged.Buffer {
		return fmt.Errorf("object is not a tagged binary value")
	}

	payload := tagged.Data
	if len(payload) == 0 {
		payload = tagged.Value
	}
	raw, err := decodePayload(payload)
	if err != nil {
		return err
	}
	*b = raw
	return nil
}

func decodePayload(raw json.RawMessage) ([]byte, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []byte{}, nil
	}

	switch raw[0] {
	case '"':
		var encoded string
		if err := json.Unmarshal(raw, &encoded); err != nil {
			return nil, fmt.Errorf("failed to decode blob payload string: %w", err)
		}
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("failed to decode blob payload base64: %w", err)
		}
		return decoded, nil
	case '[':
		var nums []int
		if err := json.Unmarshal(raw, &nums); err != nil {
			return nil, fmt.Errorf("failed to decode blob payload array: %w", err)
		}
		decoded := make([]byte, len(nums))
		for i, n := range nums {
			if n < 0 || n > 255 {
				return nil, fmt.Errorf("blob payload byte %d out of range: %d", i, n)
			}
			decoded[i] = byte(n)
		}
		return decoded, nil
	}
	return nil, fmt.Errorf("unsupported blob payload form")
}

// Base64 returns the standard base64 encoding of the blob.
func (b Blob) Base64() string {
	return base64.StdEncoding.EncodeToString(b)
}
