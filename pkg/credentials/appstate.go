package credentials

import (
	"encoding/json"
	"fmt"

	"github.com/harun/walet/pkg/jsonblob"
)

// AppStateSyncKeyFingerprint identifies the device set a sync key belongs to.
type AppStateSyncKeyFingerprint struct {
	RawID         uint32   `json:"rawId"`
	CurrentIndex  uint32   `json:"currentIndex"`
	DeviceIndexes []uint32 `json:"deviceIndexes"`
}

// AppStateSyncKeyData is the structured form of an app state sync key record.
type AppStateSyncKeyData struct {
	KeyData     jsonblob.Blob               `json:"keyData"`
	Fingerprint *AppStateSyncKeyFingerprint `json:"fingerprint,omitempty"`
	Timestamp   int64                       `json:"timestamp,omitempty"`
}

// DecodeAppStateSyncKey converts a generic decoded record value into its
// structured form.
func DecodeAppStateSyncKey(value interface{}) (*AppStateSyncKeyData, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode sync key value: %w", err)
	}

	var data AppStateSyncKeyData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to decode sync key value: %w", err)
	}
	return &data, nil
}
