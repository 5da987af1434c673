package credentials

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/harun/walet/pkg/jsonblob"
)

// KeyPair holds raw public and private key material.
type KeyPair struct {
	Private jsonblob.Blob `json:"private"`
	Public  jsonblob.Blob `json:"public"`
}

// SignedKeyPair is a pre key signed by the identity signing key.
type SignedKeyPair struct {
	KeyPair   KeyPair       `json:"keyPair"`
	Signature jsonblob.Blob `json:"signature"`
	KeyID     uint32        `json:"keyId"`
}

// AccountSettings carries per-account behavior toggles.
type AccountSettings struct {
	UnarchiveChats bool `json:"unarchiveChats"`
}

// Creds is the root credential bundle for a session. It is persisted as a
// single JSON document and mutated in memory between saves.
type Creds struct {
	NoiseKey                 KeyPair         `json:"noiseKey"`
	PairingEphemeralKeyPair  KeyPair         `json:"pairingEphemeralKeyPair"`
	SignedIdentityKey        KeyPair         `json:"signedIdentityKey"`
	IdentitySigningKey       KeyPair         `json:"identitySigningKey"`
	SignedPreKey             SignedKeyPair   `json:"signedPreKey"`
	RegistrationID           uint32          `json:"registrationId"`
	AdvSecretKey             string          `json:"advSecretKey"`
	NextPreKeyID             uint32          `json:"nextPreKeyId"`
	FirstUnuploadedPreKeyID  uint32          `json:"firstUnuploadedPreKeyId"`
	AccountSyncCounter       uint32          `json:"accountSyncCounter"`
	AccountSettings          AccountSettings `json:"accountSettings"`
	Registered               bool            `json:"registered"`
	PairingCode              string          `json:"pairingCode,omitempty"`
	LastAccountSyncTimestamp int64           `json:"lastAccountSyncTimestamp,omitempty"`
}

// NewCreds creates a default credential bundle with freshly generated key
// material and zeroed counters.
func NewCreds() (*Creds, error) {
	noiseKey, err := NewKeyPair()
	if err != nil {
		return nil, fmt.Errorf("failed to generate noise key: %w", err)
	}
	pairingKey, err := NewKeyPair()
	if err != nil {
		return nil, fmt.Errorf("failed to generate pairing key: %w", err)
	}
	identityKey, err := NewKeyPair()
	if err != nil {
		return nil, fmt.Errorf("failed to generate identity key: %w", err)
	}
	signingKey, err := NewSigningKeyPair()
	if err != nil {
		return nil, fmt.Errorf("failed to generate signing key: %w", err)
	}
	preKey, err := NewKeyPair()
	if err != nil {
		return nil, fmt.Errorf("failed to generate pre key: %w", err)
	}
	registrationID, err := newRegistrationID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate registration id: %w", err)
	}

	advSecret := make([]byte, 32)
	if _, err := rand.Read(advSecret); err != nil {
		return nil, fmt.Errorf("failed to generate adv secret: %w", err)
	}

	return &Creds{
		NoiseKey:                noiseKey,
		PairingEphemeralKeyPair: pairingKey,
		SignedIdentityKey:       identityKey,
		IdentitySigningKey:      signingKey,
		SignedPreKey: SignedKeyPair{
			KeyPair:   preKey,
			Signature: SignWithIdentity(signingKey, preKey.Public),
			KeyID:     1,
		},
		RegistrationID:          registrationID,
		AdvSecretKey:            base64.StdEncoding.EncodeToString(advSecret),
		NextPreKeyID:            1,
		FirstUnuploadedPreKeyID: 1,
		AccountSyncCounter:      0,
		AccountSettings:         AccountSettings{UnarchiveChats: false},
		Registered:              false,
	}, nil
}
