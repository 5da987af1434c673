package credentials

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/curve25519"

	"github.com/harun/walet/pkg/jsonblob"
)

// NewKeyPair generates a fresh X25519 key pair. The private scalar is
// clamped per RFC 7748 before the public key is derived.
func NewKeyPair() (KeyPair, error) {
	priv := make([]byte, curve25519.ScalarSize)
	if _, err := rand.Read(priv); err != nil {
		return KeyPair{}, fmt.Errorf("failed to read random bytes: %w", err)
	}
	priv[0] &= 248
	priv[31] &= 127
	priv[31] |= 64

	pub, err := curve25519.X25519(priv, curve25519.Basepoint)
	if err != nil {
		return KeyPair{}, fmt.Errorf("failed to derive public key: %w", err)
	}

	return KeyPair{Private: priv, Public: pub}, nil
}

// NewSigningKeyPair generates a fresh Ed25519 key pair used to sign pre keys.
func NewSigningKeyPair() (KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return KeyPair{}, fmt.Errorf("failed to generate signing key: %w", err)
	}
	return KeyPair{Private: jsonblob.Blob(priv), Public: jsonblob.Blob(pub)}, nil
}

// SignWithIdentity signs msg with the Ed25519 identity signing key.
func SignWithIdentity(signingKey KeyPair, msg []byte) jsonblob.Blob {
	return jsonblob.Blob(ed25519.Sign(ed25519.PrivateKey(signingKey.Private), msg))
}

// VerifyIdentitySignature reports whether sig is a valid identity signature
// over msg.
func VerifyIdentitySignature(signingKey KeyPair, msg, sig []byte) bool {
	if len(signingKey.Public) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(signingKey.Public), msg, sig)
}

// newRegistrationID returns a random 14 bit registration id.
func newRegistrationID() (uint32, error) {
	var buf [2]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, fmt.Errorf("failed to read random bytes: %w", err)
	}
	return uint32(binary.BigEndian.Uint16(buf[:])) & 16383, nil
}
