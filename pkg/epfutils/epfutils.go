/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package epfutils

import (
	"crypto/rand"
	"errors"

	"github.com/btcsuite/btcutil/base58"
	"github.com/google/uuid"
)

const sessionIDByteLength = 16

var (
	// ErrNotBase58Encoded is returned when a session ID is not a base58-encoded value.
	ErrNotBase58Encoded = errors.New("session ID must be a base58-encoded value")
	// ErrNot128BitValue is returned when a session ID is base58-encoded but does not decode to 128 bits.
	ErrNot128BitValue = errors.New("session ID is base58-encoded, but the decoded value is not 128 bits long")
)

type generateRandomBytesFunc func([]byte) (int, error)

// GenerateSessionID generates a base58-encoded 128-bit session ID using a cryptographically secure
// random number generator.
func GenerateSessionID() (string, error) {
	return generateSessionID(rand.Read)
}

func generateSessionID(generateRandomBytes generateRandomBytesFunc) (string, error) {
	randomBytes := make([]byte, sessionIDByteLength)

	_, err := generateRandomBytes(randomBytes)
	if err != nil {
		return "", err
	}

	return base58.Encode(randomBytes), nil
}

// CheckSessionID returns nil if id is a base58-encoded 128-bit value.
func CheckSessionID(id string) error {
	decoded := base58.Decode(id)
	if len(decoded) == 0 {
		return ErrNotBase58Encoded
	}

	if len(decoded) != sessionIDByteLength {
		return ErrNot128BitValue
	}

	return nil
}

// SessionIDToUUID converts a base58-encoded 128-bit session ID into its UUID string form.
func SessionIDToUUID(id string) (string, error) {
	if err := CheckSessionID(id); err != nil {
		return "", err
	}

	u, err := uuid.FromBytes(base58.Decode(id))
	if err != nil {
		return "", err
	}

	return u.String(), nil
}
