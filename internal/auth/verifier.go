// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BRACU-out Contributors

package auth

import (
	"crypto/subtle"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/bcrypt"
)

// HashCost is the bcrypt cost used for new credentials.
const HashCost = 12

// bcryptPrefixes are the version markers that identify a stored credential
// as a bcrypt hash. Anything else is treated as legacy plain text.
var bcryptPrefixes = []string{"$2a$", "$2b$", "$2y$"}

// ErrEmptyPassword is returned when attempting to hash an empty password.
var ErrEmptyPassword = oops.Code("AUTH_EMPTY_PASSWORD").Errorf("password cannot be empty")

// Verifier validates a plaintext password against a stored credential of
// unknown format and produces hashes for new credentials.
type Verifier interface {
	// Hash produces a bcrypt hash of the password.
	Hash(password string) (string, error)

	// Verify reports whether the password matches the stored credential.
	// Comparison failures of any kind (malformed hash included) report a
	// mismatch; Verify never returns an error to the caller.
	Verify(password, stored string) bool

	// NeedsUpgrade reports whether the stored credential is still plain
	// text and should be migrated to a hash.
	NeedsUpgrade(stored string) bool
}

// BcryptVerifier implements Verifier.
//
// The credential store is mid-migration from plain-text to hashed storage,
// applied record by record. The stored format is self-describing via the
// bcrypt prefix, so each record picks its own comparison path.
type BcryptVerifier struct{}

// NewBcryptVerifier creates a new BcryptVerifier.
func NewBcryptVerifier() *BcryptVerifier {
	return &BcryptVerifier{}
}

// IsHashed reports whether the stored credential carries a bcrypt prefix.
func IsHashed(stored string) bool {
	for _, p := range bcryptPrefixes {
		if strings.HasPrefix(stored, p) {
			return true
		}
	}
	return false
}

// Hash produces a bcrypt hash of the password at HashCost.
func (v *BcryptVerifier) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), HashCost)
	if err != nil {
		return "", oops.Code("AUTH_HASH_FAILED").Wrap(err)
	}
	return string(hash), nil
}

// Verify reports whether the password matches the stored credential.
// Hashed credentials go through bcrypt's constant-time comparison; plain
// text falls back to an exact, case-sensitive equality check.
func (v *BcryptVerifier) Verify(password, stored string) bool {
	if stored == "" {
		return false
	}
	if IsHashed(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(stored)) == 1
}

// NeedsUpgrade reports whether the stored credential is legacy plain text.
func (v *BcryptVerifier) NeedsUpgrade(stored string) bool {
	return !IsHashed(stored)
}

var _ Verifier = (*BcryptVerifier)(nil)
