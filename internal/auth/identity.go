// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BRACU-out Contributors

package auth

// Identity is the minimal payload attached to a session after a successful
// login. It never carries the credential.
type Identity struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	Email    string `json:"email"`
}

// IssueIdentity constructs the session identity for a verified user.
// Deterministic for the same record: the ID falls back to the email when the
// record has no identifier, and the username falls back to the email local
// part when no alias was ever stored. The role is copied verbatim; graduate
// stays graduate here and is normalized only at authorization time.
func IssueIdentity(user *User) Identity {
	id := user.ID.String()
	if isZeroULID(user.ID) {
		id = user.Email
	}
	return Identity{
		ID:       id,
		Name:     user.Name,
		Username: user.Alias(),
		Role:     user.Role,
		Email:    user.Email,
	}
}
