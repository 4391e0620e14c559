// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BRACU-out Contributors

// Package auth provides the credential verification and role resolution
// flow for the BRACU-out portal.
//
// # Domain Types
//
// User is the single account record shared by all portal roles. Records
// created before the store was unified may carry their login alias under
// either of two historical columns; Repository implementations are required
// to resolve a user no matter which column the alias landed in.
//
// # Services
//
// Service types coordinate domain operations:
//   - Service - login, logout, session validation
//   - RegistrationService - self-service account creation
//   - AdminService - administrative user management
//
// Stored password credentials are in one of two formats: a bcrypt hash or
// legacy plain text. Verifier handles both transparently; see the
// hash-passwords command for the operator-driven migration path.
package auth
