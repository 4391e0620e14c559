// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BRACU-out Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/bracuout/portal/internal/auth"
)

// userColumns is the column list shared by every user query. The alias
// lives in two columns: username (current) and user_name (legacy import);
// both are kept because the historical data really is split across them.
const userColumns = `id, email, username, user_name, name, role, password,
	       student_id, graduation_year, company, position, is_active,
	       created_at, updated_at`

// UserRepository implements auth.Repository using PostgreSQL.
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create stores a new user. ID and timestamps are assigned when zero.
// A duplicate email maps to AUTH_USER_EXISTS.
func (r *UserRepository) Create(ctx context.Context, user *auth.User) error {
	if user.ID.Compare(ulid.ULID{}) == 0 {
		user.ID = ulid.Make()
	}
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}

	var username *string
	if user.Username != "" {
		username = &user.Username
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO users (
			id, email, username, name, role, password,
			student_id, graduation_year, company, position, is_active,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		user.ID.String(),
		auth.NormalizeEmail(user.Email),
		username,
		user.Name,
		user.Role.String(),
		user.Credential,
		user.StudentID,
		user.GraduationYear,
		user.Company,
		user.Position,
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("AUTH_USER_EXISTS").
				With("email", user.Email).
				Errorf("user with this email already exists")
		}
		return oops.Code("USER_CREATE_FAILED").
			With("operation", "insert user").
			With("email", user.Email).
			Wrap(err)
	}
	return nil
}

// FindByID retrieves a user by ID.
func (r *UserRepository) FindByID(ctx context.Context, id ulid.ULID) (*auth.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id.String())

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_FIND_BY_ID_FAILED").
			With("id", id.String()).
			Wrap(err)
	}
	return user, nil
}

// FindByEmail retrieves a user by email, case-insensitive.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE LOWER(email) = LOWER($1)
	`, email)

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").
			With("email", email).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_FIND_BY_EMAIL_FAILED").
			With("email", email).
			Wrap(err)
	}
	return user, nil
}

// FindByUsername retrieves a user by login alias across both historical
// columns, case-insensitive. An exact-case match wins when several records
// collide, which legacy data does not rule out.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*auth.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE LOWER(username) = LOWER($1) OR LOWER(user_name) = LOWER($1)
		ORDER BY (COALESCE(username, '') = $1 OR COALESCE(user_name, '') = $1) DESC
		LIMIT 1
	`, username)

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").
			With("username", username).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_FIND_BY_USERNAME_FAILED").
			With("username", username).
			Wrap(err)
	}
	return user, nil
}

// FindByEmailOrUsername retrieves a user matching the term against email or
// either alias column. An email match is preferred when both resolve.
func (r *UserRepository) FindByEmailOrUsername(ctx context.Context, term string) (*auth.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE LOWER(email) = LOWER($1)
		   OR LOWER(username) = LOWER($1)
		   OR LOWER(user_name) = LOWER($1)
		ORDER BY (LOWER(email) = LOWER($1)) DESC
		LIMIT 1
	`, term)

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").
			With("term", term).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_FIND_FAILED").
			With("term", term).
			Wrap(err)
	}
	return user, nil
}

// List returns all users.
func (r *UserRepository) List(ctx context.Context) ([]*auth.User, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		ORDER BY created_at
	`)
	if err != nil {
		return nil, oops.Code("USER_LIST_FAILED").Wrap(err)
	}
	defer rows.Close()
	return collectUsers(rows)
}

// ListByRole returns all users with the given stored role.
func (r *UserRepository) ListByRole(ctx context.Context, role auth.Role) ([]*auth.User, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE role = $1
		ORDER BY created_at
	`, role.String())
	if err != nil {
		return nil, oops.Code("USER_LIST_FAILED").With("role", role.String()).Wrap(err)
	}
	defer rows.Close()
	return collectUsers(rows)
}

// Update rewrites the record identified by user.Email.
func (r *UserRepository) Update(ctx context.Context, user *auth.User) error {
	var username *string
	if user.Username != "" {
		username = &user.Username
	}

	result, err := r.db.Exec(ctx, `
		UPDATE users SET
			username = $2,
			name = $3,
			role = $4,
			password = $5,
			student_id = $6,
			graduation_year = $7,
			company = $8,
			position = $9,
			is_active = $10,
			updated_at = $11
		WHERE LOWER(email) = LOWER($1)
	`,
		user.Email,
		username,
		user.Name,
		user.Role.String(),
		user.Credential,
		user.StudentID,
		user.GraduationYear,
		user.Company,
		user.Position,
		user.IsActive,
		time.Now(),
	)
	if err != nil {
		return oops.Code("USER_UPDATE_FAILED").
			With("email", user.Email).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").
			With("email", user.Email).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// UpdateCredential rewrites only the stored credential for a user.
func (r *UserRepository) UpdateCredential(ctx context.Context, id ulid.ULID, credential string) error {
	result, err := r.db.Exec(ctx, `
		UPDATE users SET password = $2, updated_at = $3
		WHERE id = $1
	`, id.String(), credential, time.Now())
	if err != nil {
		return oops.Code("USER_UPDATE_CREDENTIAL_FAILED").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// Delete removes the user with the given email.
func (r *UserRepository) Delete(ctx context.Context, email string) error {
	result, err := r.db.Exec(ctx, `
		DELETE FROM users WHERE LOWER(email) = LOWER($1)
	`, email)
	if err != nil {
		return oops.Code("USER_DELETE_FAILED").
			With("email", email).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").
			With("email", email).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

func collectUsers(rows pgx.Rows) ([]*auth.User, error) {
	var users []*auth.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, oops.Code("USER_SCAN_FAILED").Wrap(err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("USER_LIST_FAILED").With("operation", "iterate users").Wrap(err)
	}
	return users, nil
}

// scanUser scans a single row into a User. Callers handle pgx.ErrNoRows.
// The alias is coalesced from the two historical columns at scan time, so
// the rest of the codebase only ever sees one username field.
func scanUser(row pgx.Row) (*auth.User, error) {
	var (
		idStr          string
		email          string
		username       *string
		userNameLegacy *string
		name           string
		roleStr        string
		credential     string
		studentID      *string
		graduationYear *int
		company        *string
		position       *string
		isActive       bool
		createdAt      time.Time
		updatedAt      time.Time
	)

	err := row.Scan(
		&idStr,
		&email,
		&username,
		&userNameLegacy,
		&name,
		&roleStr,
		&credential,
		&studentID,
		&graduationYear,
		&company,
		&position,
		&isActive,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // callers wrap with context-specific info
		}
		return nil, oops.Code("USER_SCAN_FAILED").Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("USER_INVALID_ID").
			With("id", idStr).
			Wrap(err)
	}

	alias := ""
	if username != nil {
		alias = *username
	} else if userNameLegacy != nil {
		alias = *userNameLegacy
	}

	return &auth.User{
		ID:             id,
		Email:          email,
		Username:       alias,
		Name:           name,
		Role:           auth.Role(roleStr),
		Credential:     credential,
		StudentID:      studentID,
		GraduationYear: graduationYear,
		Company:        company,
		Position:       position,
		IsActive:       isActive,
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}, nil
}

// Compile-time interface check.
var _ auth.Repository = (*UserRepository)(nil)
