// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BRACU-out Contributors

// Package authtest provides in-memory fakes of the auth repositories for
// service and handler tests.
package authtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/bracuout/portal/internal/auth"
)

// UserRepo is an in-memory auth.Repository.
type UserRepo struct {
	mu    sync.Mutex
	users map[ulid.ULID]*auth.User

	// Err, when set, is returned by every method to simulate an
	// infrastructure failure.
	Err error
}

// NewUserRepo creates an empty in-memory user repository.
func NewUserRepo() *UserRepo {
	return &UserRepo{users: make(map[ulid.ULID]*auth.User)}
}

// Seed inserts users directly, bypassing Create validation.
func (r *UserRepo) Seed(users ...*auth.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range users {
		cp := *u
		if cp.ID.Compare(ulid.ULID{}) == 0 {
			cp.ID = ulid.Make()
			u.ID = cp.ID
		}
		r.users[cp.ID] = &cp
	}
}

func (r *UserRepo) Create(_ context.Context, user *auth.User) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	email := auth.NormalizeEmail(user.Email)
	for _, existing := range r.users {
		if auth.NormalizeEmail(existing.Email) == email {
			return oops.Code("AUTH_USER_EXISTS").With("email", email).Errorf("email already registered")
		}
	}
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
	cp := *user
	r.users[cp.ID] = &cp
	return nil
}

func (r *UserRepo) FindByID(_ context.Context, id ulid.ULID) (*auth.User, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, fmt.Errorf("user %s: %w", id, auth.ErrNotFound)
}

func (r *UserRepo) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	email = auth.NormalizeEmail(email)
	for _, u := range r.users {
		if auth.NormalizeEmail(u.Email) == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", email, auth.ErrNotFound)
}

func (r *UserRepo) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username != "" && strings.EqualFold(u.Username, username) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", username, auth.ErrNotFound)
}

func (r *UserRepo) FindByEmailOrUsername(ctx context.Context, term string) (*auth.User, error) {
	if u, err := r.FindByEmail(ctx, term); err == nil {
		return u, nil
	} else if r.Err != nil {
		return nil, err
	}
	return r.FindByUsername(ctx, term)
}

func (r *UserRepo) List(_ context.Context) ([]*auth.User, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*auth.User, 0, len(r.users))
	for _, u := range r.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (r *UserRepo) ListByRole(_ context.Context, role auth.Role) ([]*auth.User, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*auth.User
	for _, u := range r.users {
		if u.Role == role {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *UserRepo) Update(_ context.Context, user *auth.User) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	email := auth.NormalizeEmail(user.Email)
	for id, existing := range r.users {
		if auth.NormalizeEmail(existing.Email) == email {
			cp := *user
			cp.ID = id
			cp.UpdatedAt = time.Now()
			r.users[id] = &cp
			return nil
		}
	}
	return fmt.Errorf("user %s: %w", email, auth.ErrNotFound)
}

func (r *UserRepo) UpdateCredential(_ context.Context, id ulid.ULID, credential string) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id, auth.ErrNotFound)
	}
	u.Credential = credential
	u.UpdatedAt = time.Now()
	return nil
}

func (r *UserRepo) Delete(_ context.Context, email string) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	email = auth.NormalizeEmail(email)
	for id, u := range r.users {
		if auth.NormalizeEmail(u.Email) == email {
			delete(r.users, id)
			return nil
		}
	}
	return fmt.Errorf("user %s: %w", email, auth.ErrNotFound)
}

var _ auth.Repository = (*UserRepo)(nil)

// SessionRepo is an in-memory auth.SessionRepository.
type SessionRepo struct {
	mu       sync.Mutex
	sessions map[ulid.ULID]*auth.WebSession

	// Err, when set, is returned by every method.
	Err error
}

// NewSessionRepo creates an empty in-memory session repository.
func NewSessionRepo() *SessionRepo {
	return &SessionRepo{sessions: make(map[ulid.ULID]*auth.WebSession)}
}

func (r *SessionRepo) Create(_ context.Context, session *auth.WebSession) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *session
	r.sessions[cp.ID] = &cp
	return nil
}

func (r *SessionRepo) GetByTokenHash(_ context.Context, tokenHash string) (*auth.WebSession, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.TokenHash == tokenHash {
			cp := *s
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("session: %w", auth.ErrNotFound)
}

func (r *SessionRepo) UpdateLastSeen(_ context.Context, id ulid.ULID, lastSeen time.Time) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return fmt.Errorf("session %s: %w", id, auth.ErrNotFound)
	}
	s.LastSeenAt = lastSeen
	return nil
}

func (r *SessionRepo) Delete(_ context.Context, id ulid.ULID) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return fmt.Errorf("session %s: %w", id, auth.ErrNotFound)
	}
	delete(r.sessions, id)
	return nil
}

func (r *SessionRepo) DeleteExpired(_ context.Context) (int64, error) {
	if r.Err != nil {
		return 0, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, s := range r.sessions {
		if s.IsExpired() {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}

// Len reports the number of stored sessions.
func (r *SessionRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

var _ auth.SessionRepository = (*SessionRepo)(nil)
