// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BRACU-out Contributors

package access_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bracuout/portal/internal/access"
	"github.com/bracuout/portal/internal/auth"
)

func denyTo(target string) access.Decision {
	return access.Decision{
		Allowed:  false,
		Redirect: target + "?message=" + url.QueryEscape(access.UnauthorizedNotice),
	}
}

func TestGate_Check_Matrix(t *testing.T) {
	gate := access.NewGate()

	tests := []struct {
		name string
		role auth.Role
		path string
		want access.Decision
	}{
		// /admin is admin-only.
		{"admin on admin", auth.RoleAdmin, "/admin", access.Allow},
		{"admin on admin subpage", auth.RoleAdmin, "/admin/users", access.Allow},
		{"student on admin", auth.RoleStudent, "/admin", denyTo(access.SignInPath)},
		{"recruiter on admin", auth.RoleRecruiter, "/admin/users", denyTo(access.SignInPath)},
		{"alumni on admin", auth.RoleAlumni, "/admin", denyTo(access.SignInPath)},

		// /user and /student admit student, recruiter and admin.
		{"student on user", auth.RoleStudent, "/user/profile", access.Allow},
		{"student on student", auth.RoleStudent, "/student/dashboard", access.Allow},
		{"recruiter on user", auth.RoleRecruiter, "/user", access.Allow},
		{"recruiter on student", auth.RoleRecruiter, "/student", access.Allow},
		{"admin on student", auth.RoleAdmin, "/student", access.Allow},
		{"alumni on user", auth.RoleAlumni, "/user", denyTo("/auth/student")},
		{"alumni on student", auth.RoleAlumni, "/student", denyTo("/auth/student")},

		// /recruiter admits recruiter and admin.
		{"recruiter on recruiter", auth.RoleRecruiter, "/recruiter/jobs", access.Allow},
		{"admin on recruiter", auth.RoleAdmin, "/recruiter", access.Allow},
		{"student on recruiter", auth.RoleStudent, "/recruiter", denyTo("/auth/recruiter")},
		{"alumni on recruiter", auth.RoleAlumni, "/recruiter/jobs", denyTo("/auth/recruiter")},

		// /alumni admits alumni, recruiter and admin.
		{"alumni on alumni", auth.RoleAlumni, "/alumni", access.Allow},
		{"recruiter on alumni", auth.RoleRecruiter, "/alumni/events", access.Allow},
		{"admin on alumni", auth.RoleAdmin, "/alumni", access.Allow},
		{"student on alumni", auth.RoleStudent, "/alumni", denyTo("/auth/alumni")},

		// graduate is normalized to alumni for authorization.
		{"graduate on alumni", auth.RoleGraduate, "/alumni/events", access.Allow},
		{"graduate on recruiter", auth.RoleGraduate, "/recruiter", denyTo("/auth/recruiter")},
		{"graduate on admin", auth.RoleGraduate, "/admin", denyTo(access.SignInPath)},
		{"graduate on student", auth.RoleGraduate, "/student", denyTo("/auth/student")},

		// Paths outside the matrix are public.
		{"student on public root", auth.RoleStudent, "/", access.Allow},
		{"alumni on public page", auth.RoleAlumni, "/jobs/listings", access.Allow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, gate.Check(tt.role, tt.path))
		})
	}
}

func TestGate_Check_NoRole(t *testing.T) {
	gate := access.NewGate()

	// Unauthenticated requests are denied before any matching, toward the
	// generic sign-in page, with no notice parameter.
	for _, path := range []string{"/admin", "/student", "/alumni", "/recruiter", "/user/profile"} {
		decision := gate.Check("", path)
		assert.False(t, decision.Allowed, "path %s", path)
		assert.Equal(t, access.SignInPath, decision.Redirect, "path %s", path)
	}
}

func TestGate_Check_PrefixSemantics(t *testing.T) {
	gate := access.NewGate()

	// Matching is on string prefix, not path segments.
	assert.False(t, gate.Check(auth.RoleStudent, "/administrator").Allowed)

	// Deep nesting stays covered.
	assert.True(t, gate.Check(auth.RoleAdmin, "/admin/users/jdoe/edit").Allowed)
}

func TestGate_Matches(t *testing.T) {
	gate := access.NewGate()

	assert.True(t, gate.Matches("/admin"))
	assert.True(t, gate.Matches("/user/profile"))
	assert.True(t, gate.Matches("/student"))
	assert.True(t, gate.Matches("/recruiter/jobs"))
	assert.True(t, gate.Matches("/alumni/events"))

	assert.False(t, gate.Matches("/"))
	assert.False(t, gate.Matches("/auth/login"))
	assert.False(t, gate.Matches("/api/auth/login"))
}

func TestDeny_EncodesNotice(t *testing.T) {
	decision := access.Deny("/auth/student")
	require.False(t, decision.Allowed)

	parsed, err := url.Parse(decision.Redirect)
	require.NoError(t, err)
	assert.Equal(t, "/auth/student", parsed.Path)
	assert.Equal(t, access.UnauthorizedNotice, parsed.Query().Get("message"))
}

func TestNewGateWithRules_BadPattern(t *testing.T) {
	_, err := access.NewGateWithRules([]access.RuleSpec{
		{Prefixes: []string{"/ok["}, Roles: []auth.Role{auth.RoleAdmin}, LoginURL: "/auth/login"},
	})
	require.Error(t, err)
}
