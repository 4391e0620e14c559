// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BRACU-out Contributors

// Package access provides route authorization for the BRACU-out portal.
//
// The gate is a stateless per-request decision function: given the role
// resolved from the session and the request path, it answers Allow or Deny
// with a redirect target. Recruiters deliberately get cross-cutting read
// access to the student and alumni areas for candidate sourcing; admin is a
// superset role with access to everything.
package access

import (
	"net/url"

	"github.com/gobwas/glob"
	"github.com/samber/oops"

	"github.com/bracuout/portal/internal/auth"
)

// UnauthorizedNotice is the message carried to the login page on denial.
const UnauthorizedNotice = "You Are Not Authorized!"

// SignInPath is the generic entry point for unauthenticated requests.
const SignInPath = "/auth/login"

// Decision is the outcome of a gate check.
type Decision struct {
	Allowed  bool
	Redirect string // set only on denial
}

// Allow is the positive decision.
var Allow = Decision{Allowed: true}

// Deny builds a denial redirecting to the given login page with the
// unauthorized notice attached.
func Deny(loginPath string) Decision {
	return Decision{
		Allowed:  false,
		Redirect: loginPath + "?message=" + url.QueryEscape(UnauthorizedNotice),
	}
}

// rule maps a set of route prefixes to the roles allowed through and the
// login page a denied request is sent to.
type rule struct {
	globs    []glob.Glob
	allowed  map[auth.Role]bool
	loginURL string
}

// Gate decides, per request, whether a role may access a route.
type Gate struct {
	rules []rule
}

// RuleSpec is the declarative form a Gate is built from.
type RuleSpec struct {
	Prefixes []string
	Roles    []auth.Role
	LoginURL string
}

// defaultRules is the portal's access matrix. Prefixes are non-overlapping.
func defaultRules() []RuleSpec {
	return []RuleSpec{
		{
			Prefixes: []string{"/admin"},
			Roles:    []auth.Role{auth.RoleAdmin},
			LoginURL: SignInPath,
		},
		{
			Prefixes: []string{"/user", "/student"},
			Roles:    []auth.Role{auth.RoleStudent, auth.RoleRecruiter, auth.RoleAdmin},
			LoginURL: "/auth/student",
		},
		{
			Prefixes: []string{"/recruiter"},
			Roles:    []auth.Role{auth.RoleRecruiter, auth.RoleAdmin},
			LoginURL: "/auth/recruiter",
		},
		{
			Prefixes: []string{"/alumni"},
			Roles:    []auth.Role{auth.RoleAlumni, auth.RoleRecruiter, auth.RoleAdmin},
			LoginURL: "/auth/alumni",
		},
	}
}

// NewGate creates a gate with the portal's default access matrix.
//
// Panics if the built-in patterns fail to compile (a code bug, fail fast).
func NewGate() *Gate {
	g, err := NewGateWithRules(defaultRules())
	if err != nil {
		panic("invalid route pattern in default access rules: " + err.Error())
	}
	return g
}

// NewGateWithRules creates a gate from a custom rule set.
func NewGateWithRules(specs []RuleSpec) (*Gate, error) {
	rules := make([]rule, 0, len(specs))
	for _, spec := range specs {
		r := rule{
			allowed:  make(map[auth.Role]bool, len(spec.Roles)),
			loginURL: spec.LoginURL,
		}
		for _, prefix := range spec.Prefixes {
			// Prefix semantics: "/admin*" matches /admin and everything
			// under it, with no separator so the glob behaves like a
			// plain string-prefix test.
			g, err := glob.Compile(prefix + "*")
			if err != nil {
				return nil, oops.In("access").
					Code("INVALID_ROUTE_PATTERN").
					With("prefix", prefix).
					Wrap(err)
			}
			r.globs = append(r.globs, g)
		}
		for _, role := range spec.Roles {
			r.allowed[role] = true
		}
		rules = append(rules, r)
	}
	return &Gate{rules: rules}, nil
}

// Matches reports whether any rule covers the path. Callers use this to
// scope enforcement to protected routes; everything else is public.
func (g *Gate) Matches(path string) bool {
	for _, r := range g.rules {
		for _, pattern := range r.globs {
			if pattern.Match(path) {
				return true
			}
		}
	}
	return false
}

// Check decides whether the role may access the path. An empty role means
// the request is unauthenticated and is denied before any matching, toward
// the generic sign-in entry point. The legacy graduate role is normalized
// to alumni here, never at the call sites.
func (g *Gate) Check(role auth.Role, path string) Decision {
	if role == "" {
		return Decision{Allowed: false, Redirect: SignInPath}
	}

	effective := role.Normalize()
	for _, r := range g.rules {
		for _, pattern := range r.globs {
			if !pattern.Match(path) {
				continue
			}
			if r.allowed[effective] {
				return Allow
			}
			return Deny(r.loginURL)
		}
	}

	// Paths outside the matrix are public to any signed-in user.
	return Allow
}
