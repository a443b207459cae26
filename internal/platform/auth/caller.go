// Package auth consumes the upstream identity boundary: it validates caller
// tokens and exposes the resolved {user id, role, department scope} to the
// engine. Token issuance lives outside this system.
package auth

import (
	"context"

	"github.com/google/uuid"
)

const (
	RoleProfessional = "professional"
	RoleAssistant    = "assistant"
	RoleAdmin        = "admin"
)

type contextKey string

const CallerKey contextKey = "caller"

// Caller is the resolved identity attached to every engine operation.
type Caller struct {
	UserID        uuid.UUID
	Role          string
	DepartmentIDs []uuid.UUID
}

// IsAdmin reports whether the caller holds the admin role.
func (c Caller) IsAdmin() bool { return c.Role == RoleAdmin }

// InDepartment reports whether id is within the caller's department scope.
func (c Caller) InDepartment(id uuid.UUID) bool {
	for _, d := range c.DepartmentIDs {
		if d == id {
			return true
		}
	}
	return false
}

// WithCaller returns a context carrying the caller.
func WithCaller(ctx context.Context, caller Caller) context.Context {
	return context.WithValue(ctx, CallerKey, caller)
}

// CallerFromContext retrieves the caller set by the auth middleware.
// The zero Caller is returned when none is present.
func CallerFromContext(ctx context.Context) Caller {
	caller, _ := ctx.Value(CallerKey).(Caller)
	return caller
}
