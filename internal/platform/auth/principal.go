package auth

import "context"

type contextKey string

const (
	UserIDKey   contextKey = "user_id"
	UserRoleKey contextKey = "user_role"
)

// Roles known to the service. Tokens may carry other roles; those callers
// get no profile and only see system-wide notifications.
const (
	RoleWorker  = "worker"
	RolePatient = "patient"
	RoleDoctor  = "doctor"
	RoleAdmin   = "admin"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID string
	Role   string
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, p.UserID)
	return context.WithValue(ctx, UserRoleKey, p.Role)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	uid := UserIDFromContext(ctx)
	if uid == "" {
		return Principal{}, false
	}
	return Principal{UserID: uid, Role: RoleFromContext(ctx)}, true
}

func UserIDFromContext(ctx context.Context) string {
	uid, _ := ctx.Value(UserIDKey).(string)
	return uid
}

func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(UserRoleKey).(string)
	return role
}
