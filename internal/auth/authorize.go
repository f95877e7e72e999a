package auth

import (
	"log/slog"
	"net/http"
)

// Authorization is deliberately a flat predicate surface instead of a
// role-mixin hierarchy: route-level role gates plus resource predicates that
// services invoke before each operation.

// Authorization wraps route-level role checks.
type Authorization struct {
	logger *slog.Logger
}

func NewAuthorization(logger *slog.Logger) *Authorization {
	return &Authorization{logger: logger}
}

// RequireRole gates a route subtree to a single role.
func (a *Authorization) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if user.Role != role {
				a.logger.WarnContext(r.Context(), "access denied: role mismatch",
					"user_id", user.ID,
					"role", user.Role,
					"required_role", role)
				http.Error(w, "Forbidden: insufficient role", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// CanManageApplicant reports whether the actor is the designated approver for
// an applicant's department or team. Managers never act on their own
// applications.
func CanManageApplicant(actor *User, applicantID int64, departmentID, teamID *int64) bool {
	if actor == nil || !actor.IsManager() {
		return false
	}
	if actor.ID == applicantID {
		return false
	}
	if departmentID != nil && actor.ManagesDepartment(*departmentID) {
		return true
	}
	if teamID != nil && actor.ManagesTeam(*teamID) {
		return true
	}
	return false
}

// CanViewAttendance reports whether the actor may read another user's
// attendance record: the owner, HR, or a manager of the owner's unit.
func CanViewAttendance(actor *User, ownerID int64, departmentID, teamID *int64) bool {
	if actor == nil {
		return false
	}
	if actor.ID == ownerID || actor.IsHr() {
		return true
	}
	return CanManageApplicant(actor, ownerID, departmentID, teamID)
}
