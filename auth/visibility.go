/*
visibility.go - Project visibility scope per user

PURPOSE:
  Answers "which projects may this user list?" without knowing what a
  project is: admins see everything, everyone else sees only the projects
  they are assigned to. The API layer applies the scope to its own rows.
*/
package auth

import "context"

// Scope is the resolved visibility of one user.
type Scope struct {
	All      bool
	Projects map[string]bool // ignored when All
}

// Allows reports whether the scope covers a project id.
func (s Scope) Allows(projectID string) bool {
	return s.All || s.Projects[projectID]
}

// Visibility resolves per-user project scopes from the role cache and the
// external assignment source.
type Visibility struct {
	Roles       *RoleCache
	Assignments Assignments
}

// ScopeOf resolves the user's visibility scope.
func (v Visibility) ScopeOf(ctx context.Context, userID string) (Scope, error) {
	roleID, err := v.Assignments.RoleIDOf(ctx, userID)
	if err != nil {
		return Scope{}, err
	}
	admin, err := v.Roles.IsAdmin(ctx, roleID)
	if err != nil {
		return Scope{}, err
	}
	if admin {
		return Scope{All: true}, nil
	}

	ids, err := v.Assignments.ProjectIDsOf(ctx, userID)
	if err != nil {
		return Scope{}, err
	}
	allowed := make(map[string]bool, len(ids))
	for _, id := range ids {
		allowed[id] = true
	}
	return Scope{Projects: allowed}, nil
}
