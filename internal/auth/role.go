package auth

import (
	"strings"

	"github.com/aki/letterdrive/backend/internal/model"
)

// ResolveRole derives a role from the verified email's domain suffix.
// An email ending with adminSuffix (e.g. "@admin.com") gets the admin role,
// everything else is a regular user. Called once per login; the result is
// stored in the session and never recomputed.
func ResolveRole(email, adminSuffix string) model.Role {
	if adminSuffix != "" && strings.HasSuffix(email, adminSuffix) {
		return model.RoleAdmin
	}
	return model.RoleUser
}
