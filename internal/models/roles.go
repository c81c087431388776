package models

// Роли пользователей системы.
const (
	RoleSpecialist = "specialist"
	RoleAdmin      = "admin"
)

// HasRole reports whether the given role is present in the roles slice.
func HasRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
