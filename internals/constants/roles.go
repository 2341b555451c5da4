package constants

import "fmt"

// Roles read from the JWT "role" / "roles" claims.
const (
	RoleAdmin = "admin"
)

const ErrOnlyAdminsCanAccess = "❌ Only admins may access %s."

func RoleErrorAdmin(feature string) string {
	return fmt.Sprintf(ErrOnlyAdminsCanAccess, feature)
}
