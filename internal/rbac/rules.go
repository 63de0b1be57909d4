package rbac

// Simple default policy. Parent permissions are read-only; consent
// verification happens before a parent token is ever issued.
var RolePermissions = map[string][]string{
	"student": {
		"session:create",
		"session:interact",
		"session:view-own",
		"progress:view-own",
		"user:change_password",
	},
	"parent": {
		"session:view-child",
		"progress:view-child",
		"user:change_password",
	},
	"admin": {
		"*", // everything
	},
}
