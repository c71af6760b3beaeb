package model

// Role identifies the dashboard an account belongs to.
type Role string

const (
	RoleStudent     Role = "STUDENT"
	RoleJobOrder    Role = "JOB_ORDER"
	RoleBAO         Role = "BAO"
	RoleCoordinator Role = "COORDINATOR"
	RoleSuperAdmin  Role = "SUPER_ADMIN"
)

// Valid reports whether role is known.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleJobOrder, RoleBAO, RoleCoordinator, RoleSuperAdmin:
		return true
	}
	return false
}

// Staff reports whether role manages orders of other users.
func (r Role) Staff() bool {
	return r.Valid() && r != RoleStudent
}

// Capabilities lists lifecycle actions a role may invoke.
type Capabilities struct {
	CanApprove bool
	CanReject  bool
	CanVerify  bool
}

// FullCapabilities allows every lifecycle action.
var FullCapabilities = Capabilities{CanApprove: true, CanReject: true, CanVerify: true}

// CapabilitiesFor maps role to its capability set.
func CapabilitiesFor(r Role) Capabilities {
	switch r {
	case RoleJobOrder:
		return Capabilities{CanApprove: true}
	case RoleBAO:
		return Capabilities{CanReject: true, CanVerify: true}
	case RoleCoordinator, RoleSuperAdmin:
		return FullCapabilities
	default:
		return Capabilities{}
	}
}
