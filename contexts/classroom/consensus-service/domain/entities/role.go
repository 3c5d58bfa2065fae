package entities

import "strings"

// Role is the closed set of classroom roles. Every gate switches over all
// four values so a new role cannot slip through unhandled.
type Role uint8

const (
	RoleNone Role = iota
	RoleStudent
	RoleTA
	RoleProfessor
)

func (r Role) String() string {
	switch r {
	case RoleNone:
		return "NONE"
	case RoleStudent:
		return "STUDENT"
	case RoleTA:
		return "TA"
	case RoleProfessor:
		return "PROF"
	default:
		return "UNKNOWN"
	}
}

// ParseRole accepts the wire labels produced by String. PROFESSOR is accepted
// as an alias of PROF.
func ParseRole(raw string) (Role, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "NONE", "":
		return RoleNone, true
	case "STUDENT":
		return RoleStudent, true
	case "TA":
		return RoleTA, true
	case "PROF", "PROFESSOR":
		return RoleProfessor, true
	default:
		return RoleNone, false
	}
}

func (r Role) Registered() bool {
	return r != RoleNone
}

// CanManagePresentations reports whether the role may create and finalize
// presentations.
func (r Role) CanManagePresentations() bool {
	switch r {
	case RoleProfessor, RoleTA:
		return true
	case RoleNone, RoleStudent:
		return false
	default:
		return false
	}
}
