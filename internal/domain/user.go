package domain

import (
	"fmt"
	"strings"
)

// Role is the tagged variant deciding which dashboard a user lands on.
type Role string

const (
	RoleClient  Role = "Client"
	RoleSupport Role = "Support"
)

// Roles lists the roles offered at registration, in display order.
var Roles = []Role{RoleClient, RoleSupport}

// ParseRole maps user input onto a Role.
func ParseRole(val string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "client":
		return RoleClient, nil
	case "support":
		return RoleSupport, nil
	default:
		return "", fmt.Errorf("unknown role %q", val)
	}
}

// User is a registered account. Users are never mutated after registration.
type User struct {
	Username       string
	HashedPassword string
	Role           Role
}
