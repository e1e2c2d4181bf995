package domain

import (
	"errors"
	"slices"
	"strings"
)

type Role string

const (
	RoleProvider Role = "PROVIDER"
	RoleFarmer   Role = "FARMER"
	RoleConsumer Role = "CONSUMER"
	RoleAdmin    Role = "ADMIN"
)

var validRoles = map[Role]struct{}{
	RoleProvider: {},
	RoleFarmer:   {},
	RoleConsumer: {},
	RoleAdmin:    {},
}

// ToRole accepts both "FARMER" and the Spring-style "ROLE_FARMER".
func ToRole(s string) (Role, error) {
	role := Role(strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(s)), "ROLE_"))
	if _, ok := validRoles[role]; ok {
		return role, nil
	}
	return "", errors.New("invalid role")
}

// Caller is the identity supplied by the external identity provider.
type Caller struct {
	ID    string
	Roles []Role
}

func (c Caller) HasRole(r Role) bool {
	return slices.Contains(c.Roles, r)
}

func (c Caller) IsAdmin() bool {
	return c.HasRole(RoleAdmin)
}

// Actor is the side a caller takes on a specific order.
type Actor string

const (
	ActorBuyer  Actor = "BUYER"
	ActorSeller Actor = "SELLER"
	ActorAdmin  Actor = "ADMIN"
)
