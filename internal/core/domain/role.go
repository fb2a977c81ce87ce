package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Role is a single privilege level. Values are bit flags so a RoleSet can
// hold any combination of them.
type Role uint8

const (
	RoleUser Role = 1 << iota
	RoleAdmin
	RoleSuperadmin
)

var roleNames = []struct {
	role Role
	name string
}{
	{RoleUser, "USER"},
	{RoleAdmin, "ADMIN"},
	{RoleSuperadmin, "SUPERADMIN"},
}

func (r Role) String() string {
	for _, rn := range roleNames {
		if rn.role == r {
			return rn.name
		}
	}
	return fmt.Sprintf("Role(%d)", uint8(r))
}

// ParseRole converts a stored or wire role name into a Role.
func ParseRole(s string) (Role, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for _, rn := range roleNames {
		if rn.name == name {
			return rn.role, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

// RoleSet is the set of roles held by a user. USER is always a member.
type RoleSet uint8

const allRoles = RoleSet(RoleUser | RoleAdmin | RoleSuperadmin)

// NewRoleSet builds a set from the given roles plus the USER baseline.
func NewRoleSet(roles ...Role) RoleSet {
	s := RoleSet(RoleUser)
	for _, r := range roles {
		s |= RoleSet(r)
	}
	return s & allRoles
}

// ParseRoleSet converts role names (as persisted) into a RoleSet.
func ParseRoleSet(names []string) (RoleSet, error) {
	s := NewRoleSet()
	for _, n := range names {
		r, err := ParseRole(n)
		if err != nil {
			return 0, err
		}
		s |= RoleSet(r)
	}
	return s, nil
}

func (s RoleSet) Has(r Role) bool {
	return s&RoleSet(r) != 0
}

// With returns a copy of s that also holds r.
func (s RoleSet) With(r Role) RoleSet {
	return NewRoleSet() | s | RoleSet(r)
}

// Without returns a copy of s with r removed. USER cannot be removed.
func (s RoleSet) Without(r Role) RoleSet {
	if r == RoleUser {
		return NewRoleSet() | s
	}
	return NewRoleSet() | (s &^ RoleSet(r))
}

// Names lists the role names in ascending privilege order.
func (s RoleSet) Names() []string {
	s |= RoleSet(RoleUser)
	names := make([]string, 0, len(roleNames))
	for _, rn := range roleNames {
		if s.Has(rn.role) {
			names = append(names, rn.name)
		}
	}
	return names
}

func (s RoleSet) String() string {
	return strings.Join(s.Names(), ",")
}

func (s RoleSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Names())
}

func (s *RoleSet) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	parsed, err := ParseRoleSet(names)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
