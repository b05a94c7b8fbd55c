package models

import (
	"errors"
	"fmt"
)

// ErrUnknownRole is returned when a role string is not one of the known roles.
var ErrUnknownRole = errors.New("unknown role")

// Role is the closed set of account roles. The zero value is not a role.
type Role uint8

const (
	RoleEmployer Role = iota + 1
	RoleWorker
)

// ParseRole converts the wire/storage form of a role.
func ParseRole(s string) (Role, error) {
	switch s {
	case "employer":
		return RoleEmployer, nil
	case "worker":
		return RoleWorker, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

func (r Role) String() string {
	switch r {
	case RoleEmployer:
		return "employer"
	case RoleWorker:
		return "worker"
	}
	return fmt.Sprintf("Role(%d)", uint8(r))
}

// Valid reports whether r is one of the declared roles.
func (r Role) Valid() bool {
	switch r {
	case RoleEmployer, RoleWorker:
		return true
	}
	return false
}

func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownRole, uint8(r))
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
