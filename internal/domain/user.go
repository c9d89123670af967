package domain

import "strings"

type Role string

const (
	RoleAdmin         Role = "ADMIN"
	RoleStateAdmin    Role = "STATE_ADMIN"
	RoleDistrictAdmin Role = "DISTRICT_ADMIN"
	RoleCityAdmin     Role = "CITY_ADMIN"
	RoleOfficer       Role = "OFFICER"
	RoleCitizen       Role = "CITIZEN"
)

func ParseRole(raw string) (Role, error) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(raw))); r {
	case RoleAdmin, RoleStateAdmin, RoleDistrictAdmin, RoleCityAdmin, RoleOfficer, RoleCitizen:
		return r, nil
	default:
		return "", ErrInvalidInput
	}
}

// IsStaff reports whether the role acts on complaints it does not own.
func (r Role) IsStaff() bool {
	return r != RoleCitizen && r != ""
}

// Scope is the state/district/city/ward position of a user or a record.
// A nil level means the holder is not placed at that level.
type Scope struct {
	StateID    *string
	DistrictID *string
	CityID     *string
	WardID     *string
}

type User struct {
	ID     string
	Name   string
	Email  string
	Role   Role
	Scope  Scope
	Points int
}
