package domain

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID string
	Role   Role
	Scope  Scope
}

func ActorFromUser(u User) Actor {
	return Actor{UserID: u.ID, Role: u.Role, Scope: u.Scope}
}

// CheckAccess decides whether actor may act on a record placed at target.
// Citizens always get false here; ownership is compared by the caller.
func CheckAccess(actor Actor, target Scope) bool {
	switch actor.Role {
	case RoleAdmin:
		return true
	case RoleStateAdmin:
		return sameScopeValue(actor.Scope.StateID, target.StateID)
	case RoleDistrictAdmin:
		return sameScopeValue(actor.Scope.DistrictID, target.DistrictID)
	case RoleCityAdmin:
		return sameScopeValue(actor.Scope.CityID, target.CityID)
	case RoleOfficer:
		if present(target.DistrictID) {
			return sameScopeValue(actor.Scope.DistrictID, target.DistrictID)
		}
		if present(target.CityID) {
			return sameScopeValue(actor.Scope.CityID, target.CityID)
		}
		return false
	default:
		return false
	}
}

// CanView is CheckAccess plus ownership.
func CanView(actor Actor, c Complaint) bool {
	if actor.UserID != "" && c.AuthorID == actor.UserID {
		return true
	}
	return CheckAccess(actor, c.Scope)
}

type ScopeField string

const (
	ScopeFieldNone     ScopeField = ""
	ScopeFieldState    ScopeField = "state_id"
	ScopeFieldDistrict ScopeField = "district_id"
	ScopeFieldCity     ScopeField = "city_id"
	ScopeFieldAuthor   ScopeField = "author_id"
)

// TenantPredicate restricts list and aggregate reads to the rows an actor may
// see. The zero value matches nothing.
type TenantPredicate struct {
	All   bool
	Field ScopeField
	Value string
}

func (p TenantPredicate) MatchesNone() bool {
	return !p.All && (p.Field == ScopeFieldNone || p.Value == "")
}

func (p TenantPredicate) Matches(c Complaint) bool {
	if p.All {
		return true
	}
	if p.MatchesNone() {
		return false
	}
	var got *string
	switch p.Field {
	case ScopeFieldState:
		got = c.Scope.StateID
	case ScopeFieldDistrict:
		got = c.Scope.DistrictID
	case ScopeFieldCity:
		got = c.Scope.CityID
	case ScopeFieldAuthor:
		got = &c.AuthorID
	}
	return got != nil && *got == p.Value
}

// TenantFilter returns the read predicate for actor. A scoped role without a
// value at its level gets a predicate that matches nothing.
func TenantFilter(actor Actor) TenantPredicate {
	switch actor.Role {
	case RoleAdmin:
		return TenantPredicate{All: true}
	case RoleStateAdmin:
		return scopedPredicate(ScopeFieldState, actor.Scope.StateID)
	case RoleDistrictAdmin, RoleOfficer:
		return scopedPredicate(ScopeFieldDistrict, actor.Scope.DistrictID)
	case RoleCityAdmin:
		return scopedPredicate(ScopeFieldCity, actor.Scope.CityID)
	default:
		if actor.UserID == "" {
			return TenantPredicate{}
		}
		return TenantPredicate{Field: ScopeFieldAuthor, Value: actor.UserID}
	}
}

func scopedPredicate(field ScopeField, value *string) TenantPredicate {
	if !present(value) {
		return TenantPredicate{}
	}
	return TenantPredicate{Field: field, Value: *value}
}

func sameScopeValue(own, target *string) bool {
	return present(own) && target != nil && *own == *target
}

func present(v *string) bool {
	return v != nil && *v != ""
}
