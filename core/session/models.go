package session

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dentacamp/portal/core"
)

// Roles
const (
	RoleSystemAdmin    = "SYSTEM_ADMIN"
	RoleOrgAdmin       = "ORG_ADMIN"
	RoleFranchiseAdmin = "FRANCHISE_ADMIN"
	RolePrincipal      = "PRINCIPAL"
	RoleSchoolAdmin    = "SCHOOL_ADMIN"
	RoleTeacher        = "TEACHER"
	RoleDentist        = "DENTIST"
	RoleParent         = "PARENT"
)

// Membership entity types
const (
	EntityOrg       = "ORG"
	EntityFranchise = "FRANCHISE"
	EntitySchool    = "SCHOOL"
)

var (
	// rolePriorityOrder drives primary-role resolution; highest priority first.
	rolePriorityOrder = []string{
		RoleSystemAdmin,
		RoleOrgAdmin,
		RoleFranchiseAdmin,
		RolePrincipal,
		RoleSchoolAdmin,
		RoleTeacher,
		RoleDentist,
		RoleParent,
	}

	rolePriorities = map[string]int{
		RoleSystemAdmin:    80,
		RoleOrgAdmin:       70,
		RoleFranchiseAdmin: 60,
		RolePrincipal:      50,
		RoleSchoolAdmin:    40,
		RoleTeacher:        30,
		RoleDentist:        20,
		RoleParent:         10,
	}

	AllRoles = append([]string(nil), rolePriorityOrder...)
)

func RolePriority(role string) int {
	return rolePriorities[role]
}

func MaxRolePriority(roles []string) int {
	var max int
	for _, role := range roles {
		if RolePriority(role) > max {
			max = RolePriority(role)
		}
	}
	return max
}

func IsKnownRole(role string) bool {
	_, ok := rolePriorities[role]
	return ok
}

// ResolvePrimaryRole picks the primary role from a set of assigned roles:
// the first match scanning the fixed priority order, else the first assigned
// role, else "".
func ResolvePrimaryRole(roles []string) string {
	for _, role := range rolePriorityOrder {
		for _, assigned := range roles {
			if assigned == role {
				return role
			}
		}
	}
	if len(roles) > 0 {
		return roles[0]
	}
	return ""
}

// ResolveActiveRole keeps a previously stored role selection if it is still
// assigned, and falls back to ResolvePrimaryRole otherwise.
func ResolveActiveRole(stored string, roles []string) string {
	for _, assigned := range roles {
		if stored != "" && assigned == stored {
			return stored
		}
	}
	return ResolvePrimaryRole(roles)
}

// Account is the platform user behind a session.
type Account struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Membership associates the account with an organizational entity and a role,
// within a validity window. A zero ValidTo means open-ended.
type Membership struct {
	ID         string    `json:"id"`
	Role       string    `json:"role"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	EntityName string    `json:"entity_name"`
	ValidFrom  time.Time `json:"valid_from"`
	ValidTo    time.Time `json:"valid_to"`
}

func (m Membership) ValidAt(t time.Time) bool {
	if !m.ValidFrom.IsZero() && t.Before(m.ValidFrom) {
		return false
	}
	if !m.ValidTo.IsZero() && t.After(m.ValidTo) {
		return false
	}
	return true
}

// Session is the portal's server-side session: the platform bearer token plus
// the authenticated account, its memberships and the current role selection.
type Session struct {
	ID                 string       `json:"id"`
	Token              string       `json:"-"`
	Account            Account      `json:"account"`
	Memberships        []Membership `json:"memberships"`
	ActiveRole         string       `json:"active_role"`
	ActiveMembershipID string       `json:"active_membership_id"`
	CreatedAt          time.Time    `json:"created_at"` // UTC
	UpdatedAt          time.Time    `json:"updated_at"` // UTC
	ExpiresAt          time.Time    `json:"expires_at"` // UTC
}

func (s *Session) Expired(at time.Time) bool {
	return !s.ExpiresAt.IsZero() && at.After(s.ExpiresAt)
}

// Roles returns the distinct roles carried by memberships valid at `at`,
// preserving membership order.
func (s *Session) Roles(at time.Time) []string {
	var roles []string
	seen := make(map[string]bool, len(s.Memberships))
	for _, m := range s.Memberships {
		if !m.ValidAt(at) || seen[m.Role] {
			continue
		}
		seen[m.Role] = true
		roles = append(roles, m.Role)
	}
	return roles
}

func (s *Session) HasRole(role string, at time.Time) bool {
	for _, r := range s.Roles(at) {
		if r == role {
			return true
		}
	}
	return false
}

func (s *Session) MembershipByID(id string) (Membership, bool) {
	for _, m := range s.Memberships {
		if m.ID == id {
			return m, true
		}
	}
	return Membership{}, false
}

func (s *Session) ActiveMembership() (Membership, bool) {
	return s.MembershipByID(s.ActiveMembershipID)
}

// MagicLinkRequest asks the platform to email a login link.
type MagicLinkRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (r *MagicLinkRequest) Validate(validate *validator.Validate) error {
	r.Email = core.CleanString(r.Email, true /* lower */)
	return validate.Struct(r)
}

// ConsumeRequest exchanges an emailed magic-link token for a session.
type ConsumeRequest struct {
	Token string `json:"token" validate:"required"`
}

func (r *ConsumeRequest) Validate(validate *validator.Validate) error {
	r.Token = core.CleanString(r.Token)
	return validate.Struct(r)
}

// SwitchRole selects the active role for a multi-role account.
type SwitchRole struct {
	Role string `json:"role" validate:"required"`
}

func (r *SwitchRole) Validate(validate *validator.Validate) error {
	r.Role = core.CleanString(r.Role)
	return validate.Struct(r)
}

// SwitchMembership selects the active membership (and with it the active role).
type SwitchMembership struct {
	MembershipID string `json:"membership_id" validate:"required"`
}

func (r *SwitchMembership) Validate(validate *validator.Validate) error {
	r.MembershipID = core.CleanString(r.MembershipID)
	return validate.Struct(r)
}
