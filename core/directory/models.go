package directory

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dentacamp/portal/core"
)

// Franchise is an operator running dental camps across a group of schools.
type Franchise struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Region       string    `json:"region"`
	ContactEmail string    `json:"contact_email"`
	CreatedAt    time.Time `json:"created_at"` // UTC
}

// NewFranchise contains the information needed to register a franchise.
type NewFranchise struct {
	Name         string `json:"name" validate:"required"`
	Region       string `json:"region" validate:"required"`
	ContactEmail string `json:"contact_email" validate:"omitempty,email"`
}

func (nf *NewFranchise) Validate(validate *validator.Validate) error {
	nf.Name = core.CleanString(nf.Name)
	nf.Region = core.CleanString(nf.Region)
	nf.ContactEmail = core.CleanString(nf.ContactEmail, true /* lower */)
	return validate.Struct(nf)
}

// School is a participating school, optionally limited to an active period.
type School struct {
	ID           string    `json:"id"`
	FranchiseID  string    `json:"franchise_id"`
	Name         string    `json:"name"`
	Address      string    `json:"address"`
	ContactEmail string    `json:"contact_email"`
	ContactPhone string    `json:"contact_phone"`
	ActiveFrom   time.Time `json:"active_from"`
	ActiveTo     time.Time `json:"active_to"`
	CreatedAt    time.Time `json:"created_at"` // UTC
}

// NewSchool contains the information needed to register a school.
type NewSchool struct {
	FranchiseID  string    `json:"franchise_id" validate:"required"`
	Name         string    `json:"name" validate:"required"`
	Address      string    `json:"address"`
	ContactEmail string    `json:"contact_email" validate:"omitempty,email"`
	ContactPhone string    `json:"contact_phone" validate:"omitempty,phone"`
	ActiveFrom   time.Time `json:"active_from"`
	ActiveTo     time.Time `json:"active_to" validate:"omitempty,gtfield=ActiveFrom"`
}

func (ns *NewSchool) Validate(validate *validator.Validate) error {
	ns.FranchiseID = core.CleanString(ns.FranchiseID)
	ns.Name = core.CleanString(ns.Name)
	ns.Address = core.CleanString(ns.Address)
	ns.ContactEmail = core.CleanString(ns.ContactEmail, true /* lower */)
	ns.ContactPhone = core.CleanString(ns.ContactPhone)
	return validate.Struct(ns)
}

// Camp is a scheduled dental camp at one school.
type Camp struct {
	ID         string    `json:"id"`
	SchoolID   string    `json:"school_id"`
	Name       string    `json:"name"`
	StartsAt   time.Time `json:"starts_at"`
	EndsAt     time.Time `json:"ends_at"`
	DentistIDs []string  `json:"dentist_ids"`
	CreatedAt  time.Time `json:"created_at"` // UTC
}

// NewCamp contains the information needed to schedule a camp.
type NewCamp struct {
	SchoolID   string    `json:"school_id" validate:"required"`
	Name       string    `json:"name" validate:"required"`
	StartsAt   time.Time `json:"starts_at" validate:"required"`
	EndsAt     time.Time `json:"ends_at" validate:"required,gtfield=StartsAt"`
	DentistIDs []string  `json:"dentist_ids" validate:"min=1,dive,required"`
}

func (nc *NewCamp) Validate(validate *validator.Validate) error {
	nc.SchoolID = core.CleanString(nc.SchoolID)
	nc.Name = core.CleanString(nc.Name)
	return validate.Struct(nc)
}

// User is a platform account as listed for admins.
type User struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

// QueryFilter narrows listings; Search does a case-insensitive match on names.
type QueryFilter struct {
	Search      string `query:"search"`
	FranchiseID string `query:"franchise_id"`
	SchoolID    string `query:"school_id"`
	Role        string `query:"role"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.FranchiseID = core.CleanString(qf.FranchiseID)
	qf.SchoolID = core.CleanString(qf.SchoolID)
	qf.Role = core.CleanString(qf.Role)
}
