package student

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dentacamp/portal/core"
)

// Student is an enrolled student as returned by the platform API.
type Student struct {
	ID            string    `json:"id"`
	SchoolID      string    `json:"school_id"`
	Name          string    `json:"name"`
	DateOfBirth   time.Time `json:"date_of_birth"`
	Class         string    `json:"class"`
	GuardianName  string    `json:"guardian_name"`
	GuardianEmail string    `json:"guardian_email"`
	GuardianPhone string    `json:"guardian_phone"`
	CreatedAt     time.Time `json:"created_at"` // UTC
}

// NewStudent contains the information needed to register a student.
type NewStudent struct {
	SchoolID      string    `json:"school_id" validate:"required"`
	Name          string    `json:"name" validate:"required"`
	DateOfBirth   time.Time `json:"date_of_birth" validate:"required"`
	Class         string    `json:"class" validate:"required"`
	GuardianName  string    `json:"guardian_name"`
	GuardianEmail string    `json:"guardian_email" validate:"required,email"`
	GuardianPhone string    `json:"guardian_phone" validate:"omitempty,phone"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.SchoolID = core.CleanString(ns.SchoolID)
	ns.Name = core.CleanString(ns.Name)
	ns.Class = core.CleanString(ns.Class)
	ns.GuardianName = core.CleanString(ns.GuardianName)
	ns.GuardianEmail = core.CleanString(ns.GuardianEmail, true /* lower */)
	ns.GuardianPhone = core.CleanString(ns.GuardianPhone)
	return validate.Struct(ns)
}

// QueryFilter narrows student listings.
type QueryFilter struct {
	SchoolID string `query:"school_id"`
	Search   string `query:"search"`
	Class    string `query:"class"`
}

func (qf *QueryFilter) Clean() {
	qf.SchoolID = core.CleanString(qf.SchoolID)
	qf.Search = core.CleanString(qf.Search)
	qf.Class = core.CleanString(qf.Class)
}

// PreviewRow is one parsed roster row with its validation outcome.
type PreviewRow struct {
	Line    int               `json:"line"` // 1-based sheet row
	Student NewStudent        `json:"student"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func (r PreviewRow) OK() bool { return len(r.Errors) == 0 }

// Preview is the outcome of parsing an uploaded roster, held under BatchID
// until confirmed or expired.
type Preview struct {
	BatchID    string       `json:"batch_id"`
	SchoolID   string       `json:"school_id"`
	Rows       []PreviewRow `json:"rows"`
	ValidCount int          `json:"valid_count"`
	ErrorCount int          `json:"error_count"`
}
