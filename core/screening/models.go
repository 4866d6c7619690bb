package screening

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dentacamp/portal/core"
)

// ToothState is the recorded condition of a single tooth.
type ToothState string

const (
	StateHealthy ToothState = "healthy"
	StateDecayed ToothState = "decayed"
	StateFilled  ToothState = "filled"
	StateSealed  ToothState = "sealed"
	StateMissing ToothState = "missing"
	StateOther   ToothState = "other" // free-form finding, set explicitly with a note
)

// toggleCycle is the order the UI steps a tooth through on repeated taps.
// StateOther is set explicitly and toggles back to healthy.
var toggleCycle = map[ToothState]ToothState{
	StateHealthy: StateDecayed,
	StateDecayed: StateFilled,
	StateFilled:  StateSealed,
	StateSealed:  StateMissing,
	StateMissing: StateHealthy,
	StateOther:   StateHealthy,
}

func (s ToothState) Known() bool {
	_, ok := toggleCycle[s]
	return ok
}

// Dentition selects which teeth a chart contains.
type Dentition string

const (
	DentitionPermanent Dentition = "permanent"
	DentitionPrimary   Dentition = "primary"
	DentitionMixed     Dentition = "mixed"
)

// fdiNumbers returns the FDI two-digit tooth numbers for a quadrant range:
// quadrants 1-4 hold permanent teeth (positions 1-8), 5-8 primary (1-5).
func fdiNumbers(firstQuadrant, lastQuadrant, positions int) []int {
	var nums []int
	for q := firstQuadrant; q <= lastQuadrant; q++ {
		for p := 1; p <= positions; p++ {
			nums = append(nums, q*10+p)
		}
	}
	return nums
}

var (
	permanentTeeth = fdiNumbers(1, 4, 8)
	primaryTeeth   = fdiNumbers(5, 8, 5)
)

// Chart maps FDI tooth numbers to their recorded state.
type Chart map[int]ToothState

// NewChart returns a chart with every tooth of the dentition set healthy.
func NewChart(d Dentition) Chart {
	chart := make(Chart)
	if d == DentitionPermanent || d == DentitionMixed {
		for _, n := range permanentTeeth {
			chart[n] = StateHealthy
		}
	}
	if d == DentitionPrimary || d == DentitionMixed {
		for _, n := range primaryTeeth {
			chart[n] = StateHealthy
		}
	}
	return chart
}

// Toggle advances the tooth to the next state in the cycle.
func (c Chart) Toggle(tooth int) error {
	state, ok := c[tooth]
	if !ok {
		return fmt.Errorf("unknown tooth number %d", tooth)
	}
	c[tooth] = toggleCycle[state]
	return nil
}

// Set records an explicit state for the tooth.
func (c Chart) Set(tooth int, state ToothState) error {
	if _, ok := c[tooth]; !ok {
		return fmt.Errorf("unknown tooth number %d", tooth)
	}
	if !state.Known() {
		return fmt.Errorf("unknown tooth state %q", state)
	}
	c[tooth] = state
	return nil
}

// Summary counts teeth per state.
func (c Chart) Summary() map[ToothState]int {
	sum := make(map[ToothState]int)
	for _, state := range c {
		sum[state]++
	}
	return sum
}

// Validate checks every tooth number and state against the FDI alphabet.
func (c Chart) Validate() error {
	valid := make(map[int]bool, len(permanentTeeth)+len(primaryTeeth))
	for _, n := range permanentTeeth {
		valid[n] = true
	}
	for _, n := range primaryTeeth {
		valid[n] = true
	}

	var flds []core.FieldError
	for tooth, state := range c {
		if !valid[tooth] {
			flds = append(flds, core.FieldError{Field: fmt.Sprintf("chart.%d", tooth), Error: "unknown FDI tooth number"})
			continue
		}
		if !state.Known() {
			flds = append(flds, core.FieldError{Field: fmt.Sprintf("chart.%d", tooth), Error: fmt.Sprintf("unknown tooth state %q", state)})
		}
	}
	if flds != nil {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}

// Screening is a recorded dental examination for one student at one camp.
type Screening struct {
	ID         string    `json:"id"`
	StudentID  string    `json:"student_id"`
	CampID     string    `json:"camp_id"`
	DentistID  string    `json:"dentist_id"`
	Chart      Chart     `json:"chart"`
	Notes      string    `json:"notes"`
	RecordedAt time.Time `json:"recorded_at"` // UTC
}

// NewScreening contains the information needed to submit a screening.
type NewScreening struct {
	StudentID string `json:"student_id" validate:"required"`
	CampID    string `json:"camp_id" validate:"required"`
	Chart     Chart  `json:"chart" validate:"required"`
	Notes     string `json:"notes" validate:"max=2000"`
}

func (ns *NewScreening) Validate(validate *validator.Validate) error {
	ns.StudentID = core.CleanString(ns.StudentID)
	ns.CampID = core.CleanString(ns.CampID)
	ns.Notes = core.CleanString(ns.Notes)

	if err := validate.Struct(ns); err != nil {
		return err
	}
	return ns.Chart.Validate()
}

// QueryFilter narrows screening listings.
type QueryFilter struct {
	StudentID string `query:"student_id"`
	CampID    string `query:"camp_id"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.StudentID == "" && qf.CampID == ""
}

func (qf *QueryFilter) Clean() {
	qf.StudentID = core.CleanString(qf.StudentID)
	qf.CampID = core.CleanString(qf.CampID)
}
