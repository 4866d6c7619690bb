package report

import (
	"io"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dentacamp/portal/core"
)

// Report statuses as reported by the platform API.
const (
	StatusPending = "PENDING"
	StatusReady   = "READY"
	StatusFailed  = "FAILED"
)

type (
	Report struct {
		ID          string    `json:"id"`
		ScreeningID string    `json:"screening_id"`
		StudentID   string    `json:"student_id"`
		StudentName string    `json:"student_name"`
		CampID      string    `json:"camp_id"`
		Status      string    `json:"status"`
		Filename    string    `json:"filename"`
		GeneratedAt time.Time `json:"generated_at"`
	}

	// Download is a report file streamed from the platform API. Body must be
	// closed by the caller; the bytes are never interpreted by the portal.
	Download struct {
		Body        io.ReadCloser
		ContentType string
		Filename    string
		Size        int64
	}

	GenerateRequest struct {
		ScreeningID string `json:"screening_id" validate:"required"`
	}

	EmailRequest struct {
		To string `json:"to" validate:"required,email"`
	}

	QueryFilter struct {
		StudentID string `json:"student_id"`
		CampID    string `json:"camp_id"`
		Status    string `json:"status"`
	}
)

func (r Report) Ready() bool { return r.Status == StatusReady }

func (gr *GenerateRequest) Validate(validate *validator.Validate) error {
	gr.ScreeningID = core.CleanString(gr.ScreeningID)
	return validate.Struct(gr)
}

func (er *EmailRequest) Validate(validate *validator.Validate) error {
	er.To = core.CleanString(er.To, true /* lower */)
	return validate.Struct(er)
}
