package student

import (
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/dentacamp/portal/core"
)

var (
	ErrEmptySheet     = errors.New("roster sheet is empty")
	ErrMissingColumns = errors.New("roster is missing required columns")
	ErrTooManyRows    = errors.New("roster exceeds the row limit")
	ErrNoWorksheet    = errors.New("workbook does not contain any sheets")
)

// rosterColumns maps header cell labels (lowered) to field keys. Several
// spellings seen in real rosters are accepted.
var rosterColumns = map[string]string{
	"name":           "name",
	"student name":   "name",
	"date of birth":  "date_of_birth",
	"dob":            "date_of_birth",
	"class":          "class",
	"grade":          "class",
	"guardian name":  "guardian_name",
	"parent name":    "guardian_name",
	"guardian email": "guardian_email",
	"parent email":   "guardian_email",
	"guardian phone": "guardian_phone",
	"parent phone":   "guardian_phone",
}

var requiredColumns = []string{"name", "date_of_birth", "class", "guardian_email"}

// dobLayouts are tried in order when parsing roster dates of birth.
var dobLayouts = []string{"2006-01-02", "02/01/2006", "01-02-2006", time.RFC3339}

// parseRoster reads the first worksheet of an xlsx roster: the first row is
// the header, each following non-empty row becomes a PreviewRow. Row errors
// never block other rows.
func parseRoster(r io.Reader, schoolID string, maxRows int, validate *validator.Validate) ([]PreviewRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "opening workbook")
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, ErrNoWorksheet
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "reading sheet %q", sheet)
	}
	if len(rows) < 2 {
		return nil, ErrEmptySheet
	}
	if maxRows > 0 && len(rows)-1 > maxRows {
		return nil, ErrTooManyRows
	}

	cols, err := mapHeader(rows[0])
	if err != nil {
		return nil, err
	}

	var out []PreviewRow
	seenGuardianEmails := make(map[string]bool)
	for i, cells := range rows[1:] {
		if rowEmpty(cells) {
			continue
		}
		row := parseRow(cells, cols, schoolID, i+2, validate)

		// duplicate guardian emails within the roster are flagged per row
		email := row.Student.GuardianEmail
		if email != "" {
			if seenGuardianEmails[email] {
				row.addError("guardian_email", "duplicate guardian email in roster")
			}
			seenGuardianEmails[email] = true
		}
		out = append(out, row)
	}
	if out == nil {
		return nil, ErrEmptySheet
	}
	return out, nil
}

func mapHeader(header []string) (map[int]string, error) {
	cols := make(map[int]string, len(header))
	present := make(map[string]bool)
	for i, cell := range header {
		if key, ok := rosterColumns[core.CleanString(cell, true /* lower */)]; ok {
			cols[i] = key
			present[key] = true
		}
	}
	for _, req := range requiredColumns {
		if !present[req] {
			return nil, errors.Wrap(ErrMissingColumns, strings.ReplaceAll(req, "_", " "))
		}
	}
	return cols, nil
}

func parseRow(cells []string, cols map[int]string, schoolID string, line int, validate *validator.Validate) PreviewRow {
	row := PreviewRow{Line: line, Student: NewStudent{SchoolID: schoolID}}

	for i, cell := range cells {
		key, ok := cols[i]
		if !ok {
			continue
		}
		val := core.CleanString(cell)
		switch key {
		case "name":
			row.Student.Name = val
		case "date_of_birth":
			dob, err := parseDOB(val)
			if err != nil {
				row.addError("date_of_birth", "unrecognized date format")
				continue
			}
			row.Student.DateOfBirth = dob
		case "class":
			row.Student.Class = val
		case "guardian_name":
			row.Student.GuardianName = val
		case "guardian_email":
			row.Student.GuardianEmail = core.CleanString(val, true /* lower */)
		case "guardian_phone":
			row.Student.GuardianPhone = val
		}
	}

	if err := row.Student.Validate(validate); err != nil {
		if vErrs, ok := err.(validator.ValidationErrors); ok {
			for _, vErr := range vErrs {
				row.addError(vErr.Field(), vErr.Tag())
			}
		} else {
			row.addError("row", err.Error())
		}
	}
	return row
}

func (r *PreviewRow) addError(field, msg string) {
	if r.Errors == nil {
		r.Errors = make(map[string]string)
	}
	if _, dup := r.Errors[field]; !dup {
		r.Errors[field] = msg
	}
}

func parseDOB(val string) (time.Time, error) {
	var lastErr error
	for _, layout := range dobLayouts {
		t, err := time.Parse(layout, val)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func rowEmpty(cells []string) bool {
	for _, c := range cells {
		if core.CleanString(c) != "" {
			return false
		}
	}
	return true
}
