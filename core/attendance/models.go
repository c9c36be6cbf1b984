package attendance

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/gradebook/core"
)

// Statuses
const (
	StatusPresent = "Present"
	StatusAbsent  = "Absent"
	StatusLate    = "Late"
	StatusExcused = "Excused"
)

var Statuses = []string{StatusPresent, StatusAbsent, StatusLate, StatusExcused}

type Record struct {
	ID        int       `json:"id"`
	StudentID int       `json:"student_id"`
	Date      time.Time `json:"date"` // UTC day
	Status    string    `json:"status"`
	Notes     string    `json:"notes"`
}

// NewRecord contains information needed to record the attendance of a student on a day.
type NewRecord struct {
	StudentID int       `json:"student_id" validate:"required,gt=0"`
	Date      time.Time `json:"date" validate:"required"`
	Status    string    `json:"status" validate:"required,attendancestatus"`
	Notes     string    `json:"notes"`
}

func (nr *NewRecord) Validate(validate *validator.Validate) error {
	nr.Status = core.CleanString(nr.Status)
	nr.Notes = core.CleanString(nr.Notes)
	if !nr.Date.IsZero() {
		nr.Date = core.TruncateDay(nr.Date)
	}
	return validate.Struct(nr)
}

// UpdateRecord defines what information may be provided to modify an existing Record.
type UpdateRecord struct {
	Status *string `json:"status" validate:"omitempty,attendancestatus"`
	Notes  *string `json:"notes"`
}

func (ur *UpdateRecord) Validate(validate *validator.Validate) error {
	if ur.Status != nil {
		*ur.Status = core.CleanString(*ur.Status)
	}
	if ur.Notes != nil {
		*ur.Notes = core.CleanString(*ur.Notes)
	}
	return validate.Struct(ur)
}

func (ur UpdateRecord) apply(orig Record) Record {
	r := orig
	if ur.Status != nil {
		r.Status = *ur.Status
	}
	if ur.Notes != nil {
		r.Notes = *ur.Notes
	}
	return r
}

// MarkDay records the attendance of many students on a single day (attendance sheet).
type MarkDay struct {
	Date     time.Time      `json:"date" validate:"required"`
	Statuses map[int]string `json:"statuses" validate:"required,min=1,dive,keys,gt=0,endkeys,attendancestatus"` // {studentID: status}
}

func (md *MarkDay) Validate(validate *validator.Validate) error {
	if !md.Date.IsZero() {
		md.Date = core.TruncateDay(md.Date)
	}
	for id, st := range md.Statuses {
		md.Statuses[id] = core.CleanString(st)
	}
	return validate.Struct(md)
}

type QueryFilter struct {
	StudentIDs []int     `query:"student_id"`
	Statuses   []string  `query:"status"`
	From       time.Time `query:"-"` // bound from "from"
	To         time.Time `query:"-"` // bound from "to"
}

func (qf *QueryFilter) IsEmpty() bool {
	return len(qf.StudentIDs) == 0 && len(qf.Statuses) == 0 && qf.From.IsZero() && qf.To.IsZero()
}

func (qf *QueryFilter) Clean() {
	if !qf.From.IsZero() {
		qf.From = core.TruncateDay(qf.From)
	}
	if !qf.To.IsZero() {
		qf.To = core.TruncateDay(qf.To)
	}
}

func (qf QueryFilter) Matches(r Record) bool {
	if len(qf.StudentIDs) > 0 {
		found := false
		for _, id := range qf.StudentIDs {
			if r.StudentID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(qf.Statuses) > 0 {
		found := false
		for _, st := range qf.Statuses {
			if r.Status == st {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if !qf.From.IsZero() && r.Date.Before(qf.From) {
		return false
	}
	return qf.To.IsZero() || !r.Date.After(qf.To)
}

var OrderingColumns = core.OrderingColumns{
	"id":         "id",
	"student_id": "student_id",
	"date":       "date",
	"status":     "status",
}
