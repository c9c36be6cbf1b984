package grade

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/gradebook/core"
)

type Grade struct {
	ID            int       `json:"id"`
	StudentID     int       `json:"student_id"`
	AssignmentID  int       `json:"assignment_id"`
	Score         float64   `json:"score"`
	SubmittedDate time.Time `json:"submitted_date"` // UTC day
	Comments      string    `json:"comments"`
}

// NewGrade contains information needed to record a new Grade.
type NewGrade struct {
	StudentID     int       `json:"student_id" validate:"required,gt=0"`
	AssignmentID  int       `json:"assignment_id" validate:"required,gt=0"`
	Score         *float64  `json:"score" validate:"required,gte=0"`
	SubmittedDate time.Time `json:"submitted_date"`
	Comments      string    `json:"comments"`
}

func (ng *NewGrade) Validate(ctx context.Context, validate *validator.Validate, svc *Service) error {
	ng.Comments = core.CleanString(ng.Comments)
	if ng.SubmittedDate.IsZero() {
		ng.SubmittedDate = core.Today()
	} else {
		ng.SubmittedDate = core.TruncateDay(ng.SubmittedDate)
	}
	if err := validate.Struct(ng); err != nil {
		return err
	}
	return svc.checkReferences(ctx, ng.StudentID, ng.AssignmentID, *ng.Score)
}

// UpdateGrade defines what information may be provided to modify an existing Grade.
type UpdateGrade struct {
	Score         *float64   `json:"score" validate:"omitempty,gte=0"`
	SubmittedDate *time.Time `json:"submitted_date"`
	Comments      *string    `json:"comments"`
}

func (ug *UpdateGrade) Validate(ctx context.Context, orig Grade, validate *validator.Validate, svc *Service) error {
	if ug.Comments != nil {
		*ug.Comments = core.CleanString(*ug.Comments)
	}
	if ug.SubmittedDate != nil {
		d := core.TruncateDay(*ug.SubmittedDate)
		ug.SubmittedDate = &d
	}
	if err := validate.Struct(ug); err != nil {
		return err
	}
	if ug.Score != nil {
		return svc.checkScore(ctx, orig.AssignmentID, *ug.Score)
	}
	return nil
}

func (ug UpdateGrade) apply(orig Grade) Grade {
	g := orig
	if ug.Score != nil {
		g.Score = *ug.Score
	}
	if ug.SubmittedDate != nil {
		g.SubmittedDate = *ug.SubmittedDate
	}
	if ug.Comments != nil {
		g.Comments = *ug.Comments
	}
	return g
}

// RecordGrade is a gradebook cell entry: it updates the Grade of a student on an assignment, or creates it.
type RecordGrade struct {
	StudentID    int      `json:"student_id" validate:"required,gt=0"`
	AssignmentID int      `json:"assignment_id" validate:"required,gt=0"`
	Score        *float64 `json:"score" validate:"required,gte=0"`
	Comments     *string  `json:"comments"`
}

func (rg *RecordGrade) Validate(ctx context.Context, validate *validator.Validate, svc *Service) error {
	if rg.Comments != nil {
		*rg.Comments = core.CleanString(*rg.Comments)
	}
	if err := validate.Struct(rg); err != nil {
		return err
	}
	return svc.checkReferences(ctx, rg.StudentID, rg.AssignmentID, *rg.Score)
}

type QueryFilter struct {
	StudentIDs    []int     `query:"student_id"`
	AssignmentIDs []int     `query:"assignment_id"`
	SubmittedFrom time.Time `query:"-"` // bound from "submitted_from"
	SubmittedTo   time.Time `query:"-"` // bound from "submitted_to"
}

func (qf *QueryFilter) IsEmpty() bool {
	return len(qf.StudentIDs) == 0 && len(qf.AssignmentIDs) == 0 && qf.SubmittedFrom.IsZero() && qf.SubmittedTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	if !qf.SubmittedFrom.IsZero() {
		qf.SubmittedFrom = core.TruncateDay(qf.SubmittedFrom)
	}
	if !qf.SubmittedTo.IsZero() {
		qf.SubmittedTo = core.TruncateDay(qf.SubmittedTo)
	}
}

func containsID(ids []int, id int) bool {
	for _, i := range ids {
		if i == id {
			return true
		}
	}
	return false
}

func (qf QueryFilter) Matches(g Grade) bool {
	if len(qf.StudentIDs) > 0 && !containsID(qf.StudentIDs, g.StudentID) {
		return false
	}
	if len(qf.AssignmentIDs) > 0 && !containsID(qf.AssignmentIDs, g.AssignmentID) {
		return false
	}
	if !qf.SubmittedFrom.IsZero() && g.SubmittedDate.Before(qf.SubmittedFrom) {
		return false
	}
	return qf.SubmittedTo.IsZero() || !g.SubmittedDate.After(qf.SubmittedTo)
}

var OrderingColumns = core.OrderingColumns{
	"id":             "id",
	"student_id":     "student_id",
	"assignment_id":  "assignment_id",
	"score":          "score",
	"submitted_date": "submitted_date",
}
