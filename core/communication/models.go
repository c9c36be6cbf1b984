package communication

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/gradebook/core"
)

// Types
const (
	TypeNote    = "note"
	TypeEmail   = "email"
	TypeCall    = "call"
	TypeMeeting = "meeting"
)

var Types = []string{TypeNote, TypeEmail, TypeCall, TypeMeeting}

// Communication is an exchange with the parents of a student, or a note about it.
type Communication struct {
	ID            int       `json:"id"`
	StudentID     int       `json:"student_id"`
	Type          string    `json:"type"`
	Subject       string    `json:"subject"`
	Content       string    `json:"content"`
	ContactMethod string    `json:"contact_method"`
	Date          time.Time `json:"date"` // UTC
}

type NewCommunication struct {
	StudentID     int       `json:"student_id" validate:"required,gt=0"`
	Type          string    `json:"type" validate:"required,commtype"`
	Subject       string    `json:"subject" validate:"required,notblank,max=255"`
	Content       string    `json:"content" validate:"required,notblank"`
	ContactMethod string    `json:"contact_method" validate:"omitempty,max=32"`
	Date          time.Time `json:"date"`
}

func (nc *NewCommunication) Validate(ctx context.Context, validate *validator.Validate, svc *Service) error {
	nc.Type = core.CleanString(nc.Type, true /* lower */)
	nc.Subject = core.CleanString(nc.Subject)
	nc.Content = core.CleanString(nc.Content)
	nc.ContactMethod = core.CleanString(nc.ContactMethod)
	if nc.Date.IsZero() {
		nc.Date = time.Now().UTC()
	}
	if err := validate.Struct(nc); err != nil {
		return err
	}
	_, err := svc.getStudent(ctx, nc.StudentID)
	return err
}

// NewNote is a shortcut to record a note about a student.
type NewNote struct {
	Subject       string `json:"subject" validate:"required,notblank,max=255"`
	Content       string `json:"content" validate:"required,notblank"`
	ContactMethod string `json:"contact_method" validate:"omitempty,max=32"`
}

func (nn *NewNote) Validate(validate *validator.Validate) error {
	nn.Subject = core.CleanString(nn.Subject)
	nn.Content = core.CleanString(nn.Content)
	nn.ContactMethod = core.CleanString(nn.ContactMethod)
	return validate.Struct(nn)
}

type UpdateCommunication struct {
	Subject       *string `json:"subject" validate:"omitempty,notblank,max=255"`
	Content       *string `json:"content" validate:"omitempty,notblank"`
	ContactMethod *string `json:"contact_method" validate:"omitempty,max=32"`
}

func (uc *UpdateCommunication) Validate(validate *validator.Validate) error {
	for _, s := range []*string{uc.Subject, uc.Content, uc.ContactMethod} {
		if s != nil {
			*s = core.CleanString(*s)
		}
	}
	return validate.Struct(uc)
}

func (uc UpdateCommunication) apply(orig Communication) Communication {
	c := orig
	if uc.Subject != nil {
		c.Subject = *uc.Subject
	}
	if uc.Content != nil {
		c.Content = *uc.Content
	}
	if uc.ContactMethod != nil {
		c.ContactMethod = *uc.ContactMethod
	}
	return c
}

type QueryFilter struct {
	StudentIDs []int    `query:"student_id"`
	Types      []string `query:"type"`
	Search     string   `query:"search"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return len(qf.StudentIDs) == 0 && len(qf.Types) == 0 && qf.Search == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

func (qf QueryFilter) Matches(c Communication) bool {
	if len(qf.StudentIDs) > 0 {
		found := false
		for _, id := range qf.StudentIDs {
			if c.StudentID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(qf.Types) > 0 {
		found := false
		for _, t := range qf.Types {
			if c.Type == t {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return qf.Search == "" || core.ContainsFold(c.Subject, qf.Search) || core.ContainsFold(c.Content, qf.Search)
}

var OrderingColumns = core.OrderingColumns{
	"id":         "id",
	"student_id": "student_id",
	"type":       "type",
	"date":       "date",
}
