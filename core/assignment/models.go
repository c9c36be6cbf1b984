package assignment

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/gradebook/core"
)

// Categories
const (
	CategoryHomework      = "Homework"
	CategoryQuiz          = "Quiz"
	CategoryTest          = "Test"
	CategoryProject       = "Project"
	CategoryParticipation = "Participation"
)

var Categories = []string{CategoryHomework, CategoryQuiz, CategoryTest, CategoryProject, CategoryParticipation}

type Assignment struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Category    string     `json:"category"`
	TotalPoints float64    `json:"total_points"`
	Weight      float64    `json:"weight"` // percent, 0-100
	DueDate     *time.Time `json:"due_date"`
	Description string     `json:"description"`
}

// NewAssignment contains information needed to create a new Assignment.
type NewAssignment struct {
	Title       string     `json:"title" validate:"required,notblank,max=255"`
	Category    string     `json:"category" validate:"required,category"`
	TotalPoints float64    `json:"total_points" validate:"required,gt=0"`
	Weight      float64    `json:"weight" validate:"gte=0,lte=100"`
	DueDate     *time.Time `json:"due_date"`
	Description string     `json:"description"`
}

func (na *NewAssignment) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	na.Category = core.CleanString(na.Category)
	na.Description = core.CleanString(na.Description)
	if na.DueDate != nil {
		d := core.TruncateDay(*na.DueDate)
		na.DueDate = &d
	}
	return validate.Struct(na)
}

// UpdateAssignment defines what information may be provided to modify an existing Assignment.
type UpdateAssignment struct {
	Title       *string    `json:"title" validate:"omitempty,notblank,max=255"`
	Category    *string    `json:"category" validate:"omitempty,category"`
	TotalPoints *float64   `json:"total_points" validate:"omitempty,gt=0"`
	Weight      *float64   `json:"weight" validate:"omitempty,gte=0,lte=100"`
	DueDate     *time.Time `json:"due_date"`
	Description *string    `json:"description"`
}

func (ua *UpdateAssignment) Validate(validate *validator.Validate) error {
	if ua.Title != nil {
		*ua.Title = core.CleanString(*ua.Title)
	}
	if ua.Category != nil {
		*ua.Category = core.CleanString(*ua.Category)
	}
	if ua.Description != nil {
		*ua.Description = core.CleanString(*ua.Description)
	}
	if ua.DueDate != nil {
		d := core.TruncateDay(*ua.DueDate)
		ua.DueDate = &d
	}
	return validate.Struct(ua)
}

func (ua UpdateAssignment) apply(orig Assignment) Assignment {
	a := orig
	if ua.Title != nil {
		a.Title = *ua.Title
	}
	if ua.Category != nil {
		a.Category = *ua.Category
	}
	if ua.TotalPoints != nil {
		a.TotalPoints = *ua.TotalPoints
	}
	if ua.Weight != nil {
		a.Weight = *ua.Weight
	}
	if ua.DueDate != nil {
		a.DueDate = ua.DueDate
	}
	if ua.Description != nil {
		a.Description = *ua.Description
	}
	return a
}

type QueryFilter struct {
	Search     string   `query:"search"`
	Categories []string `query:"category"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && len(qf.Categories) == 0
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

func (qf QueryFilter) Matches(a Assignment) bool {
	if qf.Search != "" && !(core.ContainsFold(a.Title, qf.Search) || core.ContainsFold(a.Description, qf.Search)) {
		return false
	}
	if len(qf.Categories) == 0 {
		return true
	}
	for _, c := range qf.Categories {
		if a.Category == c {
			return true
		}
	}
	return false
}

var OrderingColumns = core.OrderingColumns{
	"id":           "id",
	"title":        "title",
	"category":     "category",
	"total_points": "total_points",
	"weight":       "weight",
	"due_date":     "due_date",
}
