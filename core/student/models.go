package student

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/gradebook/core"
)

// Grade levels
const (
	Grade9  = "9th"
	Grade10 = "10th"
	Grade11 = "11th"
	Grade12 = "12th"
)

// Statuses
const (
	StatusActive      = "Active"
	StatusInactive    = "Inactive"
	StatusGraduated   = "Graduated"
	StatusTransferred = "Transferred"
)

var (
	GradeLevels = []string{Grade9, Grade10, Grade11, Grade12}
	Statuses    = []string{StatusActive, StatusInactive, StatusGraduated, StatusTransferred}
)

type Parent struct {
	Name  string `json:"name" validate:"omitempty,max=200"`
	Phone string `json:"phone" validate:"omitempty,max=32"`
	Email string `json:"email" validate:"omitempty,email"`
}

func (p Parent) IsEmpty() bool {
	return p.Name == "" && p.Phone == "" && p.Email == ""
}

func (p *Parent) clean() {
	p.Name = core.CleanString(p.Name)
	p.Phone = core.CleanString(p.Phone)
	p.Email = core.CleanString(p.Email, true /* lower */)
}

type Student struct {
	ID             int       `json:"id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	GradeLevel     string    `json:"grade"`
	Status         string    `json:"status"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	EnrollmentDate time.Time `json:"enrollment_date"` // UTC day
	Parent1        Parent    `json:"parent1"`
	Parent2        Parent    `json:"parent2"`
	CreatedAt      time.Time `json:"created_at"` // UTC
	UpdatedAt      time.Time `json:"updated_at"` // UTC
}

func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

func (s Student) IsActive() bool {
	return s.Status == StatusActive
}

// Parents returns the non-empty parent contacts.
func (s Student) Parents() []Parent {
	parents := make([]Parent, 0, 2)
	for _, p := range []Parent{s.Parent1, s.Parent2} {
		if !p.IsEmpty() {
			parents = append(parents, p)
		}
	}
	return parents
}

// NewStudent contains information needed to enroll a new Student.
type NewStudent struct {
	FirstName      string    `json:"first_name" validate:"required,notblank,max=100"`
	LastName       string    `json:"last_name" validate:"required,notblank,max=100"`
	GradeLevel     string    `json:"grade" validate:"required,gradelevel"`
	Status         string    `json:"status" validate:"omitempty,studentstatus"`
	Email          string    `json:"email" validate:"required,email"`
	Phone          string    `json:"phone" validate:"omitempty,max=32"`
	EnrollmentDate time.Time `json:"enrollment_date"`
	Parent1        Parent    `json:"parent1"`
	Parent2        Parent    `json:"parent2"`
}

func (ns *NewStudent) Validate(ctx context.Context, validate *validator.Validate, svc *Service) error {
	ns.FirstName = core.CleanString(ns.FirstName)
	ns.LastName = core.CleanString(ns.LastName)
	ns.GradeLevel = core.CleanString(ns.GradeLevel)
	ns.Status = core.CleanString(ns.Status)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.Phone = core.CleanString(ns.Phone)
	ns.Parent1.clean()
	ns.Parent2.clean()
	if ns.Status == "" {
		ns.Status = StatusActive
	}
	if ns.EnrollmentDate.IsZero() {
		ns.EnrollmentDate = core.Today()
	} else {
		ns.EnrollmentDate = core.TruncateDay(ns.EnrollmentDate)
	}

	if err := validate.Struct(ns); err != nil {
		return err
	}
	return svc.checkUniqueness(ctx, ns.Email)
}

// UpdateStudent defines what information may be provided to modify an existing Student.
// Only provided fields are changed.
type UpdateStudent struct {
	FirstName      *string    `json:"first_name" validate:"omitempty,notblank,max=100"`
	LastName       *string    `json:"last_name" validate:"omitempty,notblank,max=100"`
	GradeLevel     *string    `json:"grade" validate:"omitempty,gradelevel"`
	Status         *string    `json:"status" validate:"omitempty,studentstatus"`
	Email          *string    `json:"email" validate:"omitempty,email"`
	Phone          *string    `json:"phone" validate:"omitempty,max=32"`
	EnrollmentDate *time.Time `json:"enrollment_date"`
	Parent1        *Parent    `json:"parent1"`
	Parent2        *Parent    `json:"parent2"`
}

func cleanPtr(s *string, lower ...bool) {
	if s != nil {
		*s = core.CleanString(*s, lower...)
	}
}

func (us *UpdateStudent) Validate(ctx context.Context, orig Student, validate *validator.Validate, svc *Service) error {
	cleanPtr(us.FirstName)
	cleanPtr(us.LastName)
	cleanPtr(us.GradeLevel)
	cleanPtr(us.Status)
	cleanPtr(us.Email, true /* lower */)
	cleanPtr(us.Phone)
	if us.Parent1 != nil {
		us.Parent1.clean()
	}
	if us.Parent2 != nil {
		us.Parent2.clean()
	}

	if err := validate.Struct(us); err != nil {
		return err
	}
	if us.Email != nil && *us.Email != orig.Email {
		return svc.checkUniqueness(ctx, *us.Email, orig)
	}
	return nil
}

// apply returns a copy of orig with the provided fields changed.
func (us UpdateStudent) apply(orig Student) Student {
	s := orig
	if us.FirstName != nil {
		s.FirstName = *us.FirstName
	}
	if us.LastName != nil {
		s.LastName = *us.LastName
	}
	if us.GradeLevel != nil {
		s.GradeLevel = *us.GradeLevel
	}
	if us.Status != nil {
		s.Status = *us.Status
	}
	if us.Email != nil {
		s.Email = *us.Email
	}
	if us.Phone != nil {
		s.Phone = *us.Phone
	}
	if us.EnrollmentDate != nil {
		s.EnrollmentDate = core.TruncateDay(*us.EnrollmentDate)
	}
	if us.Parent1 != nil {
		s.Parent1 = *us.Parent1
	}
	if us.Parent2 != nil {
		s.Parent2 = *us.Parent2
	}
	return s
}

type QueryFilter struct {
	Search     string   `query:"search"`
	Statuses   []string `query:"status"`
	GradeLevel string   `query:"grade"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && len(qf.Statuses) == 0 && qf.GradeLevel == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.GradeLevel = core.CleanString(qf.GradeLevel)
}

// Matches applies the filter to a single Student.
// Search does a case-insensitive match on one of first name, last name, email or grade level.
func (qf QueryFilter) Matches(s Student) bool {
	if qf.Search != "" &&
		!(core.ContainsFold(s.FirstName, qf.Search) ||
			core.ContainsFold(s.LastName, qf.Search) ||
			core.ContainsFold(s.Email, qf.Search) ||
			core.ContainsFold(s.GradeLevel, qf.Search)) {
		return false
	}
	if len(qf.Statuses) > 0 {
		found := false
		for _, st := range qf.Statuses {
			if s.Status == st {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return qf.GradeLevel == "" || s.GradeLevel == qf.GradeLevel
}

// OrderingColumns lists the fields Students can be ordered by.
var OrderingColumns = core.OrderingColumns{
	"id":              "id",
	"first_name":      "first_name",
	"last_name":       "last_name",
	"grade":           "grade_level",
	"status":          "status",
	"enrollment_date": "enrollment_date",
	"created_at":      "created_at",
}
