package testutil

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/account"
	"github.com/trezcool/gradebook/core/assignment"
	"github.com/trezcool/gradebook/core/attendance"
	"github.com/trezcool/gradebook/core/communication"
	"github.com/trezcool/gradebook/core/grade"
	"github.com/trezcool/gradebook/core/student"
	"github.com/trezcool/gradebook/services/logger"
)

var ctx = context.Background()

// NewLogger returns a logger that discards everything and never reports to Rollbar.
func NewLogger() core.Logger {
	return logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), core.NewTestConfig())
}

// NewValidator returns a validator with every custom tag registered, along with its translator.
func NewValidator() (*validator.Validate, ut.Translator) {
	english := en.New()
	translator, _ := ut.New(english, english).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	account.InitValidators(validate, translator)
	student.InitValidators(validate, translator)
	assignment.InitValidators(validate, translator)
	attendance.InitValidators(validate, translator)
	communication.InitValidators(validate, translator)
	return validate, translator
}

func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func CreateAccount(
	t *testing.T,
	repo account.Repository,
	name, email, pwd, role string,
	isActive bool,
	createdAt ...time.Time,
) account.Account {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	acc := account.Account{
		Name:      name,
		Email:     email,
		Role:      role,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := acc.SetPassword(pwd); err != nil {
			t.Fatalf("CreateAccount() failed: %v", err)
		}
	}
	acc, err := repo.CreateAccount(ctx, acc)
	if err != nil {
		t.Fatalf("CreateAccount() failed: %v", err)
	}
	return acc
}

func CreateStudent(t *testing.T, repo student.Repository, first, last, email, level, status string) student.Student {
	now := time.Now().UTC()
	s, err := repo.CreateStudent(ctx, student.Student{
		FirstName:      first,
		LastName:       last,
		GradeLevel:     level,
		Status:         status,
		Email:          email,
		EnrollmentDate: core.TruncateDay(now),
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return s
}

func CreateAssignment(
	t *testing.T,
	repo assignment.Repository,
	title, category string,
	totalPoints, weight float64,
) assignment.Assignment {
	a, err := repo.CreateAssignment(ctx, assignment.Assignment{
		Title:       title,
		Category:    category,
		TotalPoints: totalPoints,
		Weight:      weight,
	})
	if err != nil {
		t.Fatalf("CreateAssignment() failed: %v", err)
	}
	return a
}

func CreateGrade(
	t *testing.T,
	repo grade.Repository,
	studentID, assignmentID int,
	score float64,
	submitted time.Time,
) grade.Grade {
	g, err := repo.CreateGrade(ctx, grade.Grade{
		StudentID:     studentID,
		AssignmentID:  assignmentID,
		Score:         score,
		SubmittedDate: submitted,
	})
	if err != nil {
		t.Fatalf("CreateGrade() failed: %v", err)
	}
	return g
}

func CreateAttendance(t *testing.T, repo attendance.Repository, studentID int, date time.Time, status string) attendance.Record {
	r, err := repo.CreateRecord(ctx, attendance.Record{StudentID: studentID, Date: date, Status: status})
	if err != nil {
		t.Fatalf("CreateAttendance() failed: %v", err)
	}
	return r
}
