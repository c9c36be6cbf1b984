package grade

import (
	"context"
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/assignment"
	"github.com/trezcool/gradebook/core/student"
)

var (
	// errors
	ErrNotFound = errors.New("grade not found")

	_ assignment.ScoreReader = (*Service)(nil) // interface compliance check
)

type (
	Repository interface {
		CreateGrade(ctx context.Context, g Grade) (Grade, error)
		GetGrade(ctx context.Context, id int) (Grade, error)
		QueryGrades(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Grade, error)
		UpdateGrade(ctx context.Context, g Grade) (Grade, error)
		DeleteGrades(ctx context.Context, ids ...int) error
	}

	Service struct {
		repo        Repository
		studentRepo student.Repository
		asgRepo     assignment.Repository
	}
)

func NewService(repo Repository, studentRepo student.Repository, asgRepo assignment.Repository) *Service {
	return &Service{repo: repo, studentRepo: studentRepo, asgRepo: asgRepo}
}

// checkReferences makes sure both the student and the assignment exist,
// and that the score fits the assignment's total points.
func (svc *Service) checkReferences(ctx context.Context, studentID, assignmentID int, score float64) error {
	if _, err := svc.studentRepo.GetStudent(ctx, studentID); err != nil {
		if err == student.ErrNotFound {
			return core.FieldValidationError("student_id", err)
		}
		return pkgerrors.Wrap(err, "finding student")
	}
	return svc.checkScore(ctx, assignmentID, score)
}

func (svc *Service) checkScore(ctx context.Context, assignmentID int, score float64) error {
	asg, err := svc.asgRepo.GetAssignment(ctx, assignmentID)
	if err != nil {
		if err == assignment.ErrNotFound {
			return core.FieldValidationError("assignment_id", err)
		}
		return pkgerrors.Wrap(err, "finding assignment")
	}
	if score < 0 || score > asg.TotalPoints {
		return core.FieldValidationError(
			"score",
			fmt.Errorf("score must be between 0 and %s", formatPoints(asg.TotalPoints)),
		)
	}
	return nil
}

func formatPoints(p float64) string {
	if p == float64(int64(p)) {
		return fmt.Sprintf("%d", int64(p))
	}
	return fmt.Sprintf("%.1f", p)
}

func (svc *Service) Create(ctx context.Context, ng NewGrade) (Grade, error) {
	return svc.repo.CreateGrade(ctx, Grade{
		StudentID:     ng.StudentID,
		AssignmentID:  ng.AssignmentID,
		Score:         *ng.Score,
		SubmittedDate: ng.SubmittedDate,
		Comments:      ng.Comments,
	})
}

// Record updates the first Grade found for (student, assignment) or creates one submitted today.
// The returned bool reports whether a Grade was created.
func (svc *Service) Record(ctx context.Context, rg RecordGrade) (Grade, bool, error) {
	existing, err := svc.repo.QueryGrades(
		ctx,
		QueryFilter{StudentIDs: []int{rg.StudentID}, AssignmentIDs: []int{rg.AssignmentID}},
		core.DBOrdering{Field: "id", Ascending: true},
	)
	if err != nil {
		return Grade{}, false, pkgerrors.Wrap(err, "querying grades")
	}

	if len(existing) > 0 {
		g := existing[0]
		g.Score = *rg.Score
		if rg.Comments != nil {
			g.Comments = *rg.Comments
		}
		g, err = svc.repo.UpdateGrade(ctx, g)
		return g, false, err
	}

	g := Grade{
		StudentID:     rg.StudentID,
		AssignmentID:  rg.AssignmentID,
		Score:         *rg.Score,
		SubmittedDate: core.Today(),
	}
	if rg.Comments != nil {
		g.Comments = *rg.Comments
	}
	g, err = svc.repo.CreateGrade(ctx, g)
	return g, true, err
}

func (svc *Service) GetByID(ctx context.Context, id int) (Grade, error) {
	return svc.repo.GetGrade(ctx, id)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Grade, error) {
	return svc.repo.QueryGrades(ctx, QueryFilter{})
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Grade, error) {
	return svc.repo.QueryGrades(ctx, filter, OrderingColumns.Clean(ordering)...)
}

// HighestScore implements assignment.ScoreReader.
func (svc *Service) HighestScore(ctx context.Context, assignmentID int) (float64, error) {
	grades, err := svc.repo.QueryGrades(ctx, QueryFilter{AssignmentIDs: []int{assignmentID}})
	if err != nil {
		return 0, pkgerrors.Wrap(err, "querying grades")
	}
	var highest float64
	for _, g := range grades {
		if g.Score > highest {
			highest = g.Score
		}
	}
	return highest, nil
}

func (svc *Service) Update(ctx context.Context, orig Grade, ug UpdateGrade) (Grade, error) {
	return svc.repo.UpdateGrade(ctx, ug.apply(orig))
}

func (svc *Service) Delete(ctx context.Context, ids ...int) error {
	return svc.repo.DeleteGrades(ctx, ids...)
}
