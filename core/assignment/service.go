package assignment

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/gradebook/core"
)

var (
	// errors
	ErrNotFound = errors.New("assignment not found")

	categoryTag = "category"
)

type (
	Repository interface {
		CreateAssignment(ctx context.Context, a Assignment) (Assignment, error)
		GetAssignment(ctx context.Context, id int) (Assignment, error)
		QueryAssignments(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Assignment, error)
		UpdateAssignment(ctx context.Context, a Assignment) (Assignment, error)
		// DeleteAssignment removes the Assignment along with all the grades recorded against it.
		DeleteAssignment(ctx context.Context, id int) error
	}

	// ScoreReader tells the highest score recorded against an assignment, 0 when there is none.
	ScoreReader interface {
		HighestScore(ctx context.Context, assignmentID int) (float64, error)
	}

	Service struct {
		repo   Repository
		scores ScoreReader
	}
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	core.RegisterChoiceValidation(validate, translator, categoryTag, Categories)
}

func NewService(repo Repository, scores ScoreReader) *Service {
	return &Service{repo: repo, scores: scores}
}

func (svc *Service) Create(ctx context.Context, na NewAssignment) (Assignment, error) {
	return svc.repo.CreateAssignment(ctx, Assignment{
		Title:       na.Title,
		Category:    na.Category,
		TotalPoints: na.TotalPoints,
		Weight:      na.Weight,
		DueDate:     na.DueDate,
		Description: na.Description,
	})
}

func (svc *Service) GetByID(ctx context.Context, id int) (Assignment, error) {
	return svc.repo.GetAssignment(ctx, id)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Assignment, error) {
	return svc.repo.QueryAssignments(ctx, QueryFilter{})
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Assignment, error) {
	return svc.repo.QueryAssignments(ctx, filter, OrderingColumns.Clean(ordering)...)
}

// Update refuses to lower the total points below a score already recorded.
func (svc *Service) Update(ctx context.Context, orig Assignment, ua UpdateAssignment) (Assignment, error) {
	if ua.TotalPoints != nil && *ua.TotalPoints < orig.TotalPoints {
		highest, err := svc.scores.HighestScore(ctx, orig.ID)
		if err != nil {
			return Assignment{}, err
		}
		if *ua.TotalPoints < highest {
			return Assignment{}, core.FieldValidationError(
				"total_points",
				fmt.Errorf("must be at least %s, the highest recorded score", strconv.FormatFloat(highest, 'f', -1, 64)),
			)
		}
	}
	return svc.repo.UpdateAssignment(ctx, ua.apply(orig))
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteAssignment(ctx, id)
}
