package student

import (
	"context"
	"errors"
	"time"

	"github.com/trezcool/gradebook/core"
)

var (
	// errors
	ErrNotFound    = errors.New("student not found")
	ErrEmailExists = errors.New("a student with this email already exists")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excluded ...Student) error
		CreateStudent(ctx context.Context, s Student) (Student, error)
		GetStudent(ctx context.Context, id int) (Student, error)
		// QueryStudents applies AND operation on available QueryFilter fields.
		QueryStudents(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Student, error)
		UpdateStudent(ctx context.Context, s Student) (Student, error)
		DeleteStudents(ctx context.Context, ids ...int) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) checkUniqueness(ctx context.Context, email string, excluded ...Student) error {
	if err := svc.repo.CheckEmailUniqueness(ctx, email, excluded...); err != nil {
		if err == ErrEmailExists {
			return core.FieldValidationError("email", err)
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	now := time.Now().UTC()
	return svc.repo.CreateStudent(ctx, Student{
		FirstName:      ns.FirstName,
		LastName:       ns.LastName,
		GradeLevel:     ns.GradeLevel,
		Status:         ns.Status,
		Email:          ns.Email,
		Phone:          ns.Phone,
		EnrollmentDate: ns.EnrollmentDate,
		Parent1:        ns.Parent1,
		Parent2:        ns.Parent2,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
}

func (svc *Service) GetByID(ctx context.Context, id int) (Student, error) {
	return svc.repo.GetStudent(ctx, id)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Student, error) {
	return svc.repo.QueryStudents(ctx, QueryFilter{})
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Student, error) {
	return svc.repo.QueryStudents(ctx, filter, OrderingColumns.Clean(ordering)...)
}

func (svc *Service) Update(ctx context.Context, orig Student, us UpdateStudent) (Student, error) {
	s := us.apply(orig)
	s.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStudent(ctx, s)
}

func (svc *Service) Delete(ctx context.Context, ids ...int) error {
	return svc.repo.DeleteStudents(ctx, ids...)
}
