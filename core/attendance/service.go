package attendance

import (
	"context"
	"errors"
	"fmt"
	"sort"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/student"
)

var (
	// errors
	ErrNotFound        = errors.New("attendance record not found")
	ErrAlreadyRecorded = errors.New("attendance already recorded for this student on this day")

	statusTag = "attendancestatus"
)

type (
	Repository interface {
		CreateRecord(ctx context.Context, r Record) (Record, error)
		GetRecord(ctx context.Context, id int) (Record, error)
		QueryRecords(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Record, error)
		UpdateRecord(ctx context.Context, r Record) (Record, error)
		// UpsertRecords updates the status of the records already existing for (student, date), and creates the others.
		UpsertRecords(ctx context.Context, records ...Record) ([]Record, error)
		DeleteRecords(ctx context.Context, ids ...int) error
	}

	Service struct {
		repo        Repository
		studentRepo student.Repository
	}
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	core.RegisterChoiceValidation(validate, translator, statusTag, Statuses)
}

func NewService(repo Repository, studentRepo student.Repository) *Service {
	return &Service{repo: repo, studentRepo: studentRepo}
}

func (svc *Service) checkStudent(ctx context.Context, field string, id int) error {
	if _, err := svc.studentRepo.GetStudent(ctx, id); err != nil {
		if err == student.ErrNotFound {
			return core.FieldValidationError(field, fmt.Errorf("student %d not found", id))
		}
		return pkgerrors.Wrap(err, "finding student")
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nr NewRecord) (Record, error) {
	if err := svc.checkStudent(ctx, "student_id", nr.StudentID); err != nil {
		return Record{}, err
	}
	r, err := svc.repo.CreateRecord(ctx, Record{
		StudentID: nr.StudentID,
		Date:      nr.Date,
		Status:    nr.Status,
		Notes:     nr.Notes,
	})
	if err == ErrAlreadyRecorded {
		return Record{}, core.FieldValidationError("date", err)
	}
	return r, err
}

// Mark records the attendance sheet of a day. Every student is checked first,
// then all the records are upserted in a single round-trip.
func (svc *Service) Mark(ctx context.Context, md MarkDay) ([]Record, error) {
	ids := make([]int, 0, len(md.Statuses))
	for id := range md.Statuses {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	records := make([]Record, 0, len(ids))
	for _, id := range ids {
		if err := svc.checkStudent(ctx, "statuses", id); err != nil {
			return nil, err
		}
		records = append(records, Record{StudentID: id, Date: md.Date, Status: md.Statuses[id]})
	}
	return svc.repo.UpsertRecords(ctx, records...)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Record, error) {
	return svc.repo.GetRecord(ctx, id)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Record, error) {
	return svc.repo.QueryRecords(ctx, QueryFilter{})
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Record, error) {
	return svc.repo.QueryRecords(ctx, filter, OrderingColumns.Clean(ordering)...)
}

func (svc *Service) Update(ctx context.Context, orig Record, ur UpdateRecord) (Record, error) {
	return svc.repo.UpdateRecord(ctx, ur.apply(orig))
}

func (svc *Service) Delete(ctx context.Context, ids ...int) error {
	return svc.repo.DeleteRecords(ctx, ids...)
}
