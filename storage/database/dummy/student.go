package dummydb

import (
	"context"
	"strings"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db}
}

func compareStudents(a, b student.Student, column string) int {
	switch column {
	case "first_name":
		return cmpString(a.FirstName, b.FirstName)
	case "last_name":
		return cmpString(a.LastName, b.LastName)
	case "grade_level":
		return cmpString(a.GradeLevel, b.GradeLevel)
	case "status":
		return cmpString(a.Status, b.Status)
	case "enrollment_date":
		return cmpTime(a.EnrollmentDate, b.EnrollmentDate)
	case "created_at":
		return cmpTime(a.CreatedAt, b.CreatedAt)
	}
	return cmpInt(a.ID, b.ID)
}

func (repo *studentRepository) CheckEmailUniqueness(ctx context.Context, email string, excluded ...student.Student) error {
	defer repo.db.runlock()
	if err := repo.db.rlock(ctx); err != nil {
		return err
	}

	excl := make(map[int]struct{}, len(excluded))
	for _, s := range excluded {
		excl[s.ID] = struct{}{}
	}
	for _, s := range repo.db.students {
		if _, ok := excl[s.ID]; !ok && strings.EqualFold(s.Email, email) {
			return student.ErrEmailExists
		}
	}
	return nil
}

func (repo *studentRepository) CreateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	defer repo.db.unlock()
	if err := repo.db.lock(ctx); err != nil {
		return student.Student{}, err
	}

	s.ID = repo.db.nextPK()
	repo.db.students[s.ID] = s
	return s, nil
}

func (repo *studentRepository) GetStudent(ctx context.Context, id int) (student.Student, error) {
	defer repo.db.runlock()
	if err := repo.db.rlock(ctx); err != nil {
		return student.Student{}, err
	}

	if s, ok := repo.db.students[id]; ok {
		return s, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) QueryStudents(
	ctx context.Context,
	filter student.QueryFilter,
	ordering ...core.DBOrdering,
) ([]student.Student, error) {
	defer repo.db.runlock()
	if err := repo.db.rlock(ctx); err != nil {
		return nil, err
	}

	filter.Clean()
	students := make([]student.Student, 0, len(repo.db.students))
	for _, s := range repo.db.students {
		if filter.Matches(s) {
			students = append(students, s)
		}
	}
	sortRows(students, ordering, compareStudents)
	return students, nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	defer repo.db.unlock()
	if err := repo.db.lock(ctx); err != nil {
		return student.Student{}, err
	}

	if _, ok := repo.db.students[s.ID]; !ok {
		return student.Student{}, student.ErrNotFound
	}
	repo.db.students[s.ID] = s
	return s, nil
}

func (repo *studentRepository) DeleteStudents(ctx context.Context, ids ...int) error {
	defer repo.db.unlock()
	if err := repo.db.lock(ctx); err != nil {
		return err
	}

	for _, id := range ids {
		delete(repo.db.students, id)
	}
	return nil
}
