package dummydb

import (
	"context"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/grade"
)

type gradeRepository struct {
	db *DB
}

var _ grade.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(db *DB) grade.Repository {
	return &gradeRepository{db: db}
}

func compareGrades(a, b grade.Grade, column string) int {
	switch column {
	case "student_id":
		return cmpInt(a.StudentID, b.StudentID)
	case "assignment_id":
		return cmpInt(a.AssignmentID, b.AssignmentID)
	case "score":
		return cmpFloat(a.Score, b.Score)
	case "submitted_date":
		return cmpTime(a.SubmittedDate, b.SubmittedDate)
	}
	return cmpInt(a.ID, b.ID)
}

func (repo *gradeRepository) CreateGrade(ctx context.Context, g grade.Grade) (grade.Grade, error) {
	defer repo.db.unlock()
	if err := repo.db.lock(ctx); err != nil {
		return grade.Grade{}, err
	}

	g.ID = repo.db.nextPK()
	repo.db.grades[g.ID] = g
	return g, nil
}

func (repo *gradeRepository) GetGrade(ctx context.Context, id int) (grade.Grade, error) {
	defer repo.db.runlock()
	if err := repo.db.rlock(ctx); err != nil {
		return grade.Grade{}, err
	}

	if g, ok := repo.db.grades[id]; ok {
		return g, nil
	}
	return grade.Grade{}, grade.ErrNotFound
}

func (repo *gradeRepository) QueryGrades(ctx context.Context, filter grade.QueryFilter, ordering ...core.DBOrdering) ([]grade.Grade, error) {
	defer repo.db.runlock()
	if err := repo.db.rlock(ctx); err != nil {
		return nil, err
	}

	filter.Clean()
	grades := make([]grade.Grade, 0, len(repo.db.grades))
	for _, g := range repo.db.grades {
		if filter.Matches(g) {
			grades = append(grades, g)
		}
	}
	sortRows(grades, ordering, compareGrades)
	return grades, nil
}

func (repo *gradeRepository) UpdateGrade(ctx context.Context, g grade.Grade) (grade.Grade, error) {
	defer repo.db.unlock()
	if err := repo.db.lock(ctx); err != nil {
		return grade.Grade{}, err
	}

	if _, ok := repo.db.grades[g.ID]; !ok {
		return grade.Grade{}, grade.ErrNotFound
	}
	repo.db.grades[g.ID] = g
	return g, nil
}

func (repo *gradeRepository) DeleteGrades(ctx context.Context, ids ...int) error {
	defer repo.db.unlock()
	if err := repo.db.lock(ctx); err != nil {
		return err
	}

	for _, id := range ids {
		delete(repo.db.grades, id)
	}
	return nil
}
