package dummydb

import (
	"context"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/assignment"
)

type assignmentRepository struct {
	db *DB
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *DB) assignment.Repository {
	return &assignmentRepository{db: db}
}

func compareAssignments(a, b assignment.Assignment, column string) int {
	switch column {
	case "title":
		return cmpString(a.Title, b.Title)
	case "category":
		return cmpString(a.Category, b.Category)
	case "total_points":
		return cmpFloat(a.TotalPoints, b.TotalPoints)
	case "weight":
		return cmpFloat(a.Weight, b.Weight)
	case "due_date":
		return cmpTimePtr(a.DueDate, b.DueDate)
	}
	return cmpInt(a.ID, b.ID)
}

func (repo *assignmentRepository) CreateAssignment(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	defer repo.db.unlock()
	if err := repo.db.lock(ctx); err != nil {
		return assignment.Assignment{}, err
	}

	a.ID = repo.db.nextPK()
	repo.db.assignments[a.ID] = a
	return a, nil
}

func (repo *assignmentRepository) GetAssignment(ctx context.Context, id int) (assignment.Assignment, error) {
	defer repo.db.runlock()
	if err := repo.db.rlock(ctx); err != nil {
		return assignment.Assignment{}, err
	}

	if a, ok := repo.db.assignments[id]; ok {
		return a, nil
	}
	return assignment.Assignment{}, assignment.ErrNotFound
}

func (repo *assignmentRepository) QueryAssignments(
	ctx context.Context,
	filter assignment.QueryFilter,
	ordering ...core.DBOrdering,
) ([]assignment.Assignment, error) {
	defer repo.db.runlock()
	if err := repo.db.rlock(ctx); err != nil {
		return nil, err
	}

	filter.Clean()
	assignments := make([]assignment.Assignment, 0, len(repo.db.assignments))
	for _, a := range repo.db.assignments {
		if filter.Matches(a) {
			assignments = append(assignments, a)
		}
	}
	sortRows(assignments, ordering, compareAssignments)
	return assignments, nil
}

func (repo *assignmentRepository) UpdateAssignment(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	defer repo.db.unlock()
	if err := repo.db.lock(ctx); err != nil {
		return assignment.Assignment{}, err
	}

	if _, ok := repo.db.assignments[a.ID]; !ok {
		return assignment.Assignment{}, assignment.ErrNotFound
	}
	repo.db.assignments[a.ID] = a
	return a, nil
}

func (repo *assignmentRepository) DeleteAssignment(ctx context.Context, id int) error {
	defer repo.db.unlock()
	if err := repo.db.lock(ctx); err != nil {
		return err
	}

	if _, ok := repo.db.assignments[id]; !ok {
		return assignment.ErrNotFound
	}
	for gid, g := range repo.db.grades {
		if g.AssignmentID == id {
			delete(repo.db.grades, gid)
		}
	}
	delete(repo.db.assignments, id)
	return nil
}
