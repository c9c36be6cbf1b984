package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/assignment"
)

const assignmentColumns = "id, title, category, total_points, weight, due_date, description"

type assignmentRow struct {
	ID          int         `db:"id"`
	Title       string      `db:"title"`
	Category    string      `db:"category"`
	TotalPoints float64     `db:"total_points"`
	Weight      float64     `db:"weight"`
	DueDate     null.Time   `db:"due_date"`
	Description null.String `db:"description"`
}

func newAssignmentRow(a assignment.Assignment) assignmentRow {
	row := assignmentRow{
		ID:          a.ID,
		Title:       a.Title,
		Category:    a.Category,
		TotalPoints: a.TotalPoints,
		Weight:      a.Weight,
		Description: nullString(a.Description),
	}
	if a.DueDate != nil {
		row.DueDate = null.TimeFrom(core.TruncateDay(*a.DueDate))
	}
	return row
}

func (row assignmentRow) assignment() assignment.Assignment {
	a := assignment.Assignment{
		ID:          row.ID,
		Title:       row.Title,
		Category:    row.Category,
		TotalPoints: row.TotalPoints,
		Weight:      row.Weight,
		Description: row.Description.String,
	}
	if row.DueDate.Valid {
		due := row.DueDate.Time.UTC()
		a.DueDate = &due
	}
	return a
}

type assignmentRepository struct {
	db *sqlx.DB
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *sqlx.DB) assignment.Repository {
	return &assignmentRepository{db: db}
}

func (repo *assignmentRepository) CreateAssignment(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	row := newAssignmentRow(a)
	id, err := insertReturningID(ctx, repo.db, `
		INSERT INTO assignment (title, category, total_points, weight, due_date, description)
		VALUES (:title, :category, :total_points, :weight, :due_date, :description)
		RETURNING id`, row)
	if err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "inserting assignment")
	}
	row.ID = id
	return row.assignment(), nil
}

func (repo *assignmentRepository) GetAssignment(ctx context.Context, id int) (assignment.Assignment, error) {
	var row assignmentRow
	q := repo.db.Rebind("SELECT " + assignmentColumns + " FROM assignment WHERE id = ?")
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		return assignment.Assignment{}, trapNoRowsErr(err, assignment.ErrNotFound, "finding assignment")
	}
	return row.assignment(), nil
}

func (repo *assignmentRepository) QueryAssignments(
	ctx context.Context,
	filter assignment.QueryFilter,
	ordering ...core.DBOrdering,
) ([]assignment.Assignment, error) {
	filter.Clean()

	var w where
	if filter.Search != "" {
		w.addSearch(filter.Search, "title", "description")
	}
	if len(filter.Categories) > 0 {
		w.add("category IN (?)", filter.Categories)
	}

	q, args, err := w.query(repo.db, "SELECT "+assignmentColumns+" FROM assignment", ordering, "id ASC")
	if err != nil {
		return nil, err
	}
	var rows []assignmentRow
	if err = repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}

	assignments := make([]assignment.Assignment, 0, len(rows))
	for _, row := range rows {
		assignments = append(assignments, row.assignment())
	}
	return assignments, nil
}

func (repo *assignmentRepository) UpdateAssignment(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	row := newAssignmentRow(a)
	err := updateOne(ctx, repo.db, `
		UPDATE assignment SET title = :title, category = :category, total_points = :total_points,
			weight = :weight, due_date = :due_date, description = :description
		WHERE id = :id`, row, assignment.ErrNotFound)
	if err != nil {
		if err == assignment.ErrNotFound {
			return assignment.Assignment{}, err
		}
		return assignment.Assignment{}, errors.Wrap(err, "updating assignment")
	}
	return row.assignment(), nil
}

// DeleteAssignment deletes the grades of the assignment, then the assignment, in a single transaction.
func (repo *assignmentRepository) DeleteAssignment(ctx context.Context, id int) (err error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "starting transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, tx.Rebind("DELETE FROM grade WHERE assignment_id = ?"), id); err != nil {
		return errors.Wrap(err, "deleting assignment grades")
	}
	res, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM assignment WHERE id = ?"), id)
	if err != nil {
		return errors.Wrap(err, "deleting assignment")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "counting deleted assignments")
	}
	if n == 0 {
		err = assignment.ErrNotFound
		return err
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "committing transaction")
	}
	return nil
}
