package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/grade"
)

const gradeColumns = "id, student_id, assignment_id, score, submitted_date, comments"

type gradeRow struct {
	ID            int         `db:"id"`
	StudentID     int         `db:"student_id"`
	AssignmentID  int         `db:"assignment_id"`
	Score         float64     `db:"score"`
	SubmittedDate time.Time   `db:"submitted_date"`
	Comments      null.String `db:"comments"`
}

func newGradeRow(g grade.Grade) gradeRow {
	return gradeRow{
		ID:            g.ID,
		StudentID:     g.StudentID,
		AssignmentID:  g.AssignmentID,
		Score:         g.Score,
		SubmittedDate: core.TruncateDay(g.SubmittedDate),
		Comments:      nullString(g.Comments),
	}
}

func (row gradeRow) grade() grade.Grade {
	return grade.Grade{
		ID:            row.ID,
		StudentID:     row.StudentID,
		AssignmentID:  row.AssignmentID,
		Score:         row.Score,
		SubmittedDate: row.SubmittedDate.UTC(),
		Comments:      row.Comments.String,
	}
}

type gradeRepository struct {
	db *sqlx.DB
}

var _ grade.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(db *sqlx.DB) grade.Repository {
	return &gradeRepository{db: db}
}

func (repo *gradeRepository) CreateGrade(ctx context.Context, g grade.Grade) (grade.Grade, error) {
	row := newGradeRow(g)
	id, err := insertReturningID(ctx, repo.db, `
		INSERT INTO grade (student_id, assignment_id, score, submitted_date, comments)
		VALUES (:student_id, :assignment_id, :score, :submitted_date, :comments)
		RETURNING id`, row)
	if err != nil {
		return grade.Grade{}, errors.Wrap(err, "inserting grade")
	}
	row.ID = id
	return row.grade(), nil
}

func (repo *gradeRepository) GetGrade(ctx context.Context, id int) (grade.Grade, error) {
	var row gradeRow
	q := repo.db.Rebind("SELECT " + gradeColumns + " FROM grade WHERE id = ?")
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		return grade.Grade{}, trapNoRowsErr(err, grade.ErrNotFound, "finding grade")
	}
	return row.grade(), nil
}

func (repo *gradeRepository) QueryGrades(ctx context.Context, filter grade.QueryFilter, ordering ...core.DBOrdering) ([]grade.Grade, error) {
	filter.Clean()

	var w where
	if len(filter.StudentIDs) > 0 {
		w.add("student_id IN (?)", filter.StudentIDs)
	}
	if len(filter.AssignmentIDs) > 0 {
		w.add("assignment_id IN (?)", filter.AssignmentIDs)
	}
	if !filter.SubmittedFrom.IsZero() {
		w.add("submitted_date >= ?", filter.SubmittedFrom)
	}
	if !filter.SubmittedTo.IsZero() {
		w.add("submitted_date <= ?", filter.SubmittedTo)
	}

	q, args, err := w.query(repo.db, "SELECT "+gradeColumns+" FROM grade", ordering, "id ASC")
	if err != nil {
		return nil, err
	}
	var rows []gradeRow
	if err = repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying grades")
	}

	grades := make([]grade.Grade, 0, len(rows))
	for _, row := range rows {
		grades = append(grades, row.grade())
	}
	return grades, nil
}

func (repo *gradeRepository) UpdateGrade(ctx context.Context, g grade.Grade) (grade.Grade, error) {
	row := newGradeRow(g)
	err := updateOne(ctx, repo.db, `
		UPDATE grade SET student_id = :student_id, assignment_id = :assignment_id, score = :score,
			submitted_date = :submitted_date, comments = :comments
		WHERE id = :id`, row, grade.ErrNotFound)
	if err != nil {
		if err == grade.ErrNotFound {
			return grade.Grade{}, err
		}
		return grade.Grade{}, errors.Wrap(err, "updating grade")
	}
	return row.grade(), nil
}

func (repo *gradeRepository) DeleteGrades(ctx context.Context, ids ...int) error {
	return deleteIDs(ctx, repo.db, "grade", ids)
}
