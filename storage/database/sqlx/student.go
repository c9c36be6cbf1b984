package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/student"
)

const studentColumns = `id, first_name, last_name, grade_level, status, email, phone, enrollment_date,
	parent1_name, parent1_phone, parent1_email, parent2_name, parent2_phone, parent2_email, created_at, updated_at`

type studentRow struct {
	ID             int         `db:"id"`
	FirstName      string      `db:"first_name"`
	LastName       string      `db:"last_name"`
	GradeLevel     string      `db:"grade_level"`
	Status         string      `db:"status"`
	Email          string      `db:"email"`
	Phone          null.String `db:"phone"`
	EnrollmentDate time.Time   `db:"enrollment_date"`
	Parent1Name    null.String `db:"parent1_name"`
	Parent1Phone   null.String `db:"parent1_phone"`
	Parent1Email   null.String `db:"parent1_email"`
	Parent2Name    null.String `db:"parent2_name"`
	Parent2Phone   null.String `db:"parent2_phone"`
	Parent2Email   null.String `db:"parent2_email"`
	CreatedAt      time.Time   `db:"created_at"`
	UpdatedAt      time.Time   `db:"updated_at"`
}

func nullString(s string) null.String {
	return null.NewString(s, s != "")
}

func newStudentRow(s student.Student) studentRow {
	return studentRow{
		ID:             s.ID,
		FirstName:      s.FirstName,
		LastName:       s.LastName,
		GradeLevel:     s.GradeLevel,
		Status:         s.Status,
		Email:          s.Email,
		Phone:          nullString(s.Phone),
		EnrollmentDate: core.TruncateDay(s.EnrollmentDate),
		Parent1Name:    nullString(s.Parent1.Name),
		Parent1Phone:   nullString(s.Parent1.Phone),
		Parent1Email:   nullString(s.Parent1.Email),
		Parent2Name:    nullString(s.Parent2.Name),
		Parent2Phone:   nullString(s.Parent2.Phone),
		Parent2Email:   nullString(s.Parent2.Email),
		CreatedAt:      s.CreatedAt.UTC(),
		UpdatedAt:      s.UpdatedAt.UTC(),
	}
}

func (row studentRow) student() student.Student {
	return student.Student{
		ID:             row.ID,
		FirstName:      row.FirstName,
		LastName:       row.LastName,
		GradeLevel:     row.GradeLevel,
		Status:         row.Status,
		Email:          row.Email,
		Phone:          row.Phone.String,
		EnrollmentDate: row.EnrollmentDate.UTC(),
		Parent1:        student.Parent{Name: row.Parent1Name.String, Phone: row.Parent1Phone.String, Email: row.Parent1Email.String},
		Parent2:        student.Parent{Name: row.Parent2Name.String, Phone: row.Parent2Phone.String, Email: row.Parent2Email.String},
		CreatedAt:      row.CreatedAt.UTC(),
		UpdatedAt:      row.UpdatedAt.UTC(),
	}
}

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CheckEmailUniqueness(ctx context.Context, email string, excluded ...student.Student) error {
	var w where
	w.add("LOWER(email) = LOWER(?)", email)
	if len(excluded) > 0 {
		ids := make([]int, 0, len(excluded))
		for _, s := range excluded {
			ids = append(ids, s.ID)
		}
		w.add("id NOT IN (?)", ids)
	}
	q, args, err := sqlx.In("SELECT EXISTS (SELECT 1 FROM student"+w.String()+")", w.args...)
	if err != nil {
		return errors.Wrap(err, "expanding query arguments")
	}

	var exists bool
	if err = repo.db.GetContext(ctx, &exists, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "checking student email uniqueness")
	}
	if exists {
		return student.ErrEmailExists
	}
	return nil
}

func (repo *studentRepository) CreateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	row := newStudentRow(s)
	id, err := insertReturningID(ctx, repo.db, `
		INSERT INTO student (first_name, last_name, grade_level, status, email, phone, enrollment_date,
			parent1_name, parent1_phone, parent1_email, parent2_name, parent2_phone, parent2_email, created_at, updated_at)
		VALUES (:first_name, :last_name, :grade_level, :status, :email, :phone, :enrollment_date,
			:parent1_name, :parent1_phone, :parent1_email, :parent2_name, :parent2_phone, :parent2_email, :created_at, :updated_at)
		RETURNING id`, row)
	if err != nil {
		if isUniqueViolation(err) {
			return student.Student{}, student.ErrEmailExists
		}
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	row.ID = id
	return row.student(), nil
}

func (repo *studentRepository) GetStudent(ctx context.Context, id int) (student.Student, error) {
	var row studentRow
	q := repo.db.Rebind("SELECT " + studentColumns + " FROM student WHERE id = ?")
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound, "finding student")
	}
	return row.student(), nil
}

func (repo *studentRepository) QueryStudents(
	ctx context.Context,
	filter student.QueryFilter,
	ordering ...core.DBOrdering,
) ([]student.Student, error) {
	filter.Clean()

	var w where
	if filter.Search != "" {
		w.addSearch(filter.Search, "first_name", "last_name", "email", "grade_level")
	}
	if len(filter.Statuses) > 0 {
		w.add("status IN (?)", filter.Statuses)
	}
	if filter.GradeLevel != "" {
		w.add("grade_level = ?", filter.GradeLevel)
	}

	q, args, err := w.query(repo.db, "SELECT "+studentColumns+" FROM student", ordering, "id ASC")
	if err != nil {
		return nil, err
	}
	var rows []studentRow
	if err = repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}

	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.student())
	}
	return students, nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	row := newStudentRow(s)
	err := updateOne(ctx, repo.db, `
		UPDATE student SET first_name = :first_name, last_name = :last_name, grade_level = :grade_level,
			status = :status, email = :email, phone = :phone, enrollment_date = :enrollment_date,
			parent1_name = :parent1_name, parent1_phone = :parent1_phone, parent1_email = :parent1_email,
			parent2_name = :parent2_name, parent2_phone = :parent2_phone, parent2_email = :parent2_email,
			updated_at = :updated_at
		WHERE id = :id`, row, student.ErrNotFound)
	if err != nil {
		if err == student.ErrNotFound {
			return student.Student{}, err
		}
		if isUniqueViolation(err) {
			return student.Student{}, student.ErrEmailExists
		}
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	return row.student(), nil
}

func (repo *studentRepository) DeleteStudents(ctx context.Context, ids ...int) error {
	return deleteIDs(ctx, repo.db, "student", ids)
}
