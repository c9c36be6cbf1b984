package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"github.com/volatiletech/strmangle"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/attendance"
)

const attendanceColumns = "id, student_id, date, status, notes"

type attendanceRow struct {
	ID        int         `db:"id"`
	StudentID int         `db:"student_id"`
	Date      time.Time   `db:"date"`
	Status    string      `db:"status"`
	Notes     null.String `db:"notes"`
}

func newAttendanceRow(r attendance.Record) attendanceRow {
	return attendanceRow{
		ID:        r.ID,
		StudentID: r.StudentID,
		Date:      core.TruncateDay(r.Date),
		Status:    r.Status,
		Notes:     nullString(r.Notes),
	}
}

func (row attendanceRow) record() attendance.Record {
	return attendance.Record{
		ID:        row.ID,
		StudentID: row.StudentID,
		Date:      row.Date.UTC(),
		Status:    row.Status,
		Notes:     row.Notes.String,
	}
}

type attendanceRepository struct {
	db *sqlx.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *sqlx.DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) CreateRecord(ctx context.Context, r attendance.Record) (attendance.Record, error) {
	row := newAttendanceRow(r)
	id, err := insertReturningID(ctx, repo.db, `
		INSERT INTO attendance (student_id, date, status, notes)
		VALUES (:student_id, :date, :status, :notes)
		RETURNING id`, row)
	if err != nil {
		if isUniqueViolation(err) {
			return attendance.Record{}, attendance.ErrAlreadyRecorded
		}
		return attendance.Record{}, errors.Wrap(err, "inserting attendance record")
	}
	row.ID = id
	return row.record(), nil
}

func (repo *attendanceRepository) GetRecord(ctx context.Context, id int) (attendance.Record, error) {
	var row attendanceRow
	q := repo.db.Rebind("SELECT " + attendanceColumns + " FROM attendance WHERE id = ?")
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		return attendance.Record{}, trapNoRowsErr(err, attendance.ErrNotFound, "finding attendance record")
	}
	return row.record(), nil
}

func (repo *attendanceRepository) QueryRecords(
	ctx context.Context,
	filter attendance.QueryFilter,
	ordering ...core.DBOrdering,
) ([]attendance.Record, error) {
	filter.Clean()

	var w where
	if len(filter.StudentIDs) > 0 {
		w.add("student_id IN (?)", filter.StudentIDs)
	}
	if len(filter.Statuses) > 0 {
		w.add("status IN (?)", filter.Statuses)
	}
	if !filter.From.IsZero() {
		w.add("date >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		w.add("date <= ?", filter.To)
	}

	q, args, err := w.query(repo.db, "SELECT "+attendanceColumns+" FROM attendance", ordering, "id ASC")
	if err != nil {
		return nil, err
	}
	var rows []attendanceRow
	if err = repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying attendance records")
	}
	return attendanceRecords(rows), nil
}

func attendanceRecords(rows []attendanceRow) []attendance.Record {
	records := make([]attendance.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.record())
	}
	return records
}

func (repo *attendanceRepository) UpdateRecord(ctx context.Context, r attendance.Record) (attendance.Record, error) {
	row := newAttendanceRow(r)
	err := updateOne(ctx, repo.db, `
		UPDATE attendance SET student_id = :student_id, date = :date, status = :status, notes = :notes
		WHERE id = :id`, row, attendance.ErrNotFound)
	if err != nil {
		if err == attendance.ErrNotFound {
			return attendance.Record{}, err
		}
		if isUniqueViolation(err) {
			return attendance.Record{}, attendance.ErrAlreadyRecorded
		}
		return attendance.Record{}, errors.Wrap(err, "updating attendance record")
	}
	return row.record(), nil
}

// UpsertRecords inserts every record in one statement; existing (student, date) records only get their status updated.
func (repo *attendanceRepository) UpsertRecords(ctx context.Context, records ...attendance.Record) ([]attendance.Record, error) {
	if len(records) == 0 {
		return []attendance.Record{}, nil
	}

	const cols = 4
	args := make([]interface{}, 0, len(records)*cols)
	for _, r := range records {
		row := newAttendanceRow(r)
		args = append(args, row.StudentID, row.Date, row.Status, row.Notes)
	}
	q := "INSERT INTO attendance (student_id, date, status, notes) VALUES " +
		strmangle.Placeholders(true, len(args), 1, cols) +
		" ON CONFLICT (student_id, date) DO UPDATE SET status = EXCLUDED.status" +
		" RETURNING " + attendanceColumns

	var rows []attendanceRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "upserting attendance records")
	}
	return attendanceRecords(rows), nil
}

func (repo *attendanceRepository) DeleteRecords(ctx context.Context, ids ...int) error {
	return deleteIDs(ctx, repo.db, "attendance", ids)
}
