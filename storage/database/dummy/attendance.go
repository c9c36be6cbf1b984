package dummydb

import (
	"context"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/attendance"
)

type attendanceRepository struct {
	db *DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func compareRecords(a, b attendance.Record, column string) int {
	switch column {
	case "student_id":
		return cmpInt(a.StudentID, b.StudentID)
	case "date":
		return cmpTime(a.Date, b.Date)
	case "status":
		return cmpString(a.Status, b.Status)
	}
	return cmpInt(a.ID, b.ID)
}

// find returns the record of a student on a day; db must be locked.
func (repo *attendanceRepository) find(r attendance.Record) (attendance.Record, bool) {
	for _, rec := range repo.db.attendance {
		if rec.StudentID == r.StudentID && rec.Date.Equal(r.Date) {
			return rec, true
		}
	}
	return attendance.Record{}, false
}

func (repo *attendanceRepository) CreateRecord(ctx context.Context, r attendance.Record) (attendance.Record, error) {
	defer repo.db.unlock()
	if err := repo.db.lock(ctx); err != nil {
		return attendance.Record{}, err
	}

	r.Date = core.TruncateDay(r.Date)
	if _, exists := repo.find(r); exists {
		return attendance.Record{}, attendance.ErrAlreadyRecorded
	}
	r.ID = repo.db.nextPK()
	repo.db.attendance[r.ID] = r
	return r, nil
}

func (repo *attendanceRepository) GetRecord(ctx context.Context, id int) (attendance.Record, error) {
	defer repo.db.runlock()
	if err := repo.db.rlock(ctx); err != nil {
		return attendance.Record{}, err
	}

	if r, ok := repo.db.attendance[id]; ok {
		return r, nil
	}
	return attendance.Record{}, attendance.ErrNotFound
}

func (repo *attendanceRepository) QueryRecords(
	ctx context.Context,
	filter attendance.QueryFilter,
	ordering ...core.DBOrdering,
) ([]attendance.Record, error) {
	defer repo.db.runlock()
	if err := repo.db.rlock(ctx); err != nil {
		return nil, err
	}

	filter.Clean()
	records := make([]attendance.Record, 0, len(repo.db.attendance))
	for _, r := range repo.db.attendance {
		if filter.Matches(r) {
			records = append(records, r)
		}
	}
	sortRows(records, ordering, compareRecords)
	return records, nil
}

func (repo *attendanceRepository) UpdateRecord(ctx context.Context, r attendance.Record) (attendance.Record, error) {
	defer repo.db.unlock()
	if err := repo.db.lock(ctx); err != nil {
		return attendance.Record{}, err
	}

	if _, ok := repo.db.attendance[r.ID]; !ok {
		return attendance.Record{}, attendance.ErrNotFound
	}
	r.Date = core.TruncateDay(r.Date)
	if other, exists := repo.find(r); exists && other.ID != r.ID {
		return attendance.Record{}, attendance.ErrAlreadyRecorded
	}
	repo.db.attendance[r.ID] = r
	return r, nil
}

func (repo *attendanceRepository) UpsertRecords(ctx context.Context, records ...attendance.Record) ([]attendance.Record, error) {
	defer repo.db.unlock()
	if err := repo.db.lock(ctx); err != nil {
		return nil, err
	}

	saved := make([]attendance.Record, 0, len(records))
	for _, r := range records {
		r.Date = core.TruncateDay(r.Date)
		if existing, ok := repo.find(r); ok {
			existing.Status = r.Status
			r = existing
		} else {
			r.ID = repo.db.nextPK()
		}
		repo.db.attendance[r.ID] = r
		saved = append(saved, r)
	}
	return saved, nil
}

func (repo *attendanceRepository) DeleteRecords(ctx context.Context, ids ...int) error {
	defer repo.db.unlock()
	if err := repo.db.lock(ctx); err != nil {
		return err
	}

	for _, id := range ids {
		delete(repo.db.attendance, id)
	}
	return nil
}
