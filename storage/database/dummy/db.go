// Package dummydb provides in-memory repositories, used in development and tests.
package dummydb

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/account"
	"github.com/trezcool/gradebook/core/assignment"
	"github.com/trezcool/gradebook/core/attendance"
	"github.com/trezcool/gradebook/core/communication"
	"github.com/trezcool/gradebook/core/grade"
	"github.com/trezcool/gradebook/core/student"
)

// DB holds every table. A single lock guards them all, so that cascades are atomic.
type DB struct {
	mu sync.RWMutex

	accounts       map[int]account.Account
	students       map[int]student.Student
	assignments    map[int]assignment.Assignment
	grades         map[int]grade.Grade
	attendance     map[int]attendance.Record
	communications map[int]communication.Communication

	pkCount int
	err     error
}

func Open() *DB {
	db := new(DB)
	db.Reset()
	return db
}

// FailWith makes every following call fail with err, until FailWith(nil).
func (db *DB) FailWith(err error) {
	db.mu.Lock()
	db.err = err
	db.mu.Unlock()
}

// Reset empties every table.
func (db *DB) Reset() {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.accounts = make(map[int]account.Account)
	db.students = make(map[int]student.Student)
	db.assignments = make(map[int]assignment.Assignment)
	db.grades = make(map[int]grade.Grade)
	db.attendance = make(map[int]attendance.Record)
	db.communications = make(map[int]communication.Communication)
	db.err = nil
}

// rlock read-locks db, returning the error to fail with, if any. Callers must runlock.
func (db *DB) rlock(ctx context.Context) error {
	db.mu.RLock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return db.err
}

func (db *DB) runlock() { db.mu.RUnlock() }

// lock write-locks db, returning the error to fail with, if any. Callers must unlock.
func (db *DB) lock(ctx context.Context) error {
	db.mu.Lock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return db.err
}

func (db *DB) unlock() { db.mu.Unlock() }

func (db *DB) nextPK() int {
	db.pkCount++
	return db.pkCount
}

// sortRows orders rows like an ORDER BY clause would; by ascending ID by default.
// compare returns a negative number when a < b on column, a positive one when a > b.
func sortRows[T any](rows []T, orderings []core.DBOrdering, compare func(a, b T, column string) int) {
	if len(orderings) == 0 {
		orderings = []core.DBOrdering{{Field: "id", Ascending: true}}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		for _, ord := range orderings {
			c := compare(rows[i], rows[j], ord.Field)
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpString(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

func cmpTime(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}

// cmpTimePtr sorts nil last, as Postgres does with NULLs in ascending order.
func cmpTimePtr(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return cmpTime(*a, *b)
}
