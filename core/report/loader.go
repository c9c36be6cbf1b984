// Package report loads a consistent snapshot of the classroom data and derives the dashboard views from it.
package report

import (
	"context"
	"errors"
	"time"

	"github.com/kat-co/vala"
	pkgerrors "github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/assignment"
	"github.com/trezcool/gradebook/core/attendance"
	"github.com/trezcool/gradebook/core/grade"
	"github.com/trezcool/gradebook/core/student"
)

var (
	// errors
	ErrLoadFailed = errors.New("failed to load report data")
)

type (
	StudentLister interface {
		QueryAll(ctx context.Context) ([]student.Student, error)
	}

	AssignmentLister interface {
		QueryAll(ctx context.Context) ([]assignment.Assignment, error)
	}

	GradeLister interface {
		QueryAll(ctx context.Context) ([]grade.Grade, error)
	}

	AttendanceLister interface {
		QueryAll(ctx context.Context) ([]attendance.Record, error)
	}

	// Recorder observes snapshot loads.
	Recorder interface {
		ObserveLoad(elapsed time.Duration, err error)
		ObserveOrphans(grades, records int)
	}

	Loader struct {
		students    StudentLister
		assignments AssignmentLister
		grades      GradeLister
		attendance  AttendanceLister
		recorder    Recorder
		logger      core.Logger
	}
)

type nopRecorder struct{}

func (nopRecorder) ObserveLoad(time.Duration, error) {}
func (nopRecorder) ObserveOrphans(int, int)          {}

// NopRecorder discards every observation.
var NopRecorder Recorder = nopRecorder{}

func NewLoader(
	students StudentLister,
	assignments AssignmentLister,
	grades GradeLister,
	att AttendanceLister,
	recorder Recorder,
	logger core.Logger,
) (*Loader, error) {
	err := vala.BeginValidation().Validate(
		vala.IsNotNil(students, "students"),
		vala.IsNotNil(assignments, "assignments"),
		vala.IsNotNil(grades, "grades"),
		vala.IsNotNil(att, "attendance"),
		vala.IsNotNil(logger, "logger"),
	).Check()
	if err != nil {
		return nil, err
	}
	if recorder == nil {
		recorder = NopRecorder
	}
	return &Loader{
		students:    students,
		assignments: assignments,
		grades:      grades,
		attendance:  att,
		recorder:    recorder,
		logger:      logger,
	}, nil
}

// Load reads students, assignments, grades and attendance concurrently.
// It is all-or-nothing: the first failure cancels the other reads and
// no partial Snapshot is ever returned.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	start := time.Now()
	snap := &Snapshot{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.Students, err = l.students.QueryAll(gctx)
		return pkgerrors.Wrap(err, "loading students")
	})
	g.Go(func() (err error) {
		snap.Assignments, err = l.assignments.QueryAll(gctx)
		return pkgerrors.Wrap(err, "loading assignments")
	})
	g.Go(func() (err error) {
		snap.Grades, err = l.grades.QueryAll(gctx)
		return pkgerrors.Wrap(err, "loading grades")
	})
	g.Go(func() (err error) {
		snap.Attendance, err = l.attendance.QueryAll(gctx)
		return pkgerrors.Wrap(err, "loading attendance")
	})

	err := g.Wait()
	l.recorder.ObserveLoad(time.Since(start), err)
	if err != nil {
		l.logger.Warn(err.Error())
		return nil, &LoadError{Err: err}
	}

	snap.LoadedAt = time.Now().UTC()
	snap.index()
	l.recorder.ObserveOrphans(snap.orphanedGrades, snap.orphanedRecords)
	return snap, nil
}

// LoadError is returned when any read of a snapshot failed.
// It matches ErrLoadFailed with errors.Is.
type LoadError struct {
	Err error
}

func (le *LoadError) Error() string {
	return ErrLoadFailed.Error() + ": " + le.Err.Error()
}

func (le *LoadError) Unwrap() error {
	return le.Err
}

func (le *LoadError) Is(target error) bool {
	return target == ErrLoadFailed
}
