package report

import (
	"sort"
	"strings"
	"time"

	"github.com/trezcool/gradebook/core/aggregate"
	"github.com/trezcool/gradebook/core/assignment"
	"github.com/trezcool/gradebook/core/attendance"
	"github.com/trezcool/gradebook/core/grade"
	"github.com/trezcool/gradebook/core/student"
)

// Snapshot is a consistent view of the classroom data at LoadedAt.
// Views never modify it, so it can be shared between goroutines.
type Snapshot struct {
	Students    []student.Student
	Assignments []assignment.Assignment
	Grades      []grade.Grade
	Attendance  []attendance.Record
	LoadedAt    time.Time

	students        map[int]student.Student
	assignments     map[int]assignment.Assignment
	orphanedGrades  int
	orphanedRecords int
}

// NewSnapshot builds a Snapshot from data that is already in memory.
func NewSnapshot(
	students []student.Student,
	assignments []assignment.Assignment,
	grades []grade.Grade,
	records []attendance.Record,
) *Snapshot {
	snap := &Snapshot{
		Students:    students,
		Assignments: assignments,
		Grades:      grades,
		Attendance:  records,
		LoadedAt:    time.Now().UTC(),
	}
	snap.index()
	return snap
}

func (snap *Snapshot) index() {
	snap.students = make(map[int]student.Student, len(snap.Students))
	for _, s := range snap.Students {
		if _, ok := snap.students[s.ID]; !ok {
			snap.students[s.ID] = s
		}
	}
	snap.assignments = aggregate.IndexAssignments(snap.Assignments)

	snap.orphanedGrades, snap.orphanedRecords = 0, 0
	for _, g := range snap.Grades {
		_, okS := snap.students[g.StudentID]
		_, okA := snap.assignments[g.AssignmentID]
		if !okS || !okA {
			snap.orphanedGrades++
		}
	}
	for _, r := range snap.Attendance {
		if _, ok := snap.students[r.StudentID]; !ok {
			snap.orphanedRecords++
		}
	}
}

// Orphans returns the number of grades and attendance records referencing missing students or assignments.
func (snap *Snapshot) Orphans() (grades, records int) {
	return snap.orphanedGrades, snap.orphanedRecords
}

func (snap *Snapshot) gradesOf(studentID int) []grade.Grade {
	var grades []grade.Grade
	for _, g := range snap.Grades {
		if g.StudentID == studentID {
			grades = append(grades, g)
		}
	}
	return grades
}

type Overview struct {
	ActiveStudents    int                    `json:"active_students"`
	TotalAssignments  int                    `json:"total_assignments"`
	AverageGrade      float64                `json:"average_grade"`
	AttendanceRate    float64                `json:"attendance_rate"`
	GradeDistribution aggregate.Distribution `json:"grade_distribution"`
}

// knownGrades drops the grades of students that no longer exist.
func (snap *Snapshot) knownGrades() []grade.Grade {
	grades := make([]grade.Grade, 0, len(snap.Grades))
	for _, g := range snap.Grades {
		if _, ok := snap.students[g.StudentID]; ok {
			grades = append(grades, g)
		}
	}
	return grades
}

func (snap *Snapshot) knownRecords() []attendance.Record {
	records := make([]attendance.Record, 0, len(snap.Attendance))
	for _, r := range snap.Attendance {
		if _, ok := snap.students[r.StudentID]; ok {
			records = append(records, r)
		}
	}
	return records
}

// Overview summarizes the class. Grades and records of missing students are left out;
// grades of missing assignments only show in the distribution's orphan count.
func (snap *Snapshot) Overview() Overview {
	grades := snap.knownGrades()
	ov := Overview{
		TotalAssignments:  len(snap.Assignments),
		AverageGrade:      aggregate.SimpleAverage(grades),
		AttendanceRate:    aggregate.OverallAttendanceRate(snap.knownRecords()),
		GradeDistribution: aggregate.GradeDistribution(grades, snap.Assignments),
	}
	for _, s := range snap.Students {
		if s.IsActive() {
			ov.ActiveStudents++
		}
	}
	return ov
}

type StudentPerformance struct {
	Student         student.Student  `json:"student"`
	GPA             float64          `json:"gpa"`
	WeightedAverage float64          `json:"weighted_average"`
	Letter          aggregate.Letter `json:"letter"`
	AttendanceRate  float64          `json:"attendance_rate"`
	TotalGrades     int              `json:"total_grades"`
	TotalAttendance int              `json:"total_attendance"`
}

// StudentPerformance ranks every student by GPA, highest first.
// The GPA is the points based percentage; the weighted average is given alongside.
// Ties keep the alphabetical order of the names.
func (snap *Snapshot) StudentPerformance() []StudentPerformance {
	perfs := make([]StudentPerformance, 0, len(snap.Students))
	for _, s := range snap.Students {
		grades := snap.gradesOf(s.ID)
		var totalAttendance int
		for _, r := range snap.Attendance {
			if r.StudentID == s.ID {
				totalAttendance++
			}
		}

		gpa := aggregate.UnweightedPercentageAverage(grades, snap.Assignments)
		letter := aggregate.NoMark
		if len(grades) > 0 {
			letter = aggregate.LetterFor(gpa)
		}
		perfs = append(perfs, StudentPerformance{
			Student:         s,
			GPA:             gpa,
			WeightedAverage: aggregate.WeightedAverage(grades, snap.Assignments),
			Letter:          letter,
			AttendanceRate:  aggregate.AttendanceRate(snap.Attendance, s.ID),
			TotalGrades:     len(grades),
			TotalAttendance: totalAttendance,
		})
	}

	sort.SliceStable(perfs, func(i, j int) bool {
		if perfs[i].GPA != perfs[j].GPA {
			return perfs[i].GPA > perfs[j].GPA
		}
		return strings.ToLower(perfs[i].Student.FullName()) < strings.ToLower(perfs[j].Student.FullName())
	})
	return perfs
}

type AssignmentAnalysis struct {
	Assignment assignment.Assignment `json:"assignment"`
	aggregate.Stats
}

// AssignmentAnalysis gives the statistics of every assignment, best average percentage first.
func (snap *Snapshot) AssignmentAnalysis() []AssignmentAnalysis {
	res := make([]AssignmentAnalysis, 0, len(snap.Assignments))
	for _, a := range snap.Assignments {
		res = append(res, AssignmentAnalysis{
			Assignment: a,
			Stats:      aggregate.AssignmentStatistics(a, snap.Grades),
		})
	}
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].AveragePercentage > res[j].AveragePercentage
	})
	return res
}

type (
	GradebookCell struct {
		AssignmentID int `json:"assignment_id"`
		GradeID      int `json:"grade_id,omitempty"`
		aggregate.Mark
	}

	GradebookRow struct {
		Student         student.Student `json:"student"`
		Cells           []GradebookCell `json:"cells"`
		WeightedAverage float64         `json:"weighted_average"`
	}

	Gradebook struct {
		Assignments []assignment.Assignment `json:"assignments"`
		Rows        []GradebookRow          `json:"rows"`
	}
)

// Gradebook lays out the marks of the active students (rows) on every assignment (columns).
// A missing grade is the NoMark sentinel.
func (snap *Snapshot) Gradebook() Gradebook {
	gb := Gradebook{Assignments: snap.Assignments, Rows: []GradebookRow{}}
	for _, s := range snap.Students {
		if !s.IsActive() {
			continue
		}

		grades := snap.gradesOf(s.ID)
		row := GradebookRow{
			Student:         s,
			Cells:           make([]GradebookCell, 0, len(snap.Assignments)),
			WeightedAverage: aggregate.WeightedAverage(grades, snap.Assignments),
		}
		for _, a := range snap.Assignments {
			cell := GradebookCell{AssignmentID: a.ID, Mark: aggregate.MarkFor(nil, a)}
			if g, ok := aggregate.FindGrade(grades, s.ID, a.ID); ok {
				cell.GradeID = g.ID
				cell.Mark = aggregate.MarkFor(&g, a)
			}
			row.Cells = append(row.Cells, cell)
		}
		gb.Rows = append(gb.Rows, row)
	}
	return gb
}

type AttendanceSummary struct {
	Student student.Student `json:"student"`
	Present int             `json:"present"`
	Total   int             `json:"total"`
	Rate    float64         `json:"rate"`
}

// AttendanceSummary counts the attendance of every active student.
func (snap *Snapshot) AttendanceSummary() []AttendanceSummary {
	res := make([]AttendanceSummary, 0, len(snap.Students))
	for _, s := range snap.Students {
		if !s.IsActive() {
			continue
		}
		sum := AttendanceSummary{Student: s}
		for _, r := range snap.Attendance {
			if r.StudentID != s.ID {
				continue
			}
			sum.Total++
			if r.Status == attendance.StatusPresent {
				sum.Present++
			}
		}
		sum.Rate = aggregate.AttendanceRate(snap.Attendance, s.ID)
		res = append(res, sum)
	}
	return res
}

type Activity struct {
	GradeID         int       `json:"grade_id"`
	StudentName     string    `json:"student_name"`
	AssignmentTitle string    `json:"assignment_title"`
	Score           float64   `json:"score"`
	SubmittedDate   time.Time `json:"submitted_date"`
}

// RecentActivity returns the n latest grades, by submitted date.
// Names of missing students or assignments are left empty.
func (snap *Snapshot) RecentActivity(n int) []Activity {
	grades := make([]grade.Grade, len(snap.Grades))
	copy(grades, snap.Grades)
	sort.SliceStable(grades, func(i, j int) bool {
		return grades[i].SubmittedDate.After(grades[j].SubmittedDate)
	})
	if n >= 0 && n < len(grades) {
		grades = grades[:n]
	}

	res := make([]Activity, 0, len(grades))
	for _, g := range grades {
		act := Activity{GradeID: g.ID, Score: g.Score, SubmittedDate: g.SubmittedDate}
		if s, ok := snap.students[g.StudentID]; ok {
			act.StudentName = s.FullName()
		}
		if a, ok := snap.assignments[g.AssignmentID]; ok {
			act.AssignmentTitle = a.Title
		}
		res = append(res, act)
	}
	return res
}
