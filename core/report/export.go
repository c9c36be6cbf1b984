package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

const (
	StudentCSVFilename    = "student_performance_report.csv"
	AssignmentCSVFilename = "assignment_analysis_report.csv"
)

var (
	studentCSVHeader    = []string{"Name", "Grade", "GPA", "Attendance Rate", "Total Grades", "Status"}
	assignmentCSVHeader = []string{"Assignment", "Category", "Total Points", "Average Score", "Average Percentage", "Submissions"}
)

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatPercent(f float64) string {
	return formatNumber(f) + "%"
}

func writeCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "writing csv header")
	}
	if err := cw.WriteAll(rows); err != nil {
		return errors.Wrap(err, "writing csv rows")
	}
	return nil
}

// WriteStudentCSV writes the student performance report, in ranking order.
func WriteStudentCSV(w io.Writer, perfs []StudentPerformance) error {
	rows := make([][]string, 0, len(perfs))
	for _, p := range perfs {
		rows = append(rows, []string{
			p.Student.FullName(),
			p.Student.GradeLevel,
			formatPercent(p.GPA),
			formatPercent(p.AttendanceRate),
			strconv.Itoa(p.TotalGrades),
			p.Student.Status,
		})
	}
	return writeCSV(w, studentCSVHeader, rows)
}

// WriteAssignmentCSV writes the assignment analysis report, in ranking order.
func WriteAssignmentCSV(w io.Writer, analysis []AssignmentAnalysis) error {
	rows := make([][]string, 0, len(analysis))
	for _, a := range analysis {
		rows = append(rows, []string{
			a.Assignment.Title,
			a.Assignment.Category,
			formatNumber(a.Assignment.TotalPoints),
			formatNumber(a.AverageScore),
			formatPercent(a.AveragePercentage),
			strconv.Itoa(a.SubmissionCount),
		})
	}
	return writeCSV(w, assignmentCSVHeader, rows)
}
