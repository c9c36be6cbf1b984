// Package aggregate derives grade and attendance statistics from in-memory snapshots.
//
// Every function is pure: inputs are never mutated, nothing is cached between calls and no I/O is done.
// Grades or records pointing to unknown assignments (orphans) are skipped, never reported as errors.
// Empty denominators yield 0, so no function returns NaN or Inf.
package aggregate

import (
	"math"

	"github.com/trezcool/gradebook/core/assignment"
	"github.com/trezcool/gradebook/core/attendance"
	"github.com/trezcool/gradebook/core/grade"
)

type (
	// Stats summarizes the submissions of an assignment.
	Stats struct {
		SubmissionCount   int     `json:"submission_count"`
		AverageScore      float64 `json:"average_score"`
		AveragePercentage float64 `json:"average_percentage"`
		HighestScore      float64 `json:"highest_score"`
		LowestScore       float64 `json:"lowest_score"`
	}

	// Distribution counts grades per letter.
	// Orphaned counts the grades left out because their assignment could not be resolved.
	Distribution struct {
		A        int `json:"A"`
		B        int `json:"B"`
		C        int `json:"C"`
		D        int `json:"D"`
		F        int `json:"F"`
		Orphaned int `json:"orphaned"`
	}
)

// Total is the number of bucketed grades, orphans excluded.
func (d Distribution) Total() int {
	return d.A + d.B + d.C + d.D + d.F
}

func (d *Distribution) add(l Letter) {
	switch l {
	case A:
		d.A++
	case B:
		d.B++
	case C:
		d.C++
	case D:
		d.D++
	case F:
		d.F++
	}
}

// Round1 rounds x to one decimal place.
func Round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// IndexAssignments maps assignments by ID. The first occurrence of a duplicated ID wins.
func IndexAssignments(assignments []assignment.Assignment) map[int]assignment.Assignment {
	idx := make(map[int]assignment.Assignment, len(assignments))
	for _, a := range assignments {
		if _, ok := idx[a.ID]; !ok {
			idx[a.ID] = a
		}
	}
	return idx
}

// FindGrade returns the first grade of a student on an assignment, if any.
func FindGrade(grades []grade.Grade, studentID, assignmentID int) (grade.Grade, bool) {
	for _, g := range grades {
		if g.StudentID == studentID && g.AssignmentID == assignmentID {
			return g, true
		}
	}
	return grade.Grade{}, false
}

// SimpleAverage is the mean of the raw scores, not normalized by total points.
// It only makes sense when assignment data is unavailable.
func SimpleAverage(grades []grade.Grade) float64 {
	if len(grades) == 0 {
		return 0
	}
	var sum float64
	for _, g := range grades {
		sum += g.Score
	}
	return Round1(sum / float64(len(grades)))
}

// UnweightedPercentageAverage is the sum of the scores over the sum of the total points of their assignments.
// Orphaned grades still count in the scores sum but add nothing to the total points.
func UnweightedPercentageAverage(studentGrades []grade.Grade, assignments []assignment.Assignment) float64 {
	idx := IndexAssignments(assignments)

	var totalScore, totalPoints float64
	for _, g := range studentGrades {
		totalScore += g.Score
		if a, ok := idx[g.AssignmentID]; ok {
			totalPoints += a.TotalPoints
		}
	}
	if totalPoints <= 0 {
		return 0
	}
	return Round1(totalScore / totalPoints * 100)
}

// WeightedAverage averages the percentages of the grades, each scaled by the weight of its assignment.
// The result is normalized by the weights actually used, so it does not assume all weights sum to 100.
// Orphaned grades and assignments without weight are skipped.
func WeightedAverage(studentGrades []grade.Grade, assignments []assignment.Assignment) float64 {
	idx := IndexAssignments(assignments)

	var weightedSum, totalWeightUsed float64
	for _, g := range studentGrades {
		a, ok := idx[g.AssignmentID]
		if !ok || a.Weight == 0 || a.TotalPoints <= 0 {
			continue
		}
		w := a.Weight / 100
		weightedSum += (g.Score / a.TotalPoints * 100) * w
		totalWeightUsed += w
	}
	if totalWeightUsed == 0 {
		return 0
	}
	return Round1(weightedSum / totalWeightUsed)
}

// AttendanceRate is the share of the records of a student marked exactly Present.
// Late and Excused do not count as present.
func AttendanceRate(records []attendance.Record, studentID int) float64 {
	var present, total int
	for _, r := range records {
		if r.StudentID != studentID {
			continue
		}
		total++
		if r.Status == attendance.StatusPresent {
			present++
		}
	}
	return rate(present, total)
}

// OverallAttendanceRate is the share of all records marked exactly Present.
func OverallAttendanceRate(records []attendance.Record) float64 {
	var present int
	for _, r := range records {
		if r.Status == attendance.StatusPresent {
			present++
		}
	}
	return rate(present, len(records))
}

func rate(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return Round1(float64(n) / float64(total) * 100)
}

// AssignmentStatistics summarizes the grades submitted for asg.
// Every field is 0 when there is no submission.
func AssignmentStatistics(asg assignment.Assignment, grades []grade.Grade) Stats {
	var (
		stats      Stats
		totalScore float64
	)
	for _, g := range grades {
		if g.AssignmentID != asg.ID {
			continue
		}
		if stats.SubmissionCount == 0 || g.Score > stats.HighestScore {
			stats.HighestScore = g.Score
		}
		if stats.SubmissionCount == 0 || g.Score < stats.LowestScore {
			stats.LowestScore = g.Score
		}
		stats.SubmissionCount++
		totalScore += g.Score
	}
	if stats.SubmissionCount == 0 {
		return Stats{}
	}

	stats.AverageScore = Round1(totalScore / float64(stats.SubmissionCount))
	if asg.TotalPoints > 0 {
		stats.AveragePercentage = Round1(totalScore / (float64(stats.SubmissionCount) * asg.TotalPoints) * 100)
	}
	return stats
}

// GradeDistribution buckets grades by letter. Orphaned grades are only counted in Distribution.Orphaned.
func GradeDistribution(grades []grade.Grade, assignments []assignment.Assignment) Distribution {
	idx := IndexAssignments(assignments)

	var dist Distribution
	for _, g := range grades {
		a, ok := idx[g.AssignmentID]
		if !ok {
			dist.Orphaned++
			continue
		}
		if m := PercentageAndLetter(g.Score, a.TotalPoints); m.Valid {
			dist.add(m.Letter)
		}
	}
	return dist
}
