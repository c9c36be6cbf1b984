package aggregate

import (
	"github.com/trezcool/gradebook/core/assignment"
	"github.com/trezcool/gradebook/core/grade"
)

// Letter is a letter grade.
type Letter string

const (
	A Letter = "A"
	B Letter = "B"
	C Letter = "C"
	D Letter = "D"
	F Letter = "F"

	// NoMark stands for a missing grade.
	NoMark Letter = "-"
)

// lower bounds, inclusive
var thresholds = []struct {
	min    float64
	letter Letter
}{
	{90, A},
	{80, B},
	{70, C},
	{60, D},
}

// Mark is a score expressed as a percentage of the total points, and its letter.
// A Mark is not Valid when there is nothing to grade: its percentage is then meaningless.
type Mark struct {
	Percentage float64 `json:"percentage"`
	Letter     Letter  `json:"letter"`
	Valid      bool    `json:"valid"`
}

var noMark = Mark{Letter: NoMark}

// LetterFor maps a raw percentage to its letter.
func LetterFor(percentage float64) Letter {
	for _, t := range thresholds {
		if percentage >= t.min {
			return t.letter
		}
	}
	return F
}

// PercentageAndLetter marks score out of totalPoints.
// The letter is decided on the raw percentage; only the displayed percentage is rounded.
// A zero score is an F; a missing total yields the NoMark sentinel.
func PercentageAndLetter(score, totalPoints float64) Mark {
	if totalPoints <= 0 {
		return noMark
	}
	pct := score / totalPoints * 100
	return Mark{Percentage: Round1(pct), Letter: LetterFor(pct), Valid: true}
}

// MarkFor marks a possibly missing grade on asg.
func MarkFor(g *grade.Grade, asg assignment.Assignment) Mark {
	if g == nil {
		return noMark
	}
	return PercentageAndLetter(g.Score, asg.TotalPoints)
}
