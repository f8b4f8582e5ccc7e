// Package grading maps scores to grades and aggregates graded results into
// semester and cumulative grade point averages.
package grading

import (
	"errors"
	"fmt"
	"math"

	"github.com/RubachokBoss/academic-records/internal/models"
)

var ErrScoreOutOfRange = errors.New("score must be between 0 and 100")

// Outcome is a single graded course result.
type Outcome struct {
	Score         float64      `json:"score"`
	Grade         models.Grade `json:"grade"`
	GradePoint    int          `json:"gradePoint"`
	QualityPoints int          `json:"qualityPoints"`
	IsCarryOver   bool         `json:"isCarryOver"`
}

type ResultInput struct {
	Score      float64
	CreditUnit int
	PassMark   int
}

type SemesterTotals struct {
	GPA         float64 `json:"gpa"`
	TotalUnits  int     `json:"totalUnits"`
	TotalPoints int     `json:"totalPoints"`
}

type Cumulative struct {
	CGPA             float64 `json:"cgpa"`
	CumulativeUnits  int     `json:"cumulativeUnits"`
	CumulativePoints int     `json:"cumulativePoints"`
}

// GradeOf checks the pass mark before the numeric bands, so a score in the
// D band still fails when the department pass mark is higher.
func GradeOf(score float64, passMark int) (models.Grade, int, error) {
	if math.IsNaN(score) || score < 0 || score > 100 {
		return "", 0, fmt.Errorf("%w: got %v", ErrScoreOutOfRange, score)
	}

	if score < float64(passMark) {
		return models.GradeF, 0, nil
	}

	switch {
	case score >= 70:
		return models.GradeA, 5, nil
	case score >= 60:
		return models.GradeB, 4, nil
	case score >= 50:
		return models.GradeC, 3, nil
	case score >= 45:
		return models.GradeD, 2, nil
	case score >= 40:
		return models.GradeE, 1, nil
	default:
		return models.GradeF, 0, nil
	}
}

func ComputeResult(score float64, creditUnit, passMark int) (Outcome, error) {
	grade, point, err := GradeOf(score, passMark)
	if err != nil {
		return Outcome{}, err
	}

	return Outcome{
		Score:         score,
		Grade:         grade,
		GradePoint:    point,
		QualityPoints: point * creditUnit,
		IsCarryOver:   score < float64(passMark),
	}, nil
}

// ComputeSemesterGPA grades every result and returns the credit weighted
// average. An empty set yields zero totals.
func ComputeSemesterGPA(results []ResultInput) (SemesterTotals, error) {
	var totals SemesterTotals

	for i, r := range results {
		outcome, err := ComputeResult(r.Score, r.CreditUnit, r.PassMark)
		if err != nil {
			return SemesterTotals{}, fmt.Errorf("result %d: %w", i, err)
		}
		totals.TotalUnits += r.CreditUnit
		totals.TotalPoints += outcome.QualityPoints
	}

	totals.GPA = ratio(totals.TotalPoints, totals.TotalUnits)
	return totals, nil
}

// ComputeCGPA re-sums every semester record. The GPA field of the inputs is
// ignored; only the integer totals contribute.
func ComputeCGPA(semesters []SemesterTotals) Cumulative {
	var c Cumulative
	for _, s := range semesters {
		c.CumulativeUnits += s.TotalUnits
		c.CumulativePoints += s.TotalPoints
	}
	c.CGPA = ratio(c.CumulativePoints, c.CumulativeUnits)
	return c
}

func ClassOfDegree(cgpa float64) string {
	switch {
	case cgpa >= 4.50:
		return "First Class Honours"
	case cgpa >= 3.50:
		return "Second Class Upper Division"
	case cgpa >= 2.40:
		return "Second Class Lower Division"
	case cgpa >= 1.50:
		return "Third Class"
	case cgpa >= 1.00:
		return "Pass"
	default:
		return "Fail"
	}
}

// Round2 rounds half-up to two decimal places. The epsilon absorbs binary
// representation error so values such as 1.005 round up.
func Round2(v float64) float64 {
	return math.Floor(v*100+0.5+1e-9) / 100
}

// ratio is points/units rounded half-up to hundredths in integer arithmetic.
func ratio(points, units int) float64 {
	if units <= 0 {
		return 0
	}
	hundredths := (points*200 + units) / (2 * units)
	return float64(hundredths) / 100
}

var levelLabels = map[models.Level]string{
	models.LevelND1:  "ND 1",
	models.LevelND2:  "ND 2",
	models.LevelHND1: "HND 1",
	models.LevelHND2: "HND 2",
	models.Level100:  "100 Level",
	models.Level200:  "200 Level",
	models.Level300:  "300 Level",
	models.Level400:  "400 Level",
	models.Level500:  "500 Level",
}

func FormatLevel(level models.Level) string {
	if label, ok := levelLabels[level]; ok {
		return label
	}
	return string(level)
}

func FormatSemester(semester models.Semester) string {
	if semester == models.SemesterFirst {
		return "First Semester"
	}
	return "Second Semester"
}
