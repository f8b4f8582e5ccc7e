package grading

import (
	"errors"
	"testing"

	"github.com/RubachokBoss/academic-records/internal/models"
)

func TestGradeOf(t *testing.T) {
	tests := []struct {
		name      string
		score     float64
		passMark  int
		wantGrade models.Grade
		wantPoint int
	}{
		{"top band", 100, 40, models.GradeA, 5},
		{"A lower bound", 70, 40, models.GradeA, 5},
		{"B", 69.5, 40, models.GradeB, 4},
		{"C lower bound", 50, 40, models.GradeC, 3},
		{"D", 45, 40, models.GradeD, 2},
		{"E lower bound", 40, 40, models.GradeE, 1},
		{"below bands", 39.99, 0, models.GradeF, 0},
		{"zero", 0, 0, models.GradeF, 0},
		{"pass mark 45 keeps C", 50, 45, models.GradeC, 3},
		{"pass mark 50 fails D band", 48, 50, models.GradeF, 0},
		{"pass mark above A band", 75, 80, models.GradeF, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grade, point, err := GradeOf(tt.score, tt.passMark)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if grade != tt.wantGrade || point != tt.wantPoint {
				t.Errorf("GradeOf(%v, %d) = %s/%d, want %s/%d",
					tt.score, tt.passMark, grade, point, tt.wantGrade, tt.wantPoint)
			}
		})
	}
}

func TestGradeOfRejectsOutOfRange(t *testing.T) {
	for _, score := range []float64{-0.5, 100.01, 150} {
		if _, _, err := GradeOf(score, 40); !errors.Is(err, ErrScoreOutOfRange) {
			t.Errorf("GradeOf(%v) error = %v, want ErrScoreOutOfRange", score, err)
		}
	}
}

func TestComputeResult(t *testing.T) {
	for score := 0.0; score <= 100; score += 0.5 {
		for _, unit := range []int{1, 2, 3, 4, 6} {
			for _, passMark := range []int{0, 40, 45, 50} {
				out, err := ComputeResult(score, unit, passMark)
				if err != nil {
					t.Fatalf("ComputeResult(%v, %d, %d): %v", score, unit, passMark, err)
				}
				if out.QualityPoints != out.GradePoint*unit {
					t.Fatalf("quality points %d != %d*%d", out.QualityPoints, out.GradePoint, unit)
				}
				below := score < float64(passMark)
				if out.IsCarryOver != below {
					t.Fatalf("score %v pass mark %d: carry over = %v", score, passMark, out.IsCarryOver)
				}
				if below && (out.Grade != models.GradeF || out.GradePoint != 0) {
					t.Fatalf("score %v below pass mark %d graded %s", score, passMark, out.Grade)
				}
			}
		}
	}
}

func TestComputeSemesterGPA(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		got, err := ComputeSemesterGPA(nil)
		if err != nil {
			t.Fatal(err)
		}
		if got != (SemesterTotals{}) {
			t.Errorf("got %+v, want zero totals", got)
		}
	})

	t.Run("weighted", func(t *testing.T) {
		got, err := ComputeSemesterGPA([]ResultInput{
			{Score: 70, CreditUnit: 3, PassMark: 40},
			{Score: 40, CreditUnit: 2, PassMark: 40},
		})
		if err != nil {
			t.Fatal(err)
		}
		want := SemesterTotals{GPA: 3.40, TotalUnits: 5, TotalPoints: 17}
		if got != want {
			t.Errorf("got %+v, want %+v", got, want)
		}
	})

	t.Run("rounds half up", func(t *testing.T) {
		// 5*1 + 4*1 + 4*1 = 13 points over 3 units = 4.333...
		got, err := ComputeSemesterGPA([]ResultInput{
			{Score: 70, CreditUnit: 1, PassMark: 40},
			{Score: 60, CreditUnit: 1, PassMark: 40},
			{Score: 60, CreditUnit: 1, PassMark: 40},
		})
		if err != nil {
			t.Fatal(err)
		}
		if got.GPA != 4.33 {
			t.Errorf("gpa = %v, want 4.33", got.GPA)
		}
	})

	t.Run("invalid score", func(t *testing.T) {
		_, err := ComputeSemesterGPA([]ResultInput{{Score: 101, CreditUnit: 3, PassMark: 40}})
		if !errors.Is(err, ErrScoreOutOfRange) {
			t.Errorf("error = %v, want ErrScoreOutOfRange", err)
		}
	})
}

func TestComputeCGPAOrderIndependent(t *testing.T) {
	a := []SemesterTotals{{TotalUnits: 18, TotalPoints: 72}, {TotalUnits: 20, TotalPoints: 61}}
	b := []SemesterTotals{{TotalUnits: 15, TotalPoints: 75}}

	ab := ComputeCGPA(append(append([]SemesterTotals{}, a...), b...))
	ba := ComputeCGPA(append(append([]SemesterTotals{}, b...), a...))
	if ab != ba {
		t.Fatalf("order changed result: %+v vs %+v", ab, ba)
	}

	ca, cb := ComputeCGPA(a), ComputeCGPA(b)
	if ab.CumulativeUnits != ca.CumulativeUnits+cb.CumulativeUnits ||
		ab.CumulativePoints != ca.CumulativePoints+cb.CumulativePoints {
		t.Errorf("union totals %+v do not equal parts %+v + %+v", ab, ca, cb)
	}
	if ab.CGPA != 3.92 {
		t.Errorf("cgpa = %v, want 3.92", ab.CGPA)
	}

	halves := map[[2]int]float64{
		{201, 200}: 1.01,
		{161, 40}:  4.03,
		{109, 40}:  2.73,
		{1, 3}:     0.33,
		{2, 3}:     0.67,
	}
	for in, want := range halves {
		if got := ComputeCGPA([]SemesterTotals{{TotalPoints: in[0], TotalUnits: in[1]}}).CGPA; got != want {
			t.Errorf("cgpa %d/%d = %v, want %v", in[0], in[1], got, want)
		}
	}

	if got := ComputeCGPA(nil); got != (Cumulative{}) {
		t.Errorf("empty cgpa = %+v", got)
	}
}

func TestClassOfDegree(t *testing.T) {
	tests := map[float64]string{
		5.00: "First Class Honours",
		4.50: "First Class Honours",
		4.49: "Second Class Upper Division",
		3.50: "Second Class Upper Division",
		2.40: "Second Class Lower Division",
		2.39: "Third Class",
		1.50: "Third Class",
		1.00: "Pass",
		0.99: "Fail",
		0:    "Fail",
	}
	for cgpa, want := range tests {
		if got := ClassOfDegree(cgpa); got != want {
			t.Errorf("ClassOfDegree(%v) = %q, want %q", cgpa, got, want)
		}
	}
}

func TestRound2(t *testing.T) {
	tests := map[float64]float64{
		3.4:    3.4,
		3.125:  3.13,
		1.005:  1.01,
		2.675:  2.68,
		2.3333: 2.33,
		4.6666: 4.67,
		0:      0,
	}
	for in, want := range tests {
		if got := Round2(in); got != want {
			t.Errorf("Round2(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestFormatters(t *testing.T) {
	if got := FormatLevel(models.Level300); got != "300 Level" {
		t.Errorf("FormatLevel = %q", got)
	}
	if got := FormatLevel(models.LevelHND1); got != "HND 1" {
		t.Errorf("FormatLevel = %q", got)
	}
	if got := FormatSemester(models.SemesterSecond); got != "Second Semester" {
		t.Errorf("FormatSemester = %q", got)
	}
}
