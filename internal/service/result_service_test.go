package service

import (
	"context"
	"errors"
	"testing"

	"github.com/RubachokBoss/academic-records/internal/models"
	"github.com/google/uuid"
)

func (f *fixture) addScoreRequest(course models.Course, value float64) *models.AddScoreRequest {
	return &models.AddScoreRequest{
		StudentID:    f.student.ID,
		CourseID:     course.ID,
		Score:        score(value),
		Level:        course.Level,
		Semester:     course.Semester,
		AcademicYear: session,
	}
}

func TestAddScoreRecalculatesGPA(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.results.AddScore(ctx, f.hod(), f.addScoreRequest(f.first[0], 70))
	if err != nil {
		t.Fatal(err)
	}
	if resp.Result.Grade != models.GradeA || resp.Result.QualityPoints != 15 {
		t.Errorf("result = %+v", resp.Result)
	}
	if resp.GPA != 5 || resp.CGPA != 5 {
		t.Errorf("gpa %v cgpa %v, want 5 and 5", resp.GPA, resp.CGPA)
	}

	// Re-entering the same course in the same session replaces the score.
	resp, err = f.results.AddScore(ctx, f.hod(), f.addScoreRequest(f.first[0], 39))
	if err != nil {
		t.Fatal(err)
	}
	if !resp.Result.IsCarryOver || resp.GPA != 0 {
		t.Errorf("resp = %+v", resp)
	}
	if len(f.store.results) != 1 {
		t.Errorf("stored results = %d, want 1", len(f.store.results))
	}
}

func TestAddScoreChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	foreign := f.store.addCourse("MTH101", 3, models.Level100, models.SemesterFirst, f.other)

	wrongLevel := f.addScoreRequest(f.first[0], 60)
	wrongLevel.Level = models.Level200

	wrongSemester := f.addScoreRequest(f.first[0], 60)
	wrongSemester.Semester = models.SemesterSecond

	unknownStudent := f.addScoreRequest(f.first[0], 60)
	unknownStudent.StudentID = uuid.New().String()

	unknownCourse := f.addScoreRequest(f.first[0], 60)
	unknownCourse.CourseID = "CSC101"

	tests := []struct {
		name    string
		actor   models.Actor
		req     *models.AddScoreRequest
		wantErr error
	}{
		{"dean cannot enter scores", deanOf(f.faculty), f.addScoreRequest(f.first[0], 60), ErrForbidden},
		{"other department hod", hodOf(f.other), f.addScoreRequest(f.first[0], 60), ErrForbidden},
		{"course of another department", f.hod(), f.addScoreRequest(foreign, 60), ErrForbidden},
		{"level mismatch", f.hod(), wrongLevel, ErrValidation},
		{"semester mismatch", f.hod(), wrongSemester, ErrValidation},
		{"score out of range", f.hod(), f.addScoreRequest(f.first[0], 101), ErrValidation},
		{"unknown student", f.hod(), unknownStudent, ErrNotFound},
		{"malformed course id", f.hod(), unknownCourse, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.results.AddScore(ctx, tt.actor, tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if len(f.store.results) != 0 {
		t.Errorf("rejected requests stored %d results", len(f.store.results))
	}
}

func TestDeleteScore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	kept, err := f.results.AddScore(ctx, f.hod(), f.addScoreRequest(f.first[0], 70))
	if err != nil {
		t.Fatal(err)
	}
	dropped, err := f.results.AddScore(ctx, f.hod(), f.addScoreRequest(f.first[1], 50))
	if err != nil {
		t.Fatal(err)
	}

	resp, err := f.results.DeleteScore(ctx, f.hod(), dropped.Result.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !resp.GPARecalculated {
		t.Error("gpaRecalculated = false while results remain")
	}
	if got := f.store.gpas[f.key(models.SemesterFirst)].GPA; got != 5 {
		t.Errorf("GPA after delete = %v, want 5", got)
	}

	resp, err = f.results.DeleteScore(ctx, f.hod(), kept.Result.ID)
	if err != nil {
		t.Fatal(err)
	}
	if resp.GPARecalculated {
		t.Error("gpaRecalculated = true for an emptied semester")
	}
	if len(f.store.gpas) != 0 {
		t.Errorf("stored GPA records = %d, want 0", len(f.store.gpas))
	}

	if _, err := f.results.DeleteScore(ctx, f.hod(), kept.Result.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v, want not found", err)
	}
}

func TestEnterScoresCollectsEntryErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	foreign := f.store.addCourse("MTH101", 3, models.Level100, models.SemesterFirst, f.other)

	resp, err := f.results.EnterScores(ctx, f.hod(), &models.EnterScoresRequest{
		Level:        models.Level100,
		Semester:     models.SemesterFirst,
		AcademicYear: session,
		Scores: []models.ScoreEntry{
			{StudentID: f.student.ID, CourseID: f.first[0].ID, Score: score(66)},
			{StudentID: f.student.ID, CourseID: f.first[1].ID, Score: score(71)},
			{StudentID: uuid.New().String(), CourseID: f.first[0].ID, Score: score(50)},
			{StudentID: f.student.ID, CourseID: foreign.ID, Score: score(50)},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.SuccessCount != 2 || resp.ErrorCount != 2 {
		t.Fatalf("success %d errors %d, want 2 and 2", resp.SuccessCount, resp.ErrorCount)
	}
	if resp.Errors[1].Error != "Course does not belong to this department" {
		t.Errorf("errors = %+v", resp.Errors)
	}

	// B on 3 units and A on 2 units: (12 + 10) / 5.
	if got := f.store.gpas[f.key(models.SemesterFirst)].GPA; got != 4.4 {
		t.Errorf("GPA = %v, want 4.4", got)
	}
}

func TestDepartmentResultsScope(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.results.AddScore(ctx, f.hod(), f.addScoreRequest(f.first[0], 70)); err != nil {
		t.Fatal(err)
	}

	// An HOD asking for another department still sees their own.
	results, err := f.results.DepartmentResults(ctx, f.hod(), f.other.ID, models.ResultFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Errorf("results = %d, want 1", len(results))
	}

	results, err = f.results.DepartmentResults(ctx, deanOf(f.faculty), f.other.ID, models.ResultFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("other department results = %d, want 0", len(results))
	}

	carry, err := f.results.CarryOvers(ctx, f.hod(), f.student.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(carry) != 0 {
		t.Errorf("carry-overs = %d, want 0", len(carry))
	}
}

func TestEnterScoresKeepsResultUnderCourseSemester(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.results.AddScore(ctx, f.hod(), f.addScoreRequest(f.first[0], 70)); err != nil {
		t.Fatal(err)
	}

	resp, err := f.results.EnterScores(ctx, f.hod(), &models.EnterScoresRequest{
		Level:        models.Level100,
		Semester:     models.SemesterSecond,
		AcademicYear: session,
		Scores: []models.ScoreEntry{
			{StudentID: f.student.ID, CourseID: f.first[0].ID, Score: score(45)},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.SuccessCount != 0 || resp.ErrorCount != 1 {
		t.Fatalf("success %d errors %d, want 0 and 1", resp.SuccessCount, resp.ErrorCount)
	}
	if want := "Course CSC101 is for FIRST semester, not SECOND"; resp.Errors[0].Error != want {
		t.Errorf("error = %q, want %q", resp.Errors[0].Error, want)
	}

	for _, r := range f.store.results {
		if r.Semester != models.SemesterFirst || r.Score != 70 {
			t.Errorf("stored result = %+v", r)
		}
	}
	if _, ok := f.store.gpas[f.key(models.SemesterSecond)]; ok {
		t.Error("second semester GPA stored without results")
	}
	if got := f.store.gpas[f.key(models.SemesterFirst)]; got.TotalUnits != 3 || got.GPA != 5 {
		t.Errorf("first semester GPA = %+v", got)
	}
}
