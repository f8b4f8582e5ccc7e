package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/RubachokBoss/academic-records/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const session = "2023/2024"

type fixture struct {
	store     *store
	faculty   models.Faculty
	dept      models.Department
	other     models.Department
	student   models.Student
	first     []models.Course
	second    models.Course
	publisher *recordingPublisher
	cache     *countingCache
	archive   *memoryArchive
	gpa       GPAService
	results   ResultService
}

// newFixture seeds one faculty with two departments. CSC has a student at
// 100 level with two first semester courses (3 and 2 units) and one second
// semester course (4 units).
func newFixture(t *testing.T) *fixture {
	t.Helper()

	s := newStore()
	f := &fixture{store: s, publisher: &recordingPublisher{}, cache: &countingCache{}, archive: &memoryArchive{}}
	f.faculty = s.addFaculty("SCI")
	f.dept = s.addDepartment("CSC", 40, f.faculty.ID)
	f.other = s.addDepartment("MTH", 45, f.faculty.ID)
	f.student = s.addStudent("CSC/2023/001", f.dept, models.Level100)
	f.first = []models.Course{
		s.addCourse("CSC101", 3, models.Level100, models.SemesterFirst, f.dept),
		s.addCourse("CSC103", 2, models.Level100, models.SemesterFirst, f.dept),
	}
	f.second = s.addCourse("CSC102", 4, models.Level100, models.SemesterSecond, f.dept)

	log := zerolog.Nop()
	f.gpa = NewGPAService(fakeResultRepo{s}, fakeGPARepo{s}, fakeStudentRepo{s}, fakeDepartmentRepo{s}, f.cache, f.publisher, 2, log)
	f.results = NewResultService(fakeResultRepo{s}, fakeStudentRepo{s}, fakeCourseRepo{s}, fakeDepartmentRepo{s}, fakeGPARepo{s}, f.gpa, log)
	return f
}

func (f *fixture) hod() models.Actor { return hodOf(f.dept) }

func (f *fixture) key(semester models.Semester) models.SemesterKey {
	return models.SemesterKey{StudentID: f.student.ID, Level: models.Level100, Semester: semester, AcademicYear: session}
}

func (f *fixture) putResult(t *testing.T, course models.Course, value float64) models.Result {
	t.Helper()
	r := models.Result{
		ID:           uuid.New().String(),
		StudentID:    f.student.ID,
		CourseID:     course.ID,
		Score:        value,
		Level:        course.Level,
		Semester:     course.Semester,
		AcademicYear: session,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if _, err := (fakeResultRepo{f.store}).Upsert(context.Background(), &r); err != nil {
		t.Fatal(err)
	}
	return r
}

func TestOnResultsChangedStoresSemesterGPA(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// 75 on 3 units is A (15 points), 55 on 2 units is C (6 points).
	f.putResult(t, f.first[0], 75)
	f.putResult(t, f.first[1], 55)

	outcome, err := f.gpa.OnResultsChanged(ctx, f.key(models.SemesterFirst))
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Removed || outcome.SemesterGPA == nil {
		t.Fatalf("outcome = %+v, want stored record", outcome)
	}
	if outcome.SemesterGPA.GPA != 4.2 || outcome.SemesterGPA.TotalUnits != 5 || outcome.SemesterGPA.TotalPoints != 21 {
		t.Errorf("semester = %+v", outcome.SemesterGPA)
	}
	if outcome.CGPA != 4.2 {
		t.Errorf("CGPA = %v, want 4.2", outcome.CGPA)
	}

	// A failed 4 unit course in the second semester pulls the CGPA to 21/9.
	f.putResult(t, f.second, 35)
	outcome, err = f.gpa.OnResultsChanged(ctx, f.key(models.SemesterSecond))
	if err != nil {
		t.Fatal(err)
	}
	if outcome.SemesterGPA.GPA != 0 || outcome.CGPA != 2.33 {
		t.Errorf("second semester GPA %v CGPA %v, want 0 and 2.33", outcome.SemesterGPA.GPA, outcome.CGPA)
	}
	if outcome.SemesterGPA.CumulativeUnits != 9 {
		t.Errorf("cumulative units = %d, want 9", outcome.SemesterGPA.CumulativeUnits)
	}

	// Recomputing the first semester must not count it twice.
	outcome, err = f.gpa.OnResultsChanged(ctx, f.key(models.SemesterFirst))
	if err != nil {
		t.Fatal(err)
	}
	if outcome.CGPA != 2.33 {
		t.Errorf("CGPA after recompute = %v, want 2.33", outcome.CGPA)
	}
	if len(f.store.gpas) != 2 {
		t.Errorf("stored records = %d, want 2", len(f.store.gpas))
	}

	if len(f.publisher.gpa) != 3 {
		t.Errorf("published %d events, want 3", len(f.publisher.gpa))
	}
	if len(f.cache.deleted) != 3 || f.cache.deleted[0] != historyCacheKey(f.student.ID) {
		t.Errorf("cache invalidations = %v", f.cache.deleted)
	}
}

func TestOnResultsChangedRemovesEmptySemester(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.putResult(t, f.first[0], 75)
	r := f.putResult(t, f.second, 65)
	for _, sem := range models.Semesters {
		if _, err := f.gpa.OnResultsChanged(ctx, f.key(sem)); err != nil {
			t.Fatal(err)
		}
	}

	delete(f.store.results, r.ID)
	outcome, err := f.gpa.OnResultsChanged(ctx, f.key(models.SemesterSecond))
	if err != nil {
		t.Fatal(err)
	}
	if !outcome.Removed || outcome.SemesterGPA != nil {
		t.Fatalf("outcome = %+v, want removed", outcome)
	}
	if outcome.CGPA != 5 {
		t.Errorf("CGPA = %v, want 5 from the remaining semester", outcome.CGPA)
	}
	if _, ok := f.store.gpas[f.key(models.SemesterSecond)]; ok {
		t.Error("second semester record still stored")
	}

	last := f.publisher.gpa[len(f.publisher.gpa)-1]
	if !last.Removed || last.Semester != models.SemesterSecond {
		t.Errorf("last event = %+v", last)
	}
}

func TestSemesterGPAComputedWhenNotStored(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.gpa.SemesterGPA(ctx, f.hod(), f.key(models.SemesterFirst)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}

	f.putResult(t, f.first[0], 62)
	view, err := f.gpa.SemesterGPA(ctx, f.hod(), f.key(models.SemesterFirst))
	if err != nil {
		t.Fatal(err)
	}
	if !view.Calculated || view.GPA != 4 {
		t.Errorf("view = %+v", view)
	}
	if len(f.store.gpas) != 0 {
		t.Error("read must not persist a record")
	}
}

func TestRecalculateDepartment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.putResult(t, f.first[0], 80)
	peer := f.store.addStudent("CSC/2023/002", f.dept, models.Level100)
	peerResult := uuid.New().String()
	f.store.results[peerResult] = models.Result{
		ID: peerResult, StudentID: peer.ID, CourseID: f.first[1].ID, Score: 48,
		Level: models.Level100, Semester: models.SemesterFirst, AcademicYear: session,
	}

	resp, err := f.gpa.RecalculateDepartment(ctx, f.hod(), &models.CalculateDepartmentGPARequest{
		Level: models.Level100, Semester: models.SemesterFirst, AcademicYear: session,
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Calculated != 2 || resp.Errors != 0 {
		t.Fatalf("resp = %+v", resp)
	}
	if len(f.store.gpas) != 2 {
		t.Errorf("stored records = %d, want 2", len(f.store.gpas))
	}

	if _, err := f.gpa.RecalculateDepartment(ctx, deanOf(f.faculty), &models.CalculateDepartmentGPARequest{
		DepartmentID: f.dept.ID, Level: models.Level100, Semester: models.SemesterFirst, AcademicYear: session,
	}); !errors.Is(err, ErrForbidden) {
		t.Errorf("dean err = %v, want forbidden", err)
	}
}

func TestHistoryScopes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.putResult(t, f.first[0], 72)
	if _, err := f.gpa.OnResultsChanged(ctx, f.key(models.SemesterFirst)); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		actor   models.Actor
		wantErr error
	}{
		{"own hod", f.hod(), nil},
		{"dean of faculty", deanOf(f.faculty), nil},
		{"other hod", hodOf(f.other), ErrForbidden},
		{"dean of other faculty", deanOf(models.Faculty{ID: uuid.New().String()}), ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			history, err := f.gpa.History(ctx, tt.actor, f.student.ID)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if history.CGPA != 5 || history.ClassOfDegree != "First Class Honours" {
				t.Errorf("history = %+v", history)
			}
		})
	}

	if _, err := f.gpa.History(ctx, f.hod(), "not-a-uuid"); !errors.Is(err, ErrNotFound) {
		t.Errorf("malformed id err = %v, want not found", err)
	}
}

func TestSummarizeGPAs(t *testing.T) {
	stats := summarizeGPAs(nil)
	if stats.Count != 0 || stats.HighestGPA != nil || stats.AverageGPA != nil {
		t.Errorf("empty stats = %+v", stats)
	}

	gpas := []models.SemesterGPAWithStudent{
		{SemesterGPA: models.SemesterGPA{StudentID: "a", GPA: 4.6}, MatricNumber: "A"},
		{SemesterGPA: models.SemesterGPA{StudentID: "b", GPA: 3.1}, MatricNumber: "B"},
		{SemesterGPA: models.SemesterGPA{StudentID: "c", GPA: 0.5}, MatricNumber: "C"},
	}
	stats = summarizeGPAs(gpas)
	if stats.HighestGPA.Value != 4.6 || stats.LowestGPA.Student.MatricNumber != "C" {
		t.Errorf("extremes = %+v %+v", stats.HighestGPA, stats.LowestGPA)
	}
	if *stats.AverageGPA != 2.73 {
		t.Errorf("average = %v, want 2.73", *stats.AverageGPA)
	}
	want := models.GPADistribution{FirstClass: 1, SecondLower: 1, Fail: 1}
	if *stats.Distribution != want {
		t.Errorf("distribution = %+v", *stats.Distribution)
	}
}
