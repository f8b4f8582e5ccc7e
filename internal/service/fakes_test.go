package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/RubachokBoss/academic-records/internal/models"
	"github.com/RubachokBoss/academic-records/internal/repository"
	"github.com/google/uuid"
)

// store is an in-memory stand-in for the database shared by the fake
// repositories below.
type store struct {
	mu          sync.Mutex
	faculties   map[string]models.Faculty
	departments map[string]models.Department
	students    map[string]models.Student
	courses     map[string]models.Course
	results     map[string]models.Result
	gpas        map[models.SemesterKey]models.SemesterGPA
	users       map[string]models.User
}

func newStore() *store {
	return &store{
		faculties:   make(map[string]models.Faculty),
		departments: make(map[string]models.Department),
		students:    make(map[string]models.Student),
		courses:     make(map[string]models.Course),
		results:     make(map[string]models.Result),
		gpas:        make(map[models.SemesterKey]models.SemesterGPA),
		users:       make(map[string]models.User),
	}
}

func (s *store) addFaculty(code string) models.Faculty {
	f := models.Faculty{ID: uuid.New().String(), Name: code + " Faculty", Code: code}
	s.faculties[f.ID] = f
	return f
}

func (s *store) addDepartment(code string, passMark int, facultyID string) models.Department {
	d := models.Department{ID: uuid.New().String(), Name: code + " Department", Code: code, PassMark: passMark, FacultyID: facultyID}
	s.departments[d.ID] = d
	return d
}

func (s *store) addStudent(matric string, dept models.Department, level models.Level) models.Student {
	st := models.Student{
		ID:            uuid.New().String(),
		MatricNumber:  matric,
		FirstName:     "Ada",
		LastName:      "Obi",
		CurrentLevel:  level,
		AdmissionYear: 2023,
		DepartmentID:  dept.ID,
		IsActive:      true,
	}
	s.students[st.ID] = st
	return st
}

func (s *store) addCourse(code string, units int, level models.Level, semester models.Semester, dept models.Department) models.Course {
	c := models.Course{
		ID:           uuid.New().String(),
		Code:         code,
		Title:        code + " title",
		CreditUnit:   units,
		Level:        level,
		Semester:     semester,
		DepartmentID: dept.ID,
	}
	s.courses[c.ID] = c
	return c
}

func (s *store) studentWithDepartment(st models.Student) models.StudentWithDepartment {
	d := s.departments[st.DepartmentID]
	return models.StudentWithDepartment{
		Student:        st,
		DepartmentName: d.Name,
		DepartmentCode: d.Code,
		PassMark:       d.PassMark,
		FacultyID:      d.FacultyID,
	}
}

func (s *store) resultWithCourse(r models.Result) models.ResultWithCourse {
	c := s.courses[r.CourseID]
	st := s.students[r.StudentID]
	return models.ResultWithCourse{
		Result:       r,
		CourseCode:   c.Code,
		CourseTitle:  c.Title,
		CreditUnit:   c.CreditUnit,
		MatricNumber: st.MatricNumber,
		StudentName:  st.FirstName + " " + st.LastName,
	}
}

type fakeStudentRepo struct{ *store }

func (r fakeStudentRepo) Create(_ context.Context, student *models.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, st := range r.students {
		if strings.EqualFold(st.MatricNumber, student.MatricNumber) {
			return repository.ErrDuplicate
		}
	}
	r.students[student.ID] = *student
	return nil
}

func (r fakeStudentRepo) CreateBatch(ctx context.Context, students []models.Student, _ int) (int, error) {
	for i := range students {
		if err := r.Create(ctx, &students[i]); err != nil {
			return 0, err
		}
	}
	return len(students), nil
}

func (r fakeStudentRepo) GetByID(_ context.Context, id string) (*models.StudentWithDepartment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.students[id]
	if !ok {
		return nil, nil
	}
	out := r.studentWithDepartment(st)
	return &out, nil
}

func (r fakeStudentRepo) GetByMatric(_ context.Context, matric string) (*models.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, st := range r.students {
		if strings.EqualFold(st.MatricNumber, matric) {
			out := st
			return &out, nil
		}
	}
	return nil, nil
}

func (r fakeStudentRepo) GetByMatrics(_ context.Context, matrics []string) ([]models.StudentWithDepartment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.StudentWithDepartment
	for _, st := range r.students {
		for _, m := range matrics {
			if strings.EqualFold(st.MatricNumber, m) {
				out = append(out, r.studentWithDepartment(st))
				break
			}
		}
	}
	return out, nil
}

func (r fakeStudentRepo) List(_ context.Context, filter models.StudentFilter) ([]models.StudentWithDepartment, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.StudentWithDepartment
	for _, st := range r.students {
		sw := r.studentWithDepartment(st)
		if filter.DepartmentID != "" && st.DepartmentID != filter.DepartmentID {
			continue
		}
		if filter.FacultyID != "" && sw.FacultyID != filter.FacultyID {
			continue
		}
		if filter.Level != "" && st.CurrentLevel != filter.Level {
			continue
		}
		out = append(out, sw)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MatricNumber < out[j].MatricNumber })
	return out, len(out), nil
}

func (r fakeStudentRepo) ListIDsWithResults(_ context.Context, departmentID string, level models.Level, semester models.Semester, academicYear string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]bool)
	var ids []string
	for _, res := range r.results {
		if res.Level != level || res.Semester != semester || res.AcademicYear != academicYear {
			continue
		}
		if r.students[res.StudentID].DepartmentID != departmentID || seen[res.StudentID] {
			continue
		}
		seen[res.StudentID] = true
		ids = append(ids, res.StudentID)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r fakeStudentRepo) Update(_ context.Context, student *models.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.students[student.ID] = *student
	return nil
}

func (r fakeStudentRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.students, id)
	return nil
}

type fakeCourseRepo struct{ *store }

func (r fakeCourseRepo) Create(_ context.Context, course *models.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.courses[course.ID] = *course
	return nil
}

func (r fakeCourseRepo) GetByID(_ context.Context, id string) (*models.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.courses[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r fakeCourseRepo) GetByCode(_ context.Context, departmentID, code string) (*models.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.courses {
		if c.DepartmentID == departmentID && strings.EqualFold(c.Code, code) {
			out := c
			return &out, nil
		}
	}
	return nil, nil
}

func (r fakeCourseRepo) List(_ context.Context, filter models.CourseFilter) ([]models.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Course
	for _, c := range r.courses {
		if filter.DepartmentID != "" && c.DepartmentID != filter.DepartmentID {
			continue
		}
		if filter.Level != "" && c.Level != filter.Level {
			continue
		}
		if filter.Semester != "" && c.Semester != filter.Semester {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (r fakeCourseRepo) ListByDepartments(_ context.Context, departmentIDs []string) ([]models.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Course
	for _, c := range r.courses {
		for _, id := range departmentIDs {
			if c.DepartmentID == id {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

func (r fakeCourseRepo) Update(_ context.Context, course *models.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.courses[course.ID] = *course
	return nil
}

func (r fakeCourseRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.courses, id)
	return nil
}

func (r fakeCourseRepo) HasResults(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, res := range r.results {
		if res.CourseID == id {
			return true, nil
		}
	}
	return false, nil
}

type fakeDepartmentRepo struct{ *store }

func (r fakeDepartmentRepo) Create(_ context.Context, d *models.Department) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.departments[d.ID] = *d
	return nil
}

func (r fakeDepartmentRepo) withStats(d models.Department) models.DepartmentWithStats {
	f := r.faculties[d.FacultyID]
	return models.DepartmentWithStats{Department: d, FacultyName: f.Name, FacultyCode: f.Code}
}

func (r fakeDepartmentRepo) GetByID(_ context.Context, id string) (*models.DepartmentWithStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.departments[id]
	if !ok {
		return nil, nil
	}
	out := r.withStats(d)
	return &out, nil
}

func (r fakeDepartmentRepo) GetByCode(_ context.Context, code string) (*models.Department, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.departments {
		if strings.EqualFold(d.Code, code) {
			out := d
			return &out, nil
		}
	}
	return nil, nil
}

func (r fakeDepartmentRepo) List(_ context.Context, facultyID string) ([]models.DepartmentWithStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.DepartmentWithStats
	for _, d := range r.departments {
		if facultyID == "" || d.FacultyID == facultyID {
			out = append(out, r.withStats(d))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

type fakeResultRepo struct{ *store }

func (r fakeResultRepo) Upsert(_ context.Context, result *models.Result) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.upsertLocked(result), nil
}

func (r fakeResultRepo) upsertLocked(result *models.Result) bool {
	for id, existing := range r.results {
		if existing.StudentID == result.StudentID && existing.CourseID == result.CourseID && existing.AcademicYear == result.AcademicYear {
			result.ID = id
			result.CreatedAt = existing.CreatedAt
			result.Level = existing.Level
			result.Semester = existing.Semester
			r.results[id] = *result
			return false
		}
	}
	r.results[result.ID] = *result
	return true
}

func (r fakeResultRepo) UpsertBatch(_ context.Context, results []models.Result, _ int) (int, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var inserted, updated int
	for i := range results {
		if r.upsertLocked(&results[i]) {
			inserted++
		} else {
			updated++
		}
	}
	return inserted, updated, nil
}

func (r fakeResultRepo) GetByID(_ context.Context, id string) (*models.ResultWithCourse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.results[id]
	if !ok {
		return nil, nil
	}
	out := r.resultWithCourse(res)
	return &out, nil
}

func (r fakeResultRepo) Update(_ context.Context, result *models.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results[result.ID] = *result
	return nil
}

func (r fakeResultRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.results, id)
	return nil
}

func (r fakeResultRepo) List(_ context.Context, filter models.ResultFilter) ([]models.ResultWithCourse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ResultWithCourse
	for _, res := range r.results {
		if filter.StudentID != "" && res.StudentID != filter.StudentID {
			continue
		}
		if filter.DepartmentID != "" && r.students[res.StudentID].DepartmentID != filter.DepartmentID {
			continue
		}
		if filter.Level != "" && res.Level != filter.Level {
			continue
		}
		if filter.Semester != "" && res.Semester != filter.Semester {
			continue
		}
		if filter.AcademicYear != "" && res.AcademicYear != filter.AcademicYear {
			continue
		}
		if filter.CarryOver && !res.IsCarryOver {
			continue
		}
		out = append(out, r.resultWithCourse(res))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MatricNumber != out[j].MatricNumber {
			return out[i].MatricNumber < out[j].MatricNumber
		}
		return out[i].CourseCode < out[j].CourseCode
	})
	return out, nil
}

func (r fakeResultRepo) GradingRows(_ context.Context, key models.SemesterKey) ([]models.GradingRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var rows []models.GradingRow
	for _, res := range r.results {
		if res.Key() != key {
			continue
		}
		st := r.students[res.StudentID]
		rows = append(rows, models.GradingRow{
			ResultID:   res.ID,
			Score:      res.Score,
			CreditUnit: r.courses[res.CourseID].CreditUnit,
			PassMark:   r.departments[st.DepartmentID].PassMark,
		})
	}
	return rows, nil
}

func (r fakeResultRepo) CountCarryOvers(_ context.Context, departmentID, academicYear string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, res := range r.results {
		if res.IsCarryOver && res.AcademicYear == academicYear && r.students[res.StudentID].DepartmentID == departmentID {
			n++
		}
	}
	return n, nil
}

type fakeGPARepo struct{ *store }

func (r fakeGPARepo) Upsert(_ context.Context, gpa *models.SemesterGPA) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.gpas[gpa.Key()]; ok {
		gpa.ID = existing.ID
		gpa.CreatedAt = existing.CreatedAt
	}
	r.gpas[gpa.Key()] = *gpa
	return nil
}

func (r fakeGPARepo) DeleteByKey(_ context.Context, key models.SemesterKey) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.gpas[key]
	delete(r.gpas, key)
	return ok, nil
}

func (r fakeGPARepo) GetByKey(_ context.Context, key models.SemesterKey) (*models.SemesterGPA, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.gpas[key]
	if !ok {
		return nil, nil
	}
	return &g, nil
}

func (r fakeGPARepo) ListByStudent(_ context.Context, studentID string) ([]models.SemesterGPA, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.SemesterGPA
	for _, g := range r.gpas {
		if g.StudentID == studentID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AcademicYear != out[j].AcademicYear {
			return out[i].AcademicYear < out[j].AcademicYear
		}
		return out[i].Semester < out[j].Semester
	})
	return out, nil
}

func (r fakeGPARepo) List(_ context.Context, filter models.GPAFilter) ([]models.SemesterGPAWithStudent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.SemesterGPAWithStudent
	for _, g := range r.gpas {
		st := r.students[g.StudentID]
		if filter.DepartmentID != "" && st.DepartmentID != filter.DepartmentID {
			continue
		}
		if filter.Level != "" && g.Level != filter.Level {
			continue
		}
		if filter.Semester != "" && g.Semester != filter.Semester {
			continue
		}
		if filter.AcademicYear != "" && g.AcademicYear != filter.AcademicYear {
			continue
		}
		out = append(out, models.SemesterGPAWithStudent{
			SemesterGPA:  g,
			MatricNumber: st.MatricNumber,
			FirstName:    st.FirstName,
			LastName:     st.LastName,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].GPA != out[j].GPA {
			return out[i].GPA > out[j].GPA
		}
		return out[i].MatricNumber < out[j].MatricNumber
	})
	return out, nil
}

type fakeFacultyRepo struct{ *store }

func (r fakeFacultyRepo) Create(_ context.Context, f *models.Faculty) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.faculties[f.ID] = *f
	return nil
}

func (r fakeFacultyRepo) GetByID(_ context.Context, id string) (*models.FacultyWithStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.faculties[id]
	if !ok {
		return nil, nil
	}
	return &models.FacultyWithStats{Faculty: f}, nil
}

func (r fakeFacultyRepo) GetByCode(_ context.Context, code string) (*models.Faculty, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.faculties {
		if strings.EqualFold(f.Code, code) {
			out := f
			return &out, nil
		}
	}
	return nil, nil
}

func (r fakeFacultyRepo) List(_ context.Context) ([]models.FacultyWithStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.FacultyWithStats
	for _, f := range r.faculties {
		out = append(out, models.FacultyWithStats{Faculty: f})
	}
	return out, nil
}

type fakeUserRepo struct{ *store }

func (r fakeUserRepo) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return repository.ErrDuplicate
		}
	}
	r.users[u.ID] = *u
	return nil
}

func (r fakeUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			out := u
			return &out, nil
		}
	}
	return nil, nil
}

func (r fakeUserRepo) UpdatePassword(_ context.Context, id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.users[id]
	u.PasswordHash = hash
	r.users[id] = u
	return nil
}

func (r fakeUserRepo) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.users[id]
	u.LastLogin = &at
	r.users[id] = u
	return nil
}

// recordingPublisher keeps every event it was asked to publish.
type recordingPublisher struct {
	mu      sync.Mutex
	gpa     []models.GPARecalculatedEvent
	imports []models.ImportCompletedEvent
}

func (p *recordingPublisher) PublishGPARecalculated(_ context.Context, e *models.GPARecalculatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gpa = append(p.gpa, *e)
	return nil
}

func (p *recordingPublisher) PublishImportCompleted(_ context.Context, e *models.ImportCompletedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.imports = append(p.imports, *e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type memoryArchive struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (a *memoryArchive) Put(_ context.Context, key string, data []byte, _ string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.objects == nil {
		a.objects = make(map[string][]byte)
	}
	a.objects[key] = data
	return nil
}

// countingCache records invalidations and otherwise never hits.
type countingCache struct {
	mu      sync.Mutex
	deleted []string
}

func (c *countingCache) Get(context.Context, string, interface{}) (bool, error) { return false, nil }
func (c *countingCache) Set(context.Context, string, interface{}) error         { return nil }
func (c *countingCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, keys...)
	return nil
}

func hodOf(d models.Department) models.Actor {
	return models.Actor{UserID: uuid.New().String(), Email: "hod@example.edu", Role: models.RoleHOD, DepartmentID: d.ID, FacultyID: d.FacultyID}
}

func deanOf(f models.Faculty) models.Actor {
	return models.Actor{UserID: uuid.New().String(), Email: "dean@example.edu", Role: models.RoleDEAN, FacultyID: f.ID}
}

func score(v float64) *float64 { return &v }
