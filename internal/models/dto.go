package models

// Data Transfer Objects

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	User  UserProfile `json:"user"`
	Token string      `json:"token"`
}

type RegisterRequest struct {
	Email        string   `json:"email" validate:"required,email,max=255"`
	Password     string   `json:"password" validate:"required,min=6,max=72"`
	FirstName    string   `json:"firstName" validate:"required,min=1,max=100"`
	LastName     string   `json:"lastName" validate:"required,min=1,max=100"`
	Role         UserRole `json:"role" validate:"required,oneof=HOD DEAN"`
	DepartmentID string   `json:"departmentId" validate:"omitempty,uuid"`
	FacultyID    string   `json:"facultyId" validate:"omitempty,uuid"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,max=72"`
}

type CreateStudentRequest struct {
	MatricNumber  string `json:"matricNumber" validate:"required,max=50"`
	FirstName     string `json:"firstName" validate:"required,max=100"`
	LastName      string `json:"lastName" validate:"required,max=100"`
	MiddleName    string `json:"middleName" validate:"max=100"`
	Email         string `json:"email" validate:"omitempty,email,max=255"`
	Phone         string `json:"phone" validate:"max=30"`
	CurrentLevel  Level  `json:"currentLevel" validate:"required,level"`
	AdmissionYear int    `json:"admissionYear" validate:"required,min=1990"`
	DepartmentID  string `json:"departmentId" validate:"required,uuid"`
}

type UpdateStudentRequest struct {
	MatricNumber  *string `json:"matricNumber" validate:"omitempty,min=1,max=50"`
	FirstName     *string `json:"firstName" validate:"omitempty,min=1,max=100"`
	LastName      *string `json:"lastName" validate:"omitempty,min=1,max=100"`
	MiddleName    *string `json:"middleName" validate:"omitempty,max=100"`
	Email         *string `json:"email" validate:"omitempty,email,max=255"`
	Phone         *string `json:"phone" validate:"omitempty,max=30"`
	CurrentLevel  *Level  `json:"currentLevel" validate:"omitempty,level"`
	AdmissionYear *int    `json:"admissionYear" validate:"omitempty,min=1990"`
	IsActive      *bool   `json:"isActive"`
}

type CreateCourseRequest struct {
	Code         string   `json:"code" validate:"required,max=20"`
	Title        string   `json:"title" validate:"required,max=255"`
	CreditUnit   int      `json:"creditUnit" validate:"required,min=1,max=30"`
	Level        Level    `json:"level" validate:"required,level"`
	Semester     Semester `json:"semester" validate:"required,semester"`
	DepartmentID string   `json:"departmentId" validate:"omitempty,uuid"`
}

type UpdateCourseRequest struct {
	Code       *string   `json:"code" validate:"omitempty,min=1,max=20"`
	Title      *string   `json:"title" validate:"omitempty,min=1,max=255"`
	CreditUnit *int      `json:"creditUnit" validate:"omitempty,min=1,max=30"`
	Level      *Level    `json:"level" validate:"omitempty,level"`
	Semester   *Semester `json:"semester" validate:"omitempty,semester"`
}

type AddScoreRequest struct {
	StudentID    string   `json:"studentId" validate:"required"`
	CourseID     string   `json:"courseId" validate:"required"`
	Score        *float64 `json:"score" validate:"required,min=0,max=100"`
	Level        Level    `json:"level" validate:"required,level"`
	Semester     Semester `json:"semester" validate:"required,semester"`
	AcademicYear string   `json:"academicYear" validate:"required,academic_year"`
}

type AddScoreResponse struct {
	Result ResultWithCourse `json:"result"`
	GPA    float64          `json:"gpa"`
	CGPA   float64          `json:"cgpa"`
}

type ScoreEntry struct {
	StudentID string   `json:"studentId" validate:"required"`
	CourseID  string   `json:"courseId" validate:"required"`
	Score     *float64 `json:"score" validate:"required,min=0,max=100"`
}

type EnterScoresRequest struct {
	Level        Level        `json:"level" validate:"required,level"`
	Semester     Semester     `json:"semester" validate:"required,semester"`
	AcademicYear string       `json:"academicYear" validate:"required,academic_year"`
	Scores       []ScoreEntry `json:"scores" validate:"required,min=1,dive"`
}

type ScoreEntryError struct {
	StudentID string `json:"studentId"`
	CourseID  string `json:"courseId"`
	Error     string `json:"error"`
}

type EnterScoresResponse struct {
	SuccessCount int                `json:"successCount"`
	ErrorCount   int                `json:"errorCount"`
	Results      []ResultWithCourse `json:"results"`
	Errors       []ScoreEntryError  `json:"errors"`
}

type UpdateScoreRequest struct {
	Score *float64 `json:"score" validate:"required,min=0,max=100"`
}

type DeleteScoreResponse struct {
	DeletedResult   ResultWithCourse `json:"deletedResult"`
	GPARecalculated bool             `json:"gpaRecalculated"`
}

type CalculateGPARequest struct {
	StudentID    string   `json:"studentId" validate:"required"`
	Level        Level    `json:"level" validate:"required,level"`
	Semester     Semester `json:"semester" validate:"required,semester"`
	AcademicYear string   `json:"academicYear" validate:"required,academic_year"`
}

type CalculateDepartmentGPARequest struct {
	DepartmentID string   `json:"departmentId" validate:"omitempty"`
	Level        Level    `json:"level" validate:"required,level"`
	Semester     Semester `json:"semester" validate:"required,semester"`
	AcademicYear string   `json:"academicYear" validate:"required,academic_year"`
}

// GPAOutcome is the result of recomputing one semester key.
type GPAOutcome struct {
	Key         SemesterKey  `json:"key"`
	SemesterGPA *SemesterGPA `json:"semesterGpa"`
	CGPA        float64      `json:"cgpa"`
	Removed     bool         `json:"removed"`
}

type StudentGPAError struct {
	StudentID string `json:"studentId"`
	Error     string `json:"error"`
}

type DepartmentGPAResponse struct {
	Calculated   int               `json:"calculated"`
	Errors       int               `json:"errors"`
	Results      []GPAOutcome      `json:"results"`
	ErrorDetails []StudentGPAError `json:"errorDetails"`
}

type StudentImportResponse struct {
	TotalRows    int `json:"totalRows"`
	SuccessCount int `json:"successCount"`
	SkippedCount int `json:"skippedCount"`
	ErrorCount   int `json:"errorCount"`
}

type ScoreImportResponse struct {
	TotalRows        int `json:"totalRows"`
	SuccessCount     int `json:"successCount"`
	UpdatedCount     int `json:"updatedCount"`
	ErrorCount       int `json:"errorCount"`
	AffectedStudents int `json:"affectedStudents"`
}

type StudentsResponse struct {
	Students []StudentWithDepartment `json:"students"`
	Total    int                     `json:"total"`
	Page     int                     `json:"page"`
	Limit    int                     `json:"limit"`
}
