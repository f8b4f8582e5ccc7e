package httpd

import (
	"context"
	"net/http"
	"time"

	"github.com/RubachokBoss/academic-records/internal/models"
	"github.com/RubachokBoss/academic-records/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Services struct {
	Auth       service.AuthService
	Students   service.StudentService
	Courses    service.CourseService
	Department service.DepartmentService
	Results    service.ResultService
	GPA        service.GPAService
	Reports    service.ReportService
	Imports    service.ImportService
}

type Options struct {
	MaxUploadSize int64
	Production    bool
}

type Handler struct {
	authService       service.AuthService
	studentService    service.StudentService
	courseService     service.CourseService
	departmentService service.DepartmentService
	resultService     service.ResultService
	gpaService        service.GPAService
	reportService     service.ReportService
	importService     service.ImportService
	db                Pinger
	validate          *validator.Validate
	maxUploadSize     int64
	production        bool
	logger            zerolog.Logger
}

func NewHandler(services Services, db Pinger, opts Options, logger zerolog.Logger) *Handler {
	return &Handler{
		authService:       services.Auth,
		studentService:    services.Students,
		courseService:     services.Courses,
		departmentService: services.Department,
		resultService:     services.Results,
		gpaService:        services.GPA,
		reportService:     services.Reports,
		importService:     services.Imports,
		db:                db,
		validate:          newValidator(),
		maxUploadSize:     opts.MaxUploadSize,
		production:        opts.Production,
		logger:            logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.HealthCheck)

	hodOnly := Authorize(models.RoleHOD)
	deanOnly := Authorize(models.RoleDEAN)

	router.Route("/api/v1", func(api chi.Router) {
		api.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Login)
			r.Post("/register", h.Register)
			r.Post("/signup", h.Register)
			r.Group(func(r chi.Router) {
				r.Use(h.Authenticate)
				r.Get("/profile", h.Profile)
				r.Post("/change-password", h.ChangePassword)
			})
		})

		api.Get("/departments/public", h.ListPublicDepartments)

		api.Group(func(api chi.Router) {
			api.Use(h.Authenticate)

			api.Route("/students", func(r chi.Router) {
				r.With(hodOnly).Post("/", h.CreateStudent)
				r.With(hodOnly).Post("/bulk-upload", h.ImportStudents)
				r.With(hodOnly).Get("/bulk-upload/template", h.StudentTemplate)
				r.Get("/", h.ListStudents)
				r.Get("/department/{departmentId}/level/{level}", h.ListStudentsByDepartmentLevel)
				r.Get("/{id}", h.GetStudent)
				r.With(hodOnly).Put("/{id}", h.UpdateStudent)
				r.With(hodOnly).Delete("/{id}", h.DeleteStudent)
			})

			api.Route("/courses", func(r chi.Router) {
				r.With(hodOnly).Post("/", h.CreateCourse)
				r.Get("/", h.ListCourses)
				r.Get("/department/{departmentId}/level/{level}/semester/{semester}", h.ListCoursesByDepartmentLevelSemester)
				r.Get("/{id}", h.GetCourse)
				r.With(hodOnly).Put("/{id}", h.UpdateCourse)
				r.With(hodOnly).Delete("/{id}", h.DeleteCourse)
			})

			api.Route("/results", func(r chi.Router) {
				r.With(hodOnly).Post("/add", h.AddScore)
				r.With(hodOnly).Delete("/delete/{id}", h.DeleteScore)
				r.With(hodOnly).Post("/scores", h.EnterScores)
				r.With(hodOnly).Post("/bulk-upload", h.ImportScores)
				r.With(hodOnly).Get("/bulk-upload/template", h.ScoreTemplate)
				r.Get("/student/{studentId}", h.StudentResults)
				r.Get("/student/{studentId}/with-gpa", h.StudentResultsWithGPA)
				r.Get("/department/{departmentId}", h.DepartmentResults)
				r.Get("/carryovers/{studentId}", h.CarryOvers)
				r.With(hodOnly).Put("/{id}", h.UpdateScore)
				r.With(hodOnly).Delete("/{id}", h.DeleteScore)
			})

			api.Route("/gpa", func(r chi.Router) {
				r.With(hodOnly).Post("/calculate", h.CalculateGPA)
				r.With(hodOnly).Post("/calculate-department", h.CalculateDepartmentGPA)
				r.Get("/student/{studentId}", h.SemesterGPA)
				r.Get("/student/{studentId}/history", h.GPAHistory)
				r.Get("/department/{departmentId}/stats", h.DepartmentGPAStats)
			})

			api.Route("/reports", func(r chi.Router) {
				r.Get("/department/{departmentId}", h.DepartmentReport)
				r.Get("/department/{departmentId}/export", h.ExportDepartmentReport)
				r.With(deanOnly).Get("/faculty", h.FacultyStats)
				r.Get("/transcript/{studentId}", h.Transcript)
			})

			api.Route("/departments", func(r chi.Router) {
				r.Get("/", h.ListDepartments)
				r.Get("/my-department", h.MyDepartment)
				r.Get("/{id}", h.GetDepartment)
			})

			api.Route("/faculties", func(r chi.Router) {
				r.Get("/", h.ListFaculties)
				r.Get("/my-faculty", h.MyFaculty)
				r.Get("/{id}", h.GetFaculty)
			})
		})
	})
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	database := "up"

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			h.logger.Warn().Err(err).Msg("Health check: database unreachable")
			status = http.StatusServiceUnavailable
			database = "down"
		}
	}

	writeJSON(w, status, map[string]interface{}{
		"status":    http.StatusText(status),
		"service":   "academic-records",
		"database":  database,
		"timestamp": time.Now().UTC(),
	})
}
