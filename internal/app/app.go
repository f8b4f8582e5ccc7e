package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/RubachokBoss/academic-records/internal/config"
	"github.com/RubachokBoss/academic-records/internal/delivery/httpd"
	"github.com/RubachokBoss/academic-records/internal/repository"
	"github.com/RubachokBoss/academic-records/internal/service"
	"github.com/RubachokBoss/academic-records/internal/service/integration"
	"github.com/RubachokBoss/academic-records/pkg/token"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type App struct {
	server    *http.Server
	logger    zerolog.Logger
	config    *config.Config
	db        *sql.DB
	redis     *redis.Client
	publisher integration.EventPublisher
}

// Repositories groups the postgres stores. It is shared by the HTTP app
// and the seed command.
type Repositories struct {
	Faculties   repository.FacultyRepository
	Departments repository.DepartmentRepository
	Users       repository.UserRepository
	Students    repository.StudentRepository
	Courses     repository.CourseRepository
	Results     repository.ResultRepository
	GPAs        repository.GPARepository
}

func NewRepositories(db *sql.DB, log zerolog.Logger) Repositories {
	return Repositories{
		Faculties:   repository.NewFacultyRepository(db, log),
		Departments: repository.NewDepartmentRepository(db, log),
		Users:       repository.NewUserRepository(db, log),
		Students:    repository.NewStudentRepository(db, log),
		Courses:     repository.NewCourseRepository(db, log),
		Results:     repository.NewResultRepository(db, log),
		GPAs:        repository.NewGPARepository(db, log),
	}
}

func NewAuthService(cfg *config.Config, repos Repositories, log zerolog.Logger) service.AuthService {
	tokens := token.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.Issuer)
	return service.NewAuthService(repos.Users, repos.Departments, repos.Faculties, tokens, cfg.Auth.BcryptCost, log)
}

func New(cfg *config.Config, log zerolog.Logger, db *sql.DB) (*App, error) {
	repos := NewRepositories(db, log)

	publisher := newPublisher(cfg.RabbitMQ, log)

	archive, err := newArchive(cfg.Storage, log)
	if err != nil {
		publisher.Close()
		return nil, err
	}

	var redisClient *redis.Client
	var cache repository.Cache = repository.NoopCache{}
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		cache = repository.NewRedisCache(redisClient, cfg.App.Name, cfg.Redis.TTL, log)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("Redis cache enabled")
	}

	gpaService := service.NewGPAService(
		repos.Results,
		repos.GPAs,
		repos.Students,
		repos.Departments,
		cache,
		publisher,
		cfg.GPA.DepartmentConcurrency,
		log,
	)
	services := httpd.Services{
		Auth:       NewAuthService(cfg, repos, log),
		Students:   service.NewStudentService(repos.Students, repos.Departments, repos.Results, repos.GPAs, cache, log),
		Courses:    service.NewCourseService(repos.Courses, repos.Departments, log),
		Department: service.NewDepartmentService(repos.Departments, repos.Faculties, log),
		Results: service.NewResultService(
			repos.Results,
			repos.Students,
			repos.Courses,
			repos.Departments,
			repos.GPAs,
			gpaService,
			log,
		),
		GPA:     gpaService,
		Reports: service.NewReportService(repos.Departments, repos.Faculties, repos.Students, repos.Results, repos.GPAs, log),
		Imports: service.NewImportService(
			repos.Students,
			repos.Courses,
			repos.Departments,
			repos.Results,
			gpaService,
			archive,
			publisher,
			cfg.Import.ChunkSize,
			log,
		),
	}

	handler := httpd.NewHandler(services, db, httpd.Options{
		MaxUploadSize: cfg.Import.MaxUploadSize,
		Production:    cfg.App.IsProduction(),
	}, log)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(httpd.RequestLogger(log))
	router.Use(httpd.Recovery(log))
	router.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	}))

	handler.RegisterRoutes(router)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &App{
		server:    server,
		logger:    log,
		config:    cfg,
		db:        db,
		redis:     redisClient,
		publisher: publisher,
	}, nil
}

// newPublisher falls back to a no-op publisher when RabbitMQ is disabled
// or unreachable.
func newPublisher(cfg config.RabbitMQConfig, log zerolog.Logger) integration.EventPublisher {
	if !cfg.Enabled {
		return integration.NoopPublisher{}
	}

	publisher, err := integration.NewRabbitMQClient(cfg.URL, cfg.Exchange, cfg.GPARoutingKey, cfg.ImportRoutingKey, log)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create RabbitMQ client, events will be dropped")
		return integration.NoopPublisher{}
	}
	return publisher
}

func newArchive(cfg config.StorageConfig, log zerolog.Logger) (repository.ImportArchive, error) {
	if !cfg.Enabled {
		return repository.NoopArchive{}, nil
	}

	archive, err := repository.NewMinIOArchive(
		cfg.Endpoint,
		cfg.AccessKey,
		cfg.SecretKey,
		cfg.Bucket,
		cfg.Region,
		cfg.UseSSL,
		cfg.ConnectTimeout,
		log,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create import archive: %w", err)
	}
	return archive, nil
}

func (a *App) Run() error {
	a.logger.Info().Msgf("Starting academic records service on %s", a.config.Server.Address)
	return a.server.ListenAndServe()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info().Msg("Shutting down academic records service...")

	err := a.server.Shutdown(ctx)

	if err := a.publisher.Close(); err != nil {
		a.logger.Error().Err(err).Msg("Failed to close RabbitMQ connection")
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close Redis connection")
		}
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close database connection")
		}
	}

	return err
}
