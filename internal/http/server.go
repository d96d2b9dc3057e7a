package httpapi

import (
	"net/http"

	"edulab-backend-go/internal/config"
	"edulab-backend-go/internal/models"
	"edulab-backend-go/internal/services"
	"edulab-backend-go/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
)

type Server struct {
	DB         *sqlx.DB
	Config     config.Config
	Store      store.Store
	Tokens     services.TokenService
	Accounts   *services.AccountService
	Classes    *services.ClassService
	Subjects   *services.SubjectService
	Labs       *services.LabService
	Progress   *services.ProgressService
	MetricsHub *services.MetricsHub
}

// NewServer wires the service layer over the injected store handle. DB is
// used only by the metrics and visit-counter endpoints and may be nil when
// those are not served.
func NewServer(db *sqlx.DB, st store.Store, cfg config.Config, tokens services.TokenService, hub *services.MetricsHub) *Server {
	return &Server{
		DB:         db,
		Config:     cfg,
		Store:      st,
		Tokens:     tokens,
		Accounts:   services.NewAccountService(st, tokens),
		Classes:    services.NewClassService(st),
		Subjects:   services.NewSubjectService(st),
		Labs:       services.NewLabService(st),
		Progress:   services.NewProgressService(st),
		MetricsHub: hub,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestLogger)
	if len(s.Config.CorsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.Config.CorsOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	auth := WithAuth(s.Tokens, s.Store)
	adminOnly := RequireRole(models.RoleAdministrator)
	teacherOrAdmin := RequireAnyRole(models.RoleTeacher, models.RoleAdministrator)

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/register", s.Register)
		api.Post("/auth/login", s.Login)

		api.Route("/public", func(pub chi.Router) {
			pub.Post("/visits", s.TrackVisit)
			pub.Get("/visits/count", s.VisitCount)
		})

		api.Route("/users", func(users chi.Router) {
			users.Use(auth)
			users.Get("/profile", s.Profile)
			users.Put("/profile", s.UpdateProfile)
			users.Get("/{userID}", s.GetUser)
			users.With(adminOnly).Get("/", s.ListUsers)
			users.With(adminOnly).Post("/", s.CreateUser)
			users.With(adminOnly).Delete("/{userID}", s.DeleteUser)
		})

		api.Route("/classes", func(classes chi.Router) {
			classes.Use(auth)
			classes.Get("/", s.ListClasses)
			classes.Get("/{classID}", s.GetClass)
			classes.Get("/{classID}/students", s.ClassStudents)
			classes.Get("/{classID}/subjects", s.ClassSubjects)
			classes.With(teacherOrAdmin).Get("/{classID}/progress", s.ClassProgress)
			classes.With(adminOnly).Post("/", s.CreateClass)
			classes.With(adminOnly).Put("/{classID}", s.UpdateClass)
			classes.With(adminOnly).Delete("/{classID}", s.DeleteClass)
			classes.With(adminOnly).Post("/{classID}/students", s.AddStudent)
			classes.With(adminOnly).Delete("/{classID}/students/{userID}", s.RemoveStudent)
			classes.With(adminOnly).Post("/{classID}/subjects", s.LinkSubject)
			classes.With(adminOnly).Delete("/{classID}/subjects/{subjectID}", s.UnlinkSubject)
			classes.With(adminOnly).Post("/{classID}/teachers", s.AssignTeacher)
		})

		api.Route("/subjects", func(subjects chi.Router) {
			subjects.Use(auth)
			subjects.Get("/", s.ListSubjects)
			subjects.Get("/{subjectID}", s.GetSubject)
			subjects.With(teacherOrAdmin).Post("/", s.CreateSubject)
			subjects.With(adminOnly).Put("/{subjectID}", s.UpdateSubject)
			subjects.With(adminOnly).Delete("/{subjectID}", s.DeleteSubject)
		})

		api.Route("/labs", func(labs chi.Router) {
			labs.Use(auth)
			labs.Get("/", s.ListLabs)
			labs.Get("/{labID}", s.GetLab)
			labs.With(teacherOrAdmin).Post("/", s.CreateLab)
			labs.With(teacherOrAdmin).Put("/{labID}", s.UpdateLab)
			labs.With(adminOnly).Put("/{labID}/status", s.SetLabStatus)
			labs.With(adminOnly).Delete("/{labID}", s.DeleteLab)
		})

		api.Route("/students/{studentID}", func(students chi.Router) {
			students.Use(auth)
			students.Get("/progress", s.StudentProgress)
			students.Post("/labs/{labID}/progress", s.UpdateProgress)
		})

		api.With(auth, adminOnly).Get("/admin/metrics/history", s.MetricsHistory)
	})

	r.Get("/ws/metrics", s.MetricsSocket)
	return r
}
