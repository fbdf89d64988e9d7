package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/clinic-records/apiserver/config"
	"github.com/clinic-records/apiserver/internal/db"
	"github.com/clinic-records/apiserver/internal/handlers"
	"github.com/clinic-records/apiserver/internal/logging"
	"github.com/clinic-records/apiserver/internal/mq"
	"github.com/clinic-records/apiserver/internal/notification"
	"github.com/clinic-records/apiserver/internal/services"
	"github.com/clinic-records/apiserver/internal/storage"
	"github.com/clinic-records/apiserver/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	notifier   drainer
	queue      io.Closer
	objects    io.Closer
	logger     zerolog.Logger
}

// drainer waits for background work started by request handlers.
type drainer interface {
	Wait(ctx context.Context) error
}

// New constructs a Server with basic middleware and defaults.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	logger := logging.New(cfg.Log)

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	objects, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	if objects == nil {
		logger.Warn().Msg("no storage backend configured, attachments are disabled")
	}

	queue, err := mq.Open(ctx, cfg.Notifications, logger)
	if err != nil {
		_ = objects.Close()
		_ = dbConn.Close()
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	appointmentRepo := store.NewAppointmentRepository(dbConn)
	recordRepo := store.NewMedicalRecordRepository(dbConn)
	departmentRepo := store.NewDepartmentRepository(dbConn)
	specialtyRepo := store.NewSpecialtyRepository(dbConn)
	associationRepo := store.NewDoctorAssociationRepository(dbConn)
	auditRepo := store.NewAuditRepository(dbConn)

	userService := services.NewUserService(userRepo)
	appointmentService := services.NewAppointmentService(appointmentRepo)
	recordService := services.NewMedicalRecordService(recordRepo, objects)
	departmentService := services.NewDepartmentService(departmentRepo)
	specialtyService := services.NewSpecialtyService(specialtyRepo)
	associationService := services.NewDoctorAssociationService(associationRepo)
	auditService := services.NewAuditService(auditRepo, logger)

	notifier := notification.NewNotifier(queue, cfg.Notifications.Channel, logger)
	authMiddleware := handlers.RequireAuth(cfg.JWTSecret)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		handlers.RequestLogger(logger),
		middleware.Recoverer,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz(dbConn))
	router.Route("/api", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			handlers.UserRouter(r, handlers.NewUserHandler(userService, auditService, cfg.JWTSecret, cfg.TokenTTL), authMiddleware)
		})
		r.Route("/appointments", func(r chi.Router) {
			handlers.AppointmentRouter(r, handlers.NewAppointmentHandler(appointmentService, auditService, notifier), authMiddleware)
		})
		r.Route("/medical-records", func(r chi.Router) {
			handlers.MedicalRecordRouter(r, handlers.NewMedicalRecordHandler(recordService, auditService, notifier), authMiddleware)
		})
		r.Route("/departments", func(r chi.Router) {
			handlers.CatalogRouter(r, handlers.NewDepartmentHandler(departmentService, auditService), authMiddleware)
		})
		r.Route("/specialties", func(r chi.Router) {
			handlers.CatalogRouter(r, handlers.NewSpecialtyHandler(specialtyService, auditService), authMiddleware)
		})
		r.Route("/doctor-associations", func(r chi.Router) {
			handlers.DoctorAssociationRouter(r, handlers.NewDoctorAssociationHandler(associationService, auditService), authMiddleware)
		})
		r.Route("/audits", func(r chi.Router) {
			handlers.AuditRouter(r, handlers.NewAuditHandler(auditService), authMiddleware)
		})
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		notifier:   notifier,
		queue:      queue,
		objects:    objects,
		logger:     logger,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.httpServer.Addr).Msg("server listening")
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting requests and waits, until ctx expires, for
// in-flight requests and queued notifications. It then releases the queue,
// object storage and the database pool.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if s.notifier != nil {
		if werr := s.notifier.Wait(ctx); werr != nil {
			s.logger.Warn().Err(werr).Msg("notifications still pending at shutdown")
		}
	}
	if s.queue != nil {
		if qerr := s.queue.Close(); qerr != nil {
			s.logger.Warn().Err(qerr).Msg("close notification backend")
		}
	}
	if s.objects != nil {
		if oerr := s.objects.Close(); oerr != nil {
			s.logger.Warn().Err(oerr).Msg("close object storage")
		}
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return err
}
