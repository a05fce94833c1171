package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agendoc/agendoc/internal/config"
	"github.com/agendoc/agendoc/internal/handler"
	v1 "github.com/agendoc/agendoc/internal/handler/v1"
	"github.com/agendoc/agendoc/internal/repository"
	"github.com/agendoc/agendoc/internal/schedule"
	"github.com/agendoc/agendoc/internal/service"
	"github.com/agendoc/agendoc/pkg/auth"
	"github.com/agendoc/agendoc/pkg/database"
	"github.com/agendoc/agendoc/pkg/logger"
	"github.com/agendoc/agendoc/pkg/metrics"
	"github.com/agendoc/agendoc/pkg/tracer"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	tp, err := tracer.Init(cfg.Tracing)
	if err != nil {
		return fmt.Errorf("initializing tracer: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(ctx)
	}()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	if err := database.Migrate(db, log); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	loc, err := time.LoadLocation(cfg.Scheduling.Timezone)
	if err != nil {
		return fmt.Errorf("loading scheduling timezone: %w", err)
	}
	engine := schedule.NewEngine(loc)

	collector := metrics.NewCollector("agendoc")
	if err := database.Instrument(db, collector); err != nil {
		return fmt.Errorf("instrumenting database: %w", err)
	}

	jwtManager := auth.NewJWTManager(cfg.JWT)

	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	calendarRepo := repository.NewCalendarRepository(db)
	ruleRepo := repository.NewRuleRepository(db)
	exceptionRepo := repository.NewExceptionRepository(db)
	typeRepo := repository.NewAppointmentTypeRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)
	specialtyRepo := repository.NewSpecialtyRepository(db)
	tokenRepo := repository.NewBookingTokenRepository(db)
	samsEventRepo := repository.NewSamsEventRepository(db)
	cascadeRepo := repository.NewCascadeRepository(db)

	auditSvc := service.NewAuditService(auditRepo, collector, log)
	defer auditSvc.Shutdown()

	authSvc := service.NewAuthService(userRepo, jwtManager, log)
	availabilitySvc := service.NewAvailabilityService(
		calendarRepo, ruleRepo, exceptionRepo, typeRepo, appointmentRepo,
		engine, collector, log,
	)
	appointmentSvc := service.NewAppointmentService(
		appointmentRepo, calendarRepo, typeRepo, engine, auditSvc, collector, log,
	)
	calendarSvc := service.NewCalendarService(
		calendarRepo, specialtyRepo, cascadeRepo, engine, auditSvc, log,
	)
	typeSvc := service.NewAppointmentTypeService(typeRepo, calendarRepo, auditSvc, log)
	tokenSvc := service.NewBookingTokenService(tokenRepo, cfg.Scheduling.BookingTokenTTL, log)
	scheduleAdminSvc := service.NewAvailabilityAdminService(
		ruleRepo, exceptionRepo, calendarRepo, auditSvc, log,
	)
	samsEventSvc := service.NewSamsEventService(samsEventRepo, auditSvc, log)
	specialtySvc := service.NewSpecialtyService(specialtyRepo, auditSvc, log)

	router := handler.NewRouter(cfg, log, collector, jwtManager, handler.Handlers{
		Auth:             v1.NewAuthHandler(authSvc),
		Availability:     v1.NewAvailabilityHandler(availabilitySvc),
		Appointments:     v1.NewAppointmentHandler(appointmentSvc),
		Calendars:        v1.NewCalendarHandler(calendarSvc, scheduleAdminSvc),
		AppointmentTypes: v1.NewAppointmentTypeHandler(typeSvc),
		BookingTokens:    v1.NewBookingTokenHandler(tokenSvc),
		SamsEvents:       v1.NewSamsEventHandler(samsEventSvc),
		Specialties:      v1.NewSpecialtyHandler(specialtySvc),
		Patient:          v1.NewPatientHandler(tokenSvc, availabilitySvc, appointmentSvc, calendarSvc, log),
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	log.Info("stopped")
	return nil
}
