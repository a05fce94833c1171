package database

import (
	"fmt"
	"time"

	"github.com/agendoc/agendoc/internal/config"
	"github.com/agendoc/agendoc/internal/domain"
	"github.com/agendoc/agendoc/internal/domain/appointment"
	"github.com/agendoc/agendoc/internal/domain/appointmenttype"
	"github.com/agendoc/agendoc/internal/domain/availability"
	"github.com/agendoc/agendoc/internal/domain/bookingtoken"
	"github.com/agendoc/agendoc/internal/domain/calendar"
	"github.com/agendoc/agendoc/internal/domain/samsevent"
	"github.com/agendoc/agendoc/internal/domain/specialty"
	"github.com/agendoc/agendoc/pkg/metrics"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
		PrepareStmt:                              true,
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: false,
		DisableAutomaticPing:                     false,
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: false,
	}), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

const queryStartKey = "metrics:query_start"

// Instrument registers query-timing callbacks on the gorm instance and
// starts a goroutine that mirrors the connection pool size into the gauge.
func Instrument(db *gorm.DB, collector *metrics.Collector) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("getting underlying sql.DB: %w", err)
	}

	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			collector.DBConnections.Set(float64(sqlDB.Stats().OpenConnections))
		}
	}()

	return registerQueryTiming(db, collector)
}

func registerQueryTiming(db *gorm.DB, collector *metrics.Collector) error {
	before := func(tx *gorm.DB) {
		tx.InstanceSet(queryStartKey, time.Now())
	}
	observe := func(operation string) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			v, ok := tx.InstanceGet(queryStartKey)
			if !ok {
				return
			}
			start, ok := v.(time.Time)
			if !ok {
				return
			}
			table := tx.Statement.Table
			if table == "" {
				table = "unknown"
			}
			collector.DBQueryDuration.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
		}
	}

	var regErr error
	reg := func(err error) {
		if regErr == nil {
			regErr = err
		}
	}

	cb := db.Callback()
	reg(cb.Create().Before("gorm:create").Register("metrics:before_create", before))
	reg(cb.Create().After("gorm:create").Register("metrics:after_create", observe("create")))
	reg(cb.Query().Before("gorm:query").Register("metrics:before_query", before))
	reg(cb.Query().After("gorm:query").Register("metrics:after_query", observe("query")))
	reg(cb.Update().Before("gorm:update").Register("metrics:before_update", before))
	reg(cb.Update().After("gorm:update").Register("metrics:after_update", observe("update")))
	reg(cb.Delete().Before("gorm:delete").Register("metrics:before_delete", before))
	reg(cb.Delete().After("gorm:delete").Register("metrics:after_delete", observe("delete")))
	reg(cb.Row().Before("gorm:row").Register("metrics:before_row", before))
	reg(cb.Row().After("gorm:row").Register("metrics:after_row", observe("row")))
	return regErr
}

func Migrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")
	start := time.Now()

	schemas := []string{"scheduling", "auth", "audit"} // logical namespace
	for _, schema := range schemas {
		if err := db.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema)).Error; err != nil {
			return fmt.Errorf("creating schema %s: %w", schema, err)
		}
	}

	models := []any{
		&domain.User{},
		&domain.AuditLog{},
		&specialty.Specialty{},
		&calendar.Calendar{},
		&availability.Rule{},
		&availability.Exception{},
		&appointmenttype.AppointmentType{},
		&appointment.Appointment{},
		&bookingtoken.BookingToken{},
		&samsevent.SamsEvent{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto-migrating models: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("creating indexes: %w", err)
	}

	log.Info("migrations completed", zap.Duration("duration", time.Since(start)))
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []struct {
		name  string
		query string
	}{
		// Overlap checks scan one doctor's non-cancelled appointments in a
		// time range; the partial index keeps that lookup narrow.
		{
			name:  "idx_appointments_doctor_blocking",
			query: `CREATE INDEX IF NOT EXISTS idx_appointments_doctor_blocking ON scheduling.appointments (doctor_id, start_at, end_at) WHERE deleted_at IS NULL AND status NOT IN ('cancelled', 'canceled')`,
		},
		{
			name:  "idx_appointments_time_range",
			query: `CREATE INDEX IF NOT EXISTS idx_appointments_time_range ON scheduling.appointments (start_at, status) WHERE deleted_at IS NULL`,
		},
		// One doctor-scope calendar per doctor.
		{
			name:  "uq_calendars_doctor_scope",
			query: `CREATE UNIQUE INDEX IF NOT EXISTS uq_calendars_doctor_scope ON scheduling.calendars (doctor_id) WHERE deleted_at IS NULL AND scope = 'doctor'`,
		},
		// One specialty calendar per (doctor, specialty) pair.
		{
			name:  "uq_calendars_doctor_specialty",
			query: `CREATE UNIQUE INDEX IF NOT EXISTS uq_calendars_doctor_specialty ON scheduling.calendars (doctor_id, specialty_id) WHERE deleted_at IS NULL AND scope = 'specialty'`,
		},
		{
			name:  "idx_availability_rules_calendar",
			query: `CREATE INDEX IF NOT EXISTS idx_availability_rules_calendar ON scheduling.availability_rules (calendar_id, day_of_week)`,
		},
		{
			name:  "idx_availability_exceptions_calendar_date",
			query: `CREATE INDEX IF NOT EXISTS idx_availability_exceptions_calendar_date ON scheduling.availability_exceptions (calendar_id, date)`,
		},
	}

	for _, idx := range indexes {
		if err := db.Exec(idx.query).Error; err != nil {
			return fmt.Errorf("creating index %s: %w", idx.name, err)
		}
	}

	return nil
}
