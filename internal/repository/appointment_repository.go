package repository

import (
	"context"
	"errors"
	"time"

	"github.com/agendoc/agendoc/internal/domain/appointment"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

// blockingScope narrows a query to the appointments that occupy time:
// non-deleted, and not in either cancelled spelling.
func blockingScope(db *gorm.DB, doctorID uuid.UUID) *gorm.DB {
	return db.
		Where("doctor_id = ? AND deleted_at IS NULL", doctorID).
		Where("status NOT IN ?", appointment.CancelledStatuses)
}

// CreateIfFree serializes bookings per doctor with a transaction-scoped
// advisory lock, then re-checks the overlap invariant before inserting.
// Two concurrent bookings for the same doctor queue on the lock; the loser
// sees the winner's row and gets ErrSlotUnavailable.
func (r *AppointmentRepository) CreateIfFree(ctx context.Context, a *appointment.Appointment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := acquireDoctorLock(tx, a.DoctorID); err != nil {
			return err
		}

		overlap, err := overlapExists(tx, a.DoctorID, a.StartAt, a.EndAt, nil)
		if err != nil {
			return err
		}
		if overlap {
			return appointment.ErrSlotUnavailable
		}

		return tx.Create(a).Error
	})
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	var a appointment.Appointment
	err := r.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", id).
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, appointment.ErrAppointmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AppointmentRepository) ListBlockingInRange(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]*appointment.Appointment, error) {
	var appointments []*appointment.Appointment
	err := blockingScope(r.db.WithContext(ctx), doctorID).
		Where("start_at < ? AND end_at > ?", to, from).
		Order("start_at").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *AppointmentRepository) HasOverlap(ctx context.Context, doctorID uuid.UUID, startAt, endAt time.Time, ignoreID *uuid.UUID) (bool, error) {
	return overlapExists(r.db.WithContext(ctx), doctorID, startAt, endAt, ignoreID)
}

func (r *AppointmentRepository) UpdateStatus(ctx context.Context, a *appointment.Appointment) error {
	res := r.db.WithContext(ctx).
		Model(&appointment.Appointment{}).
		Where("id = ? AND deleted_at IS NULL", a.ID).
		Updates(map[string]any{
			"status":              a.Status,
			"cancelled_at":        a.CancelledAt,
			"cancellation_reason": a.CancellationReason,
			"transfer":            a.Transfer,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return appointment.ErrAppointmentNotFound
	}
	return nil
}

// Transfer moves an appointment to another doctor and calendar, re-running the
// overlap check for the target doctor under the same advisory lock discipline
// as CreateIfFree.
func (r *AppointmentRepository) Transfer(ctx context.Context, a *appointment.Appointment, toDoctorID, toCalendarID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := acquireDoctorLock(tx, toDoctorID); err != nil {
			return err
		}

		overlap, err := overlapExists(tx, toDoctorID, a.StartAt, a.EndAt, &a.ID)
		if err != nil {
			return err
		}
		if overlap {
			return appointment.ErrSlotUnavailable
		}

		res := tx.Model(&appointment.Appointment{}).
			Where("id = ? AND deleted_at IS NULL", a.ID).
			Updates(map[string]any{
				"doctor_id":   toDoctorID,
				"calendar_id": toCalendarID,
				"transfer":    a.Transfer,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return appointment.ErrAppointmentNotFound
		}

		a.DoctorID = toDoctorID
		a.CalendarID = toCalendarID
		return nil
	})
}

func (r *AppointmentRepository) List(ctx context.Context, q *appointment.ListQuery) (*appointment.PagedAppointments, error) {
	db := r.db.WithContext(ctx).
		Model(&appointment.Appointment{}).
		Where("deleted_at IS NULL")

	if q.DoctorID != nil {
		db = db.Where("doctor_id = ?", *q.DoctorID)
	}
	if q.CalendarID != nil {
		db = db.Where("calendar_id = ?", *q.CalendarID)
	}
	if q.Status != nil {
		db = db.Where("status = ?", *q.Status)
	}
	if q.From != nil {
		db = db.Where("end_at > ?", *q.From)
	}
	if q.To != nil {
		db = db.Where("start_at < ?", *q.To)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, err
	}

	var appointments []*appointment.Appointment
	err := db.Order("start_at").
		Offset((q.Page - 1) * q.PageSize).
		Limit(q.PageSize).
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(q.PageSize) - 1) / int64(q.PageSize))
	return &appointment.PagedAppointments{
		Appointments: appointments,
		TotalCount:   total,
		Page:         q.Page,
		PageSize:     q.PageSize,
		TotalPages:   totalPages,
	}, nil
}

// acquireDoctorLock takes a transaction-scoped advisory lock keyed on the
// doctor id. Released automatically at commit or rollback.
func acquireDoctorLock(tx *gorm.DB, doctorID uuid.UUID) error {
	return tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", doctorID.String()).Error
}

func overlapExists(db *gorm.DB, doctorID uuid.UUID, startAt, endAt time.Time, ignoreID *uuid.UUID) (bool, error) {
	q := blockingScope(db, doctorID).
		Model(&appointment.Appointment{}).
		Where("start_at < ? AND end_at > ?", endAt, startAt)
	if ignoreID != nil {
		q = q.Where("id <> ?", *ignoreID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
