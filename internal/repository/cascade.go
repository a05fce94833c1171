package repository

import (
	"context"

	"github.com/agendoc/agendoc/internal/domain/appointment"
	"github.com/agendoc/agendoc/internal/domain/appointmenttype"
	"github.com/agendoc/agendoc/internal/domain/availability"
	"github.com/agendoc/agendoc/internal/domain/bookingtoken"
	"github.com/agendoc/agendoc/internal/domain/calendar"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CascadeRepository removes a calendar together with everything that
// references it, all-or-nothing.
type CascadeRepository struct {
	db *gorm.DB
}

func NewCascadeRepository(db *gorm.DB) *CascadeRepository {
	return &CascadeRepository{db: db}
}

func (r *CascadeRepository) DeleteCalendarCascade(ctx context.Context, calendarID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := gorm.Expr("NOW()")

		if err := tx.Model(&appointment.Appointment{}).
			Where("calendar_id = ? AND deleted_at IS NULL", calendarID).
			Update("deleted_at", now).Error; err != nil {
			return err
		}

		if err := tx.Model(&appointmenttype.AppointmentType{}).
			Where("calendar_id = ? AND deleted_at IS NULL", calendarID).
			Update("deleted_at", now).Error; err != nil {
			return err
		}

		if err := tx.Delete(&availability.Rule{}, "calendar_id = ?", calendarID).Error; err != nil {
			return err
		}

		if err := tx.Delete(&availability.Exception{}, "calendar_id = ?", calendarID).Error; err != nil {
			return err
		}

		if err := tx.Delete(&bookingtoken.BookingToken{}, "calendar_id = ?", calendarID).Error; err != nil {
			return err
		}

		res := tx.Model(&calendar.Calendar{}).
			Where("id = ? AND deleted_at IS NULL", calendarID).
			Update("deleted_at", now)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return calendar.ErrCalendarNotFound
		}
		return nil
	})
}
