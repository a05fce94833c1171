package repository

import (
	"context"
	"errors"

	"github.com/agendoc/agendoc/internal/domain/calendar"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CalendarRepository struct {
	db *gorm.DB
}

func NewCalendarRepository(db *gorm.DB) *CalendarRepository {
	return &CalendarRepository{db: db}
}

func (r *CalendarRepository) Create(ctx context.Context, c *calendar.Calendar) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return calendar.ErrDuplicateCalendar
		}
		return err
	}
	return nil
}

func (r *CalendarRepository) GetByID(ctx context.Context, id uuid.UUID) (*calendar.Calendar, error) {
	var c calendar.Calendar
	err := r.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", id).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, calendar.ErrCalendarNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CalendarRepository) FindByScope(ctx context.Context, doctorID uuid.UUID, scope calendar.Scope, specialtyID *uuid.UUID) (*calendar.Calendar, error) {
	q := r.db.WithContext(ctx).
		Where("doctor_id = ? AND scope = ? AND deleted_at IS NULL", doctorID, scope)
	if scope == calendar.ScopeSpecialty {
		if specialtyID == nil {
			return nil, calendar.ErrCalendarNotFound
		}
		q = q.Where("specialty_id = ?", *specialtyID)
	}

	var c calendar.Calendar
	err := q.First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, calendar.ErrCalendarNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CalendarRepository) List(ctx context.Context, q *calendar.ListCalendarsQuery) ([]*calendar.Calendar, error) {
	db := r.db.WithContext(ctx).Where("deleted_at IS NULL")

	// Doctor and calendar filters are a union, not an intersection: the feed
	// resolves both parameter lists into one calendar set.
	switch {
	case len(q.DoctorIDs) > 0 && len(q.CalendarIDs) > 0:
		db = db.Where("doctor_id IN ? OR id IN ?", q.DoctorIDs, q.CalendarIDs)
	case len(q.DoctorIDs) > 0:
		db = db.Where("doctor_id IN ?", q.DoctorIDs)
	case len(q.CalendarIDs) > 0:
		db = db.Where("id IN ?", q.CalendarIDs)
	}

	if q.ExcludeSams {
		db = db.Where("scope <> ?", calendar.ScopeSams)
	}

	var calendars []*calendar.Calendar
	if err := db.Order("created_at").Find(&calendars).Error; err != nil {
		return nil, err
	}
	return calendars, nil
}

func (r *CalendarRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*calendar.Calendar, error) {
	var calendars []*calendar.Calendar
	err := r.db.WithContext(ctx).
		Where("doctor_id = ? AND deleted_at IS NULL", doctorID).
		Order("created_at").
		Find(&calendars).Error
	if err != nil {
		return nil, err
	}
	return calendars, nil
}

func (r *CalendarRepository) UpdateBookingWindow(ctx context.Context, id uuid.UUID, cmd *calendar.UpdateBookingWindowCommand) (*calendar.Calendar, error) {
	res := r.db.WithContext(ctx).
		Model(&calendar.Calendar{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Updates(map[string]any{
			"booking_min_hours": cmd.BookingMinHours,
			"booking_max_days":  cmd.BookingMaxDays,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, calendar.ErrCalendarNotFound
	}
	return r.GetByID(ctx, id)
}
