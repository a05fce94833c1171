package repository

import (
	"context"
	"errors"
	"time"

	"github.com/agendoc/agendoc/internal/domain/availability"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RuleRepository struct {
	db *gorm.DB
}

func NewRuleRepository(db *gorm.DB) *RuleRepository {
	return &RuleRepository{db: db}
}

func (r *RuleRepository) Create(ctx context.Context, rule *availability.Rule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

func (r *RuleRepository) ListByCalendar(ctx context.Context, calendarID uuid.UUID) ([]*availability.Rule, error) {
	var rules []*availability.Rule
	err := r.db.WithContext(ctx).
		Where("calendar_id = ?", calendarID).
		Order("day_of_week, start_time").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *RuleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&availability.Rule{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return availability.ErrRuleNotFound
	}
	return nil
}

type ExceptionRepository struct {
	db *gorm.DB
}

func NewExceptionRepository(db *gorm.DB) *ExceptionRepository {
	return &ExceptionRepository{db: db}
}

func (r *ExceptionRepository) Create(ctx context.Context, e *availability.Exception) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *ExceptionRepository) GetByCalendarAndDate(ctx context.Context, calendarID uuid.UUID, date time.Time) (*availability.Exception, error) {
	var e availability.Exception
	err := r.db.WithContext(ctx).
		Where("calendar_id = ? AND date = ?", calendarID, date.Format("2006-01-02")).
		First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, availability.ErrExceptionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *ExceptionRepository) ListByCalendarRange(ctx context.Context, calendarID uuid.UUID, from, to time.Time) ([]*availability.Exception, error) {
	var exceptions []*availability.Exception
	err := r.db.WithContext(ctx).
		Where("calendar_id = ? AND date BETWEEN ? AND ?", calendarID, from.Format("2006-01-02"), to.Format("2006-01-02")).
		Order("date").
		Find(&exceptions).Error
	if err != nil {
		return nil, err
	}
	return exceptions, nil
}

func (r *ExceptionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&availability.Exception{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return availability.ErrExceptionNotFound
	}
	return nil
}
