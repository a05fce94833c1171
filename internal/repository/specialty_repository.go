package repository

import (
	"context"
	"errors"

	"github.com/agendoc/agendoc/internal/domain/calendar"
	"github.com/agendoc/agendoc/internal/domain/specialty"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SpecialtyRepository struct {
	db *gorm.DB
}

func NewSpecialtyRepository(db *gorm.DB) *SpecialtyRepository {
	return &SpecialtyRepository{db: db}
}

func (r *SpecialtyRepository) Create(ctx context.Context, s *specialty.Specialty) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *SpecialtyRepository) GetByID(ctx context.Context, id uuid.UUID) (*specialty.Specialty, error) {
	var s specialty.Specialty
	err := r.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", id).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, specialty.ErrSpecialtyNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SpecialtyRepository) List(ctx context.Context) ([]*specialty.Specialty, error) {
	var specialties []*specialty.Specialty
	err := r.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		Order("label").
		Find(&specialties).Error
	if err != nil {
		return nil, err
	}
	return specialties, nil
}

func (r *SpecialtyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&specialty.Specialty{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", gorm.Expr("NOW()"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return specialty.ErrSpecialtyNotFound
	}
	return nil
}

func (r *SpecialtyRepository) InUse(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&calendar.Calendar{}).
		Where("specialty_id = ? AND deleted_at IS NULL", id).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *SpecialtyRepository) CodeExists(ctx context.Context, code string, ignoreID *uuid.UUID) (bool, error) {
	q := r.db.WithContext(ctx).
		Model(&specialty.Specialty{}).
		Where("code = ? AND deleted_at IS NULL", code)
	if ignoreID != nil {
		q = q.Where("id <> ?", *ignoreID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
