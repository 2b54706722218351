package repositories

import (
	"errors"
	"time"

	"learnspace/backend/cache"
	"learnspace/backend/config"
	"learnspace/backend/models"

	"gorm.io/gorm"
)

type EnrollmentRepository struct {
	DB         *gorm.DB
	Cache      cache.Store
	defaultTTL time.Duration
}

func NewEnrollmentRepository(db *gorm.DB, store cache.Store, cfg *config.Config) *EnrollmentRepository {
	return &EnrollmentRepository{
		DB:         db,
		Cache:      store,
		defaultTTL: time.Duration(cfg.CacheDefaultTTLMinutes) * time.Minute,
	}
}

func (r *EnrollmentRepository) GetByUserAndCourse(userID, courseID string) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := r.DB.First(&enrollment, "user_id = ? AND course_id = ?", userID, courseID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &enrollment, nil
}

func (r *EnrollmentRepository) Create(enrollment *models.Enrollment) error {
	if err := r.DB.Create(enrollment).Error; err != nil {
		return err
	}
	r.Cache.Delete(cache.UserEnrollmentsKey(enrollment.UserID))
	return nil
}

func (r *EnrollmentRepository) Update(enrollment *models.Enrollment) error {
	if err := r.DB.Save(enrollment).Error; err != nil {
		return err
	}
	r.Cache.Delete(cache.UserEnrollmentsKey(enrollment.UserID))
	return nil
}

func (r *EnrollmentRepository) ListByUser(userID string) ([]models.Enrollment, error) {
	key := cache.UserEnrollmentsKey(userID)
	if cached, ok := r.Cache.Get(key); ok {
		return cached.([]models.Enrollment), nil
	}

	var enrollments []models.Enrollment
	err := r.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&enrollments).Error
	if err != nil {
		return nil, err
	}

	if len(enrollments) > 0 {
		r.Cache.Set(key, enrollments, r.defaultTTL)
	}
	return enrollments, nil
}

func (r *EnrollmentRepository) ListUserIDsByCourse(courseID string) ([]string, error) {
	var ids []string
	err := r.DB.Model(&models.Enrollment{}).
		Where("course_id = ? AND status <> ?", courseID, models.EnrollmentStatusDropped).
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *EnrollmentRepository) CountByCourse(courseID string) (int64, error) {
	var count int64
	err := r.DB.Model(&models.Enrollment{}).Where("course_id = ?", courseID).Count(&count).Error
	return count, err
}

func (r *EnrollmentRepository) CountAll() (int64, error) {
	var count int64
	err := r.DB.Model(&models.Enrollment{}).Count(&count).Error
	return count, err
}
