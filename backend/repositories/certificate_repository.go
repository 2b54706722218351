package repositories

import (
	"errors"
	"time"

	"learnspace/backend/cache"
	"learnspace/backend/config"
	"learnspace/backend/models"

	"gorm.io/gorm"
)

type CertificateRepository struct {
	DB         *gorm.DB
	Cache      cache.Store
	defaultTTL time.Duration
}

func NewCertificateRepository(db *gorm.DB, store cache.Store, cfg *config.Config) *CertificateRepository {
	return &CertificateRepository{
		DB:         db,
		Cache:      store,
		defaultTTL: time.Duration(cfg.CacheDefaultTTLMinutes) * time.Minute,
	}
}

func (r *CertificateRepository) Create(certificate *models.Certificate) error {
	if err := r.DB.Create(certificate).Error; err != nil {
		return err
	}
	r.Cache.Delete(cache.UserCertificatesKey(certificate.UserID))
	return nil
}

func (r *CertificateRepository) ListByUser(userID string) ([]models.Certificate, error) {
	key := cache.UserCertificatesKey(userID)
	if cached, ok := r.Cache.Get(key); ok {
		return cached.([]models.Certificate), nil
	}

	var certificates []models.Certificate
	err := r.DB.Where("user_id = ?", userID).Order("issued_at DESC").Find(&certificates).Error
	if err != nil {
		return nil, err
	}

	if len(certificates) > 0 {
		r.Cache.Set(key, certificates, r.defaultTTL)
	}
	return certificates, nil
}

func (r *CertificateRepository) GetByCode(code string) (*models.Certificate, error) {
	var certificate models.Certificate
	if err := r.DB.First(&certificate, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &certificate, nil
}

func (r *CertificateRepository) GetByUserAndCourse(userID, courseID string) (*models.Certificate, error) {
	var certificate models.Certificate
	err := r.DB.First(&certificate, "user_id = ? AND course_id = ?", userID, courseID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &certificate, nil
}
