package repositories

import (
	"errors"
	"time"

	"learnspace/backend/cache"
	"learnspace/backend/config"
	"learnspace/backend/models"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB         *gorm.DB
	Cache      cache.Store
	defaultTTL time.Duration
}

func NewUserRepository(db *gorm.DB, store cache.Store, cfg *config.Config) *UserRepository {
	return &UserRepository{
		DB:         db,
		Cache:      store,
		defaultTTL: time.Duration(cfg.CacheDefaultTTLMinutes) * time.Minute,
	}
}

func (r *UserRepository) GetByID(userID string) (*models.Account, error) {
	// Copy on hit and on populate: profile and ban updates mutate the
	// returned struct, and the cached entry must stay persisted state.
	key := cache.UserKey(userID)
	if cached, ok := r.Cache.Get(key); ok {
		account := *cached.(*models.Account)
		return &account, nil
	}

	var account models.Account
	if err := r.DB.First(&account, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	stored := account
	r.Cache.Set(key, &stored, r.defaultTTL)
	return &account, nil
}

func (r *UserRepository) GetByUsername(username string) (*models.Account, error) {
	var account models.Account
	if err := r.DB.First(&account, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *UserRepository) Create(account *models.Account) error {
	return r.DB.Create(account).Error
}

func (r *UserRepository) Update(account *models.Account) error {
	if err := r.DB.Save(account).Error; err != nil {
		return err
	}
	r.Cache.Delete(cache.UserKey(account.ID))
	return nil
}

func (r *UserRepository) ListIDsByRole(role string) ([]string, error) {
	var ids []string
	err := r.DB.Model(&models.Account{}).Where("role = ? AND is_banned = ?", role, false).Pluck("id", &ids).Error
	return ids, err
}

func (r *UserRepository) ListAllIDs() ([]string, error) {
	var ids []string
	err := r.DB.Model(&models.Account{}).Where("is_banned = ?", false).Pluck("id", &ids).Error
	return ids, err
}

func (r *UserRepository) RecordLogin(userID, ip string, at time.Time) error {
	history := models.LoginHistory{UserID: userID, LoginTime: at, IPAddress: ip}
	if err := r.DB.Create(&history).Error; err != nil {
		return err
	}
	err := r.DB.Model(&models.Account{}).Where("id = ?", userID).Update("last_login", at).Error
	if err != nil {
		return err
	}
	r.Cache.Delete(cache.UserKey(userID))
	return nil
}

func (r *UserRepository) CountAll() (int64, error) {
	var count int64
	err := r.DB.Model(&models.Account{}).Count(&count).Error
	return count, err
}
