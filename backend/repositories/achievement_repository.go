package repositories

import (
	"errors"
	"time"

	"learnspace/backend/cache"
	"learnspace/backend/config"
	"learnspace/backend/models"

	"gorm.io/gorm"
)

type AchievementRepository struct {
	DB         *gorm.DB
	Cache      cache.Store
	defaultTTL time.Duration
	longTTL    time.Duration
}

func NewAchievementRepository(db *gorm.DB, store cache.Store, cfg *config.Config) *AchievementRepository {
	return &AchievementRepository{
		DB:         db,
		Cache:      store,
		defaultTTL: time.Duration(cfg.CacheDefaultTTLMinutes) * time.Minute,
		longTTL:    time.Duration(cfg.CacheLongTTLMinutes) * time.Minute,
	}
}

// GetAll caches with the long TTL: the achievement catalogue rarely changes.
func (r *AchievementRepository) GetAll() ([]models.Achievement, error) {
	key := cache.AllAchievementsKey()
	if cached, ok := r.Cache.Get(key); ok {
		return cached.([]models.Achievement), nil
	}

	var achievements []models.Achievement
	if err := r.DB.Find(&achievements).Error; err != nil {
		return nil, err
	}

	if len(achievements) > 0 {
		r.Cache.Set(key, achievements, r.longTTL)
	}
	return achievements, nil
}

func (r *AchievementRepository) GetByID(achievementID string) (*models.Achievement, error) {
	key := cache.AchievementKey(achievementID)
	if cached, ok := r.Cache.Get(key); ok {
		achievement := *cached.(*models.Achievement)
		return &achievement, nil
	}

	var achievement models.Achievement
	if err := r.DB.First(&achievement, "id = ?", achievementID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	stored := achievement
	r.Cache.Set(key, &stored, r.longTTL)
	return &achievement, nil
}

func (r *AchievementRepository) GetUserAchievements(userID string) ([]models.UserAchievement, error) {
	key := cache.UserAchievementsKey(userID)
	if cached, ok := r.Cache.Get(key); ok {
		return cached.([]models.UserAchievement), nil
	}

	var userAchievements []models.UserAchievement
	err := r.DB.Preload("Achievement").Where("user_id = ?", userID).Find(&userAchievements).Error
	if err != nil {
		return nil, err
	}

	if len(userAchievements) > 0 {
		r.Cache.Set(key, userAchievements, r.defaultTTL)
	}
	return userAchievements, nil
}

// GetUserAchievementsPaged keys include search and pagination
// parameters; those entries are never invalidated, only TTL-expired.
func (r *AchievementRepository) GetUserAchievementsPaged(userID, search string, page, pageSize int) ([]models.UserAchievement, error) {
	key := cache.UserAchievementsPagedKey(userID, search, page, pageSize)
	if cached, ok := r.Cache.Get(key); ok {
		return cached.([]models.UserAchievement), nil
	}

	query := r.DB.Preload("Achievement").
		Joins("JOIN achievements ON achievements.id = user_achievements.achievement_id").
		Where("user_achievements.user_id = ?", userID)

	if search != "" {
		like := "%" + search + "%"
		query = query.Where("achievements.name LIKE ? OR achievements.description LIKE ?", like, like)
	}

	var userAchievements []models.UserAchievement
	err := query.Order("user_achievements.received_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&userAchievements).Error
	if err != nil {
		return nil, err
	}

	if len(userAchievements) > 0 {
		r.Cache.Set(key, userAchievements, r.defaultTTL)
	}
	return userAchievements, nil
}

func (r *AchievementRepository) HasUserAchievement(userID, achievementID string) (bool, error) {
	var count int64
	err := r.DB.Model(&models.UserAchievement{}).
		Where("user_id = ? AND achievement_id = ?", userID, achievementID).
		Count(&count).Error
	return count > 0, err
}

func (r *AchievementRepository) AddUserAchievement(userAchievement *models.UserAchievement) error {
	if err := r.DB.Create(userAchievement).Error; err != nil {
		return err
	}
	r.Cache.Delete(cache.UserAchievementsKey(userAchievement.UserID))
	return nil
}
