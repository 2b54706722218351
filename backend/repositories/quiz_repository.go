package repositories

import (
	"errors"
	"time"

	"learnspace/backend/cache"
	"learnspace/backend/config"
	"learnspace/backend/models"

	"gorm.io/gorm"
)

type QuizRepository struct {
	DB      *gorm.DB
	Cache   cache.Store
	longTTL time.Duration
}

func NewQuizRepository(db *gorm.DB, store cache.Store, cfg *config.Config) *QuizRepository {
	return &QuizRepository{
		DB:      db,
		Cache:   store,
		longTTL: time.Duration(cfg.CacheLongTTLMinutes) * time.Minute,
	}
}

func (r *QuizRepository) GetByID(quizID string) (*models.Quiz, error) {
	// Copies keep the cached entry immutable from the caller's side.
	key := cache.QuizKey(quizID)
	if cached, ok := r.Cache.Get(key); ok {
		quiz := *cached.(*models.Quiz)
		return &quiz, nil
	}

	var quiz models.Quiz
	err := r.DB.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_order")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("option_order")
		}).
		First(&quiz, "id = ?", quizID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	stored := quiz
	r.Cache.Set(key, &stored, r.longTTL)
	return &quiz, nil
}

func (r *QuizRepository) ListByCourse(courseID string) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	err := r.DB.Where("course_id = ?", courseID).Order("quiz_order").Find(&quizzes).Error
	return quizzes, err
}

func (r *QuizRepository) Create(quiz *models.Quiz) error {
	return r.DB.Create(quiz).Error
}

func (r *QuizRepository) Update(quiz *models.Quiz) error {
	if err := r.DB.Save(quiz).Error; err != nil {
		return err
	}
	r.Cache.Delete(cache.QuizKey(quiz.ID))
	return nil
}

func (r *QuizRepository) AddQuestion(question *models.Question) error {
	if err := r.DB.Create(question).Error; err != nil {
		return err
	}
	r.Cache.Delete(cache.QuizKey(question.QuizID))
	return nil
}

func (r *QuizRepository) UpdateQuestion(question *models.Question) error {
	if err := r.DB.Save(question).Error; err != nil {
		return err
	}
	r.Cache.Delete(cache.QuizKey(question.QuizID))
	return nil
}

func (r *QuizRepository) NextQuestionOrder(quizID string) (int, error) {
	var count int64
	err := r.DB.Model(&models.Question{}).Where("quiz_id = ?", quizID).Count(&count).Error
	return int(count) + 1, err
}

func (r *QuizRepository) CreateAttempt(attempt *models.QuizAttempt) error {
	return r.DB.Create(attempt).Error
}

func (r *QuizRepository) AttemptsByUser(quizID, userID string) ([]models.QuizAttempt, error) {
	var attempts []models.QuizAttempt
	err := r.DB.Where("quiz_id = ? AND user_id = ?", quizID, userID).
		Order("attempt_number").
		Find(&attempts).Error
	return attempts, err
}

func (r *QuizRepository) CountAttempts(quizID, userID string) (int64, error) {
	var count int64
	err := r.DB.Model(&models.QuizAttempt{}).
		Where("quiz_id = ? AND user_id = ?", quizID, userID).
		Count(&count).Error
	return count, err
}
