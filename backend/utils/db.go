package utils

import (
	"fmt"

	"learnspace/backend/config"
	"learnspace/backend/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate applies the schema. Shared with the test setup, which runs it
// against an in-memory database.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Account{},
		&models.LoginHistory{},
		&models.Course{},
		&models.Chapter{},
		&models.Lesson{},
		&models.Quiz{},
		&models.Question{},
		&models.AnswerOption{},
		&models.QuizAttempt{},
		&models.Enrollment{},
		&models.Conversation{},
		&models.MessageEntity{},
		&models.Notification{},
		&models.Certificate{},
		&models.PaymentTransaction{},
		&models.Achievement{},
		&models.UserAchievement{},
	)
}
