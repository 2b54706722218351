package repositories

import (
	"errors"

	"learnspace/backend/models"

	"gorm.io/gorm"
)

type PaymentRepository struct {
	DB *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{DB: db}
}

func (r *PaymentRepository) Create(transaction *models.PaymentTransaction) error {
	return r.DB.Create(transaction).Error
}

func (r *PaymentRepository) GetByOrderID(orderID string) (*models.PaymentTransaction, error) {
	var transaction models.PaymentTransaction
	if err := r.DB.First(&transaction, "order_id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &transaction, nil
}

func (r *PaymentRepository) Update(transaction *models.PaymentTransaction) error {
	return r.DB.Save(transaction).Error
}

func (r *PaymentRepository) ListByUser(userID string) ([]models.PaymentTransaction, error) {
	var transactions []models.PaymentTransaction
	err := r.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&transactions).Error
	return transactions, err
}

func (r *PaymentRepository) TotalPaid() (int64, error) {
	var total int64
	err := r.DB.Model(&models.PaymentTransaction{}).
		Where("status = ?", models.PaymentStatusPaid).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}
