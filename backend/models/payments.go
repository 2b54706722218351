package models

const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

type PaymentTransaction struct {
	Base
	UserID    string `gorm:"index" json:"user_id"`
	CourseID  string `gorm:"index" json:"course_id"`
	OrderID   string `gorm:"uniqueIndex" json:"order_id"`
	Amount    int64  `json:"amount"`
	Status    string `gorm:"default:pending" json:"status"`
	SnapToken string `json:"snap_token,omitempty"`
}
