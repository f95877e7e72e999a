package notification

import (
	"errors"
	"time"
)

// Notification is an append-only inbox row; clients poll for it, nothing is
// pushed.
type Notification struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	SenderID    *int64    `json:"sender_id,omitempty" gorm:"column:sender_id"`
	RecipientID int64     `json:"recipient_id" gorm:"column:recipient_id;not null"`
	Message     string    `json:"message" gorm:"column:message;not null"`
	Link        string    `json:"link" gorm:"column:link"`
	IsRead      bool      `json:"is_read" gorm:"column:is_read;default:false"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
}

func (Notification) TableName() string {
	return "notifications"
}

var ErrNotificationNotFound = errors.New("notification not found")
