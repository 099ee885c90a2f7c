// models/message_log.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageLog struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	ContactID     *uuid.UUID `gorm:"type:uuid;index" json:"contact_id"` // nil for test messages
	ContactName   string     `json:"contact_name"`
	ContactNumber string     `json:"contact_number"`
	MessageType   string     `gorm:"type:varchar(20)" json:"message_type"` // birthday, test
	Body          string     `gorm:"type:text" json:"body"`
	Status        string     `gorm:"type:varchar(20)" json:"status"` // sent, failed
	Detail        string     `gorm:"type:text" json:"detail"`        // gateway detail or error text
	SentAt        time.Time  `json:"sent_at"`

	CreatedAt time.Time `json:"-"`
}

func (m *MessageLog) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return
}
