package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Settings is a singleton row: the wisher identity plus the Twilio WhatsApp
// credentials. It is created lazily on first write and read by every send.
type Settings struct {
	ID                   uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	WisherName           string    `gorm:"not null" json:"wisher_name"`
	TwilioAccountSID     string    `gorm:"column:twilio_account_sid" json:"twilio_account_sid"`
	TwilioAuthToken      string    `json:"twilio_auth_token"`
	TwilioWhatsAppNumber string    `gorm:"column:twilio_whatsapp_number" json:"twilio_whatsapp_number"`
}

func (s *Settings) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}
