// services/store.go
package services

import (
	"errors"

	"birthday-backend/models"

	"gorm.io/gorm"
)

// Store is the persistence surface the scheduler depends on.
type Store interface {
	// CurrentSettings returns the settings singleton, or nil if none exists yet.
	CurrentSettings() (*models.Settings, error)
	AllContacts() ([]models.Contact, error)
	// ContactsByMonthDay matches on calendar month and day; the birth year is ignored.
	ContactsByMonthDay(month, day int) ([]models.Contact, error)
	RecordMessageLog(entry *models.MessageLog) error
}

type DBStore struct {
	db *gorm.DB
}

func NewDBStore(db *gorm.DB) *DBStore {
	return &DBStore{db: db}
}

func (s *DBStore) CurrentSettings() (*models.Settings, error) {
	var settings models.Settings
	if err := s.db.First(&settings).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &settings, nil
}

func (s *DBStore) AllContacts() ([]models.Contact, error) {
	var contacts []models.Contact
	err := s.db.Find(&contacts).Error
	return contacts, err
}

func (s *DBStore) ContactsByMonthDay(month, day int) ([]models.Contact, error) {
	var contacts []models.Contact
	err := s.db.Raw(`
		SELECT * FROM contacts
		WHERE deleted_at IS NULL
		AND EXTRACT(MONTH FROM birthdate) = ?
		AND EXTRACT(DAY FROM birthdate) = ?
	`, month, day).Scan(&contacts).Error
	return contacts, err
}

func (s *DBStore) RecordMessageLog(entry *models.MessageLog) error {
	return s.db.Create(entry).Error
}
