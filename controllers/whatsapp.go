package controllers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"birthday-backend/config"
	"birthday-backend/models"
	"birthday-backend/services"
	"birthday-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SendTestInput struct {
	TestNumber string `json:"test_number" binding:"required"`
}

type SendIndividualInput struct {
	ContactID string `json:"contact_id" binding:"required"`
}

// loadConfiguredSender loads settings and builds a configured gateway client,
// responding with the appropriate error itself when either is missing.
func loadConfiguredSender(c *gin.Context) (services.WhatsAppSender, *models.Settings, bool) {
	var settings models.Settings
	err := config.DB.First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && settings.WisherName == "") {
		utils.RespondWithError(c, http.StatusBadRequest, "Settings not configured. Please set your name in settings.")
		return nil, nil, false
	}
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return nil, nil, false
	}

	sender := services.NewWhatsAppService(&settings)
	if !sender.IsConfigured() {
		utils.RespondWithError(c, http.StatusBadRequest, "WhatsApp integration not configured. Please add Twilio credentials in settings.")
		return nil, nil, false
	}
	return sender, &settings, true
}

// SendTestMessage sends a test WhatsApp message to verify the integration
func SendTestMessage(c *gin.Context) {
	var input SendTestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Test number is required")
		return
	}

	sender, settings, ok := loadConfiguredSender(c)
	if !ok {
		return
	}

	success, message := sender.SendTestMessage(input.TestNumber, settings.WisherName)
	recordMessage(nil, "", input.TestNumber, "test", services.TestMessage(settings.WisherName), success, message)

	if !success {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message})
}

// SendIndividualMessage sends a birthday message to a specific contact
func SendIndividualMessage(c *gin.Context) {
	var input SendIndividualInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Contact ID is required")
		return
	}

	contactUUID, err := uuid.Parse(input.ContactID)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid contact ID format")
		return
	}

	var contact models.Contact
	if err := config.DB.First(&contact, "id = ?", contactUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Contact not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	sender, settings, ok := loadConfiguredSender(c)
	if !ok {
		return
	}

	success, message := sender.SendBirthdayMessage(contact.Name, contact.WhatsAppNumber, settings.WisherName)
	recordMessage(&contact.ID, contact.Name, contact.WhatsAppNumber, "birthday",
		services.BirthdayMessage(contact.Name, settings.WisherName), success, message)

	if !success {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": message})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Birthday message sent to " + contact.Name,
		"details": message,
	})
}

// GetWhatsAppStatus reports how much of the integration is configured
func GetWhatsAppStatus(c *gin.Context) {
	var settings models.Settings
	if err := config.DB.First(&settings).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusOK, gin.H{"configured": false, "message": "No settings found"})
			return
		}
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	sender := services.NewWhatsAppService(&settings)
	configured := sender.IsConfigured()

	message := "WhatsApp integration needs configuration"
	if configured {
		message = "WhatsApp integration is ready"
	}

	c.JSON(http.StatusOK, gin.H{
		"configured":             configured,
		"has_wisher_name":        settings.WisherName != "",
		"has_twilio_credentials": settings.TwilioAccountSID != "" && settings.TwilioAuthToken != "",
		"has_whatsapp_number":    settings.TwilioWhatsAppNumber != "",
		"message":                message,
	})
}

func recordMessage(contactID *uuid.UUID, contactName, contactNumber, messageType, body string, success bool, detail string) {
	status := "sent"
	if !success {
		status = "failed"
	}
	entry := models.MessageLog{
		ContactID:     contactID,
		ContactName:   contactName,
		ContactNumber: contactNumber,
		MessageType:   messageType,
		Body:          body,
		Status:        status,
		Detail:        detail,
		SentAt:        time.Now(),
	}
	if err := config.DB.Create(&entry).Error; err != nil {
		log.Printf("Failed to log %s message to %s: %v", messageType, contactNumber, err)
	}
}
