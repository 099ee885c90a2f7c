package controllers

import (
	"errors"
	"net/http"

	"birthday-backend/config"
	"birthday-backend/models"
	"birthday-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UpdateSettingsInput defines the expected JSON structure; omitted fields keep
// their stored values.
type UpdateSettingsInput struct {
	WisherName           *string `json:"wisher_name"`
	TwilioAccountSID     *string `json:"twilio_account_sid"`
	TwilioAuthToken      *string `json:"twilio_auth_token"`
	TwilioWhatsAppNumber *string `json:"twilio_whatsapp_number"`
}

// GetSettings returns the settings singleton, or an empty shape if none exists yet
func GetSettings(c *gin.Context) {
	var settings models.Settings
	if err := config.DB.First(&settings).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusOK, gin.H{
				"wisher_name":            "",
				"twilio_account_sid":     "",
				"twilio_auth_token":      "",
				"twilio_whatsapp_number": "",
			})
			return
		}
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	c.JSON(http.StatusOK, settings)
}

// UpdateSettings upserts the settings singleton, creating it on first write
func UpdateSettings(c *gin.Context) {
	var input UpdateSettingsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var settings models.Settings
	err := config.DB.First(&settings).Error
	isNew := errors.Is(err, gorm.ErrRecordNotFound)
	if err != nil && !isNew {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	if isNew {
		settings = models.Settings{ID: uuid.New()}
	}

	if input.WisherName != nil {
		settings.WisherName = *input.WisherName
	}
	if input.TwilioAccountSID != nil {
		settings.TwilioAccountSID = *input.TwilioAccountSID
	}
	if input.TwilioAuthToken != nil {
		settings.TwilioAuthToken = *input.TwilioAuthToken
	}
	if input.TwilioWhatsAppNumber != nil {
		settings.TwilioWhatsAppNumber = *input.TwilioWhatsAppNumber
	}

	if isNew {
		err = config.DB.Create(&settings).Error
	} else {
		err = config.DB.Save(&settings).Error
	}
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to save settings")
		return
	}

	c.JSON(http.StatusOK, settings)
}
