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

// CreateContactInput defines the expected JSON structure for creating a contact
type CreateContactInput struct {
	Name           string `json:"name" binding:"required"`
	Birthdate      string `json:"birthdate" binding:"required"`
	WhatsAppNumber string `json:"whatsapp_number" binding:"required"`
}

// UpdateContactInput defines the expected JSON structure for updating a contact
type UpdateContactInput struct {
	Name           *string `json:"name"`
	Birthdate      *string `json:"birthdate"`
	WhatsAppNumber *string `json:"whatsapp_number"`
}

// CreateContact creates a new contact
func CreateContact(c *gin.Context) {
	var input CreateContactInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	birthdate, err := models.ParseDate(input.Birthdate)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid birthdate format. Use YYYY-MM-DD")
		return
	}

	if !utils.ValidatePhone(input.WhatsAppNumber) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return
	}

	contact := models.Contact{
		ID:             uuid.New(),
		Name:           input.Name,
		Birthdate:      birthdate,
		WhatsAppNumber: input.WhatsAppNumber,
	}

	if err := config.DB.Create(&contact).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create contact")
		return
	}

	c.JSON(http.StatusCreated, contact)
}

// GetContacts retrieves all contacts
func GetContacts(c *gin.Context) {
	var contacts []models.Contact
	if err := config.DB.Find(&contacts).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve contacts")
		return
	}

	c.JSON(http.StatusOK, contacts)
}

// GetContact retrieves a specific contact by ID
func GetContact(c *gin.Context) {
	contactUUID, err := uuid.Parse(c.Param("id"))
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

	c.JSON(http.StatusOK, contact)
}

// UpdateContact updates an existing contact
func UpdateContact(c *gin.Context) {
	contactUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid contact ID format")
		return
	}

	var input UpdateContactInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
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

	if input.Name != nil {
		contact.Name = *input.Name
	}
	if input.Birthdate != nil {
		birthdate, err := models.ParseDate(*input.Birthdate)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid birthdate format. Use YYYY-MM-DD")
			return
		}
		contact.Birthdate = birthdate
	}
	if input.WhatsAppNumber != nil {
		if !utils.ValidatePhone(*input.WhatsAppNumber) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
			return
		}
		contact.WhatsAppNumber = *input.WhatsAppNumber
	}

	if err := config.DB.Save(&contact).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update contact")
		return
	}

	c.JSON(http.StatusOK, contact)
}

// DeleteContact soft deletes a contact
func DeleteContact(c *gin.Context) {
	contactUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid contact ID format")
		return
	}

	result := config.DB.Where("id = ?", contactUUID).Delete(&models.Contact{})
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete contact")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Contact not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Contact deleted successfully"})
}
