// controllers/scheduler.go
package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"birthday-backend/config"
	"birthday-backend/models"
	"birthday-backend/services"
	"birthday-backend/utils"

	"github.com/gin-gonic/gin"
)

// SchedulerController exposes the scheduler owned by the composition root;
// there is no package-level scheduler instance.
type SchedulerController struct {
	Scheduler *services.BirthdayScheduler
}

// StartDailyInput defines the expected JSON structure; omitted fields default
// to a 09:00 daily check.
type StartDailyInput struct {
	Hour   *int `json:"hour"`
	Minute *int `json:"minute"`
}

type StartIntervalInput struct {
	Minutes *int `json:"minutes"`
}

type StartIntervalUntilInput struct {
	Minutes   *int `json:"minutes"`
	EndHour   *int `json:"end_hour"`
	EndMinute *int `json:"end_minute"`
}

// bindOptionalJSON binds a body that may be entirely absent.
func bindOptionalJSON(c *gin.Context, input interface{}) bool {
	if err := c.ShouldBindJSON(input); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return false
	}
	return true
}

func respondOperation(c *gin.Context, success bool, message string) {
	if !success {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message})
}

// Start schedules the daily birthday check
func (sc *SchedulerController) Start(c *gin.Context) {
	var input StartDailyInput
	if !bindOptionalJSON(c, &input) {
		return
	}

	hour, minute := 9, 0
	if input.Hour != nil {
		hour = *input.Hour
	}
	if input.Minute != nil {
		minute = *input.Minute
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid time format. Hour must be 0-23, minute must be 0-59")
		return
	}

	success, message := sc.Scheduler.StartDailyCheck(hour, minute)
	respondOperation(c, success, message)
}

// Stop removes the daily birthday check
func (sc *SchedulerController) Stop(c *gin.Context) {
	success, message := sc.Scheduler.StopDailyCheck()
	respondOperation(c, success, message)
}

// Status reports the live state of all scheduler slots
func (sc *SchedulerController) Status(c *gin.Context) {
	c.JSON(http.StatusOK, sc.Scheduler.GetStatus())
}

// StartInterval schedules the birthday check every N minutes
func (sc *SchedulerController) StartInterval(c *gin.Context) {
	var input StartIntervalInput
	if !bindOptionalJSON(c, &input) {
		return
	}

	minutes := 5
	if input.Minutes != nil {
		minutes = *input.Minutes
	}
	if minutes < 1 || minutes > 1440 {
		utils.RespondWithError(c, http.StatusBadRequest, "Minutes must be between 1 and 1440")
		return
	}

	success, message := sc.Scheduler.StartIntervalCheck(minutes)
	respondOperation(c, success, message)
}

// StopInterval removes the interval birthday check
func (sc *SchedulerController) StopInterval(c *gin.Context) {
	success, message := sc.Scheduler.StopIntervalCheck()
	respondOperation(c, success, message)
}

// StartIntervalUntil schedules the interval check with an automatic stop at
// the given time today
func (sc *SchedulerController) StartIntervalUntil(c *gin.Context) {
	var input StartIntervalUntilInput
	if !bindOptionalJSON(c, &input) {
		return
	}

	if input.EndHour == nil || input.EndMinute == nil {
		utils.RespondWithError(c, http.StatusBadRequest, "end_hour and end_minute are required")
		return
	}

	minutes := 5
	if input.Minutes != nil {
		minutes = *input.Minutes
	}

	success, message := sc.Scheduler.StartIntervalUntil(minutes, *input.EndHour, *input.EndMinute)
	respondOperation(c, success, message)
}

// RunNow triggers a birthday check immediately; the response acknowledges the
// start, never the outcome.
func (sc *SchedulerController) RunNow(c *gin.Context) {
	success, message := sc.Scheduler.RunManualCheck()
	respondOperation(c, success, message)
}

// Preview shows today's matches with the message text each would receive
func (sc *SchedulerController) Preview(c *gin.Context) {
	date, contacts, err := sc.Scheduler.PreviewToday()
	if err != nil {
		if errors.Is(err, services.ErrSettingsNotConfigured) {
			utils.RespondWithError(c, http.StatusBadRequest, "Settings not configured")
			return
		}
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to build preview")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":             date,
		"contacts":         contacts,
		"count":            len(contacts),
		"scheduler_status": sc.Scheduler.GetStatus(),
	})
}

// TodaysBirthdays lists contacts whose birthday is today
func (sc *SchedulerController) TodaysBirthdays(c *gin.Context) {
	contacts, err := sc.Scheduler.TodaysBirthdays()
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve today's birthdays")
		return
	}
	c.JSON(http.StatusOK, contacts)
}

// UpcomingBirthdays lists birthdays in the next N days (1-365)
func (sc *SchedulerController) UpcomingBirthdays(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "7"))
	if err != nil || days < 1 || days > 365 {
		utils.RespondWithError(c, http.StatusBadRequest, "Days must be between 1 and 365")
		return
	}

	upcoming, err := sc.Scheduler.GetNextBirthdays(days)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve upcoming birthdays")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"upcoming_birthdays": upcoming,
		"days_ahead":         days,
		"count":              len(upcoming),
	})
}

// SendBirthdayMessages runs the birthday batch synchronously and returns
// per-contact results
func (sc *SchedulerController) SendBirthdayMessages(c *gin.Context) {
	result, err := sc.Scheduler.SendTodaysBirthdayMessages()
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSettingsNotConfigured):
			utils.RespondWithError(c, http.StatusBadRequest, "Settings not configured. Please set your name in settings.")
		case errors.Is(err, services.ErrWhatsAppNotConfigured):
			utils.RespondWithError(c, http.StatusBadRequest, "WhatsApp integration not configured. Please add Twilio credentials in settings.")
		default:
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to send birthday messages")
		}
		return
	}

	if result.TotalCount == 0 {
		c.JSON(http.StatusOK, gin.H{
			"message":    "No birthdays today",
			"sent_count": 0,
			"results":    []services.SendResult{},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     fmt.Sprintf("Birthday messages processed for %d contacts", result.TotalCount),
		"sent_count":  result.SentCount,
		"total_count": result.TotalCount,
		"results":     result.Results,
	})
}

// Dashboard aggregates the overview the frontend landing page shows
func (sc *SchedulerController) Dashboard(c *gin.Context) {
	var totalContacts int64
	config.DB.Model(&models.Contact{}).Count(&totalContacts)

	todays, err := sc.Scheduler.TodaysBirthdays()
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve today's birthdays")
		return
	}

	upcoming, err := sc.Scheduler.GetNextBirthdays(7)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve upcoming birthdays")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_contacts":     totalContacts,
		"todays_birthdays":   len(todays),
		"upcoming_birthdays": upcoming,
		"scheduler_status":   sc.Scheduler.GetStatus(),
	})
}
