// services/scheduler_service.go
package services

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"birthday-backend/models"
	"birthday-backend/utils"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

var (
	ErrSettingsNotConfigured = errors.New("settings not configured")
	ErrWhatsAppNotConfigured = errors.New("whatsapp integration not configured")
)

// SendResult is the outcome of one contact's send attempt.
type SendResult struct {
	ContactName   string `json:"contact_name"`
	ContactNumber string `json:"contact_number"`
	Success       bool   `json:"success"`
	Message       string `json:"message"`
}

// BirthdayCheckResult aggregates one orchestration pass. It is transient:
// built per invocation and never persisted.
type BirthdayCheckResult struct {
	Results     []SendResult `json:"results"`
	SentCount   int          `json:"sent_count"`
	FailedCount int          `json:"failed_count"`
	TotalCount  int          `json:"total_count"`
}

type DailyStatus struct {
	Running bool    `json:"running"`
	NextRun *string `json:"next_run"`
}

type IntervalStatus struct {
	Running         bool    `json:"running"`
	NextRun         *string `json:"next_run"`
	IntervalMinutes *int    `json:"interval_minutes"`
	EndTime         *string `json:"end_time"`
}

type SchedulerStatus struct {
	JobCount int            `json:"job_count"`
	Daily    DailyStatus    `json:"daily"`
	Interval IntervalStatus `json:"interval"`
	Running  bool           `json:"running"`
	NextRun  *string        `json:"next_run"`
}

type UpcomingBirthday struct {
	Contact      models.Contact `json:"contact"`
	NextBirthday string         `json:"next_birthday"`
	DaysUntil    int            `json:"days_until"`
}

type PreviewContact struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	WhatsAppNumber string    `json:"whatsapp_number"`
	MessageText    string    `json:"message_text"`
}

// BirthdayScheduler owns the three timer slots (daily cron, recurring
// interval, one-shot interval end) and the birthday check they trigger.
// All civil-time decisions are made in the injected location, never the
// host's local timezone.
type BirthdayScheduler struct {
	store     Store
	newSender SenderFactory
	loc       *time.Location

	// Clock may be replaced in tests; nil means the real clock.
	Clock Clock

	mu          sync.Mutex
	cron        *cron.Cron
	dailyID     cron.EntryID
	dailySet    bool
	intervalID  cron.EntryID
	intervalSet bool
	endTimer    *time.Timer
	endAt       time.Time
}

func NewBirthdayScheduler(store Store, newSender SenderFactory, loc *time.Location) *BirthdayScheduler {
	s := &BirthdayScheduler{
		store:     store,
		newSender: newSender,
		loc:       loc,
		Clock:     realClock{},
		cron:      cron.New(cron.WithLocation(loc)),
	}
	s.cron.Start()
	log.Println("Birthday scheduler initialized")
	return s
}

// Shutdown stops the cron loop and any armed end timer. Running jobs finish.
func (s *BirthdayScheduler) Shutdown() {
	s.mu.Lock()
	s.clearEndTimerLocked()
	s.mu.Unlock()
	<-s.cron.Stop().Done()
	log.Println("Birthday scheduler stopped")
}

func (s *BirthdayScheduler) now() time.Time {
	if s.Clock != nil {
		return s.Clock.Now()
	}
	return time.Now()
}

// StartDailyCheck schedules the birthday check every day at the given
// wall-clock time, replacing any existing daily job.
func (s *BirthdayScheduler) StartDailyCheck(hour, minute int) (bool, string) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return false, "Invalid time. Hour must be 0-23, minute 0-59"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dailySet {
		s.cron.Remove(s.dailyID)
		s.dailySet = false
	}

	spec := fmt.Sprintf("%d %d * * *", minute, hour)
	id, err := s.cron.AddFunc(spec, s.CheckAndSendBirthdayMessages)
	if err != nil {
		log.Printf("Failed to start scheduler: %v", err)
		return false, "Failed to start scheduler: " + err.Error()
	}

	s.dailyID = id
	s.dailySet = true
	log.Printf("Daily birthday check scheduled for %02d:%02d", hour, minute)
	return true, fmt.Sprintf("Scheduler started - daily check at %02d:%02d", hour, minute)
}

func (s *BirthdayScheduler) StopDailyCheck() (bool, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dailySet {
		return false, "No scheduled job found"
	}
	s.cron.Remove(s.dailyID)
	s.dailySet = false
	log.Println("Daily birthday check stopped")
	return true, "Scheduler stopped"
}

// StartIntervalCheck schedules the birthday check every N minutes, first
// firing N minutes from now. Replaces any existing interval job.
func (s *BirthdayScheduler) StartIntervalCheck(minutes int) (bool, string) {
	if minutes < 1 || minutes > 1440 {
		return false, "Minutes must be between 1 and 1440"
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startIntervalLocked(minutes)
}

func (s *BirthdayScheduler) startIntervalLocked(minutes int) (bool, string) {
	if s.intervalSet {
		s.cron.Remove(s.intervalID)
		s.intervalSet = false
	}

	schedule := cron.Every(time.Duration(minutes) * time.Minute)
	s.intervalID = s.cron.Schedule(schedule, cron.FuncJob(s.CheckAndSendBirthdayMessages))
	s.intervalSet = true
	log.Printf("Interval birthday check scheduled every %d minute(s)", minutes)
	return true, fmt.Sprintf("Interval scheduler started - every %d minute(s)", minutes)
}

// StopIntervalCheck removes the interval job and disarms any pending end
// timer, the paired resource.
func (s *BirthdayScheduler) StopIntervalCheck() (bool, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopIntervalLocked()
}

func (s *BirthdayScheduler) stopIntervalLocked() (bool, string) {
	if !s.intervalSet {
		return false, "No interval job found"
	}
	s.cron.Remove(s.intervalID)
	s.intervalSet = false
	s.clearEndTimerLocked()
	log.Println("Interval birthday check stopped")
	return true, "Interval scheduler stopped"
}

func (s *BirthdayScheduler) clearEndTimerLocked() {
	if s.endTimer != nil {
		s.endTimer.Stop()
		s.endTimer = nil
		s.endAt = time.Time{}
	}
}

// StartIntervalUntil starts the interval job, then arms a one-shot timer that
// stops it at the given wall-clock time today. The interval is started first
// and torn down again if the end time has already passed, so an interval can
// never be left running without its stop condition.
func (s *BirthdayScheduler) StartIntervalUntil(minutes, endHour, endMinute int) (bool, string) {
	if minutes < 1 || minutes > 1440 {
		return false, "Minutes must be between 1 and 1440"
	}
	if endHour < 0 || endHour > 23 || endMinute < 0 || endMinute > 59 {
		return false, "Invalid end time. Hour must be 0-23, minute 0-59"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if ok, message := s.startIntervalLocked(minutes); !ok {
		return false, message
	}

	now := s.now().In(s.loc)
	end := time.Date(now.Year(), now.Month(), now.Day(), endHour, endMinute, 0, 0, s.loc)
	if !end.After(now) {
		s.stopIntervalLocked()
		return false, "End time is in the past; interval not started"
	}

	s.clearEndTimerLocked()
	s.endAt = end
	s.endTimer = time.AfterFunc(end.Sub(now), func() {
		s.mu.Lock()
		s.endTimer = nil
		s.endAt = time.Time{}
		s.stopIntervalLocked()
		s.mu.Unlock()
		log.Println("Interval end timer fired; interval birthday check stopped")
	})

	log.Printf("Interval end timer scheduled for %s", end.Format(time.RFC3339))
	return true, fmt.Sprintf("Interval scheduler started - every %d minute(s) until %s IST", minutes, end.Format("15:04"))
}

// RunManualCheck triggers the birthday check on its own goroutine and
// acknowledges immediately; callers never observe completion through it.
func (s *BirthdayScheduler) RunManualCheck() (bool, string) {
	log.Println("Running manual birthday check...")
	go s.CheckAndSendBirthdayMessages()
	return true, "Manual birthday check started"
}

// CheckAndSendBirthdayMessages is the callback every timer slot fires. It
// never returns an error: a misconfigured service logs and skips the pass.
func (s *BirthdayScheduler) CheckAndSendBirthdayMessages() {
	log.Println("Starting birthday check...")

	result, err := s.SendTodaysBirthdayMessages()
	if err != nil {
		switch {
		case errors.Is(err, ErrSettingsNotConfigured):
			log.Println("Settings not configured - skipping birthday check")
		case errors.Is(err, ErrWhatsAppNotConfigured):
			log.Println("WhatsApp integration not configured - skipping birthday check")
		default:
			log.Printf("Error during birthday check: %v", err)
		}
		return
	}

	if result.TotalCount == 0 {
		log.Println("No birthdays today")
		return
	}
	log.Printf("Birthday check completed - Sent: %d, Failed: %d", result.SentCount, result.FailedCount)
}

// SendTodaysBirthdayMessages sends a greeting to every contact whose
// birthdate matches today's month and day. Per-contact failures are recorded
// in the result and never abort the remaining sends.
func (s *BirthdayScheduler) SendTodaysBirthdayMessages() (*BirthdayCheckResult, error) {
	settings, err := s.store.CurrentSettings()
	if err != nil {
		return nil, err
	}
	if settings == nil || settings.WisherName == "" {
		return nil, ErrSettingsNotConfigured
	}

	sender := s.newSender(settings)
	if !sender.IsConfigured() {
		return nil, ErrWhatsAppNotConfigured
	}

	today := s.now().In(s.loc)
	contacts, err := s.store.ContactsByMonthDay(int(today.Month()), today.Day())
	if err != nil {
		return nil, err
	}

	result := &BirthdayCheckResult{TotalCount: len(contacts)}
	if len(contacts) == 0 {
		return result, nil
	}
	log.Printf("Found %d birthday(s) today", len(contacts))

	for _, contact := range contacts {
		success, detail := sender.SendBirthdayMessage(contact.Name, contact.WhatsAppNumber, settings.WisherName)

		result.Results = append(result.Results, SendResult{
			ContactName:   contact.Name,
			ContactNumber: contact.WhatsAppNumber,
			Success:       success,
			Message:       detail,
		})
		if success {
			result.SentCount++
			log.Printf("Birthday message sent to %s", contact.Name)
		} else {
			result.FailedCount++
			log.Printf("Failed to send birthday message to %s: %s", contact.Name, detail)
		}

		s.recordSend(contact, settings.WisherName, success, detail)
	}
	return result, nil
}

// recordSend writes the audit row; a failed insert logs and never alters the
// send outcome.
func (s *BirthdayScheduler) recordSend(contact models.Contact, wisherName string, success bool, detail string) {
	status := "sent"
	if !success {
		status = "failed"
	}
	contactID := contact.ID
	entry := &models.MessageLog{
		ContactID:     &contactID,
		ContactName:   contact.Name,
		ContactNumber: contact.WhatsAppNumber,
		MessageType:   "birthday",
		Body:          BirthdayMessage(contact.Name, wisherName),
		Status:        status,
		Detail:        detail,
		SentAt:        s.now().In(s.loc),
	}
	if err := s.store.RecordMessageLog(entry); err != nil {
		log.Printf("Failed to log message for %s: %v", contact.Name, err)
	}
}

// GetStatus projects the live trigger state of all three slots. The interval
// length is derived from the running trigger, not a stored value.
func (s *BirthdayScheduler) GetStatus() SchedulerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := SchedulerStatus{JobCount: len(s.cron.Entries())}

	if s.dailySet {
		entry := s.cron.Entry(s.dailyID)
		status.Daily.Running = true
		status.Daily.NextRun = formatRunTime(entry.Next)
	}
	if s.intervalSet {
		entry := s.cron.Entry(s.intervalID)
		status.Interval.Running = true
		status.Interval.NextRun = formatRunTime(entry.Next)
		if schedule, ok := entry.Schedule.(cron.ConstantDelaySchedule); ok {
			minutes := int(schedule.Delay / time.Minute)
			status.Interval.IntervalMinutes = &minutes
		}
	}
	if s.endTimer != nil {
		status.Interval.EndTime = formatRunTime(s.endAt)
		status.JobCount++
	}

	status.Running = status.Daily.Running || status.Interval.Running
	if status.Daily.NextRun != nil {
		status.NextRun = status.Daily.NextRun
	} else {
		status.NextRun = status.Interval.NextRun
	}
	return status
}

func formatRunTime(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	formatted := t.Format(time.RFC3339)
	return &formatted
}

// TodaysBirthdays returns the contacts whose birthdate matches today's month
// and day in the scheduler's timezone.
func (s *BirthdayScheduler) TodaysBirthdays() ([]models.Contact, error) {
	today := s.now().In(s.loc)
	return s.store.ContactsByMonthDay(int(today.Month()), today.Day())
}

// GetNextBirthdays returns contacts whose next birthday falls within
// daysAhead days of today inclusive, sorted soonest first.
func (s *BirthdayScheduler) GetNextBirthdays(daysAhead int) ([]UpcomingBirthday, error) {
	contacts, err := s.store.AllContacts()
	if err != nil {
		return nil, err
	}

	today := s.now().In(s.loc)
	upcoming := []UpcomingBirthday{}
	for _, contact := range contacts {
		next := utils.NextBirthday(contact.Birthdate.Month(), contact.Birthdate.Day(), today)
		daysUntil := utils.DaysBetween(today, next)
		if daysUntil >= 0 && daysUntil <= daysAhead {
			upcoming = append(upcoming, UpcomingBirthday{
				Contact:      contact,
				NextBirthday: next.Format("2006-01-02"),
				DaysUntil:    daysUntil,
			})
		}
	}

	sort.Slice(upcoming, func(i, j int) bool {
		return upcoming[i].DaysUntil < upcoming[j].DaysUntil
	})
	return upcoming, nil
}

// PreviewToday renders the messages the next check would send, without
// sending anything. Gateway credentials are not required, only the wisher.
func (s *BirthdayScheduler) PreviewToday() (string, []PreviewContact, error) {
	settings, err := s.store.CurrentSettings()
	if err != nil {
		return "", nil, err
	}
	if settings == nil {
		return "", nil, ErrSettingsNotConfigured
	}

	today := s.now().In(s.loc)
	matches, err := s.store.ContactsByMonthDay(int(today.Month()), today.Day())
	if err != nil {
		return "", nil, err
	}

	contacts := make([]PreviewContact, 0, len(matches))
	for _, match := range matches {
		contacts = append(contacts, PreviewContact{
			ID:             match.ID,
			Name:           match.Name,
			WhatsAppNumber: match.WhatsAppNumber,
			MessageText:    BirthdayMessage(match.Name, settings.WisherName),
		})
	}
	return today.Format("2006-01-02"), contacts, nil
}
