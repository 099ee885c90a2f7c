package services_test

import (
	"sync"
	"testing"
	"time"

	"birthday-backend/models"
	"birthday-backend/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------
// Fakes
// -----------------------------------------------------------------------------

// fixedClock controls "now" for deterministic scheduling decisions.
type fixedClock struct {
	current time.Time
}

func (f fixedClock) Now() time.Time { return f.current }

// fakeStore implements services.Store in memory.
type fakeStore struct {
	mu       sync.Mutex
	settings *models.Settings
	contacts []models.Contact
	logs     []models.MessageLog
}

func (f *fakeStore) CurrentSettings() (*models.Settings, error) {
	return f.settings, nil
}

func (f *fakeStore) AllContacts() ([]models.Contact, error) {
	return f.contacts, nil
}

func (f *fakeStore) ContactsByMonthDay(month, day int) ([]models.Contact, error) {
	var matches []models.Contact
	for _, contact := range f.contacts {
		if int(contact.Birthdate.Month()) == month && contact.Birthdate.Day() == day {
			matches = append(matches, contact)
		}
	}
	return matches, nil
}

func (f *fakeStore) RecordMessageLog(entry *models.MessageLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, *entry)
	return nil
}

func (f *fakeStore) loggedStatuses() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	statuses := make([]string, 0, len(f.logs))
	for _, entry := range f.logs {
		statuses = append(statuses, entry.Status)
	}
	return statuses
}

// fakeSender implements services.WhatsAppSender; numbers listed in fail are
// rejected with the mapped message.
type fakeSender struct {
	mu         sync.Mutex
	configured bool
	fail       map[string]string
	sent       []string
}

func (f *fakeSender) IsConfigured() bool { return f.configured }

func (f *fakeSender) SendBirthdayMessage(name, number, wisher string) (bool, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, number)
	if message, ok := f.fail[number]; ok {
		return false, message
	}
	return true, "Message sent successfully (SID: SM123)"
}

func (f *fakeSender) SendTestMessage(number, wisher string) (bool, string) {
	return f.SendBirthdayMessage("", number, wisher)
}

func (f *fakeSender) attempted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

var ist = time.FixedZone("IST", 5*3600+30*60)

func configuredSettings() *models.Settings {
	return &models.Settings{
		ID:                   uuid.New(),
		WisherName:           "Asha",
		TwilioAccountSID:     "AC123",
		TwilioAuthToken:      "token",
		TwilioWhatsAppNumber: "+14155238886",
	}
}

func contactWithBirthday(name, number string, year int, month time.Month, day int) models.Contact {
	return models.Contact{
		ID:             uuid.New(),
		Name:           name,
		WhatsAppNumber: number,
		Birthdate:      models.NewDate(year, month, day),
	}
}

func newTestScheduler(t *testing.T, store *fakeStore, sender *fakeSender) *services.BirthdayScheduler {
	t.Helper()
	factory := func(settings *models.Settings) services.WhatsAppSender { return sender }
	scheduler := services.NewBirthdayScheduler(store, factory, ist)
	t.Cleanup(scheduler.Shutdown)
	return scheduler
}

func parseRunTime(t *testing.T, value *string) time.Time {
	t.Helper()
	require.NotNil(t, value)
	parsed, err := time.Parse(time.RFC3339, *value)
	require.NoError(t, err)
	return parsed
}

// -----------------------------------------------------------------------------
// Scheduler slot tests
// -----------------------------------------------------------------------------

func TestStartDailyCheck_StatusReportsFutureNextRun(t *testing.T) {
	scheduler := newTestScheduler(t, &fakeStore{}, &fakeSender{configured: true})

	success, message := scheduler.StartDailyCheck(9, 30)
	assert.True(t, success)
	assert.Equal(t, "Scheduler started - daily check at 09:30", message)

	status := scheduler.GetStatus()
	assert.True(t, status.Daily.Running)
	assert.True(t, status.Running)
	assert.Equal(t, 1, status.JobCount)

	next := parseRunTime(t, status.Daily.NextRun)
	assert.True(t, next.After(time.Now()))
	assert.Equal(t, 9, next.In(ist).Hour())
	assert.Equal(t, 30, next.In(ist).Minute())
}

func TestStartDailyCheck_RejectsInvalidTime(t *testing.T) {
	scheduler := newTestScheduler(t, &fakeStore{}, &fakeSender{configured: true})

	for _, input := range [][2]int{{24, 0}, {-1, 0}, {0, 60}, {0, -1}} {
		success, _ := scheduler.StartDailyCheck(input[0], input[1])
		assert.False(t, success, "hour=%d minute=%d should be rejected", input[0], input[1])
	}
	assert.False(t, scheduler.GetStatus().Daily.Running)
}

func TestStartDailyCheck_ReplacesExistingJob(t *testing.T) {
	scheduler := newTestScheduler(t, &fakeStore{}, &fakeSender{configured: true})

	success, _ := scheduler.StartDailyCheck(9, 0)
	require.True(t, success)
	success, _ = scheduler.StartDailyCheck(10, 45)
	require.True(t, success)

	status := scheduler.GetStatus()
	assert.Equal(t, 1, status.JobCount)

	next := parseRunTime(t, status.Daily.NextRun)
	assert.Equal(t, 10, next.In(ist).Hour())
	assert.Equal(t, 45, next.In(ist).Minute())
}

func TestStopDailyCheck_WithoutJobReportsNotFound(t *testing.T) {
	scheduler := newTestScheduler(t, &fakeStore{}, &fakeSender{configured: true})

	success, message := scheduler.StopDailyCheck()
	assert.False(t, success)
	assert.Equal(t, "No scheduled job found", message)
}

func TestIntervalCheck_StartAndStop(t *testing.T) {
	scheduler := newTestScheduler(t, &fakeStore{}, &fakeSender{configured: true})

	success, message := scheduler.StartIntervalCheck(5)
	assert.True(t, success)
	assert.Equal(t, "Interval scheduler started - every 5 minute(s)", message)

	status := scheduler.GetStatus()
	assert.True(t, status.Interval.Running)
	require.NotNil(t, status.Interval.IntervalMinutes)
	assert.Equal(t, 5, *status.Interval.IntervalMinutes)
	assert.NotNil(t, status.Interval.NextRun)
	assert.Nil(t, status.Interval.EndTime)

	success, message = scheduler.StopIntervalCheck()
	assert.True(t, success)
	assert.Equal(t, "Interval scheduler stopped", message)

	status = scheduler.GetStatus()
	assert.False(t, status.Interval.Running)
	assert.False(t, status.Running)
	assert.Equal(t, 0, status.JobCount)
}

func TestStartIntervalCheck_RejectsOutOfRangeMinutes(t *testing.T) {
	scheduler := newTestScheduler(t, &fakeStore{}, &fakeSender{configured: true})

	for _, minutes := range []int{0, -5, 1441} {
		success, message := scheduler.StartIntervalCheck(minutes)
		assert.False(t, success)
		assert.Equal(t, "Minutes must be between 1 and 1440", message)
	}
}

func TestStopIntervalCheck_WithoutJobReportsNotFound(t *testing.T) {
	scheduler := newTestScheduler(t, &fakeStore{}, &fakeSender{configured: true})

	success, message := scheduler.StopIntervalCheck()
	assert.False(t, success)
	assert.Equal(t, "No interval job found", message)
}

func TestStartIntervalUntil_PastEndTimeRollsBack(t *testing.T) {
	scheduler := newTestScheduler(t, &fakeStore{}, &fakeSender{configured: true})
	scheduler.Clock = fixedClock{time.Date(2024, 6, 10, 23, 0, 0, 0, ist)}

	success, message := scheduler.StartIntervalUntil(5, 0, 1)
	assert.False(t, success)
	assert.Equal(t, "End time is in the past; interval not started", message)

	status := scheduler.GetStatus()
	assert.False(t, status.Interval.Running)
	assert.Nil(t, status.Interval.EndTime)
	assert.Equal(t, 0, status.JobCount)
}

func TestStartIntervalUntil_FutureEndTimeArmsEndTimer(t *testing.T) {
	scheduler := newTestScheduler(t, &fakeStore{}, &fakeSender{configured: true})
	scheduler.Clock = fixedClock{time.Date(2024, 6, 10, 10, 0, 0, 0, ist)}

	success, message := scheduler.StartIntervalUntil(10, 23, 30)
	assert.True(t, success)
	assert.Equal(t, "Interval scheduler started - every 10 minute(s) until 23:30 IST", message)

	status := scheduler.GetStatus()
	assert.True(t, status.Interval.Running)
	require.NotNil(t, status.Interval.IntervalMinutes)
	assert.Equal(t, 10, *status.Interval.IntervalMinutes)
	assert.Equal(t, 2, status.JobCount)

	end := parseRunTime(t, status.Interval.EndTime)
	assert.Equal(t, time.Date(2024, 6, 10, 23, 30, 0, 0, ist).Unix(), end.Unix())

	// Stopping the interval disarms the paired end timer.
	success, _ = scheduler.StopIntervalCheck()
	require.True(t, success)
	status = scheduler.GetStatus()
	assert.Nil(t, status.Interval.EndTime)
	assert.Equal(t, 0, status.JobCount)
}

func TestStartIntervalUntil_RejectsInvalidEndTime(t *testing.T) {
	scheduler := newTestScheduler(t, &fakeStore{}, &fakeSender{configured: true})

	success, message := scheduler.StartIntervalUntil(5, 24, 0)
	assert.False(t, success)
	assert.Equal(t, "Invalid end time. Hour must be 0-23, minute 0-59", message)
	assert.False(t, scheduler.GetStatus().Interval.Running)
}

func TestGetStatus_EmptyScheduler(t *testing.T) {
	scheduler := newTestScheduler(t, &fakeStore{}, &fakeSender{configured: true})

	status := scheduler.GetStatus()
	assert.False(t, status.Running)
	assert.Nil(t, status.NextRun)
	assert.Equal(t, 0, status.JobCount)
}

func TestGetStatus_CombinedNextRunPrefersDaily(t *testing.T) {
	scheduler := newTestScheduler(t, &fakeStore{}, &fakeSender{configured: true})

	_, _ = scheduler.StartIntervalCheck(30)
	_, _ = scheduler.StartDailyCheck(6, 0)

	status := scheduler.GetStatus()
	assert.True(t, status.Running)
	require.NotNil(t, status.NextRun)
	assert.Equal(t, *status.Daily.NextRun, *status.NextRun)
}

// -----------------------------------------------------------------------------
// Orchestration tests
// -----------------------------------------------------------------------------

func TestSendTodaysBirthdayMessages_MissingSettingsSkipsGateway(t *testing.T) {
	sender := &fakeSender{configured: true}
	scheduler := newTestScheduler(t, &fakeStore{settings: nil}, sender)

	result, err := scheduler.SendTodaysBirthdayMessages()
	assert.Nil(t, result)
	assert.ErrorIs(t, err, services.ErrSettingsNotConfigured)
	assert.Empty(t, sender.attempted())
}

func TestSendTodaysBirthdayMessages_EmptyWisherSkipsGateway(t *testing.T) {
	sender := &fakeSender{configured: true}
	store := &fakeStore{settings: &models.Settings{ID: uuid.New()}}
	scheduler := newTestScheduler(t, store, sender)

	_, err := scheduler.SendTodaysBirthdayMessages()
	assert.ErrorIs(t, err, services.ErrSettingsNotConfigured)
	assert.Empty(t, sender.attempted())
}

func TestSendTodaysBirthdayMessages_UnconfiguredGateway(t *testing.T) {
	sender := &fakeSender{configured: false}
	store := &fakeStore{settings: configuredSettings()}
	scheduler := newTestScheduler(t, store, sender)

	_, err := scheduler.SendTodaysBirthdayMessages()
	assert.ErrorIs(t, err, services.ErrWhatsAppNotConfigured)
	assert.Empty(t, sender.attempted())
}

func TestSendTodaysBirthdayMessages_MatchesMonthAndDayOnly(t *testing.T) {
	today := time.Date(2024, 3, 8, 12, 0, 0, 0, ist)
	store := &fakeStore{
		settings: configuredSettings(),
		contacts: []models.Contact{
			contactWithBirthday("Match", "+911111111111", 1990, time.March, 8),
			contactWithBirthday("DayOff", "+912222222222", 1990, time.March, 9),
			contactWithBirthday("Swapped", "+913333333333", 1990, time.August, 3),
		},
	}
	sender := &fakeSender{configured: true}
	scheduler := newTestScheduler(t, store, sender)
	scheduler.Clock = fixedClock{today}

	result, err := scheduler.SendTodaysBirthdayMessages()
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalCount)
	assert.Equal(t, []string{"+911111111111"}, sender.attempted())
}

func TestSendTodaysBirthdayMessages_PartialFailureContinues(t *testing.T) {
	today := time.Date(2024, 6, 15, 9, 0, 0, 0, ist)
	store := &fakeStore{
		settings: configuredSettings(),
		contacts: []models.Contact{
			contactWithBirthday("First", "+911000000001", 1980, time.June, 15),
			contactWithBirthday("Second", "+911000000002", 1985, time.June, 15),
			contactWithBirthday("Third", "+911000000003", 1990, time.June, 15),
		},
	}
	sender := &fakeSender{
		configured: true,
		fail:       map[string]string{"+911000000002": "Twilio error: unreachable"},
	}
	scheduler := newTestScheduler(t, store, sender)
	scheduler.Clock = fixedClock{today}

	result, err := scheduler.SendTodaysBirthdayMessages()
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalCount)
	assert.Equal(t, 2, result.SentCount)
	assert.Equal(t, 1, result.FailedCount)
	require.Len(t, result.Results, 3)

	// Order preserved, no early abort after the failure.
	assert.Equal(t, []string{"+911000000001", "+911000000002", "+911000000003"}, sender.attempted())
	assert.True(t, result.Results[0].Success)
	assert.False(t, result.Results[1].Success)
	assert.Equal(t, "Twilio error: unreachable", result.Results[1].Message)
	assert.True(t, result.Results[2].Success)

	assert.Equal(t, []string{"sent", "failed", "sent"}, store.loggedStatuses())
}

func TestSendTodaysBirthdayMessages_NoMatches(t *testing.T) {
	store := &fakeStore{
		settings: configuredSettings(),
		contacts: []models.Contact{
			contactWithBirthday("Elsewhere", "+911234567890", 1990, time.January, 1),
		},
	}
	sender := &fakeSender{configured: true}
	scheduler := newTestScheduler(t, store, sender)
	scheduler.Clock = fixedClock{time.Date(2024, 6, 15, 9, 0, 0, 0, ist)}

	result, err := scheduler.SendTodaysBirthdayMessages()
	require.NoError(t, err)
	assert.Equal(t, 0, result.TotalCount)
	assert.Empty(t, sender.attempted())
}

func TestRunManualCheck_AcknowledgesImmediately(t *testing.T) {
	today := time.Date(2024, 6, 15, 9, 0, 0, 0, ist)
	store := &fakeStore{
		settings: configuredSettings(),
		contacts: []models.Contact{
			contactWithBirthday("Today", "+911234567890", 1990, time.June, 15),
		},
	}
	sender := &fakeSender{configured: true}
	scheduler := newTestScheduler(t, store, sender)
	scheduler.Clock = fixedClock{today}

	success, message := scheduler.RunManualCheck()
	assert.True(t, success)
	assert.Equal(t, "Manual birthday check started", message)

	// The check runs on its own goroutine after the call returns.
	assert.Eventually(t, func() bool {
		return len(sender.attempted()) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestCheckAndSendBirthdayMessages_UnconfiguredDoesNotPanic(t *testing.T) {
	sender := &fakeSender{configured: false}
	scheduler := newTestScheduler(t, &fakeStore{}, sender)

	assert.NotPanics(t, scheduler.CheckAndSendBirthdayMessages)
	assert.Empty(t, sender.attempted())
}

// -----------------------------------------------------------------------------
// Projection tests
// -----------------------------------------------------------------------------

func TestGetNextBirthdays_FiltersAndSorts(t *testing.T) {
	today := time.Date(2024, 6, 10, 8, 0, 0, 0, ist)
	store := &fakeStore{
		settings: configuredSettings(),
		contacts: []models.Contact{
			contactWithBirthday("Soon", "+911", 1990, time.June, 15),
			contactWithBirthday("Sooner", "+912", 1992, time.June, 12),
			contactWithBirthday("Passed", "+913", 1990, time.June, 1),
			contactWithBirthday("Today", "+914", 1990, time.June, 10),
		},
	}
	scheduler := newTestScheduler(t, store, &fakeSender{configured: true})
	scheduler.Clock = fixedClock{today}

	upcoming, err := scheduler.GetNextBirthdays(7)
	require.NoError(t, err)
	require.Len(t, upcoming, 3)

	assert.Equal(t, "Today", upcoming[0].Contact.Name)
	assert.Equal(t, 0, upcoming[0].DaysUntil)
	assert.Equal(t, "Sooner", upcoming[1].Contact.Name)
	assert.Equal(t, 2, upcoming[1].DaysUntil)
	assert.Equal(t, "Soon", upcoming[2].Contact.Name)
	assert.Equal(t, 5, upcoming[2].DaysUntil)
	assert.Equal(t, "2024-06-15", upcoming[2].NextBirthday)
}

func TestGetNextBirthdays_WrapsToNextYear(t *testing.T) {
	today := time.Date(2024, 12, 30, 8, 0, 0, 0, ist)
	store := &fakeStore{
		contacts: []models.Contact{
			contactWithBirthday("NewYear", "+911", 1990, time.January, 2),
		},
	}
	scheduler := newTestScheduler(t, store, &fakeSender{configured: true})
	scheduler.Clock = fixedClock{today}

	upcoming, err := scheduler.GetNextBirthdays(7)
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, 3, upcoming[0].DaysUntil)
	assert.Equal(t, "2025-01-02", upcoming[0].NextBirthday)
}

func TestGetNextBirthdays_LeapDayContactInNonLeapYear(t *testing.T) {
	today := time.Date(2025, 3, 10, 8, 0, 0, 0, ist)
	store := &fakeStore{
		contacts: []models.Contact{
			contactWithBirthday("LeapBaby", "+911", 2000, time.February, 29),
		},
	}
	scheduler := newTestScheduler(t, store, &fakeSender{configured: true})
	scheduler.Clock = fixedClock{today}

	upcoming, err := scheduler.GetNextBirthdays(365)
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Greater(t, upcoming[0].DaysUntil, 300)
	assert.Contains(t, upcoming[0].NextBirthday, "2026-")
}

func TestPreviewToday_RendersMessages(t *testing.T) {
	today := time.Date(2024, 6, 15, 9, 0, 0, 0, ist)
	store := &fakeStore{
		settings: configuredSettings(),
		contacts: []models.Contact{
			contactWithBirthday("Priya", "+911234567890", 1990, time.June, 15),
		},
	}
	scheduler := newTestScheduler(t, store, &fakeSender{configured: true})
	scheduler.Clock = fixedClock{today}

	date, contacts, err := scheduler.PreviewToday()
	require.NoError(t, err)
	assert.Equal(t, "2024-06-15", date)
	require.Len(t, contacts, 1)
	assert.Contains(t, contacts[0].MessageText, "Priya")
	assert.Contains(t, contacts[0].MessageText, "Asha")
}

func TestPreviewToday_MissingSettings(t *testing.T) {
	scheduler := newTestScheduler(t, &fakeStore{}, &fakeSender{configured: true})

	_, _, err := scheduler.PreviewToday()
	assert.ErrorIs(t, err, services.ErrSettingsNotConfigured)
}
