// services/whatsapp_service.go
package services

import (
	"fmt"
	"log"
	"strings"

	"birthday-backend/models"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// WhatsAppSender is the outbound message gateway.
type WhatsAppSender interface {
	IsConfigured() bool
	SendBirthdayMessage(contactName, contactNumber, wisherName string) (bool, string)
	SendTestMessage(testNumber, wisherName string) (bool, string)
}

// SenderFactory builds a gateway client from the stored settings.
type SenderFactory func(settings *models.Settings) WhatsAppSender

type WhatsAppService struct {
	accountSID     string
	authToken      string
	whatsappNumber string
	client         *twilio.RestClient
}

// NewWhatsAppService builds a Twilio-backed sender from the settings row.
// A nil or incomplete settings row yields an unconfigured sender; callers must
// check IsConfigured before sending.
func NewWhatsAppService(settings *models.Settings) WhatsAppSender {
	svc := &WhatsAppService{}
	if settings == nil {
		return svc
	}

	svc.accountSID = settings.TwilioAccountSID
	svc.authToken = settings.TwilioAuthToken
	svc.whatsappNumber = settings.TwilioWhatsAppNumber

	if svc.accountSID != "" && svc.authToken != "" {
		svc.client = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: svc.accountSID,
			Password: svc.authToken,
		})
	}
	return svc
}

func (s *WhatsAppService) IsConfigured() bool {
	return s.accountSID != "" && s.authToken != "" && s.whatsappNumber != "" && s.client != nil
}

func (s *WhatsAppService) SendBirthdayMessage(contactName, contactNumber, wisherName string) (bool, string) {
	if !s.IsConfigured() {
		return false, "WhatsApp service not configured"
	}
	return s.send(contactNumber, BirthdayMessage(contactName, wisherName))
}

func (s *WhatsAppService) SendTestMessage(testNumber, wisherName string) (bool, string) {
	if !s.IsConfigured() {
		return false, "WhatsApp service not configured"
	}
	return s.send(testNumber, TestMessage(wisherName))
}

func (s *WhatsAppService) send(to, body string) (bool, string) {
	from := s.whatsappNumber
	if !strings.HasPrefix(from, "whatsapp:") {
		from = "whatsapp:" + FormatPhoneNumber(from)
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo("whatsapp:" + FormatPhoneNumber(to))
	params.SetFrom(from)
	params.SetBody(body)

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		log.Printf("Twilio error sending message to %s: %v", to, err)
		return false, "Twilio error: " + err.Error()
	}
	if resp.Sid == nil {
		log.Printf("Message sent to %s, but no SID returned", to)
		return true, "Message sent (no SID returned)"
	}
	log.Printf("Message sent to %s, SID: %s", to, *resp.Sid)
	return true, fmt.Sprintf("Message sent successfully (SID: %s)", *resp.Sid)
}

// FormatPhoneNumber normalizes a number to E.164 for the WhatsApp channel:
// strips any whatsapp: prefix and non-digits, then prepends +.
func FormatPhoneNumber(number string) string {
	number = strings.TrimPrefix(number, "whatsapp:")

	var digits strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	return "+" + digits.String()
}
