// services/templates.go
package services

import "strings"

// Birthday greeting templates. {name} and {wisher} are substituted at send time.
var birthdayTemplates = []string{
	"Happy Birthday {name}!\n\nWishing you a wonderful day filled with happiness and joy!\n\n- from {wisher}",
	"Happy Birthday {name}!\n\nHope your special day is amazing and the year ahead brings you lots of happiness!\n\n- from {wisher}",
	"Happy Birthday {name}!\n\nMay this new year of your life be filled with joy, success, and wonderful memories!\n\n- from {wisher}",
	"Happy Birthday {name}!\n\nSending you warm wishes on your special day. May all your dreams come true!\n\n- from {wisher}",
}

const testTemplate = "Test message from Birthday Reminder App!\n\nThis is a test to verify your WhatsApp integration is working correctly.\n\n- from {wisher}"

// BirthdayMessage renders the greeting sent to a contact. The first template
// is used for every send so previews match what actually goes out.
func BirthdayMessage(name, wisher string) string {
	return render(birthdayTemplates[0], name, wisher)
}

func TestMessage(wisher string) string {
	return render(testTemplate, "", wisher)
}

func render(template, name, wisher string) string {
	out := strings.ReplaceAll(template, "{name}", name)
	return strings.ReplaceAll(out, "{wisher}", wisher)
}
